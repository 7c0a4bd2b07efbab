package node

import (
	"fmt"
	"sort"

	"github.com/adamgarcia4/goLearning/glomers/protocol"
)

// HandlerFunc handles one envelope. Replies and sends go to the node's outbox.
// A returned error stops the node.
type HandlerFunc func(msg protocol.Envelope) error

// Router maps payload types to handlers.
type Router struct {
	handlers map[string]HandlerFunc
}

func NewRouter() *Router {
	return &Router{handlers: make(map[string]HandlerFunc)}
}

// Handle registers h for typ. It panics if typ is not a payload type or
// already has a handler: both are wiring mistakes.
func (r *Router) Handle(typ string, h HandlerFunc) {
	if !protocol.Known(typ) {
		panic(fmt.Sprintf("node: handler for unknown payload type %q", typ))
	}
	if _, exists := r.handlers[typ]; exists {
		panic(fmt.Sprintf("node: duplicate handler for %q", typ))
	}
	r.handlers[typ] = h
}

func (r *Router) Lookup(typ string) (HandlerFunc, bool) {
	h, ok := r.handlers[typ]
	return h, ok
}

// Types returns the registered payload types, sorted.
func (r *Router) Types() []string {
	types := make([]string, 0, len(r.handlers))
	for typ := range r.handlers {
		types = append(types, typ)
	}
	sort.Strings(types)
	return types
}
