package gossip

import "fmt"

// Shape builds a topology message body over ids, the way a harness would.
type Shape struct {
	Name  string
	Build func(ids []string) map[string][]string
}

// Shapes are the topologies the simulator can install, in cycling order.
var Shapes = []Shape{
	{Name: "line", Build: Line},
	{Name: "ring", Build: Ring},
	{Name: "tree", Build: Tree},
	{Name: "full", Build: Full},
	{Name: "none", Build: None},
}

// ShapeByName looks a shape up by name.
func ShapeByName(name string) (Shape, error) {
	for _, s := range Shapes {
		if s.Name == name {
			return s, nil
		}
	}
	return Shape{}, fmt.Errorf("unknown topology shape %q", name)
}

// Line links each node to its predecessor and successor.
func Line(ids []string) map[string][]string {
	out := make(map[string][]string, len(ids))
	for i, id := range ids {
		out[id] = []string{}
		if i > 0 {
			out[id] = append(out[id], ids[i-1])
		}
		if i < len(ids)-1 {
			out[id] = append(out[id], ids[i+1])
		}
	}
	return out
}

// Ring is a Line with the ends joined.
func Ring(ids []string) map[string][]string {
	out := Line(ids)
	if len(ids) > 2 {
		first, last := ids[0], ids[len(ids)-1]
		out[first] = append(out[first], last)
		out[last] = append(out[last], first)
	}
	return out
}

// Tree is a binary tree rooted at ids[0]; links go both ways.
func Tree(ids []string) map[string][]string {
	out := make(map[string][]string, len(ids))
	for _, id := range ids {
		out[id] = []string{}
	}
	for i := 1; i < len(ids); i++ {
		parent := ids[(i-1)/2]
		out[parent] = append(out[parent], ids[i])
		out[ids[i]] = append(out[ids[i]], parent)
	}
	return out
}

// Full links every node to every other node.
func Full(ids []string) map[string][]string {
	out := make(map[string][]string, len(ids))
	for _, id := range ids {
		neighbors := make([]string, 0, len(ids)-1)
		for _, other := range ids {
			if other != id {
				neighbors = append(neighbors, other)
			}
		}
		out[id] = neighbors
	}
	return out
}

// None gives every node an empty neighbour list.
func None(ids []string) map[string][]string {
	out := make(map[string][]string, len(ids))
	for _, id := range ids {
		out[id] = []string{}
	}
	return out
}
