package node

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func TestRun_EchoSession(t *testing.T) {
	n, logs := newTestNode(t, RoleEcho)
	input := strings.Join([]string{
		`{"src":"c0","dest":"n1","body":{"type":"init","msg_id":1,"node_id":"n1","node_ids":["n1"]}}`,
		``,
		`this is not json`,
		`{"src":"c1","dest":"n1","body":{"type":"echo","msg_id":4,"echo":"hi"}}`,
	}, "\n") + "\n"

	var out bytes.Buffer
	require.NoError(t, n.Run(context.Background(), strings.NewReader(input), &out))

	got := lines(out.String())
	require.Len(t, got, 2)
	assert.JSONEq(t, `{"src":"n1","dest":"c0","body":{"type":"init_ok","msg_id":1,"in_reply_to":1}}`, got[0])
	assert.JSONEq(t, `{"src":"n1","dest":"c1","body":{"type":"echo_ok","msg_id":2,"in_reply_to":4,"echo":"hi"}}`, got[1])

	assert.Equal(t, 1.0, testutil.ToFloat64(n.metrics.DecodeErrors))
	assert.Equal(t, 1, logs.FilterMessage("skipping malformed line").Len())
}

func TestRun_FinalLineWithoutNewline(t *testing.T) {
	n, _ := newTestNode(t, RoleEcho)
	input := `{"src":"c0","dest":"n1","body":{"type":"init","msg_id":1,"node_id":"n1","node_ids":["n1"]}}`

	var out bytes.Buffer
	require.NoError(t, n.Run(context.Background(), strings.NewReader(input), &out))
	assert.Len(t, lines(out.String()), 1)
}

func TestRun_ProtocolViolationEmitsNothing(t *testing.T) {
	tests := []struct {
		name      string
		input     []string
		wantErr   error
		wantLines int
	}{
		{
			name:    "message before init",
			input:   []string{`{"src":"c1","dest":"n1","body":{"type":"echo","msg_id":1,"echo":"hi"}}`},
			wantErr: ErrNotInitialized,
		},
		{
			name: "second init",
			input: []string{
				`{"src":"c0","dest":"n1","body":{"type":"init","msg_id":1,"node_id":"n1","node_ids":["n1"]}}`,
				`{"src":"c0","dest":"n1","body":{"type":"init","msg_id":2,"node_id":"n1","node_ids":["n1"]}}`,
				`{"src":"c1","dest":"n1","body":{"type":"echo","msg_id":3,"echo":"never answered"}}`,
			},
			wantErr:   ErrDuplicateInit,
			wantLines: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, _ := newTestNode(t, RoleEcho)
			var out bytes.Buffer

			err := n.Run(context.Background(), strings.NewReader(strings.Join(tt.input, "\n")+"\n"), &out)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrProtocolViolation)
			assert.Len(t, lines(out.String()), tt.wantLines)
		})
	}
}

func TestRun_ContextCanceled(t *testing.T) {
	n, _ := newTestNode(t, RoleEcho)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := n.Run(ctx, strings.NewReader(`{"src":"c0","dest":"n1","body":{"type":"init","msg_id":1,"node_id":"n1","node_ids":["n1"]}}`+"\n"), &out)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, out.Len())
}

type brokenPipe struct{}

func (brokenPipe) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestRun_WriteFailureIsFatal(t *testing.T) {
	n, _ := newTestNode(t, RoleEcho)

	err := n.Run(context.Background(), strings.NewReader(`{"src":"c0","dest":"n1","body":{"type":"init","msg_id":1,"node_id":"n1","node_ids":["n1"]}}`+"\n"), brokenPipe{})
	assert.ErrorContains(t, err, "broken pipe")
}

func TestRun_GCounterSession(t *testing.T) {
	n, _ := newTestNode(t, RoleGCounter)
	input := strings.Join([]string{
		`{"src":"c0","dest":"n1","body":{"type":"init","msg_id":1,"node_id":"n1","node_ids":["n1","n2"]}}`,
		`{"src":"c1","dest":"n1","body":{"type":"add","msg_id":2,"delta":3}}`,
		`{"src":"n2","dest":"n1","body":{"type":"add_ok","msg_id":1,"in_reply_to":3}}`,
		`{"src":"c1","dest":"n1","body":{"type":"read","msg_id":3}}`,
	}, "\n")

	var out bytes.Buffer
	require.NoError(t, n.Run(context.Background(), strings.NewReader(input), &out))

	got := lines(out.String())
	require.Len(t, got, 4)
	assert.JSONEq(t, `{"src":"n1","dest":"c1","body":{"type":"add_ok","msg_id":2,"in_reply_to":2}}`, got[1])
	assert.JSONEq(t, `{"src":"n1","dest":"n2","body":{"type":"add","msg_id":3,"delta":3}}`, got[2])
	assert.JSONEq(t, `{"src":"n1","dest":"c1","body":{"type":"read_ok","msg_id":4,"in_reply_to":3,"value":3}}`, got[3])
}
