package transport

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, lr *LineReader) []string {
	t.Helper()
	var lines []string
	for {
		line, err := lr.ReadLine()
		if errors.Is(err, io.EOF) {
			return lines
		}
		require.NoError(t, err)
		lines = append(lines, string(line))
	}
}

func TestLineReader_SplitsLines(t *testing.T) {
	lr := NewLineReader(strings.NewReader("one\ntwo\r\n\nthree"))

	assert.Equal(t, []string{"one", "two", "", "three"}, readAll(t, lr))
}

func TestLineReader_LongLine(t *testing.T) {
	long := strings.Repeat("x", 3*defaultBufferSize)
	lr := NewLineReader(strings.NewReader(long + "\nshort\n"))

	lines := readAll(t, lr)
	require.Len(t, lines, 2)
	assert.Equal(t, long, lines[0])
	assert.Equal(t, "short", lines[1])
}

func TestLineReader_Empty(t *testing.T) {
	lr := NewLineReader(strings.NewReader(""))

	_, err := lr.ReadLine()
	assert.ErrorIs(t, err, io.EOF)
}

func TestLineWriter_WritesOnFlush(t *testing.T) {
	var buf bytes.Buffer
	lw := NewLineWriter(&buf)

	require.NoError(t, lw.WriteLine([]byte(`{"a":1}`)))
	require.NoError(t, lw.WriteLine([]byte(`{"b":2}`)))
	assert.Equal(t, 0, buf.Len(), "nothing should reach the writer before Flush")

	require.NoError(t, lw.Flush())
	assert.Equal(t, "{\"a\":1}\n{\"b\":2}\n", buf.String())
}

func TestLineWriter_RejectsEmbeddedNewline(t *testing.T) {
	lw := NewLineWriter(io.Discard)

	assert.Error(t, lw.WriteLine([]byte("a\nb")))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestLineWriter_FlushError(t *testing.T) {
	lw := NewLineWriter(failingWriter{})

	require.NoError(t, lw.WriteLine([]byte("x")))
	assert.Error(t, lw.Flush())
}
