// Package transport frames envelopes as newline-delimited lines over any
// byte stream. Node processes use it on stdin/stdout; the harness on the
// other end owns the actual network.
package transport

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
)

const defaultBufferSize = 64 * 1024

// LineReader yields one line at a time without the trailing newline.
// Lines of any length are accepted.
type LineReader struct {
	r *bufio.Reader
}

// NewLineReader wraps r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: bufio.NewReaderSize(r, defaultBufferSize)}
}

// ReadLine returns the next line. A final line without a newline is returned
// with a nil error; io.EOF is returned only once the stream is exhausted.
func (lr *LineReader) ReadLine() ([]byte, error) {
	line, err := lr.r.ReadBytes('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return trimEOL(line), nil
		}
		return nil, err
	}
	return trimEOL(line), nil
}

func trimEOL(line []byte) []byte {
	line = bytes.TrimSuffix(line, []byte("\n"))
	return bytes.TrimSuffix(line, []byte("\r"))
}

// LineWriter writes whole lines and flushes on demand. WriteLine is safe for
// concurrent use, and each line reaches the underlying writer in one piece.
type LineWriter struct {
	mu sync.Mutex
	w  *bufio.Writer
}

// NewLineWriter wraps w.
func NewLineWriter(w io.Writer) *LineWriter {
	return &LineWriter{w: bufio.NewWriterSize(w, defaultBufferSize)}
}

// WriteLine buffers line followed by a newline. line must not contain one.
func (lw *LineWriter) WriteLine(line []byte) error {
	if bytes.IndexByte(line, '\n') >= 0 {
		return fmt.Errorf("line contains a newline")
	}

	lw.mu.Lock()
	defer lw.mu.Unlock()

	if _, err := lw.w.Write(line); err != nil {
		return fmt.Errorf("write line: %w", err)
	}
	if err := lw.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("write line: %w", err)
	}
	return nil
}

// Flush pushes buffered lines to the underlying writer.
func (lw *LineWriter) Flush() error {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	if err := lw.w.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}
