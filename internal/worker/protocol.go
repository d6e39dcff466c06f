// Package worker implements the persistent worker mode: a framed
// request/response protocol over stdio and a loop that serves one
// invocation per request for the lifetime of the process.
package worker

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// maxFrameSize bounds a single request frame; anything larger is a
// corrupt stream, not a real request.
const maxFrameSize = 64 << 20

// WorkRequest is one compilation request from the build tool.
type WorkRequest struct {
	Arguments []string `json:"arguments"`
	RequestID int      `json:"requestId,omitempty"`
}

// WorkResponse reports one invocation's outcome.
type WorkResponse struct {
	ExitCode  int    `json:"exitCode"`
	Output    string `json:"output"`
	RequestID int    `json:"requestId,omitempty"`
}

// Reader decodes length-delimited requests from a stream.
type Reader struct {
	r *bufio.Reader
}

// NewReader creates a request reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// ReadRequest decodes the next request. A clean end of stream returns
// io.EOF; any other failure means the stream is unusable.
func (r *Reader) ReadRequest() (*WorkRequest, error) {
	size, err := binary.ReadUvarint(r.r)
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}

		return nil, fmt.Errorf("failed to read request frame: %w", err)
	}

	if size > maxFrameSize {
		return nil, fmt.Errorf("request frame of %d bytes exceeds limit", size)
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(r.r, payload); err != nil {
		return nil, fmt.Errorf("failed to read request payload: %w", err)
	}

	var req WorkRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("failed to decode request: %w", err)
	}

	return &req, nil
}

// Writer encodes length-delimited responses onto a stream.
type Writer struct {
	w *bufio.Writer
}

// NewWriter creates a response writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WriteResponse encodes resp as one frame and flushes it.
func (w *Writer) WriteResponse(resp *WorkResponse) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}

	header := binary.AppendUvarint(nil, uint64(len(payload)))
	if _, err := w.w.Write(header); err != nil {
		return fmt.Errorf("failed to write response frame: %w", err)
	}

	if _, err := w.w.Write(payload); err != nil {
		return fmt.Errorf("failed to write response payload: %w", err)
	}

	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("failed to flush response: %w", err)
	}

	return nil
}
