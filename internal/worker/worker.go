package worker

import (
	"errors"
	"io"

	"go.uber.org/zap"

	"jbuild/internal/buildjar"
)

// RunFunc executes one invocation for a decoded request. Implementations
// must scope all per-invocation state (in particular archive handles) to
// the one call and release it before returning.
type RunFunc func(args []string) (*buildjar.Result, error)

// The loop alternates between two states: blocked on the next request,
// and running one invocation for a decoded request.
type state int

const (
	stateReading state = iota
	stateDispatching
)

// Worker serves compilation requests until its input stream ends.
// Requests are processed strictly one at a time; responses are written in
// request order.
type Worker struct {
	requests  *Reader
	responses *Writer
	run       RunFunc
	log       *zap.Logger
}

// New creates a worker reading requests from in and writing responses to
// out. Nothing else may be written to out while the worker runs.
func New(in io.Reader, out io.Writer, run RunFunc, log *zap.Logger) *Worker {
	return &Worker{
		requests:  NewReader(in),
		responses: NewWriter(out),
		run:       run,
		log:       log,
	}
}

// Serve runs the request loop. It returns nil when the input stream ends
// cleanly. A decode or response-write failure is fatal to the loop; a
// failure inside one invocation is contained to that request's response.
func (w *Worker) Serve() error {
	st := stateReading

	var req *WorkRequest
	for {
		switch st {
		case stateReading:
			var err error
			req, err = w.requests.ReadRequest()
			if errors.Is(err, io.EOF) {
				w.log.Debug("request stream ended")
				return nil
			}
			if err != nil {
				w.log.Error("failed to read request", zap.Error(err))
				return err
			}

			st = stateDispatching

		case stateDispatching:
			resp := w.dispatch(req)
			if err := w.responses.WriteResponse(resp); err != nil {
				w.log.Error("failed to write response", zap.Error(err))
				return err
			}

			st = stateReading
		}
	}
}

// dispatch runs one invocation and maps its outcome to a response. An
// invocation that could not complete still produces a failed response so
// the loop keeps serving later requests.
func (w *Worker) dispatch(req *WorkRequest) *WorkResponse {
	w.log.Debug("dispatching request",
		zap.Int("request_id", req.RequestID),
		zap.Int("args", len(req.Arguments)))

	result, err := w.run(req.Arguments)
	if err != nil {
		w.log.Error("invocation failed", zap.Int("request_id", req.RequestID), zap.Error(err))

		return &WorkResponse{
			ExitCode:  1,
			Output:    err.Error() + "\n",
			RequestID: req.RequestID,
		}
	}

	return &WorkResponse{
		ExitCode:  result.ExitCode(),
		Output:    result.Output,
		RequestID: req.RequestID,
	}
}
