package middleware

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/render"
	"github.com/gorilla/websocket"
)

// Timeout middleware adds a timeout to requests. Websocket upgrades are
// long-lived and pass through untouched.
func Timeout(timeout time.Duration) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if websocket.IsWebSocketUpgrade(r) {
				next.ServeHTTP(w, r)
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			tw := &timeoutWriter{ResponseWriter: w, header: make(http.Header)}
			done := make(chan struct{})

			go func() {
				defer close(done)
				next.ServeHTTP(tw, r.WithContext(ctx))
			}()

			select {
			case <-done:
				return
			case <-ctx.Done():
				if !errors.Is(ctx.Err(), context.DeadlineExceeded) || !tw.expire() {
					// Client went away or the handler already started its
					// response; w stays with the handler until it returns.
					<-done
					return
				}
				// The handler goroutine still reads r, so the status goes on a copy.
				tr := r.WithContext(context.WithValue(r.Context(), render.StatusCtxKey, http.StatusRequestTimeout))
				render.JSON(w, tr, map[string]interface{}{
					"error":   ErrorCodeRequestTimeout,
					"message": ErrorMessageRequestTimeout,
				})
			}
		})
	}
}

// timeoutWriter drops handler output once the timeout response was chosen.
// The handler gets its own header map, copied to the real writer when the
// response starts.
type timeoutWriter struct {
	http.ResponseWriter

	header   http.Header
	mu       sync.Mutex
	started  bool
	timedOut bool
}

func (tw *timeoutWriter) Header() http.Header {
	return tw.header
}

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut || tw.started {
		return
	}
	tw.start(code)
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	if !tw.started {
		tw.start(http.StatusOK)
	}
	return tw.ResponseWriter.Write(b)
}

// start must be called with mu held.
func (tw *timeoutWriter) start(code int) {
	tw.started = true
	dst := tw.ResponseWriter.Header()
	for k, vv := range tw.header {
		dst[k] = vv
	}
	tw.ResponseWriter.WriteHeader(code)
}

// expire marks the writer as timed out unless output already began.
func (tw *timeoutWriter) expire() bool {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.started {
		return false
	}
	tw.timedOut = true
	return true
}
