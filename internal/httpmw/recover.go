package httpmw

import (
	"net/http"
	"runtime/debug"

	"github.com/keithlinneman/avatars-web/internal/log"
	"github.com/keithlinneman/avatars-web/internal/xerrors"
)

// Recover converts a handler panic into a 500 and an error log carrying the
// goroutine stack. onPanic may be nil. http.ErrAbortHandler passes through
// untouched so net/http can drop the connection.
func Recover(L log.Logger, onPanic func()) func(http.Handler) http.Handler {
	if L == nil {
		L = log.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					reportPanic(L, r, rec, debug.Stack())
					if onPanic != nil {
						onPanic()
					}
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func reportPanic(L log.Logger, r *http.Request, rec any, stack []byte) {
	err, ok := rec.(error)
	if !ok {
		err = xerrors.Newf("panic: %v", rec)
	}
	ctx := r.Context()
	L.With(
		"request_id", RequestIDFromContext(ctx),
		"http.request.method", r.Method,
		"url.path", r.URL.Path,
		"stack", string(stack),
	).Error(ctx, xerrors.Wrap(err, "recovered panic"), "httpserver panic recovered")
}
