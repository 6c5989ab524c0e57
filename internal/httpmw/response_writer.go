package httpmw

import (
	"bufio"
	"context"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/keithlinneman/avatars-web/internal/xerrors"
)

const writerTracer = "avatars-web/httpmw"

// responseWriter records what the handler sent and, when the request span is
// recording, times the write path in a "response.write" child span.
type responseWriter struct {
	http.ResponseWriter
	status int
	bytes  int64

	ctx      context.Context
	reqStart time.Time

	writeSpan    trace.Span
	spanChecked  bool
	ttfb         time.Duration
	writeBlocked time.Duration
	writeErr     error
}

func (rw *responseWriter) ensureWriteSpan() {
	if rw.spanChecked {
		return
	}
	rw.spanChecked = true
	if !rw.reqStart.IsZero() {
		rw.ttfb = time.Since(rw.reqStart)
	}
	if rw.ctx == nil || !trace.SpanFromContext(rw.ctx).IsRecording() {
		return
	}
	rw.ctx, rw.writeSpan = otel.Tracer(writerTracer).Start(rw.ctx, "response.write",
		trace.WithAttributes(attribute.Float64("http.server.ttfb_seconds", rw.ttfb.Seconds())))
}

func (rw *responseWriter) finishWriteSpan() {
	span := rw.writeSpan
	if span == nil {
		return
	}
	span.SetAttributes(
		attribute.Int("http.response.status_code", rw.statusOrOK()),
		attribute.Int64("http.response.body.size", rw.bytes),
		attribute.Float64("http.server.write.block_seconds", rw.writeBlocked.Seconds()),
	)
	if rw.writeErr != nil {
		span.RecordError(rw.writeErr)
		span.SetStatus(codes.Error, rw.writeErr.Error())
	}
	span.End()
}

func (rw *responseWriter) statusOrOK() int {
	if rw.status == 0 {
		return http.StatusOK
	}
	return rw.status
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.ensureWriteSpan()
	rw.status = code
	defer rw.blocked(time.Now())
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.ensureWriteSpan()
	rw.status = rw.statusOrOK()
	defer rw.blocked(time.Now())

	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += int64(n)
	if rw.writeErr == nil {
		rw.writeErr = err
	}
	return n, err
}

func (rw *responseWriter) blocked(since time.Time) {
	rw.writeBlocked += time.Since(since)
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := rw.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, xerrors.New("response writer cannot be hijacked")
}
