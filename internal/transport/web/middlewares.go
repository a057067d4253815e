package web

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}

	return r.URL.Path
}

// traceMiddleware opens a server span per request. The access log reads the trace id from it.
func (s *Server) traceMiddleware() func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := s.tracer.Start(
				r.Context(),
				r.Method+" "+routeName(r),
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.method", r.Method),
					attribute.String("http.target", r.URL.Path),
				),
			)
			defer span.End()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (s *Server) loggerMiddleware() func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return handlers.CustomLoggingHandler(io.Discard, next, func(_ io.Writer, p handlers.LogFormatterParams) {
			sc := trace.SpanContextFromContext(p.Request.Context())

			var traceID string

			if spanTraceID := uuid.UUID(sc.TraceID()); spanTraceID != uuid.Nil {
				traceID = spanTraceID.String()
			}

			if p.StatusCode >= http.StatusInternalServerError {
				trace.SpanFromContext(p.Request.Context()).SetStatus(codes.Error, http.StatusText(p.StatusCode))
			}

			s.l.LogInfo(
				"type: access, method: %s, url: %s, status: %d, size: %d, proto: %s, userAgent: %s, traceID: %s, latency: %s",
				p.Request.Method,
				p.URL.Path,
				p.StatusCode,
				p.Size,
				p.Request.Proto,
				p.Request.Header.Get("User-Agent"),
				traceID,
				time.Since(p.TimeStamp),
			)
		})
	}
}

func (s *Server) recoverMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if re := recover(); re != nil {
					err, ok := re.(error)
					if !ok {
						err = fmt.Errorf("%v: %w", re, ErrPanic)
					}
					s.l.LogErrorf("type: panic, error: %v\n", err)
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
