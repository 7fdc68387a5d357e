package http

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// заголовок с идентификатором запроса
const requestIDHeader = "X-Request-Id"

// statusResponseWriter захватывает статус-код ответа
type statusResponseWriter struct {
	http.ResponseWriter
	status int
}

// WriteHeader сохраняет статус и вызывает оригинальный WriteHeader
func (w *statusResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware пишет в лог строку на каждый запрос и логирует панику.
// Запросу без X-Request-Id присваивается новый идентификатор, он же возвращается в ответе.
// При logger == nil используется стандартный логгер.
func LoggingMiddleware(logger *log.Logger) mux.MiddlewareFunc {
	if logger == nil {
		logger = log.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := r.Header.Get(requestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
				r.Header.Set(requestIDHeader, reqID)
			}
			w.Header().Set(requestIDHeader, reqID)
			srw := &statusResponseWriter{ResponseWriter: w, status: http.StatusOK}
			defer func() {
				if rec := recover(); rec != nil {
					dur := time.Since(start).Milliseconds()
					logger.Printf("PANIC %s %s 500 %dms [%s]: %v", r.Method, r.URL.Path, dur, reqID, rec)
					panic(rec)
				}
			}()
			next.ServeHTTP(srw, r)
			dur := time.Since(start).Milliseconds()
			logger.Printf("%s %s %d %dms [%s]", r.Method, r.URL.Path, srw.status, dur, reqID)
		})
	}
}
