// Package logger holds the process-wide zap logger of usersite together with
// the hooks that log the preview server's requests and the random-user API calls.
package logger

import (
	"errors"
	"net/http"
	"syscall"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

type responseData struct {
	status int
	size   int
}

type loggingResponseWriter struct {
	http.ResponseWriter
	responseData *responseData
}

// Log discards everything until Init is called.
var Log = zap.NewNop().Sugar()

func (r *loggingResponseWriter) Write(b []byte) (int, error) {
	if r.responseData.status == 0 {
		r.responseData.status = http.StatusOK
	}
	size, err := r.ResponseWriter.Write(b)
	r.responseData.size += size
	return size, err
}

func (r *loggingResponseWriter) WriteHeader(statusCode int) {
	r.ResponseWriter.WriteHeader(statusCode)
	r.responseData.status = statusCode
}

// Init replaces Log with a development logger at the configured level.
func Init(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = lvl
	zl, err := cfg.Build()
	if err != nil {
		return err
	}
	Log = zl.Sugar()

	return nil
}

// Sync flushes Log. Consoles and pipes cannot be fsynced; those errors are dropped.
func Sync() error {
	err := Log.Sync()
	if err == nil || errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) {
		return nil
	}

	return err
}

// WithLoggingHTTPMiddleware logs every request served from the output directory.
func WithLoggingHTTPMiddleware(h http.Handler) http.Handler {
	logFn := func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		responseData := &responseData{
			status: 0,
			size:   0,
		}
		lw := loggingResponseWriter{
			ResponseWriter: w,
			responseData:   responseData,
		}
		h.ServeHTTP(&lw, r)

		duration := time.Since(start)

		Log.Infoln(
			"uri", r.RequestURI,
			"method", r.Method,
			"status", responseData.status,
			"duration", duration,
			"size", responseData.size,
		)
	}

	return http.HandlerFunc(logFn)
}

// LogRestyRequest is a resty OnBeforeRequest hook logging outgoing calls.
func LogRestyRequest(_ *resty.Client, request *resty.Request) error {
	Log.Debugln(
		"outgoing request",
		"method", request.Method,
		"url", request.URL,
		"query", request.QueryParam.Encode(),
	)

	return nil
}

// LogRestyResponse is a resty OnAfterResponse hook logging the outcome of a call.
func LogRestyResponse(_ *resty.Client, response *resty.Response) error {
	Log.Debugln(
		"incoming response",
		"method", response.Request.Method,
		"url", response.Request.URL,
		"status", response.StatusCode(),
		"duration", response.Time(),
		"size", response.Size(),
	)

	return nil
}
