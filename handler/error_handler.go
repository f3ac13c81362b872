package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/bookshelf/pkg/logger"
	"github.com/dmitrymomot/bookshelf/pkg/requestid"
)

// ErrorPageParams is passed to the error page component.
type ErrorPageParams struct {
	StatusCode int
	Message    string
	RequestID  string
}

// ErrorToastParams is passed to the toast shown for failed DataStar actions.
type ErrorToastParams struct {
	Message   string
	Type      string // "warning" for 4xx, "error" for 5xx
	RequestID string
}

// Classifier maps a domain error to a status code and message key.
type Classifier func(err error) (status int, key string, ok bool)

type ErrorHandlerConfig struct {
	ErrorPage  func(ErrorPageParams) templ.Component
	ErrorToast func(ErrorToastParams) templ.Component
	// ToastTarget defaults to "#toasts".
	ToastTarget string
	// Classifiers are tried in order before HTTPError and ValidationError.
	Classifiers []Classifier
}

type errorInfo struct {
	status  int
	code    string
	message string
}

func (cfg ErrorHandlerConfig) classify(err error) errorInfo {
	info := errorInfo{status: ErrInternal.Code, code: ErrInternal.Key, message: ErrInternal.Key}

	for _, classify := range cfg.Classifiers {
		if status, key, ok := classify(err); ok {
			return errorInfo{status: status, code: key, message: key}
		}
	}

	var valErr ValidationError
	if errors.As(err, &valErr) {
		return errorInfo{status: http.StatusUnprocessableEntity, message: valErr.Error()}
	}
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return errorInfo{status: httpErr.Code, code: httpErr.Key, message: httpErr.Key}
	}
	return info
}

// NewErrorHandler returns the ErrorHandler shared by all routes. It logs 4xx
// at warn and 5xx at error, then answers with JSON for API clients, a toast
// for DataStar actions and an error page otherwise.
func NewErrorHandler(log *slog.Logger, cfg ErrorHandlerConfig) ErrorHandler[Context] {
	if log == nil {
		log = logger.Discard()
	}
	if cfg.ToastTarget == "" {
		cfg.ToastTarget = "#toasts"
	}
	log = log.With(logger.Component("error_handler"))

	return func(ctx Context, err error) {
		r := ctx.Request()
		w := ctx.ResponseWriter()
		reqID := requestid.FromContext(r.Context())
		info := cfg.classify(err)

		level := slog.LevelError
		if info.status < http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		log.LogAttrs(r.Context(), level, "request failed",
			logger.Error(err),
			logger.Status(info.status),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)

		var resp Response
		switch {
		case wantsJSON(r):
			resp = jsonError(info.status, info.code, err)
		case IsDataStar(r) && cfg.ErrorToast != nil:
			kind := "error"
			if info.status < http.StatusInternalServerError {
				kind = "warning"
			}
			resp = Templ(
				cfg.ErrorToast(ErrorToastParams{Message: info.message, Type: kind, RequestID: reqID}),
				WithTarget(cfg.ToastTarget),
				WithPatchMode(PatchPrepend),
			)
		case cfg.ErrorPage != nil:
			resp = TemplWithStatus(
				cfg.ErrorPage(ErrorPageParams{StatusCode: info.status, Message: info.message, RequestID: reqID}),
				info.status,
			)
		default:
			http.Error(w, info.message, info.status)
			return
		}

		if renderErr := resp.Render(w, r); renderErr != nil {
			log.ErrorContext(r.Context(), "failed to render error response", logger.Error(renderErr))
		}
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/") ||
		strings.Contains(r.Header.Get("Accept"), "application/json")
}
