// Package http exposes the dashboard API.
//
// Mutating handlers answer with JSON and an X-Notification header that the
// client turns into a toast.
package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"outreach/internal/auth"
	"outreach/internal/core"
	"outreach/internal/log"
)

// NotificationHeader carries the toast for a response.
const NotificationHeader = "X-Notification"

// NotificationType represents the type of notification to display.
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationWarning NotificationType = "warning"
	NotificationInfo    NotificationType = "info"
)

// Duration is how long the toast stays on screen, in milliseconds.
func (t NotificationType) Duration() int {
	switch t {
	case NotificationError, NotificationWarning:
		return 5000
	default:
		return 3000
	}
}

// Notification is the JSON payload of the X-Notification header.
type Notification struct {
	Type     NotificationType `json:"type"`
	Title    string           `json:"title"`
	Message  string           `json:"message"`
	Duration int              `json:"duration"`
}

// ResponseBuilder provides a fluent API for JSON responses with an
// optional toast.
type ResponseBuilder struct {
	statusCode   int
	body         any
	headers      map[string]string
	notification *Notification
}

func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{statusCode: http.StatusOK, headers: make(map[string]string)}
}

func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

// JSON sets the value encoded as the response body.
func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	b.body = v
	return b
}

func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// Notify attaches a toast with the default duration for its type.
func (b *ResponseBuilder) Notify(t NotificationType, title, message string) *ResponseBuilder {
	b.notification = &Notification{Type: t, Title: title, Message: message, Duration: t.Duration()}
	return b
}

func (b *ResponseBuilder) Success(title, message string) *ResponseBuilder {
	return b.Notify(NotificationSuccess, title, message)
}

func (b *ResponseBuilder) Error(title, message string) *ResponseBuilder {
	return b.Notify(NotificationError, title, message)
}

func (b *ResponseBuilder) Warning(title, message string) *ResponseBuilder {
	return b.Notify(NotificationWarning, title, message)
}

func (b *ResponseBuilder) Info(title, message string) *ResponseBuilder {
	return b.Notify(NotificationInfo, title, message)
}

// Write sends the built response. The header value is URL-escaped JSON
// so that Korean text survives header encoding.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.notification != nil {
		if raw, err := json.Marshal(b.notification); err == nil {
			w.Header().Set(NotificationHeader, url.PathEscape(string(raw)))
		}
	}
	if b.body == nil {
		w.WriteHeader(b.statusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	_ = json.NewEncoder(w).Encode(b.body)
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields []core.FieldError `json:"fields,omitempty"`
}

const networkFailureMessage = "작업에 실패했습니다. 네트워크를 확인해주세요."

// ErrorResponse maps err to a status and an error toast titled title.
// Validation problems become 422, missing records 404, auth failures
// 401, and anything else a logged 500.
func ErrorResponse(r *http.Request, err error, title string) *ResponseBuilder {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		msg := "필수 항목을 모두 입력해주세요"
		if len(ve.Fields) > 0 {
			msg = ve.Fields[0].Message
		}
		return NewResponse().Status(http.StatusUnprocessableEntity).
			JSON(errorBody{Error: ve.Error(), Fields: ve.Fields}).
			Error("입력 오류", msg)
	case errors.Is(err, core.ErrNotFound):
		return NewResponse().Status(http.StatusNotFound).
			JSON(errorBody{Error: "not found"}).
			Error(title, "항목을 찾을 수 없습니다")
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrNoSession):
		return NewResponse().Status(http.StatusUnauthorized).
			JSON(errorBody{Error: err.Error()}).
			Error("인증 실패", err.Error())
	}

	log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
		log.FieldError, err, log.FieldPath, r.URL.Path)
	return NewResponse().Status(http.StatusInternalServerError).
		JSON(errorBody{Error: "internal error"}).
		Error(title, networkFailureMessage)
}

// BadRequest is used for bodies or parameters that cannot be decoded.
func BadRequest(message string) *ResponseBuilder {
	return NewResponse().Status(http.StatusBadRequest).
		JSON(errorBody{Error: message}).
		Error("입력 오류", message)
}
