package http

import (
	"context"
	"errors"
	"net/http"

	"outreach/internal/auth"
	"outreach/internal/core"
	"outreach/internal/log"
)

type sessionKey struct{}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type passwordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type sessionResponse struct {
	Username string `json:"username"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequest(err.Error()).Write(w)
		return
	}
	if err := s.deps.Auth.Login(r.Context(), req.Username, req.Password); err != nil {
		ErrorResponse(r, err, "로그인 실패").Write(w)
		return
	}
	if err := s.deps.Sessions.Issue(w); err != nil {
		ErrorResponse(r, err, "로그인 실패").Write(w)
		return
	}
	NewResponse().JSON(sessionResponse{Username: core.AdminUsername}).Write(w)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.deps.Sessions.Clear(w)
	NewResponse().Status(http.StatusNoContent).Info("로그아웃", "로그아웃되었습니다").Write(w)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	user, _ := r.Context().Value(sessionKey{}).(string)
	NewResponse().JSON(sessionResponse{Username: user}).Write(w)
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequest(err.Error()).Write(w)
		return
	}
	err := s.deps.Auth.ChangePassword(r.Context(), req.CurrentPassword, req.NewPassword, req.ConfirmPassword)
	switch {
	case err == nil:
		NewResponse().Status(http.StatusNoContent).
			Success("변경 완료", "비밀번호가 변경되었습니다").
			Write(w)
	case errors.Is(err, auth.ErrInvalidCredentials):
		// A wrong current password must not end the session.
		ErrorResponse(r, core.NewValidationError("currentPassword", "현재 비밀번호가 올바르지 않습니다"), "변경 실패").Write(w)
	case errors.Is(err, auth.ErrPasswordTooShort), errors.Is(err, auth.ErrPasswordTooLong):
		ErrorResponse(r, core.NewValidationError("newPassword", err.Error()), "변경 실패").Write(w)
	case errors.Is(err, auth.ErrPasswordMismatch):
		ErrorResponse(r, core.NewValidationError("confirmPassword", err.Error()), "변경 실패").Write(w)
	default:
		ErrorResponse(r, err, "변경 실패").Write(w)
	}
}

// requireSession rejects requests without a valid session cookie.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := s.deps.Sessions.Verify(r)
		if err != nil {
			log.FromContext(r.Context()).DebugContext(r.Context(), "Session rejected", log.FieldError, err)
			ErrorResponse(r, auth.ErrNoSession, "인증 필요").Write(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, user)))
	})
}
