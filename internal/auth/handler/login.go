package handler

import (
	"net/http"
	"time"

	"unique/internal/auth/models"
	dErrors "unique/pkg/domain-errors"
	"unique/pkg/platform/httputil"
	"unique/pkg/requestcontext"
)

// LoginResponse acknowledges a login. The session ID only travels in the
// cookie.
type LoginResponse struct {
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}

// handleLogin serves POST /authentication, the login page's credential form.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	httputil.NoStore(w)

	if err := r.ParseForm(); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidRequest, "malformed form body"))
		return
	}
	session, err := h.auth.Login(ctx, models.LoginRequest{
		Username: r.PostForm.Get("username"),
		Password: r.PostForm.Get("password"),
	})
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.ErrorContext(ctx, "login failed",
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
		httputil.WriteError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.CookieNames[0],
		Value:    session.ID.String(),
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cfg.RequireTLS,
		SameSite: http.SameSiteLaxMode,
	})
	httputil.WriteJSON(w, http.StatusOK, LoginResponse{
		Message:   "authentication successful",
		ExpiresAt: session.ExpiresAt,
	})
}
