package service

import (
	"context"
	"errors"

	"unique/internal/auth/models"
	"unique/internal/auth/secrets"
	id "unique/pkg/domain"
	dErrors "unique/pkg/domain-errors"
	"unique/pkg/platform/audit"
	"unique/pkg/platform/sentinel"
	"unique/pkg/requestcontext"
)

// Login checks the credentials posted by the login page and opens a browser
// session bound to the caller's IP and user agent. Unknown users, disabled
// users and wrong passwords all fail the same way.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (session *models.Session, err error) {
	ctx, span := s.startSpan(ctx, "auth.Login")
	defer func() { endSpan(span, err) }()

	req.Normalize()
	if req.Username == "" || req.Password == "" {
		return nil, dErrors.New(dErrors.CodeInvalidRequest, "username and password are required")
	}

	user, err := s.users.FindByCustomID(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, s.loginFailure(ctx, "", "unknown user")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if !user.IsEnable {
		return nil, s.loginFailure(ctx, user.ID.String(), "user is disabled")
	}
	if err := secrets.Verify(req.Password, user.PasswordHash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvalidClient) {
			return nil, s.loginFailure(ctx, user.ID.String(), "password mismatch")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify password")
	}

	now := requestcontext.Now(ctx)
	session = &models.Session{
		ID:        id.NewSessionID(),
		UserID:    user.ID,
		IP:        requestcontext.ClientIP(ctx),
		UserAgent: requestcontext.UserAgent(ctx),
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
		IsEnable:  true,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create session")
	}

	s.logAudit(ctx, audit.EventLoginSucceeded,
		"user_id", user.ID.String(),
		"decision", "granted",
	)
	return session, nil
}

func (s *Service) loginFailure(ctx context.Context, userID, reason string) error {
	s.logAudit(ctx, audit.EventLoginFailed,
		"user_id", userID,
		"decision", "denied",
		"reason", reason,
	)
	return dErrors.New(dErrors.CodeInvalidCredentials, "invalid credentials")
}
