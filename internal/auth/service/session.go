package service

import (
	"context"
	"errors"

	"unique/internal/auth/models"
	id "unique/pkg/domain"
	dErrors "unique/pkg/domain-errors"
	"unique/pkg/platform/audit"
	"unique/pkg/platform/sentinel"
	"unique/pkg/requestcontext"
)

// ActiveUser resolves the browser session to its user. Any missing, expired or
// disabled link in the chain yields login_required.
func (s *Service) ActiveUser(ctx context.Context, sessionID id.SessionID) (*models.Session, *models.User, error) {
	if sessionID.IsNil() {
		return nil, nil, dErrors.New(dErrors.CodeLoginRequired, "no session")
	}

	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, dErrors.New(dErrors.CodeLoginRequired, "session not found")
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
	}
	if !session.IsActive(requestcontext.Now(ctx)) {
		return nil, nil, dErrors.New(dErrors.CodeLoginRequired, "session expired")
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, dErrors.New(dErrors.CodeLoginRequired, "session user not found")
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if !user.IsEnable {
		return nil, nil, dErrors.New(dErrors.CodeLoginRequired, "user is disabled")
	}

	s.checkDeviceDrift(ctx, session)
	return session, user, nil
}

// checkDeviceDrift flags sessions used from a different browser or OS than
// the one that created them. It never rejects the request.
func (s *Service) checkDeviceDrift(ctx context.Context, session *models.Session) {
	if s.device == nil {
		return
	}
	stored := s.device.ComputeFingerprint(session.UserAgent)
	current := s.device.ComputeFingerprint(requestcontext.UserAgent(ctx))
	if _, drift := s.device.CompareFingerprints(stored, current); drift {
		s.logAudit(ctx, audit.EventDeviceDrift,
			"user_id", session.UserID.String(),
			"reason", "user agent changed since login",
		)
	}
}
