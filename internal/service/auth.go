package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/auth_service/internal/apperr"
	"github.com/Skotchmaster/auth_service/internal/hash"
	"github.com/Skotchmaster/auth_service/internal/logging"
	"github.com/Skotchmaster/auth_service/internal/models"
	"github.com/Skotchmaster/auth_service/internal/repo"
	"github.com/Skotchmaster/auth_service/internal/session"
	"github.com/Skotchmaster/auth_service/internal/tokens"
)

const userEventsTopic = "user_events"

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event interface{}) error
}

// AuthService owns the session lifecycle: login issues a token pair and
// registers the refresh token in the subject's live set, refresh rotates
// it, and a refresh token presented twice wipes the whole set.
type AuthService struct {
	Repo     *repo.UserRepo
	Sessions session.Store
	Codec    *tokens.Codec
	Events   EventPublisher

	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type LoginResult struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

func foldEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	email := foldEmail(in.Email)
	taken, err := s.Repo.ActiveEmailTaken(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("email lookup: %w", err)
	}
	if taken {
		l.Warn("register rejected", "reason", "duplicate email")
		return nil, apperr.Conflict("this email has already been used")
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: pwHash,
		Role:         models.RoleUser,
		IsActive:     true,
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	l.Info("user registered", "user_id", user.ID)
	s.publish(ctx, user.ID.String(), map[string]interface{}{
		"type":   "user_registered",
		"userID": user.ID.String(),
		"email":  user.Email,
	})

	return user, nil
}

// Login exchanges credentials for a token pair. A stale refresh token
// from a previous session on the same device is evicted from the set so
// repeated logins on one browser do not grow it, while other devices'
// tokens stay untouched.
func (s *AuthService) Login(ctx context.Context, email, password, staleToken string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Repo.FindActiveByEmail(ctx, foldEmail(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("login failed", "reason", "unknown email")
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("user lookup: %w", err)
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login failed", "reason", "incorrect credentials", "user_id", user.ID)
		return nil, apperr.Unauthorized("incorrect credentials")
	}

	res, err := s.issueSession(ctx, user, staleToken)
	if err != nil {
		return nil, err
	}

	l.Info("login successful", "user_id", user.ID)
	s.publish(ctx, user.ID.String(), map[string]interface{}{
		"type":   "user_logged_in",
		"userID": user.ID.String(),
		"email":  user.Email,
	})

	return res, nil
}

// Refresh consumes the presented token and mints a successor. The SREM
// on the live set is the linearization point: of two concurrent calls
// with the same token exactly one observes it present, the other lands
// in the reuse branch and the whole set is revoked. That can log out a
// legitimate racing device; accepted in exchange for theft containment.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := s.Codec.ParseRefreshLax(rawToken)
	if err != nil {
		// No verifiable subject, so no victim to contain. Just reject.
		l.Warn("refresh rejected", "reason", "unverifiable token")
		return nil, apperr.Forbidden("forbidden")
	}
	subject := claims.Subject
	uid, err := uuid.Parse(subject)
	if err != nil {
		l.Warn("refresh rejected", "reason", "malformed subject")
		return nil, apperr.Forbidden("forbidden")
	}

	removed, err := s.Sessions.Remove(ctx, subject, rawToken)
	if err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}
	if !removed {
		// The token verifies but is not live: it was already rotated
		// out (or never issued), so someone is replaying it. Revoke
		// every session this subject has.
		if err := s.Sessions.Clear(ctx, subject); err != nil {
			return nil, fmt.Errorf("session store: %w", err)
		}
		l.Warn("refresh token reuse detected", "user_id", subject)
		s.publish(ctx, subject, map[string]interface{}{
			"type":   "session_revoked",
			"userID": subject,
			"reason": "refresh token reuse",
		})
		return nil, apperr.Forbidden("forbidden")
	}

	// The token was live and is now consumed. If it expired in the set
	// the removal stands; the client has to log in again.
	if claims.Expired() {
		l.Warn("refresh rejected", "reason", "token expired", "user_id", subject)
		return nil, apperr.Unauthorized("token expired")
	}

	user, err := s.Repo.FindActiveByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.Unauthorized("incorrect credentials")
		}
		return nil, fmt.Errorf("user lookup: %w", err)
	}

	return s.issueSession(ctx, user, "")
}

// Logout reports whether a live token was actually removed. An unknown
// or unverifiable token is treated as already logged out.
func (s *AuthService) Logout(ctx context.Context, rawToken string) (bool, error) {
	l := logging.FromContext(ctx).With("svc", "auth.logout")

	claims, err := s.Codec.ParseRefreshLax(rawToken)
	if err != nil {
		return false, nil
	}
	subject := claims.Subject

	removed, err := s.Sessions.Remove(ctx, subject, rawToken)
	if err != nil {
		return false, fmt.Errorf("session store: %w", err)
	}
	if removed {
		// An emptied set must not linger under its sliding TTL.
		if n, err := s.Sessions.Count(ctx, subject); err == nil && n == 0 {
			if err := s.Sessions.Clear(ctx, subject); err != nil {
				l.Warn("session clear failed", "user_id", subject, "error", err)
			}
		}
		l.Info("logout", "user_id", subject)
	}

	return removed, nil
}

func (s *AuthService) issueSession(ctx context.Context, user *models.User, staleToken string) (*LoginResult, error) {
	now := time.Now()
	accessExp := now.Add(s.AccessTTL)
	refreshExp := now.Add(s.RefreshTTL)

	accessToken, err := s.Codec.SignAccess(user.ID.String(), user.Role, accessExp)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refreshToken, err := s.Codec.SignRefresh(user.ID.String(), user.Role, refreshExp)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	// Supersede the stale token before the new one becomes honorable.
	if staleToken != "" {
		if _, err := s.Sessions.Remove(ctx, user.ID.String(), staleToken); err != nil {
			return nil, fmt.Errorf("session store: %w", err)
		}
	}
	if err := s.Sessions.Add(ctx, user.ID.String(), refreshToken, s.RefreshTTL); err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}

	return &LoginResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
	}, nil
}

func (s *AuthService) publish(ctx context.Context, key string, event map[string]interface{}) {
	if s.Events == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Events.PublishEvent(pubCtx, userEventsTopic, key, event); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "error", err)
	}
}
