package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	authdomain "github.com/mzotova/threadline/internal/auth/domain"
	authrepo "github.com/mzotova/threadline/internal/auth/repository"
	"github.com/mzotova/threadline/internal/common/clock"
	commoncrypto "github.com/mzotova/threadline/internal/common/crypto"
	commonerrors "github.com/mzotova/threadline/internal/common/errors"
	"github.com/mzotova/threadline/internal/common/logger"
	"github.com/mzotova/threadline/internal/observability/metrics"
	userdomain "github.com/mzotova/threadline/internal/user/domain"
	userrepo "github.com/mzotova/threadline/internal/user/repository"
)

type AuthService struct {
	repo        userrepo.Repository
	sessions    authrepo.SessionRepository
	hasher      commoncrypto.PasswordHasher
	idGenerator commoncrypto.IDGenerator
	clock       clock.Clock
	log         *logger.Logger
	validate    *validator.Validate

	secret      []byte
	sessionTTL  time.Duration
	maxSessions int
}

type AuthServiceDeps struct {
	Repo        userrepo.Repository
	Sessions    authrepo.SessionRepository
	Hasher      commoncrypto.PasswordHasher
	IDGenerator commoncrypto.IDGenerator
	Clock       clock.Clock
	Log         *logger.Logger
}

type AuthServiceConfig struct {
	SessionSecret      string
	SessionTTL         time.Duration
	MaxSessionsPerUser int
}

func NewAuthService(deps AuthServiceDeps, cfg AuthServiceConfig) *AuthService {
	c := deps.Clock
	if c == nil {
		c = clock.NewRealClock()
	}

	return &AuthService{
		repo:        deps.Repo,
		sessions:    deps.Sessions,
		hasher:      deps.Hasher,
		idGenerator: deps.IDGenerator,
		clock:       c,
		log:         deps.Log,
		validate:    newCredentialValidator(),
		secret:      []byte(cfg.SessionSecret),
		sessionTTL:  cfg.SessionTTL,
		maxSessions: cfg.MaxSessionsPerUser,
	}
}

type RegisterInput struct {
	Username string
	Password string
}

type LoginInput struct {
	Username string
	Password string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (userdomain.User, error) {
	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "register_attempt",
	}).Info("register attempt")

	if err := s.validateCredentials(input.Username, input.Password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_validation_failed",
		}).Warnf("register validation failed: %v", err)
		return userdomain.User{}, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_hash_failed",
		}).Errorf("register failed: password hash error: %v", err)
		return userdomain.User{}, err
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_id_generation_failed",
		}).Errorf("register failed: id generation error: %v", err)
		return userdomain.User{}, err
	}

	user := userdomain.User{
		ID:           userdomain.ID(id),
		Username:     input.Username,
		PasswordHash: hash,
		CreatedAt:    s.clock.Now(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, userrepo.ErrUsernameAlreadyExists) {
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "register_username_exists",
			}).Warn("register failed: already exists")
			return userdomain.User{}, ErrUsernameTaken
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_create_failed",
		}).Errorf("register failed: %v", err)
		return userdomain.User{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"username": user.Username,
		"user_id":  string(user.ID),
		"action":   "register_success",
	}).Info("register success")

	metrics.RegistrationsTotal.Inc()

	user.PasswordHash = ""
	return user, nil
}

// Login reports the same error for an unknown username and for a wrong
// password so the surface cannot be used for username enumeration.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (authdomain.Session, userdomain.User, error) {
	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "login_attempt",
	}).Info("login attempt")

	user, err := s.repo.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "login_user_not_found",
			}).Warn("login failed: not found")
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			return authdomain.Session{}, userdomain.User{}, ErrInvalidCredentials
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "login_fetch_failed",
		}).Errorf("login failed: %v", err)
		return authdomain.Session{}, userdomain.User{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, input.Password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "login_invalid_password",
		}).Warn("login failed: invalid password")
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return authdomain.Session{}, userdomain.User{}, ErrInvalidCredentials
	}

	session, err := s.issueSession(ctx, user)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"user_id":  string(user.ID),
			"action":   "login_session_issue_failed",
		}).Errorf("login failed: session issue error: %v", err)
		return authdomain.Session{}, userdomain.User{}, err
	}

	s.log.WithFields(ctx, logger.Fields{
		"username": user.Username,
		"user_id":  string(user.ID),
		"action":   "login_success",
	}).Info("login success")

	metrics.LoginsTotal.WithLabelValues("success").Inc()

	user.PasswordHash = ""
	return session, user, nil
}

// Logout is idempotent: revoking an unknown or already-revoked token is not
// an error.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}

	hash := hashSessionToken(s.secret, rawToken)

	if err := s.sessions.DeleteByTokenHash(ctx, hash); err != nil {
		if errors.Is(err, authrepo.ErrSessionNotFound) {
			return nil
		}
		s.log.WithFields(ctx, logger.Fields{
			"action": "logout_delete_failed",
		}).Errorf("logout failed: %v", err)
		return commonerrors.ErrDatabaseError.WithCause(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"action": "logout_success",
	}).Info("session revoked")

	metrics.SessionsRevoked.Inc()

	return nil
}

// CurrentPrincipal resolves a session token to its owning user. An absent,
// expired, or orphaned session yields ok=false rather than an error; the
// caller decides whether to reject the request.
func (s *AuthService) CurrentPrincipal(ctx context.Context, rawToken string) (userdomain.User, bool, error) {
	if rawToken == "" {
		return userdomain.User{}, false, nil
	}

	hash := hashSessionToken(s.secret, rawToken)

	session, err := s.sessions.FindByTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, authrepo.ErrSessionNotFound) {
			return userdomain.User{}, false, nil
		}
		return userdomain.User{}, false, commonerrors.ErrDatabaseError.WithCause(err)
	}

	if session.ExpiredAt(s.clock.Now()) {
		metrics.SessionsExpired.Inc()
		if err := s.sessions.DeleteByTokenHash(ctx, hash); err != nil && !errors.Is(err, authrepo.ErrSessionNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"user_id": session.UserID,
				"action":  "session_delete_expired_failed",
			}).Errorf("failed to delete expired session: %v", err)
		}
		return userdomain.User{}, false, nil
	}

	user, err := s.repo.FindByID(ctx, userdomain.ID(session.UserID))
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"user_id": session.UserID,
				"action":  "session_orphaned",
			}).Warn("session points at missing user")
			return userdomain.User{}, false, nil
		}
		return userdomain.User{}, false, commonerrors.ErrDatabaseError.WithCause(err)
	}

	user.PasswordHash = ""
	return user, true, nil
}

func (s *AuthService) issueSession(ctx context.Context, user userdomain.User) (authdomain.Session, error) {
	count, err := s.sessions.CountByUserID(ctx, string(user.ID))
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(user.ID),
			"action":  "count_sessions_failed",
		}).Errorf("failed to count sessions: %v", err)
		return authdomain.Session{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	if count >= s.maxSessions {
		if err := s.sessions.DeleteOldestByUserID(ctx, string(user.ID)); err != nil {
			s.log.WithFields(ctx, logger.Fields{
				"user_id": string(user.ID),
				"action":  "delete_oldest_session_failed",
			}).Warnf("failed to delete oldest session: %v", err)
		}
	}

	rawToken, err := generateSessionToken()
	if err != nil {
		return authdomain.Session{}, err
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		return authdomain.Session{}, err
	}

	now := s.clock.Now()
	stored := authdomain.Session{
		ID:        id,
		TokenHash: hashSessionToken(s.secret, rawToken),
		UserID:    string(user.ID),
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	}

	if err := s.sessions.Create(ctx, stored); err != nil {
		return authdomain.Session{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	metrics.SessionsIssued.Inc()

	stored.RawToken = rawToken
	return stored, nil
}
