package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"moon-casino-backend/internal/config"
	"moon-casino-backend/internal/logger"
	"moon-casino-backend/internal/models"
)

// SessionService owns accounts, the single live session per user and
// presence. It never touches balances after the account is created.
type SessionService struct {
	redis *RedisService
	jwt   *JWTService
	cfg   *config.Config
	now   func() time.Time
}

func NewSessionService(redis *RedisService, jwt *JWTService, cfg *config.Config) *SessionService {
	return &SessionService{redis: redis, jwt: jwt, cfg: cfg, now: time.Now}
}

func (s *SessionService) WithClock(now func() time.Time) *SessionService {
	s.now = now
	return s
}

func (s *SessionService) Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	clientSeed, err := models.GenerateClientSeed()
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Email:        models.NormalizeEmail(req.Email),
		PasswordHash: string(hash),
		Balance:      s.cfg.Wallet.StartingBalance,
		CreatedAt:    s.now().UnixMilli(),
		ClientSeed:   clientSeed,
	}
	if err := s.redis.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	logger.Info("user signed up", "user_id", user.ID, "username", user.Username)
	return s.openSession(ctx, user)
}

func (s *SessionService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.redis.GetUserByEmail(ctx, req.Email)
	if errors.Is(err, models.ErrUserNotFound) {
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}

	return s.openSession(ctx, user)
}

// openSession replaces whatever session the user had; one login at a time.
func (s *SessionService) openSession(ctx context.Context, user *models.User) (*models.AuthResponse, error) {
	now := s.now()
	session := &models.Session{
		SessionID:    uuid.New().String(),
		UserID:       user.ID,
		CreatedAt:    now.UnixMilli(),
		LastActivity: now.UnixMilli(),
	}
	if err := s.redis.SaveSession(ctx, session, s.cfg.SessionTimeout); err != nil {
		return nil, err
	}

	token, expiresAt, err := s.jwt.GenerateToken(user.ID, session.SessionID, now)
	if err != nil {
		return nil, err
	}

	if err := s.redis.MarkOnline(ctx, user.Username, now); err != nil {
		logger.Warn("failed to mark user online", "user_id", user.ID, "error", err)
	}

	return &models.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt.UnixMilli(),
		User:      user.Profile(models.Presence{IsActive: true, LastSeen: now.UnixMilli()}),
	}, nil
}

// Validate checks that sessionID is the user's current session and still
// inside the session timeout, then refreshes its last activity.
func (s *SessionService) Validate(ctx context.Context, userID, sessionID string) error {
	session, err := s.redis.GetSession(ctx, userID)
	if err != nil {
		return err
	}
	if session.SessionID != sessionID {
		return models.ErrSessionInvalid
	}

	now := s.now()
	if now.Sub(time.UnixMilli(session.CreatedAt)) > s.cfg.SessionTimeout {
		return models.ErrSessionInvalid
	}
	return s.redis.TouchSession(ctx, userID, now)
}

func (s *SessionService) Heartbeat(ctx context.Context, userID string) (*models.Presence, error) {
	user, err := s.redis.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := s.redis.MarkOnline(ctx, user.Username, now); err != nil {
		return nil, err
	}
	return &models.Presence{IsActive: true, LastSeen: now.UnixMilli()}, nil
}

func (s *SessionService) Online(ctx context.Context) ([]string, error) {
	return s.redis.OnlineSince(ctx, s.now().Add(-s.cfg.ActivityTimeout))
}

func (s *SessionService) Presence(ctx context.Context, username string) (models.Presence, error) {
	lastSeen, err := s.redis.LastSeen(ctx, username)
	if err != nil {
		return models.Presence{}, err
	}
	cutoff := s.now().Add(-s.cfg.ActivityTimeout).UnixMilli()
	return models.Presence{IsActive: lastSeen >= cutoff && lastSeen > 0, LastSeen: lastSeen}, nil
}

func (s *SessionService) Profile(ctx context.Context, userID string) (*models.UserProfile, error) {
	user, err := s.redis.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	presence, err := s.Presence(ctx, user.Username)
	if err != nil {
		return nil, err
	}
	return user.Profile(presence), nil
}

func (s *SessionService) Logout(ctx context.Context, userID, sessionID string) error {
	session, err := s.redis.GetSession(ctx, userID)
	if err != nil {
		return err
	}
	if session.SessionID != sessionID {
		return models.ErrSessionInvalid
	}
	if err := s.redis.DeleteSession(ctx, userID); err != nil {
		return err
	}

	user, err := s.redis.GetUser(ctx, userID)
	if err == nil {
		if err := s.redis.MarkOffline(ctx, user.Username); err != nil {
			logger.Warn("failed to mark user offline", "user_id", userID, "error", err)
		}
	}
	return nil
}

func (s *SessionService) ValidateToken(token string) (*Claims, error) {
	return s.jwt.ValidateToken(token)
}
