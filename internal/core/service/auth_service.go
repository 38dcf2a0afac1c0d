package service

import (
	"context"
	"errors"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jobtracker/jobtracker-api/internal/api/metrics"
	"github.com/jobtracker/jobtracker-api/internal/core/domain"
	"github.com/jobtracker/jobtracker-api/internal/core/ports"
)

const (
	minPasswordLength = 8

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	defaultAccessTTL  = 5 * time.Minute
	defaultRefreshTTL = 24 * time.Hour
)

// AuthConfig holds token signing settings.
type AuthConfig struct {
	Secret        string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	RotateRefresh bool
}

// tokenClaims is the payload of both access and refresh tokens.
type tokenClaims struct {
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// AuthService implements registration and the token lifecycle.
type AuthService struct {
	users     ports.UserRepository
	blacklist ports.TokenBlacklist
	cfg       AuthConfig
	clock     clockwork.Clock
	log       zerolog.Logger
}

func NewAuthService(users ports.UserRepository, blacklist ports.TokenBlacklist, cfg AuthConfig, clock clockwork.Clock, log zerolog.Logger) *AuthService {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = defaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = defaultRefreshTTL
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &AuthService{
		users:     users,
		blacklist: blacklist,
		cfg:       cfg,
		clock:     clock,
		log:       log,
	}
}

// Register validates the request and creates an active account with role user.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.CreateUser(ctx, in, domain.RoleUser)
}

// CreateUser applies the registration rules and creates an active account
// with the given role. The operator CLI uses it to create staff accounts.
func (s *AuthService) CreateUser(ctx context.Context, in ports.RegisterInput, role string) (*domain.User, error) {
	if in.Username == "" || in.Password == "" {
		return nil, domain.ErrMissingCredentials
	}
	if utf8.RuneCountInString(in.Password) < minPasswordLength {
		return nil, domain.ErrPasswordTooShort
	}

	_, err := s.users.FindByUsername(ctx, in.Username)
	switch {
	case err == nil:
		return nil, domain.ErrUserExists
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, pkgerrors.Wrap(err, "register: lookup username")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "register: hash password")
	}

	now := s.clock.Now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		return nil, pkgerrors.Wrap(err, "register: create user")
	}

	metrics.UsersRegisteredTotal.Inc()
	s.log.Info().Str("username", created.Username).Int64("user_id", created.ID).Str("role", role).Msg("user registered")
	return created, nil
}

// ObtainToken exchanges credentials for an access/refresh pair. Unknown users,
// wrong passwords and inactive accounts all yield ErrInvalidCredentials.
func (s *AuthService) ObtainToken(ctx context.Context, username, password string) (*ports.TokenPair, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginFailuresTotal.WithLabelValues("unknown_user").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		return nil, pkgerrors.Wrap(err, "obtain token: lookup user")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.LoginFailuresTotal.WithLabelValues("bad_password").Inc()
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		metrics.LoginFailuresTotal.WithLabelValues("inactive").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	access, _, err := s.issue(user, tokenTypeAccess, s.cfg.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, _, err := s.issue(user, tokenTypeRefresh, s.cfg.RefreshTTL)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("username", user.Username).Msg("token issued")
	return &ports.TokenPair{Access: access, Refresh: refresh}, nil
}

// RefreshToken issues a new access token from a valid refresh token. With
// rotation enabled the presented token is revoked and a new one returned.
func (s *AuthService) RefreshToken(ctx context.Context, refresh string) (*ports.RefreshResult, error) {
	claims, err := s.parse(refresh, tokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}

	user, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	access, _, err := s.issue(user, tokenTypeAccess, s.cfg.AccessTTL)
	if err != nil {
		return nil, err
	}
	result := &ports.RefreshResult{Access: access}

	if s.cfg.RotateRefresh {
		if err := s.revoke(ctx, claims); err != nil {
			return nil, err
		}
		next, _, err := s.issue(user, tokenTypeRefresh, s.cfg.RefreshTTL)
		if err != nil {
			return nil, err
		}
		result.Refresh = next
	}

	return result, nil
}

// VerifyToken checks signature and expiry of either token type. Revoked
// refresh tokens fail verification.
func (s *AuthService) VerifyToken(ctx context.Context, token string) error {
	claims, err := s.parse(token, "")
	if err != nil {
		return err
	}
	if claims.TokenType == tokenTypeRefresh {
		return s.checkRevoked(ctx, claims)
	}
	return nil
}

// BlacklistToken revokes a refresh token until its natural expiry.
func (s *AuthService) BlacklistToken(ctx context.Context, refresh string) error {
	claims, err := s.parse(refresh, tokenTypeRefresh)
	if err != nil {
		return err
	}
	if err := s.revoke(ctx, claims); err != nil {
		return err
	}
	s.log.Info().Int64("user_id", claims.UserID).Str("jti", claims.ID).Msg("refresh token blacklisted")
	return nil
}

// Authenticate validates an access token and resolves the caller. The account
// must still exist and be active.
func (s *AuthService) Authenticate(ctx context.Context, access string) (domain.Identity, error) {
	claims, err := s.parse(access, tokenTypeAccess)
	if err != nil {
		return domain.Identity{}, err
	}
	user, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{UserID: user.ID, Username: user.Username, Role: user.Role}, nil
}

func (s *AuthService) activeUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, pkgerrors.Wrap(err, "load token user")
	}
	if !user.IsActive {
		return nil, domain.ErrInactiveUser
	}
	return user, nil
}

func (s *AuthService) checkRevoked(ctx context.Context, claims *tokenClaims) error {
	if s.blacklist == nil {
		return nil
	}
	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return pkgerrors.Wrap(err, "blacklist lookup")
	}
	if revoked {
		return domain.ErrTokenBlacklisted
	}
	return nil
}

func (s *AuthService) revoke(ctx context.Context, claims *tokenClaims) error {
	if s.blacklist == nil {
		return nil
	}
	if err := s.blacklist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return pkgerrors.Wrap(err, "blacklist token")
	}
	return nil
}

func (s *AuthService) issue(user *domain.User, tokenType string, ttl time.Duration) (string, *tokenClaims, error) {
	now := s.clock.Now()
	claims := &tokenClaims{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", nil, pkgerrors.Wrap(err, "sign token")
	}
	metrics.TokensIssuedTotal.WithLabelValues(tokenType).Inc()
	return signed, claims, nil
}

// parse validates signature, algorithm and expiry. An empty wantType accepts
// either token type.
func (s *AuthService) parse(raw, wantType string) (*tokenClaims, error) {
	if raw == "" {
		return nil, domain.ErrInvalidToken
	}

	claims := &tokenClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(s.cfg.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil || !tkn.Valid {
		return nil, domain.ErrInvalidToken
	}
	if wantType != "" && claims.TokenType != wantType {
		return nil, domain.ErrInvalidToken
	}
	if claims.ID == "" || claims.UserID == 0 {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}
