package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/step-challenge-api/internal/models"
	appErrors "github.com/noah-isme/step-challenge-api/pkg/errors"
)

// ErrDenied is returned by an Authenticator when credentials do not match.
var ErrDenied = errors.New("credentials denied")

// Authenticator decides whether admin credentials are authorised.
type Authenticator interface {
	Authenticate(ctx context.Context, credentials models.AdminCredentials) error
}

// CredentialAuthenticator checks a single configured admin account.
type CredentialAuthenticator struct {
	username     string
	passwordHash []byte
}

// NewCredentialAuthenticator builds an authenticator from a bcrypt hash, or hashes
// password when no hash is configured.
func NewCredentialAuthenticator(username, password, passwordHash string) (*CredentialAuthenticator, error) {
	if username == "" {
		return nil, fmt.Errorf("admin username is required")
	}
	hash := []byte(passwordHash)
	if len(hash) == 0 {
		if password == "" {
			return nil, fmt.Errorf("admin password or password hash is required")
		}
		generated, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
		hash = generated
	} else if _, err := bcrypt.Cost(hash); err != nil {
		return nil, fmt.Errorf("invalid admin password hash: %w", err)
	}
	return &CredentialAuthenticator{username: username, passwordHash: hash}, nil
}

// Authenticate implements Authenticator.
func (a *CredentialAuthenticator) Authenticate(_ context.Context, credentials models.AdminCredentials) error {
	usernameOK := subtle.ConstantTimeCompare([]byte(credentials.Username), []byte(a.username)) == 1
	passwordErr := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(credentials.Password))
	if !usernameOK || passwordErr != nil {
		return ErrDenied
	}
	return nil
}

// AuthConfig defines token issuing parameters.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
}

// AuthService signs admins in and validates their tokens.
type AuthService struct {
	authenticator Authenticator
	validator     *validator.Validate
	logger        *zap.Logger
	config        AuthConfig
	now           func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(authenticator Authenticator, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 8 * time.Hour
	}
	return &AuthService{authenticator: authenticator, validator: validate, logger: logger, config: config, now: time.Now}
}

// Login authenticates the admin and issues an access token.
func (s *AuthService) Login(ctx context.Context, credentials models.AdminCredentials) (*models.AdminSession, error) {
	if err := s.validator.Struct(credentials); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "username and password are required")
	}

	if err := s.authenticator.Authenticate(ctx, credentials); err != nil {
		if errors.Is(err, ErrDenied) {
			s.logger.Warn("admin sign-in denied", zap.String("username", credentials.Username))
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to authenticate")
	}

	issuedAt := s.now().UTC()
	token, err := s.generateAccessToken(credentials.Username, issuedAt)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	s.logger.Info("admin signed in", zap.String("username", credentials.Username))
	return &models.AdminSession{
		AccessToken: token,
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
		IssuedAt:    issuedAt,
		Username:    credentials.Username,
	}, nil
}

// ValidateToken parses and validates a JWT token string.
func (s *AuthService) ValidateToken(tokenString string) (*models.AdminClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.AdminClaims)
	if !ok || !token.Valid || claims.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

func (s *AuthService) generateAccessToken(username string, issuedAt time.Time) (string, error) {
	claims := &models.AdminClaims{
		Username: username,
		Role:     models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.config.Issuer,
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.AccessTokenSecret))
}
