package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrPasswordTooShort   = errors.New("password too short")
)

// Token purposes. A token minted for one purpose never validates as another.
const (
	PurposeAccess = "access"
	PurposeVerify = "verify"
	PurposeReset  = "reset"
)

// Claims represents the JWT claims carried by an access token.
type Claims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Purpose  string `json:"purpose"`
	jwt.RegisteredClaims
}

// Service issues and validates tokens and hashes passwords.
type Service struct {
	jwtSecret         []byte
	accessTTL         time.Duration
	refreshTTL        time.Duration
	verifyTTL         time.Duration
	passwordMinLength int
}

// NewService creates a new auth service.
func NewService(jwtSecret string, accessTTL, refreshTTL, verifyTTL time.Duration, passwordMinLength int) *Service {
	return &Service{
		jwtSecret:         []byte(jwtSecret),
		accessTTL:         accessTTL,
		refreshTTL:        refreshTTL,
		verifyTTL:         verifyTTL,
		passwordMinLength: passwordMinLength,
	}
}

// HashPassword hashes a password with bcrypt.
func (s *Service) HashPassword(password string) (string, error) {
	if len(password) < s.passwordMinLength {
		return "", ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// VerifyPassword compares a password against its stored hash.
func (s *Service) VerifyPassword(hashedPassword, password string) error {
	if bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// GenerateToken creates a signed access token for the user.
func (s *Service) GenerateToken(userID uint, username string) (string, error) {
	return s.generate(userID, username, PurposeAccess, s.accessTTL)
}

// GenerateVerifyToken creates a signed email-verification token.
func (s *Service) GenerateVerifyToken(userID uint, username string) (string, error) {
	return s.generate(userID, username, PurposeVerify, s.verifyTTL)
}

// GenerateResetToken creates a signed password-reset token. Reset links
// expire after one hour regardless of the access token TTL.
func (s *Service) GenerateResetToken(userID uint, username string) (string, error) {
	return s.generate(userID, username, PurposeReset, time.Hour)
}

func (s *Service) generate(userID uint, username, purpose string, ttl time.Duration) (string, error) {
	claims := &Claims{
		UserID:   userID,
		Username: username,
		Purpose:  purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(s.jwtSecret)
}

// ValidateToken verifies a signed token and returns its claims. The token
// must have been minted for the given purpose.
func (s *Service) ValidateToken(tokenString, purpose string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}

		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Purpose != purpose {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// NewRefreshToken generates an opaque refresh token.
func (s *Service) NewRefreshToken() string {
	return uuid.NewString()
}

// RefreshTokenTTL returns the refresh token lifetime.
func (s *Service) RefreshTokenTTL() time.Duration {
	return s.refreshTTL
}
