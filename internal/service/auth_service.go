package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/creditai/pricing-service/internal/config"
)

// ErrInvalidCredentials is returned for any authentication failure so the
// response does not reveal which part was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// operatorTokenTTL bounds how long an issued operator token stays valid.
const operatorTokenTTL = 24 * time.Hour

// AuthService issues operator tokens for the protected ledger routes.
type AuthService struct {
	cfg *config.Config
	log *logrus.Logger
}

// NewAuthService creates the auth service.
func NewAuthService(cfg *config.Config, log *logrus.Logger) *AuthService {
	return &AuthService{cfg: cfg, log: log}
}

// Authenticate checks the operator credentials against the configured bcrypt
// hash and returns a signed HS256 token.
func (s *AuthService) Authenticate(username, password string) (string, error) {
	if s.cfg.OperatorPassHash == "" || username != s.cfg.OperatorUser {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.OperatorPassHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(operatorTokenTTL)),
	})
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	s.log.Infof("Issued operator token for %s", username)
	return signed, nil
}
