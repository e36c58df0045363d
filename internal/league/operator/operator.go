package operator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"memebattles/internal/repository"
	tokenIssuer "memebattles/pkg/jwt"
)

var ErrIncorrectPassword error = errors.New("incorrect password")
var ErrOperatorNotFound error = errors.New("operator not found")

const sessionTTL = 24 * time.Hour

// Service authenticates the human operators driving the vault's direct
// payout lane and authorizes their session tokens.
type Service struct {
	logs *zap.SugaredLogger
	repo Repository
	jwt  JWTIssuer
}

func NewService(logs *zap.SugaredLogger, repo Repository, jwt JWTIssuer) *Service {
	return &Service{
		logs: logs,
		repo: repo,
		jwt:  jwt,
	}
}

// Authenticate checks operator credentials and returns a signed session token.
func (s *Service) Authenticate(ctx context.Context, name, password string) (string, error) {
	op, err := s.repo.OperatorByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrOperatorNotFound) {
			return "", ErrOperatorNotFound
		}
		return "", fmt.Errorf("get operator: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)); err != nil {
		return "", ErrIncorrectPassword
	}

	token := s.jwt.Generate(tokenIssuer.TokenInfo{
		Operator:   op.Name,
		Subject:    op.ID,
		Expiration: sessionTTL,
	})
	signed, err := s.jwt.Sign(token)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	s.logs.Infow("operator authenticated", "operator", op.Name)
	return signed, nil
}

// Authorize validates a session token and returns the operator name it was
// issued to.
func (s *Service) Authorize(token string) (string, error) {
	claims, err := s.jwt.Validate(token)
	if err != nil {
		return "", err
	}

	name, ok := claims["operator"].(string)
	if !ok || name == "" {
		return "", tokenIssuer.ErrTokenNotValid
	}
	return name, nil
}
