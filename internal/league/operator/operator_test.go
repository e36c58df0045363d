package operator_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"memebattles/internal/league/operator"
	"memebattles/internal/repository"
	tokenIssuer "memebattles/pkg/jwt"
)

type stubRepository struct {
	operators map[string]repository.Operator
}

func (s *stubRepository) OperatorByName(ctx context.Context, name string) (repository.Operator, error) {
	op, ok := s.operators[name]
	if !ok {
		return repository.Operator{}, repository.ErrOperatorNotFound
	}
	return op, nil
}

var _ = Describe("Service", func() {
	const password = "hunter2-but-longer"

	var (
		repo    *stubRepository
		service *operator.Service
		ctx     context.Context
	)

	BeforeEach(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())

		repo = &stubRepository{operators: map[string]repository.Operator{
			"treasurer": {
				ID:           "op-1",
				Name:         "treasurer",
				PasswordHash: string(hash),
			},
		}}
		service = operator.NewService(zap.NewNop().Sugar(), repo, tokenIssuer.NewJWTService([]byte("test-secret")))
		ctx = context.Background()
	})

	Describe("Authenticate", func() {
		It("returns a signed session token for valid credentials", func() {
			token, err := service.Authenticate(ctx, "treasurer", password)

			Expect(err).NotTo(HaveOccurred())
			Expect(token).NotTo(BeEmpty())

			name, err := service.Authorize(token)
			Expect(err).NotTo(HaveOccurred())
			Expect(name).To(Equal("treasurer"))
		})

		It("rejects an unknown operator", func() {
			_, err := service.Authenticate(ctx, "intern", password)

			Expect(err).To(MatchError(operator.ErrOperatorNotFound))
		})

		It("rejects a wrong password", func() {
			_, err := service.Authenticate(ctx, "treasurer", "wrong")

			Expect(err).To(MatchError(operator.ErrIncorrectPassword))
		})
	})

	Describe("Authorize", func() {
		It("rejects a token signed with another secret", func() {
			other := operator.NewService(zap.NewNop().Sugar(), repo, tokenIssuer.NewJWTService([]byte("other-secret")))
			token, err := other.Authenticate(ctx, "treasurer", password)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Authorize(token)
			Expect(err).To(MatchError(tokenIssuer.ErrTokenNotValid))
		})

		It("rejects garbage", func() {
			_, err := service.Authorize("not.a.token")

			Expect(errors.Is(err, tokenIssuer.ErrTokenNotValid)).To(BeTrue())
		})
	})
})
