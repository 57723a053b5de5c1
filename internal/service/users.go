package service

import (
	"context"
	"strings"

	"github.com/foxfund/foxfund-go/internal/domain"
	"github.com/foxfund/foxfund-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var userTracer = otel.Tracer("service/users")

const (
	minSearchQueryLength = 2
	searchResultLimit    = 10
)

// UserService handles user lookups for the sharing flow.
type UserService struct {
	store  port.Store
	logger *zap.Logger
}

// NewUserService creates a new user service.
func NewUserService(store port.Store, logger *zap.Logger) *UserService {
	return &UserService{store: store, logger: logger}
}

// Search finds users to share with by name or email. Queries shorter than
// two characters return nothing rather than an error, and the searching
// user is never in the results.
func (s *UserService) Search(ctx context.Context, actorID, query string) ([]domain.UserRef, error) {
	ctx, span := userTracer.Start(ctx, "UserService.Search")
	defer span.End()

	query = strings.TrimSpace(query)
	if len(query) < minSearchQueryLength {
		return []domain.UserRef{}, nil
	}

	users, err := s.store.SearchUsers(ctx, query, actorID, searchResultLimit)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.UserRef{}
	}
	return users, nil
}
