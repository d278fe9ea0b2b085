package services

import (
	"context"
	"errors"

	"github.com/travel-point/api-go/repository"
)

// InterestProvider supplies the stored interests of a user.
type InterestProvider interface {
	UserInterests(ctx context.Context, userID uint) ([]string, error)
}

type userInterestReader interface {
	Interests(ctx context.Context, userID uint) ([]string, error)
}

// StoredInterests reads users.interests. Unknown users have no interests.
type StoredInterests struct {
	users userInterestReader
}

func NewStoredInterests(users userInterestReader) *StoredInterests {
	return &StoredInterests{users: users}
}

func (s *StoredInterests) UserInterests(ctx context.Context, userID uint) ([]string, error) {
	interests, err := s.users.Interests(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, nil
	}
	return interests, err
}

// StaticInterests serves fixed profiles, falling back to Fallback for any
// user without one.
type StaticInterests struct {
	Profiles map[uint][]string
	Fallback []string
}

func (s StaticInterests) UserInterests(_ context.Context, userID uint) ([]string, error) {
	if p, ok := s.Profiles[userID]; ok {
		return p, nil
	}
	return s.Fallback, nil
}
