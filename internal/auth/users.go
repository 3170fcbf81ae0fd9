package auth

import (
	"context"
	"errors"

	"github.com/OldStager01/parksense/pkg/database/queries"
)

type User struct {
	ID       int
	Username string
}

// OperatorLookup finds persisted operator accounts.
type OperatorLookup interface {
	GetByUsername(ctx context.Context, username string) (*queries.Operator, error)
}

// UserStore authenticates the configured admin and, when a database is
// available, persisted operators.
type UserStore struct {
	adminUsername     string
	adminPasswordHash string
	operators         OperatorLookup
}

func NewUserStore(adminUsername, adminPasswordHash string, operators OperatorLookup) *UserStore {
	return &UserStore{
		adminUsername:     adminUsername,
		adminPasswordHash: adminPasswordHash,
		operators:         operators,
	}
}

func (s *UserStore) Authenticate(ctx context.Context, username, password string) (*User, error) {
	if s.adminPasswordHash != "" && username == s.adminUsername {
		if !CheckPassword(password, s.adminPasswordHash) {
			return nil, ErrInvalidCredentials
		}
		return &User{ID: 0, Username: username}, nil
	}

	if s.operators == nil {
		return nil, ErrInvalidCredentials
	}

	op, err := s.operators.GetByUsername(ctx, username)
	if errors.Is(err, queries.ErrOperatorNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !CheckPassword(password, op.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return &User{ID: op.ID, Username: op.Username}, nil
}
