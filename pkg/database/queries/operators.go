package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/OldStager01/parksense/pkg/database"
)

var ErrOperatorNotFound = errors.New("operator not found")

type Operator struct {
	ID           int
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

type OperatorRepository struct {
	db *database.DB
}

func NewOperatorRepository(db *database.DB) *OperatorRepository {
	return &OperatorRepository{db: db}
}

func (r *OperatorRepository) GetByUsername(ctx context.Context, username string) (*Operator, error) {
	query := `SELECT id, username, password_hash, created_at FROM operators WHERE username = $1`

	var op Operator
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&op.ID,
		&op.Username,
		&op.PasswordHash,
		&op.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOperatorNotFound
	}
	if err != nil {
		return nil, err
	}

	return &op, nil
}

func (r *OperatorRepository) Create(ctx context.Context, username, passwordHash string) (*Operator, error) {
	query := `INSERT INTO operators (username, password_hash) VALUES ($1, $2) RETURNING id, created_at`

	op := Operator{Username: username, PasswordHash: passwordHash}
	err := r.db.QueryRowContext(ctx, query, username, passwordHash).Scan(&op.ID, &op.CreatedAt)
	if err != nil {
		return nil, err
	}

	return &op, nil
}
