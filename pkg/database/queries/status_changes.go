package queries

import (
	"context"
	"time"

	"github.com/OldStager01/parksense/pkg/database"
	"github.com/OldStager01/parksense/pkg/models"
)

type StatusChangeRepository struct {
	db *database.DB
}

func NewStatusChangeRepository(db *database.DB) *StatusChangeRepository {
	return &StatusChangeRepository{db: db}
}

type StatusChangeRecord struct {
	ID        int64             `json:"id"`
	SpotID    string            `json:"spot_id"`
	ChangedAt time.Time         `json:"changed_at"`
	From      models.SpotStatus `json:"from"`
	To        models.SpotStatus `json:"to"`
}

func (r *StatusChangeRepository) Create(ctx context.Context, change models.StatusChange) (int64, error) {
	query := `
		INSERT INTO spot_status_changes (spot_id, changed_at, from_status, to_status)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		change.SpotID, change.Timestamp.UTC(), string(change.From), string(change.To),
	).Scan(&id)
	if err != nil {
		return 0, err
	}

	return id, nil
}

// GetBySpot returns the most recent status changes for a spot, newest first.
func (r *StatusChangeRepository) GetBySpot(ctx context.Context, spotID string, limit int) ([]StatusChangeRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, spot_id, changed_at, from_status, to_status
		FROM spot_status_changes
		WHERE spot_id = $1
		ORDER BY changed_at DESC, id DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, spotID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]StatusChangeRecord, 0)
	for rows.Next() {
		var rec StatusChangeRecord
		if err := rows.Scan(&rec.ID, &rec.SpotID, &rec.ChangedAt, &rec.From, &rec.To); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
