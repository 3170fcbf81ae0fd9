package queries

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/OldStager01/parksense/pkg/database"
	"github.com/OldStager01/parksense/pkg/models"
)

type ObservationRepository struct {
	db *database.DB
}

func NewObservationRepository(db *database.DB) *ObservationRepository {
	return &ObservationRepository{db: db}
}

// InsertBatch stores observations for one spot in a single transaction.
// Observations already stored for the same instant are skipped. It returns
// the number of rows actually inserted.
func (r *ObservationRepository) InsertBatch(ctx context.Context, spotID, source string, observations []models.Observation) (int64, error) {
	if len(observations) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO spot_observations (spot_id, observed_at, occupied, source)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (spot_id, observed_at) DO NOTHING`

	var inserted int64
	err := r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, obs := range observations {
			res, err := stmt.ExecContext(ctx, spotID, obs.Timestamp.UTC(), obs.Occupied, source)
			if err != nil {
				return fmt.Errorf("failed to insert observation: %w", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			inserted += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return inserted, nil
}

// GetBySpot returns observations in ascending time order within [from, to].
// A non-positive limit returns every row; otherwise the most recent limit
// rows are returned, still ascending.
func (r *ObservationRepository) GetBySpot(ctx context.Context, spotID string, from, to time.Time, limit int) ([]models.Observation, error) {
	query := `
		SELECT observed_at, occupied
		FROM spot_observations
		WHERE spot_id = $1 AND observed_at >= $2 AND observed_at <= $3
		ORDER BY observed_at ASC`
	args := []interface{}{spotID, from.UTC(), to.UTC()}

	if limit > 0 {
		query = `
		SELECT observed_at, occupied FROM (
			SELECT observed_at, occupied
			FROM spot_observations
			WHERE spot_id = $1 AND observed_at >= $2 AND observed_at <= $3
			ORDER BY observed_at DESC
			LIMIT $4
		) recent
		ORDER BY observed_at ASC`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	observations := make([]models.Observation, 0)
	for rows.Next() {
		var obs models.Observation
		if err := rows.Scan(&obs.Timestamp, &obs.Occupied); err != nil {
			return nil, err
		}
		observations = append(observations, obs)
	}

	return observations, rows.Err()
}

// LoadSince returns every spot's history from since onwards, keyed by spot.
func (r *ObservationRepository) LoadSince(ctx context.Context, since time.Time) (map[string][]models.Observation, error) {
	query := `
		SELECT spot_id, observed_at, occupied
		FROM spot_observations
		WHERE observed_at >= $1
		ORDER BY spot_id, observed_at ASC`

	rows, err := r.db.QueryContext(ctx, query, since.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	histories := make(map[string][]models.Observation)
	for rows.Next() {
		var (
			spotID string
			obs    models.Observation
		)
		if err := rows.Scan(&spotID, &obs.Timestamp, &obs.Occupied); err != nil {
			return nil, err
		}
		histories[spotID] = append(histories[spotID], obs)
	}

	return histories, rows.Err()
}

func (r *ObservationRepository) ListSpots(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT spot_id FROM spot_observations ORDER BY spot_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var spots []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		spots = append(spots, id)
	}

	return spots, rows.Err()
}

func (r *ObservationRepository) CountBySpot(ctx context.Context, spotID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM spot_observations WHERE spot_id = $1`, spotID).Scan(&count)
	return count, err
}

func (r *ObservationRepository) DeleteBySpot(ctx context.Context, spotID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM spot_observations WHERE spot_id = $1`, spotID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteBefore prunes observations older than cutoff across all spots.
func (r *ObservationRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM spot_observations WHERE observed_at < $1`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
