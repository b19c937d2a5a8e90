package journey

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/murasakijyuutann/transport-payment/internal/db"
)

const journeyColumns = `id, user_id, card_id, entry_station_id, exit_station_id, tap_in_time, tap_out_time, status,
	fare_amount, discount_amount, final_amount, zones_transited, notes, created_at, updated_at`

type repository struct{}

func NewRepository() Repository {
	return &repository{}
}

// Create inserts an IN_PROGRESS journey. The partial unique index on
// journeys(card_id) turns a concurrent second tap-in into ErrActiveJourneyExists.
func (r *repository) Create(ctx context.Context, q db.Querier, j *Journey) error {
	j.Status = StatusInProgress

	err := q.QueryRowxContext(ctx, `
		INSERT INTO journeys (user_id, card_id, entry_station_id, tap_in_time, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, j.UserID, j.CardID, j.EntryStationID, j.TapInTime, j.Status,
	).Scan(&j.ID, &j.CreatedAt, &j.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return ErrActiveJourneyExists
	}
	if err != nil {
		return fmt.Errorf("insert journey: %w", err)
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, q db.Querier, id int64) (*Journey, error) {
	var j Journey
	err := sqlx.GetContext(ctx, q, &j, `SELECT `+journeyColumns+` FROM journeys WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJourneyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *repository) FindActiveByCard(ctx context.Context, q db.Querier, cardID int64) (*Journey, error) {
	var j Journey
	err := sqlx.GetContext(ctx, q, &j, `
		SELECT `+journeyColumns+`
		FROM journeys
		WHERE card_id = $1 AND status = 'IN_PROGRESS'
	`, cardID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoActiveJourney
	}
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *repository) Complete(ctx context.Context, q db.Querier, j *Journey) error {
	return r.close(ctx, q, j, StatusCompleted)
}

func (r *repository) MarkIncomplete(ctx context.Context, q db.Querier, j *Journey) error {
	return r.close(ctx, q, j, StatusIncomplete)
}

func (r *repository) close(ctx context.Context, q db.Querier, j *Journey, status Status) error {
	res, err := q.ExecContext(ctx, `
		UPDATE journeys
		SET exit_station_id = $1,
		    tap_out_time = $2,
		    status = $3,
		    fare_amount = $4,
		    discount_amount = $5,
		    final_amount = $6,
		    zones_transited = $7,
		    notes = $8,
		    updated_at = NOW()
		WHERE id = $9 AND status = 'IN_PROGRESS'
	`, j.ExitStationID, j.TapOutTime, status, j.FareAmount, j.DiscountAmount, j.FinalAmount,
		j.ZonesTransited, j.Notes, j.ID,
	)
	if err != nil {
		return fmt.Errorf("update journey %d: %w", j.ID, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrJourneyNotInProgress
	}

	j.Status = status
	return nil
}

func (r *repository) FindStaleInProgress(ctx context.Context, q db.Querier, cutoff time.Time) ([]Journey, error) {
	var journeys []Journey
	err := sqlx.SelectContext(ctx, q, &journeys, `
		SELECT `+journeyColumns+`
		FROM journeys
		WHERE status = 'IN_PROGRESS' AND tap_in_time < $1
		ORDER BY tap_in_time
	`, cutoff)
	if err != nil {
		return nil, err
	}
	return journeys, nil
}

func (r *repository) ListByUser(ctx context.Context, q db.Querier, userID int64, limit, offset int) ([]View, error) {
	if limit <= 0 {
		limit = 50
	}

	var views []View
	err := sqlx.SelectContext(ctx, q, &views, `
		SELECT j.id, j.user_id, c.card_number,
		       es.name AS entry_station_name, es.station_code AS entry_station_code,
		       xs.name AS exit_station_name, xs.station_code AS exit_station_code,
		       j.tap_in_time, j.tap_out_time, j.status,
		       j.fare_amount, j.discount_amount, j.final_amount, j.zones_transited
		FROM journeys j
		JOIN cards c ON c.id = j.card_id
		JOIN stations es ON es.id = j.entry_station_id
		LEFT JOIN stations xs ON xs.id = j.exit_station_id
		WHERE j.user_id = $1
		ORDER BY j.tap_in_time DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	for i := range views {
		if views[i].TapOutTime != nil {
			views[i].DurationMinutes = int64(views[i].TapOutTime.Sub(views[i].TapInTime) / time.Minute)
		}
	}
	return views, nil
}
