package station

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/murasakijyuutann/transport-payment/internal/apperr"
	"github.com/murasakijyuutann/transport-payment/internal/db"
)

var ErrStationNotFound = apperr.New(apperr.ErrNotFound, "station not found")

const stationColumns = `id, station_code, name, zone_number, latitude, longitude, status, created_at, updated_at`

type repository struct{}

func NewRepository() Repository {
	return &repository{}
}

func (r *repository) FindByCode(ctx context.Context, q db.Querier, code string) (*Station, error) {
	var s Station
	err := sqlx.GetContext(ctx, q, &s, `SELECT `+stationColumns+` FROM stations WHERE station_code = $1`, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FindByIDs loads stations keyed by id. Unknown ids are absent from the map.
func (r *repository) FindByIDs(ctx context.Context, q db.Querier, ids []int64) (map[int64]*Station, error) {
	out := make(map[int64]*Station, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(`SELECT `+stationColumns+` FROM stations WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}

	var stations []Station
	if err := sqlx.SelectContext(ctx, q, &stations, q.Rebind(query), args...); err != nil {
		return nil, err
	}

	for i := range stations {
		out[stations[i].ID] = &stations[i]
	}
	return out, nil
}

func (r *repository) List(ctx context.Context, q db.Querier) ([]Station, error) {
	var stations []Station
	err := sqlx.SelectContext(ctx, q, &stations, `
		SELECT `+stationColumns+`
		FROM stations
		ORDER BY zone_number, station_code
	`)
	if err != nil {
		return nil, err
	}
	return stations, nil
}
