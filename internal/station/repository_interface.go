package station

import (
	"context"

	"github.com/murasakijyuutann/transport-payment/internal/db"
)

type Repository interface {
	FindByCode(ctx context.Context, q db.Querier, code string) (*Station, error)
	FindByIDs(ctx context.Context, q db.Querier, ids []int64) (map[int64]*Station, error)
	List(ctx context.Context, q db.Querier) ([]Station, error)
}
