package journey

import (
	"context"
	"time"

	"github.com/murasakijyuutann/transport-payment/internal/db"
)

type Repository interface {
	Create(ctx context.Context, q db.Querier, j *Journey) error
	FindByID(ctx context.Context, q db.Querier, id int64) (*Journey, error)
	FindActiveByCard(ctx context.Context, q db.Querier, cardID int64) (*Journey, error)
	// Complete and MarkIncomplete only touch rows still IN_PROGRESS and
	// return ErrJourneyNotInProgress otherwise.
	Complete(ctx context.Context, q db.Querier, j *Journey) error
	MarkIncomplete(ctx context.Context, q db.Querier, j *Journey) error
	FindStaleInProgress(ctx context.Context, q db.Querier, cutoff time.Time) ([]Journey, error)
	ListByUser(ctx context.Context, q db.Querier, userID int64, limit, offset int) ([]View, error)
}
