// Package dbtest holds test doubles for the db package.
package dbtest

import (
	"context"

	"github.com/murasakijyuutann/transport-payment/internal/db"
)

// Transactor runs fn directly with a nil Querier and counts the calls.
// Repositories under test are expected to be mocks that ignore q.
type Transactor struct {
	Calls int
}

func (t *Transactor) WithTx(ctx context.Context, fn func(q db.Querier) error) error {
	t.Calls++
	return fn(nil)
}
