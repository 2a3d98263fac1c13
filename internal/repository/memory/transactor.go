package memory

import "context"

// Transactor runs fn directly; the memory stores have no multi-statement atomicity to offer.
type Transactor struct{}

func (Transactor) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
