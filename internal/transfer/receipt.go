package transfer

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Receipt tracks a broadcast transaction. Confirmation resolves once, in
// the background; all methods are safe for concurrent use.
type Receipt struct {
	Hash    common.Hash
	Network string
	Sender  common.Address
	Nonce   uint64
	Value   *big.Int
	Fee     *big.Int

	mu        sync.Mutex
	confirmed bool
	err       error
	mined     *types.Receipt
	done      chan struct{}
}

func newReceipt(hash common.Hash) *Receipt {
	return &Receipt{Hash: hash, done: make(chan struct{})}
}

// Confirmed reports whether the transaction has been included successfully.
func (r *Receipt) Confirmed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.confirmed
}

// Err returns the confirmation failure, if any. It is nil while pending.
func (r *Receipt) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Mined returns the chain receipt once confirmation resolved with one.
func (r *Receipt) Mined() *types.Receipt {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mined
}

// Done is closed when confirmation resolves.
func (r *Receipt) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until confirmation resolves or ctx ends. It returns the
// confirmation error, or ctx.Err() if ctx ended first.
func (r *Receipt) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return r.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Receipt) resolve(mined *types.Receipt, err error) {
	r.mu.Lock()
	r.mined = mined
	r.err = err
	r.confirmed = err == nil
	r.mu.Unlock()
	close(r.done)
}
