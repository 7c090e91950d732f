package balance

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"

	klog "github.com/Klingon-tech/klingnet-wallet/internal/log"
)

// ErrSuperseded is returned by Refresh when a newer refresh started
// before this one finished. Its result was discarded.
var ErrSuperseded = errors.New("balance refresh superseded")

// Trigger identifies what caused a refresh: a wallet or network
// selection, or a confirmed transaction.
type Trigger struct {
	Address string
	Network string
	TxHash  common.Hash
}

// State is the last stored refresh outcome.
type State struct {
	Trigger Trigger
	Balance Balance
	Err     error
}

// Display renders the state's balance or Unavailable.
func (s State) Display() string {
	return Display(s.Balance, s.Err)
}

// Tracker keeps the balance for the most recent trigger. Older fetches
// that complete late never overwrite newer state.
type Tracker struct {
	oracle *Oracle
	gen    atomic.Uint64

	mu    sync.RWMutex
	state State
}

// NewTracker creates a tracker over oracle.
func NewTracker(oracle *Oracle) *Tracker {
	return &Tracker{oracle: oracle}
}

// Refresh fetches the balance for trig and stores it if trig is still the
// latest trigger when the fetch returns. Fetch failures are stored too so
// the display falls back to Unavailable.
func (t *Tracker) Refresh(ctx context.Context, trig Trigger) (State, error) {
	gen := t.gen.Add(1)
	b, err := t.oracle.Fetch(ctx, trig.Address, trig.Network)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.gen.Load() != gen {
		lg := klog.WithNetwork(klog.Balance, trig.Network)
		lg.Debug().Str("address", trig.Address).Msg("Stale balance discarded")
		return State{}, ErrSuperseded
	}
	t.state = State{Trigger: trig, Balance: b, Err: err}
	return t.state, err
}

// Current returns the latest stored state.
func (t *Tracker) Current() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}
