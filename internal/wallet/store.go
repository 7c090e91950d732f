package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	klog "github.com/Klingon-tech/klingnet-wallet/internal/log"
	"github.com/Klingon-tech/klingnet-wallet/internal/storage"
	"github.com/Klingon-tech/klingnet-wallet/pkg/types"
)

// Store errors.
var (
	ErrDuplicateAddress = errors.New("wallet already exists")
	ErrWalletNotFound   = errors.New("wallet not found")
)

// recordsKey holds the whole wallet collection as one JSON array.
var recordsKey = []byte("records")

// Store is the persisted, ordered collection of wallet records.
type Store struct {
	mu sync.Mutex
	db storage.DB
}

// NewStore creates a wallet store on db. Callers normally pass a
// storage.PrefixDB scoped to "wallet/".
func NewStore(db storage.DB) *Store {
	return &Store{db: db}
}

// List returns all wallets in insertion order.
func (s *Store) List() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Get returns the wallet whose address matches, ignoring case.
func (s *Store) Get(address string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return Record{}, err
	}
	for _, r := range records {
		if types.SameAddress(r.Address, address) {
			return r, nil
		}
	}
	return Record{}, fmt.Errorf("%w: %s", ErrWalletNotFound, address)
}

// Add appends rec. An existing wallet with the same address (ignoring
// case) leaves the collection untouched and returns ErrDuplicateAddress.
func (s *Store) Add(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}
	for _, r := range records {
		if types.SameAddress(r.Address, rec.Address) {
			return fmt.Errorf("%w: %s", ErrDuplicateAddress, rec.Address)
		}
	}
	if err := s.save(append(records, rec)); err != nil {
		return err
	}
	klog.Wallet.Info().Str("address", rec.Address).Int("count", len(records)+1).Msg("Wallet added")
	return nil
}

// Remove deletes the wallet matching address, ignoring case.
// Removing an unknown address is a no-op.
func (s *Store) Remove(address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}
	kept := records[:0]
	for _, r := range records {
		if !types.SameAddress(r.Address, address) {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(records) {
		return nil
	}
	if err := s.save(kept); err != nil {
		return err
	}
	klog.Wallet.Info().Str("address", address).Int("count", len(kept)).Msg("Wallet removed")
	return nil
}

func (s *Store) load() ([]Record, error) {
	data, err := s.db.Get(recordsKey)
	if errors.Is(err, storage.ErrNotFound) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read wallets: %w", err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode wallets: %w", err)
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// save writes the collection. An empty collection deletes the key.
func (s *Store) save(records []Record) error {
	if len(records) == 0 {
		if err := s.db.Delete(recordsKey); err != nil {
			return fmt.Errorf("clear wallets: %w", err)
		}
		return nil
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode wallets: %w", err)
	}
	if err := s.db.Put(recordsKey, data); err != nil {
		return fmt.Errorf("write wallets: %w", err)
	}
	return nil
}
