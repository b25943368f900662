package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"veresiye/internal/domain"
	"veresiye/internal/store"
)

const (
	metadataKey  = "database-metadata"
	currentIDKey = "current-database-id"

	defaultLedgerName = "Ana Defter"
	bundleVersion     = "1.0"
)

func transactionsKey(id string) string { return "db-" + id + "-transactions" }
func customersKey(id string) string    { return "db-" + id + "-customers" }
func productsKey(id string) string     { return "db-" + id + "-products" }

// Service owns the ledger set and the currently active ledger's record
// sets. It is the single owner of all in-memory ledger state; every
// operation locks, mutates, persists through the store and recomputes the
// customer aggregates before returning.
type Service struct {
	mu    sync.Mutex
	store store.Store

	metas     []domain.LedgerMeta
	currentID string
	data      domain.LedgerData
	loaded    bool
}

func New(st store.Store) *Service {
	return &Service{store: st}
}

func (s *Service) ensureLoaded(ctx context.Context) error {
	if err := s.loadState(ctx); err != nil {
		return err
	}
	if len(s.metas) == 0 {
		if _, err := s.createLocked(ctx, defaultLedgerName); err != nil {
			return err
		}
	}
	return nil
}

// loadState reads the persisted metadata and current ledger id without
// bootstrapping a default ledger. Bundle import goes through this so a
// fresh system ends up with exactly the bundle's ledgers.
func (s *Service) loadState(ctx context.Context) error {
	if s.loaded {
		return nil
	}

	var metas []domain.LedgerMeta
	if err := s.store.Get(ctx, metadataKey, &metas); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("load ledger metadata: %w", err)
	}
	var currentID string
	if err := s.store.Get(ctx, currentIDKey, &currentID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("load current ledger id: %w", err)
	}

	s.metas = metas
	s.currentID = currentID

	if len(s.metas) > 0 {
		if s.findMeta(s.currentID) < 0 {
			s.currentID = s.metas[0].ID
			if err := s.store.Set(ctx, currentIDKey, s.currentID); err != nil {
				return fmt.Errorf("persist current ledger id: %w", err)
			}
		}
		data, err := s.loadData(ctx, s.currentID)
		if err != nil {
			return err
		}
		s.data = data
	}
	s.loaded = true
	return nil
}

// loadData reads the three record sets for a ledger, runs the one-time
// schema normalization and recomputes the customer aggregates so callers
// never see stale cached totals.
func (s *Service) loadData(ctx context.Context, id string) (domain.LedgerData, error) {
	var data domain.LedgerData
	if err := s.store.Get(ctx, transactionsKey(id), &data.Transactions); err != nil && !errors.Is(err, store.ErrNotFound) {
		return domain.LedgerData{}, fmt.Errorf("load transactions for %s: %w", id, err)
	}
	if err := s.store.Get(ctx, customersKey(id), &data.Customers); err != nil && !errors.Is(err, store.ErrNotFound) {
		return domain.LedgerData{}, fmt.Errorf("load customers for %s: %w", id, err)
	}
	if err := s.store.Get(ctx, productsKey(id), &data.Products); err != nil && !errors.Is(err, store.ErrNotFound) {
		return domain.LedgerData{}, fmt.Errorf("load products for %s: %w", id, err)
	}
	normalizeLedgerData(&data)
	data.Customers = Recompute(data.Transactions, data.Customers)
	return data, nil
}

func (s *Service) findMeta(id string) int {
	for i, m := range s.metas {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) saveTransactions(ctx context.Context) error {
	if err := s.store.Set(ctx, transactionsKey(s.currentID), s.data.Transactions); err != nil {
		return fmt.Errorf("persist transactions: %w", err)
	}
	return nil
}

func (s *Service) saveCustomers(ctx context.Context) error {
	if err := s.store.Set(ctx, customersKey(s.currentID), s.data.Customers); err != nil {
		return fmt.Errorf("persist customers: %w", err)
	}
	return nil
}

func (s *Service) saveProducts(ctx context.Context) error {
	if err := s.store.Set(ctx, productsKey(s.currentID), s.data.Products); err != nil {
		return fmt.Errorf("persist products: %w", err)
	}
	return nil
}

func (s *Service) recomputeAndSaveCustomers(ctx context.Context) error {
	s.data.Customers = Recompute(s.data.Transactions, s.data.Customers)
	return s.saveCustomers(ctx)
}

// touch marks the active ledger as modified and persists the metadata.
// The record write already succeeded, so a failure here is only logged.
func (s *Service) touch(ctx context.Context) {
	idx := s.findMeta(s.currentID)
	if idx < 0 {
		return
	}
	s.metas[idx].LastModified = nowStamp()
	if err := s.store.Set(ctx, metadataKey, s.metas); err != nil {
		log.Printf("last-modified for %s not persisted: %v", s.currentID, err)
	}
}

// cloneData detaches a ledger snapshot from the service-owned slices so
// callers can read it after the lock is released.
func cloneData(data domain.LedgerData) domain.LedgerData {
	out := domain.LedgerData{
		Transactions: make([]domain.Transaction, len(data.Transactions)),
		Customers:    make([]domain.Customer, len(data.Customers)),
		Products:     make([]domain.Product, len(data.Products)),
	}
	copy(out.Transactions, data.Transactions)
	copy(out.Customers, data.Customers)
	copy(out.Products, data.Products)
	return out
}

func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func today() string {
	return time.Now().Format("2006-01-02")
}

func normName(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
