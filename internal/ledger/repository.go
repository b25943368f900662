package ledger

import (
	"context"
	"fmt"
	"strings"

	"veresiye/internal/domain"

	"github.com/google/uuid"
)

// ListLedgers returns the ledger metadata set, creating a default ledger
// first when none exist. The system never runs with zero ledgers.
func (s *Service) ListLedgers(ctx context.Context) ([]domain.LedgerMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	out := make([]domain.LedgerMeta, len(s.metas))
	copy(out, s.metas)
	return out, nil
}

func (s *Service) CurrentLedger(ctx context.Context) (domain.LedgerMeta, domain.LedgerData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return domain.LedgerMeta{}, domain.LedgerData{}, err
	}
	idx := s.findMeta(s.currentID)
	if idx < 0 {
		return domain.LedgerMeta{}, domain.LedgerData{}, fmt.Errorf("current ledger %s: %w", s.currentID, ErrNotFound)
	}
	return s.metas[idx], cloneData(s.data), nil
}

func (s *Service) CreateLedger(ctx context.Context, name string) (domain.LedgerMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return domain.LedgerMeta{}, err
	}
	return s.createLocked(ctx, name)
}

// createLocked writes the three empty record sets, appends the metadata
// entry and switches the current ledger to the new one.
func (s *Service) createLocked(ctx context.Context, name string) (domain.LedgerMeta, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.LedgerMeta{}, ErrEmptyName
	}
	for _, m := range s.metas {
		if strings.EqualFold(m.Name, name) {
			return domain.LedgerMeta{}, fmt.Errorf("ledger %q: %w", name, ErrDuplicateName)
		}
	}

	now := nowStamp()
	meta := domain.LedgerMeta{
		ID:           uuid.NewString(),
		Name:         name,
		CreatedDate:  now,
		LastModified: now,
	}

	if err := s.store.Set(ctx, transactionsKey(meta.ID), []domain.Transaction{}); err != nil {
		return domain.LedgerMeta{}, fmt.Errorf("init transactions for %s: %w", meta.ID, err)
	}
	if err := s.store.Set(ctx, customersKey(meta.ID), []domain.Customer{}); err != nil {
		return domain.LedgerMeta{}, fmt.Errorf("init customers for %s: %w", meta.ID, err)
	}
	if err := s.store.Set(ctx, productsKey(meta.ID), []domain.Product{}); err != nil {
		return domain.LedgerMeta{}, fmt.Errorf("init products for %s: %w", meta.ID, err)
	}

	s.metas = append(s.metas, meta)
	if err := s.store.Set(ctx, metadataKey, s.metas); err != nil {
		s.metas = s.metas[:len(s.metas)-1]
		return domain.LedgerMeta{}, fmt.Errorf("persist ledger metadata: %w", err)
	}

	s.currentID = meta.ID
	s.data = domain.LedgerData{}
	if err := s.store.Set(ctx, currentIDKey, s.currentID); err != nil {
		return domain.LedgerMeta{}, fmt.Errorf("persist current ledger id: %w", err)
	}
	return meta, nil
}

// DeleteLedger erases the ledger's record sets and metadata. When the
// deleted ledger was current, the first remaining ledger becomes current;
// deleting the last ledger recreates a default one.
func (s *Service) DeleteLedger(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}

	idx := s.findMeta(id)
	if idx < 0 {
		return fmt.Errorf("ledger %s: %w", id, ErrNotFound)
	}

	if err := s.store.Delete(ctx, transactionsKey(id)); err != nil {
		return fmt.Errorf("erase transactions for %s: %w", id, err)
	}
	if err := s.store.Delete(ctx, customersKey(id)); err != nil {
		return fmt.Errorf("erase customers for %s: %w", id, err)
	}
	if err := s.store.Delete(ctx, productsKey(id)); err != nil {
		return fmt.Errorf("erase products for %s: %w", id, err)
	}

	s.metas = append(s.metas[:idx], s.metas[idx+1:]...)
	if err := s.store.Set(ctx, metadataKey, s.metas); err != nil {
		return fmt.Errorf("persist ledger metadata: %w", err)
	}

	if s.currentID != id {
		return nil
	}
	if len(s.metas) > 0 {
		_, err := s.switchLocked(ctx, s.metas[0].ID)
		return err
	}
	_, err := s.createLocked(ctx, defaultLedgerName)
	return err
}

func (s *Service) SwitchLedger(ctx context.Context, id string) (domain.LedgerData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return domain.LedgerData{}, err
	}
	data, err := s.switchLocked(ctx, id)
	if err != nil {
		return domain.LedgerData{}, err
	}
	return cloneData(data), nil
}

func (s *Service) switchLocked(ctx context.Context, id string) (domain.LedgerData, error) {
	if s.findMeta(id) < 0 {
		return domain.LedgerData{}, fmt.Errorf("ledger %s: %w", id, ErrNotFound)
	}

	// The outgoing ledger's lastModified must be durable before any of
	// the incoming ledger's data replaces the in-memory state.
	if cur := s.findMeta(s.currentID); cur >= 0 && s.currentID != id {
		s.metas[cur].LastModified = nowStamp()
		if err := s.store.Set(ctx, metadataKey, s.metas); err != nil {
			return domain.LedgerData{}, fmt.Errorf("persist ledger metadata: %w", err)
		}
	}

	data, err := s.loadData(ctx, id)
	if err != nil {
		return domain.LedgerData{}, err
	}
	s.currentID = id
	s.data = data
	if err := s.store.Set(ctx, currentIDKey, s.currentID); err != nil {
		return domain.LedgerData{}, fmt.Errorf("persist current ledger id: %w", err)
	}
	return s.data, nil
}

// ExportAll reads every ledger's record sets into one versioned bundle.
func (s *Service) ExportAll(ctx context.Context) (domain.ExportBundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return domain.ExportBundle{}, err
	}

	bundle := domain.ExportBundle{
		Version:    bundleVersion,
		ExportDate: nowStamp(),
		Databases:  make([]domain.BundleLedger, 0, len(s.metas)),
	}
	for _, meta := range s.metas {
		data, err := s.loadData(ctx, meta.ID)
		if err != nil {
			return domain.ExportBundle{}, err
		}
		bundle.Databases = append(bundle.Databases, domain.BundleLedger{
			Metadata:     meta,
			Transactions: data.Transactions,
			Customers:    data.Customers,
			Products:     data.Products,
		})
	}
	return bundle, nil
}

// ImportAll merges a bundle into the ledger set. Entries whose id or
// name (case-insensitively) already exists locally are skipped, existing
// local data wins. The import path loads raw state instead of
// bootstrapping a default ledger, so a bundle imported into a fresh
// system yields exactly the bundle's ledgers. Each imported ledger's
// three record sets are written together before advancing to the next
// entry, so a mid-import failure only affects ledgers not yet reached.
// Metadata is persisted once at the end and the first imported ledger
// becomes current.
func (s *Service) ImportAll(ctx context.Context, bundle domain.ExportBundle) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadState(ctx); err != nil {
		return 0, err
	}

	if bundle.Databases == nil {
		return 0, fmt.Errorf("bundle has no databases array: %w", ErrBadFormat)
	}

	names := make(map[string]bool, len(s.metas))
	for _, m := range s.metas {
		names[normName(m.Name)] = true
	}

	imported := 0
	firstID := ""
	for _, entry := range bundle.Databases {
		meta := entry.Metadata
		meta.Name = strings.TrimSpace(meta.Name)
		if meta.ID == "" {
			meta.ID = uuid.NewString()
		}
		if s.findMeta(meta.ID) >= 0 {
			continue
		}
		if name := normName(meta.Name); name != "" {
			if names[name] {
				continue
			}
			names[name] = true
		}
		if meta.CreatedDate == "" {
			meta.CreatedDate = nowStamp()
		}
		if meta.LastModified == "" {
			meta.LastModified = meta.CreatedDate
		}

		data := domain.LedgerData{
			Transactions: entry.Transactions,
			Customers:    entry.Customers,
			Products:     entry.Products,
		}
		normalizeLedgerData(&data)
		data.Customers = Recompute(data.Transactions, data.Customers)

		if err := s.store.Set(ctx, transactionsKey(meta.ID), data.Transactions); err != nil {
			return imported, fmt.Errorf("write transactions for %s: %w", meta.ID, err)
		}
		if err := s.store.Set(ctx, customersKey(meta.ID), data.Customers); err != nil {
			return imported, fmt.Errorf("write customers for %s: %w", meta.ID, err)
		}
		if err := s.store.Set(ctx, productsKey(meta.ID), data.Products); err != nil {
			return imported, fmt.Errorf("write products for %s: %w", meta.ID, err)
		}

		s.metas = append(s.metas, meta)
		imported++
		if firstID == "" {
			firstID = meta.ID
		}
	}

	if err := s.store.Set(ctx, metadataKey, s.metas); err != nil {
		return imported, fmt.Errorf("persist ledger metadata: %w", err)
	}
	if firstID != "" {
		if _, err := s.switchLocked(ctx, firstID); err != nil {
			return imported, err
		}
	}
	return imported, nil
}
