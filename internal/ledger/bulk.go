package ledger

import (
	"context"
	"strings"

	"veresiye/internal/domain"

	"github.com/google/uuid"
)

type ImportStats struct {
	Transactions int `json:"transactions"`
	Products     int `json:"products"`
	Customers    int `json:"customers"`
}

// ImportBulk merges parsed transactions and products into the current
// ledger. Products are upserted by case-insensitive name with existing
// catalog entries winning; transactions are appended; the customer set is
// regenerated from the transaction names (minus the unnamed sentinel) by
// the aggregate recompute. The three record sets are persisted together,
// transactions first.
func (s *Service) ImportBulk(ctx context.Context, transactions []domain.Transaction, products []domain.Product) (ImportStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return ImportStats{}, err
	}

	prevTransactions := s.data.Transactions
	prevProducts := make([]domain.Product, len(s.data.Products))
	copy(prevProducts, s.data.Products)
	prevCustomers := len(s.data.Customers)

	existing := make(map[string]bool, len(s.data.Products))
	for _, p := range s.data.Products {
		existing[normName(p.Name)] = true
	}
	addedProducts := 0
	for _, p := range products {
		key := normName(p.Name)
		if key == "" || existing[key] {
			continue
		}
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		s.data.Products = append(s.data.Products, p)
		existing[key] = true
		addedProducts++
	}

	appended := make([]domain.Transaction, 0, len(transactions))
	for _, t := range transactions {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		// back-fill price and total from the merged catalog
		if t.Price == 0 && t.Total == 0 {
			if p := s.findProduct(t.ProductName); p != nil {
				t.Price = p.SellingPrice
				t.Total = t.Quantity * t.Price
			}
		}
		if t.Price == 0 && t.Total != 0 && t.Quantity != 0 {
			t.Price = t.Total / t.Quantity
		}
		if t.Total == 0 && t.Price != 0 {
			t.Total = t.Quantity * t.Price
		}
		appended = append(appended, t)
	}
	s.data.Transactions = append(s.data.Transactions, appended...)

	if err := s.saveTransactions(ctx); err != nil {
		s.data.Transactions = prevTransactions
		s.data.Products = prevProducts
		return ImportStats{}, err
	}
	if err := s.saveProducts(ctx); err != nil {
		s.data.Products = prevProducts
		return ImportStats{}, err
	}

	s.data.Customers = Recompute(s.data.Transactions, s.data.Customers)
	s.data.Customers = dropSentinelCustomers(s.data.Customers)
	if err := s.saveCustomers(ctx); err != nil {
		return ImportStats{}, err
	}
	s.touch(ctx)

	return ImportStats{
		Transactions: len(appended),
		Products:     addedProducts,
		Customers:    len(s.data.Customers) - prevCustomers,
	}, nil
}

func dropSentinelCustomers(customers []domain.Customer) []domain.Customer {
	kept := customers[:0]
	for _, c := range customers {
		if strings.EqualFold(strings.TrimSpace(c.Name), domain.UnnamedCustomer) {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}
