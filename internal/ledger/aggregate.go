package ledger

import (
	"context"
	"strings"

	"veresiye/internal/domain"

	"github.com/google/uuid"
)

// Recompute rebuilds every customer's credit (veresiye) and paid (satis)
// totals from scratch against the full transaction set. CREDIT adds to
// veresiye; SALE, BOTH and PAYMENT add to satis; RETURN and unrecognized
// types touch neither total, matching the legacy books. Names referenced
// by transactions without a customer record get one synthesized, in
// first-appearance order.
func Recompute(transactions []domain.Transaction, customers []domain.Customer) []domain.Customer {
	type bucket struct {
		name     string
		veresiye float64
		satis    float64
	}
	totals := make(map[string]*bucket)
	order := make([]string, 0)

	for _, t := range transactions {
		name := strings.TrimSpace(t.Customer)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		b, ok := totals[key]
		if !ok {
			b = &bucket{name: name}
			totals[key] = b
			order = append(order, key)
		}
		switch t.Type {
		case domain.TypeCredit:
			b.veresiye += t.Total
		case domain.TypeSale, domain.TypeBoth, domain.TypePayment:
			b.satis += t.Total
		}
	}

	result := make([]domain.Customer, 0, len(customers))
	seen := make(map[string]bool, len(customers))
	for _, c := range customers {
		key := normName(c.Name)
		if b, ok := totals[key]; ok {
			c.Veresiye = b.veresiye
			c.Satis = b.satis
		} else {
			c.Veresiye = 0
			c.Satis = 0
		}
		seen[key] = true
		result = append(result, c)
	}

	for _, key := range order {
		if seen[key] {
			continue
		}
		b := totals[key]
		result = append(result, domain.Customer{
			ID:       uuid.NewString(),
			Name:     b.name,
			Veresiye: b.veresiye,
			Satis:    b.satis,
		})
	}
	return result
}

// Summarize computes the dashboard totals directly from the transaction
// set; the customer cache is never consulted. Cost of goods covers every
// non-payment, non-return transaction whose product still exists in the
// catalog, priced at the current buying price (0 when unmatched).
func Summarize(transactions []domain.Transaction, products []domain.Product) domain.DashboardSummary {
	byName := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byName[normName(p.Name)] = p
	}

	var sum domain.DashboardSummary
	sum.TotalTransactions = len(transactions)
	for _, t := range transactions {
		switch t.Type {
		case domain.TypeCredit:
			sum.TotalCredit += t.Total
		case domain.TypeSale, domain.TypeBoth, domain.TypePayment:
			sum.TotalSales += t.Total
		case domain.TypeReturn:
			sum.ReturnTotal += t.Total
		}
		if t.Type == domain.TypePayment || t.Type == domain.TypeReturn {
			continue
		}
		if p, ok := byName[normName(t.ProductName)]; ok {
			sum.TotalCOGS += t.Quantity * p.BuyingPrice
		}
	}
	sum.Profit = sum.TotalSales - sum.TotalCOGS
	return sum
}

func (s *Service) Dashboard(ctx context.Context) (domain.DashboardSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return domain.DashboardSummary{}, err
	}
	return Summarize(s.data.Transactions, s.data.Products), nil
}
