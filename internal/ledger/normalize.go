package ledger

import (
	"strings"

	"veresiye/internal/domain"

	"github.com/google/uuid"
)

// normalizeLedgerData migrates older record shapes once at load time:
// legacy single-price products gain the buying/selling pair, records
// without ids get fresh ones, names are trimmed and transaction totals
// are backfilled from quantity and price. Read paths can then assume the
// current schema everywhere.
func normalizeLedgerData(data *domain.LedgerData) {
	for i := range data.Products {
		p := &data.Products[i]
		p.Name = strings.TrimSpace(p.Name)
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if p.SellingPrice == 0 && p.Price != 0 {
			p.SellingPrice = p.Price
		}
		p.Price = 0
		if p.Stock < 0 {
			p.Stock = 0
		}
	}

	for i := range data.Customers {
		c := &data.Customers[i]
		c.Name = strings.TrimSpace(c.Name)
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
	}

	for i := range data.Transactions {
		t := &data.Transactions[i]
		t.Customer = strings.TrimSpace(t.Customer)
		t.ProductName = strings.TrimSpace(t.ProductName)
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if canonical, ok := domain.NormalizeType(t.Type); ok {
			t.Type = canonical
		}
		if t.Total == 0 && t.Quantity != 0 && t.Price != 0 {
			t.Total = t.Quantity * t.Price
		}
	}
}
