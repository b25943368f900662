package ledger

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"veresiye/internal/domain"

	"github.com/google/uuid"
)

type TransactionInput struct {
	Date        string  `json:"date"`
	Customer    string  `json:"customer"`
	Type        string  `json:"type"`
	ProductType string  `json:"productType"`
	ProductName string  `json:"productName"`
	Unit        string  `json:"unit"`
	Quantity    float64 `json:"quantity"`
	Price       float64 `json:"price"`
}

type PaymentInput struct {
	Date     string  `json:"date"`
	Customer string  `json:"customer"`
	Amount   float64 `json:"amount"`
}

// RecordTransaction validates and applies one economic event against the
// current ledger. Validation fails closed: no stock or ledger mutation
// happens unless every check passes. On success the transaction list is
// persisted first, then the mutated product, then the recomputed customer
// aggregates; the ordering biases a mid-sequence failure toward
// "transaction recorded, stock stale", which is the cheaper inconsistency
// to reconcile by hand.
func (s *Service) RecordTransaction(ctx context.Context, in TransactionInput) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return domain.Transaction{}, err
	}

	date := strings.TrimSpace(in.Date)
	if date == "" {
		date = today()
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return domain.Transaction{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", in.Date)
	}

	customer := strings.TrimSpace(in.Customer)
	if customer == "" {
		return domain.Transaction{}, fmt.Errorf("customer is required")
	}

	typ := domain.TypeSale
	if raw := strings.TrimSpace(in.Type); raw != "" {
		canonical, ok := domain.NormalizeType(raw)
		if !ok {
			return domain.Transaction{}, fmt.Errorf("unknown transaction type %q", in.Type)
		}
		typ = canonical
	}

	if strings.TrimSpace(in.ProductName) == "" {
		return domain.Transaction{}, fmt.Errorf("productName is required")
	}
	if in.Quantity <= 0 {
		return domain.Transaction{}, fmt.Errorf("quantity must be positive")
	}
	if in.Price < 0 {
		return domain.Transaction{}, fmt.Errorf("price cannot be negative")
	}

	product := s.findProduct(in.ProductName)
	if product == nil {
		return domain.Transaction{}, fmt.Errorf("%q: %w", strings.TrimSpace(in.ProductName), ErrProductNotFound)
	}

	price := in.Price
	if price == 0 {
		price = product.SellingPrice
	}
	if price <= 0 {
		return domain.Transaction{}, fmt.Errorf("price is required")
	}

	prevStock := product.Stock
	switch typ {
	case domain.TypeReturn:
		product.Stock += in.Quantity
	case domain.TypePayment:
		// payments never touch stock
	default:
		if product.Stock < in.Quantity {
			return domain.Transaction{}, fmt.Errorf("%s has %.2f in stock, need %.2f: %w",
				product.Name, product.Stock, in.Quantity, ErrInsufficientStock)
		}
		product.Stock -= in.Quantity
	}

	txn := domain.Transaction{
		ID:          uuid.NewString(),
		Date:        date,
		Customer:    customer,
		Type:        typ,
		ProductType: strings.TrimSpace(in.ProductType),
		ProductName: product.Name,
		Unit:        strings.TrimSpace(in.Unit),
		Quantity:    in.Quantity,
		Price:       price,
		Total:       in.Quantity * price,
	}
	if txn.ProductType == "" {
		txn.ProductType = product.Type
	}
	if txn.Unit == "" {
		txn.Unit = product.Unit
	}

	s.data.Transactions = append(s.data.Transactions, txn)
	if err := s.saveTransactions(ctx); err != nil {
		// nothing is durable yet; undo the append and the stock change
		s.data.Transactions = s.data.Transactions[:len(s.data.Transactions)-1]
		product.Stock = prevStock
		return domain.Transaction{}, err
	}

	if product.Stock != prevStock {
		if err := s.saveProducts(ctx); err != nil {
			// the transaction is durable but the stock level is not
			log.Printf("stock for %q stale after transaction %s: %v", product.Name, txn.ID, err)
			return domain.Transaction{}, err
		}
	}

	if err := s.recomputeAndSaveCustomers(ctx); err != nil {
		return domain.Transaction{}, err
	}
	s.touch(ctx)
	return txn, nil
}

// RecordPayment synthesizes a PAYMENT transaction for an amount received
// from a customer. Stock logic is skipped entirely.
func (s *Service) RecordPayment(ctx context.Context, in PaymentInput) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return domain.Transaction{}, err
	}

	date := strings.TrimSpace(in.Date)
	if date == "" {
		date = today()
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return domain.Transaction{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", in.Date)
	}
	customer := strings.TrimSpace(in.Customer)
	if customer == "" {
		return domain.Transaction{}, fmt.Errorf("customer is required")
	}
	if in.Amount <= 0 {
		return domain.Transaction{}, fmt.Errorf("amount must be positive")
	}

	txn := domain.Transaction{
		ID:          uuid.NewString(),
		Date:        date,
		Customer:    customer,
		Type:        domain.TypePayment,
		ProductName: "Payment",
		Quantity:    1,
		Price:       in.Amount,
		Total:       in.Amount,
	}

	s.data.Transactions = append(s.data.Transactions, txn)
	if err := s.saveTransactions(ctx); err != nil {
		s.data.Transactions = s.data.Transactions[:len(s.data.Transactions)-1]
		return domain.Transaction{}, err
	}
	if err := s.recomputeAndSaveCustomers(ctx); err != nil {
		return domain.Transaction{}, err
	}
	s.touch(ctx)
	return txn, nil
}

func (s *Service) Transactions(ctx context.Context) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	out := make([]domain.Transaction, len(s.data.Transactions))
	copy(out, s.data.Transactions)
	return out, nil
}

// CustomerTransactions returns the statement for one customer, matched
// through the name join key.
func (s *Service) CustomerTransactions(ctx context.Context, customerID string) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	idx := s.findCustomerByID(customerID)
	if idx < 0 {
		return nil, fmt.Errorf("customer %s: %w", customerID, ErrNotFound)
	}
	name := s.data.Customers[idx].Name
	out := make([]domain.Transaction, 0)
	for _, t := range s.data.Transactions {
		if strings.EqualFold(strings.TrimSpace(t.Customer), name) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Service) findProduct(name string) *domain.Product {
	key := normName(name)
	for i := range s.data.Products {
		if normName(s.data.Products[i].Name) == key {
			return &s.data.Products[i]
		}
	}
	return nil
}

func (s *Service) findCustomerByID(id string) int {
	for i := range s.data.Customers {
		if s.data.Customers[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) findProductByID(id string) int {
	for i := range s.data.Products {
		if s.data.Products[i].ID == id {
			return i
		}
	}
	return -1
}
