package ledger

import (
	"context"
	"fmt"
	"strings"

	"veresiye/internal/domain"

	"github.com/google/uuid"
)

type CustomerInput struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	TC       string `json:"tc"`
	DOB      string `json:"dob"`
	City     string `json:"city"`
	District string `json:"district"`
	Street   string `json:"street"`
}

type CustomerPatch struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	TC       *string `json:"tc"`
	DOB      *string `json:"dob"`
	City     *string `json:"city"`
	District *string `json:"district"`
	Street   *string `json:"street"`
}

type ProductInput struct {
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	Unit         string  `json:"unit"`
	BuyingPrice  float64 `json:"buyingPrice"`
	SellingPrice float64 `json:"sellingPrice"`
	Stock        float64 `json:"stock"`
}

type ProductPatch struct {
	Name         *string  `json:"name"`
	Type         *string  `json:"type"`
	Unit         *string  `json:"unit"`
	BuyingPrice  *float64 `json:"buyingPrice"`
	SellingPrice *float64 `json:"sellingPrice"`
	Stock        *float64 `json:"stock"`
}

func (s *Service) Customers(ctx context.Context) ([]domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	out := make([]domain.Customer, len(s.data.Customers))
	copy(out, s.data.Customers)
	return out, nil
}

func (s *Service) AddCustomer(ctx context.Context, in CustomerInput) (domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return domain.Customer{}, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Customer{}, ErrEmptyName
	}
	for _, c := range s.data.Customers {
		if strings.EqualFold(c.Name, name) {
			return domain.Customer{}, fmt.Errorf("customer %q: %w", name, ErrDuplicateName)
		}
	}

	customer := domain.Customer{
		ID:       uuid.NewString(),
		Name:     name,
		Phone:    strings.TrimSpace(in.Phone),
		TC:       strings.TrimSpace(in.TC),
		DOB:      strings.TrimSpace(in.DOB),
		City:     strings.TrimSpace(in.City),
		District: strings.TrimSpace(in.District),
		Street:   strings.TrimSpace(in.Street),
	}
	s.data.Customers = append(s.data.Customers, customer)
	if err := s.saveCustomers(ctx); err != nil {
		s.data.Customers = s.data.Customers[:len(s.data.Customers)-1]
		return domain.Customer{}, err
	}
	s.touch(ctx)
	return customer, nil
}

// UpdateCustomer applies a partial edit. A name change is a controlled
// cascade: every historical transaction carrying the old name is
// relabeled and persisted before the customer record itself, then the
// aggregates are recomputed because the join key changed.
func (s *Service) UpdateCustomer(ctx context.Context, id string, patch CustomerPatch) (domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return domain.Customer{}, err
	}

	idx := s.findCustomerByID(id)
	if idx < 0 {
		return domain.Customer{}, fmt.Errorf("customer %s: %w", id, ErrNotFound)
	}
	customer := s.data.Customers[idx]
	oldName := customer.Name

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return domain.Customer{}, ErrEmptyName
		}
		for i, other := range s.data.Customers {
			if i != idx && strings.EqualFold(other.Name, name) {
				return domain.Customer{}, fmt.Errorf("customer %q: %w", name, ErrDuplicateName)
			}
		}
		customer.Name = name
	}
	if patch.Phone != nil {
		customer.Phone = strings.TrimSpace(*patch.Phone)
	}
	if patch.TC != nil {
		customer.TC = strings.TrimSpace(*patch.TC)
	}
	if patch.DOB != nil {
		customer.DOB = strings.TrimSpace(*patch.DOB)
	}
	if patch.City != nil {
		customer.City = strings.TrimSpace(*patch.City)
	}
	if patch.District != nil {
		customer.District = strings.TrimSpace(*patch.District)
	}
	if patch.Street != nil {
		customer.Street = strings.TrimSpace(*patch.Street)
	}

	renamed := customer.Name != oldName
	var prevTransactions []domain.Transaction
	if renamed {
		prevTransactions = make([]domain.Transaction, len(s.data.Transactions))
		copy(prevTransactions, s.data.Transactions)
		for i := range s.data.Transactions {
			if strings.EqualFold(strings.TrimSpace(s.data.Transactions[i].Customer), oldName) {
				s.data.Transactions[i].Customer = customer.Name
			}
		}
		if err := s.saveTransactions(ctx); err != nil {
			s.data.Transactions = prevTransactions
			return domain.Customer{}, err
		}
	}

	s.data.Customers[idx] = customer
	if renamed {
		if err := s.recomputeAndSaveCustomers(ctx); err != nil {
			return domain.Customer{}, err
		}
		s.touch(ctx)
		return s.data.Customers[idx], nil
	}
	if err := s.saveCustomers(ctx); err != nil {
		return domain.Customer{}, err
	}
	s.touch(ctx)
	return customer, nil
}

// DeleteCustomer removes a customer. When the customer has transactions
// the caller must have confirmed the cascade, which deletes those
// transactions too.
func (s *Service) DeleteCustomer(ctx context.Context, id string, cascade bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}

	idx := s.findCustomerByID(id)
	if idx < 0 {
		return fmt.Errorf("customer %s: %w", id, ErrNotFound)
	}
	name := s.data.Customers[idx].Name

	owned := 0
	for _, t := range s.data.Transactions {
		if strings.EqualFold(strings.TrimSpace(t.Customer), name) {
			owned++
		}
	}
	if owned > 0 && !cascade {
		return fmt.Errorf("customer %q has %d transactions: %w", name, owned, ErrHasTransactions)
	}

	prevTransactions := s.data.Transactions
	prevCustomers := make([]domain.Customer, len(s.data.Customers))
	copy(prevCustomers, s.data.Customers)

	if owned > 0 {
		kept := make([]domain.Transaction, 0, len(s.data.Transactions)-owned)
		for _, t := range s.data.Transactions {
			if !strings.EqualFold(strings.TrimSpace(t.Customer), name) {
				kept = append(kept, t)
			}
		}
		s.data.Transactions = kept
		if err := s.saveTransactions(ctx); err != nil {
			s.data.Transactions = prevTransactions
			return err
		}
	}

	s.data.Customers = append(s.data.Customers[:idx], s.data.Customers[idx+1:]...)
	if err := s.recomputeAndSaveCustomers(ctx); err != nil {
		s.data.Customers = prevCustomers
		return err
	}
	s.touch(ctx)
	return nil
}

func (s *Service) Products(ctx context.Context) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	out := make([]domain.Product, len(s.data.Products))
	copy(out, s.data.Products)
	return out, nil
}

func (s *Service) AddProduct(ctx context.Context, in ProductInput) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return domain.Product{}, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Product{}, ErrEmptyName
	}
	for _, p := range s.data.Products {
		if strings.EqualFold(p.Name, name) {
			return domain.Product{}, fmt.Errorf("product %q: %w", name, ErrDuplicateName)
		}
	}
	if in.BuyingPrice < 0 || in.SellingPrice < 0 {
		return domain.Product{}, fmt.Errorf("prices cannot be negative")
	}
	if in.Stock < 0 {
		return domain.Product{}, fmt.Errorf("stock cannot be negative")
	}

	product := domain.Product{
		ID:           uuid.NewString(),
		Name:         name,
		Type:         strings.TrimSpace(in.Type),
		Unit:         strings.TrimSpace(in.Unit),
		BuyingPrice:  in.BuyingPrice,
		SellingPrice: in.SellingPrice,
		Stock:        in.Stock,
	}
	s.data.Products = append(s.data.Products, product)
	if err := s.saveProducts(ctx); err != nil {
		s.data.Products = s.data.Products[:len(s.data.Products)-1]
		return domain.Product{}, err
	}
	s.touch(ctx)
	return product, nil
}

// UpdateProduct applies a partial edit. Stock is preserved unless the
// patch carries it explicitly; a price or type edit must never reset the
// on-hand quantity.
func (s *Service) UpdateProduct(ctx context.Context, id string, patch ProductPatch) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return domain.Product{}, err
	}

	idx := s.findProductByID(id)
	if idx < 0 {
		return domain.Product{}, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	product := s.data.Products[idx]

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return domain.Product{}, ErrEmptyName
		}
		for i, other := range s.data.Products {
			if i != idx && strings.EqualFold(other.Name, name) {
				return domain.Product{}, fmt.Errorf("product %q: %w", name, ErrDuplicateName)
			}
		}
		product.Name = name
	}
	if patch.Type != nil {
		product.Type = strings.TrimSpace(*patch.Type)
	}
	if patch.Unit != nil {
		product.Unit = strings.TrimSpace(*patch.Unit)
	}
	if patch.BuyingPrice != nil {
		if *patch.BuyingPrice < 0 {
			return domain.Product{}, fmt.Errorf("buyingPrice cannot be negative")
		}
		product.BuyingPrice = *patch.BuyingPrice
	}
	if patch.SellingPrice != nil {
		if *patch.SellingPrice < 0 {
			return domain.Product{}, fmt.Errorf("sellingPrice cannot be negative")
		}
		product.SellingPrice = *patch.SellingPrice
	}
	if patch.Stock != nil {
		if *patch.Stock < 0 {
			return domain.Product{}, fmt.Errorf("stock cannot be negative")
		}
		product.Stock = *patch.Stock
	}

	prev := s.data.Products[idx]
	s.data.Products[idx] = product
	if err := s.saveProducts(ctx); err != nil {
		s.data.Products[idx] = prev
		return domain.Product{}, err
	}
	s.touch(ctx)
	return product, nil
}

// DeleteProduct is unconditional: historical transactions keep the
// recorded name and price, no referential integrity is enforced.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}

	idx := s.findProductByID(id)
	if idx < 0 {
		return fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	prev := make([]domain.Product, len(s.data.Products))
	copy(prev, s.data.Products)
	s.data.Products = append(s.data.Products[:idx], s.data.Products[idx+1:]...)
	if err := s.saveProducts(ctx); err != nil {
		s.data.Products = prev
		return err
	}
	s.touch(ctx)
	return nil
}

// AddStock adds a positive quantity to a product's on-hand stock.
func (s *Service) AddStock(ctx context.Context, id string, quantity float64) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return domain.Product{}, err
	}

	idx := s.findProductByID(id)
	if idx < 0 {
		return domain.Product{}, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	if quantity <= 0 {
		return domain.Product{}, fmt.Errorf("stock quantity must be positive")
	}

	prevStock := s.data.Products[idx].Stock
	s.data.Products[idx].Stock += quantity
	if err := s.saveProducts(ctx); err != nil {
		s.data.Products[idx].Stock = prevStock
		return domain.Product{}, err
	}
	s.touch(ctx)
	return s.data.Products[idx], nil
}
