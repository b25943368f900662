package ledger

import (
	"context"
	"testing"

	"veresiye/internal/domain"
	"veresiye/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	return New(mem), mem
}

func seedProduct(t *testing.T, svc *Service, in ProductInput) domain.Product {
	t.Helper()
	product, err := svc.AddProduct(context.Background(), in)
	require.NoError(t, err)
	return product
}

func TestRecordTransactionSale(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	seedProduct(t, svc, ProductInput{Name: "Yem", Unit: "çuval", SellingPrice: 5, BuyingPrice: 3, Stock: 20})

	txn, err := svc.RecordTransaction(ctx, TransactionInput{
		Customer:    "Ahmet",
		ProductName: "yem",
		Quantity:    10,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, txn.ID)
	assert.Equal(t, domain.TypeSale, txn.Type)
	// price falls back to the catalog selling price
	assert.Equal(t, 5.0, txn.Price)
	assert.Equal(t, 50.0, txn.Total)
	assert.Equal(t, "Yem", txn.ProductName)
	assert.Equal(t, "çuval", txn.Unit)

	products, err := svc.Products(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 10.0, products[0].Stock)

	customers, err := svc.Customers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "Ahmet", customers[0].Name)
	assert.Equal(t, 50.0, customers[0].Satis)
	assert.Zero(t, customers[0].Veresiye)
}

func TestRecordTransactionCredit(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	seedProduct(t, svc, ProductInput{Name: "Gübre", SellingPrice: 20, Stock: 50})

	_, err := svc.RecordTransaction(ctx, TransactionInput{
		Customer:    "Ayşe",
		Type:        "veresiye",
		ProductName: "Gübre",
		Quantity:    2,
	})
	require.NoError(t, err)

	customers, err := svc.Customers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, 40.0, customers[0].Veresiye)
	assert.Zero(t, customers[0].Satis)
}

func TestRecordTransactionInsufficientStock(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	seedProduct(t, svc, ProductInput{Name: "Yem", SellingPrice: 5, Stock: 10})

	_, err := svc.RecordTransaction(ctx, TransactionInput{
		Customer:    "Ahmet",
		ProductName: "Yem",
		Quantity:    30,
	})
	require.ErrorIs(t, err, ErrInsufficientStock)

	products, err := svc.Products(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10.0, products[0].Stock)

	transactions, err := svc.Transactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, transactions)
}

func TestRecordTransactionReturnIncreasesStock(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	seedProduct(t, svc, ProductInput{Name: "Yem", SellingPrice: 5, Stock: 10})

	_, err := svc.RecordTransaction(ctx, TransactionInput{
		Customer:    "Ahmet",
		Type:        "iade",
		ProductName: "Yem",
		Quantity:    3,
	})
	require.NoError(t, err)

	products, err := svc.Products(ctx)
	require.NoError(t, err)
	assert.Equal(t, 13.0, products[0].Stock)
}

func TestRecordTransactionUnknownProduct(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.RecordTransaction(context.Background(), TransactionInput{
		Customer:    "Ahmet",
		ProductName: "Tohum",
		Quantity:    1,
		Price:       5,
	})
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestRecordTransactionValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	seedProduct(t, svc, ProductInput{Name: "Yem", SellingPrice: 5, Stock: 10})

	cases := []struct {
		name string
		in   TransactionInput
	}{
		{"missing customer", TransactionInput{ProductName: "Yem", Quantity: 1}},
		{"bad date", TransactionInput{Date: "12/05/2024", Customer: "A", ProductName: "Yem", Quantity: 1}},
		{"unknown type", TransactionInput{Customer: "A", Type: "GIFT", ProductName: "Yem", Quantity: 1}},
		{"missing product", TransactionInput{Customer: "A", Quantity: 1}},
		{"zero quantity", TransactionInput{Customer: "A", ProductName: "Yem"}},
		{"negative price", TransactionInput{Customer: "A", ProductName: "Yem", Quantity: 1, Price: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.RecordTransaction(ctx, tc.in)
			assert.Error(t, err)
		})
	}

	transactions, err := svc.Transactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, transactions)
}

func TestRecordTransactionPersistFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	svc, mem := newTestService(t)
	seedProduct(t, svc, ProductInput{Name: "Yem", SellingPrice: 5, Stock: 10})

	meta, _, err := svc.CurrentLedger(ctx)
	require.NoError(t, err)
	mem.FailSetKeys = map[string]bool{transactionsKey(meta.ID): true}

	_, err = svc.RecordTransaction(ctx, TransactionInput{
		Customer:    "Ahmet",
		ProductName: "Yem",
		Quantity:    4,
	})
	require.Error(t, err)

	mem.FailSetKeys = nil
	transactions, err := svc.Transactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, transactions)

	products, err := svc.Products(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10.0, products[0].Stock)
}

func TestRecordPayment(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	txn, err := svc.RecordPayment(ctx, PaymentInput{Customer: "Ahmet", Amount: 75})
	require.NoError(t, err)

	assert.Equal(t, domain.TypePayment, txn.Type)
	assert.Equal(t, "Payment", txn.ProductName)
	assert.Equal(t, 1.0, txn.Quantity)
	assert.Equal(t, 75.0, txn.Total)

	customers, err := svc.Customers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, 75.0, customers[0].Satis)
}

func TestRecordPaymentRejectsNonPositiveAmount(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.RecordPayment(context.Background(), PaymentInput{Customer: "Ahmet", Amount: 0})
	assert.Error(t, err)
}

func TestCustomerTransactions(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	seedProduct(t, svc, ProductInput{Name: "Yem", SellingPrice: 5, Stock: 100})

	_, err := svc.RecordTransaction(ctx, TransactionInput{Customer: "Ahmet", ProductName: "Yem", Quantity: 1})
	require.NoError(t, err)
	_, err = svc.RecordTransaction(ctx, TransactionInput{Customer: "ahmet", ProductName: "Yem", Quantity: 2})
	require.NoError(t, err)

	customers, err := svc.Customers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 1)

	statement, err := svc.CustomerTransactions(ctx, customers[0].ID)
	require.NoError(t, err)
	assert.Len(t, statement, 2)

	_, err = svc.CustomerTransactions(ctx, "no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}
