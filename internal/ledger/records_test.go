package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddCustomerRejectsDuplicateName(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.AddCustomer(ctx, CustomerInput{Name: "Ahmet"})
	require.NoError(t, err)

	_, err = svc.AddCustomer(ctx, CustomerInput{Name: "ahmet"})
	assert.ErrorIs(t, err, ErrDuplicateName)

	_, err = svc.AddCustomer(ctx, CustomerInput{Name: "   "})
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestUpdateCustomerRenameCascades(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	seedProduct(t, svc, ProductInput{Name: "Gübre", SellingPrice: 20, Stock: 50})

	customer, err := svc.AddCustomer(ctx, CustomerInput{Name: "Ahmet", Phone: "0500"})
	require.NoError(t, err)

	_, err = svc.RecordTransaction(ctx, TransactionInput{
		Customer: "Ahmet", Type: "credit", ProductName: "Gübre", Quantity: 5,
	})
	require.NoError(t, err)

	newName := "Ahmet Yılmaz"
	updated, err := svc.UpdateCustomer(ctx, customer.ID, CustomerPatch{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, newName, updated.Name)
	assert.Equal(t, "0500", updated.Phone)

	transactions, err := svc.Transactions(ctx)
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, newName, transactions[0].Customer)

	// the aggregate follows the renamed join key, no orphan under the old name
	customers, err := svc.Customers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, customer.ID, customers[0].ID)
	assert.Equal(t, 100.0, customers[0].Veresiye)
}

func TestUpdateCustomerRenameRejectsTakenName(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.AddCustomer(ctx, CustomerInput{Name: "Ahmet"})
	require.NoError(t, err)
	other, err := svc.AddCustomer(ctx, CustomerInput{Name: "Mehmet"})
	require.NoError(t, err)

	taken := "AHMET"
	_, err = svc.UpdateCustomer(ctx, other.ID, CustomerPatch{Name: &taken})
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestDeleteCustomerRequiresCascade(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	seedProduct(t, svc, ProductInput{Name: "Yem", SellingPrice: 5, Stock: 100})

	customer, err := svc.AddCustomer(ctx, CustomerInput{Name: "Ahmet"})
	require.NoError(t, err)
	_, err = svc.RecordTransaction(ctx, TransactionInput{Customer: "Ahmet", ProductName: "Yem", Quantity: 1})
	require.NoError(t, err)

	err = svc.DeleteCustomer(ctx, customer.ID, false)
	require.ErrorIs(t, err, ErrHasTransactions)

	err = svc.DeleteCustomer(ctx, customer.ID, true)
	require.NoError(t, err)

	customers, err := svc.Customers(ctx)
	require.NoError(t, err)
	assert.Empty(t, customers)

	transactions, err := svc.Transactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, transactions)
}

func TestDeleteCustomerWithoutTransactions(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	customer, err := svc.AddCustomer(ctx, CustomerInput{Name: "Ahmet"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCustomer(ctx, customer.ID, false))

	err = svc.DeleteCustomer(ctx, customer.ID, false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateProductPreservesStock(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	product := seedProduct(t, svc, ProductInput{Name: "Yem", SellingPrice: 5, Stock: 42})

	newPrice := 7.5
	updated, err := svc.UpdateProduct(ctx, product.ID, ProductPatch{SellingPrice: &newPrice})
	require.NoError(t, err)
	assert.Equal(t, 7.5, updated.SellingPrice)
	assert.Equal(t, 42.0, updated.Stock)

	newStock := 10.0
	updated, err = svc.UpdateProduct(ctx, product.ID, ProductPatch{Stock: &newStock})
	require.NoError(t, err)
	assert.Equal(t, 10.0, updated.Stock)
}

func TestUpdateProductRejectsNegativeValues(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	product := seedProduct(t, svc, ProductInput{Name: "Yem", SellingPrice: 5, Stock: 1})

	bad := -1.0
	_, err := svc.UpdateProduct(ctx, product.ID, ProductPatch{SellingPrice: &bad})
	assert.Error(t, err)
	_, err = svc.UpdateProduct(ctx, product.ID, ProductPatch{Stock: &bad})
	assert.Error(t, err)
}

func TestDeleteProductKeepsHistory(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	product := seedProduct(t, svc, ProductInput{Name: "Yem", SellingPrice: 5, Stock: 100})

	_, err := svc.RecordTransaction(ctx, TransactionInput{Customer: "Ahmet", ProductName: "Yem", Quantity: 2})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(ctx, product.ID))

	products, err := svc.Products(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)

	transactions, err := svc.Transactions(ctx)
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, "Yem", transactions[0].ProductName)
}

func TestAddStock(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	product := seedProduct(t, svc, ProductInput{Name: "Yem", SellingPrice: 5, Stock: 10})

	updated, err := svc.AddStock(ctx, product.ID, 15)
	require.NoError(t, err)
	assert.Equal(t, 25.0, updated.Stock)

	_, err = svc.AddStock(ctx, product.ID, 0)
	assert.Error(t, err)
	_, err = svc.AddStock(ctx, "no-such-id", 5)
	assert.ErrorIs(t, err, ErrNotFound)
}
