package ledger

import (
	"context"
	"testing"

	"veresiye/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportBulkMergesCatalog(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	seedProduct(t, svc, ProductInput{Name: "Yem", SellingPrice: 10, Stock: 5})

	stats, err := svc.ImportBulk(ctx, nil, []domain.Product{
		{Name: "yem", SellingPrice: 99, Stock: 50},
		{Name: "Gübre", SellingPrice: 20, Stock: 30},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Products)

	products, err := svc.Products(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	// the existing catalog entry wins over the imported duplicate
	assert.Equal(t, 10.0, products[0].SellingPrice)
	assert.Equal(t, 5.0, products[0].Stock)
	assert.Equal(t, "Gübre", products[1].Name)
	assert.NotEmpty(t, products[1].ID)
}

func TestImportBulkBackfillsPriceFromCatalog(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	stats, err := svc.ImportBulk(ctx, []domain.Transaction{
		{Date: "2024-05-01", Customer: "Ahmet", Type: domain.TypeCredit, ProductName: "Gübre", Quantity: 2},
		{Date: "2024-05-02", Customer: "Veli", Type: domain.TypeSale, ProductName: "Gübre", Quantity: 4, Total: 100},
	}, []domain.Product{
		{Name: "Gübre", SellingPrice: 20, Stock: 30},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Transactions)
	assert.Equal(t, 2, stats.Customers)

	transactions, err := svc.Transactions(ctx)
	require.NoError(t, err)
	require.Len(t, transactions, 2)
	assert.Equal(t, 20.0, transactions[0].Price)
	assert.Equal(t, 40.0, transactions[0].Total)
	assert.NotEmpty(t, transactions[0].ID)
	// price derived from total when only the total column was present
	assert.Equal(t, 25.0, transactions[1].Price)
	assert.Equal(t, 100.0, transactions[1].Total)

	customers, err := svc.Customers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, 40.0, customers[0].Veresiye)
	assert.Equal(t, 100.0, customers[1].Satis)
}

func TestImportBulkDropsUnnamedSentinel(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.ImportBulk(ctx, []domain.Transaction{
		{Customer: domain.UnnamedCustomer, Type: domain.TypeSale, ProductName: "Yem", Quantity: 1, Price: 5, Total: 5},
		{Customer: "Ahmet", Type: domain.TypeSale, ProductName: "Yem", Quantity: 1, Price: 5, Total: 5},
	}, nil)
	require.NoError(t, err)

	customers, err := svc.Customers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "Ahmet", customers[0].Name)

	// the transactions themselves are all kept
	transactions, err := svc.Transactions(ctx)
	require.NoError(t, err)
	assert.Len(t, transactions, 2)
}

func TestImportBulkDoesNotTouchStock(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	seedProduct(t, svc, ProductInput{Name: "Yem", SellingPrice: 5, Stock: 10})

	_, err := svc.ImportBulk(ctx, []domain.Transaction{
		{Customer: "Ahmet", Type: domain.TypeSale, ProductName: "Yem", Quantity: 100, Price: 5, Total: 500},
	}, nil)
	require.NoError(t, err)

	products, err := svc.Products(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10.0, products[0].Stock)
}

func TestNormalizeLegacyProductPrice(t *testing.T) {
	data := domain.LedgerData{
		Products: []domain.Product{
			{ID: "p1", Name: "Yem", Price: 12, Stock: -3},
			{Name: " Gübre ", SellingPrice: 20},
		},
		Transactions: []domain.Transaction{
			{ID: "t1", Customer: "Ahmet", Type: "satis", ProductName: "Yem", Quantity: 2, Price: 12},
		},
	}

	normalizeLedgerData(&data)

	assert.Equal(t, 12.0, data.Products[0].SellingPrice)
	assert.Zero(t, data.Products[0].Price)
	assert.Zero(t, data.Products[0].Stock)
	assert.Equal(t, "Gübre", data.Products[1].Name)
	assert.NotEmpty(t, data.Products[1].ID)
	assert.Equal(t, domain.TypeSale, data.Transactions[0].Type)
	assert.Equal(t, 24.0, data.Transactions[0].Total)
}
