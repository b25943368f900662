package domain

import "strings"

// UnnamedCustomer is the sentinel the bulk importer assigns to rows with
// no customer column; it never becomes a customer record.
const UnnamedCustomer = "unnamed"

// Transaction types. Turkish literals from the legacy data files are
// accepted as aliases and normalized on input.
const (
	TypeSale    = "SALE"
	TypeCredit  = "CREDIT"
	TypeBoth    = "BOTH"
	TypePayment = "PAYMENT"
	TypeReturn  = "RETURN"
)

var typeAliases = map[string]string{
	"sale":     TypeSale,
	"satış":    TypeSale,
	"satis":    TypeSale,
	"credit":   TypeCredit,
	"veresiye": TypeCredit,
	"both":     TypeBoth,
	"ikiside":  TypeBoth,
	"payment":  TypePayment,
	"ödeme":    TypePayment,
	"odeme":    TypePayment,
	"return":   TypeReturn,
	"iade":     TypeReturn,
}

// NormalizeType maps a raw type literal (English or Turkish, any case) to
// its canonical constant. The second return reports whether the literal
// was recognized. Dotted capital İ is folded to i first; strings.ToLower
// would otherwise leave a combining mark behind.
func NormalizeType(raw string) (string, bool) {
	key := strings.ReplaceAll(strings.TrimSpace(raw), "İ", "i")
	canonical, ok := typeAliases[strings.ToLower(key)]
	return canonical, ok
}

type Transaction struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Customer    string  `json:"customer"`
	Type        string  `json:"type"`
	ProductType string  `json:"productType,omitempty"`
	ProductName string  `json:"productName"`
	Unit        string  `json:"unit,omitempty"`
	Quantity    float64 `json:"quantity"`
	Price       float64 `json:"price"`
	Total       float64 `json:"total"`
}

// Customer aggregates (Veresiye, Satis) are a denormalized cache: they
// are recomputed from the transaction set on every mutation and never
// read back as primary data.
type Customer struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Phone    string  `json:"phone,omitempty"`
	TC       string  `json:"tc,omitempty"`
	DOB      string  `json:"dob,omitempty"`
	City     string  `json:"city,omitempty"`
	District string  `json:"district,omitempty"`
	Street   string  `json:"street,omitempty"`
	Veresiye float64 `json:"veresiye"`
	Satis    float64 `json:"satis"`
}

type Product struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Type         string  `json:"type,omitempty"`
	Unit         string  `json:"unit,omitempty"`
	BuyingPrice  float64 `json:"buyingPrice"`
	SellingPrice float64 `json:"sellingPrice"`
	// Price is the single-price field of older ledger generations;
	// normalization folds it into SellingPrice at load.
	Price float64 `json:"price,omitempty"`
	Stock float64 `json:"stock"`
}

type LedgerMeta struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	CreatedDate  string `json:"createdDate"`
	LastModified string `json:"lastModified"`
}

// LedgerData is one ledger's three record sets.
type LedgerData struct {
	Transactions []Transaction `json:"transactions"`
	Customers    []Customer    `json:"customers"`
	Products     []Product     `json:"products"`
}

type DashboardSummary struct {
	TotalTransactions int     `json:"totalTransactions"`
	TotalCredit       float64 `json:"totalCredit"`
	TotalSales        float64 `json:"totalSales"`
	TotalCOGS         float64 `json:"totalCogs"`
	Profit            float64 `json:"profit"`
	ReturnTotal       float64 `json:"returnTotal"`
}

type ExportBundle struct {
	Version    string         `json:"version"`
	ExportDate string         `json:"exportDate"`
	Databases  []BundleLedger `json:"databases"`
}

type BundleLedger struct {
	Metadata     LedgerMeta    `json:"metadata"`
	Transactions []Transaction `json:"transactions"`
	Customers    []Customer    `json:"customers"`
	Products     []Product     `json:"products"`
}
