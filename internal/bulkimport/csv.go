package bulkimport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"veresiye/internal/domain"
)

// DefaultUnit is assigned to transaction rows with no unit column.
const DefaultUnit = "adet"

var unknownProductNames = map[string]bool{
	"unknown product": true,
	"bilinmeyen ürün": true,
	"bilinmeyen urun": true,
}

var transactionHeaderAliases = map[string]string{
	"date":         "date",
	"tarih":        "date",
	"customer":     "customer",
	"müşteri":      "customer",
	"musteri":      "customer",
	"isim":         "customer",
	"type":         "type",
	"tür":          "type",
	"tur":          "type",
	"işlem":        "type",
	"islem":        "type",
	"product type": "product_type",
	"ürün türü":    "product_type",
	"urun turu":    "product_type",
	"product":      "product_name",
	"product name": "product_name",
	"ürün":         "product_name",
	"urun":         "product_name",
	"ürün adı":     "product_name",
	"urun adi":     "product_name",
	"unit":         "unit",
	"birim":        "unit",
	"quantity":     "quantity",
	"qty":          "quantity",
	"miktar":       "quantity",
	"price":        "price",
	"fiyat":        "price",
	"birim fiyat":  "price",
	"unit price":   "price",
	"total":        "total",
	"tutar":        "total",
	"toplam":       "total",
}

// Product name columns in priority order; which alias matched classifies
// the product type (the legacy exports used one column per product
// family).
var productNameColumns = []struct {
	alias       string
	productType string
}{
	{"gübre", "Gübre"},
	{"gubre", "Gübre"},
	{"fertilizer", "Gübre"},
	{"yem", "Yem"},
	{"feed", "Yem"},
	{"ürün adı", ""},
	{"urun adi", ""},
	{"product name", ""},
	{"ürün", ""},
	{"urun", ""},
	{"product", ""},
	{"name", ""},
}

var productHeaderAliases = map[string]string{
	"type":          "type",
	"tür":           "type",
	"tur":           "type",
	"unit":          "unit",
	"birim":         "unit",
	"price":         "selling_price",
	"fiyat":         "selling_price",
	"selling price": "selling_price",
	"satış fiyatı":  "selling_price",
	"satis fiyati":  "selling_price",
	"buying price":  "buying_price",
	"alış fiyatı":   "buying_price",
	"alis fiyati":   "buying_price",
	"stock":         "stock",
	"stok":          "stock",
}

// ParseTransactionsCSV reads header-keyed delimited text into normalized
// transactions. Missing columns take the declared defaults: date today,
// customer the unnamed sentinel, type SALE, quantity 1, unit "adet",
// price and total 0.
func ParseTransactionsCSV(reader io.Reader) ([]domain.Transaction, error) {
	rows, err := readCSV(reader)
	if err != nil {
		return nil, err
	}
	return transactionsFromRows(rows)
}

// ParseProductsCSV reads header-keyed delimited text into catalog
// entries. Rows with a non-positive selling price or the unknown-product
// sentinel name are dropped; duplicate names keep the first occurrence.
func ParseProductsCSV(reader io.Reader) ([]domain.Product, error) {
	rows, err := readCSV(reader)
	if err != nil {
		return nil, err
	}
	return productsFromRows(rows)
}

func readCSV(reader io.Reader) ([][]string, error) {
	r := csv.NewReader(reader)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return rows, nil
}

func transactionsFromRows(rows [][]string) ([]domain.Transaction, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("input has no header row")
	}
	colMap := mapColumns(rows[0], transactionHeaderAliases)

	result := make([]domain.Transaction, 0, len(rows)-1)
	for index := 1; index < len(rows); index++ {
		cells := rows[index]
		if isBlankRow(cells) {
			continue
		}

		date := readMapped(cells, colMap, "date")
		if date == "" {
			date = time.Now().Format("2006-01-02")
		}

		customer := readMapped(cells, colMap, "customer")
		if customer == "" {
			customer = domain.UnnamedCustomer
		}

		typ := domain.TypeSale
		if raw := readMapped(cells, colMap, "type"); raw != "" {
			if canonical, ok := domain.NormalizeType(raw); ok {
				typ = canonical
			}
		}

		unit := readMapped(cells, colMap, "unit")
		if unit == "" {
			unit = DefaultUnit
		}

		quantity := 1.0
		if raw := readMapped(cells, colMap, "quantity"); raw != "" {
			parsed, err := parseFloat(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d invalid quantity: %w", index+1, err)
			}
			quantity = parsed
		}
		if quantity <= 0 {
			quantity = 1
		}

		price := 0.0
		if raw := readMapped(cells, colMap, "price"); raw != "" {
			parsed, err := parseFloat(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d invalid price: %w", index+1, err)
			}
			price = parsed
		}

		total := 0.0
		if raw := readMapped(cells, colMap, "total"); raw != "" {
			parsed, err := parseFloat(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d invalid total: %w", index+1, err)
			}
			total = parsed
		}
		if total == 0 && price != 0 {
			total = quantity * price
		}
		if price == 0 && total != 0 && quantity != 0 {
			price = total / quantity
		}

		result = append(result, domain.Transaction{
			Date:        date,
			Customer:    customer,
			Type:        typ,
			ProductType: readMapped(cells, colMap, "product_type"),
			ProductName: readMapped(cells, colMap, "product_name"),
			Unit:        unit,
			Quantity:    quantity,
			Price:       price,
			Total:       total,
		})
	}
	return result, nil
}

func productsFromRows(rows [][]string) ([]domain.Product, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("input has no header row")
	}

	nameCol := -1
	nameType := ""
	header := make([]string, len(rows[0]))
	for i, col := range rows[0] {
		header[i] = normalizeHeader(col)
	}
	for _, candidate := range productNameColumns {
		for i, col := range header {
			if col == candidate.alias {
				nameCol = i
				nameType = candidate.productType
				break
			}
		}
		if nameCol >= 0 {
			break
		}
	}
	if nameCol < 0 {
		return nil, fmt.Errorf("missing product name column")
	}
	colMap := mapColumns(rows[0], productHeaderAliases)

	seen := make(map[string]bool)
	result := make([]domain.Product, 0, len(rows)-1)
	for index := 1; index < len(rows); index++ {
		cells := rows[index]
		name := strings.TrimSpace(readCell(cells, nameCol))
		if name == "" || unknownProductNames[strings.ToLower(name)] {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}

		sellingPrice := 0.0
		if raw := readMapped(cells, colMap, "selling_price"); raw != "" {
			parsed, err := parseFloat(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d invalid price: %w", index+1, err)
			}
			sellingPrice = parsed
		}
		if sellingPrice <= 0 {
			continue
		}

		buyingPrice := 0.0
		if raw := readMapped(cells, colMap, "buying_price"); raw != "" {
			parsed, err := parseFloat(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d invalid buying price: %w", index+1, err)
			}
			buyingPrice = parsed
		}

		stock := 0.0
		if raw := readMapped(cells, colMap, "stock"); raw != "" {
			parsed, err := parseFloat(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d invalid stock: %w", index+1, err)
			}
			stock = parsed
		}

		productType := strings.TrimSpace(readMapped(cells, colMap, "type"))
		if productType == "" {
			productType = nameType
		}
		unit := readMapped(cells, colMap, "unit")
		if unit == "" {
			unit = DefaultUnit
		}

		seen[key] = true
		result = append(result, domain.Product{
			Name:         name,
			Type:         productType,
			Unit:         unit,
			BuyingPrice:  buyingPrice,
			SellingPrice: sellingPrice,
			Stock:        stock,
		})
	}
	return result, nil
}

func mapColumns(header []string, aliases map[string]string) map[string]int {
	mapped := make(map[string]int)
	for idx, col := range header {
		normalized := normalizeHeader(col)
		if normalized == "" {
			continue
		}
		canonical, ok := aliases[normalized]
		if !ok {
			continue
		}
		if _, exists := mapped[canonical]; !exists {
			mapped[canonical] = idx
		}
	}
	return mapped
}

func normalizeHeader(raw string) string {
	value := strings.TrimSpace(raw)
	value = strings.TrimPrefix(value, "\ufeff")
	// dotted capital \u0130 does not survive strings.ToLower cleanly
	value = strings.ReplaceAll(value, "\u0130", "i")
	value = strings.ToLower(value)
	value = strings.ReplaceAll(value, "_", " ")
	value = strings.Join(strings.Fields(value), " ")
	return value
}

func readMapped(row []string, colMap map[string]int, canonical string) string {
	idx, ok := colMap[canonical]
	if !ok {
		return ""
	}
	return strings.TrimSpace(readCell(row, idx))
}

func readCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func isBlankRow(cells []string) bool {
	for _, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func parseFloat(raw string) (float64, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, fmt.Errorf("value is empty")
	}
	parsed, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	return parsed, nil
}
