package bulkimport

import (
	"fmt"
	"io"

	"veresiye/internal/domain"

	"github.com/xuri/excelize/v2"
)

// ParseTransactionsXLSX reads the first sheet of a workbook with the same
// header-alias mapping as the CSV path.
func ParseTransactionsXLSX(reader io.Reader) ([]domain.Transaction, error) {
	rows, err := readSheet(reader)
	if err != nil {
		return nil, err
	}
	return transactionsFromRows(rows)
}

func ParseProductsXLSX(reader io.Reader) ([]domain.Product, error) {
	rows, err := readSheet(reader)
	if err != nil {
		return nil, err
	}
	return productsFromRows(rows)
}

func readSheet(reader io.Reader) ([][]string, error) {
	file, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("open xlsx file: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx file has no sheets")
	}
	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("xlsx file is empty")
	}
	return rows, nil
}
