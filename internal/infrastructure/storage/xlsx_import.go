package storage

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"github.com/yourusername/plastic-advisor-bot/internal/domain/entity"
)

// LoadCatalogXLSX katalogni Excel fayldan o'qiydi. Birinchi varaq,
// birinchi qator sarlavha: ID | Title | Material | Description | Link.
func LoadCatalogXLSX(path string) ([]entity.Product, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("catalog file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read catalog rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("catalog file has no data rows")
	}

	var products []entity.Product
	for i, row := range rows[1:] {
		p, err := parseCatalogRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if p == nil {
			continue // bo'sh qator
		}
		products = append(products, *p)
	}

	if len(products) == 0 {
		return nil, fmt.Errorf("catalog file has no valid products")
	}
	return products, nil
}

func parseCatalogRow(row []string) (*entity.Product, error) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	id := cell(0)
	title := cell(1)
	material := cell(2)

	if id == "" && title == "" && material == "" {
		return nil, nil
	}
	if id == "" || title == "" || material == "" {
		return nil, fmt.Errorf("id, title va material ustunlari to'ldirilishi shart")
	}

	p := &entity.Product{
		ID:          id,
		Title:       title,
		Material:    strings.ToUpper(material),
		Description: cell(3),
	}
	if link := cell(4); link != "" {
		p.Links = []string{link}
	}
	return p, nil
}
