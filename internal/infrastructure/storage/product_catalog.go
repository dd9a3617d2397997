package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/lib/pq"
	"github.com/yourusername/plastic-advisor-bot/internal/domain/entity"
	"github.com/yourusername/plastic-advisor-bot/internal/domain/repository"
	"github.com/yourusername/plastic-advisor-bot/internal/search"
)

type memoryProductRepository struct {
	mu       sync.RWMutex
	products []entity.Product
	byID     map[string]int
}

// NewMemoryProductRepository in-memory katalog yaratish.
// SearchKeywords shu yerda bir marta tayyorlanadi - matcher mahsulot
// matnini o'zi normalizatsiya qilmaydi.
func NewMemoryProductRepository(products []entity.Product) repository.ProductRepository {
	repo := &memoryProductRepository{}
	repo.replace(products)
	return repo
}

func (m *memoryProductRepository) replace(products []entity.Product) {
	prepared := make([]entity.Product, len(products))
	byID := make(map[string]int, len(products))
	for i, p := range products {
		if len(p.SearchKeywords) == 0 {
			p.SearchKeywords = search.BuildSearchKeywords(p.Title, p.Material)
		}
		prepared[i] = p
		byID[p.ID] = i
	}
	m.mu.Lock()
	m.products = prepared
	m.byID = byID
	m.mu.Unlock()
}

func (m *memoryProductRepository) GetProducts(_ context.Context) ([]entity.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.products) == 0 {
		return nil, fmt.Errorf("product catalog is empty")
	}
	out := make([]entity.Product, len(m.products))
	copy(out, m.products)
	return out, nil
}

func (m *memoryProductRepository) GetByID(_ context.Context, id string) (*entity.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("product not found: %s", id)
	}
	product := m.products[i]
	return &product, nil
}

func (m *memoryProductRepository) ReplaceAll(_ context.Context, products []entity.Product) error {
	if len(products) == 0 {
		return fmt.Errorf("refusing to replace catalog with empty product list")
	}
	m.replace(products)
	return nil
}

// LoadCatalogPostgres katalogni Postgres dagi products jadvalidan o'qiydi
func LoadCatalogPostgres(ctx context.Context, dsn string) ([]entity.Product, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	rows, err := db.QueryContext(ctx, `
	SELECT id, title, material, COALESCE(description, ''), COALESCE(link, '')
	FROM products
	ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	defer rows.Close()

	var products []entity.Product
	for rows.Next() {
		var p entity.Product
		var link string
		if err := rows.Scan(&p.ID, &p.Title, &p.Material, &p.Description, &link); err != nil {
			return nil, err
		}
		if link != "" {
			p.Links = []string{link}
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}
