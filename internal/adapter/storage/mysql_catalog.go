package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/rocketshoes-cart/internal/core/domain"
)

var ErrNotFound = errors.New("not found")

const (
	selectProductQuery  = `SELECT id, title, price, image FROM products WHERE id = ?`
	selectProductsQuery = `SELECT id, title, price, image FROM products ORDER BY id`
	selectStockQuery    = `SELECT id, amount FROM stock WHERE id = ?`
	upsertStockQuery    = `INSERT INTO stock (id, amount) VALUES (?, ?) ON DUPLICATE KEY UPDATE amount = VALUES(amount)`
)

// MySQLCatalog serves products and stock from the storefront database.
type MySQLCatalog struct {
	db *sql.DB
}

func NewMySQLCatalog(db *sql.DB) *MySQLCatalog {
	return &MySQLCatalog{db: db}
}

func (m *MySQLCatalog) GetProduct(ctx context.Context, productID int) (domain.Product, error) {
	var p domain.Product
	err := m.db.QueryRowContext(ctx, selectProductQuery, productID).
		Scan(&p.ID, &p.Title, &p.Price, &p.Image)

	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, fmt.Errorf("product %d: %w", productID, ErrNotFound)
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("query product: %w", err)
	}
	return p, nil
}

func (m *MySQLCatalog) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := m.db.QueryContext(ctx, selectProductsQuery)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Title, &p.Price, &p.Image); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

func (m *MySQLCatalog) GetStock(ctx context.Context, productID int) (domain.Stock, error) {
	var s domain.Stock
	err := m.db.QueryRowContext(ctx, selectStockQuery, productID).Scan(&s.ID, &s.Amount)

	if errors.Is(err, sql.ErrNoRows) {
		return domain.Stock{}, fmt.Errorf("stock %d: %w", productID, ErrNotFound)
	}
	if err != nil {
		return domain.Stock{}, fmt.Errorf("query stock: %w", err)
	}
	return s, nil
}

func (m *MySQLCatalog) SetStock(ctx context.Context, productID, amount int) error {
	if amount < 0 {
		return fmt.Errorf("stock %d: negative amount %d", productID, amount)
	}
	if _, err := m.db.ExecContext(ctx, upsertStockQuery, productID, amount); err != nil {
		return fmt.Errorf("upsert stock: %w", err)
	}
	return nil
}

func (m *MySQLCatalog) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}
