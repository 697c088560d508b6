// Package orders archives completed orders in a local SQLite database so the
// counter keeps an order history across restarts.
package orders

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "modernc.org/sqlite"

	"github.com/elbara99/ai-counter-cafeteria/internal/domain"
)

// RepoInterface is what the checkout coordinator needs from the archive.
type RepoInterface interface {
	SaveOrder(ctx context.Context, order domain.OrderExport) error
	ListOrders(ctx context.Context, limit int) ([]domain.OrderExport, error)
	Close() error
}

type Repository struct {
	db *sql.DB
}

// NewRepository opens (or creates) the archive database at dbPath. Use
// ":memory:" for tests.
func NewRepository(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(migrationsPath string) error {
	driver, err := sqlite.WithInstance(r.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}

func (r *Repository) SaveOrder(ctx context.Context, order domain.OrderExport) error {
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal order items: %w", err)
	}

	query := `
		INSERT INTO orders (id, created_at, items, total, items_count, currency)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		order.OrderID,
		order.Timestamp,
		string(itemsJSON),
		order.Total,
		order.ItemsCount,
		order.Currency,
	)
	if err != nil {
		return fmt.Errorf("failed to archive order: %w", err)
	}
	return nil
}

func (r *Repository) ListOrders(ctx context.Context, limit int) ([]domain.OrderExport, error) {
	query := `
		SELECT id, created_at, items, total, items_count, currency
		FROM orders
		ORDER BY created_at DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.OrderExport
	for rows.Next() {
		var o domain.OrderExport
		var itemsJSON string
		if err := rows.Scan(&o.OrderID, &o.Timestamp, &itemsJSON, &o.Total, &o.ItemsCount, &o.Currency); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		if err := json.Unmarshal([]byte(itemsJSON), &o.Items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal order items: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}
	return orders, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
