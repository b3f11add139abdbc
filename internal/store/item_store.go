package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vbonduro/hgdesk/internal/db"
	"github.com/vbonduro/hgdesk/internal/domain"
)

type ItemStore struct {
	db *db.DB
}

func NewItemStore(d *db.DB) *ItemStore {
	return &ItemStore{db: d}
}

func (s *ItemStore) Create(ctx context.Context, data string) (*domain.Item, error) {
	item := &domain.Item{Data: data}
	err := s.db.QueryRowContext(ctx, s.db.Rebind(`
		INSERT INTO items (data) VALUES (?) RETURNING id
	`), data).Scan(&item.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	return item, nil
}

// GetByID returns nil, nil when the item does not exist.
func (s *ItemStore) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	item := &domain.Item{}
	err := s.db.QueryRowContext(ctx, s.db.Rebind(`
		SELECT id, data FROM items WHERE id = ?
	`), id).Scan(&item.ID, &item.Data)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	return item, nil
}

// List returns all items, newest first. Items carry no timestamp; ids are
// assigned in creation order.
func (s *ItemStore) List(ctx context.Context) ([]*domain.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, data FROM items ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var items []*domain.Item
	for rows.Next() {
		item := &domain.Item{}
		if err := rows.Scan(&item.ID, &item.Data); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}

	return items, nil
}

func (s *ItemStore) Update(ctx context.Context, id int64, data string) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE items SET data = ? WHERE id = ?
	`), data, id)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}

	return expectOneRow(result, "item", id)
}

func (s *ItemStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`
		DELETE FROM items WHERE id = ?
	`), id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	return expectOneRow(result, "item", id)
}
