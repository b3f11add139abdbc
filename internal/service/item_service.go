package service

import (
	"context"
	"fmt"

	"github.com/vbonduro/hgdesk/internal/domain"
)

// itemRepository is the subset of store.ItemStore that ItemService requires.
type itemRepository interface {
	Create(ctx context.Context, data string) (*domain.Item, error)
	GetByID(ctx context.Context, id int64) (*domain.Item, error)
	List(ctx context.Context) ([]*domain.Item, error)
	Update(ctx context.Context, id int64, data string) error
	Delete(ctx context.Context, id int64) error
}

type ItemService struct {
	items itemRepository
}

func NewItemService(items itemRepository) *ItemService {
	return &ItemService{items: items}
}

func (s *ItemService) Create(ctx context.Context, data string) (*domain.Item, error) {
	return s.items.Create(ctx, data)
}

func (s *ItemService) List(ctx context.Context) ([]*domain.Item, error) {
	return s.items.List(ctx)
}

func (s *ItemService) Get(ctx context.Context, id int64) (*domain.Item, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("item %d: %w", id, domain.ErrNotFound)
	}
	return item, nil
}

func (s *ItemService) Update(ctx context.Context, id int64, data string) (*domain.Item, error) {
	if err := s.items.Update(ctx, id, data); err != nil {
		return nil, err
	}
	return &domain.Item{ID: id, Data: data}, nil
}

func (s *ItemService) Delete(ctx context.Context, id int64) error {
	return s.items.Delete(ctx, id)
}
