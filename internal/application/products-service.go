package application

import (
	"context"

	"github.com/tonmoys423/teashop/internal/domain"
	"github.com/tonmoys423/teashop/internal/repository"
)

type ProductsService struct {
	repo repository.ProductRepo
}

func NewProductsService(r repository.ProductRepo) *ProductsService {
	return &ProductsService{repo: r}
}

func (s *ProductsService) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx)
}

func (s *ProductsService) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *ProductsService) ListByCategory(ctx context.Context, category domain.TeaCategory) ([]domain.Product, error) {
	switch category {
	case domain.CategoryBlackTea, domain.CategoryGreenTea, domain.CategoryHerbalTea,
		domain.CategoryOolongTea, domain.CategoryWhiteTea, domain.CategorySpecialtyBlend:
	default:
		return nil, ErrInvalidCategory
	}
	return s.repo.ListByCategory(ctx, category)
}
