package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"ecommerce-api/cache"
	"ecommerce-api/model"
)

// ProductInput creates a product. PhotoPath is a local upload awaiting hosting.
type ProductInput struct {
	Name      string          `validate:"required"`
	Category  string          `validate:"required"`
	Price     decimal.Decimal `validate:"gt=0"`
	Stock     int             `validate:"gt=0"`
	PhotoPath string
}

// ProductUpdate changes only the fields that are set.
type ProductUpdate struct {
	Name      *string
	Category  *string
	Price     *decimal.Decimal
	Stock     *int
	PhotoPath string
}

type SearchResult struct {
	Products  []model.Product `json:"products"`
	TotalPage int             `json:"totalPage"`
}

func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (model.Product, error) {
	if in.PhotoPath == "" {
		return model.Product{}, invalid("please add photo")
	}
	defer s.removeLocal(in.PhotoPath)

	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.ToLower(strings.TrimSpace(in.Category))
	if err := s.validate.Struct(in); err != nil {
		return model.Product{}, invalid("please add all fields")
	}

	url, err := s.assets.Upload(ctx, in.PhotoPath)
	if err != nil {
		return model.Product{}, upstream("photo upload failed", err)
	}

	now := s.now()
	p := model.Product{
		ID:        s.newID(),
		Name:      in.Name,
		Photo:     url,
		Price:     in.Price,
		Stock:     in.Stock,
		Category:  in.Category,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateProduct(ctx, p); err != nil {
		s.destroyPhoto(ctx, url)
		return model.Product{}, upstream("create product", err)
	}

	s.invalidator.Invalidate(ctx, cache.Invalidation{Product: true, Admin: true, ProductIDs: []string{p.ID}})
	return p, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, up ProductUpdate) (model.Product, error) {
	if up.PhotoPath != "" {
		defer s.removeLocal(up.PhotoPath)
	}
	if up.Price != nil && !up.Price.IsPositive() {
		return model.Product{}, invalid("price must be > 0")
	}
	if up.Stock != nil && *up.Stock < 0 {
		return model.Product{}, invalid("stock cannot be negative")
	}

	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return model.Product{}, upstream("load product", err)
	}
	if p == nil {
		return model.Product{}, notFound("product not found")
	}

	var oldPhoto string
	if up.PhotoPath != "" {
		url, err := s.assets.Upload(ctx, up.PhotoPath)
		if err != nil {
			return model.Product{}, upstream("photo upload failed", err)
		}
		oldPhoto, p.Photo = p.Photo, url
	}
	if up.Name != nil && strings.TrimSpace(*up.Name) != "" {
		p.Name = strings.TrimSpace(*up.Name)
	}
	if up.Price != nil {
		p.Price = *up.Price
	}
	if up.Stock != nil {
		p.Stock = *up.Stock
	}
	if up.Category != nil && strings.TrimSpace(*up.Category) != "" {
		p.Category = strings.ToLower(strings.TrimSpace(*up.Category))
	}
	p.UpdatedAt = s.now()

	if err := s.store.SaveProduct(ctx, *p); err != nil {
		if oldPhoto != "" {
			s.destroyPhoto(ctx, p.Photo)
		}
		if errors.Is(err, sql.ErrNoRows) {
			return model.Product{}, notFound("product not found")
		}
		return model.Product{}, upstream("save product", err)
	}

	s.invalidator.Invalidate(ctx, cache.Invalidation{Product: true, Admin: true, ProductIDs: []string{p.ID}})
	if oldPhoto != "" {
		s.destroyPhoto(ctx, oldPhoto)
	}
	return *p, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return upstream("load product", err)
	}
	if p == nil {
		return notFound("product not found")
	}

	if err := s.store.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("product not found")
		}
		return upstream("delete product", err)
	}

	s.invalidator.Invalidate(ctx, cache.Invalidation{Product: true, Admin: true, ProductIDs: []string{p.ID}})
	s.destroyPhoto(ctx, p.Photo)
	return nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (model.Product, error) {
	return cache.Fetch(ctx, s.cache, cache.ProductKey(id), func(ctx context.Context) (model.Product, error) {
		p, err := s.store.GetProduct(ctx, id)
		if err != nil {
			return model.Product{}, upstream("load product", err)
		}
		if p == nil {
			return model.Product{}, notFound("product not found")
		}
		return *p, nil
	})
}

func (s *Service) LatestProducts(ctx context.Context) ([]model.Product, error) {
	return cache.Fetch(ctx, s.cache, cache.LatestProductsKey, func(ctx context.Context) ([]model.Product, error) {
		ps, err := s.store.LatestProducts(ctx, latestProductsLimit)
		if err != nil {
			return nil, upstream("load latest products", err)
		}
		return ps, nil
	})
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return cache.Fetch(ctx, s.cache, cache.CategoriesKey, func(ctx context.Context) ([]string, error) {
		cs, err := s.store.Categories(ctx)
		if err != nil {
			return nil, upstream("load categories", err)
		}
		return cs, nil
	})
}

func (s *Service) AdminProducts(ctx context.Context) ([]model.Product, error) {
	return cache.Fetch(ctx, s.cache, cache.AllProductsKey, func(ctx context.Context) ([]model.Product, error) {
		ps, err := s.store.ListProducts(ctx)
		if err != nil {
			return nil, upstream("load products", err)
		}
		return ps, nil
	})
}

// SearchProducts is never cached: the filter space is unbounded.
func (s *Service) SearchProducts(ctx context.Context, f model.ProductFilter) (SearchResult, error) {
	f.PerPage = s.perPage
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Sort != "" && f.Sort != "asc" && f.Sort != "desc" {
		return SearchResult{}, invalid("sort must be asc or desc")
	}
	f.Category = strings.ToLower(f.Category)

	ps, total, err := s.store.SearchProducts(ctx, f)
	if err != nil {
		return SearchResult{}, upstream("search products", err)
	}
	return SearchResult{
		Products:  ps,
		TotalPage: (total + f.PerPage - 1) / f.PerPage,
	}, nil
}
