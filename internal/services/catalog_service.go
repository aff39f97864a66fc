package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"basket/internal/cache"
	"basket/internal/domain"
	applog "basket/internal/log"
	"basket/internal/repos"
)

// FeaturedLimit caps the featured product listing.
const FeaturedLimit = 8

type CatalogService struct {
	Cats  *repos.CategoryRepo
	Prods *repos.ProductRepo
	Cache cache.Cache
}

func NewCatalogService(cats *repos.CategoryRepo, prods *repos.ProductRepo, c cache.Cache) *CatalogService {
	if c == nil {
		c = cache.Noop{}
	}
	return &CatalogService{Cats: cats, Prods: prods, Cache: c}
}

// cached serves key from the cache or fills it from load. Cache failures
// are logged and fall through to the database.
func cached[T any](ctx context.Context, c cache.Cache, key string, load func() (T, error)) (T, error) {
	var v T
	hit, err := c.Get(ctx, key, &v)
	if err != nil {
		applog.Event("cache_get_failed", err, map[string]any{"key": key})
	}
	if hit {
		return v, nil
	}
	v, err = load()
	if err != nil {
		return v, err
	}
	if err := c.Set(ctx, key, v); err != nil {
		applog.Event("cache_set_failed", err, map[string]any{"key": key})
	}
	return v, nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if err := s.Cache.Flush(ctx); err != nil {
		applog.Event("cache_flush_failed", err, nil)
	}
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return cached(ctx, s.Cache, "products", func() ([]domain.Product, error) {
		return s.Prods.List(ctx, repos.ProductFilter{})
	})
}

func (s *CatalogService) Featured(ctx context.Context) ([]domain.Product, error) {
	return cached(ctx, s.Cache, "products:featured", func() ([]domain.Product, error) {
		return s.Prods.List(ctx, repos.ProductFilter{Featured: true, Limit: FeaturedLimit})
	})
}

func (s *CatalogService) ByCategory(ctx context.Context, categoryID string) ([]domain.Product, error) {
	return cached(ctx, s.Cache, "products:category:"+categoryID, func() ([]domain.Product, error) {
		return s.Prods.List(ctx, repos.ProductFilter{CategoryID: categoryID})
	})
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	return cached(ctx, s.Cache, "product:"+id, func() (domain.Product, error) {
		return s.Prods.Get(ctx, id)
	})
}

// ListCategories returns active categories only.
func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return cached(ctx, s.Cache, "categories", func() ([]domain.Category, error) {
		return s.Cats.List(ctx, true)
	})
}

func (s *CatalogService) GetCategory(ctx context.Context, id string) (domain.Category, error) {
	return cached(ctx, s.Cache, "category:"+id, func() (domain.Category, error) {
		return s.Cats.Get(ctx, id)
	})
}

// Admin views bypass the cache.

func (s *CatalogService) AllProducts(ctx context.Context) ([]domain.Product, error) {
	return s.Prods.List(ctx, repos.ProductFilter{})
}

func (s *CatalogService) AllCategories(ctx context.Context) ([]domain.Category, error) {
	return s.Cats.List(ctx, false)
}

type ProductInput struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Price         *float64 `json:"price"`
	OriginalPrice float64  `json:"originalPrice"`
	Category      string   `json:"category"`
	Image         string   `json:"image"`
	Stock         *int     `json:"stock"`
	Unit          string   `json:"unit"`
	Discount      float64  `json:"discount"`
	Featured      bool     `json:"isFeatured"`
}

// product validates in and copies it onto p. An empty image keeps the
// current one when keepImage is set.
func (s *CatalogService) product(ctx context.Context, in ProductInput, p *domain.Product, keepImage bool) error {
	var missing []string
	if strings.TrimSpace(in.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(in.Description) == "" {
		missing = append(missing, "description")
	}
	if in.Price == nil {
		missing = append(missing, "price")
	}
	if in.Category == "" {
		missing = append(missing, "category")
	}
	if in.Stock == nil {
		missing = append(missing, "stock")
	}
	if in.Unit == "" {
		missing = append(missing, "unit")
	}
	if in.Image == "" && !(keepImage && p.Image != "") {
		missing = append(missing, "image")
	}
	if len(missing) > 0 {
		return domain.Invalid("Missing required fields: %s", strings.Join(missing, ", "))
	}

	unit, ok := domain.ParseUnit(in.Unit)
	if !ok {
		return domain.Invalid("Invalid unit: %s", in.Unit)
	}
	if *in.Price < 0 || in.OriginalPrice < 0 || *in.Stock < 0 {
		return domain.Invalid("Price and stock must not be negative")
	}
	if in.Discount < 0 || in.Discount > 100 {
		return domain.Invalid("Discount must be between 0 and 100")
	}
	if _, err := s.Cats.Get(ctx, in.Category); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Invalid("Category %s not found", in.Category)
		}
		return err
	}

	p.Name = strings.TrimSpace(in.Name)
	p.Description = strings.TrimSpace(in.Description)
	p.Price = *in.Price
	p.OriginalPrice = in.OriginalPrice
	p.CategoryID = in.Category
	if in.Image != "" {
		p.Image = in.Image
	}
	p.Stock = *in.Stock
	p.Unit = unit
	p.Discount = in.Discount
	p.Featured = in.Featured
	return nil
}

// CreateProduct returns the stored product with its category populated.
func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (domain.Product, error) {
	var p domain.Product
	if err := s.product(ctx, in, &p, false); err != nil {
		return domain.Product{}, err
	}
	if err := s.Prods.Create(ctx, &p); err != nil {
		return domain.Product{}, fmt.Errorf("create product: %w", err)
	}
	s.invalidate(ctx)
	return s.Prods.Get(ctx, p.ID)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id string, in ProductInput) (domain.Product, error) {
	p, err := s.Prods.Get(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	if err := s.product(ctx, in, &p, true); err != nil {
		return domain.Product{}, err
	}
	if err := s.Prods.Update(ctx, &p); err != nil {
		return domain.Product{}, err
	}
	s.invalidate(ctx)
	return s.Prods.Get(ctx, id)
}

// DeleteProduct leaves past orders alone; their lines are snapshots.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.Prods.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Active      *bool  `json:"isActive"`
}

func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (domain.Category, error) {
	c := domain.Category{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Image:       in.Image,
		Active:      true,
	}
	if c.Name == "" {
		return domain.Category{}, domain.Invalid("Category name is required")
	}
	if in.Active != nil {
		c.Active = *in.Active
	}
	if err := s.Cats.Create(ctx, &c); err != nil {
		return domain.Category{}, err
	}
	s.invalidate(ctx)
	return c, nil
}

// UpdateCategory changes the non-empty fields of in.
func (s *CatalogService) UpdateCategory(ctx context.Context, id string, in CategoryInput) (domain.Category, error) {
	c, err := s.Cats.Get(ctx, id)
	if err != nil {
		return domain.Category{}, err
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		c.Name = name
	}
	if in.Description != "" {
		c.Description = strings.TrimSpace(in.Description)
	}
	if in.Image != "" {
		c.Image = in.Image
	}
	if in.Active != nil {
		c.Active = *in.Active
	}
	if err := s.Cats.Update(ctx, &c); err != nil {
		return domain.Category{}, err
	}
	s.invalidate(ctx)
	return c, nil
}

// DeleteCategory refuses while any product still references the category.
func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	n, err := s.Prods.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.Conflict("Cannot delete category with existing products")
	}
	if err := s.Cats.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}
