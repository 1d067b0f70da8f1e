package service

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/klass-lk/blogapi"
	"github.com/klass-lk/blogapi/internal/model"
)

// CategoryCacheTag groups every cached category response.
const CategoryCacheTag = "categories"

type CategoryService struct {
	store CategoryStore
	cache blogapi.CacheService
}

func NewCategoryService(store CategoryStore, cache blogapi.CacheService) *CategoryService {
	if cache == nil {
		cache = blogapi.NoopCacheService{}
	}
	return &CategoryService{store: store, cache: cache}
}

func (s *CategoryService) List(ctx context.Context, window blogapi.LimitOffset) ([]model.Category, int64, error) {
	return s.store.FindPaginated(ctx, window, nil)
}

func (s *CategoryService) Get(ctx context.Context, id string) (model.Category, error) {
	category, err := s.store.FindById(ctx, id)
	return category, lookupError(err, "Category")
}

func (s *CategoryService) Create(ctx context.Context, req CategoryRequest) (model.Category, error) {
	if err := s.checkSlug(ctx, req.Slug, ""); err != nil {
		return model.Category{}, err
	}
	category := model.Category{ID: uuid.NewString(), Name: req.Name, Slug: req.Slug}
	if err := s.store.Save(ctx, category); err != nil {
		return model.Category{}, writeError(err)
	}
	s.invalidate(ctx)
	return category, nil
}

func (s *CategoryService) Patch(ctx context.Context, id string, patch CategoryPatch) (model.Category, error) {
	category, err := s.store.FindById(ctx, id)
	if err != nil {
		return model.Category{}, lookupError(err, "Category")
	}
	req := patch.apply(category)
	if err := blogapi.Validate(req); err != nil {
		return model.Category{}, err
	}
	if err := s.checkSlug(ctx, req.Slug, id); err != nil {
		return model.Category{}, err
	}

	category.Name, category.Slug = req.Name, req.Slug
	if err := s.store.Update(ctx, category); err != nil {
		return model.Category{}, writeError(err)
	}
	s.invalidate(ctx)
	return category, nil
}

func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if _, err := s.store.FindById(ctx, id); err != nil {
		return lookupError(err, "Category")
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return lookupError(err, "Category")
	}
	s.invalidate(ctx)
	return nil
}

// checkSlug rejects a slug held by any category other than self.
func (s *CategoryService) checkSlug(ctx context.Context, slug, self string) error {
	existing, err := s.store.FindOneBy(ctx, "slug", slug)
	if blogapi.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != self {
		return blogapi.FieldError("slug", uniqueMessages["categories_slug_key"][1])
	}
	return nil
}

func (s *CategoryService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, CategoryCacheTag); err != nil {
		log.Printf("[cache] invalidate %s: %v", CategoryCacheTag, err)
	}
}
