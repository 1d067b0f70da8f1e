package blogapi

import (
	"context"
	"errors"
	"time"
)

// CacheService stores tagged response bodies. A miss is (nil, nil).
type CacheService interface {
	Set(ctx context.Context, key string, data []byte, tags []string, duration time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	// Invalidate removes all entries associated with any of the tags.
	Invalidate(ctx context.Context, tags ...string) error
}

type SQLCacheService struct {
	cacheRepo *SQLRepository[CacheEntry]
	tagRepo   *SQLRepository[TagEntry]
}

// NewSQLCacheService creates the cache tables when they do not exist yet.
func NewSQLCacheService(ctx context.Context, cRepo *SQLRepository[CacheEntry], tRepo *SQLRepository[TagEntry]) (*SQLCacheService, error) {
	if err := cRepo.CreateTable(ctx); err != nil {
		return nil, err
	}
	if err := tRepo.CreateTable(ctx); err != nil {
		return nil, err
	}
	return &SQLCacheService{
		cacheRepo: cRepo,
		tagRepo:   tRepo,
	}, nil
}

func (s *SQLCacheService) Set(ctx context.Context, key string, data []byte, tags []string, duration time.Duration) error {
	entry, tagEntries := newEntries(key, data, tags, duration)

	if err := s.cacheRepo.SaveOrUpdate(ctx, entry); err != nil {
		return err
	}

	// Replace the key's tag set.
	if err := s.tagRepo.DeleteBy(ctx, "cache_key", key); err != nil {
		return err
	}
	return s.tagRepo.SaveAll(ctx, tagEntries)
}

func (s *SQLCacheService) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := s.cacheRepo.FindById(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if entry.IsExpired() {
		if err := s.cacheRepo.Delete(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, nil
	}

	return entry.Data, nil
}

func (s *SQLCacheService) Invalidate(ctx context.Context, tags ...string) error {
	for _, tag := range tags {
		tagEntries, err := s.tagRepo.FindBy(ctx, Eq("tag", tag))
		if err != nil {
			return err
		}

		for _, te := range tagEntries {
			if err := s.cacheRepo.Delete(ctx, te.CacheKey); err != nil && !errors.Is(err, ErrNotFound) {
				return err
			}
		}

		if err := s.tagRepo.DeleteBy(ctx, "tag", tag); err != nil {
			return err
		}
	}
	return nil
}

// NoopCacheService never stores anything.
type NoopCacheService struct{}

func (NoopCacheService) Set(context.Context, string, []byte, []string, time.Duration) error {
	return nil
}

func (NoopCacheService) Get(context.Context, string) ([]byte, error) {
	return nil, nil
}

func (NoopCacheService) Invalidate(context.Context, ...string) error {
	return nil
}
