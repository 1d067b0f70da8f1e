package blogapi

import "context"

type GenericRepository[T Document] interface {
	FindById(ctx context.Context, id string) (T, error)
	FindAllById(ctx context.Context, ids []string) ([]T, error)
	Save(ctx context.Context, doc T) error
	SaveOrUpdate(ctx context.Context, doc T) error
	SaveAll(ctx context.Context, docs []T) error
	Update(ctx context.Context, doc T) error
	Delete(ctx context.Context, id string) error
	DeleteBy(ctx context.Context, field string, value interface{}) error
	FindOneBy(ctx context.Context, field string, value interface{}) (T, error)
	FindBy(ctx context.Context, filters ...Filter) ([]T, error)
	FindAll(ctx context.Context) ([]T, error)
	FindPaginated(ctx context.Context, window LimitOffset, search *Search, filters ...Filter) ([]T, int64, error)
	CountBy(ctx context.Context, filters ...Filter) (int64, error)
	ExistsBy(ctx context.Context, filters ...Filter) (bool, error)
}

var _ GenericRepository[CacheEntry] = (*SQLRepository[CacheEntry])(nil)
