// Package app assembles the server from configuration.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klass-lk/blogapi"
	"github.com/klass-lk/blogapi/internal/config"
	"github.com/klass-lk/blogapi/internal/controller"
	"github.com/klass-lk/blogapi/internal/database"
	"github.com/klass-lk/blogapi/internal/middleware"
	"github.com/klass-lk/blogapi/internal/repository"
	"github.com/klass-lk/blogapi/internal/service"
	"github.com/klass-lk/blogapi/security"
)

type App struct {
	Config *config.Config
	DB     *sql.DB
	Server *blogapi.Server
	Auth   *service.AuthService
	Cache  blogapi.CacheService

	closers []func()
}

// New connects to the database, applies the schema and builds the app.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	a, err := Build(ctx, cfg, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = db.Close() })
	return a, nil
}

// Build wires every component on top of an open, migrated database.
func Build(ctx context.Context, cfg *config.Config, db *sql.DB) (*App, error) {
	a := &App{Config: cfg, DB: db}

	cache, closeCache, err := NewCache(ctx, cfg.Cache, db)
	if err != nil {
		return nil, err
	}
	a.Cache = cache
	a.closers = append(a.closers, closeCache)

	files, err := NewFileService(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	encoder, err := NewPasswordEncoder(cfg.Security)
	if err != nil {
		return nil, err
	}
	tokens := blogapi.NewTokenService(cfg.JWT.Secret, cfg.JWT.RefreshSecret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL, cfg.JWT.Issuer)

	users := repository.NewUserRepository(db)
	categories := repository.NewCategoryRepository(db)
	posts := repository.NewPostRepository(db)
	comments := repository.NewCommentRepository(db)
	bookmarks := repository.NewBookmarkRepository(db)
	favorites := repository.NewFavoriteRepository(db)
	arrays := repository.NewPostArrayRepository(db)

	postService := service.NewPostService(posts, categories)
	categoryService := service.NewCategoryService(categories, cache)
	arrayService := service.NewPostArrayService(arrays, posts, files)
	a.Auth = service.NewAuthService(users, encoder, tokens)

	gin.SetMode(cfg.Server.Mode)
	server := blogapi.New()
	server.SetRuntime(blogapi.Runtime(cfg.Server.Runtime))
	configureCORS(server, cfg.Server)
	server.Engine().Use(middleware.Authentication(tokens))
	server.SetBasePath(cfg.Server.BasePath)
	if files != nil {
		server.BindFileService(files)
	}

	pagination := blogapi.NewLimitOffsetPagination(cfg.Pagination.DefaultLimit, cfg.Pagination.MaxLimit)
	server.RegisterController("/posts", controller.NewPostController(postService, arrayService, pagination))
	server.RegisterController("", controller.NewSearchController(postService, pagination))
	server.RegisterController("/categories", controller.NewCategoryController(categoryService, postService, pagination, cache, cfg.Cache.TTL))
	server.RegisterController("/comments", controller.NewCommentController(service.NewCommentService(comments, posts), pagination))
	server.RegisterController("/bookmarks", controller.NewBookmarkController(service.NewBookmarkService(bookmarks, posts), pagination))
	server.RegisterController("/favorites", controller.NewFavoriteController(service.NewFavoriteService(favorites, posts), pagination))
	server.RegisterController("/admin/posts", controller.NewAdminPostController(postService))
	server.RegisterController("/admin/categories", controller.NewAdminCategoryController(categoryService))
	server.RegisterController("/admin/post-arrays", controller.NewAdminPostArrayController(arrayService))
	server.RegisterController("/admin/cache", controller.NewCacheController(cache))
	server.RegisterController("", controller.NewAuthController(a.Auth))
	server.RegisterController("/health", controller.NewHealthController(db))

	a.Server = server
	return a, nil
}

// Run serves until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	log.Printf("[server] starting %s runtime on port %d", a.Config.Server.Runtime, a.Config.Server.Port)
	return a.Server.Start(ctx, a.Config.Server.Port)
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func configureCORS(server *blogapi.Server, cfg config.ServerConfig) {
	origins := cfg.Origins()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		server.DefaultCORS()
		return
	}
	server.CustomCORS(
		origins,
		[]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		[]string{"Origin", "Content-Type", "Authorization", "Accept"},
		12*time.Hour,
	)
}

// NewCache builds the configured response cache backend. The returned func
// releases its connections.
func NewCache(ctx context.Context, cfg config.CacheConfig, db *sql.DB) (blogapi.CacheService, func(), error) {
	noop := func() {}
	switch cfg.Backend {
	case "", "none":
		return blogapi.NoopCacheService{}, noop, nil
	case "sql":
		cache, err := blogapi.NewSQLCacheService(ctx,
			blogapi.NewSQLRepository[blogapi.CacheEntry](db),
			blogapi.NewSQLRepository[blogapi.TagEntry](db))
		if err != nil {
			return nil, nil, fmt.Errorf("sql cache: %w", err)
		}
		return cache, noop, nil
	case "mongo":
		client, err := blogapi.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		cache := blogapi.NewMongoCacheService(client.Database(cfg.MongoDatabase))
		if err := cache.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, nil, fmt.Errorf("mongo cache indexes: %w", err)
		}
		return cache, func() { _ = client.Disconnect(context.Background()) }, nil
	case "dynamodb":
		client, err := blogapi.NewDynamoDBClient(ctx, blogapi.DynamoDBConfig{
			Region:   cfg.DynamoDBRegion,
			Endpoint: cfg.DynamoDBEndpoint,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("dynamodb client: %w", err)
		}
		cache := blogapi.NewDynamoDBCacheService(client, cfg.DynamoDBTable)
		if err := cache.EnsureTable(ctx); err != nil {
			return nil, nil, fmt.Errorf("dynamodb cache table: %w", err)
		}
		return cache, noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// NewFileService returns nil when no bucket is configured.
func NewFileService(ctx context.Context, cfg config.StorageConfig) (blogapi.FileService, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	files, err := blogapi.NewS3FileService(ctx, blogapi.S3Config{
		Bucket:    cfg.Bucket,
		Region:    cfg.Region,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		Endpoint:  cfg.Endpoint,
		URLExpiry: cfg.URLExpiry,
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func NewPasswordEncoder(cfg config.SecurityConfig) (security.PasswordEncoder, error) {
	switch cfg.PasswordEncoder {
	case "", "bcrypt":
		return security.NewBcryptEncoder(cfg.BcryptCost), nil
	case "pbkdf2":
		return security.NewPBKDF2Encoder(cfg.PBKDF2Secret, cfg.PBKDF2Iterations, cfg.PBKDF2KeyLength), nil
	default:
		return nil, fmt.Errorf("unknown password encoder %q", cfg.PasswordEncoder)
	}
}
