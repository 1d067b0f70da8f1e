package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/klass-lk/blogapi"
	"github.com/klass-lk/blogapi/internal/model"
)

type UserRepository struct {
	*blogapi.SQLRepository[model.User]
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{blogapi.NewSQLRepository[model.User](db)}
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (model.User, error) {
	return r.FindOneBy(ctx, "username", username)
}

type CategoryRepository struct {
	*blogapi.SQLRepository[model.Category]
}

func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{blogapi.NewSQLRepository[model.Category](db)}
}

type PostRepository struct {
	*blogapi.SQLRepository[model.Post]
}

func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{blogapi.NewSQLRepository[model.Post](db)}
}

func (r *PostRepository) FindBySlug(ctx context.Context, slug string) (model.Post, error) {
	return r.FindOneBy(ctx, "slug", slug)
}

// IncrementViews bumps the view counter in a single statement and returns the
// updated row, so concurrent reads never lose an increment.
func (r *PostRepository) IncrementViews(ctx context.Context, slug string) (model.Post, error) {
	query := fmt.Sprintf("UPDATE %s SET views = views + 1 WHERE slug = $1 RETURNING %s",
		r.TableName(), r.SelectList())
	return r.QueryOne(ctx, query, slug)
}

type CommentRepository struct {
	*blogapi.SQLRepository[model.Comment]
}

func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{blogapi.NewSQLRepository[model.Comment](db)}
}

type BookmarkRepository struct {
	*blogapi.SQLRepository[model.Bookmark]
}

func NewBookmarkRepository(db *sql.DB) *BookmarkRepository {
	return &BookmarkRepository{blogapi.NewSQLRepository[model.Bookmark](db)}
}

type FavoriteRepository struct {
	*blogapi.SQLRepository[model.Favorite]
}

func NewFavoriteRepository(db *sql.DB) *FavoriteRepository {
	return &FavoriteRepository{blogapi.NewSQLRepository[model.Favorite](db)}
}

type PostArrayRepository struct {
	*blogapi.SQLRepository[model.PostArray]
}

func NewPostArrayRepository(db *sql.DB) *PostArrayRepository {
	return &PostArrayRepository{blogapi.NewSQLRepository[model.PostArray](db)}
}

func (r *PostArrayRepository) FindByPost(ctx context.Context, postID string) ([]model.PostArray, error) {
	return r.FindBy(ctx, blogapi.Eq("post_id", postID))
}
