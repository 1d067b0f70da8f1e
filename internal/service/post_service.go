package service

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/klass-lk/blogapi"
	"github.com/klass-lk/blogapi/internal/model"
	"github.com/klass-lk/blogapi/internal/permission"
)

var (
	slugSearch  = blogapi.ParseSearchField("^slug")
	titleSearch = blogapi.ParseSearchField("^title")
)

type PostService struct {
	posts      PostStore
	categories Existence
	now        func() time.Time
}

func NewPostService(posts PostStore, categories Existence) *PostService {
	return &PostService{posts: posts, categories: categories, now: time.Now}
}

// ListPublished returns one limit/offset window of published posts narrowed by
// the page/count re-slice. The total is unaffected by the re-slice.
func (s *PostService) ListPublished(ctx context.Context, window blogapi.LimitOffset, slice blogapi.ResliceRequest) ([]model.Post, int64, error) {
	posts, total, err := s.posts.FindPaginated(ctx, window, nil, blogapi.Eq("status", model.StatusPublished))
	if err != nil {
		return nil, 0, err
	}
	return blogapi.Reslice(posts, slice), total, nil
}

// SearchPublished matches the prefix of published post slugs.
func (s *PostService) SearchPublished(ctx context.Context, window blogapi.LimitOffset, raw string) ([]model.Post, int64, error) {
	return s.posts.FindPaginated(ctx, window, blogapi.NewSearch(slugSearch, raw), blogapi.Eq("status", model.StatusPublished))
}

// SearchTitles matches the prefix of titles across every status.
func (s *PostService) SearchTitles(ctx context.Context, window blogapi.LimitOffset, raw string) ([]model.Post, int64, error) {
	return s.posts.FindPaginated(ctx, window, blogapi.NewSearch(titleSearch, raw))
}

func (s *PostService) ListByCategory(ctx context.Context, window blogapi.LimitOffset, categoryID string) ([]model.Post, int64, error) {
	return s.posts.FindPaginated(ctx, window, nil, blogapi.Eq("category_id", categoryID))
}

// Detail records a view and returns the post with the incremented counter.
func (s *PostService) Detail(ctx context.Context, slug string) (model.Post, error) {
	post, err := s.posts.IncrementViews(ctx, slug)
	return post, lookupError(err, "Post")
}

func (s *PostService) Get(ctx context.Context, id string) (model.Post, error) {
	post, err := s.posts.FindById(ctx, id)
	return post, lookupError(err, "Post")
}

func (s *PostService) Create(ctx context.Context, identity blogapi.AuthContext, req PostRequest) (model.Post, error) {
	if err := s.validate(ctx, req, ""); err != nil {
		return model.Post{}, err
	}

	now := s.now().UTC()
	post := model.Post{
		ID:        uuid.NewString(),
		Author:    identity.UserID,
		Status:    model.StatusPublished,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyPost(&post, req)
	if err := s.posts.Save(ctx, post); err != nil {
		return model.Post{}, writeError(err)
	}
	return post, nil
}

func (s *PostService) Update(ctx context.Context, identity blogapi.AuthContext, id string, req PostRequest) (model.Post, error) {
	post, err := s.editable(ctx, identity, http.MethodPut, id)
	if err != nil {
		return model.Post{}, err
	}
	return s.save(ctx, identity, post, req)
}

func (s *PostService) Patch(ctx context.Context, identity blogapi.AuthContext, id string, patch PostPatch) (model.Post, error) {
	post, err := s.editable(ctx, identity, http.MethodPatch, id)
	if err != nil {
		return model.Post{}, err
	}
	req := patch.apply(post)
	if err := blogapi.Validate(req); err != nil {
		return model.Post{}, err
	}
	return s.save(ctx, identity, post, req)
}

func (s *PostService) Delete(ctx context.Context, identity blogapi.AuthContext, id string) error {
	if _, err := s.editable(ctx, identity, http.MethodDelete, id); err != nil {
		return err
	}
	return lookupError(s.posts.Delete(ctx, id), "Post")
}

func (s *PostService) editable(ctx context.Context, identity blogapi.AuthContext, method, id string) (model.Post, error) {
	post, err := s.posts.FindById(ctx, id)
	if err != nil {
		return model.Post{}, lookupError(err, "Post")
	}
	if err := permission.CheckObject(permission.AuthorOrAdmin, method, identity, post.OwnerID()); err != nil {
		return model.Post{}, err
	}
	return post, nil
}

// save applies req to post. Only admins may reassign the author.
func (s *PostService) save(ctx context.Context, identity blogapi.AuthContext, post model.Post, req PostRequest) (model.Post, error) {
	if !identity.IsAdmin() {
		req.Author = post.Author
	}
	if err := s.validate(ctx, req, post.ID); err != nil {
		return model.Post{}, err
	}
	applyPost(&post, req)
	post.UpdatedAt = s.now().UTC()
	if err := s.posts.Update(ctx, post); err != nil {
		return model.Post{}, writeError(err)
	}
	return post, nil
}

// validate checks the references and uniqueness rules the binding tags cannot
// express. self is the id of the post being edited.
func (s *PostService) validate(ctx context.Context, req PostRequest, self string) error {
	if err := requireExists(ctx, s.categories, "category", req.Category); err != nil {
		return err
	}
	existing, err := s.posts.FindOneBy(ctx, "slug", req.Slug)
	switch {
	case blogapi.IsNotFound(err):
		return nil
	case err != nil:
		return err
	case existing.ID != self:
		return blogapi.FieldError("slug", uniqueMessages["posts_slug_key"][1])
	}
	return nil
}

func applyPost(post *model.Post, req PostRequest) {
	post.CategoryID = req.Category
	post.Title = req.Title
	post.Slug = req.Slug
	post.Excerpt = req.Excerpt
	post.Content = req.Content
	if req.Author != "" {
		post.Author = req.Author
	}
	if req.Status != "" {
		post.Status = req.Status
	}
}
