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

type CommentService struct {
	comments CommentStore
	posts    Existence
	now      func() time.Time
}

func NewCommentService(comments CommentStore, posts Existence) *CommentService {
	return &CommentService{comments: comments, posts: posts, now: time.Now}
}

func (s *CommentService) List(ctx context.Context, window blogapi.LimitOffset) ([]model.Comment, int64, error) {
	return s.comments.FindPaginated(ctx, window, nil)
}

func (s *CommentService) Get(ctx context.Context, id string) (model.Comment, error) {
	comment, err := s.comments.FindById(ctx, id)
	return comment, lookupError(err, "Comment")
}

func (s *CommentService) Create(ctx context.Context, identity blogapi.AuthContext, req CommentRequest) (model.Comment, error) {
	if err := requireExists(ctx, s.posts, "post", req.Post); err != nil {
		return model.Comment{}, err
	}
	comment := model.Comment{
		ID:        uuid.NewString(),
		PostID:    req.Post,
		Author:    identity.UserID,
		Body:      req.Body,
		CreatedAt: s.now().UTC(),
	}
	if err := s.comments.Save(ctx, comment); err != nil {
		return model.Comment{}, writeError(err)
	}
	return comment, nil
}

func (s *CommentService) Delete(ctx context.Context, identity blogapi.AuthContext, id string) error {
	comment, err := s.comments.FindById(ctx, id)
	if err != nil {
		return lookupError(err, "Comment")
	}
	if err := permission.CheckObject(permission.AuthorOrAdmin, http.MethodDelete, identity, comment.OwnerID()); err != nil {
		return err
	}
	return lookupError(s.comments.Delete(ctx, id), "Comment")
}
