package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klass-lk/blogapi"
	"github.com/klass-lk/blogapi/internal/model"
)

// ErrStorageDisabled is returned for uploads when no file service is bound.
var ErrStorageDisabled = blogapi.BadRequest("Image storage is not configured.")

type PostArrayService struct {
	items PostArrayStore
	posts Existence
	files blogapi.FileService
	now   func() time.Time
}

// NewPostArrayService accepts a nil files; images are then neither uploaded
// nor presigned.
func NewPostArrayService(items PostArrayStore, posts Existence, files blogapi.FileService) *PostArrayService {
	return &PostArrayService{items: items, posts: posts, files: files, now: time.Now}
}

func (s *PostArrayService) ListByPost(ctx context.Context, postID string) ([]PostArrayView, error) {
	items, err := s.items.FindByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	views := make([]PostArrayView, 0, len(items))
	for _, item := range items {
		views = append(views, s.view(ctx, item))
	}
	return views, nil
}

func (s *PostArrayService) Create(ctx context.Context, req PostArrayRequest) (PostArrayView, error) {
	if err := requireExists(ctx, s.posts, "post", req.Post); err != nil {
		return PostArrayView{}, err
	}
	item := model.PostArray{
		ID:        uuid.NewString(),
		PostID:    req.Post,
		Position:  req.Position,
		Caption:   req.Caption,
		CreatedAt: s.now().UTC(),
	}
	if err := s.items.Save(ctx, item); err != nil {
		return PostArrayView{}, writeError(err)
	}
	return s.view(ctx, item), nil
}

func (s *PostArrayService) Update(ctx context.Context, id string, req PostArrayRequest) (PostArrayView, error) {
	item, err := s.items.FindById(ctx, id)
	if err != nil {
		return PostArrayView{}, lookupError(err, "Post array")
	}
	return s.save(ctx, item, req)
}

func (s *PostArrayService) Patch(ctx context.Context, id string, patch PostArrayPatch) (PostArrayView, error) {
	item, err := s.items.FindById(ctx, id)
	if err != nil {
		return PostArrayView{}, lookupError(err, "Post array")
	}
	req := patch.apply(item)
	if err := blogapi.Validate(req); err != nil {
		return PostArrayView{}, err
	}
	return s.save(ctx, item, req)
}

func (s *PostArrayService) save(ctx context.Context, item model.PostArray, req PostArrayRequest) (PostArrayView, error) {
	if req.Post != item.PostID {
		if err := requireExists(ctx, s.posts, "post", req.Post); err != nil {
			return PostArrayView{}, err
		}
	}
	item.PostID, item.Position, item.Caption = req.Post, req.Position, req.Caption
	if err := s.items.Update(ctx, item); err != nil {
		return PostArrayView{}, writeError(err)
	}
	return s.view(ctx, item), nil
}

// Delete removes the row and its stored image. A failed image removal is
// logged and does not keep the row.
func (s *PostArrayService) Delete(ctx context.Context, id string) error {
	item, err := s.items.FindById(ctx, id)
	if err != nil {
		return lookupError(err, "Post array")
	}
	if err := s.items.Delete(ctx, id); err != nil {
		return lookupError(err, "Post array")
	}
	s.removeImage(ctx, item.Image)
	return nil
}

// UploadImage stores body under a fresh key and replaces the previous image.
func (s *PostArrayService) UploadImage(ctx context.Context, id, filename, contentType string, body io.Reader) (PostArrayView, error) {
	if s.files == nil {
		return PostArrayView{}, ErrStorageDisabled
	}
	item, err := s.items.FindById(ctx, id)
	if err != nil {
		return PostArrayView{}, lookupError(err, "Post array")
	}

	key := fmt.Sprintf("post-arrays/%s/%s%s", item.PostID, uuid.NewString(), strings.ToLower(path.Ext(filename)))
	if err := s.files.Upload(ctx, key, body, contentType); err != nil {
		return PostArrayView{}, fmt.Errorf("upload %s: %w", key, err)
	}

	previous := item.Image
	item.Image = key
	if err := s.items.Update(ctx, item); err != nil {
		s.removeImage(ctx, key)
		return PostArrayView{}, writeError(err)
	}
	s.removeImage(ctx, previous)
	return s.view(ctx, item), nil
}

func (s *PostArrayService) removeImage(ctx context.Context, key string) {
	if s.files == nil || key == "" {
		return
	}
	if err := s.files.Delete(ctx, key); err != nil {
		log.Printf("[storage] delete %s: %v", key, err)
	}
}

func (s *PostArrayService) view(ctx context.Context, item model.PostArray) PostArrayView {
	view := PostArrayView{PostArray: item}
	if s.files == nil || item.Image == "" {
		return view
	}
	url, err := s.files.GetURL(ctx, item.Image)
	if err != nil {
		log.Printf("[storage] presign %s: %v", item.Image, err)
		return view
	}
	view.ImageURL = url
	return view
}
