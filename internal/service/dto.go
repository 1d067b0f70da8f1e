package service

import "github.com/klass-lk/blogapi/internal/model"

type CategoryRequest struct {
	Name string `json:"name" form:"name" binding:"required,max=100"`
	Slug string `json:"slug" form:"slug" binding:"required,max=100,slug"`
}

type CategoryPatch struct {
	Name *string `json:"name" form:"name"`
	Slug *string `json:"slug" form:"slug"`
}

func (p CategoryPatch) apply(c model.Category) CategoryRequest {
	req := CategoryRequest{Name: c.Name, Slug: c.Slug}
	if p.Name != nil {
		req.Name = *p.Name
	}
	if p.Slug != nil {
		req.Slug = *p.Slug
	}
	return req
}

type PostRequest struct {
	Category string `json:"category" form:"category" binding:"required"`
	Title    string `json:"title" form:"title" binding:"required,max=250"`
	Slug     string `json:"slug" form:"slug" binding:"required,max=250,slug"`
	Excerpt  string `json:"excerpt" form:"excerpt" binding:"max=500"`
	Content  string `json:"content" form:"content" binding:"required"`
	Author   string `json:"author" form:"author"`
	Status   string `json:"status" form:"status" binding:"omitempty,oneof=draft published"`
}

type PostPatch struct {
	Category *string `json:"category" form:"category"`
	Title    *string `json:"title" form:"title"`
	Slug     *string `json:"slug" form:"slug"`
	Excerpt  *string `json:"excerpt" form:"excerpt"`
	Content  *string `json:"content" form:"content"`
	Author   *string `json:"author" form:"author"`
	Status   *string `json:"status" form:"status"`
}

func (p PostPatch) apply(post model.Post) PostRequest {
	req := PostRequest{
		Category: post.CategoryID,
		Title:    post.Title,
		Slug:     post.Slug,
		Excerpt:  post.Excerpt,
		Content:  post.Content,
		Author:   post.Author,
		Status:   post.Status,
	}
	assign(&req.Category, p.Category)
	assign(&req.Title, p.Title)
	assign(&req.Slug, p.Slug)
	assign(&req.Excerpt, p.Excerpt)
	assign(&req.Content, p.Content)
	assign(&req.Author, p.Author)
	assign(&req.Status, p.Status)
	return req
}

type CommentRequest struct {
	Post string `json:"post" form:"post" binding:"required"`
	Body string `json:"body" form:"body" binding:"required,max=5000"`
}

// EngagementRequest creates a bookmark or a favorite.
type EngagementRequest struct {
	Post string `json:"post" form:"post" binding:"required"`
}

type PostArrayRequest struct {
	Post     string `json:"post" form:"post" binding:"required"`
	Position int    `json:"position" form:"position" binding:"gte=0"`
	Caption  string `json:"caption" form:"caption" binding:"max=500"`
}

type PostArrayPatch struct {
	Post     *string `json:"post" form:"post"`
	Position *int    `json:"position" form:"position"`
	Caption  *string `json:"caption" form:"caption"`
}

func (p PostArrayPatch) apply(item model.PostArray) PostArrayRequest {
	req := PostArrayRequest{Post: item.PostID, Position: item.Position, Caption: item.Caption}
	assign(&req.Post, p.Post)
	if p.Position != nil {
		req.Position = *p.Position
	}
	assign(&req.Caption, p.Caption)
	return req
}

// PostArrayView adds the presigned image URL to a stored item.
type PostArrayView struct {
	model.PostArray
	ImageURL string `json:"image_url,omitempty"`
}

type RegisterRequest struct {
	Username string `json:"username" form:"username" binding:"required,min=3,max=150"`
	Email    string `json:"email" form:"email" binding:"omitempty,email"`
	Password string `json:"password" form:"password" binding:"required,min=8"`
}

type TokenRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" form:"refresh" binding:"required"`
}

func assign(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
