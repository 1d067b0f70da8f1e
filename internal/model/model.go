package model

import "time"

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

type User struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	IsAdmin      bool      `json:"is_admin" db:"is_admin"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

func (User) GetTableName() string { return "users" }

func (User) DefaultOrdering() string { return "username" }

type Category struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
	Slug string `json:"slug" db:"slug"`
}

func (Category) GetTableName() string { return "categories" }

func (Category) DefaultOrdering() string { return "name, id" }

type Post struct {
	ID         string    `json:"id" db:"id"`
	CategoryID string    `json:"category" db:"category_id"`
	Title      string    `json:"title" db:"title"`
	Slug       string    `json:"slug" db:"slug"`
	Excerpt    string    `json:"excerpt" db:"excerpt"`
	Content    string    `json:"content" db:"content"`
	Author     string    `json:"author" db:"author"`
	Status     string    `json:"status" db:"status"`
	Views      int64     `json:"views" db:"views"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

func (Post) GetTableName() string { return "posts" }

// DefaultOrdering lists newest posts first.
func (Post) DefaultOrdering() string { return "created_at DESC, id" }

func (p Post) OwnerID() string { return p.Author }

type Comment struct {
	ID        string    `json:"id" db:"id"`
	PostID    string    `json:"post" db:"post_id"`
	Author    string    `json:"author" db:"author"`
	Body      string    `json:"body" db:"body"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (Comment) GetTableName() string { return "comments" }

func (Comment) DefaultOrdering() string { return "created_at, id" }

func (c Comment) OwnerID() string { return c.Author }

type Bookmark struct {
	ID        string    `json:"id" db:"id"`
	PostID    string    `json:"post" db:"post_id"`
	Author    string    `json:"author" db:"author"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (Bookmark) GetTableName() string { return "bookmarks" }

func (Bookmark) DefaultOrdering() string { return "created_at, id" }

func (b Bookmark) OwnerID() string { return b.Author }

type Favorite struct {
	ID        string    `json:"id" db:"id"`
	PostID    string    `json:"post" db:"post_id"`
	Author    string    `json:"author" db:"author"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (Favorite) GetTableName() string { return "favorites" }

func (Favorite) DefaultOrdering() string { return "created_at, id" }

func (f Favorite) OwnerID() string { return f.Author }

// PostArray is one item of a post's ordered auxiliary content. Image holds
// the object storage key.
type PostArray struct {
	ID        string    `json:"id" db:"id"`
	PostID    string    `json:"post" db:"post_id"`
	Position  int       `json:"position" db:"position"`
	Image     string    `json:"image" db:"image"`
	Caption   string    `json:"caption" db:"caption"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (PostArray) GetTableName() string { return "post_arrays" }

func (PostArray) DefaultOrdering() string { return "position, created_at, id" }
