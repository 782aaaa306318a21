package models

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Category partitions the board. The set is closed; posts outside it are rejected at write time.
type Category string

const (
	CategorySolo Category = "SOLO"
	CategoryDate Category = "DATE"
	CategoryWork Category = "WORK"
	CategoryEtc  Category = "ETC"
)

// Categories is the display order of the boards.
var Categories = []Category{CategorySolo, CategoryDate, CategoryWork, CategoryEtc}

var categoryLabels = map[Category]string{
	CategorySolo: "Drinking solo",
	CategoryDate: "Date night",
	CategoryWork: "Team dinner",
	CategoryEtc:  "Everything else",
}

// ParseCategory accepts any letter case, so /community/list/solo works.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := categoryLabels[c]
	return c, ok
}

func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// Slug is the lower-case path segment used in board URLs.
func (c Category) Slug() string {
	return strings.ToLower(string(c))
}

type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Nickname     string    `json:"nickname" db:"nickname"`
	Role         Role      `json:"role" db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// SessionSnapshot is what the signed session cookie carries. It is captured
// at login and not re-read from storage until the next login.
type SessionSnapshot struct {
	Login     string    `json:"login"`
	Nickname  string    `json:"nickname"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *SessionSnapshot) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

type Post struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Content     string    `json:"content" db:"content"`
	Category    Category  `json:"category" db:"category"`
	AuthorLogin string    `json:"authorLogin" db:"author_login"`
	AuthorName  string    `json:"authorName" db:"author_name"`
	ImageURL    string    `json:"imageUrl" db:"image_url"`
	Views       int64     `json:"views" db:"views"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	Comments    []Comment `json:"comments" db:"-"`
}

type Comment struct {
	ID         int64     `json:"id" db:"id"`
	PostID     int64     `json:"postId" db:"post_id"`
	AuthorName string    `json:"authorName" db:"author_name"`
	Content    string    `json:"content" db:"content"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}
