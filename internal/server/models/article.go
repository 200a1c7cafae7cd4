package models

import "time"

// Article is a blog post. OwnerID is nil for legacy or seeded content that
// was never attributed to a user.
type Article struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Content      string    `json:"content"`
	Image        string    `json:"image"`
	Category     string    `json:"category"`
	Date         string    `json:"date"`
	ReadTime     string    `json:"readTime"`
	Author       string    `json:"author"`
	AuthorAvatar string    `json:"authorAvatar"`
	Featured     bool      `json:"featured"`
	OwnerID      *string   `json:"userId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsOwnedBy reports whether the article has an owner equal to userID.
func (a *Article) IsOwnedBy(userID string) bool {
	return a.OwnerID != nil && *a.OwnerID == userID
}

// ArticlePatch carries a partial article update; nil fields are left as is.
type ArticlePatch struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	Content      *string `json:"content"`
	Image        *string `json:"image"`
	Category     *string `json:"category"`
	Date         *string `json:"date"`
	ReadTime     *string `json:"readTime"`
	Author       *string `json:"author"`
	AuthorAvatar *string `json:"authorAvatar"`
	Featured     *bool   `json:"featured"`
}

// Apply copies the non-nil fields of p onto a.
func (p ArticlePatch) Apply(a *Article) {
	setIf(&a.Title, p.Title)
	setIf(&a.Description, p.Description)
	setIf(&a.Content, p.Content)
	setIf(&a.Image, p.Image)
	setIf(&a.Category, p.Category)
	setIf(&a.Date, p.Date)
	setIf(&a.ReadTime, p.ReadTime)
	setIf(&a.Author, p.Author)
	setIf(&a.AuthorAvatar, p.AuthorAvatar)
	if p.Featured != nil {
		a.Featured = *p.Featured
	}
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
