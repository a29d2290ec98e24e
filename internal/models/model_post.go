package models

import (
	"time"

	"gorm.io/datatypes"
)

type Post struct {
	ID            string    `gorm:"column:id;type:uuid;primary_key" json:"id"`
	AuthorID      string    `gorm:"column:author_id;type:uuid;not null;index" json:"author_id"`
	Author        *User     `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	CategoryID    string    `gorm:"column:category_id;type:uuid;not null;index" json:"category_id"`
	Category      *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT" json:"-"`
	Tags          []Tag     `gorm:"many2many:post_tags;constraint:OnDelete:CASCADE" json:"-"`
	Title         string    `gorm:"column:title;type:varchar(200);not null" json:"title"`
	Slug          string    `gorm:"column:slug;type:varchar(255);not null;uniqueIndex" json:"slug"`
	Text          string    `gorm:"column:text;type:text;not null" json:"text"`
	Image         string    `gorm:"column:image;type:varchar(512)" json:"image"`
	IsFeatured    bool      `gorm:"column:is_featured;not null;default:false;index" json:"is_featured"`
	IsTopPost     bool      `gorm:"column:is_top_post;not null;default:false;index" json:"is_top_post"`
	IsPremiumPost bool      `gorm:"column:is_premium_post;not null;default:false;index" json:"is_premium_post"`
	Views         int64     `gorm:"column:views;not null;default:0" json:"views"`
	// PostedAt is the publish time. A future value schedules the post.
	PostedAt  time.Time `gorm:"column:posted_at;not null;index" json:"posted_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Post) TableName() string { return "post" }

// Published reports whether the post is visible at now.
func (p *Post) Published(now time.Time) bool {
	return p != nil && !p.PostedAt.After(now)
}

// PostHistory is an append-only snapshot written after every post update.
type PostHistory struct {
	ID            string                        `gorm:"column:id;type:uuid;primary_key" json:"id"`
	PostID        string                        `gorm:"column:post_id;type:uuid;not null;index" json:"post_id"`
	AuthorID      string                        `gorm:"column:author_id;type:uuid;not null" json:"author_id"`
	EditorID      string                        `gorm:"column:editor_id;type:uuid" json:"editor_id"`
	CategoryID    string                        `gorm:"column:category_id;type:uuid;not null" json:"category_id"`
	Title         string                        `gorm:"column:title;type:varchar(200);not null" json:"title"`
	Slug          string                        `gorm:"column:slug;type:varchar(255)" json:"slug"`
	Text          string                        `gorm:"column:text;type:text;not null" json:"text"`
	Tags          datatypes.JSONType[[]TagSnap] `gorm:"column:tags;type:jsonb" json:"tags"`
	IsFeatured    bool                          `gorm:"column:is_featured;not null" json:"is_featured"`
	IsTopPost     bool                          `gorm:"column:is_top_post;not null" json:"is_top_post"`
	IsPremiumPost bool                          `gorm:"column:is_premium_post;not null" json:"is_premium_post"`
	Views         int64                         `gorm:"column:views;not null" json:"views"`
	PostedAt      time.Time                     `gorm:"column:posted_at;not null" json:"posted_at"`
	CreatedAt     time.Time                     `gorm:"index" json:"created_at"`
}

func (PostHistory) TableName() string { return "post_history" }

type TagSnap struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// PostEngagement is the materialized trending ranking, rebuilt by the
// engagement refresher.
type PostEngagement struct {
	PostID     string    `gorm:"column:post_id;type:uuid;primary_key" json:"post_id"`
	Views      int64     `gorm:"column:views;not null" json:"views"`
	Likes      int64     `gorm:"column:likes;not null" json:"likes"`
	Comments   int64     `gorm:"column:comments;not null" json:"comments"`
	Score      float64   `gorm:"column:score;not null;index" json:"score"`
	ComputedAt time.Time `gorm:"column:computed_at;not null" json:"computed_at"`
}

func (PostEngagement) TableName() string { return "post_engagement" }
