package models

import "time"

type Comment struct {
	ID          string    `gorm:"column:id;type:uuid;primary_key" json:"id"`
	AuthorID    string    `gorm:"column:author_id;type:uuid;not null;index" json:"author_id"`
	Author      *User     `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	PostID      string    `gorm:"column:post_id;type:uuid;not null;index" json:"post_id"`
	Post        *Post     `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	ParentID    *string   `gorm:"column:parent_id;type:uuid;index" json:"parent_id"`
	Parent      *Comment  `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"-"`
	Text        string    `gorm:"column:text;type:varchar(2000);not null" json:"text"`
	CommentedOn time.Time `gorm:"column:commented_on;autoCreateTime" json:"commented_on"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Comment) TableName() string { return "comment" }

// Like targets exactly one of a post or a comment. The two unique indexes keep
// one like per (user, post) and per (user, comment); NULL targets never collide.
type Like struct {
	ID        string    `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID    string    `gorm:"column:user_id;type:uuid;not null;uniqueIndex:uniq_like_user_post;uniqueIndex:uniq_like_user_comment" json:"user_id"`
	PostID    *string   `gorm:"column:post_id;type:uuid;uniqueIndex:uniq_like_user_post" json:"post_id"`
	Post      *Post     `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	CommentID *string   `gorm:"column:comment_id;type:uuid;uniqueIndex:uniq_like_user_comment" json:"comment_id"`
	Comment   *Comment  `gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (Like) TableName() string { return "likes" }
