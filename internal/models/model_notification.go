package models

import "time"

type NotificationType string

const (
	NotificationTypeNewPost     NotificationType = "new_post"
	NotificationTypeNewComment  NotificationType = "new_comment"
	NotificationTypeNewReply    NotificationType = "new_reply"
	NotificationTypePostLike    NotificationType = "post_like"
	NotificationTypeCommentLike NotificationType = "comment_like"
)

type Notification struct {
	ID        string           `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID    string           `gorm:"column:user_id;type:uuid;not null;index:idx_notification_user_read" json:"user_id"`
	Message   string           `gorm:"column:message;type:varchar(255);not null" json:"message"`
	Type      NotificationType `gorm:"column:notification_type;type:varchar(30);not null" json:"notification_type"`
	IsRead    bool             `gorm:"column:is_read;not null;default:false;index:idx_notification_user_read" json:"is_read"`
	PostID    *string          `gorm:"column:post_id;type:uuid" json:"post_id"`
	CommentID *string          `gorm:"column:comment_id;type:uuid" json:"comment_id"`
	CreatedAt time.Time        `gorm:"index" json:"created_at"`
}

func (Notification) TableName() string { return "notification" }

type Subscriber struct {
	ID        string    `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Email     string    `gorm:"column:email;type:varchar(254);not null;uniqueIndex" json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func (Subscriber) TableName() string { return "subscriber" }
