package interaction

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/inkwell/blog/internal/app/service/account"
	"github.com/inkwell/blog/internal/app/service/notification"
	"github.com/inkwell/blog/internal/models"
	"github.com/inkwell/blog/pkg/errs"
	"github.com/inkwell/blog/pkg/logctx"
	"github.com/inkwell/blog/pkg/tool"
	"github.com/inkwell/blog/pkg/types"
)

const maxCommentLen = 2000

type CreateCommentRequest struct {
	PostID   string  `json:"post_id"`
	ParentID *string `json:"parent_id"`
	Text     string  `json:"text"`
}

type UpdateCommentRequest struct {
	Text string `json:"text"`
}

type AuthorRef struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type CommentView struct {
	ID           string    `json:"id"`
	Author       AuthorRef `json:"author"`
	PostID       string    `json:"post_id"`
	ParentID     *string   `json:"parent_id"`
	Text         string    `json:"text"`
	CommentedOn  time.Time `json:"commented_on"`
	UpdatedAt    time.Time `json:"updated_at"`
	TotalLikes   int64     `json:"total_likes"`
	TotalReplies int64     `json:"total_replies"`
	// Likes lists the ids of users who liked the comment.
	Likes []string `json:"likes"`
}

func validText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errs.Invalid("text is required")
	}
	if len(text) > maxCommentLen {
		return "", errs.Invalid("text is longer than %d characters", maxCommentLen)
	}
	return text, nil
}

// CreateComment adds a comment or, with ParentID, a reply on the same post.
func (s *Service) CreateComment(ctx context.Context, actor *account.Principal, req *CreateCommentRequest) (*CommentView, error) {
	if !actor.Authenticated() {
		return nil, errs.ErrUnauthorized
	}
	text, err := validText(req.Text)
	if err != nil {
		return nil, err
	}
	if req.PostID == "" {
		return nil, errs.Invalid("post_id is required")
	}
	if err := s.premiumGate(ctx, actor, req.PostID); err != nil {
		return nil, err
	}
	c := &models.Comment{
		ID:       tool.GenerateUUIDV7(),
		AuthorID: actor.UserID,
		PostID:   req.PostID,
		Text:     text,
	}
	var post *models.Post
	var parent *models.Comment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if post, err = s.publishedPost(tx, req.PostID); err != nil {
			return err
		}
		if req.ParentID != nil && *req.ParentID != "" {
			parent = &models.Comment{}
			if err := tx.First(parent, "id = ?", *req.ParentID).Error; err != nil {
				return errs.FromDB(err, "parent comment")
			}
			if parent.PostID != post.ID {
				return errs.Invalid("parent comment belongs to another post")
			}
			c.ParentID = &parent.ID
		}
		return errs.FromDB(tx.Create(c).Error, "comment")
	})
	if err != nil {
		return nil, err
	}

	logctx.FromCtx(ctx, s.log).Infow("comment_created", "id", c.ID, "post", c.PostID, "reply", parent != nil)
	name := s.username(ctx, actor.UserID)
	if parent != nil {
		s.notify(ctx, actor.UserID, notification.Event{
			RecipientID: parent.AuthorID,
			Message:     fmt.Sprintf("%s replied to your comment", name),
			Type:        models.NotificationTypeNewReply,
			PostID:      &post.ID,
			CommentID:   &c.ID,
		})
	} else {
		s.notify(ctx, actor.UserID, notification.Event{
			RecipientID: post.AuthorID,
			Message:     fmt.Sprintf("%s commented on your post", name),
			Type:        models.NotificationTypeNewComment,
			PostID:      &post.ID,
			CommentID:   &c.ID,
		})
	}
	return s.commentView(ctx, c.ID)
}

// ListComments pages every comment actor may read, newest first.
func (s *Service) ListComments(ctx context.Context, actor *account.Principal, req types.PageRequest) (*types.Page[CommentView], error) {
	q := s.db.WithContext(ctx).Model(&models.Comment{}).Scopes(s.readableComments(ctx, actor))
	return s.pageComments(ctx, q, req)
}

// ListPostComments pages the comments of one post, newest first. A post
// without comments is reported as not found.
func (s *Service) ListPostComments(ctx context.Context, actor *account.Principal, postID string, req types.PageRequest) (*types.Page[CommentView], error) {
	if err := s.premiumGate(ctx, actor, postID); err != nil {
		return nil, err
	}
	q := s.db.WithContext(ctx).Model(&models.Comment{}).Where("post_id = ?", postID)
	page, err := s.pageComments(ctx, q, req)
	if err != nil {
		return nil, err
	}
	if page.Count == 0 {
		return nil, errs.NotFound("comments for post")
	}
	return page, nil
}

func (s *Service) pageComments(ctx context.Context, q *gorm.DB, req types.PageRequest) (*types.Page[CommentView], error) {
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}
	var rows []models.Comment
	err := q.Preload("Author").
		Order("commented_on DESC").Order("id DESC").
		Offset(req.Offset()).Limit(req.PageSize).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	views, err := s.commentViews(ctx, rows)
	if err != nil {
		return nil, err
	}
	return types.NewPage(req, total, views), nil
}

func (s *Service) GetComment(ctx context.Context, actor *account.Principal, id string) (*CommentView, error) {
	v, err := s.commentView(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.premiumGate(ctx, actor, v.PostID); err != nil {
		return nil, err
	}
	return v, nil
}

// UpdateComment edits the text. Only the author may do so.
func (s *Service) UpdateComment(ctx context.Context, actor *account.Principal, id string, req *UpdateCommentRequest) (*CommentView, error) {
	if !actor.Authenticated() {
		return nil, errs.ErrUnauthorized
	}
	text, err := validText(req.Text)
	if err != nil {
		return nil, err
	}
	var c models.Comment
	if err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, errs.FromDB(err, "comment")
	}
	if !actor.Owns(c.AuthorID) {
		return nil, errs.Forbidden("only the author can edit a comment")
	}
	if err := s.db.WithContext(ctx).Model(&c).Update("text", text).Error; err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return s.commentView(ctx, id)
}

// DeleteComment removes a comment with its replies and likes. Allowed for
// the author and staff.
func (s *Service) DeleteComment(ctx context.Context, actor *account.Principal, id string) error {
	if !actor.Authenticated() {
		return errs.ErrUnauthorized
	}
	var c models.Comment
	if err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return errs.FromDB(err, "comment")
	}
	if !actor.Owns(c.AuthorID) && !actor.Editor() {
		return errs.Forbidden("not allowed to delete this comment")
	}
	if err := s.db.WithContext(ctx).Delete(&c).Error; err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("comment_deleted", "id", id, "actor", actor.UserID)
	return nil
}

func (s *Service) commentView(ctx context.Context, id string) (*CommentView, error) {
	var c models.Comment
	if err := s.db.WithContext(ctx).Preload("Author").First(&c, "id = ?", id).Error; err != nil {
		return nil, errs.FromDB(err, "comment")
	}
	views, err := s.commentViews(ctx, []models.Comment{c})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

type commentLike struct {
	CommentID string
	UserID    string
}

func (s *Service) commentViews(ctx context.Context, rows []models.Comment) ([]CommentView, error) {
	if len(rows) == 0 {
		return []CommentView{}, nil
	}
	ids := lo.Map(rows, func(c models.Comment, _ int) string { return c.ID })
	replies, err := s.countBy(ctx, &models.Comment{}, "parent_id", ids)
	if err != nil {
		return nil, err
	}
	var likes []commentLike
	if err := s.db.WithContext(ctx).Model(&models.Like{}).
		Select("comment_id", "user_id").
		Where("comment_id IN ?", ids).
		Order("created_at ASC").
		Scan(&likes).Error; err != nil {
		return nil, fmt.Errorf("load comment likes: %w", err)
	}
	likers := lo.GroupBy(likes, func(l commentLike) string { return l.CommentID })

	return lo.Map(rows, func(c models.Comment, _ int) CommentView {
		users := lo.Map(likers[c.ID], func(l commentLike, _ int) string { return l.UserID })
		v := CommentView{
			ID:           c.ID,
			Author:       AuthorRef{ID: c.AuthorID},
			PostID:       c.PostID,
			ParentID:     c.ParentID,
			Text:         c.Text,
			CommentedOn:  c.CommentedOn,
			UpdatedAt:    c.UpdatedAt,
			TotalLikes:   int64(len(users)),
			TotalReplies: replies[c.ID],
			Likes:        users,
		}
		if c.Author != nil {
			v.Author.Username = c.Author.Username
		}
		return v
	}), nil
}
