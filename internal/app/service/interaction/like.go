package interaction

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/inkwell/blog/internal/app/service/account"
	"github.com/inkwell/blog/internal/app/service/notification"
	"github.com/inkwell/blog/internal/models"
	"github.com/inkwell/blog/pkg/errs"
	"github.com/inkwell/blog/pkg/logctx"
	"github.com/inkwell/blog/pkg/tool"
	"github.com/inkwell/blog/pkg/types"
)

// CreateLikeRequest targets exactly one of a post or a comment.
type CreateLikeRequest struct {
	PostID    *string `json:"post_id"`
	CommentID *string `json:"comment_id"`
}

func nonEmpty(s *string) bool { return s != nil && *s != "" }

// CreateLike records the caller's like. A second like on the same target is
// a conflict.
func (s *Service) CreateLike(ctx context.Context, actor *account.Principal, req *CreateLikeRequest) (*models.Like, error) {
	if !actor.Authenticated() {
		return nil, errs.ErrUnauthorized
	}
	if nonEmpty(req.PostID) == nonEmpty(req.CommentID) {
		return nil, errs.Invalid("a like targets exactly one of post_id or comment_id")
	}
	var postID string
	if nonEmpty(req.PostID) {
		postID = *req.PostID
	} else {
		var c models.Comment
		if err := s.db.WithContext(ctx).Select("id", "post_id").First(&c, "id = ?", *req.CommentID).Error; err != nil {
			return nil, errs.FromDB(err, "comment")
		}
		postID = c.PostID
	}
	if err := s.premiumGate(ctx, actor, postID); err != nil {
		return nil, err
	}
	like := &models.Like{ID: tool.GenerateUUIDV7(), UserID: actor.UserID}
	var ev notification.Event
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dup := tx.Model(&models.Like{}).Where("user_id = ?", actor.UserID)
		if nonEmpty(req.PostID) {
			post, err := s.publishedPost(tx, *req.PostID)
			if err != nil {
				return err
			}
			like.PostID = &post.ID
			dup = dup.Where("post_id = ?", post.ID)
			ev = notification.Event{RecipientID: post.AuthorID, Type: models.NotificationTypePostLike, PostID: &post.ID}
		} else {
			var c models.Comment
			if err := tx.First(&c, "id = ?", *req.CommentID).Error; err != nil {
				return errs.FromDB(err, "comment")
			}
			like.CommentID = &c.ID
			dup = dup.Where("comment_id = ?", c.ID)
			ev = notification.Event{RecipientID: c.AuthorID, Type: models.NotificationTypeCommentLike, PostID: &c.PostID, CommentID: &c.ID}
		}
		var n int64
		if err := dup.Count(&n).Error; err != nil {
			return fmt.Errorf("check like: %w", err)
		}
		if n > 0 {
			return errs.Conflict("already liked")
		}
		// the unique indexes still catch a concurrent duplicate
		return errs.FromDB(tx.Create(like).Error, "like")
	})
	if err != nil {
		return nil, err
	}

	name := s.username(ctx, actor.UserID)
	if ev.Type == models.NotificationTypePostLike {
		ev.Message = fmt.Sprintf("%s liked your post", name)
	} else {
		ev.Message = fmt.Sprintf("%s liked your comment", name)
	}
	s.notify(ctx, actor.UserID, ev)
	logctx.FromCtx(ctx, s.log).Infow("like_created", "id", like.ID, "type", ev.Type)
	return like, nil
}

// ListLikes pages every like, newest first.
func (s *Service) ListLikes(ctx context.Context, req types.PageRequest) (*types.Page[models.Like], error) {
	q := s.db.WithContext(ctx).Model(&models.Like{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}
	var rows []models.Like
	if err := q.Order("created_at DESC").Order("id DESC").Offset(req.Offset()).Limit(req.PageSize).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list likes: %w", err)
	}
	return types.NewPage(req, total, rows), nil
}

// DeletePostLike removes userID's like on a post.
func (s *Service) DeletePostLike(ctx context.Context, actor *account.Principal, postID, userID string) error {
	return s.deleteLike(ctx, actor, "post_id", postID, userID)
}

// DeleteCommentLike removes userID's like on a comment.
func (s *Service) DeleteCommentLike(ctx context.Context, actor *account.Principal, commentID, userID string) error {
	return s.deleteLike(ctx, actor, "comment_id", commentID, userID)
}

func (s *Service) deleteLike(ctx context.Context, actor *account.Principal, column, targetID, userID string) error {
	if !actor.Authenticated() {
		return errs.ErrUnauthorized
	}
	if !actor.Owns(userID) && !actor.Admin() {
		return errs.Forbidden("not allowed to remove another user's like")
	}
	res := s.db.WithContext(ctx).
		Where(column+" = ? AND user_id = ?", targetID, userID).
		Delete(&models.Like{})
	if res.Error != nil {
		return fmt.Errorf("delete like: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("like")
	}
	return nil
}
