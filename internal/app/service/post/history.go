package post

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"gorm.io/datatypes"

	"github.com/inkwell/blog/internal/app/service/account"
	"github.com/inkwell/blog/internal/models"
	"github.com/inkwell/blog/pkg/errs"
	"github.com/inkwell/blog/pkg/tool"
	"github.com/inkwell/blog/pkg/types"
)

func snapshot(p *models.Post, editorID string) *models.PostHistory {
	return &models.PostHistory{
		ID:         tool.GenerateUUIDV7(),
		PostID:     p.ID,
		AuthorID:   p.AuthorID,
		EditorID:   editorID,
		CategoryID: p.CategoryID,
		Title:      p.Title,
		Slug:       p.Slug,
		Text:       p.Text,
		Tags: datatypes.NewJSONType(lo.Map(p.Tags, func(t models.Tag, _ int) models.TagSnap {
			return models.TagSnap{ID: t.ID, Title: t.Title}
		})),
		IsFeatured:    p.IsFeatured,
		IsTopPost:     p.IsTopPost,
		IsPremiumPost: p.IsPremiumPost,
		Views:         p.Views,
		PostedAt:      p.PostedAt,
	}
}

// History pages every snapshot, newest first. Staff only.
func (s *Service) History(ctx context.Context, actor *account.Principal, req types.PageRequest) (*types.Page[models.PostHistory], error) {
	if !actor.Editor() {
		return nil, errs.Forbidden("only staff can read post history")
	}
	return s.pageHistory(ctx, "", req)
}

// PostHistory pages the snapshots of one post, newest first. Readers other
// than staff must be able to see the post itself.
func (s *Service) PostHistory(ctx context.Context, actor *account.Principal, postID string, req types.PageRequest) (*types.Page[models.PostHistory], error) {
	if !actor.Editor() {
		var p models.Post
		if err := s.db.WithContext(ctx).Where("id = ? AND posted_at <= ?", postID, s.now()).First(&p).Error; err != nil {
			return nil, errs.FromDB(err, "post")
		}
		if p.IsPremiumPost && !s.canReadPremium(ctx, actor) {
			return nil, errs.Forbidden("premium subscription required")
		}
	}
	return s.pageHistory(ctx, postID, req)
}

func (s *Service) pageHistory(ctx context.Context, postID string, req types.PageRequest) (*types.Page[models.PostHistory], error) {
	q := s.db.WithContext(ctx).Model(&models.PostHistory{})
	if postID != "" {
		q = q.Where("post_id = ?", postID)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count history: %w", err)
	}
	var rows []models.PostHistory
	if err := q.Order("created_at DESC").Order("id DESC").Offset(req.Offset()).Limit(req.PageSize).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return types.NewPage(req, total, rows), nil
}
