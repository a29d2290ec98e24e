package post

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/inkwell/blog/internal/app/service/engagement"
	"github.com/inkwell/blog/internal/models"
	"github.com/inkwell/blog/pkg/errs"
)

type AuthorRef struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// View is the serialized post.
type View struct {
	ID            string    `json:"id"`
	Author        AuthorRef `json:"author"`
	CategoryID    string    `json:"category_id"`
	Category      string    `json:"category"`
	Tags          []string  `json:"tags"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Text          string    `json:"text"`
	Image         string    `json:"image"`
	IsFeatured    bool      `json:"is_featured"`
	IsTopPost     bool      `json:"is_top_post"`
	IsPremiumPost bool      `json:"is_premium_post"`
	Views         int64     `json:"views"`
	PostedAt      time.Time `json:"posted_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	TotalLikes    int64     `json:"total_likes"`
	TotalComments int64     `json:"total_comments"`
	EngScore      float64   `json:"eng_score"`
}

func (s *Service) view(ctx context.Context, id string) (*View, error) {
	var p models.Post
	err := s.db.WithContext(ctx).
		Preload("Author").Preload("Category").Preload("Tags").
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, errs.FromDB(err, "post")
	}
	views, err := s.toViews(ctx, []models.Post{p})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

type postCount struct {
	PostID string
	N      int64
}

func (s *Service) countByPost(ctx context.Context, table string, ids []string) (map[string]int64, error) {
	var rows []postCount
	err := s.db.WithContext(ctx).Table(table).
		Select("post_id, COUNT(*) AS n").
		Where("post_id IN ?", ids).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count %s: %w", table, err)
	}
	return lo.SliceToMap(rows, func(r postCount) (string, int64) { return r.PostID, r.N }), nil
}

// toViews serializes a page of posts with two grouped count queries.
func (s *Service) toViews(ctx context.Context, posts []models.Post) ([]View, error) {
	if len(posts) == 0 {
		return []View{}, nil
	}
	ids := lo.Map(posts, func(p models.Post, _ int) string { return p.ID })
	likes, err := s.countByPost(ctx, models.Like{}.TableName(), ids)
	if err != nil {
		return nil, err
	}
	comments, err := s.countByPost(ctx, models.Comment{}.TableName(), ids)
	if err != nil {
		return nil, err
	}
	now := s.now()
	return lo.Map(posts, func(p models.Post, _ int) View {
		v := View{
			ID:            p.ID,
			Author:        AuthorRef{ID: p.AuthorID},
			CategoryID:    p.CategoryID,
			Tags:          lo.Map(p.Tags, func(t models.Tag, _ int) string { return t.Title }),
			Title:         p.Title,
			Slug:          p.Slug,
			Text:          p.Text,
			Image:         p.Image,
			IsFeatured:    p.IsFeatured,
			IsTopPost:     p.IsTopPost,
			IsPremiumPost: p.IsPremiumPost,
			Views:         p.Views,
			PostedAt:      p.PostedAt,
			CreatedAt:     p.CreatedAt,
			UpdatedAt:     p.UpdatedAt,
			TotalLikes:    likes[p.ID],
			TotalComments: comments[p.ID],
			EngScore:      engagement.Score(p.Views, likes[p.ID], comments[p.ID], p.PostedAt, now),
		}
		if p.Author != nil {
			v.Author.Username = p.Author.Username
		}
		if p.Category != nil {
			v.Category = p.Category.Title
		}
		return v
	}), nil
}
