package engagement

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/inkwell/blog/internal/models"
	"github.com/inkwell/blog/pkg/config"
	"github.com/inkwell/blog/pkg/logctx"
	"github.com/inkwell/blog/pkg/metrics"
	"github.com/inkwell/blog/pkg/types"
)

const refreshBatchSize = 500

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
	now func() time.Time
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log, now: time.Now}
}

var Module = fx.Options(
	fx.Provide(NewService),
	fx.Invoke(registerRefresher),
)

type countRow struct {
	PostID string
	N      int64
}

func (s *Service) groupedCounts(ctx context.Context, tx *gorm.DB, table string) (map[string]int64, error) {
	var rows []countRow
	err := tx.WithContext(ctx).Table(table).
		Select("post_id, COUNT(*) AS n").
		Where("post_id IS NOT NULL").
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count %s: %w", table, err)
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.PostID] = r.N
	}
	return out, nil
}

// Refresh recomputes post_engagement for every published post and returns
// how many rows it wrote.
func (s *Service) Refresh(ctx context.Context) (int, error) {
	start := time.Now()
	now := s.now()
	var written int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		likes, err := s.groupedCounts(ctx, tx, models.Like{}.TableName())
		if err != nil {
			return err
		}
		comments, err := s.groupedCounts(ctx, tx, models.Comment{}.TableName())
		if err != nil {
			return err
		}

		var posts []models.Post
		if err := tx.Select("id", "views", "posted_at").Where("posted_at <= ?", now).Find(&posts).Error; err != nil {
			return fmt.Errorf("load posts: %w", err)
		}

		rows := make([]models.PostEngagement, 0, len(posts))
		for _, p := range posts {
			rows = append(rows, models.PostEngagement{
				PostID:     p.ID,
				Views:      p.Views,
				Likes:      likes[p.ID],
				Comments:   comments[p.ID],
				Score:      Score(p.Views, likes[p.ID], comments[p.ID], p.PostedAt, now),
				ComputedAt: now,
			})
		}

		// rows for deleted or rescheduled posts
		if err := tx.Where("post_id NOT IN (?)", tx.Model(&models.Post{}).Select("id").Where("posted_at <= ?", now)).
			Delete(&models.PostEngagement{}).Error; err != nil {
			return fmt.Errorf("prune engagement: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "post_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"views", "likes", "comments", "score", "computed_at"}),
		}).CreateInBatches(rows, refreshBatchSize).Error; err != nil {
			return fmt.Errorf("upsert engagement: %w", err)
		}
		written = len(rows)
		return nil
	})
	metrics.BusinessProcess.WithLabelValues("engagement", "refresh").Observe(metrics.MillisecondsSince(start))
	if err != nil {
		return 0, err
	}
	logctx.FromCtx(ctx, s.log).Infow("engagement_refreshed", "posts", written, "elapsed_ms", time.Since(start).Milliseconds())
	return written, nil
}

// OrderByScore is a scope for post queries that ranks by the materialized
// score. Posts not yet materialized rank last, newest first.
func OrderByScore(db *gorm.DB) *gorm.DB {
	return db.
		Joins("LEFT JOIN post_engagement ON post_engagement.post_id = post.id").
		Order("COALESCE(post_engagement.score, 0) DESC").
		Order("post.posted_at DESC")
}

func registerRefresher(lc fx.Lifecycle, s *Service, cfg *config.Config) {
	interval := cfg.Trending.RefreshInterval
	if interval <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				s.run(ctx, interval)
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			<-done
			return nil
		},
	})
}

func (s *Service) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if _, err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
			s.log.Errorw("engagement_refresh_failed", "err", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Trending pages the materialized ranking.
func (s *Service) Trending(ctx context.Context, req types.PageRequest) (*types.Page[models.PostEngagement], error) {
	q := s.db.WithContext(ctx).Model(&models.PostEngagement{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count engagement: %w", err)
	}
	var rows []models.PostEngagement
	if err := q.Order("score DESC").Offset(req.Offset()).Limit(req.PageSize).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("page engagement: %w", err)
	}
	return types.NewPage(req, total, rows), nil
}
