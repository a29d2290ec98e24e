// Package statistics aggregates site activity for the admin dashboard.
package statistics

import (
	"context"
	"fmt"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/inkwell/blog/internal/app/service/account"
	"github.com/inkwell/blog/internal/models"
	"github.com/inkwell/blog/pkg/errs"
	"github.com/inkwell/blog/pkg/logctx"
	"github.com/inkwell/blog/pkg/types"
)

type StatisticType string

const (
	StatisticTypeDailyPostCount    StatisticType = "daily_post_count"
	StatisticTypeDailyCommentCount StatisticType = "daily_comment_count"
	StatisticTypeDailyLikeCount    StatisticType = "daily_like_count"
	StatisticTypeDailyNewUserCount StatisticType = "daily_new_user_count"

	StatisticTypeDailyOrderCount StatisticType = "daily_order_count"
	StatisticTypeDailyGmv        StatisticType = "daily_gmv"
	StatisticTypeTotalGmv        StatisticType = "total_gmv"

	StatisticTypeActivePremiumCount StatisticType = "active_premium_count"
)

// FilterType names the filter fields a request may use.
type FilterType string

const (
	FilterTypeCategoryID FilterType = "category_id"
	FilterTypeStatus     FilterType = "status"
	FilterTypeCreatedAt  FilterType = "created_at"
)

var validFilters = map[FilterType][]StatisticType{
	FilterTypeCategoryID: {StatisticTypeDailyPostCount},
	FilterTypeStatus:     {StatisticTypeDailyOrderCount, StatisticTypeDailyGmv},
	FilterTypeCreatedAt: {
		StatisticTypeDailyPostCount, StatisticTypeDailyCommentCount, StatisticTypeDailyLikeCount,
		StatisticTypeDailyNewUserCount, StatisticTypeDailyOrderCount, StatisticTypeDailyGmv,
	},
}

// paidStatuses count towards GMV.
var paidStatuses = []models.OrderStatus{models.OrderStatusPaid, models.OrderStatusShipped, models.OrderStatusDelivered}

type DataItem struct {
	ID StatisticType `json:"id"`
}

type Request struct {
	Filters   []*types.CommonFilter `json:"filters"`
	DataItems []*DataItem           `json:"data_items"`
}

// filtersFor keeps the filters that apply to statisticType.
func (r *Request) filtersFor(statisticType StatisticType) types.FiltersAnd {
	var out types.FiltersAnd
	for _, f := range r.Filters {
		if lo.Contains(validFilters[FilterType(f.Field)], statisticType) {
			out = append(out, f)
		}
	}
	return out
}

func (r *Request) validate() error {
	if len(r.DataItems) == 0 {
		return errs.Invalid("data_items is required")
	}
	for _, f := range r.Filters {
		if _, ok := validFilters[FilterType(f.Field)]; !ok {
			return errs.Invalid("unsupported filter %q", f.Field)
		}
		if err := f.Validate(); err != nil {
			return err
		}
	}
	for _, di := range r.DataItems {
		if _, ok := queries[di.ID]; !ok {
			return errs.Invalid("invalid data item id: %s", di.ID)
		}
	}
	return nil
}

type ResponseDataItem struct {
	Date  string  `json:"date,omitempty"`
	Label string  `json:"label,omitempty"`
	Value float64 `json:"value"`
}

type Response struct {
	DataItems map[StatisticType][]ResponseDataItem `json:"data_items"`
}

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

var Module = fx.Options(
	fx.Provide(New),
)

// day renders a timestamp column as YYYY-MM-DD for the current dialect.
func (s *Service) day(column string) string {
	if s.db.Dialector.Name() == "postgres" {
		return fmt.Sprintf("TO_CHAR(%s, 'YYYY-MM-DD')", column)
	}
	return fmt.Sprintf("DATE(%s)", column)
}

type query func(s *Service, ctx context.Context, where types.FiltersAnd) ([]ResponseDataItem, error)

var queries = map[StatisticType]query{
	StatisticTypeDailyPostCount:     dailyCount("post"),
	StatisticTypeDailyCommentCount:  dailyCount("comment"),
	StatisticTypeDailyLikeCount:     dailyCount("likes"),
	StatisticTypeDailyNewUserCount:  dailyCount("users"),
	StatisticTypeDailyOrderCount:    dailyCount("orders"),
	StatisticTypeDailyGmv:           (*Service).dailyGmv,
	StatisticTypeTotalGmv:           (*Service).totalGmv,
	StatisticTypeActivePremiumCount: (*Service).activePremiumCount,
}

func dailyCount(table string) query {
	return func(s *Service, ctx context.Context, where types.FiltersAnd) ([]ResponseDataItem, error) {
		var results []ResponseDataItem
		day := s.day("created_at")
		err := s.db.WithContext(ctx).Table(table).
			Select(day + " AS date, COUNT(*) AS value").
			Where(where.Where()).
			Group(day).
			Order("date").
			Scan(&results).Error
		return results, err
	}
}

func (s *Service) dailyGmv(ctx context.Context, where types.FiltersAnd) ([]ResponseDataItem, error) {
	var results []ResponseDataItem
	day := s.day("created_at")
	q := s.db.WithContext(ctx).Table(models.Order{}.TableName()).
		Select(day+" AS date, SUM(total_amount) AS value").
		Where(where.Where())
	// an explicit status filter replaces the paid default
	if !lo.ContainsBy(where, func(f *types.CommonFilter) bool { return f.Field == string(FilterTypeStatus) }) {
		q = q.Where("status IN ?", paidStatuses)
	}
	err := q.Group(day).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "date"}, Desc: true}).
		Scan(&results).Error
	return results, err
}

func (s *Service) totalGmv(ctx context.Context, _ types.FiltersAnd) ([]ResponseDataItem, error) {
	var results []ResponseDataItem
	err := s.db.WithContext(ctx).Table(models.Order{}.TableName()).
		Select("COALESCE(SUM(total_amount), 0) AS value").
		Where("status IN ?", paidStatuses).
		Scan(&results).Error
	return results, err
}

func (s *Service) activePremiumCount(ctx context.Context, _ types.FiltersAnd) ([]ResponseDataItem, error) {
	var results []ResponseDataItem
	err := s.db.WithContext(ctx).Table(models.PremiumUser{}.TableName()).
		Select("COUNT(*) AS value").
		Where("has_active_subscription = ?", true).
		Scan(&results).Error
	return results, err
}

// Get computes every requested data item concurrently. Staff only.
func (s *Service) Get(ctx context.Context, actor *account.Principal, request *Request) (*Response, error) {
	if !actor.Editor() {
		return nil, errs.Forbidden("only staff can read statistics")
	}
	if err := request.validate(); err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	errChan := make(chan error, len(request.DataItems))
	resChan := make(chan *lo.Entry[StatisticType, []ResponseDataItem], len(request.DataItems))

	for _, item := range request.DataItems {
		wg.Add(1)
		go func(di *DataItem) {
			defer wg.Done()
			res, err := queries[di.ID](s, ctx, request.filtersFor(di.ID))
			if err != nil {
				errChan <- fmt.Errorf("%s: %w", di.ID, err)
				return
			}
			if res == nil {
				res = []ResponseDataItem{}
			}
			resChan <- &lo.Entry[StatisticType, []ResponseDataItem]{Key: di.ID, Value: res}
		}(item)
	}

	wg.Wait()
	close(errChan)
	close(resChan)

	if err := <-errChan; err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("statistics_failed", "err", err)
		return nil, err
	}
	results := make(map[StatisticType][]ResponseDataItem)
	for entry := range resChan {
		results[entry.Key] = entry.Value
	}
	return &Response{DataItems: results}, nil
}
