// Package billingevent receives billing provider webhooks and keeps a log of
// every delivery.
package billingevent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/inkwell/blog/internal/app/service/account"
	"github.com/inkwell/blog/internal/app/service/premium"
	"github.com/inkwell/blog/internal/models"
	"github.com/inkwell/blog/internal/platform/billing"
	"github.com/inkwell/blog/pkg/errs"
	"github.com/inkwell/blog/pkg/logctx"
	"github.com/inkwell/blog/pkg/tool"
	"github.com/inkwell/blog/pkg/types"
)

const providerName = "stripe"

// Applier updates local state from a verified event and returns the
// affected user id, if any.
type Applier interface {
	ApplyEvent(ctx context.Context, ev *billing.Event) (string, error)
}

type Service struct {
	db       *gorm.DB
	provider billing.Provider
	applier  Applier
	log      *zap.SugaredLogger
}

func New(db *gorm.DB, provider billing.Provider, applier Applier, log *zap.SugaredLogger) *Service {
	return &Service{db: db, provider: provider, applier: applier, log: log}
}

var Module = fx.Options(
	fx.Provide(
		New,
		func(s *premium.Service) Applier { return s },
	),
)

// Save asynchronously persists a billing event log. Nil input is ignored.
func (s *Service) Save(ctx context.Context, entry *models.BillingEventLog) {
	go func() {
		if entry == nil {
			return
		}
		if entry.ID == "" {
			entry.ID = tool.GenerateUUIDV7()
		}
		if err := s.db.Save(entry).Error; err != nil {
			logctx.FromCtx(ctx, s.log).Errorf("failed to save billing event log: %v", err)
		}
	}()
}

// Handle verifies and applies one webhook delivery. The receipt is stored
// before the event is applied; the outcome is saved afterwards.
func (s *Service) Handle(ctx context.Context, payload []byte, signature string) (*billing.Event, error) {
	ev, err := s.provider.ConstructEvent(payload, signature)
	if err != nil {
		logctx.FromCtx(ctx, s.log).Warnw("billing_webhook_rejected", "err", err)
		return nil, err
	}
	entry := &models.BillingEventLog{
		ID:        tool.GenerateUUIDV7(),
		Provider:  providerName,
		EventID:   ev.ID,
		EventType: ev.Type,
		TraceID:   logctx.TraceID(ctx),
		EventTime: ev.Created,
		Data:      datatypes.JSON(ev.Raw),
		Status:    models.BillingEventLogStatusReceived,
	}
	if ev.Subscription != nil {
		entry.SubscriptionID = ev.Subscription.ID
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("billing_event_log_failed", "event_id", ev.ID, "err", err)
	}

	userID, applyErr := s.applier.ApplyEvent(ctx, ev)
	result := map[string]any{}
	if userID != "" {
		entry.UserID = &userID
		result["user_id"] = userID
	}
	entry.Status = models.BillingEventLogStatusHandled
	if applyErr != nil {
		entry.Status = models.BillingEventLogStatusHandleFailed
		result["error"] = applyErr.Error()
	}
	if raw, err := json.Marshal(result); err == nil {
		r := datatypes.JSON(raw)
		entry.Result = &r
	}
	s.Save(ctx, entry)

	logctx.FromCtx(ctx, s.log).Infow("billing_event_handled", "event_id", ev.ID, "type", ev.Type, "status", entry.Status)
	return ev, applyErr
}

// scanFields are the columns admin scans may filter and sort on.
var scanFields = []string{"event_id", "event_type", "status", "user_id", "subscription_id", "event_time", "created_at"}

type ScanRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanResponse struct {
	Items []*models.BillingEventLog `json:"items"`
	Total int64                     `json:"total"`
}

// Scan lists logged deliveries for the admin pages.
func (s *Service) Scan(ctx context.Context, actor *account.Principal, req *ScanRequest) (*ScanResponse, error) {
	if !actor.Editor() {
		return nil, errs.Forbidden("only staff can read billing events")
	}
	if req == nil {
		return nil, errs.Invalid("nil request")
	}
	if req.Size <= 0 {
		req.Size = 10
	}
	if req.From < 0 {
		req.From = 0
	}
	for _, f := range req.Filters {
		if !lo.Contains(scanFields, f.Field) {
			return nil, errs.Invalid("unsupported filter %q", f.Field)
		}
		if err := f.Validate(); err != nil {
			return nil, err
		}
	}
	if req.SortBy == "" {
		req.SortBy = "created_at"
	}
	if !lo.Contains(scanFields, req.SortBy) {
		return nil, errs.Invalid("unsupported sort field %q", req.SortBy)
	}

	tx := s.db.WithContext(ctx).Model(&models.BillingEventLog{})
	if len(req.Filters) > 0 {
		tx = tx.Where(types.FiltersAnd(req.Filters).Where())
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count billing events: %w", err)
	}

	var rows []*models.BillingEventLog
	q := tx.Limit(req.Size).Offset(req.From).
		Order(clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: req.SortBy}, Desc: req.SortOrder != "asc"}}})
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list billing events: %w", err)
	}
	return &ScanResponse{Items: rows, Total: total}, nil
}
