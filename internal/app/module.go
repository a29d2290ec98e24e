package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/inkwell/blog/internal/app/api/server"
	"github.com/inkwell/blog/internal/app/service/account"
	"github.com/inkwell/blog/internal/app/service/billingevent"
	"github.com/inkwell/blog/internal/app/service/catalog"
	"github.com/inkwell/blog/internal/app/service/engagement"
	"github.com/inkwell/blog/internal/app/service/interaction"
	"github.com/inkwell/blog/internal/app/service/newsletter"
	"github.com/inkwell/blog/internal/app/service/notification"
	"github.com/inkwell/blog/internal/app/service/order"
	"github.com/inkwell/blog/internal/app/service/post"
	"github.com/inkwell/blog/internal/app/service/premium"
	"github.com/inkwell/blog/internal/app/service/statistics"
	"github.com/inkwell/blog/internal/app/service/taxonomy"
	"github.com/inkwell/blog/internal/platform/billing"
	"github.com/inkwell/blog/internal/platform/cache"
	"github.com/inkwell/blog/internal/platform/db"
	"github.com/inkwell/blog/internal/platform/mailer"
	"github.com/inkwell/blog/internal/platform/realtime"
	"github.com/inkwell/blog/pkg/config"
	"github.com/inkwell/blog/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

// Core is every service without the HTTP server; the CLI runs on it.
var Core = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	cache.Module,
	billing.Module,
	mailer.Module,
	realtime.Module,

	account.Module,
	taxonomy.Module,
	notification.Module,
	post.Module,
	engagement.Module,
	interaction.Module,
	newsletter.Module,
	premium.Module,
	billingevent.Module,
	catalog.Module,
	order.Module,
	statistics.Module,

	fx.Provide(func(s *premium.Service) post.PremiumChecker { return s }),
	fx.Provide(func(s *premium.Service) interaction.PremiumChecker { return s }),
	fx.Provide(func(s *catalog.Service) order.StockCache { return s }),
)

var Module = fx.Options(
	Core,
	server.Module,
)
