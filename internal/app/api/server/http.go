package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/inkwell/blog/docs"
	"github.com/inkwell/blog/internal/app/api/handlers"
	mw "github.com/inkwell/blog/internal/app/api/middleware"
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
	"github.com/inkwell/blog/internal/platform/realtime"
	cfgpkg "github.com/inkwell/blog/pkg/config"
	metrics "github.com/inkwell/blog/pkg/metrics"
)

// Deps is everything the routes need.
type Deps struct {
	fx.In

	Log    *zap.SugaredLogger
	Config *cfgpkg.Config
	DB     *gorm.DB
	Hub    *realtime.Hub
	Tokens *account.Tokens

	Accounts      *account.Service
	Taxonomy      *taxonomy.Service
	Posts         *post.Service
	Engagement    *engagement.Service
	Interactions  *interaction.Service
	Notifications *notification.Service
	Newsletter    *newsletter.Service
	Premium       *premium.Service
	BillingEvents *billingevent.Service
	Catalog       *catalog.Service
	Orders        *order.Service
	Statistics    *statistics.Service
}

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Add request tracing middleware only; request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r
}

func registerRoutes(r *gin.Engine, d Deps) {
	log, cfg := d.Log, d.Config
	// Prometheus metrics
	if cfg != nil && cfg.MetricsAddr != "" {
		p := metrics.NewPrometheus(metrics.NewPrometheusOptions{
			ReqCntURLLabelMappingFn: func(c *gin.Context) string {
				if fp := c.FullPath(); fp != "" {
					return fp
				}
				return c.Request.URL.Path
			},
			Logger: log,
		})
		p.SetListenAddress(cfg.MetricsAddr)
		p.Use(r)

		log.Infow("metrics started", "addr", cfg.MetricsAddr)
	}
	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub, d.DB, d.Hub)
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// WebSocket relay: no access log, the connection outlives the request
	ws := r.Group("/ws")
	ws.Use(mw.RequestLoggerMiddleware(log))
	handlers.RegisterRealtimeRoutes(ws, d.Hub, cfg, log)

	apiV1 := r.Group("/api/v1")
	apiV1.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware(), mw.Authenticate(d.Tokens))

	handlers.RegisterAuthRoutes(apiV1.Group("/auth"), d.Accounts)
	handlers.RegisterUserRoutes(apiV1.Group("/users"), d.Accounts, cfg)
	handlers.RegisterTaxonomyRoutes(apiV1, d.Taxonomy)
	handlers.RegisterPostRoutes(apiV1.Group("/posts"), d.Posts, cfg)
	handlers.RegisterCommentRoutes(apiV1.Group("/comments"), d.Interactions, cfg)
	handlers.RegisterLikeRoutes(apiV1.Group("/likes"), d.Interactions, cfg)
	handlers.RegisterNotificationRoutes(apiV1.Group("/notifications"), d.Notifications, cfg)
	handlers.RegisterNewsletterRoutes(apiV1.Group("/newsletter"), d.Newsletter, cfg)
	handlers.RegisterContactRoutes(apiV1, d.Newsletter)
	handlers.RegisterPremiumRoutes(apiV1.Group("/premium"), d.Premium)
	handlers.RegisterBillingRoutes(apiV1.Group("/billing"), d.BillingEvents, log)
	handlers.RegisterShopRoutes(apiV1.Group("/shop"), d.Catalog, cfg)
	handlers.RegisterOrderRoutes(apiV1.Group("/orders"), d.Orders, cfg)

	// Admin APIs
	handlers.RegisterAdminRoutes(apiV1.Group("/admin"), d.Statistics, d.BillingEvents, d.Engagement, cfg)
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
