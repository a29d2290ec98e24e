package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	mw "github.com/inkwell/blog/internal/app/api/middleware"
	"github.com/inkwell/blog/internal/app/service/notification"
	"github.com/inkwell/blog/internal/platform/realtime"
	"github.com/inkwell/blog/pkg/config"
	"github.com/inkwell/blog/pkg/logctx"
	"github.com/inkwell/blog/pkg/response"
)

type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

// @Summary      List my notifications
// @Tags         Notifications
// @Produce      json
// @Security     BearerAuth
// @Param        unread     query  bool  false  "Only unread"
// @Param        page       query  int   false  "Page (1-based)"
// @Param        page_size  query  int   false  "Page size"
// @Success      200  {object}  handlers.RespNotificationPage
// @Router       /api/v1/notifications [get]
func ApiListNotifications(svc *notification.Service, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		unread, _ := strconv.ParseBool(c.Query("unread"))
		page, err := svc.List(c.Request.Context(), mw.Principal(c), unread, pageOf(c, cfg))
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, page)
	}
}

// @Summary      Mark notification read
// @Tags         Notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "Notification ID"
// @Success      200  {object}  handlers.RespNotification
// @Failure      404  {object}  handlers.RespError
// @Router       /api/v1/notifications/{id}/read [post]
func ApiMarkNotificationRead(svc *notification.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := svc.MarkRead(c.Request.Context(), mw.Principal(c), c.Param("id"))
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, n)
	}
}

// @Summary      Mark all notifications read
// @Tags         Notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespMarkAllRead
// @Router       /api/v1/notifications/read_all [post]
func ApiMarkAllNotificationsRead(svc *notification.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := svc.MarkAllRead(c.Request.Context(), mw.Principal(c))
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, MarkAllReadResponse{Updated: n})
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// @Summary      Notification stream
// @Description  WebSocket. Every client receives every event as {"type":"notification","data":{...}} and filters by recipient_id.
// @Tags         Notifications
// @Success      101
// @Router       /ws/notifications/ [get]
func ApiNotificationStream(hub *realtime.Hub, cfg *config.Config, log *zap.SugaredLogger) gin.HandlerFunc {
	ping := cfg.Realtime.PingInterval
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the error response
			logctx.FromGin(c, log).Warnw("ws_upgrade_failed", "error", err)
			return
		}
		logctx.FromGin(c, log).Infow("ws_connected", "client_ip", c.ClientIP())
		realtime.Serve(hub, conn, ping, log)
	}
}

func RegisterNotificationRoutes(r gin.IRouter, svc *notification.Service, cfg *config.Config) {
	r.Use(mw.RequireAuth())
	r.GET("", ApiListNotifications(svc, cfg))
	r.POST("/read_all", ApiMarkAllNotificationsRead(svc))
	r.POST("/:id/read", ApiMarkNotificationRead(svc))
}

func RegisterRealtimeRoutes(r gin.IRouter, hub *realtime.Hub, cfg *config.Config, log *zap.SugaredLogger) {
	r.GET("/notifications/", ApiNotificationStream(hub, cfg, log))
}
