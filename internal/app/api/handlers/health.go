package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/inkwell/blog/internal/platform/realtime"
	"github.com/inkwell/blog/pkg/response"
)

// @Summary      Health check
// @Description  Returns service status
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /healthz [get]
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, response.OKT(map[string]string{"status": "ok"}))
}

type ReadyStatus struct {
	Database        string `json:"database"`
	RealtimeClients int    `json:"realtime_clients"`
}

// @Summary      Readiness check
// @Description  Pings the database and reports connected realtime clients
// @Tags         System
// @Produce      json
// @Success      200  {object}  handlers.RespReady
// @Failure      503  {object}  handlers.RespError
// @Router       /readyz [get]
func ApiReadyz(db *gorm.DB, hub *realtime.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := ReadyStatus{Database: "ok", RealtimeClients: hub.Len()}
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			status.Database = err.Error()
			c.JSON(http.StatusServiceUnavailable, response.ErrorT(response.APIResponseCodeError, status))
			return
		}
		response.OK(c, status)
	}
}

func RegisterHealthRoutes(r gin.IRouter, db *gorm.DB, hub *realtime.Hub) {
	r.GET("/healthz", Healthz)
	r.GET("/readyz", ApiReadyz(db, hub))
}
