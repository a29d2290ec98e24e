package handlers

import (
	"context"
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	mw "github.com/inkwell/blog/internal/app/api/middleware"
	"github.com/inkwell/blog/internal/app/service/premium"
	"github.com/inkwell/blog/internal/platform/billing"
	"github.com/inkwell/blog/pkg/logctx"
	"github.com/inkwell/blog/pkg/response"
)

const maxWebhookBody = 1 << 16

// WebhookHandler verifies and applies billing webhook deliveries.
// *billingevent.Service implements it.
type WebhookHandler interface {
	Handle(ctx context.Context, payload []byte, signature string) (*billing.Event, error)
}

// @Summary      Subscribe to premium
// @Description  Creates the billing customer on first use, then a subscription to the premium price.
// @Tags         Premium
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body premium.SubscribeRequest true "Card source for new customers"
// @Success      200  {object}  handlers.RespPremiumStatus
// @Failure      409  {object}  handlers.RespError
// @Failure      502  {object}  handlers.RespError
// @Router       /api/v1/premium [post]
func ApiPremiumSubscribe(svc *premium.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req premium.SubscribeRequest
		if !bindJSON(c, &req) {
			return
		}
		st, err := svc.Subscribe(c.Request.Context(), mw.Principal(c), &req)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, st)
	}
}

// @Summary      Cancel premium
// @Tags         Premium
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespPremiumStatus
// @Failure      404  {object}  handlers.RespError
// @Router       /api/v1/premium/cancel [post]
func ApiPremiumCancel(svc *premium.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, err := svc.Cancel(c.Request.Context(), mw.Principal(c))
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, st)
	}
}

// @Summary      Premium status
// @Tags         Premium
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespPremiumStatus
// @Router       /api/v1/premium/status [get]
func ApiPremiumStatus(svc *premium.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, err := svc.Status(c.Request.Context(), mw.Principal(c))
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, st)
	}
}

// @Summary      Billing webhook
// @Description  Receives Stripe events. The Stripe-Signature header is verified against the webhook secret.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Param        payload body string true "Stripe event"
// @Success      200  {object}  handlers.RespOK
// @Failure      400  {object}  handlers.RespError
// @Router       /api/v1/billing/webhook [post]
func ApiBillingWebhook(h WebhookHandler, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
		if err != nil {
			response.Abort(c, response.APIResponseCodeBadRequest, err.Error())
			return
		}
		logctx.FromGin(c, log).Infow("webhook_billing_received", "bytes", len(payload))

		ev, err := h.Handle(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
		if err != nil {
			logctx.FromGin(c, log).Errorw("webhook_billing_handle_error", "error", err.Error())
			response.Fail(c, err)
			return
		}
		logctx.FromGin(c, log).Infow("webhook_billing_handled", "event_id", ev.ID, "type", ev.Type)
		response.OK[any](c, nil)
	}
}

func RegisterPremiumRoutes(r gin.IRouter, svc *premium.Service) {
	r.Use(mw.RequireAuth())
	r.POST("", ApiPremiumSubscribe(svc))
	r.POST("/cancel", ApiPremiumCancel(svc))
	r.GET("/status", ApiPremiumStatus(svc))
}

func RegisterBillingRoutes(r gin.IRouter, h WebhookHandler, log *zap.SugaredLogger) {
	r.POST("/webhook", ApiBillingWebhook(h, log))
}
