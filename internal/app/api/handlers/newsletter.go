package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	mw "github.com/inkwell/blog/internal/app/api/middleware"
	"github.com/inkwell/blog/internal/app/service/newsletter"
	"github.com/inkwell/blog/pkg/config"
	"github.com/inkwell/blog/pkg/response"
)

type SubscribeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type SendResponse struct {
	Sent int `json:"sent"`
}

// @Summary      Subscribe to the newsletter
// @Tags         Newsletter
// @Accept       json
// @Produce      json
// @Param        request body SubscribeRequest true "Email"
// @Success      201  {object}  handlers.RespSubscriber
// @Failure      400  {object}  handlers.RespError
// @Failure      409  {object}  handlers.RespError
// @Router       /api/v1/newsletter/subscribe [post]
func ApiSubscribe(svc *newsletter.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SubscribeRequest
		if !bindJSON(c, &req) {
			return
		}
		sub, err := svc.Subscribe(c.Request.Context(), req.Email)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.Created(c, sub)
	}
}

// @Summary      Unsubscribe from the newsletter
// @Tags         Newsletter
// @Param        email  path  string  true  "Email"
// @Success      204
// @Failure      404  {object}  handlers.RespError
// @Router       /api/v1/newsletter/unsubscribe/{email} [delete]
func ApiUnsubscribe(svc *newsletter.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Unsubscribe(c.Request.Context(), c.Param("email")); err != nil {
			response.Fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary      List subscribers
// @Tags         Newsletter
// @Produce      json
// @Security     BearerAuth
// @Param        page       query  int  false  "Page (1-based)"
// @Param        page_size  query  int  false  "Page size"
// @Success      200  {object}  handlers.RespSubscriberPage
// @Router       /api/v1/newsletter/subscribers [get]
func ApiListSubscribers(svc *newsletter.Service, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := svc.List(c.Request.Context(), mw.Principal(c), pageOf(c, cfg))
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, page)
	}
}

// @Summary      Send newsletter
// @Description  Mails subject and message to every subscriber.
// @Tags         Newsletter
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body newsletter.SendRequest true "Newsletter"
// @Success      200  {object}  handlers.RespSend
// @Failure      403  {object}  handlers.RespError
// @Failure      502  {object}  handlers.RespError
// @Router       /api/v1/newsletter/send [post]
func ApiSendNewsletter(svc *newsletter.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req newsletter.SendRequest
		if !bindJSON(c, &req) {
			return
		}
		n, err := svc.Send(c.Request.Context(), mw.Principal(c), &req)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, SendResponse{Sent: n})
	}
}

// @Summary      Contact the site
// @Tags         Newsletter
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body newsletter.ContactRequest true "Message"
// @Success      200  {object}  handlers.RespOK
// @Failure      400  {object}  handlers.RespError
// @Router       /api/v1/contact [post]
func ApiContact(svc *newsletter.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req newsletter.ContactRequest
		if !bindJSON(c, &req) {
			return
		}
		if err := svc.Contact(c.Request.Context(), mw.Principal(c), &req); err != nil {
			response.Fail(c, err)
			return
		}
		response.OK[any](c, nil)
	}
}

func RegisterNewsletterRoutes(r gin.IRouter, svc *newsletter.Service, cfg *config.Config) {
	r.POST("/subscribe", ApiSubscribe(svc))
	r.DELETE("/unsubscribe/:email", ApiUnsubscribe(svc))
	r.GET("/subscribers", mw.RequireStaff(), ApiListSubscribers(svc, cfg))
	r.POST("/send", mw.RequireStaff(), ApiSendNewsletter(svc))
}

func RegisterContactRoutes(r gin.IRouter, svc *newsletter.Service) {
	r.POST("/contact", mw.RequireAuth(), ApiContact(svc))
}
