package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	mw "github.com/inkwell/blog/internal/app/api/middleware"
	"github.com/inkwell/blog/internal/app/service/order"
	"github.com/inkwell/blog/internal/models"
	"github.com/inkwell/blog/pkg/config"
	"github.com/inkwell/blog/pkg/errs"
	"github.com/inkwell/blog/pkg/response"
)

// @Summary      List orders
// @Description  Staff see every order; customers see their own.
// @Tags         Orders
// @Produce      json
// @Security     BearerAuth
// @Param        status     query  string  false  "Status filter"
// @Param        page       query  int     false  "Page (1-based)"
// @Param        page_size  query  int     false  "Page size"
// @Success      200  {object}  handlers.RespOrderPage
// @Router       /api/v1/orders [get]
func ApiListOrders(svc *order.Service, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := models.OrderStatus(c.Query("status"))
		if status != "" && !status.Valid() {
			response.Fail(c, errs.Invalid("unknown status %q", status))
			return
		}
		page, err := svc.List(c.Request.Context(), mw.Principal(c), status, pageOf(c, cfg))
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, page)
	}
}

// @Summary      Place order
// @Description  Stock is reserved for every item in the same transaction.
// @Tags         Orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body order.CreateRequest true "Items"
// @Success      201  {object}  handlers.RespOrder
// @Failure      400  {object}  handlers.RespError
// @Router       /api/v1/orders [post]
func ApiCreateOrder(svc *order.Service) gin.HandlerFunc {
	return create(svc.Create)
}

// @Summary      Get order
// @Tags         Orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "Order ID"
// @Success      200  {object}  handlers.RespOrder
// @Failure      404  {object}  handlers.RespError
// @Router       /api/v1/orders/{id} [get]
func ApiGetOrder(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := svc.Get(c.Request.Context(), mw.Principal(c), c.Param("id"))
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, o)
	}
}

// @Summary      Change order status
// @Description  Cancelling a pending order returns its stock.
// @Tags         Orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string               true  "Order ID"
// @Param        request  body  order.StatusRequest  true  "New status"
// @Success      200  {object}  handlers.RespOrder
// @Failure      403  {object}  handlers.RespError
// @Router       /api/v1/orders/{id} [put]
func ApiUpdateOrderStatus(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.StatusRequest
		if !bindJSON(c, &req) {
			return
		}
		o, err := svc.UpdateStatus(c.Request.Context(), mw.Principal(c), c.Param("id"), req.Status)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, o)
	}
}

// @Summary      Delete order
// @Tags         Orders
// @Security     BearerAuth
// @Param        id   path  string  true  "Order ID"
// @Success      204
// @Failure      403  {object}  handlers.RespError
// @Router       /api/v1/orders/{id} [delete]
func ApiDeleteOrder(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), mw.Principal(c), c.Param("id")); err != nil {
			response.Fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary      Add item to order
// @Tags         Orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string             true  "Order ID"
// @Param        request  body  order.ItemRequest  true  "Item"
// @Success      201  {object}  handlers.RespOrder
// @Failure      400  {object}  handlers.RespError
// @Router       /api/v1/orders/{id}/items [post]
func ApiAddOrderItem(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.ItemRequest
		if !bindJSON(c, &req) {
			return
		}
		o, err := svc.AddItem(c.Request.Context(), mw.Principal(c), c.Param("id"), &req)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.Created(c, o)
	}
}

// @Summary      Create payment intent
// @Description  Starts payment of a pending order with the billing provider.
// @Tags         Orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "Order ID"
// @Success      200  {object}  handlers.RespPaymentIntent
// @Failure      400  {object}  handlers.RespError
// @Failure      502  {object}  handlers.RespError
// @Router       /api/v1/orders/{id}/payment-intent [post]
func ApiOrderPaymentIntent(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		pi, err := svc.PaymentIntent(c.Request.Context(), mw.Principal(c), c.Param("id"))
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, pi)
	}
}

func RegisterOrderRoutes(r gin.IRouter, svc *order.Service, cfg *config.Config) {
	r.Use(mw.RequireAuth())
	r.GET("", ApiListOrders(svc, cfg))
	r.POST("", ApiCreateOrder(svc))
	r.GET("/:id", ApiGetOrder(svc))
	r.PUT("/:id", mw.RequireStaff(), ApiUpdateOrderStatus(svc))
	r.DELETE("/:id", mw.RequireStaff(), ApiDeleteOrder(svc))
	r.POST("/:id/items", ApiAddOrderItem(svc))
	r.POST("/:id/payment-intent", ApiOrderPaymentIntent(svc))
}
