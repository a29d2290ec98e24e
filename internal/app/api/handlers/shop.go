package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	mw "github.com/inkwell/blog/internal/app/api/middleware"
	"github.com/inkwell/blog/internal/app/service/account"
	"github.com/inkwell/blog/internal/app/service/catalog"
	"github.com/inkwell/blog/pkg/config"
	"github.com/inkwell/blog/pkg/errs"
	"github.com/inkwell/blog/pkg/response"
	"github.com/inkwell/blog/pkg/types"
)

// The shop resources share one CRUD shape; these helpers adapt a service
// method to a handler.

func listBy[T any](cfg *config.Config, list func(ctx context.Context, req types.PageRequest) (*types.Page[T], error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := list(c.Request.Context(), pageOf(c, cfg))
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, page)
	}
}

func getBy[T any](param string, get func(ctx context.Context, key string) (*T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, err := get(c.Request.Context(), c.Param(param))
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, v)
	}
}

func create[Req, T any](fn func(ctx context.Context, actor *account.Principal, req *Req) (*T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req Req
		if !bindJSON(c, &req) {
			return
		}
		v, err := fn(c.Request.Context(), mw.Principal(c), &req)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.Created(c, v)
	}
}

func update[Req, T any](fn func(ctx context.Context, actor *account.Principal, id string, req *Req) (*T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req Req
		if !bindJSON(c, &req) {
			return
		}
		v, err := fn(c.Request.Context(), mw.Principal(c), c.Param("id"), &req)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, v)
	}
}

func remove(fn func(ctx context.Context, actor *account.Principal, id string) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := fn(c.Request.Context(), mw.Principal(c), c.Param("id")); err != nil {
			response.Fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// productFilter reads the product list filters from the query string.
func productFilter(c *gin.Context) (catalog.ProductFilter, error) {
	f := catalog.ProductFilter{CategoryID: c.Query("category_id"), ColorID: c.Query("color_id")}
	for param, dst := range map[string]**decimal.Decimal{"min_price": &f.MinPrice, "max_price": &f.MaxPrice} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return f, errs.Invalid("%s must be a number", param)
		}
		*dst = &d
	}
	return f, nil
}

// @Summary      List product categories
// @Tags         Shop
// @Produce      json
// @Param        page       query  int  false  "Page (1-based)"
// @Param        page_size  query  int  false  "Page size"
// @Success      200  {object}  handlers.RespProductCategoryPage
// @Router       /api/v1/shop/product-categories [get]
func ApiListProductCategories(svc *catalog.Service, cfg *config.Config) gin.HandlerFunc {
	return listBy(cfg, svc.ListCategories)
}

// @Summary      Get product category
// @Tags         Shop
// @Produce      json
// @Param        id   path  string  true  "Category ID"
// @Success      200  {object}  handlers.RespProductCategory
// @Failure      404  {object}  handlers.RespError
// @Router       /api/v1/shop/product-categories/{id} [get]
func ApiGetProductCategory(svc *catalog.Service) gin.HandlerFunc {
	return getBy("id", svc.GetCategory)
}

// @Summary      Create product category
// @Tags         Shop
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body catalog.NameRequest true "Name"
// @Success      201  {object}  handlers.RespProductCategory
// @Failure      403  {object}  handlers.RespError
// @Router       /api/v1/shop/product-categories [post]
func ApiCreateProductCategory(svc *catalog.Service) gin.HandlerFunc {
	return create(svc.CreateCategory)
}

// @Summary      Rename product category
// @Tags         Shop
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string               true  "Category ID"
// @Param        request  body  catalog.NameRequest  true  "Name"
// @Success      200  {object}  handlers.RespProductCategory
// @Router       /api/v1/shop/product-categories/{id} [put]
func ApiUpdateProductCategory(svc *catalog.Service) gin.HandlerFunc {
	return update(svc.UpdateCategory)
}

// @Summary      Delete product category
// @Description  Fails with 409 while products use it.
// @Tags         Shop
// @Security     BearerAuth
// @Param        id   path  string  true  "Category ID"
// @Success      204
// @Failure      409  {object}  handlers.RespError
// @Router       /api/v1/shop/product-categories/{id} [delete]
func ApiDeleteProductCategory(svc *catalog.Service) gin.HandlerFunc {
	return remove(svc.DeleteCategory)
}

// @Summary      List colors
// @Tags         Shop
// @Produce      json
// @Param        page       query  int  false  "Page (1-based)"
// @Param        page_size  query  int  false  "Page size"
// @Success      200  {object}  handlers.RespColorPage
// @Router       /api/v1/shop/colors [get]
func ApiListColors(svc *catalog.Service, cfg *config.Config) gin.HandlerFunc {
	return listBy(cfg, svc.ListColors)
}

// @Summary      Get color
// @Tags         Shop
// @Produce      json
// @Param        id   path  string  true  "Color ID"
// @Success      200  {object}  handlers.RespColor
// @Router       /api/v1/shop/colors/{id} [get]
func ApiGetColor(svc *catalog.Service) gin.HandlerFunc {
	return getBy("id", svc.GetColor)
}

// @Summary      Create color
// @Tags         Shop
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body catalog.NameRequest true "Name"
// @Success      201  {object}  handlers.RespColor
// @Router       /api/v1/shop/colors [post]
func ApiCreateColor(svc *catalog.Service) gin.HandlerFunc {
	return create(svc.CreateColor)
}

// @Summary      Rename color
// @Tags         Shop
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string               true  "Color ID"
// @Param        request  body  catalog.NameRequest  true  "Name"
// @Success      200  {object}  handlers.RespColor
// @Router       /api/v1/shop/colors/{id} [put]
func ApiUpdateColor(svc *catalog.Service) gin.HandlerFunc {
	return update(svc.UpdateColor)
}

// @Summary      Delete color
// @Tags         Shop
// @Security     BearerAuth
// @Param        id   path  string  true  "Color ID"
// @Success      204
// @Failure      409  {object}  handlers.RespError
// @Router       /api/v1/shop/colors/{id} [delete]
func ApiDeleteColor(svc *catalog.Service) gin.HandlerFunc {
	return remove(svc.DeleteColor)
}

// @Summary      List products
// @Tags         Shop
// @Produce      json
// @Param        category_id  query  string  false  "Category filter"
// @Param        color_id     query  string  false  "Color filter"
// @Param        min_price    query  string  false  "Minimum price"
// @Param        max_price    query  string  false  "Maximum price"
// @Param        page         query  int     false  "Page (1-based)"
// @Param        page_size    query  int     false  "Page size"
// @Success      200  {object}  handlers.RespProductPage
// @Failure      400  {object}  handlers.RespError
// @Router       /api/v1/shop/products [get]
func ApiListProducts(svc *catalog.Service, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		f, err := productFilter(c)
		if err != nil {
			response.Fail(c, err)
			return
		}
		page, err := svc.ListProducts(c.Request.Context(), f, pageOf(c, cfg))
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, page)
	}
}

// @Summary      Get product
// @Tags         Shop
// @Produce      json
// @Param        id   path  string  true  "Product ID"
// @Success      200  {object}  handlers.RespProduct
// @Failure      404  {object}  handlers.RespError
// @Router       /api/v1/shop/products/{id} [get]
func ApiGetProduct(svc *catalog.Service) gin.HandlerFunc {
	return getBy("id", svc.GetProduct)
}

// @Summary      Get product by slug
// @Tags         Shop
// @Produce      json
// @Param        slug  path  string  true  "Product slug"
// @Success      200  {object}  handlers.RespProduct
// @Failure      404  {object}  handlers.RespError
// @Router       /api/v1/shop/products/slug/{slug} [get]
func ApiGetProductBySlug(svc *catalog.Service) gin.HandlerFunc {
	return getBy("slug", svc.GetProductBySlug)
}

// @Summary      Create product
// @Tags         Shop
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body catalog.ProductRequest true "Product"
// @Success      201  {object}  handlers.RespProduct
// @Failure      400  {object}  handlers.RespError
// @Router       /api/v1/shop/products [post]
func ApiCreateProduct(svc *catalog.Service) gin.HandlerFunc {
	return create(svc.CreateProduct)
}

// @Summary      Update product
// @Tags         Shop
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string                        true  "Product ID"
// @Param        request  body  catalog.ProductUpdateRequest  true  "Fields to change"
// @Success      200  {object}  handlers.RespProduct
// @Router       /api/v1/shop/products/{id} [put]
func ApiUpdateProduct(svc *catalog.Service) gin.HandlerFunc {
	return update(svc.UpdateProduct)
}

// @Summary      Delete product
// @Description  Fails with 409 once the product has been ordered.
// @Tags         Shop
// @Security     BearerAuth
// @Param        id   path  string  true  "Product ID"
// @Success      204
// @Failure      409  {object}  handlers.RespError
// @Router       /api/v1/shop/products/{id} [delete]
func ApiDeleteProduct(svc *catalog.Service) gin.HandlerFunc {
	return remove(svc.DeleteProduct)
}

// @Summary      List attributes
// @Tags         Shop
// @Produce      json
// @Param        product_id  query  string  false  "Product filter"
// @Param        page        query  int     false  "Page (1-based)"
// @Param        page_size   query  int     false  "Page size"
// @Success      200  {object}  handlers.RespAttributePage
// @Router       /api/v1/shop/attributes [get]
func ApiListAttributes(svc *catalog.Service, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := svc.ListAttributes(c.Request.Context(), c.Query("product_id"), pageOf(c, cfg))
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, page)
	}
}

// @Summary      Get attribute
// @Tags         Shop
// @Produce      json
// @Param        id   path  string  true  "Attribute ID"
// @Success      200  {object}  handlers.RespAttribute
// @Router       /api/v1/shop/attributes/{id} [get]
func ApiGetAttribute(svc *catalog.Service) gin.HandlerFunc {
	return getBy("id", svc.GetAttribute)
}

// @Summary      Create attribute
// @Description  name is "Size" or "Phone Model"; stock_quantity must not be negative.
// @Tags         Shop
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body catalog.AttributeRequest true "Attribute"
// @Success      201  {object}  handlers.RespAttribute
// @Failure      400  {object}  handlers.RespError
// @Router       /api/v1/shop/attributes [post]
func ApiCreateAttribute(svc *catalog.Service) gin.HandlerFunc {
	return create(svc.CreateAttribute)
}

// @Summary      Update attribute
// @Tags         Shop
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string                          true  "Attribute ID"
// @Param        request  body  catalog.AttributeUpdateRequest  true  "Fields to change"
// @Success      200  {object}  handlers.RespAttribute
// @Router       /api/v1/shop/attributes/{id} [put]
func ApiUpdateAttribute(svc *catalog.Service) gin.HandlerFunc {
	return update(svc.UpdateAttribute)
}

// @Summary      Delete attribute
// @Tags         Shop
// @Security     BearerAuth
// @Param        id   path  string  true  "Attribute ID"
// @Success      204
// @Failure      409  {object}  handlers.RespError
// @Router       /api/v1/shop/attributes/{id} [delete]
func ApiDeleteAttribute(svc *catalog.Service) gin.HandlerFunc {
	return remove(svc.DeleteAttribute)
}

// @Summary      List images
// @Tags         Shop
// @Produce      json
// @Param        product_id  query  string  false  "Product filter"
// @Param        page        query  int     false  "Page (1-based)"
// @Param        page_size   query  int     false  "Page size"
// @Success      200  {object}  handlers.RespImagePage
// @Router       /api/v1/shop/images [get]
func ApiListImages(svc *catalog.Service, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := svc.ListImages(c.Request.Context(), c.Query("product_id"), pageOf(c, cfg))
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, page)
	}
}

// @Summary      Get image
// @Tags         Shop
// @Produce      json
// @Param        id   path  string  true  "Image ID"
// @Success      200  {object}  handlers.RespImage
// @Router       /api/v1/shop/images/{id} [get]
func ApiGetImage(svc *catalog.Service) gin.HandlerFunc {
	return getBy("id", svc.GetImage)
}

// @Summary      Add image
// @Tags         Shop
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body catalog.ImageRequest true "Image"
// @Success      201  {object}  handlers.RespImage
// @Router       /api/v1/shop/images [post]
func ApiCreateImage(svc *catalog.Service) gin.HandlerFunc {
	return create(svc.CreateImage)
}

// @Summary      Update image
// @Tags         Shop
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string                true  "Image ID"
// @Param        request  body  catalog.ImageRequest  true  "Image"
// @Success      200  {object}  handlers.RespImage
// @Router       /api/v1/shop/images/{id} [put]
func ApiUpdateImage(svc *catalog.Service) gin.HandlerFunc {
	return update(svc.UpdateImage)
}

// @Summary      Delete image
// @Tags         Shop
// @Security     BearerAuth
// @Param        id   path  string  true  "Image ID"
// @Success      204
// @Router       /api/v1/shop/images/{id} [delete]
func ApiDeleteImage(svc *catalog.Service) gin.HandlerFunc {
	return remove(svc.DeleteImage)
}

// RegisterShopRoutes mounts the catalog under r. Reads are public; writes
// need an account and the service checks the staff flag.
func RegisterShopRoutes(r gin.IRouter, svc *catalog.Service, cfg *config.Config) {
	auth := mw.RequireAuth()

	pc := r.Group("/product-categories")
	pc.GET("", ApiListProductCategories(svc, cfg))
	pc.GET("/:id", ApiGetProductCategory(svc))
	pc.POST("", auth, ApiCreateProductCategory(svc))
	pc.PUT("/:id", auth, ApiUpdateProductCategory(svc))
	pc.DELETE("/:id", auth, ApiDeleteProductCategory(svc))

	colors := r.Group("/colors")
	colors.GET("", ApiListColors(svc, cfg))
	colors.GET("/:id", ApiGetColor(svc))
	colors.POST("", auth, ApiCreateColor(svc))
	colors.PUT("/:id", auth, ApiUpdateColor(svc))
	colors.DELETE("/:id", auth, ApiDeleteColor(svc))

	products := r.Group("/products")
	products.GET("", ApiListProducts(svc, cfg))
	products.GET("/slug/:slug", ApiGetProductBySlug(svc))
	products.GET("/:id", ApiGetProduct(svc))
	products.POST("", auth, ApiCreateProduct(svc))
	products.PUT("/:id", auth, ApiUpdateProduct(svc))
	products.DELETE("/:id", auth, ApiDeleteProduct(svc))

	attrs := r.Group("/attributes")
	attrs.GET("", ApiListAttributes(svc, cfg))
	attrs.GET("/:id", ApiGetAttribute(svc))
	attrs.POST("", auth, ApiCreateAttribute(svc))
	attrs.PUT("/:id", auth, ApiUpdateAttribute(svc))
	attrs.DELETE("/:id", auth, ApiDeleteAttribute(svc))

	images := r.Group("/images")
	images.GET("", ApiListImages(svc, cfg))
	images.GET("/:id", ApiGetImage(svc))
	images.POST("", auth, ApiCreateImage(svc))
	images.PUT("/:id", auth, ApiUpdateImage(svc))
	images.DELETE("/:id", auth, ApiDeleteImage(svc))
}
