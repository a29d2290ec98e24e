package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inkwell/blog/pkg/errs"
)

type APIResponseCode int

const (
	APIResponseCodeOK           APIResponseCode = 0
	APIResponseCodeBadRequest   APIResponseCode = 40000
	APIResponseCodeUnauthorized APIResponseCode = 40100
	APIResponseCodeForbidden    APIResponseCode = 40300
	APIResponseCodeNotFound     APIResponseCode = 40400
	APIResponseCodeConflict     APIResponseCode = 40900
	APIResponseCodeError        APIResponseCode = 50000
	APIResponseCodeUpstream     APIResponseCode = 50200
)

var codeToMsg = map[APIResponseCode]string{
	APIResponseCodeOK:           "ok",
	APIResponseCodeBadRequest:   "bad request",
	APIResponseCodeUnauthorized: "unauthorized",
	APIResponseCodeForbidden:    "permission denied",
	APIResponseCodeNotFound:     "not found",
	APIResponseCodeConflict:     "conflict",
	APIResponseCodeError:        "unexpected error",
	APIResponseCodeUpstream:     "upstream error",
}

var codeToStatus = map[APIResponseCode]int{
	APIResponseCodeBadRequest:   http.StatusBadRequest,
	APIResponseCodeUnauthorized: http.StatusUnauthorized,
	APIResponseCodeForbidden:    http.StatusForbidden,
	APIResponseCodeNotFound:     http.StatusNotFound,
	APIResponseCodeConflict:     http.StatusConflict,
	APIResponseCodeError:        http.StatusInternalServerError,
	APIResponseCodeUpstream:     http.StatusBadGateway,
}

// APIResponse is the generic response envelope used by HTTP APIs.
// Use OKT / ErrorT helpers to construct instances.
type APIResponse[T any] struct {
	Code    APIResponseCode `json:"code"`
	Message string          `json:"message"`
	Data    T               `json:"data"`
}

// OKT returns a successful response with data.
func OKT[T any](data T) *APIResponse[T] {
	return &APIResponse[T]{Code: APIResponseCodeOK, Message: codeToMsg[APIResponseCodeOK], Data: data}
}

// ErrorT returns an error response with message and optional data.
func ErrorT[T any](code APIResponseCode, data T) *APIResponse[T] {
	return &APIResponse[T]{Code: code, Message: codeToMsg[code], Data: data}
}

// CodeOf maps a service error to its envelope code.
func CodeOf(err error) APIResponseCode {
	switch {
	case errors.Is(err, errs.ErrInvalid):
		return APIResponseCodeBadRequest
	case errors.Is(err, errs.ErrUnauthorized):
		return APIResponseCodeUnauthorized
	case errors.Is(err, errs.ErrForbidden):
		return APIResponseCodeForbidden
	case errors.Is(err, errs.ErrNotFound):
		return APIResponseCodeNotFound
	case errors.Is(err, errs.ErrConflict):
		return APIResponseCodeConflict
	case errors.Is(err, errs.ErrUpstream):
		return APIResponseCodeUpstream
	default:
		return APIResponseCodeError
	}
}

// StatusOf returns the HTTP status used for an envelope code.
func StatusOf(code APIResponseCode) int {
	if s, ok := codeToStatus[code]; ok {
		return s
	}
	return http.StatusOK
}

// Fail writes err as an error envelope and aborts the chain.
func Fail(c *gin.Context, err error) {
	code := CodeOf(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(StatusOf(code), ErrorT[any](code, err.Error()))
}

// Abort writes a bare error envelope with msg as data.
func Abort(c *gin.Context, code APIResponseCode, msg string) {
	c.AbortWithStatusJSON(StatusOf(code), ErrorT[any](code, msg))
}

func OK[T any](c *gin.Context, data T) {
	c.JSON(http.StatusOK, OKT(data))
}

func Created[T any](c *gin.Context, data T) {
	c.JSON(http.StatusCreated, OKT(data))
}
