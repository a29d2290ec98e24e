package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/inkwell/blog/pkg/errs"
)

func TestCodeOf(t *testing.T) {
	cases := map[error]APIResponseCode{
		errs.Invalid("x"):                          APIResponseCodeBadRequest,
		errs.ErrUnauthorized:                       APIResponseCodeUnauthorized,
		errs.Forbidden("x"):                        APIResponseCodeForbidden,
		errs.NotFound("post"):                      APIResponseCodeNotFound,
		errs.Conflict("x"):                         APIResponseCodeConflict,
		fmt.Errorf("stripe: %w", errs.ErrUpstream): APIResponseCodeUpstream,
		errors.New("boom"):                         APIResponseCodeError,
	}
	for err, want := range cases {
		require.Equal(t, want, CodeOf(err), err.Error())
	}
}

func TestFail_WritesStatusAndEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Fail(c, errs.NotFound("post"))

	require.Equal(t, http.StatusNotFound, w.Code)
	var body APIResponse[string]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, APIResponseCodeNotFound, body.Code)
	require.Equal(t, "not found", body.Message)
	require.Equal(t, "post not found", body.Data)
	require.True(t, c.IsAborted())
}
