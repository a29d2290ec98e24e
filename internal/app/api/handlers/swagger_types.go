package handlers

import (
	"github.com/inkwell/blog/internal/app/service/account"
	"github.com/inkwell/blog/internal/app/service/billingevent"
	"github.com/inkwell/blog/internal/app/service/interaction"
	"github.com/inkwell/blog/internal/app/service/post"
	"github.com/inkwell/blog/internal/app/service/premium"
	"github.com/inkwell/blog/internal/app/service/statistics"
	"github.com/inkwell/blog/internal/app/service/taxonomy"
	"github.com/inkwell/blog/internal/models"
	"github.com/inkwell/blog/internal/platform/billing"
	"github.com/inkwell/blog/pkg/response"
	"github.com/inkwell/blog/pkg/types"
)

// RespOK is a generic OK envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

// RespError is the envelope of every failed request; data carries the reason.
type RespError struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    string                   `json:"data"`
}

// Envelopes below only feed the generated API docs.
type (
	RespReady           response.APIResponse[ReadyStatus]
	RespTokenPair       response.APIResponse[account.TokenPair]
	RespRefresh         response.APIResponse[RefreshResponse]
	RespUser            response.APIResponse[models.User]
	RespPublicProfile   response.APIResponse[account.PublicProfile]
	RespUserPage        response.APIResponse[types.Page[models.User]]
	RespTerm            response.APIResponse[taxonomy.Term]
	RespTerms           response.APIResponse[[]taxonomy.Term]
	RespPost            response.APIResponse[post.View]
	RespPostPage        response.APIResponse[types.Page[post.View]]
	RespHistoryPage     response.APIResponse[types.Page[models.PostHistory]]
	RespComment         response.APIResponse[interaction.CommentView]
	RespCommentPage     response.APIResponse[types.Page[interaction.CommentView]]
	RespLike            response.APIResponse[models.Like]
	RespLikePage        response.APIResponse[types.Page[models.Like]]
	RespNotification    response.APIResponse[models.Notification]
	RespMarkAllRead     response.APIResponse[MarkAllReadResponse]
	RespSubscriber      response.APIResponse[models.Subscriber]
	RespSubscriberPage  response.APIResponse[types.Page[models.Subscriber]]
	RespSend            response.APIResponse[SendResponse]
	RespPremiumStatus   response.APIResponse[premium.Status]
	RespOrder           response.APIResponse[models.Order]
	RespOrderPage       response.APIResponse[types.Page[models.Order]]
	RespPaymentIntent   response.APIResponse[billing.PaymentIntent]
	RespStatistic       response.APIResponse[statistics.Response]
	RespBillingEvents   response.APIResponse[billingevent.ScanResponse]
	RespRefreshTrending response.APIResponse[RefreshTrendingResponse]
	RespEngagementPage  response.APIResponse[types.Page[models.PostEngagement]]

	RespNotificationPage    response.APIResponse[types.Page[models.Notification]]
	RespProductCategory     response.APIResponse[models.ProductCategory]
	RespProductCategoryPage response.APIResponse[types.Page[models.ProductCategory]]
	RespColor               response.APIResponse[models.Color]
	RespColorPage           response.APIResponse[types.Page[models.Color]]
	RespProduct             response.APIResponse[models.Product]
	RespProductPage         response.APIResponse[types.Page[models.Product]]
	RespAttribute           response.APIResponse[models.Attribute]
	RespAttributePage       response.APIResponse[types.Page[models.Attribute]]
	RespImage               response.APIResponse[models.Image]
	RespImagePage           response.APIResponse[types.Page[models.Image]]
)
