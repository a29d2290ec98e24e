package logctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromCtx_EnrichesWithTraceAndUser(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core).Sugar()

	ctx := WithUserID(WithTraceID(context.Background(), "trace-1"), "user-1")
	FromCtx(ctx, base).Infow("hello")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	require.Equal(t, "trace-1", fields["trace_id"])
	require.Equal(t, "user-1", fields["user_id"])
}

func TestFromCtx_PrefersAttachedLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	attached := zap.New(core).Sugar().With("attached", true)
	base := zap.NewNop().Sugar()

	FromCtx(WithLogger(context.Background(), attached), base).Infow("hello")

	require.Equal(t, 1, logs.Len())
	require.Equal(t, true, logs.All()[0].ContextMap()["attached"])
}
