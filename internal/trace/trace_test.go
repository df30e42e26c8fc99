package trace

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestDisabledSpansAreNoops(t *testing.T) {
	require.NoError(t, Init(false, "test"))
	assert.False(t, Enabled())

	ctx, span := StartSpan(context.Background(), "noop", attribute.String("k", "v"))
	assert.NotNil(t, ctx)
	assert.False(t, span.SpanContext().IsValid())
	Fail(span, errors.New("ignored"))
	span.End()

	assert.NoError(t, Shutdown(context.Background()))
}
