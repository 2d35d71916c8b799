package routing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtensions_RoundTrip(t *testing.T) {
	ctx := WithExtensions(context.Background())

	_, ok := ErrorName(ctx)
	assert.False(t, ok)

	SetErrorName(ctx, "SerializationException")
	name, ok := ErrorName(ctx)
	assert.True(t, ok)
	assert.Equal(t, "SerializationException", name)

	SetRequestID(ctx, "req-1")
	id, ok := RequestID(ctx)
	assert.True(t, ok)
	assert.Equal(t, "req-1", id)
}

func TestExtensions_NoCarrierIsANoop(t *testing.T) {
	ctx := context.Background()

	SetErrorName(ctx, "InternalFailureException")
	_, ok := ErrorName(ctx)
	assert.False(t, ok)

	SetRequestID(ctx, "req-2")
	_, ok = RequestID(ctx)
	assert.False(t, ok)
}

func TestWithExtensions_Idempotent(t *testing.T) {
	ctx := WithExtensions(context.Background())
	SetErrorName(ctx, "ValidationException")

	// Re-installing must not shadow the existing carrier.
	ctx2 := WithExtensions(ctx)
	name, ok := ErrorName(ctx2)
	assert.True(t, ok)
	assert.Equal(t, "ValidationException", name)
}
