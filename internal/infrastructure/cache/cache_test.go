package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBarcodeKey(t *testing.T) {
	assert.Equal(t, "items:barcode:7501234567890", barcodeKey("7501234567890"))
}

func TestNoop_NuncaEncuentra(t *testing.T) {
	var c Noop
	ctx := context.Background()
	item, ok, err := c.Get(ctx, "x")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, item)
	assert.NoError(t, c.Invalidate(ctx, "x", "y"))
}
