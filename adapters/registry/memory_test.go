package registry

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalis-labs/healthmarket/core"
)

const owner = core.Identity("0xaaa10000000000000000000000000000000000aa")

func TestRegisterAssignsSequentialIDsFromOne(t *testing.T) {
	r := NewMemoryRegistry()
	ctx := context.Background()

	id1, err := r.Register(ctx, "0x01", owner, decimal.NewFromFloat(0.01))
	require.NoError(t, err)
	id2, err := r.Register(ctx, "0x02", owner, decimal.NewFromFloat(0.02))
	require.NoError(t, err)

	assert.Equal(t, uint64(1), id1)
	assert.Equal(t, uint64(2), id2)

	next, err := r.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), next)
}

func TestGetReturnsRegisteredRecord(t *testing.T) {
	r := NewMemoryRegistry()
	ctx := context.Background()

	id, err := r.Register(ctx, "0xabc", owner, decimal.NewFromFloat(0.05))
	require.NoError(t, err)

	rec, err := r.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "0xabc", rec.DataHash)
	assert.Equal(t, owner, rec.Owner)
	assert.True(t, rec.IsAvailable)
	assert.True(t, rec.Price.Equal(decimal.NewFromFloat(0.05)))
}

func TestGetUnknownIDFails(t *testing.T) {
	r := NewMemoryRegistry()

	_, err := r.Get(context.Background(), 42)
	assert.ErrorIs(t, err, core.ErrRecordNotFound)
}

func TestUpdatePrice(t *testing.T) {
	r := NewMemoryRegistry()
	ctx := context.Background()

	id, err := r.Register(ctx, "0xabc", owner, decimal.NewFromFloat(0.01))
	require.NoError(t, err)

	require.NoError(t, r.UpdatePrice(ctx, id, decimal.NewFromFloat(0.2)))

	rec, err := r.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, rec.Price.Equal(decimal.NewFromFloat(0.2)))

	assert.ErrorIs(t, r.UpdatePrice(ctx, 99, decimal.NewFromFloat(1)), core.ErrRecordNotFound)
}
