package service

import (
	"context"
	"crypto/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vitalis-labs/healthmarket/adapters/registry"
	"github.com/vitalis-labs/healthmarket/adapters/storage"
	"github.com/vitalis-labs/healthmarket/core"
	"github.com/vitalis-labs/healthmarket/internal/seal"
)

const (
	alice = core.Identity("0xaaa10000000000000000000000000000000000aa")
	bob   = core.Identity("0xbbb20000000000000000000000000000000000bb")
)

type fakePublisher struct {
	registered int
	priced     int
	granted    int
}

func (f *fakePublisher) PublishRecordRegistered(context.Context, uint64, string, core.Identity) error {
	f.registered++
	return nil
}
func (f *fakePublisher) PublishPriceUpdated(context.Context, uint64, decimal.Decimal) error {
	f.priced++
	return nil
}
func (f *fakePublisher) PublishAccessGranted(context.Context, string, core.Identity) error {
	f.granted++
	return nil
}

type recordFixture struct {
	svc      *RecordService
	registry *registry.MemoryRegistry
	events   *fakePublisher
}

func newRecordFixture(t *testing.T) *recordFixture {
	t.Helper()
	key := make([]byte, seal.KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)

	reg := registry.NewMemoryRegistry()
	store := storage.NewMemoryStore()
	events := &fakePublisher{}
	return &recordFixture{
		svc:      NewRecordService(reg, store, store, events, key, zap.NewNop()),
		registry: reg,
		events:   events,
	}
}

func TestCanMutatePriceOwnerOnly(t *testing.T) {
	f := newRecordFixture(t)
	rec := &core.DataRecord{Owner: alice}

	assert.True(t, f.svc.CanMutatePrice(rec, alice))
	// near-miss case variants are the same identity
	assert.True(t, f.svc.CanMutatePrice(rec, core.NormalizeIdentity("0xAAA10000000000000000000000000000000000AA")))
	assert.False(t, f.svc.CanMutatePrice(rec, bob))
}

func TestRegisterAndFetchPayload(t *testing.T) {
	f := newRecordFixture(t)
	ctx := context.Background()
	payload := []byte(`{"type":"heart_rate","value":72}`)

	id, dataHash, err := f.svc.Register(ctx, alice, payload, decimal.NewFromFloat(0.01))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)
	assert.NotEmpty(t, dataHash)
	assert.Equal(t, 1, f.events.registered)

	got, err := f.svc.GetPayload(ctx, alice, id)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestRegisterValidation(t *testing.T) {
	f := newRecordFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.Register(ctx, alice, nil, decimal.NewFromFloat(0.01))
	assert.ErrorIs(t, err, core.ErrMissingInput)

	_, _, err = f.svc.Register(ctx, alice, []byte("{}"), decimal.NewFromFloat(-1))
	assert.ErrorIs(t, err, core.ErrMissingInput)

	// free records are allowed at registration
	_, _, err = f.svc.Register(ctx, alice, []byte("{}"), decimal.Zero)
	assert.NoError(t, err)
}

func TestUpdatePriceAuthorization(t *testing.T) {
	f := newRecordFixture(t)
	ctx := context.Background()

	id, _, err := f.svc.Register(ctx, alice, []byte("{}"), decimal.NewFromFloat(0.01))
	require.NoError(t, err)

	require.NoError(t, f.svc.UpdatePrice(ctx, alice, id, decimal.NewFromFloat(0.5)))
	assert.Equal(t, 1, f.events.priced)

	rec, err := f.svc.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, rec.Price.Equal(decimal.NewFromFloat(0.5)))

	err = f.svc.UpdatePrice(ctx, bob, id, decimal.NewFromFloat(1))
	assert.ErrorIs(t, err, core.ErrAccessDenied)

	err = f.svc.UpdatePrice(ctx, alice, id, decimal.Zero)
	assert.ErrorIs(t, err, core.ErrMissingInput)

	err = f.svc.UpdatePrice(ctx, alice, 99, decimal.NewFromFloat(1))
	assert.ErrorIs(t, err, core.ErrRecordNotFound)
}

func TestGrantAllowsPayloadRead(t *testing.T) {
	f := newRecordFixture(t)
	ctx := context.Background()
	payload := []byte(`{"type":"glucose_level","value":5.4}`)

	id, _, err := f.svc.Register(ctx, alice, payload, decimal.NewFromFloat(0.01))
	require.NoError(t, err)

	// before the grant, bob cannot even learn the payload exists
	_, err = f.svc.GetPayload(ctx, bob, id)
	assert.ErrorIs(t, err, core.ErrRecordNotFound)

	grant, err := f.svc.GrantAccess(ctx, alice, id, bob.String())
	require.NoError(t, err)
	assert.Equal(t, bob, grant.Grantee)
	assert.Equal(t, 1, f.events.granted)

	got, err := f.svc.GetPayload(ctx, bob, id)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestGrantAuthorization(t *testing.T) {
	f := newRecordFixture(t)
	ctx := context.Background()

	id, _, err := f.svc.Register(ctx, alice, []byte("{}"), decimal.NewFromFloat(0.01))
	require.NoError(t, err)

	_, err = f.svc.GrantAccess(ctx, bob, id, bob.String())
	assert.ErrorIs(t, err, core.ErrAccessDenied)

	_, err = f.svc.GrantAccess(ctx, alice, id, "not-an-address")
	assert.ErrorIs(t, err, core.ErrInvalidIdentity)
}

func TestCanRead(t *testing.T) {
	f := newRecordFixture(t)
	ctx := context.Background()

	id, _, err := f.svc.Register(ctx, alice, []byte("{}"), decimal.NewFromFloat(0.01))
	require.NoError(t, err)
	rec, err := f.svc.Get(ctx, id)
	require.NoError(t, err)

	ok, err := f.svc.CanRead(ctx, rec, alice)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.CanRead(ctx, rec, bob)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.svc.GrantAccess(ctx, alice, id, bob.String())
	require.NoError(t, err)

	ok, err = f.svc.CanRead(ctx, rec, bob)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestListFiltersSortsAndPaginates(t *testing.T) {
	f := newRecordFixture(t)
	ctx := context.Background()

	prices := []float64{0.05, 0.01, 0.03}
	for _, p := range prices {
		_, _, err := f.svc.Register(ctx, alice, []byte{byte(int(p * 100))}, decimal.NewFromFloat(p))
		require.NoError(t, err)
	}

	res, err := f.svc.List(ctx, bob, ListQuery{SortBy: "price", SortOrder: "asc"})
	require.NoError(t, err)
	require.Len(t, res.Records, 3)
	assert.True(t, res.Records[0].Price.LessThan(res.Records[1].Price))
	assert.True(t, res.Records[1].Price.LessThan(res.Records[2].Price))

	min := decimal.NewFromFloat(0.02)
	res, err = f.svc.List(ctx, bob, ListQuery{PriceMin: &min})
	require.NoError(t, err)
	assert.Len(t, res.Records, 2)

	res, err = f.svc.List(ctx, bob, ListQuery{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.Pages)
	assert.Len(t, res.Records, 1)
}

func TestListHidesUnavailableFromNonOwners(t *testing.T) {
	f := newRecordFixture(t)
	ctx := context.Background()

	id, _, err := f.svc.Register(ctx, alice, []byte("{}"), decimal.NewFromFloat(0.01))
	require.NoError(t, err)
	f.registry.SetAvailable(id, false)

	res, err := f.svc.List(ctx, bob, ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, res.Records)

	res, err = f.svc.List(ctx, alice, ListQuery{})
	require.NoError(t, err)
	assert.Len(t, res.Records, 1)
}
