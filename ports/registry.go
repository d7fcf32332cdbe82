package ports

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/vitalis-labs/healthmarket/core"
)

// RecordRegistry is the external ledger: the source of truth for record
// ownership, price, and availability. Calls may be slow or fail transiently;
// callers pass a deadline-bearing context and map failures to
// core.ErrRegistryUnavailable.
type RecordRegistry interface {
	// Register appends a new record and returns its assigned id.
	Register(ctx context.Context, dataHash string, owner core.Identity, price decimal.Decimal) (uint64, error)

	// Get returns the record for id, or core.ErrRecordNotFound when the
	// registry has never assigned it.
	Get(ctx context.Context, id uint64) (*core.DataRecord, error)

	// NextID returns the id the registry will assign next. Valid ids are
	// 1..NextID-1.
	NextID(ctx context.Context) (uint64, error)

	// UpdatePrice sets a new price for an existing record.
	UpdatePrice(ctx context.Context, id uint64, price decimal.Decimal) error
}
