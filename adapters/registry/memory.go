package registry

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/vitalis-labs/healthmarket/core"
	"github.com/vitalis-labs/healthmarket/ports"
)

// MemoryRegistry is an in-memory implementation of the RecordRegistry
// interface, used in tests and when no on-chain registry is configured.
// IDs are assigned sequentially starting at 1, matching the contract.
type MemoryRegistry struct {
	records map[uint64]core.DataRecord
	nextID  uint64
	mu      sync.RWMutex
}

// NewMemoryRegistry creates a new in-memory registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		records: make(map[uint64]core.DataRecord),
		nextID:  1,
	}
}

// Register appends a new available record and returns its id.
func (r *MemoryRegistry) Register(ctx context.Context, dataHash string, owner core.Identity, price decimal.Decimal) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	r.records[id] = core.DataRecord{
		ID:          id,
		DataHash:    dataHash,
		Owner:       owner,
		Price:       price,
		IsAvailable: true,
	}
	return id, nil
}

// Get returns the record for id.
func (r *MemoryRegistry) Get(ctx context.Context, id uint64) (*core.DataRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, core.ErrRecordNotFound
	}
	cpy := rec
	return &cpy, nil
}

// NextID returns the id that will be assigned next.
func (r *MemoryRegistry) NextID(ctx context.Context) (uint64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.nextID, nil
}

// UpdatePrice sets a new price for an existing record.
func (r *MemoryRegistry) UpdatePrice(ctx context.Context, id uint64, price decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return core.ErrRecordNotFound
	}
	rec.Price = price
	r.records[id] = rec
	return nil
}

// SetAvailable toggles a record's availability. Test helper; the contract
// exposes this through its purchase flow, which is out of scope here.
func (r *MemoryRegistry) SetAvailable(id uint64, available bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec, ok := r.records[id]; ok {
		rec.IsAvailable = available
		r.records[id] = rec
	}
}

var _ ports.RecordRegistry = (*MemoryRegistry)(nil)
