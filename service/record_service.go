package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vitalis-labs/healthmarket/core"
	"github.com/vitalis-labs/healthmarket/internal/eth"
	"github.com/vitalis-labs/healthmarket/internal/seal"
	"github.com/vitalis-labs/healthmarket/ports"
)

// registryTimeout bounds every ledger call. The nonce store is never held
// across these calls.
const registryTimeout = 10 * time.Second

// ListQuery carries the filters, sort, and pagination of a listing request.
type ListQuery struct {
	Page      int
	Limit     int
	Owner     string
	PriceMin  *decimal.Decimal
	PriceMax  *decimal.Decimal
	SortBy    string // "price" or "id"
	SortOrder string // "asc" or "desc"
}

// ListResult is a single page of records plus paging metadata.
type ListResult struct {
	Total   int               `json:"total"`
	Pages   int               `json:"pages"`
	Page    int               `json:"page"`
	Limit   int               `json:"limit"`
	Records []core.DataRecord `json:"records"`
}

// RecordService owns the authorization decisions for data records and the
// operations behind them: listing, registration, price updates, grants, and
// private payload access.
type RecordService struct {
	registry ports.RecordRegistry
	grants   ports.GrantStore
	payloads ports.PayloadStore
	events   ports.EventPublisher
	sealKey  []byte
	logger   *zap.Logger
}

// NewRecordService creates a new record service. sealKey may be nil when
// payload storage is not configured; registration then skips sealing.
func NewRecordService(
	registry ports.RecordRegistry,
	grants ports.GrantStore,
	payloads ports.PayloadStore,
	events ports.EventPublisher,
	sealKey []byte,
	logger *zap.Logger,
) *RecordService {
	return &RecordService{
		registry: registry,
		grants:   grants,
		payloads: payloads,
		events:   events,
		sealKey:  sealKey,
		logger:   logger,
	}
}

// CanMutatePrice reports whether the requester may change the record's
// price: only the owner may.
func (s *RecordService) CanMutatePrice(record *core.DataRecord, requester core.Identity) bool {
	return record.OwnedBy(requester)
}

// CanRead reports whether the requester may read the record's private
// payload: the owner, or any identity holding a grant. Registry metadata
// itself is public and never goes through this check.
func (s *RecordService) CanRead(ctx context.Context, record *core.DataRecord, requester core.Identity) (bool, error) {
	if record.OwnedBy(requester) {
		return true, nil
	}
	granted, err := s.grants.HasGrant(ctx, record.DataHash, requester)
	if err != nil {
		return false, fmt.Errorf("checking grant: %v: %w", err, core.ErrInternal)
	}
	return granted, nil
}

// List returns a page of registry records. Unavailable records are visible
// only to their owners.
func (s *RecordService) List(ctx context.Context, requester core.Identity, q ListQuery) (*ListResult, error) {
	ctx, cancel := context.WithTimeout(ctx, registryTimeout)
	defer cancel()

	nextID, err := s.registry.NextID(ctx)
	if err != nil {
		return nil, err
	}

	var records []core.DataRecord
	for id := uint64(1); id < nextID; id++ {
		rec, err := s.registry.Get(ctx, id)
		if errors.Is(err, core.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if !rec.IsAvailable && !rec.OwnedBy(requester) {
			continue
		}
		if q.Owner != "" && !rec.Owner.Equals(q.Owner) {
			continue
		}
		if q.PriceMin != nil && rec.Price.LessThan(*q.PriceMin) {
			continue
		}
		if q.PriceMax != nil && rec.Price.GreaterThan(*q.PriceMax) {
			continue
		}
		records = append(records, *rec)
	}

	sortRecords(records, q.SortBy, q.SortOrder)

	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	total := len(records)
	pages := (total + limit - 1) / limit
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &ListResult{
		Total:   total,
		Pages:   pages,
		Page:    page,
		Limit:   limit,
		Records: records[start:end],
	}, nil
}

// Get returns a single record's metadata.
func (s *RecordService) Get(ctx context.Context, id uint64) (*core.DataRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, registryTimeout)
	defer cancel()
	return s.registry.Get(ctx, id)
}

// Register fingerprints the payload, seals and stores it, registers the
// reference on the ledger, and announces the registration. Returns the
// assigned id and the content hash.
func (s *RecordService) Register(ctx context.Context, owner core.Identity, payload []byte, price decimal.Decimal) (uint64, string, error) {
	if len(payload) == 0 {
		return 0, "", fmt.Errorf("payload is required: %w", core.ErrMissingInput)
	}
	if price.IsNegative() {
		return 0, "", fmt.Errorf("price must be non-negative: %w", core.ErrMissingInput)
	}

	dataHash := crypto.Keccak256Hash(payload).Hex()

	if s.sealKey != nil {
		sealed, err := seal.Seal(s.sealKey, payload)
		if err != nil {
			return 0, "", fmt.Errorf("sealing payload: %v: %w", err, core.ErrInternal)
		}
		if err := s.payloads.Put(ctx, dataHash, sealed); err != nil {
			return 0, "", fmt.Errorf("storing payload: %v: %w", err, core.ErrInternal)
		}
	}

	regCtx, cancel := context.WithTimeout(ctx, registryTimeout)
	defer cancel()
	id, err := s.registry.Register(regCtx, dataHash, owner, price)
	if err != nil {
		return 0, "", err
	}

	// The record is already committed; a failed announcement only costs
	// other instances a notification.
	if err := s.events.PublishRecordRegistered(ctx, id, dataHash, owner); err != nil {
		s.logger.Warn("failed to publish registration event", zap.Uint64("id", id), zap.Error(err))
	}

	s.logger.Info("record registered",
		zap.Uint64("id", id),
		zap.String("owner", owner.String()),
		zap.String("dataHash", dataHash),
	)
	return id, dataHash, nil
}

// UpdatePrice changes a record's price. Owner only; the new price must be
// positive.
func (s *RecordService) UpdatePrice(ctx context.Context, requester core.Identity, id uint64, price decimal.Decimal) error {
	if price.IsZero() || price.IsNegative() {
		return fmt.Errorf("price must be a positive number: %w", core.ErrMissingInput)
	}

	ctx, cancel := context.WithTimeout(ctx, registryTimeout)
	defer cancel()

	record, err := s.registry.Get(ctx, id)
	if err != nil {
		return err
	}
	if !s.CanMutatePrice(record, requester) {
		return fmt.Errorf("only the owner may update the price: %w", core.ErrAccessDenied)
	}

	if err := s.registry.UpdatePrice(ctx, id, price); err != nil {
		return err
	}

	if err := s.events.PublishPriceUpdated(ctx, id, price); err != nil {
		s.logger.Warn("failed to publish price update event", zap.Uint64("id", id), zap.Error(err))
	}
	return nil
}

// GrantAccess appends an access grant for the grantee. Owner only;
// idempotent per (record, grantee).
func (s *RecordService) GrantAccess(ctx context.Context, requester core.Identity, id uint64, granteeAddr string) (*core.AccessGrant, error) {
	if !eth.ValidAddress(granteeAddr) {
		return nil, fmt.Errorf("grantee address %q: %w", granteeAddr, core.ErrInvalidIdentity)
	}

	regCtx, cancel := context.WithTimeout(ctx, registryTimeout)
	defer cancel()
	record, err := s.registry.Get(regCtx, id)
	if err != nil {
		return nil, err
	}
	if !record.OwnedBy(requester) {
		return nil, fmt.Errorf("only the owner may grant access: %w", core.ErrAccessDenied)
	}

	grant := &core.AccessGrant{
		ID:        uuid.New().String(),
		DataHash:  record.DataHash,
		Grantee:   core.NormalizeIdentity(granteeAddr),
		GrantedAt: time.Now(),
	}
	if err := s.grants.Grant(ctx, grant); err != nil {
		return nil, fmt.Errorf("storing grant: %v: %w", err, core.ErrInternal)
	}

	if err := s.events.PublishAccessGranted(ctx, grant.DataHash, grant.Grantee); err != nil {
		s.logger.Warn("failed to publish grant event", zap.Uint64("id", id), zap.Error(err))
	}
	return grant, nil
}

// GetPayload returns the decrypted payload of a record to its owner or a
// grantee. Everyone else gets ErrRecordNotFound: possession of an id must
// not confirm that private data exists behind it.
func (s *RecordService) GetPayload(ctx context.Context, requester core.Identity, id uint64) ([]byte, error) {
	regCtx, cancel := context.WithTimeout(ctx, registryTimeout)
	defer cancel()
	record, err := s.registry.Get(regCtx, id)
	if err != nil {
		return nil, err
	}

	allowed, err := s.CanRead(ctx, record, requester)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, core.ErrRecordNotFound
	}

	if s.sealKey == nil {
		return nil, core.ErrRecordNotFound
	}

	sealed, err := s.payloads.Get(ctx, record.DataHash)
	if err != nil {
		return nil, err
	}
	plaintext, err := seal.Open(s.sealKey, sealed)
	if err != nil {
		s.logger.Error("failed to unseal stored payload",
			zap.Uint64("id", id),
			zap.String("dataHash", record.DataHash),
			zap.Error(err),
		)
		return nil, fmt.Errorf("unsealing payload: %w", core.ErrInternal)
	}
	return plaintext, nil
}

func sortRecords(records []core.DataRecord, by, order string) {
	desc := order == "desc"
	switch by {
	case "price":
		sort.SliceStable(records, func(i, j int) bool {
			if desc {
				return records[i].Price.GreaterThan(records[j].Price)
			}
			return records[i].Price.LessThan(records[j].Price)
		})
	case "id", "":
		sort.SliceStable(records, func(i, j int) bool {
			if desc {
				return records[i].ID > records[j].ID
			}
			return records[i].ID < records[j].ID
		})
	}
}
