package ports

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/vitalis-labs/healthmarket/core"
)

// EventPublisher notifies other components about marketplace changes.
// Publishing is best-effort: the originating operation has already committed
// by the time an event goes out.
type EventPublisher interface {
	PublishRecordRegistered(ctx context.Context, id uint64, dataHash string, owner core.Identity) error
	PublishPriceUpdated(ctx context.Context, id uint64, price decimal.Decimal) error
	PublishAccessGranted(ctx context.Context, dataHash string, grantee core.Identity) error
}
