package ports

import (
	"context"

	"github.com/vitalis-labs/healthmarket/core"
)

// GrantStore keeps the append-only access list per record.
type GrantStore interface {
	// Grant records that grantee may read the record's payload. Granting
	// twice for the same (record, grantee) is a no-op.
	Grant(ctx context.Context, grant *core.AccessGrant) error

	// HasGrant reports whether a grant exists for (dataHash, grantee).
	HasGrant(ctx context.Context, dataHash string, grantee core.Identity) (bool, error)
}

// PayloadStore holds sealed record payloads keyed by content hash.
type PayloadStore interface {
	Put(ctx context.Context, dataHash string, sealed []byte) error

	// Get returns the sealed payload, or core.ErrRecordNotFound when no
	// payload is stored under the hash.
	Get(ctx context.Context, dataHash string) ([]byte, error)
}
