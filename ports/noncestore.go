package ports

import (
	"context"

	"github.com/vitalis-labs/healthmarket/core"
)

// NonceStore holds the single outstanding challenge per identity.
//
// Issue replaces any existing challenge for the identity. Peek returns the
// current challenge, or nil when none is outstanding (a challenge older than
// the store's max age counts as absent). Consume deletes the challenge and
// returns true only when one exists and its nonce equals the supplied value;
// the compare-and-delete is atomic with respect to concurrent calls for the
// same identity.
type NonceStore interface {
	Issue(ctx context.Context, identity core.Identity) (nonce string, err error)
	Peek(ctx context.Context, identity core.Identity) (*core.Challenge, error)
	Consume(ctx context.Context, identity core.Identity, nonce string) (bool, error)
}
