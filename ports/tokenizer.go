package ports

import "github.com/vitalis-labs/healthmarket/core"

// Tokenizer converts sessions to and from self-contained signed credentials.
type Tokenizer interface {
	// Mint produces a signed token carrying the session's identity and
	// validity window.
	Mint(session *core.Session) (string, error)

	// Verify checks the token's signature and expiry and returns the
	// embedded session. Fails with core.ErrInvalidCredential on any
	// integrity or expiry failure.
	Verify(token string) (*core.Session, error)
}
