package tokenizer

import "github.com/golang-jwt/jwt/v5"

// SessionClaims are the registered claims of a session credential. The
// identity travels in Subject; no custom claims are needed.
type SessionClaims struct {
	jwt.RegisteredClaims
}
