package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// DataRecord is the registry's view of a published data reference. IDs are
// assigned sequentially by the registry starting at 1; DataHash and Owner are
// immutable after registration, Price is mutable by the owner only.
type DataRecord struct {
	ID          uint64          `json:"id"`
	DataHash    string          `json:"dataHash"`
	Owner       Identity        `json:"owner"`
	Price       decimal.Decimal `json:"price"`
	IsAvailable bool            `json:"isAvailable"`
}

// OwnedBy reports whether the requester is the record's owner.
// Comparison is on normalized identities, so casing never matters.
func (r *DataRecord) OwnedBy(requester Identity) bool {
	return r.Owner == requester
}

// AccessGrant allows a non-owner to read a record's private payload.
// Grants are append-only; there is no revocation.
type AccessGrant struct {
	ID        string    `json:"id"`
	DataHash  string    `json:"dataHash"`
	Grantee   Identity  `json:"grantee"`
	GrantedAt time.Time `json:"grantedAt"`
}
