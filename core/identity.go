package core

import "strings"

// Identity is the canonical lowercase form of an account address.
// All ownership and session comparisons happen on this form, so two
// addresses differing only in hex casing are the same party.
type Identity string

// NormalizeIdentity lowercases an address into its canonical form.
func NormalizeIdentity(address string) Identity {
	return Identity(strings.ToLower(address))
}

// Equals compares against a raw address string, case-insensitively.
func (i Identity) Equals(address string) bool {
	return i == NormalizeIdentity(address)
}

func (i Identity) String() string {
	return string(i)
}
