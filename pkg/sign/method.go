// Package sign describes which keys of an account sign, and produces their signatures lazily.
package sign

import (
	"github.com/pkg/errors"
)

var (
	ErrTooFewKeys             = errors.New("multisign needs at least two keys")
	ErrPrimaryIndexOutOfRange = errors.New("primary key index out of range")
)

// Key is a secret key together with the index of its on-chain counterpart.
type Key[K any] struct {
	ID     uint32
	Secret K
}

// Method is either a single key or several keys with one of them marked primary.
// The primary key is the one used as proposal key.
type Method[K any] struct {
	keys    []Key[K]
	primary int
	multi   bool
}

func One[K any](keyID uint32, secret K) Method[K] {
	return Method[K]{keys: []Key[K]{{ID: keyID, Secret: secret}}}
}

func Multi[K any](primaryIndex int, keys []Key[K]) (Method[K], error) {
	if len(keys) < 2 {
		return Method[K]{}, errors.Wrapf(ErrTooFewKeys, "got %d", len(keys))
	}
	if primaryIndex < 0 || primaryIndex >= len(keys) {
		return Method[K]{}, errors.Wrapf(ErrPrimaryIndexOutOfRange, "index %d of %d keys", primaryIndex, len(keys))
	}
	owned := make([]Key[K], len(keys))
	copy(owned, keys)
	return Method[K]{keys: owned, primary: primaryIndex, multi: true}, nil
}

func (m Method[K]) IsMulti() bool { return m.multi }

func (m Method[K]) Len() int { return len(m.keys) }

func (m Method[K]) Primary() Key[K] { return m.keys[m.primary] }

func (m Method[K]) PrimaryKeyID() uint32 { return m.keys[m.primary].ID }

// Keys returns the keys in the order they were given.
func (m Method[K]) Keys() []Key[K] {
	out := make([]Key[K], len(m.keys))
	copy(out, m.keys)
	return out
}

// WithKeyIDs returns a copy of m with on-chain key indices replaced, in order.
func (m Method[K]) WithKeyIDs(ids []uint32) Method[K] {
	out := m
	out.keys = m.Keys()
	for i := range out.keys {
		out.keys[i].ID = ids[i]
	}
	return out
}
