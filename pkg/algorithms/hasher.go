package algorithms

import (
	"crypto/sha256"
	"hash"

	"golang.org/x/crypto/sha3"
)

// Hasher accumulates input across Update calls and produces a 32-byte digest.
// Finalize resets the hasher, so it can be reused for the next message.
type Hasher interface {
	Algorithm() HashAlgorithm
	Update(data []byte)
	Finalize() [32]byte
	Reset()
}

// NewHasher constructs a fresh Hasher.
type NewHasher func() Hasher

type digestHasher struct {
	algo HashAlgorithm
	h    hash.Hash
}

func (d *digestHasher) Algorithm() HashAlgorithm { return d.algo }

func (d *digestHasher) Update(data []byte) {
	// hash.Hash never returns an error from Write
	_, _ = d.h.Write(data)
}

func (d *digestHasher) Finalize() [32]byte {
	var out [32]byte
	copy(out[:], d.h.Sum(nil))
	d.h.Reset()
	return out
}

func (d *digestHasher) Reset() { d.h.Reset() }

func NewSHA3_256() Hasher {
	return &digestHasher{algo: SHA3_256, h: sha3.New256()}
}

func NewSHA2_256() Hasher {
	return &digestHasher{algo: SHA2_256, h: sha256.New()}
}

// HasherFor returns the constructor matching algo.
func HasherFor(algo HashAlgorithm) (NewHasher, error) {
	switch algo {
	case SHA3_256:
		return NewSHA3_256, nil
	case SHA2_256:
		return NewSHA2_256, nil
	}
	return nil, ErrUnknownHashAlgorithm
}

// Sum hashes data in one call.
func Sum(newHasher NewHasher, data ...[]byte) [32]byte {
	h := newHasher()
	for _, d := range data {
		h.Update(d)
	}
	return h.Finalize()
}
