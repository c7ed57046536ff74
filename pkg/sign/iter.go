package sign

import (
	"github.com/pkg/errors"

	"github.com/kollektive-hackathon/flowkit/pkg/algorithms"
)

// Signature is the signature of one key.
type Signature struct {
	KeyID     uint32
	Signature []byte
}

// Iter signs one digest with every key of a Method, one key per Next call.
//
//	it := sign.NewIter(method, signer, digest)
//	for it.Next() {
//		use(it.KeyID(), it.Signature())
//	}
//	if err := it.Err(); err != nil { ... }
type Iter struct {
	ids  []uint32
	sign func(i int) ([]byte, error)

	pos int
	cur Signature
	err error
}

func NewIter[K any, P any](method Method[K], signer algorithms.Signer[K, P], digest [32]byte) *Iter {
	keys := method.keys
	ids := make([]uint32, len(keys))
	for i, k := range keys {
		ids[i] = k.ID
	}
	return &Iter{
		ids: ids,
		sign: func(i int) ([]byte, error) {
			return signer.SignPopulated(digest, keys[i].Secret)
		},
	}
}

// Len is the number of signatures not yet produced.
func (it *Iter) Len() int {
	if it.err != nil {
		return 0
	}
	return len(it.ids) - it.pos
}

func (it *Iter) Next() bool {
	if it.err != nil || it.pos >= len(it.ids) {
		return false
	}
	i := it.pos
	it.pos++
	sig, err := it.sign(i)
	if err != nil {
		it.err = errors.Wrapf(err, "sign with key %d", it.ids[i])
		it.cur = Signature{}
		return false
	}
	it.cur = Signature{KeyID: it.ids[i], Signature: sig}
	return true
}

func (it *Iter) Signature() []byte { return it.cur.Signature }

func (it *Iter) KeyID() uint32 { return it.cur.KeyID }

func (it *Iter) Err() error { return it.err }

// Collect drains the iterator.
func (it *Iter) Collect() ([]Signature, error) {
	out := make([]Signature, 0, it.Len())
	for it.Next() {
		out = append(out, it.cur)
	}
	if it.err != nil {
		return nil, it.err
	}
	return out, nil
}
