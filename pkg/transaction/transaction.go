package transaction

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/kollektive-hackathon/flowkit/pkg/algorithms"
)

// DefaultGasLimit is used when a builder is not given one.
const DefaultGasLimit uint64 = 1000

var ErrUnknownSigner = errors.New("signature address is not a signer of this transaction")

type ProposalKey struct {
	Address        []byte
	KeyID          uint32
	SequenceNumber uint64
}

// Signature is a signature by one key of one account.
type Signature struct {
	Address   []byte
	KeyID     uint32
	Signature []byte
}

// Transaction is a fully assembled, immutable transaction ready for submission.
type Transaction struct {
	Script             []byte
	Arguments          [][]byte
	ReferenceBlockID   []byte
	GasLimit           uint64
	ProposalKey        ProposalKey
	Payer              []byte
	Authorizers        [][]byte
	PayloadSignatures  []Signature
	EnvelopeSignatures []Signature
}

func (tx *Transaction) Payload() Payload {
	return Payload{
		Script:                    tx.Script,
		Arguments:                 tx.Arguments,
		ReferenceBlockID:          tx.ReferenceBlockID,
		GasLimit:                  tx.GasLimit,
		ProposalKeyAddress:        tx.ProposalKey.Address,
		ProposalKeyID:             tx.ProposalKey.KeyID,
		ProposalKeySequenceNumber: tx.ProposalKey.SequenceNumber,
		Payer:                     tx.Payer,
		Authorizers:               tx.Authorizers,
	}
}

func (tx *Transaction) Signers() *SignerMap {
	return NewSignerMap(tx.ProposalKey.Address, tx.Payer, tx.Authorizers)
}

// PayloadMessage is the RLP encoded payload, without domain tag.
func (tx *Transaction) PayloadMessage() []byte {
	return EncodePayload(tx.Payload())
}

// EnvelopeMessage is the RLP encoded envelope, without domain tag.
func (tx *Transaction) EnvelopeMessage() ([]byte, error) {
	sigs, err := IndexSignatures(tx.Signers(), tx.PayloadSignatures)
	if err != nil {
		return nil, err
	}
	return EncodeEnvelope(tx.Payload(), sigs), nil
}

// ID is the SHA3-256 hash of the full transaction encoding.
func (tx *Transaction) ID() ([]byte, error) {
	signers := tx.Signers()
	payloadSigs, err := IndexSignatures(signers, tx.PayloadSignatures)
	if err != nil {
		return nil, err
	}
	envelopeSigs, err := IndexSignatures(signers, tx.EnvelopeSignatures)
	if err != nil {
		return nil, err
	}
	id := algorithms.Sum(algorithms.NewSHA3_256, EncodeTransaction(tx.Payload(), payloadSigs, envelopeSigs))
	return id[:], nil
}

// IndexSignatures replaces each signature address by its canonical index and orders the result
// by signer index, then key id. The network verifies signatures in that order.
func IndexSignatures(signers *SignerMap, sigs []Signature) ([]PayloadSignature, error) {
	out := make([]PayloadSignature, 0, len(sigs))
	for _, s := range sigs {
		index, ok := signers.Index(s.Address)
		if !ok {
			return nil, errors.Wrapf(ErrUnknownSigner, "0x%x", s.Address)
		}
		out = append(out, PayloadSignature{SignerIndex: index, KeyID: s.KeyID, Signature: s.Signature})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SignerIndex != out[j].SignerIndex {
			return out[i].SignerIndex < out[j].SignerIndex
		}
		return out[i].KeyID < out[j].KeyID
	})
	return out, nil
}
