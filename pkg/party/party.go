// Package party assembles a transaction that several accounts sign in turn: proposer and
// authorizers sign the payload, the payer signs the envelope last.
package party

import (
	"github.com/pkg/errors"

	"github.com/kollektive-hackathon/flowkit/pkg/algorithms"
	"github.com/kollektive-hackathon/flowkit/pkg/transaction"
)

var ErrPartyConsumed = errors.New("party was already turned into a transaction")

// ErrUnknownSigner is returned for signatures by an address that is neither proposer, payer
// nor authorizer.
var ErrUnknownSigner = transaction.ErrUnknownSigner

// Party is a transaction under signature. It is not safe for concurrent use.
type Party interface {
	Script() []byte
	Arguments() [][]byte
	ReferenceBlockID() []byte
	GasLimit() uint64
	ProposalKey() transaction.ProposalKey
	Payer() []byte
	Authorizers() [][]byte
	HashAlgorithm() algorithms.HashAlgorithm

	// Payload is the digest of the domain tag and the encoded payload.
	Payload() [32]byte
	AddPayloadSignature(address []byte, keyID uint32, signature []byte) error
	// Envelope is the digest of the domain tag and the encoded envelope, including every
	// payload signature added so far.
	Envelope() [32]byte
	IntoTransactionWithEnvelopeSignatures(signatures []transaction.Signature) (*transaction.Transaction, error)

	isParty()
}

type SigningParty struct {
	payload   transaction.Payload
	signers   *transaction.SignerMap
	newHasher algorithms.NewHasher

	payloadSignatures []transaction.Signature
	consumed          bool
}

var (
	_ Party = (*SigningParty)(nil)
	_ Party = (*PreHashedParty)(nil)
)

func (p *SigningParty) isParty() {}

func (p *SigningParty) Script() []byte            { return p.payload.Script }
func (p *SigningParty) Arguments() [][]byte       { return p.payload.Arguments }
func (p *SigningParty) ReferenceBlockID() []byte  { return p.payload.ReferenceBlockID }
func (p *SigningParty) GasLimit() uint64          { return p.payload.GasLimit }
func (p *SigningParty) Payer() []byte             { return p.payload.Payer }
func (p *SigningParty) Authorizers() [][]byte     { return p.payload.Authorizers }
func (p *SigningParty) Signers() [][]byte         { return p.signers.Addresses() }
func (p *SigningParty) HashAlgorithm() algorithms.HashAlgorithm {
	return p.newHasher().Algorithm()
}

func (p *SigningParty) ProposalKey() transaction.ProposalKey {
	return transaction.ProposalKey{
		Address:        p.payload.ProposalKeyAddress,
		KeyID:          p.payload.ProposalKeyID,
		SequenceNumber: p.payload.ProposalKeySequenceNumber,
	}
}

func (p *SigningParty) Payload() [32]byte {
	return transaction.PayloadDigest(p.newHasher, p.payload)
}

// AddPayloadSignature appends a signature. Signing twice with the same key appends twice.
func (p *SigningParty) AddPayloadSignature(address []byte, keyID uint32, signature []byte) error {
	if p.consumed {
		return ErrPartyConsumed
	}
	if _, ok := p.signers.Index(address); !ok {
		return errors.Wrapf(ErrUnknownSigner, "0x%x", address)
	}
	p.payloadSignatures = append(p.payloadSignatures, transaction.Signature{
		Address:   transaction.PadAddress(address),
		KeyID:     keyID,
		Signature: signature,
	})
	return nil
}

// PayloadSignatures returns the signatures added so far, in order.
func (p *SigningParty) PayloadSignatures() []transaction.Signature {
	out := make([]transaction.Signature, len(p.payloadSignatures))
	copy(out, p.payloadSignatures)
	return out
}

// PayloadMessage is the encoded payload, without domain tag.
func (p *SigningParty) PayloadMessage() []byte {
	return transaction.EncodePayload(p.payload)
}

// EnvelopeMessage is the encoded envelope, without domain tag.
func (p *SigningParty) EnvelopeMessage() []byte {
	return transaction.EncodeEnvelope(p.payload, p.indexedPayloadSignatures())
}

func (p *SigningParty) Envelope() [32]byte {
	return transaction.EnvelopeDigest(p.newHasher, p.payload, p.indexedPayloadSignatures())
}

func (p *SigningParty) indexedPayloadSignatures() []transaction.PayloadSignature {
	// every address was checked against the signer map when added
	sigs, _ := transaction.IndexSignatures(p.signers, p.payloadSignatures)
	return sigs
}

func (p *SigningParty) IntoTransactionWithEnvelopeSignatures(signatures []transaction.Signature) (*transaction.Transaction, error) {
	if p.consumed {
		return nil, ErrPartyConsumed
	}
	envelope := make([]transaction.Signature, 0, len(signatures))
	for _, s := range signatures {
		if _, ok := p.signers.Index(s.Address); !ok {
			return nil, errors.Wrapf(ErrUnknownSigner, "envelope signature by 0x%x", s.Address)
		}
		envelope = append(envelope, transaction.Signature{
			Address:   transaction.PadAddress(s.Address),
			KeyID:     s.KeyID,
			Signature: s.Signature,
		})
	}
	p.consumed = true

	return &transaction.Transaction{
		Script:             p.payload.Script,
		Arguments:          p.payload.Arguments,
		ReferenceBlockID:   p.payload.ReferenceBlockID,
		GasLimit:           p.payload.GasLimit,
		ProposalKey:        p.ProposalKey(),
		Payer:              p.payload.Payer,
		Authorizers:        p.payload.Authorizers,
		PayloadSignatures:  p.payloadSignatures,
		EnvelopeSignatures: envelope,
	}, nil
}

// PreHashedParty is a SigningParty whose payload digest is computed once at build time.
// The payload fields cannot change after build, so the cached digest stays valid.
type PreHashedParty struct {
	*SigningParty
	payloadDigest [32]byte
}

func (p *PreHashedParty) Payload() [32]byte { return p.payloadDigest }
