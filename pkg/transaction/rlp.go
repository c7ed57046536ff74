// Package transaction holds the Flow transaction model and its canonical RLP encoding.
package transaction

import (
	"github.com/ethereum/go-ethereum/rlp"
)

// AddressLength is the width every address is left-padded to before encoding.
const AddressLength = 8

// Payload is everything a transaction commits to apart from signatures.
type Payload struct {
	Script                    []byte
	Arguments                 [][]byte
	ReferenceBlockID          []byte
	GasLimit                  uint64
	ProposalKeyAddress        []byte
	ProposalKeyID             uint32
	ProposalKeySequenceNumber uint64
	Payer                     []byte
	Authorizers               [][]byte
}

// PayloadSignature is a payload signature as it appears in the envelope: the signer is
// referenced by canonical index, not by address.
type PayloadSignature struct {
	SignerIndex uint32
	KeyID       uint32
	Signature   []byte
}

type payloadForm struct {
	Script                    []byte
	Arguments                 [][]byte
	ReferenceBlockID          []byte
	GasLimit                  uint64
	ProposalKeyAddress        []byte
	ProposalKeyID             uint64
	ProposalKeySequenceNumber uint64
	Payer                     []byte
	Authorizers               [][]byte
}

type signatureForm struct {
	SignerIndex uint64
	KeyID       uint64
	Signature   []byte
}

type envelopeForm struct {
	Payload           payloadForm
	PayloadSignatures []signatureForm
}

type transactionForm struct {
	Payload            payloadForm
	PayloadSignatures  []signatureForm
	EnvelopeSignatures []signatureForm
}

// PadAddress left-pads addr with zeros to AddressLength bytes. Longer input is returned unchanged.
func PadAddress(addr []byte) []byte {
	if len(addr) >= AddressLength {
		return addr
	}
	out := make([]byte, AddressLength)
	copy(out[AddressLength-len(addr):], addr)
	return out
}

// EncodePayload returns the RLP list
// [script, [arguments], referenceBlockID, gasLimit, proposalKeyAddress, proposalKeyID,
// proposalKeySequenceNumber, payer, [authorizers]]. The field order is consensus critical.
func EncodePayload(p Payload) []byte {
	return mustEncode(p.form())
}

// EncodeEnvelope returns the RLP list [payload, [[signerIndex, keyID, signature]...]].
func EncodeEnvelope(p Payload, sigs []PayloadSignature) []byte {
	return mustEncode(envelopeForm{
		Payload:           p.form(),
		PayloadSignatures: signatureForms(sigs),
	})
}

// EncodeTransaction returns the RLP list [payload, payloadSignatures, envelopeSignatures],
// the form a transaction id is computed over.
func EncodeTransaction(p Payload, payloadSigs, envelopeSigs []PayloadSignature) []byte {
	return mustEncode(transactionForm{
		Payload:            p.form(),
		PayloadSignatures:  signatureForms(payloadSigs),
		EnvelopeSignatures: signatureForms(envelopeSigs),
	})
}

func (p Payload) form() payloadForm {
	authorizers := make([][]byte, len(p.Authorizers))
	for i, a := range p.Authorizers {
		authorizers[i] = PadAddress(a)
	}
	return payloadForm{
		Script:                    p.Script,
		Arguments:                 p.Arguments,
		ReferenceBlockID:          p.ReferenceBlockID,
		GasLimit:                  p.GasLimit,
		ProposalKeyAddress:        PadAddress(p.ProposalKeyAddress),
		ProposalKeyID:             uint64(p.ProposalKeyID),
		ProposalKeySequenceNumber: p.ProposalKeySequenceNumber,
		Payer:                     PadAddress(p.Payer),
		Authorizers:               authorizers,
	}
}

func signatureForms(sigs []PayloadSignature) []signatureForm {
	out := make([]signatureForm, len(sigs))
	for i, s := range sigs {
		out[i] = signatureForm{
			SignerIndex: uint64(s.SignerIndex),
			KeyID:       uint64(s.KeyID),
			Signature:   s.Signature,
		}
	}
	return out
}

func mustEncode(v interface{}) []byte {
	b, err := rlp.EncodeToBytes(v)
	if err != nil {
		// only byte strings, unsigned integers and lists of those reach here
		panic(err)
	}
	return b
}
