package cosign

import (
	"encoding/hex"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/kollektive-hackathon/flowkit/pkg/algorithms"
	"github.com/kollektive-hackathon/flowkit/pkg/cadencejson"
	"github.com/kollektive-hackathon/flowkit/pkg/party"
)

// Signable is the document a wallet posts to a remote signer.
type Signable struct {
	FType   string                `json:"f_type"`
	FVsn    string                `json:"f_vsn"`
	Addr    string                `json:"addr"`
	KeyID   uint32                `json:"keyId"`
	Message string                `json:"message"`
	Cadence string                `json:"cadence"`
	Args    []jsoniter.RawMessage `json:"args"`
	Roles   struct {
		Authorizer bool `json:"authorizer"`
		Param      bool `json:"param"`
		Payer      bool `json:"payer"`
		Proposer   bool `json:"proposer"`
	} `json:"roles"`
	Voucher Voucher `json:"voucher"`
}

type VoucherSignature struct {
	Address string `json:"address"`
	KeyID   uint32 `json:"keyId"`
	Sig     string `json:"sig"`
}

// Voucher is a transaction in the JSON form used by wallets.
type Voucher struct {
	Cadence      string                `json:"cadence"`
	RefBlock     string                `json:"refBlock"`
	ComputeLimit uint64                `json:"computeLimit"`
	Arguments    []jsoniter.RawMessage `json:"arguments"`
	ProposalKey  struct {
		Address     string `json:"address"`
		KeyID       uint32 `json:"keyId"`
		SequenceNum uint64 `json:"sequenceNum"`
	} `json:"proposalKey"`
	Payer        string             `json:"payer"`
	Authorizers  []string           `json:"authorizers"`
	PayloadSigs  []VoucherSignature `json:"payloadSigs"`
	EnvelopeSigs []VoucherSignature `json:"envelopeSigs"`
}

// CompositeSignature is one signature as returned to a wallet.
type CompositeSignature struct {
	FType     string `json:"f_type"`
	FVsn      string `json:"f_vsn"`
	Addr      string `json:"addr"`
	KeyID     uint32 `json:"keyId"`
	Signature string `json:"signature"`
}

func newCompositeSignature(address cadencejson.Address, keyID uint32, sig []byte) CompositeSignature {
	return CompositeSignature{
		FType:     "CompositeSignature",
		FVsn:      "1.0.0",
		Addr:      address.String(),
		KeyID:     keyID,
		Signature: hex.EncodeToString(sig),
	}
}

// Party rebuilds the voucher as a party carrying its payload signatures.
func (v Voucher) Party(newHasher algorithms.NewHasher) (*party.SigningParty, error) {
	refBlock, err := decodeHex(v.RefBlock)
	if err != nil {
		return nil, errors.Wrap(err, "refBlock")
	}
	proposer, err := cadencejson.ParseAddress(withPrefix(v.ProposalKey.Address))
	if err != nil {
		return nil, errors.Wrap(err, "proposalKey.address")
	}
	payer, err := cadencejson.ParseAddress(withPrefix(v.Payer))
	if err != nil {
		return nil, errors.Wrap(err, "payer")
	}

	b := party.NewBuilder().
		Script(v.Cadence).
		ReferenceBlock(refBlock).
		GasLimit(v.ComputeLimit).
		ProposerAddress(proposer).
		ProposalKeyID(v.ProposalKey.KeyID).
		ProposalKeySequenceNumber(v.ProposalKey.SequenceNum).
		Payer(payer)
	// arguments are signed as sent, so they are validated but never re-encoded
	for i, a := range v.Arguments {
		if _, err := cadencejson.Decode(a); err != nil {
			return nil, errors.Wrapf(err, "arguments[%d]", i)
		}
		b.ArgumentRaw(a)
	}
	for i, a := range v.Authorizers {
		authorizer, err := cadencejson.ParseAddress(withPrefix(a))
		if err != nil {
			return nil, errors.Wrapf(err, "authorizers[%d]", i)
		}
		b.Authorizer(authorizer)
	}

	p, err := b.Build(newHasher)
	if err != nil {
		return nil, err
	}
	for i, s := range v.PayloadSigs {
		address, err := cadencejson.ParseAddress(withPrefix(s.Address))
		if err != nil {
			return nil, errors.Wrapf(err, "payloadSigs[%d].address", i)
		}
		sig, err := decodeHex(s.Sig)
		if err != nil {
			return nil, errors.Wrapf(err, "payloadSigs[%d].sig", i)
		}
		if err := p.AddPayloadSignature(address, s.KeyID, sig); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func withPrefix(address string) string {
	if strings.HasPrefix(address, "0x") {
		return address
	}
	return "0x" + address
}

func decodeHex(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(s, "0x"))
}
