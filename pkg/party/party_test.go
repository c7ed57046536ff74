package party_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/onflow/flow-go-sdk"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kollektive-hackathon/flowkit/pkg/access"
	"github.com/kollektive-hackathon/flowkit/pkg/algorithms"
	"github.com/kollektive-hackathon/flowkit/pkg/cadencejson"
	"github.com/kollektive-hackathon/flowkit/pkg/party"
	"github.com/kollektive-hackathon/flowkit/pkg/transaction"
)

var (
	addrP = []byte{0x01}
	addrQ = []byte{0x02}
	addrA = []byte{0x03}
	addrB = []byte{0x04}
	refID = bytes.Repeat([]byte{0xcd}, 32)
)

func baseBuilder() *party.Builder {
	return party.NewBuilder().
		Script("transaction(){prepare(a: AuthAccount, b: AuthAccount){}}").
		Argument(cadencejson.String("hello")).
		ReferenceBlock(refID).
		ProposerAddress(addrP).
		ProposalKeyID(1).
		ProposalKeySequenceNumber(7).
		Payer(addrQ).
		Authorizers(addrA, addrB)
}

func TestBuilderDefaults(t *testing.T) {
	p, err := baseBuilder().Build(algorithms.NewSHA3_256)
	require.NoError(t, err)

	assert.Equal(t, transaction.DefaultGasLimit, p.GasLimit())
	assert.Equal(t, algorithms.SHA3_256, p.HashAlgorithm())
	assert.Equal(t, [][]byte{[]byte(`{"type":"String","value":"hello"}`)}, p.Arguments())
	assert.Equal(t, transaction.ProposalKey{Address: addrP, KeyID: 1, SequenceNumber: 7}, p.ProposalKey())
}

func TestBuilderRequiresFields(t *testing.T) {
	_, err := party.NewBuilder().ReferenceBlock(refID).ProposerAddress(addrP).Payer(addrQ).Build(algorithms.NewSHA3_256)
	assert.ErrorIs(t, err, transaction.ErrMissingScript)

	_, err = party.NewBuilder().Script("s").ProposerAddress(addrP).Payer(addrQ).Build(algorithms.NewSHA3_256)
	assert.ErrorIs(t, err, party.ErrMissingReferenceBlock)

	_, err = party.NewBuilder().Script("s").ReferenceBlock(refID).Payer(addrQ).Build(algorithms.NewSHA3_256)
	assert.ErrorIs(t, err, party.ErrMissingProposer)

	_, err = party.NewBuilder().Script("s").ReferenceBlock(refID).ProposerAddress(addrP).Build(algorithms.NewSHA3_256)
	assert.ErrorIs(t, err, party.ErrMissingPayer)
}

func TestPayloadMatchesEncoder(t *testing.T) {
	p, err := baseBuilder().GasLimit(9999).Build(algorithms.NewSHA3_256)
	require.NoError(t, err)

	expected := transaction.PayloadDigest(algorithms.NewSHA3_256, transaction.Payload{
		Script:                    p.Script(),
		Arguments:                 p.Arguments(),
		ReferenceBlockID:          refID,
		GasLimit:                  9999,
		ProposalKeyAddress:        addrP,
		ProposalKeyID:             1,
		ProposalKeySequenceNumber: 7,
		Payer:                     addrQ,
		Authorizers:               [][]byte{addrA, addrB},
	})
	assert.Equal(t, expected, p.Payload())
	assert.Equal(t, p.Payload(), p.Payload())
}

func TestSignerIndices(t *testing.T) {
	p, err := baseBuilder().Build(algorithms.NewSHA3_256)
	require.NoError(t, err)

	require.NoError(t, p.AddPayloadSignature(addrB, 0, []byte{0xbb}))
	require.NoError(t, p.AddPayloadSignature(addrA, 2, []byte{0xaa}))
	require.NoError(t, p.AddPayloadSignature(addrP, 1, []byte{0x11}))

	expected := transaction.EnvelopeDigest(algorithms.NewSHA3_256, payloadOf(p), []transaction.PayloadSignature{
		{SignerIndex: 0, KeyID: 1, Signature: []byte{0x11}},
		{SignerIndex: 2, KeyID: 2, Signature: []byte{0xaa}},
		{SignerIndex: 3, KeyID: 0, Signature: []byte{0xbb}},
	})
	assert.Equal(t, expected, p.Envelope())
	assert.Equal(t, [][]byte{
		transaction.PadAddress(addrP), transaction.PadAddress(addrQ),
		transaction.PadAddress(addrA), transaction.PadAddress(addrB),
	}, p.Signers())
}

func TestPayerSharingProposerReusesIndex(t *testing.T) {
	p, err := baseBuilder().Payer(addrP).Build(algorithms.NewSHA3_256)
	require.NoError(t, err)

	require.NoError(t, p.AddPayloadSignature(addrA, 0, []byte{0xaa}))
	expected := transaction.EnvelopeDigest(algorithms.NewSHA3_256, payloadOf(p), []transaction.PayloadSignature{
		{SignerIndex: 1, KeyID: 0, Signature: []byte{0xaa}},
	})
	assert.Equal(t, expected, p.Envelope())
	assert.Len(t, p.Signers(), 3)
}

func TestPayloadSignaturesAreNotDeduplicated(t *testing.T) {
	p, err := baseBuilder().Build(algorithms.NewSHA3_256)
	require.NoError(t, err)

	require.NoError(t, p.AddPayloadSignature(addrA, 0, []byte{1}))
	require.NoError(t, p.AddPayloadSignature(addrA, 0, []byte{1}))
	assert.Len(t, p.PayloadSignatures(), 2)
}

func TestUnknownSigner(t *testing.T) {
	p, err := baseBuilder().Build(algorithms.NewSHA3_256)
	require.NoError(t, err)

	err = p.AddPayloadSignature([]byte{0x99}, 0, []byte{1})
	assert.ErrorIs(t, err, party.ErrUnknownSigner)

	_, err = p.IntoTransactionWithEnvelopeSignatures([]transaction.Signature{{Address: []byte{0x99}}})
	assert.ErrorIs(t, err, party.ErrUnknownSigner)
}

func TestIntoTransactionIsTerminal(t *testing.T) {
	p, err := baseBuilder().Build(algorithms.NewSHA3_256)
	require.NoError(t, err)
	require.NoError(t, p.AddPayloadSignature(addrA, 0, []byte{0xaa}))

	tx, err := p.IntoTransactionWithEnvelopeSignatures([]transaction.Signature{{Address: addrQ, KeyID: 3, Signature: []byte{0xee}}})
	require.NoError(t, err)
	assert.Equal(t, addrQ, tx.Payer)
	assert.Equal(t, transaction.PadAddress(addrQ), tx.EnvelopeSignatures[0].Address)
	assert.Equal(t, transaction.PadAddress(addrA), tx.PayloadSignatures[0].Address)

	_, err = p.IntoTransactionWithEnvelopeSignatures(nil)
	assert.ErrorIs(t, err, party.ErrPartyConsumed)
	assert.ErrorIs(t, p.AddPayloadSignature(addrA, 0, nil), party.ErrPartyConsumed)
}

func TestPreHashedParty(t *testing.T) {
	plain, err := baseBuilder().Build(algorithms.NewSHA2_256)
	require.NoError(t, err)
	pre, err := baseBuilder().BuildPrehashed(algorithms.NewSHA2_256)
	require.NoError(t, err)

	assert.Equal(t, plain.Payload(), pre.Payload())

	require.NoError(t, pre.AddPayloadSignature(addrP, 1, []byte{1}))
	require.NoError(t, plain.AddPayloadSignature(addrP, 1, []byte{1}))
	assert.Equal(t, plain.Envelope(), pre.Envelope())

	var _ party.Party = pre
}

type headerClient struct {
	header *access.BlockHeader
	err    error
	sealed bool
}

func (c *headerClient) LatestBlockHeader(_ context.Context, sealed bool) (*access.BlockHeader, error) {
	c.sealed = sealed
	return c.header, c.err
}

type proposer struct {
	seq uint64
	err error
}

func (p proposer) Address() []byte      { return addrP }
func (p proposer) PrimaryKeyID() uint32 { return 4 }
func (p proposer) PrimaryKeySequenceNumber(context.Context) (uint64, error) {
	return p.seq, p.err
}

func TestNetworkSetters(t *testing.T) {
	client := &headerClient{header: &access.BlockHeader{ID: refID}}
	p, err := party.NewBuilder().
		Script("s").
		LatestBlockAsReference(context.Background(), client).
		ProposerAccount(context.Background(), proposer{seq: 42}).
		PayerAccount(proposer{}).
		AuthorizerAccounts(proposer{}).
		Build(algorithms.NewSHA3_256)
	require.NoError(t, err)

	assert.True(t, client.sealed)
	assert.Equal(t, refID, p.ReferenceBlockID())
	assert.Equal(t, transaction.ProposalKey{Address: addrP, KeyID: 4, SequenceNumber: 42}, p.ProposalKey())
	assert.Equal(t, [][]byte{addrP}, p.Authorizers())
}

func TestNetworkSetterErrorsSurfaceOnBuild(t *testing.T) {
	boom := errors.New("connection reset")
	_, err := party.NewBuilder().
		Script("s").
		LatestBlockAsReference(context.Background(), &headerClient{err: boom}).
		ProposerAccount(context.Background(), proposer{err: errors.New("second")}).
		Payer(addrQ).
		Build(algorithms.NewSHA3_256)
	assert.ErrorIs(t, err, boom)
}

func payloadOf(p party.Party) transaction.Payload {
	pk := p.ProposalKey()
	return transaction.Payload{
		Script:                    p.Script(),
		Arguments:                 p.Arguments(),
		ReferenceBlockID:          p.ReferenceBlockID(),
		GasLimit:                  p.GasLimit(),
		ProposalKeyAddress:        pk.Address,
		ProposalKeyID:             pk.KeyID,
		ProposalKeySequenceNumber: pk.SequenceNumber,
		Payer:                     p.Payer(),
		Authorizers:               p.Authorizers(),
	}
}

func TestMessagesMatchDigests(t *testing.T) {
	p, err := baseBuilder().Build(algorithms.NewSHA3_256)
	require.NoError(t, err)
	require.NoError(t, p.AddPayloadSignature(addrA, 0, []byte{0xaa}))

	assert.Equal(t, p.Payload(), transaction.HashWithTag(algorithms.NewSHA3_256, transaction.TransactionDomainTag, p.PayloadMessage()))
	assert.Equal(t, p.Envelope(), transaction.HashWithTag(algorithms.NewSHA3_256, transaction.TransactionDomainTag, p.EnvelopeMessage()))
}

func TestEnvelopeMatchesFlowGoSDKForUnorderedSignatures(t *testing.T) {
	p, err := baseBuilder().Build(algorithms.NewSHA3_256)
	require.NoError(t, err)

	ftx := flow.NewTransaction().
		SetScript(p.Script()).
		AddRawArgument(p.Arguments()[0]).
		SetReferenceBlockID(flow.BytesToID(refID)).
		SetGasLimit(p.GasLimit()).
		SetProposalKey(flow.BytesToAddress(addrP), 1, 7).
		SetPayer(flow.BytesToAddress(addrQ)).
		AddAuthorizer(flow.BytesToAddress(addrA)).
		AddAuthorizer(flow.BytesToAddress(addrB))
	require.Equal(t, ftx.PayloadMessage(), p.PayloadMessage())

	signatures := []struct {
		address []byte
		keyID   uint32
		sig     []byte
	}{
		{addrB, 0, []byte{0xbb}},
		{addrA, 3, []byte{0xa3}},
		{addrA, 1, []byte{0xa1}},
		{addrP, 1, []byte{0x11}},
	}
	for _, s := range signatures {
		require.NoError(t, p.AddPayloadSignature(s.address, s.keyID, s.sig))
		ftx.AddPayloadSignature(flow.BytesToAddress(s.address), int(s.keyID), s.sig)
	}
	assert.Equal(t, ftx.EnvelopeMessage(), p.EnvelopeMessage())

	tx, err := p.IntoTransactionWithEnvelopeSignatures([]transaction.Signature{{Address: addrQ, KeyID: 0, Signature: []byte{0xee}}})
	require.NoError(t, err)
	ftx.AddEnvelopeSignature(flow.BytesToAddress(addrQ), 0, []byte{0xee})
	id, err := tx.ID()
	require.NoError(t, err)
	assert.Equal(t, ftx.ID().Bytes(), id)
}
