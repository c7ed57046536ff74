package party

import (
	"context"

	"github.com/pkg/errors"

	"github.com/kollektive-hackathon/flowkit/pkg/access"
	"github.com/kollektive-hackathon/flowkit/pkg/algorithms"
	"github.com/kollektive-hackathon/flowkit/pkg/cadencejson"
	"github.com/kollektive-hackathon/flowkit/pkg/transaction"
)

var (
	ErrMissingReferenceBlock = errors.New("reference block is not set")
	ErrMissingProposer       = errors.New("proposer is not set")
	ErrMissingPayer          = errors.New("payer is not set")
)

// Signatory is an account taking part in a transaction.
type Signatory interface {
	Address() []byte
}

// Proposer is an account able to supply the proposal key.
type Proposer interface {
	Signatory
	PrimaryKeyID() uint32
	PrimaryKeySequenceNumber(ctx context.Context) (uint64, error)
}

// Builder collects the payload of a party. Setters that query the network record the
// first error, which Build returns.
type Builder struct {
	script           *string
	arguments        [][]byte
	referenceBlockID []byte
	gasLimit         uint64
	proposer         []byte
	proposalKeyID    uint32
	sequenceNumber   uint64
	payer            []byte
	authorizers      [][]byte
	err              error
}

func NewBuilder() *Builder {
	return &Builder{gasLimit: transaction.DefaultGasLimit}
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

func (b *Builder) Script(script string) *Builder {
	b.script = &script
	return b
}

func (b *Builder) Argument(v cadencejson.Value) *Builder {
	return b.Arguments(v)
}

func (b *Builder) Arguments(values ...cadencejson.Value) *Builder {
	args, err := cadencejson.EncodeArguments(values...)
	if err != nil {
		return b.fail(err)
	}
	b.arguments = append(b.arguments, args...)
	return b
}

func (b *Builder) ArgumentRaw(arg []byte) *Builder {
	b.arguments = append(b.arguments, arg)
	return b
}

// Header sets script and arguments from a transaction template.
func (b *Builder) Header(h transaction.Header) *Builder {
	b.Script(h.Script)
	for _, arg := range h.Arguments {
		b.ArgumentRaw(arg)
	}
	return b
}

func (b *Builder) ReferenceBlock(id []byte) *Builder {
	b.referenceBlockID = id
	return b
}

// LatestBlockAsReference uses the latest sealed block as reference block.
func (b *Builder) LatestBlockAsReference(ctx context.Context, client access.BlockHeaderClient) *Builder {
	header, err := client.LatestBlockHeader(ctx, true)
	if err != nil {
		return b.fail(errors.Wrap(err, "latest block header"))
	}
	return b.ReferenceBlock(header.ID)
}

func (b *Builder) GasLimit(limit uint64) *Builder {
	b.gasLimit = limit
	return b
}

func (b *Builder) ProposerAddress(address []byte) *Builder {
	b.proposer = address
	return b
}

func (b *Builder) ProposalKeyID(keyID uint32) *Builder {
	b.proposalKeyID = keyID
	return b
}

func (b *Builder) ProposalKeySequenceNumber(seq uint64) *Builder {
	b.sequenceNumber = seq
	return b
}

// ProposerAccount proposes with the primary key of account at its current sequence number.
func (b *Builder) ProposerAccount(ctx context.Context, account Proposer) *Builder {
	seq, err := account.PrimaryKeySequenceNumber(ctx)
	if err != nil {
		return b.fail(errors.Wrapf(err, "sequence number of 0x%x", account.Address()))
	}
	return b.ProposerAddress(account.Address()).
		ProposalKeyID(account.PrimaryKeyID()).
		ProposalKeySequenceNumber(seq)
}

func (b *Builder) Payer(address []byte) *Builder {
	b.payer = address
	return b
}

func (b *Builder) PayerAccount(account Signatory) *Builder {
	return b.Payer(account.Address())
}

func (b *Builder) Authorizer(address []byte) *Builder {
	b.authorizers = append(b.authorizers, address)
	return b
}

func (b *Builder) Authorizers(addresses ...[]byte) *Builder {
	b.authorizers = append(b.authorizers, addresses...)
	return b
}

func (b *Builder) AuthorizerAccount(account Signatory) *Builder {
	return b.Authorizer(account.Address())
}

func (b *Builder) AuthorizerAccounts(accounts ...Signatory) *Builder {
	for _, a := range accounts {
		b.AuthorizerAccount(a)
	}
	return b
}

func (b *Builder) Build(newHasher algorithms.NewHasher) (*SigningParty, error) {
	if b.err != nil {
		return nil, b.err
	}
	switch {
	case b.script == nil:
		return nil, transaction.ErrMissingScript
	case b.referenceBlockID == nil:
		return nil, ErrMissingReferenceBlock
	case b.proposer == nil:
		return nil, ErrMissingProposer
	case b.payer == nil:
		return nil, ErrMissingPayer
	}

	authorizers := make([][]byte, len(b.authorizers))
	copy(authorizers, b.authorizers)
	arguments := make([][]byte, len(b.arguments))
	copy(arguments, b.arguments)

	payload := transaction.Payload{
		Script:                    []byte(*b.script),
		Arguments:                 arguments,
		ReferenceBlockID:          b.referenceBlockID,
		GasLimit:                  b.gasLimit,
		ProposalKeyAddress:        b.proposer,
		ProposalKeyID:             b.proposalKeyID,
		ProposalKeySequenceNumber: b.sequenceNumber,
		Payer:                     b.payer,
		Authorizers:               authorizers,
	}
	return &SigningParty{
		payload:   payload,
		signers:   transaction.NewSignerMap(payload.ProposalKeyAddress, payload.Payer, payload.Authorizers),
		newHasher: newHasher,
	}, nil
}

func (b *Builder) BuildPrehashed(newHasher algorithms.NewHasher) (*PreHashedParty, error) {
	p, err := b.Build(newHasher)
	if err != nil {
		return nil, err
	}
	return &PreHashedParty{SigningParty: p, payloadDigest: p.Payload()}, nil
}
