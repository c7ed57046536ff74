package access

import (
	"context"

	"github.com/onflow/cadence"
	jsoncdc "github.com/onflow/cadence/encoding/json"
	"github.com/onflow/flow-go-sdk"
	"github.com/onflow/flow-go-sdk/access/grpc"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/kollektive-hackathon/flowkit/pkg/algorithms"
	"github.com/kollektive-hackathon/flowkit/pkg/cadencejson"
	"github.com/kollektive-hackathon/flowkit/pkg/transaction"
)

const (
	EmulatorHost = grpc.EmulatorHost
	TestnetHost  = grpc.TestnetHost
	MainnetHost  = grpc.MainnetHost
)

// GrpcClient adapts the flow-go-sdk access client to the interfaces of this package.
type GrpcClient struct {
	flow *grpc.Client
}

var _ Client = (*GrpcClient)(nil)

func NewGrpcClient(host string) (*GrpcClient, error) {
	c, err := grpc.NewClient(host)
	if err != nil {
		return nil, errors.Wrapf(err, "connect to access node %s", host)
	}
	return &GrpcClient{flow: c}, nil
}

func (c *GrpcClient) Close() error {
	return c.flow.Close()
}

func (c *GrpcClient) Ping(ctx context.Context) error {
	return c.flow.Ping(ctx)
}

func (c *GrpcClient) AccountAtLatestBlock(ctx context.Context, address []byte) (*Account, error) {
	acc, err := c.flow.GetAccountAtLatestBlock(ctx, flow.BytesToAddress(address))
	if err != nil {
		return nil, err
	}
	return accountFromFlow(acc), nil
}

func (c *GrpcClient) AccountAtBlockHeight(ctx context.Context, address []byte, height uint64) (*Account, error) {
	acc, err := c.flow.GetAccountAtBlockHeight(ctx, flow.BytesToAddress(address), height)
	if err != nil {
		return nil, err
	}
	return accountFromFlow(acc), nil
}

func (c *GrpcClient) LatestBlockHeader(ctx context.Context, sealed bool) (*BlockHeader, error) {
	h, err := c.flow.GetLatestBlockHeader(ctx, sealed)
	if err != nil {
		return nil, err
	}
	return headerFromFlow(h), nil
}

func (c *GrpcClient) BlockHeaderByHeight(ctx context.Context, height uint64) (*BlockHeader, error) {
	h, err := c.flow.GetBlockHeaderByHeight(ctx, height)
	if err != nil {
		return nil, err
	}
	return headerFromFlow(h), nil
}

func (c *GrpcClient) BlockHeaderByID(ctx context.Context, id []byte) (*BlockHeader, error) {
	h, err := c.flow.GetBlockHeaderByID(ctx, flow.BytesToID(id))
	if err != nil {
		return nil, err
	}
	return headerFromFlow(h), nil
}

func (c *GrpcClient) LatestBlock(ctx context.Context, sealed bool) (*Block, error) {
	b, err := c.flow.GetLatestBlock(ctx, sealed)
	if err != nil {
		return nil, err
	}
	return blockFromFlow(b), nil
}

func (c *GrpcClient) BlockByHeight(ctx context.Context, height uint64) (*Block, error) {
	b, err := c.flow.GetBlockByHeight(ctx, height)
	if err != nil {
		return nil, err
	}
	return blockFromFlow(b), nil
}

func (c *GrpcClient) BlockByID(ctx context.Context, id []byte) (*Block, error) {
	b, err := c.flow.GetBlockByID(ctx, flow.BytesToID(id))
	if err != nil {
		return nil, err
	}
	return blockFromFlow(b), nil
}

func (c *GrpcClient) CollectionByID(ctx context.Context, id []byte) (*Collection, error) {
	col, err := c.flow.GetCollection(ctx, flow.BytesToID(id))
	if err != nil {
		return nil, err
	}
	out := &Collection{ID: col.ID().Bytes()}
	for _, txID := range col.TransactionIDs {
		out.TransactionIDs = append(out.TransactionIDs, txID.Bytes())
	}
	return out, nil
}

func (c *GrpcClient) SendTransaction(ctx context.Context, tx *transaction.Transaction) ([]byte, error) {
	ftx := transactionToFlow(tx)
	if err := c.flow.SendTransaction(ctx, *ftx); err != nil {
		return nil, err
	}
	id := ftx.ID()
	log.Debug().Msgf("Submitted transaction %s", id)
	return id.Bytes(), nil
}

func (c *GrpcClient) TransactionResult(ctx context.Context, id []byte) (*TransactionResult, error) {
	res, err := c.flow.GetTransactionResult(ctx, flow.BytesToID(id))
	if err != nil {
		return nil, err
	}
	return resultFromFlow(res), nil
}

func (c *GrpcClient) ExecuteScriptAtLatestBlock(ctx context.Context, script []byte, arguments [][]byte) (cadencejson.Value, error) {
	args := make([]cadence.Value, len(arguments))
	for i, arg := range arguments {
		v, err := jsoncdc.Decode(nil, arg)
		if err != nil {
			return nil, errors.Wrapf(err, "script argument %d", i)
		}
		args[i] = v
	}

	value, err := c.flow.ExecuteScriptAtLatestBlock(ctx, script, args)
	if err != nil {
		return nil, err
	}
	encoded, err := jsoncdc.Encode(value)
	if err != nil {
		return nil, errors.Wrap(err, "encode script result")
	}
	return cadencejson.Decode(encoded)
}

func (c *GrpcClient) EventsForHeightRange(ctx context.Context, eventType string, start, end uint64) ([]BlockEvents, error) {
	blocks, err := c.flow.GetEventsForHeightRange(ctx, eventType, start, end)
	if err != nil {
		return nil, err
	}
	out := make([]BlockEvents, len(blocks))
	for i, b := range blocks {
		out[i] = BlockEvents{
			BlockID:        b.BlockID.Bytes(),
			Height:         b.Height,
			BlockTimestamp: TimestampFrom(b.BlockTimestamp),
			Events:         eventsFromFlow(b.Events),
		}
	}
	return out, nil
}

func accountFromFlow(acc *flow.Account) *Account {
	out := &Account{
		Address:   acc.Address.Bytes(),
		Balance:   acc.Balance,
		Code:      acc.Code,
		Contracts: acc.Contracts,
	}
	for _, k := range acc.Keys {
		out.Keys = append(out.Keys, AccountKey{
			Index:          uint32(k.Index),
			PublicKey:      k.PublicKey.Encode(),
			SignAlgo:       signatureCode(k.SigAlgo.String()),
			HashAlgo:       hashCode(k.HashAlgo.String()),
			Weight:         uint32(k.Weight),
			SequenceNumber: k.SequenceNumber,
			Revoked:        k.Revoked,
		})
	}
	return out
}

// signatureCode maps the sdk's algorithm name onto the on-chain code; unsupported names map to 0.
func signatureCode(name string) uint32 {
	algo, err := algorithms.ParseSignatureAlgorithm(name)
	if err != nil {
		return 0
	}
	return algo.Code()
}

func hashCode(name string) uint32 {
	algo, err := algorithms.ParseHashAlgorithm(name)
	if err != nil {
		return 0
	}
	return algo.Code()
}

func headerFromFlow(h *flow.BlockHeader) *BlockHeader {
	return &BlockHeader{
		ID:        h.ID.Bytes(),
		ParentID:  h.ParentID.Bytes(),
		Height:    h.Height,
		Timestamp: TimestampFrom(h.Timestamp),
	}
}

func blockFromFlow(b *flow.Block) *Block {
	out := &Block{BlockHeader: *headerFromFlow(&b.BlockHeader)}
	for _, g := range b.CollectionGuarantees {
		out.CollectionGuarantees = append(out.CollectionGuarantees, CollectionGuarantee{CollectionID: g.CollectionID.Bytes()})
	}
	for _, s := range b.Seals {
		out.Seals = append(out.Seals, BlockSeal{BlockID: s.BlockID.Bytes(), ExecutionReceiptID: s.ExecutionReceiptID.Bytes()})
	}
	return out
}

func eventsFromFlow(events []flow.Event) []Event {
	out := make([]Event, len(events))
	for i, e := range events {
		out[i] = Event{
			Type:             e.Type,
			TransactionID:    e.TransactionID.Bytes(),
			TransactionIndex: uint32(e.TransactionIndex),
			EventIndex:       uint32(e.EventIndex),
			Payload:          e.Payload,
		}
	}
	return out
}

func resultFromFlow(res *flow.TransactionResult) *TransactionResult {
	out := &TransactionResult{
		Status: TransactionStatus(res.Status),
		Events: eventsFromFlow(res.Events),
	}
	if res.Error != nil {
		// the sdk folds the status code into Error
		out.StatusCode = 1
		out.ErrorMessage = res.Error.Error()
	}
	return out
}

func transactionToFlow(tx *transaction.Transaction) *flow.Transaction {
	ftx := flow.NewTransaction().
		SetScript(tx.Script).
		SetReferenceBlockID(flow.BytesToID(tx.ReferenceBlockID)).
		SetGasLimit(tx.GasLimit).
		SetProposalKey(flow.BytesToAddress(tx.ProposalKey.Address), int(tx.ProposalKey.KeyID), tx.ProposalKey.SequenceNumber).
		SetPayer(flow.BytesToAddress(tx.Payer))
	for _, arg := range tx.Arguments {
		ftx.AddRawArgument(arg)
	}
	for _, a := range tx.Authorizers {
		ftx.AddAuthorizer(flow.BytesToAddress(a))
	}
	for _, s := range tx.PayloadSignatures {
		ftx.AddPayloadSignature(flow.BytesToAddress(s.Address), int(s.KeyID), s.Signature)
	}
	for _, s := range tx.EnvelopeSignatures {
		ftx.AddEnvelopeSignature(flow.BytesToAddress(s.Address), int(s.KeyID), s.Signature)
	}
	return ftx
}
