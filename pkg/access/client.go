// Package access describes the Flow access API as seen by the signing pipeline: the
// entities it returns, the small interfaces it is consumed through, and an adapter
// over the flow-go-sdk gRPC client.
package access

import (
	"context"

	"github.com/kollektive-hackathon/flowkit/pkg/cadencejson"
	"github.com/kollektive-hackathon/flowkit/pkg/transaction"
)

type AccountClient interface {
	AccountAtLatestBlock(ctx context.Context, address []byte) (*Account, error)
}

type BlockHeaderClient interface {
	// LatestBlockHeader returns the latest sealed header when sealed is true,
	// the latest finalized one otherwise.
	LatestBlockHeader(ctx context.Context, sealed bool) (*BlockHeader, error)
}

type TransactionSender interface {
	// SendTransaction submits tx and returns the id the network assigned to it.
	SendTransaction(ctx context.Context, tx *transaction.Transaction) ([]byte, error)
}

type TransactionResultClient interface {
	TransactionResult(ctx context.Context, id []byte) (*TransactionResult, error)
}

// Client is what an account needs to log in, sign and submit.
type Client interface {
	AccountClient
	BlockHeaderClient
	TransactionSender
	TransactionResultClient
}

type ScriptExecutor interface {
	ExecuteScriptAtLatestBlock(ctx context.Context, script []byte, arguments [][]byte) (cadencejson.Value, error)
}

type EventClient interface {
	EventsForHeightRange(ctx context.Context, eventType string, start, end uint64) ([]BlockEvents, error)
}
