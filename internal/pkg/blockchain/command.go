package blockchain

import (
	"github.com/google/uuid"

	"github.com/kollektive-hackathon/flowkit/pkg/cadencejson"
	"github.com/kollektive-hackathon/flowkit/pkg/transaction"
)

const (
	CommandTopic = "blockchain.flow.commands"
	OutcomeTopic = "blockchain.flow.transactions"
)

// Command asks the gateway to submit a transaction paid and authorized by its payer.
type Command struct {
	Id        string                 `json:"id"`
	Type      string                 `json:"type"`
	Script    string                 `json:"script"`
	Arguments []cadencejson.Argument `json:"arguments"`
}

func (bc Command) GetEventTopicName() string {
	return CommandTopic
}

func NewBlockchainCommand(commandType string, script string, arguments ...cadencejson.Value) Command {
	args := make([]cadencejson.Argument, len(arguments))
	for i, a := range arguments {
		args[i] = cadencejson.Argument{Value: a}
	}
	return Command{
		Id:        uuid.New().String(),
		Type:      commandType,
		Script:    script,
		Arguments: args,
	}
}

// Header turns the command into a transaction template.
func (bc Command) Header() (transaction.Header, error) {
	b := transaction.NewHeaderBuilder().Script(bc.Script)
	for _, a := range bc.Arguments {
		b.Argument(a.Value)
	}
	return b.Build()
}

// Outcome reports what became of a submitted transaction.
type Outcome struct {
	Id            string   `json:"id"`
	CommandId     string   `json:"commandId,omitempty"`
	TransactionId string   `json:"transactionId"`
	Status        string   `json:"status"`
	ErrorMessage  string   `json:"errorMessage,omitempty"`
	Events        []string `json:"events,omitempty"`
}

func (o Outcome) GetEventTopicName() string {
	return OutcomeTopic
}

func NewOutcome(commandId string, transactionId string) Outcome {
	return Outcome{
		Id:            uuid.New().String(),
		CommandId:     commandId,
		TransactionId: transactionId,
	}
}
