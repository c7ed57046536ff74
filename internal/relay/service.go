package relay

import (
	"context"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	"github.com/onflow/flow-go-sdk/crypto"
	"github.com/onflow/flow-go-sdk/crypto/cloudkms"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/kollektive-hackathon/flowkit/internal/keymgmt"
	"github.com/kollektive-hackathon/flowkit/internal/pkg/blockchain"
	"github.com/kollektive-hackathon/flowkit/internal/pkg/pubsub"
	"github.com/kollektive-hackathon/flowkit/internal/pkg/reject"
	"github.com/kollektive-hackathon/flowkit/pkg/access"
	"github.com/kollektive-hackathon/flowkit/pkg/algorithms"
	"github.com/kollektive-hackathon/flowkit/pkg/transaction"
)

const (
	StatusRejected = "REJECTED"
	StatusFailed   = "FAILED"
	StatusTimeout  = "TIMEOUT"

	accountCreationDisabled = "error.relay.account-creation-disabled"
	accountNotCreated       = "error.relay.account-not-created"
)

// KeyCreator creates account keys that stay in Cloud KMS.
type KeyCreator interface {
	algorithms.KeySerializer[crypto.PublicKey]
	CreateAccountKey(ctx context.Context, keyRing string) (cloudkms.Key, crypto.PublicKey, error)
}

type Config struct {
	PollDelay    time.Duration
	Timeout      time.Duration
	// KeyRing is where account keys are created.
	KeyRing      string
	Subscription string
}

func GetConfig() Config {
	return Config{
		PollDelay:    viper.GetDuration("TRANSACTION_POLL_DELAY"),
		Timeout:      viper.GetDuration("TRANSACTION_TIMEOUT"),
		KeyRing:      keymgmt.KeyRing(),
		Subscription: viper.GetString("COMMAND_SUBSCRIPTION_ID"),
	}
}

// Validate rejects settings the background tracking cannot run with.
func (c Config) Validate() error {
	if c.PollDelay <= 0 {
		return errors.Wrapf(access.ErrInvalidPollDelay, "TRANSACTION_POLL_DELAY is %s", c.PollDelay)
	}
	if c.Timeout <= 0 {
		return errors.Errorf("TRANSACTION_TIMEOUT must be positive, got %s", c.Timeout)
	}
	return nil
}

// Service submits transactions paid and authorized by the payer and reports their outcome.
type Service struct {
	payer     blockchain.Payer
	results   access.TransactionResultClient
	allowed   *blockchain.ScriptAllowList
	publisher pubsub.Publisher
	keys      KeyCreator
	config    Config

	tracking sync.WaitGroup
}

// NewService builds the relay. keys may be nil, which disables account creation.
func NewService(payer blockchain.Payer, results access.TransactionResultClient, allowed *blockchain.ScriptAllowList,
	publisher pubsub.Publisher, keys KeyCreator, config Config) *Service {
	return &Service{
		payer:     payer,
		results:   results,
		allowed:   allowed,
		publisher: publisher,
		keys:      keys,
		config:    config,
	}
}

type SubmittedTransaction struct {
	CommandId     string `json:"commandId"`
	TransactionId string `json:"transactionId"`
}

// Submit sends the command as a transaction and tracks it in the background until it is final.
func (s *Service) Submit(ctx context.Context, command blockchain.Command) (*SubmittedTransaction, *reject.ProblemWithTrace) {
	if _, ok := s.allowed.Match(command.Script); !ok {
		return nil, &reject.ProblemWithTrace{
			Problem: reject.ScriptNotAllowedProblem(),
			Cause:   errors.Errorf("command %s uses a script that is not allowed", command.Id),
		}
	}
	header, err := command.Header()
	if err != nil {
		return nil, &reject.ProblemWithTrace{
			Problem: reject.RequestValidationProblem(err.Error()),
			Cause:   err,
		}
	}

	id, err := s.payer.SendTransactionHeader(ctx, header)
	if err != nil {
		return nil, &reject.ProblemWithTrace{
			Problem: reject.AccessNodeProblem(err),
			Cause:   err,
		}
	}
	log.Info().Msgf("Command %s (%s) sent as transaction %x", command.Id, command.Type, id)

	s.tracking.Add(1)
	go func() {
		defer s.tracking.Done()
		s.track(command.Id, id)
	}()

	return &SubmittedTransaction{CommandId: command.Id, TransactionId: hex.EncodeToString(id)}, nil
}

// Wait blocks until every tracked transaction was reported.
func (s *Service) Wait() {
	s.tracking.Wait()
}

func (s *Service) track(commandId string, id []byte) {
	ctx := context.Background()
	result, err := access.Finalize(ctx, s.results, id, s.config.PollDelay, s.config.Timeout)
	if err := s.publisher.Publish(ctx, newOutcome(commandId, id, result, err)); err != nil {
		log.Error().Err(err).Msgf("Failed to report outcome of transaction %x", id)
	}
}

func newOutcome(commandId string, id []byte, result *access.TransactionResult, err error) blockchain.Outcome {
	outcome := blockchain.NewOutcome(commandId, hex.EncodeToString(id))
	switch {
	case err != nil:
		outcome.Status = StatusFailed
		outcome.ErrorMessage = err.Error()
	case result == nil:
		outcome.Status = StatusTimeout
	default:
		outcome.Status = result.Status.String()
		outcome.ErrorMessage = result.ErrorMessage
		for _, e := range result.Events {
			outcome.Events = append(outcome.Events, e.Type)
		}
	}
	return outcome
}

type CreatedAccount struct {
	Address       string `json:"address"`
	KeyResourceId string `json:"keyResourceId"`
	TransactionId string `json:"transactionId"`
}

// CreateAccount creates a KMS key and an account holding it, then waits for the account address.
func (s *Service) CreateAccount(ctx context.Context) (*CreatedAccount, *reject.ProblemWithTrace) {
	if s.keys == nil {
		return nil, &reject.ProblemWithTrace{
			Problem: reject.NewProblem().
				WithTitle("Account creation is not configured").
				WithStatus(http.StatusNotImplemented).
				WithCode(accountCreationDisabled).
				Build(),
			Cause: errors.New("no key creator"),
		}
	}

	key, pub, err := s.keys.CreateAccountKey(ctx, s.config.KeyRing)
	if err != nil {
		return nil, &reject.ProblemWithTrace{Problem: reject.UnexpectedProblem(err), Cause: err}
	}
	header, err := transaction.CreateAccount[crypto.PublicKey](s.keys, algorithms.SHA2_256, pub)
	if err != nil {
		return nil, &reject.ProblemWithTrace{Problem: reject.UnexpectedProblem(err), Cause: err}
	}
	id, err := s.payer.SendTransactionHeader(ctx, header)
	if err != nil {
		return nil, &reject.ProblemWithTrace{Problem: reject.AccessNodeProblem(err), Cause: err}
	}

	result, err := access.Finalize(ctx, s.results, id, s.config.PollDelay, s.config.Timeout)
	if err != nil {
		return nil, &reject.ProblemWithTrace{Problem: reject.AccessNodeProblem(err), Cause: err}
	}
	if result == nil {
		err = errors.Errorf("transaction %x was not sealed in time", id)
		return nil, &reject.ProblemWithTrace{Problem: notCreatedProblem(id), Cause: err}
	}
	address, ok, err := access.CreatedAccountAddress(result)
	if err != nil || !ok {
		if err == nil {
			err = errors.Errorf("transaction %x is %s without AccountCreated event: %s", id, result.Status, result.ErrorMessage)
		}
		return nil, &reject.ProblemWithTrace{Problem: notCreatedProblem(id), Cause: err}
	}

	log.Info().Msgf("Created account %s with KMS key %s", address, key.KeyID)
	return &CreatedAccount{
		Address:       address.String(),
		KeyResourceId: key.ResourceID(),
		TransactionId: hex.EncodeToString(id),
	}, nil
}

func notCreatedProblem(id []byte) reject.Problem {
	return reject.NewProblem().
		WithTitle("Account was not created").
		WithStatus(http.StatusBadGateway).
		WithCode(accountNotCreated).
		WithParam("transactionId", hex.EncodeToString(id)).
		Build()
}
