package relay

import (
	"context"
	"net/http"

	gcppubsub "cloud.google.com/go/pubsub"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/kollektive-hackathon/flowkit/internal/pkg/blockchain"
	"github.com/kollektive-hackathon/flowkit/internal/pkg/pubsub"
	"github.com/kollektive-hackathon/flowkit/internal/pkg/reject"
	"github.com/kollektive-hackathon/flowkit/internal/pkg/utils"
)

type Subscriber interface {
	Subscribe(ctx context.Context, handler pubsub.SubscriptionHandler) error
}

type relayHandler struct {
	relay *Service
}

func RegisterRoutesAndSubscriptions(ctx context.Context, rg *gin.RouterGroup, service *Service, subscriber Subscriber) {
	handler := relayHandler{relay: service}

	routes := rg.Group("")
	routes.POST("/transactions", handler.submitTransaction)
	routes.POST("/accounts", handler.createAccount)

	if subscriber != nil && service.config.Subscription != "" {
		go handler.subscribeCommands(ctx, subscriber)
	}
}

func (rh relayHandler) subscribeCommands(ctx context.Context, subscriber Subscriber) {
	err := subscriber.Subscribe(ctx, pubsub.SubscriptionHandler{
		SubscriptionId: rh.relay.config.Subscription,
		Handler:        rh.handleCommandMessage,
	})
	if err != nil {
		log.Error().Err(err).Msgf("Command subscription %s stopped", rh.relay.config.Subscription)
	}
}

func (rh relayHandler) submitTransaction(c *gin.Context) {
	command, err := utils.JsonDecode[blockchain.Command](c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, reject.BodyParseProblem())
		return
	}
	if command.Id == "" {
		command.Id = uuid.New().String()
	}

	submitted, problem := rh.relay.Submit(c.Request.Context(), command)
	if problem != nil {
		c.JSON(problem.Problem.Status, problem.Problem)
		return
	}
	c.JSON(http.StatusAccepted, submitted)
}

func (rh relayHandler) createAccount(c *gin.Context) {
	created, problem := rh.relay.CreateAccount(c.Request.Context())
	if problem != nil {
		c.JSON(problem.Problem.Status, problem.Problem)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (rh relayHandler) handleCommandMessage(ctx context.Context, message *gcppubsub.Message) {
	if rh.handleCommand(ctx, message.Data) {
		message.Ack()
	} else {
		message.Nack()
	}
}

// handleCommand reports whether the message is done with. Only access node failures are retried.
func (rh relayHandler) handleCommand(ctx context.Context, data []byte) bool {
	log.Info().Msg("Received message payload " + string(data))
	command, err := utils.JsonDecodeByteStream[blockchain.Command](data)
	if err != nil {
		log.Warn().Err(err).Msg("Error while parsing blockchain command")
		return true
	}

	_, problem := rh.relay.Submit(ctx, *command)
	if problem == nil {
		return true
	}
	if problem.Problem.Status == http.StatusBadGateway {
		log.Warn().Err(problem).Msgf("Command %s will be retried", command.Id)
		return false
	}

	outcome := blockchain.NewOutcome(command.Id, "")
	outcome.Status = StatusRejected
	outcome.ErrorMessage = problem.Error()
	if err := rh.relay.publisher.Publish(ctx, outcome); err != nil {
		log.Error().Err(err).Msgf("Failed to report rejected command %s", command.Id)
	}
	return true
}
