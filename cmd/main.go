package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/kollektive-hackathon/flowkit/internal/cosign"
	"github.com/kollektive-hackathon/flowkit/internal/keymgmt"
	"github.com/kollektive-hackathon/flowkit/internal/pkg/blockchain"
	"github.com/kollektive-hackathon/flowkit/internal/pkg/middleware"
	"github.com/kollektive-hackathon/flowkit/internal/pkg/pubsub"
	"github.com/kollektive-hackathon/flowkit/internal/relay"
	"github.com/kollektive-hackathon/flowkit/pkg/access"
)

func main() {
	setupViper()
	setupZerolog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := access.NewGrpcClient(viper.GetString("FLOW_ACCESS_HOST"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to the access node")
	}
	defer client.Close()

	payer, closePayer, err := blockchain.NewPayer(ctx, client, blockchain.GetPayerConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to log in the payer")
	}
	defer closePayer()

	allowed, err := blockchain.LoadScriptAllowList(viper.GetString("COSIGN_ALLOWED_SCRIPTS_DIR"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load allowed scripts")
	}
	log.Info().Msgf("%d transaction scripts allowed", allowed.Len())

	ps, err := pubsub.NewClient(ctx, viper.GetString("GOOGLE_PROJECT_ID"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize pub sub")
	}
	defer ps.Close()

	var keys relay.KeyCreator
	if viper.GetString("GOOGLE_KMS_KEYRING_ID") != "" {
		signer, err := keymgmt.NewKmsSigner(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize KMS")
		}
		defer signer.Close()
		keys = signer
	}

	relayConfig := relay.GetConfig()
	if err := relayConfig.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid relay configuration")
	}
	relayService := relay.NewService(payer, client, allowed, ps, keys, relayConfig)
	apiRouter := setupApiRouter(ctx, payer, allowed, relayService, ps)

	server := &http.Server{
		Addr:         viper.GetString("PORT"),
		Handler:      apiRouter,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdown)
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("Server stopped")
	}
	relayService.Wait()
}

func setupApiRouter(ctx context.Context, payer blockchain.Payer, allowed *blockchain.ScriptAllowList,
	relayService *relay.Service, ps *pubsub.Client) *gin.Engine {
	apiRouter := gin.New()
	routerGroup := apiRouter.Group("/flowkit-api")

	middleware.RegisterGlobalMiddleware(apiRouter)

	cosign.RegisterRoutes(routerGroup, payer, allowed)
	relay.RegisterRoutesAndSubscriptions(ctx, routerGroup, relayService, ps)

	return apiRouter
}

func setupViper() {
	viper.AutomaticEnv()
	viper.SetConfigFile("./.env")
	if err := viper.ReadInConfig(); err != nil {
		log.Debug().Err(err).Msg("No .env file, using the environment only")
	}

	viper.SetDefault("PORT", ":8080")
	viper.SetDefault("FLOW_ACCESS_HOST", "access.devnet.nodes.onflow.org:9000")
	viper.SetDefault("TRANSACTION_POLL_DELAY", "1s")
	viper.SetDefault("TRANSACTION_TIMEOUT", "5m")
	viper.SetDefault("COMMAND_SUBSCRIPTION_ID", "blockchain.flow.commands-sub")
}

func setupZerolog() {
	zerolog.LevelFieldName = "severity"
	zerolog.TimestampFieldName = "time"
	zerolog.TimeFieldFormat = time.RFC3339Nano
}
