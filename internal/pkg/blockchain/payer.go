package blockchain

import (
	"context"
	"crypto/ecdsa"

	"github.com/onflow/flow-go-sdk/crypto"
	"github.com/onflow/flow-go-sdk/crypto/cloudkms"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/kollektive-hackathon/flowkit/internal/keymgmt"
	"github.com/kollektive-hackathon/flowkit/pkg/access"
	"github.com/kollektive-hackathon/flowkit/pkg/account"
	"github.com/kollektive-hackathon/flowkit/pkg/algorithms"
	"github.com/kollektive-hackathon/flowkit/pkg/cadencejson"
	"github.com/kollektive-hackathon/flowkit/pkg/party"
	"github.com/kollektive-hackathon/flowkit/pkg/sign"
	"github.com/kollektive-hackathon/flowkit/pkg/transaction"
)

// Payer is the account of the gateway, whatever its key type.
type Payer interface {
	Address() []byte
	PrimaryKeyID() uint32
	NewHasher() algorithms.NewHasher
	Sign(digest [32]byte) *sign.Iter
	SignParty(p party.Party) error
	SignPartyAsPayer(p party.Party) (*transaction.Transaction, error)
	SendTransactionHeader(ctx context.Context, header transaction.Header) ([]byte, error)
}

// PayerConfig describes the payer account.
type PayerConfig struct {
	Address            string
	SecretKey          string
	KmsResourceName    string
	HashAlgorithm      string
	SignatureAlgorithm string
}

func GetPayerConfig() PayerConfig {
	return PayerConfig{
		Address:            viper.GetString("PAYER_ADDRESS"),
		SecretKey:          viper.GetString("PAYER_SECRET_KEY"),
		KmsResourceName:    viper.GetString("PAYER_GCP_KMS_RESOURCE_NAME"),
		HashAlgorithm:      viper.GetString("PAYER_HASH_ALGO"),
		SignatureAlgorithm: viper.GetString("PAYER_SIGNATURE_ALGO"),
	}
}

// NewPayer logs into the payer account: with a Cloud KMS key when a resource name is
// configured, with a local secret key otherwise. The returned closer releases the KMS client.
func NewPayer(ctx context.Context, client access.Client, config PayerConfig) (Payer, func() error, error) {
	address, err := cadencejson.ParseAddress(config.Address)
	if err != nil {
		return nil, nil, errors.Wrap(err, "PAYER_ADDRESS")
	}

	if config.KmsResourceName != "" {
		return newKmsPayer(ctx, client, address, config)
	}

	sigAlgo := algorithms.ECDSA_secp256k1
	if config.SignatureAlgorithm != "" {
		if sigAlgo, err = algorithms.ParseSignatureAlgorithm(config.SignatureAlgorithm); err != nil {
			return nil, nil, errors.Wrap(err, "PAYER_SIGNATURE_ALGO")
		}
	}
	if sigAlgo == algorithms.ECDSA_P256 {
		return newP256Payer(ctx, client, address, config)
	}

	newHasher, err := hasherFor(config.HashAlgorithm, algorithms.SHA3_256)
	if err != nil {
		return nil, nil, err
	}
	key, err := algorithms.DecodeSecp256k1Key(config.SecretKey)
	if err != nil {
		return nil, nil, errors.Wrap(err, "PAYER_SECRET_KEY")
	}
	payer, err := account.New[*ecdsa.PrivateKey, *ecdsa.PublicKey](ctx, client, address, key, algorithms.Secp256k1Signer{}, newHasher)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Msgf("Payer %s logged in with a secp256k1 key", address)
	return payer, func() error { return nil }, nil
}

func newP256Payer(ctx context.Context, client access.Client, address cadencejson.Address, config PayerConfig) (Payer, func() error, error) {
	newHasher, err := hasherFor(config.HashAlgorithm, algorithms.SHA3_256)
	if err != nil {
		return nil, nil, err
	}
	key, err := algorithms.DecodeP256Key(config.SecretKey)
	if err != nil {
		return nil, nil, errors.Wrap(err, "PAYER_SECRET_KEY")
	}
	payer, err := account.New[crypto.PrivateKey, crypto.PublicKey](ctx, client, address, key, algorithms.P256Signer{}, newHasher)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Msgf("Payer %s logged in with a P-256 key", address)
	return payer, func() error { return nil }, nil
}

func newKmsPayer(ctx context.Context, client access.Client, address cadencejson.Address, config PayerConfig) (Payer, func() error, error) {
	// KMS signs the digest it is given with SHA2_256 keys
	newHasher, err := hasherFor(config.HashAlgorithm, algorithms.SHA2_256)
	if err != nil {
		return nil, nil, err
	}
	key, err := cloudkms.KeyFromResourceID(config.KmsResourceName)
	if err != nil {
		return nil, nil, errors.Wrap(err, "PAYER_GCP_KMS_RESOURCE_NAME")
	}
	signer, err := keymgmt.NewKmsSigner(ctx)
	if err != nil {
		return nil, nil, err
	}
	payer, err := account.New[cloudkms.Key, crypto.PublicKey](ctx, client, address, key, signer, newHasher)
	if err != nil {
		_ = signer.Close()
		return nil, nil, err
	}
	log.Info().Msgf("Payer %s logged in with KMS key %s", address, key.KeyID)
	return payer, signer.Close, nil
}

func hasherFor(name string, fallback algorithms.HashAlgorithm) (algorithms.NewHasher, error) {
	algo := fallback
	if name != "" {
		var err error
		if algo, err = algorithms.ParseHashAlgorithm(name); err != nil {
			return nil, errors.Wrap(err, "PAYER_HASH_ALGO")
		}
	}
	return algorithms.HasherFor(algo)
}
