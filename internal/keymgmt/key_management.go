package keymgmt

import (
	"context"
	"encoding/asn1"
	"fmt"
	"math/big"
	"strings"
	"time"

	"cloud.google.com/go/kms/apiv1/kmspb"
	"github.com/google/uuid"
	"github.com/jpillora/backoff"
	"github.com/onflow/flow-go-sdk/crypto"
	"github.com/onflow/flow-go-sdk/crypto/cloudkms"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"google.golang.org/api/option"

	"github.com/kollektive-hackathon/flowkit/pkg/algorithms"
)

var ErrNotP256 = errors.New("KMS key is not an ECDSA P-256 key")

// KmsSigner signs with EC_SIGN_P256_SHA256 keys held in Google Cloud KMS.
// The digest is sent as is, so the matching account key uses SHA2_256.
type KmsSigner struct {
	client  *cloudkms.Client
	timeout time.Duration
}

var _ algorithms.Signer[cloudkms.Key, crypto.PublicKey] = (*KmsSigner)(nil)

func NewKmsSigner(ctx context.Context, opts ...option.ClientOption) (*KmsSigner, error) {
	client, err := cloudkms.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "kms client")
	}
	return &KmsSigner{client: client, timeout: 10 * time.Second}, nil
}

func (s *KmsSigner) Close() error {
	return s.client.KMSClient().Close()
}

func (s *KmsSigner) Algorithm() algorithms.SignatureAlgorithm { return algorithms.ECDSA_P256 }

func (s *KmsSigner) SignPopulated(digest [32]byte, key cloudkms.Key) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	res, err := s.client.KMSClient().AsymmetricSign(ctx, &kmspb.AsymmetricSignRequest{
		Name:   key.ResourceID(),
		Digest: &kmspb.Digest{Digest: &kmspb.Digest_Sha256{Sha256: digest[:]}},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "asymmetric sign with %s", key.KeyID)
	}
	return derToRawSignature(res.Signature)
}

func (s *KmsSigner) ToPublicKey(key cloudkms.Key) (crypto.PublicKey, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.publicKey(ctx, key)
}

func (s *KmsSigner) SerializePublicKey(pub crypto.PublicKey) [64]byte {
	return algorithms.SerializeFlowKey(pub)
}

func (s *KmsSigner) publicKey(ctx context.Context, key cloudkms.Key) (crypto.PublicKey, error) {
	pub, hashAlgo, err := s.client.GetPublicKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if pub.Algorithm() != crypto.ECDSA_P256 || hashAlgo != crypto.SHA2_256 {
		return nil, errors.Wrapf(ErrNotP256, "%s is %s with %s", key.KeyID, pub.Algorithm(), hashAlgo)
	}
	return pub, nil
}

// derToRawSignature converts an ASN.1 ECDSA signature into 64 bytes of r||s.
func derToRawSignature(der []byte) ([]byte, error) {
	var sig struct {
		R, S *big.Int
	}
	rest, err := asn1.Unmarshal(der, &sig)
	if err != nil {
		return nil, errors.Wrap(err, "parse KMS signature")
	}
	if len(rest) != 0 {
		return nil, errors.New("trailing bytes after KMS signature")
	}
	if sig.R.BitLen() > 256 || sig.S.BitLen() > 256 {
		return nil, errors.New("KMS signature component larger than 32 bytes")
	}
	out := make([]byte, 64)
	sig.R.FillBytes(out[:32])
	sig.S.FillBytes(out[32:])
	return out, nil
}

// KeyRing is the KMS key ring new account keys are created in.
func KeyRing() string {
	return fmt.Sprintf("projects/%s/locations/%s/keyRings/%s",
		viper.GetString("GOOGLE_KMS_PROJECT_ID"),
		viper.GetString("GOOGLE_KMS_LOCATION_ID"),
		viper.GetString("GOOGLE_KMS_KEYRING_ID"),
	)
}

// CreateAccountKey creates a signing key in keyRing and waits until its public key is available.
func (s *KmsSigner) CreateAccountKey(ctx context.Context, keyRing string) (cloudkms.Key, crypto.PublicKey, error) {
	key, err := s.createAsymmetricKey(ctx, keyRing, fmt.Sprintf("flowkit-account-key-%s", uuid.New().String()))
	if err != nil {
		return cloudkms.Key{}, nil, err
	}
	pub, err := s.waitForPublicKey(ctx, key, time.Minute)
	if err != nil {
		log.Error().Err(err).Msgf("Failed to get public key for KMS key %s", key.KeyID)
		return cloudkms.Key{}, nil, err
	}
	return key, pub, nil
}

func (s *KmsSigner) createAsymmetricKey(ctx context.Context, parent string, id string) (cloudkms.Key, error) {
	created, err := s.client.KMSClient().CreateCryptoKey(ctx, &kmspb.CreateCryptoKeyRequest{
		Parent:      parent,
		CryptoKeyId: id,
		CryptoKey: &kmspb.CryptoKey{
			Purpose: kmspb.CryptoKey_ASYMMETRIC_SIGN,
			VersionTemplate: &kmspb.CryptoKeyVersionTemplate{
				Algorithm: kmspb.CryptoKeyVersion_EC_SIGN_P256_SHA256,
			},
			Labels: map[string]string{"service": "flowkit"},
		},
	})
	if err != nil {
		return cloudkms.Key{}, errors.Wrap(err, "create crypto key")
	}

	// the first version is created together with the key
	key, err := cloudkms.KeyFromResourceID(created.Name + "/cryptoKeyVersions/1")
	if err != nil {
		return cloudkms.Key{}, err
	}
	if !strings.HasPrefix(key.ResourceID(), created.Name) {
		return cloudkms.Key{}, errors.Errorf("created KMS key %s does not match %s", key.ResourceID(), created.Name)
	}
	return key, nil
}

func (s *KmsSigner) waitForPublicKey(ctx context.Context, key cloudkms.Key, within time.Duration) (crypto.PublicKey, error) {
	b := &backoff.Backoff{
		Min:    100 * time.Millisecond,
		Max:    time.Minute,
		Factor: 5,
		Jitter: true,
	}
	deadline := time.Now().Add(within)

	log.Trace().Msgf("Getting public key for KMS key %s", key.KeyID)
	for {
		pub, err := s.publicKey(ctx, key)
		if err == nil {
			return pub, nil
		}
		if !strings.Contains(err.Error(), "KEY_PENDING_GENERATION") {
			return nil, err
		}
		if time.Now().After(deadline) {
			return nil, errors.Errorf("timeout while waiting for public key of %s", key.KeyID)
		}

		log.Trace().Msg("KMS key is pending creation, will retry")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(b.Duration()):
		}
	}
}
