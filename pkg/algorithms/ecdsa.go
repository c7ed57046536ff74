package algorithms

import (
	"crypto/ecdsa"
	"crypto/rand"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	fcrypto "github.com/onflow/flow-go-sdk/crypto"
	"github.com/pkg/errors"
)

// Secp256k1Signer signs with ECDSA over secp256k1, producing 64-byte r||s signatures.
type Secp256k1Signer struct{}

var _ Signer[*ecdsa.PrivateKey, *ecdsa.PublicKey] = Secp256k1Signer{}

func (Secp256k1Signer) Algorithm() SignatureAlgorithm { return ECDSA_secp256k1 }

func (Secp256k1Signer) SignPopulated(digest [32]byte, key *ecdsa.PrivateKey) ([]byte, error) {
	sig, err := crypto.Sign(digest[:], key)
	if err != nil {
		return nil, errors.Wrap(err, "secp256k1 sign")
	}
	// drop the recovery id
	return sig[:64], nil
}

func (Secp256k1Signer) ToPublicKey(key *ecdsa.PrivateKey) (*ecdsa.PublicKey, error) {
	if key == nil {
		return nil, errors.New("secp256k1: nil private key")
	}
	return &key.PublicKey, nil
}

func (Secp256k1Signer) SerializePublicKey(pub *ecdsa.PublicKey) [64]byte {
	var out [64]byte
	copy(out[:], crypto.FromECDSAPub(pub)[1:])
	return out
}

// DecodeSecp256k1Key parses a hex encoded private key, with or without 0x prefix.
func DecodeSecp256k1Key(s string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "decode secp256k1 key")
	}
	return key, nil
}

func GenerateSecp256k1Key() (*ecdsa.PrivateKey, error) {
	return crypto.GenerateKey()
}

// P256Signer signs with ECDSA over NIST P-256 keys from the flow-go-sdk crypto package,
// producing 64-byte r||s signatures.
type P256Signer struct{}

var _ Signer[fcrypto.PrivateKey, fcrypto.PublicKey] = P256Signer{}

func (P256Signer) Algorithm() SignatureAlgorithm { return ECDSA_P256 }

func (P256Signer) SignPopulated(digest [32]byte, key fcrypto.PrivateKey) ([]byte, error) {
	if key == nil || key.Algorithm() != fcrypto.ECDSA_P256 {
		return nil, errors.New("p256: key is not on P-256")
	}
	sig, err := key.Sign(digest[:], populated{digest: digest[:]})
	if err != nil {
		return nil, errors.Wrap(err, "p256 sign")
	}
	return sig, nil
}

func (P256Signer) ToPublicKey(key fcrypto.PrivateKey) (fcrypto.PublicKey, error) {
	if key == nil {
		return nil, errors.New("p256: nil private key")
	}
	return key.PublicKey(), nil
}

func (P256Signer) SerializePublicKey(pub fcrypto.PublicKey) [64]byte {
	return SerializeFlowKey(pub)
}

// SerializeFlowKey copies the raw X||Y encoding of an ECDSA public key.
func SerializeFlowKey(pub fcrypto.PublicKey) [64]byte {
	var out [64]byte
	copy(out[:], pub.Encode())
	return out
}

// DecodeP256Key parses a hex encoded private key, with or without 0x prefix.
func DecodeP256Key(s string) (fcrypto.PrivateKey, error) {
	key, err := fcrypto.DecodePrivateKeyHex(fcrypto.ECDSA_P256, strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "decode p256 key")
	}
	return key, nil
}

func GenerateP256Key() (fcrypto.PrivateKey, error) {
	seed := make([]byte, fcrypto.MinSeedLength)
	if _, err := rand.Read(seed); err != nil {
		return nil, errors.Wrap(err, "p256 seed")
	}
	return fcrypto.GeneratePrivateKey(fcrypto.ECDSA_P256, seed)
}

// populated hands a digest computed by a Hasher to flow-go-sdk signing as is.
// Signers receive the digest, not the message, so it must not be hashed again.
type populated struct {
	digest []byte
}

func (p populated) Algorithm() fcrypto.HashAlgorithm { return fcrypto.UnknownHashAlgorithm }
func (p populated) Size() int                        { return len(p.digest) }
func (p populated) ComputeHash([]byte) fcrypto.Hash  { return p.digest }
func (p populated) Write(b []byte) (int, error)      { return len(b), nil }
func (p populated) SumHash() fcrypto.Hash            { return p.digest }
func (p populated) Reset()                           {}
