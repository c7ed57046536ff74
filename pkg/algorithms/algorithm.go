// Package algorithms holds the hashing and signing contracts the transaction
// pipeline is generic over, together with the algorithms Flow accounts accept.
package algorithms

import "github.com/pkg/errors"

// HashAlgorithm identifies a hashing algorithm by its on-chain code.
// The zero value is not a valid algorithm.
type HashAlgorithm struct {
	code uint32
	name string
}

// SignatureAlgorithm identifies a signature algorithm by its on-chain code.
// The zero value is not a valid algorithm.
type SignatureAlgorithm struct {
	code uint32
	name string
}

var (
	SHA2_256 = HashAlgorithm{code: 1, name: "SHA2_256"}
	SHA3_256 = HashAlgorithm{code: 3, name: "SHA3_256"}

	ECDSA_P256      = SignatureAlgorithm{code: 2, name: "ECDSA_P256"}
	ECDSA_secp256k1 = SignatureAlgorithm{code: 3, name: "ECDSA_secp256k1"}
)

var (
	hashAlgorithms      = []HashAlgorithm{SHA2_256, SHA3_256}
	signatureAlgorithms = []SignatureAlgorithm{ECDSA_P256, ECDSA_secp256k1}
)

var (
	ErrUnknownHashAlgorithm      = errors.New("unknown hash algorithm")
	ErrUnknownSignatureAlgorithm = errors.New("unknown signature algorithm")
)

func (h HashAlgorithm) Code() uint32   { return h.code }
func (h HashAlgorithm) Name() string   { return h.name }
func (h HashAlgorithm) String() string { return h.name }
func (h HashAlgorithm) Valid() bool    { return h.code != 0 }

func (s SignatureAlgorithm) Code() uint32   { return s.code }
func (s SignatureAlgorithm) Name() string   { return s.name }
func (s SignatureAlgorithm) String() string { return s.name }
func (s SignatureAlgorithm) Valid() bool    { return s.code != 0 }

func HashAlgorithmFromCode(code uint32) (HashAlgorithm, error) {
	for _, h := range hashAlgorithms {
		if h.code == code {
			return h, nil
		}
	}
	return HashAlgorithm{}, errors.Wrapf(ErrUnknownHashAlgorithm, "code %d", code)
}

func ParseHashAlgorithm(name string) (HashAlgorithm, error) {
	for _, h := range hashAlgorithms {
		if h.name == name {
			return h, nil
		}
	}
	return HashAlgorithm{}, errors.Wrapf(ErrUnknownHashAlgorithm, "%q", name)
}

func SignatureAlgorithmFromCode(code uint32) (SignatureAlgorithm, error) {
	for _, s := range signatureAlgorithms {
		if s.code == code {
			return s, nil
		}
	}
	return SignatureAlgorithm{}, errors.Wrapf(ErrUnknownSignatureAlgorithm, "code %d", code)
}

func ParseSignatureAlgorithm(name string) (SignatureAlgorithm, error) {
	for _, s := range signatureAlgorithms {
		if s.name == name {
			return s, nil
		}
	}
	return SignatureAlgorithm{}, errors.Wrapf(ErrUnknownSignatureAlgorithm, "%q", name)
}
