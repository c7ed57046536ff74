package transaction

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/kollektive-hackathon/flowkit/pkg/algorithms"
	"github.com/kollektive-hackathon/flowkit/pkg/cadencejson"
)

const createAccountOneKeyTemplate = `transaction(publicKey: [UInt8]) {
    prepare(signer: AuthAccount) {
        let account = AuthAccount(payer: signer)
        account.keys.add(
            publicKey: PublicKey(publicKey: publicKey, signatureAlgorithm: SignatureAlgorithm.%s),
            hashAlgorithm: HashAlgorithm.%s,
            weight: 1000.0
        )
    }
}`

const createAccountTemplate = `transaction(publicKeys: [[UInt8]]) {
    prepare(signer: AuthAccount) {
        let account = AuthAccount(payer: signer)
        for key in publicKeys {
            account.keys.add(
                publicKey: PublicKey(publicKey: key, signatureAlgorithm: SignatureAlgorithm.%s),
                hashAlgorithm: HashAlgorithm.%s,
                weight: 1000.0
            )
        }
    }
}`

const createAccountWeightedTemplate = `transaction(publicKeys: {String: UFix64}) {
    prepare(signer: AuthAccount) {
        let account = AuthAccount(payer: signer)
        for key in publicKeys.keys {
            account.keys.add(
                publicKey: PublicKey(publicKey: key.decodeHex(), signatureAlgorithm: SignatureAlgorithm.%s),
                hashAlgorithm: HashAlgorithm.%s,
                weight: publicKeys[key]!
            )
        }
    }
}`

const addContractTemplate = `transaction(name: String, code: String%s) {
    prepare(signer: AuthAccount) {
        signer.contracts.add(name: name, code: code.utf8%s)
    }
}`

const updateContractTemplate = `transaction(name: String, code: String) {
    prepare(signer: AuthAccount) {
        signer.contracts.update__experimental(name: name, code: code.utf8)
    }
}`

const removeContractTemplate = `transaction(name: String) {
    prepare(signer: AuthAccount) {
        signer.contracts.remove(name: name)
    }
}`

// WeightedKey is a public key with the weight it gets on the new account.
type WeightedKey[P any] struct {
	PublicKey P
	Weight    cadencejson.UFix64
}

var ErrArgumentTypeRequired = errors.New("argument needs an explicit Cadence type")

// NamedArgument is an extra contract initializer argument. Type is the Cadence parameter type,
// for example "[String]" or "{String: UFix64}". It may be left empty for simple values, whose
// kind names their type.
type NamedArgument struct {
	Name  string
	Type  string
	Value cadencejson.Value
}

func (a NamedArgument) cadenceType() (string, error) {
	if a.Type != "" {
		return a.Type, nil
	}
	switch kind := a.Value.Kind(); kind {
	case cadencejson.KindBool, cadencejson.KindString, cadencejson.KindAddress,
		cadencejson.KindInt, cadencejson.KindInt8, cadencejson.KindInt16, cadencejson.KindInt32,
		cadencejson.KindInt64, cadencejson.KindInt128, cadencejson.KindInt256,
		cadencejson.KindUInt, cadencejson.KindUInt8, cadencejson.KindUInt16, cadencejson.KindUInt32,
		cadencejson.KindUInt64, cadencejson.KindUInt128, cadencejson.KindUInt256,
		cadencejson.KindWord8, cadencejson.KindWord16, cadencejson.KindWord32, cadencejson.KindWord64,
		cadencejson.KindFix64, cadencejson.KindUFix64:
		return string(kind), nil
	default:
		return "", errors.Wrapf(ErrArgumentTypeRequired, "%s is a %s", a.Name, kind)
	}
}

// CreateAccount creates an account holding the given keys at full weight. The serializer decides
// the key encoding and the declared signature algorithm.
func CreateAccount[P any](signer algorithms.KeySerializer[P], hashAlgo algorithms.HashAlgorithm, publicKeys ...P) (Header, error) {
	serialized := make([]cadencejson.Value, len(publicKeys))
	for i, pub := range publicKeys {
		serialized[i] = publicKeyBytes(signer.SerializePublicKey(pub))
	}

	if len(serialized) == 1 {
		return NewHeaderBuilder().
			Script(fmt.Sprintf(createAccountOneKeyTemplate, signer.Algorithm().Name(), hashAlgo.Name())).
			Argument(serialized[0]).
			Build()
	}
	return NewHeaderBuilder().
		Script(fmt.Sprintf(createAccountTemplate, signer.Algorithm().Name(), hashAlgo.Name())).
		Argument(cadencejson.Array(serialized)).
		Build()
}

// CreateAccountWeighted creates an account holding the given keys with their own weights.
func CreateAccountWeighted[P any](signer algorithms.KeySerializer[P], hashAlgo algorithms.HashAlgorithm, keys ...WeightedKey[P]) (Header, error) {
	dict := make(cadencejson.Dictionary, len(keys))
	for i, k := range keys {
		pub := signer.SerializePublicKey(k.PublicKey)
		dict[i] = cadencejson.Entry{
			Key:   cadencejson.String(hex.EncodeToString(pub[:])),
			Value: k.Weight,
		}
	}
	return NewHeaderBuilder().
		Script(fmt.Sprintf(createAccountWeightedTemplate, signer.Algorithm().Name(), hashAlgo.Name())).
		Argument(dict).
		Build()
}

// AddContract deploys a contract. Extra arguments are forwarded to the contract initializer in order.
func AddContract(name, code string, extra ...NamedArgument) (Header, error) {
	var params, forwarded strings.Builder
	values := []cadencejson.Value{cadencejson.String(name), cadencejson.String(code)}
	for _, arg := range extra {
		typ, err := arg.cadenceType()
		if err != nil {
			return Header{}, err
		}
		fmt.Fprintf(&params, ", %s: %s", arg.Name, typ)
		fmt.Fprintf(&forwarded, ", %s: %s", arg.Name, arg.Name)
		values = append(values, arg.Value)
	}
	return NewHeaderBuilder().
		Script(fmt.Sprintf(addContractTemplate, params.String(), forwarded.String())).
		Arguments(values...).
		Build()
}

func UpdateContract(name, code string) (Header, error) {
	return NewHeaderBuilder().
		Script(updateContractTemplate).
		Arguments(cadencejson.String(name), cadencejson.String(code)).
		Build()
}

func RemoveContract(name string) (Header, error) {
	return NewHeaderBuilder().
		Script(removeContractTemplate).
		Argument(cadencejson.String(name)).
		Build()
}

func publicKeyBytes(pub [64]byte) cadencejson.Array {
	out := make(cadencejson.Array, len(pub))
	for i, b := range pub {
		out[i] = cadencejson.UInt8(b)
	}
	return out
}
