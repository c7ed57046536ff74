package transaction

import "github.com/kollektive-hackathon/flowkit/pkg/algorithms"

const domainTagLength = 32

// TransactionDomainTag is prepended to every payload and envelope before hashing.
var TransactionDomainTag = PadDomainTag("FLOW-V0.0-transaction")

// PadDomainTag right-pads tag with zeros to 32 bytes.
func PadDomainTag(tag string) [domainTagLength]byte {
	if len(tag) > domainTagLength {
		panic("domain tag longer than 32 bytes: " + tag)
	}
	var out [domainTagLength]byte
	copy(out[:], tag)
	return out
}

// HashWithTag hashes tag followed by message.
func HashWithTag(newHasher algorithms.NewHasher, tag [domainTagLength]byte, message []byte) [32]byte {
	return algorithms.Sum(newHasher, tag[:], message)
}

// PayloadDigest is the digest proposers and authorizers sign.
func PayloadDigest(newHasher algorithms.NewHasher, p Payload) [32]byte {
	return HashWithTag(newHasher, TransactionDomainTag, EncodePayload(p))
}

// EnvelopeDigest is the digest the payer signs.
func EnvelopeDigest(newHasher algorithms.NewHasher, p Payload, sigs []PayloadSignature) [32]byte {
	return HashWithTag(newHasher, TransactionDomainTag, EncodeEnvelope(p, sigs))
}
