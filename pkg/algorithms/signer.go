package algorithms

// KeySerializer turns a public key into the 64-byte form stored on chain: the uncompressed
// curve point without its 0x04 prefix.
type KeySerializer[P any] interface {
	Algorithm() SignatureAlgorithm
	SerializePublicKey(pub P) [64]byte
}

// Signer turns a populated 32-byte digest into a signature with a secret key of type K.
// P is the public key type derived from K.
type Signer[K any, P any] interface {
	KeySerializer[P]
	SignPopulated(digest [32]byte, key K) ([]byte, error)
	ToPublicKey(key K) (P, error)
}
