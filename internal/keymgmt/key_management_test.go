package keymgmt

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/pem"
	"math/big"
	"net"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/kms/apiv1/kmspb"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/onflow/flow-go-sdk/crypto"
	"github.com/onflow/flow-go-sdk/crypto/cloudkms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/kollektive-hackathon/flowkit/pkg/algorithms"
)

const keyRing = "projects/p/locations/global/keyRings/flow"

// fakeKms serves the KMS methods the signer uses over an in-memory connection.
type fakeKms struct {
	kmspb.UnimplementedKeyManagementServiceServer

	mu        sync.Mutex
	key       *ecdsa.PrivateKey
	pem       string
	algorithm kmspb.CryptoKeyVersion_CryptoKeyVersionAlgorithm
	pending   int
	denied    bool
	created   *kmspb.CreateCryptoKeyRequest
	signed    []string
}

func newFakeKms(t *testing.T) *fakeKms {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	return &fakeKms{
		key:       key,
		pem:       string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})),
		algorithm: kmspb.CryptoKeyVersion_EC_SIGN_P256_SHA256,
	}
}

func (f *fakeKms) AsymmetricSign(_ context.Context, req *kmspb.AsymmetricSignRequest) (*kmspb.AsymmetricSignResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signed = append(f.signed, req.Name)
	der, err := ecdsa.SignASN1(rand.Reader, f.key, req.Digest.GetSha256())
	if err != nil {
		return nil, err
	}
	return &kmspb.AsymmetricSignResponse{Signature: der}, nil
}

func (f *fakeKms) GetPublicKey(context.Context, *kmspb.GetPublicKeyRequest) (*kmspb.PublicKey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.denied {
		return nil, status.Error(codes.PermissionDenied, "permission denied")
	}
	if f.pending > 0 {
		f.pending--
		return nil, status.Error(codes.FailedPrecondition, "KEY_PENDING_GENERATION")
	}
	return &kmspb.PublicKey{Pem: f.pem, Algorithm: f.algorithm}, nil
}

func (f *fakeKms) CreateCryptoKey(_ context.Context, req *kmspb.CreateCryptoKeyRequest) (*kmspb.CryptoKey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = req
	return &kmspb.CryptoKey{Name: req.Parent + "/cryptoKeys/" + req.CryptoKeyId}, nil
}

func (f *fakeKms) publicKey() crypto.PublicKey {
	pub, err := crypto.DecodePublicKey(crypto.ECDSA_P256, append(
		f.key.X.FillBytes(make([]byte, 32)), f.key.Y.FillBytes(make([]byte, 32))...))
	if err != nil {
		panic(err)
	}
	return pub
}

func newTestSigner(t *testing.T, fake *fakeKms) *KmsSigner {
	lis := bufconn.Listen(1 << 20)
	server := grpc.NewServer()
	kmspb.RegisterKeyManagementServiceServer(server, fake)
	go func() { _ = server.Serve(lis) }()
	t.Cleanup(server.Stop)

	conn, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	signer, err := NewKmsSigner(context.Background(), option.WithGRPCConn(conn))
	require.NoError(t, err)
	t.Cleanup(func() { _ = signer.Close() })
	return signer
}

func testKey(t *testing.T) cloudkms.Key {
	key, err := cloudkms.KeyFromResourceID(keyRing + "/cryptoKeys/payer/cryptoKeyVersions/1")
	require.NoError(t, err)
	return key
}

func TestKmsSignerProducesRawSignatures(t *testing.T) {
	fake := newFakeKms(t)
	signer := newTestSigner(t, fake)
	key := testKey(t)
	digest := algorithms.Sum(algorithms.NewSHA2_256, []byte("envelope"))

	sig, err := signer.SignPopulated(digest, key)
	require.NoError(t, err)
	require.Len(t, sig, 64)
	assert.Equal(t, []string{key.ResourceID()}, fake.signed)

	valid, err := fake.publicKey().Verify(sig, []byte("envelope"), crypto.NewSHA2_256())
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestKmsSignerPublicKey(t *testing.T) {
	fake := newFakeKms(t)
	signer := newTestSigner(t, fake)

	pub, err := signer.ToPublicKey(testKey(t))
	require.NoError(t, err)
	assert.True(t, fake.publicKey().Equals(pub))

	serialized := signer.SerializePublicKey(pub)
	assert.Equal(t, fake.key.X.FillBytes(make([]byte, 32)), serialized[:32])
	assert.Equal(t, fake.key.Y.FillBytes(make([]byte, 32)), serialized[32:])
	assert.Equal(t, algorithms.ECDSA_P256, signer.Algorithm())
}

func TestKmsSignerRejectsSecp256k1Keys(t *testing.T) {
	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	params, err := asn1.Marshal(asn1.ObjectIdentifier{1, 3, 132, 0, 10})
	require.NoError(t, err)
	point := ethcrypto.FromECDSAPub(&key.PublicKey)
	der, err := asn1.Marshal(struct {
		Algorithm pkix.AlgorithmIdentifier
		PublicKey asn1.BitString
	}{
		Algorithm: pkix.AlgorithmIdentifier{
			Algorithm:  asn1.ObjectIdentifier{1, 2, 840, 10045, 2, 1},
			Parameters: asn1.RawValue{FullBytes: params},
		},
		PublicKey: asn1.BitString{Bytes: point, BitLength: 8 * len(point)},
	})
	require.NoError(t, err)

	fake := newFakeKms(t)
	fake.pem = string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
	fake.algorithm = kmspb.CryptoKeyVersion_EC_SIGN_SECP256K1_SHA256

	_, err = newTestSigner(t, fake).ToPublicKey(testKey(t))
	assert.ErrorIs(t, err, ErrNotP256)
}

func TestKmsSignerRejectsUnsupportedAlgorithms(t *testing.T) {
	fake := newFakeKms(t)
	fake.algorithm = kmspb.CryptoKeyVersion_EC_SIGN_P384_SHA384

	_, err := newTestSigner(t, fake).ToPublicKey(testKey(t))
	assert.ErrorContains(t, err, "unsupported signature algorithm")
}

func TestDerToRawSignaturePadsShortComponents(t *testing.T) {
	der, err := asn1Signature(big.NewInt(1), big.NewInt(2))
	require.NoError(t, err)

	raw, err := derToRawSignature(der)
	require.NoError(t, err)
	expected := make([]byte, 64)
	expected[31] = 1
	expected[63] = 2
	assert.Equal(t, expected, raw)

	_, err = derToRawSignature([]byte{0x01, 0x02})
	assert.Error(t, err)
}

func TestCreateAccountKeyWaitsForGeneration(t *testing.T) {
	fake := newFakeKms(t)
	fake.pending = 2
	signer := newTestSigner(t, fake)

	key, pub, err := signer.CreateAccountKey(context.Background(), keyRing)
	require.NoError(t, err)
	assert.True(t, fake.publicKey().Equals(pub))
	assert.Equal(t, "1", key.KeyVersion)
	assert.Equal(t, keyRing, fake.created.Parent)
	assert.Equal(t, kmspb.CryptoKeyVersion_EC_SIGN_P256_SHA256, fake.created.CryptoKey.VersionTemplate.Algorithm)
	assert.Zero(t, fake.pending)
}

func TestWaitForPublicKeyStopsOnOtherErrors(t *testing.T) {
	fake := newFakeKms(t)
	fake.denied = true

	_, err := newTestSigner(t, fake).waitForPublicKey(context.Background(), testKey(t), time.Second)
	assert.ErrorContains(t, err, "permission denied")
}

func asn1Signature(r, s *big.Int) ([]byte, error) {
	return asn1.Marshal(struct{ R, S *big.Int }{r, s})
}
