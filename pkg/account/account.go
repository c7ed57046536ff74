// Package account logs into an on-chain account with one or more secret keys and signs and
// sends transactions on its behalf.
package account

import (
	"bytes"
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/kollektive-hackathon/flowkit/pkg/access"
	"github.com/kollektive-hackathon/flowkit/pkg/algorithms"
	"github.com/kollektive-hackathon/flowkit/pkg/party"
	"github.com/kollektive-hackathon/flowkit/pkg/sign"
	"github.com/kollektive-hackathon/flowkit/pkg/transaction"
)

// FullWeight is the key weight needed to sign for an account alone.
const FullWeight = 1000

type Account[K any, P any] struct {
	client    access.Client
	address   []byte
	method    sign.Method[K]
	signer    algorithms.Signer[K, P]
	newHasher algorithms.NewHasher
}

var _ party.Proposer = (*Account[any, any])(nil)

// New logs in with a single secret key, which must match a full weight, unrevoked key of the
// account declared with the algorithms of signer and newHasher.
func New[K any, P any](
	ctx context.Context,
	client access.Client,
	address []byte,
	key K,
	signer algorithms.Signer[K, P],
	newHasher algorithms.NewHasher,
) (*Account[K, P], error) {
	acc, err := client.AccountAtLatestBlock(ctx, address)
	if err != nil {
		return nil, custom("account at latest block", err)
	}

	serialized, err := serializedPublicKey(signer, key)
	if err != nil {
		return nil, err
	}
	onChain, ok := findKey(acc.Keys, serialized, nil)
	if !ok {
		return nil, ErrNoMatchingKeyFound
	}
	if onChain.Revoked {
		return nil, errors.Wrapf(ErrKeyRevoked, "key %d", onChain.Index)
	}
	if onChain.Weight < FullWeight {
		return nil, errors.Wrapf(ErrNotEnoughWeight, "key %d has weight %d", onChain.Index, onChain.Weight)
	}
	if err := checkAlgorithms(onChain, signer, newHasher); err != nil {
		return nil, err
	}

	log.Debug().Msgf("Logged in to 0x%x with key %d", acc.Address, onChain.Index)
	return &Account[K, P]{
		client:    client,
		address:   acc.Address,
		method:    sign.One(onChain.Index, key),
		signer:    signer,
		newHasher: newHasher,
	}, nil
}

// NewMultisign logs in with two or more secret keys. Every key must match a distinct key of
// the account and their weights must add up to FullWeight. The key at primaryIndex proposes.
func NewMultisign[K any, P any](
	ctx context.Context,
	client access.Client,
	address []byte,
	primaryIndex int,
	keys []K,
	signer algorithms.Signer[K, P],
	newHasher algorithms.NewHasher,
) (*Account[K, P], error) {
	secrets := make([]sign.Key[K], len(keys))
	for i, k := range keys {
		secrets[i] = sign.Key[K]{Secret: k}
	}
	method, err := sign.Multi(primaryIndex, secrets)
	if err != nil {
		return nil, err
	}

	acc, err := client.AccountAtLatestBlock(ctx, address)
	if err != nil {
		return nil, custom("account at latest block", err)
	}

	taken := make(map[uint32]bool, len(keys))
	ids := make([]uint32, len(keys))
	var total uint64
	for i, k := range keys {
		serialized, err := serializedPublicKey(signer, k)
		if err != nil {
			return nil, err
		}
		onChain, ok := findKey(acc.Keys, serialized, taken)
		if !ok {
			return nil, errors.Wrapf(ErrNoMatchingKeyFound, "secret key %d", i)
		}
		if onChain.Revoked {
			return nil, errors.Wrapf(ErrKeyRevoked, "key %d", onChain.Index)
		}
		if err := checkAlgorithms(onChain, signer, newHasher); err != nil {
			return nil, err
		}
		taken[onChain.Index] = true
		ids[i] = onChain.Index
		total += uint64(onChain.Weight)
	}
	if total < FullWeight {
		return nil, errors.Wrapf(ErrNotEnoughWeight, "keys add up to %d", total)
	}

	log.Debug().Msgf("Logged in to 0x%x with keys %v", acc.Address, ids)
	return &Account[K, P]{
		client:    client,
		address:   acc.Address,
		method:    method.WithKeyIDs(ids),
		signer:    signer,
		newHasher: newHasher,
	}, nil
}

// NewUnchecked builds an account without consulting the network.
func NewUnchecked[K any, P any](
	client access.Client,
	address []byte,
	method sign.Method[K],
	signer algorithms.Signer[K, P],
	newHasher algorithms.NewHasher,
) *Account[K, P] {
	return &Account[K, P]{client: client, address: address, method: method, signer: signer, newHasher: newHasher}
}

func serializedPublicKey[K any, P any](signer algorithms.Signer[K, P], key K) ([64]byte, error) {
	pub, err := signer.ToPublicKey(key)
	if err != nil {
		return [64]byte{}, errors.Wrap(err, "derive public key")
	}
	return signer.SerializePublicKey(pub), nil
}

func findKey(keys []access.AccountKey, serialized [64]byte, taken map[uint32]bool) (access.AccountKey, bool) {
	for _, k := range keys {
		if taken[k.Index] {
			continue
		}
		if bytes.Equal(k.PublicKey, serialized[:]) {
			return k, true
		}
	}
	return access.AccountKey{}, false
}

func checkAlgorithms[K any, P any](key access.AccountKey, signer algorithms.Signer[K, P], newHasher algorithms.NewHasher) error {
	signAlgo := signer.Algorithm()
	hashAlgo := newHasher().Algorithm()
	if signAlgo.Code() != key.SignAlgo || hashAlgo.Code() != key.HashAlgo {
		return errors.Wrapf(ErrAlgoMismatch, "key %d declares %d/%d, have %s/%s",
			key.Index, key.SignAlgo, key.HashAlgo, signAlgo, hashAlgo)
	}
	return nil
}

func (a *Account[K, P]) Address() []byte { return a.address }

func (a *Account[K, P]) PrimaryKeyID() uint32 { return a.method.PrimaryKeyID() }

func (a *Account[K, P]) SignMethod() sign.Method[K] { return a.method }

func (a *Account[K, P]) Signer() algorithms.Signer[K, P] { return a.signer }

func (a *Account[K, P]) Client() access.Client { return a.client }

func (a *Account[K, P]) NewHasher() algorithms.NewHasher { return a.newHasher }

func (a *Account[K, P]) PrimaryPublicKey() (P, error) {
	return a.signer.ToPublicKey(a.method.Primary().Secret)
}

// PrimaryKeySequenceNumber fetches the current sequence number of the primary key.
func (a *Account[K, P]) PrimaryKeySequenceNumber(ctx context.Context) (uint64, error) {
	acc, err := a.client.AccountAtLatestBlock(ctx, a.address)
	if err != nil {
		return 0, custom("account at latest block", err)
	}
	id := a.PrimaryKeyID()
	for _, k := range acc.Keys {
		if k.Index == id {
			return k.SequenceNumber, nil
		}
	}
	return 0, errors.Wrapf(ErrNoMatchingKeyFound, "key %d is gone from 0x%x", id, a.address)
}

// Sign signs digest with every key.
func (a *Account[K, P]) Sign(digest [32]byte) *sign.Iter {
	return sign.NewIter(a.method, a.signer, digest)
}

// SignData hashes data and signs the digest with every key.
func (a *Account[K, P]) SignData(data []byte) *sign.Iter {
	return a.Sign(algorithms.Sum(a.newHasher, data))
}

// SignTransaction signs the envelope of a transaction in which this account is proposer,
// payer and sole authorizer.
func (a *Account[K, P]) SignTransaction(script []byte, arguments [][]byte, referenceBlockID []byte, sequenceNumber, gasLimit uint64) *sign.Iter {
	return a.Sign(transaction.EnvelopeDigest(a.newHasher, a.selfPayload(script, arguments, referenceBlockID, sequenceNumber, gasLimit), nil))
}

func (a *Account[K, P]) SignTransactionHeader(header transaction.Header, referenceBlockID []byte, sequenceNumber, gasLimit uint64) *sign.Iter {
	return a.SignTransaction([]byte(header.Script), header.Arguments, referenceBlockID, sequenceNumber, gasLimit)
}

func (a *Account[K, P]) selfPayload(script []byte, arguments [][]byte, referenceBlockID []byte, sequenceNumber, gasLimit uint64) transaction.Payload {
	return transaction.Payload{
		Script:                    script,
		Arguments:                 arguments,
		ReferenceBlockID:          referenceBlockID,
		GasLimit:                  gasLimit,
		ProposalKeyAddress:        a.address,
		ProposalKeyID:             a.PrimaryKeyID(),
		ProposalKeySequenceNumber: sequenceNumber,
		Payer:                     a.address,
		Authorizers:               [][]byte{a.address},
	}
}

// SendTransactionHeader signs header alone against the latest sealed block and submits it,
// returning the transaction id. Concurrent calls for the same account race on the sequence
// number.
func (a *Account[K, P]) SendTransactionHeader(ctx context.Context, header transaction.Header) ([]byte, error) {
	seq, err := a.PrimaryKeySequenceNumber(ctx)
	if err != nil {
		return nil, err
	}
	latest, err := a.client.LatestBlockHeader(ctx, true)
	if err != nil {
		return nil, custom("latest block header", err)
	}

	gasLimit := transaction.DefaultGasLimit
	sigs, err := a.SignTransactionHeader(header, latest.ID, seq, gasLimit).Collect()
	if err != nil {
		return nil, err
	}

	payload := a.selfPayload([]byte(header.Script), header.Arguments, latest.ID, seq, gasLimit)
	tx := &transaction.Transaction{
		Script:           payload.Script,
		Arguments:        payload.Arguments,
		ReferenceBlockID: payload.ReferenceBlockID,
		GasLimit:         payload.GasLimit,
		ProposalKey: transaction.ProposalKey{
			Address:        a.address,
			KeyID:          a.PrimaryKeyID(),
			SequenceNumber: seq,
		},
		Payer:              a.address,
		Authorizers:        payload.Authorizers,
		EnvelopeSignatures: a.signatures(sigs),
	}

	id, err := a.client.SendTransaction(ctx, tx)
	if err != nil {
		return nil, custom("send transaction", err)
	}
	log.Debug().Msgf("Sent transaction %x from 0x%x", id, a.address)
	return id, nil
}

func (a *Account[K, P]) signatures(sigs []sign.Signature) []transaction.Signature {
	out := make([]transaction.Signature, len(sigs))
	for i, s := range sigs {
		out[i] = transaction.Signature{Address: a.address, KeyID: s.KeyID, Signature: s.Signature}
	}
	return out
}

// SignParty adds a payload signature for every key of the account.
func (a *Account[K, P]) SignParty(p party.Party) error {
	sigs, err := a.Sign(p.Payload()).Collect()
	if err != nil {
		return err
	}
	for _, s := range sigs {
		if err := p.AddPayloadSignature(a.address, s.KeyID, s.Signature); err != nil {
			return err
		}
	}
	return nil
}

// SignPartyAsPayer signs the envelope and turns the party into a transaction.
func (a *Account[K, P]) SignPartyAsPayer(p party.Party) (*transaction.Transaction, error) {
	if !bytes.Equal(transaction.PadAddress(a.address), transaction.PadAddress(p.Payer())) {
		return nil, errors.Wrapf(ErrNotPayer, "payer is 0x%x", p.Payer())
	}
	sigs, err := a.Sign(p.Envelope()).Collect()
	if err != nil {
		return nil, err
	}
	return p.IntoTransactionWithEnvelopeSignatures(a.signatures(sigs))
}
