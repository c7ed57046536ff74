package access

import (
	"time"

	"github.com/pkg/errors"

	"github.com/kollektive-hackathon/flowkit/pkg/cadencejson"
)

type Account struct {
	Address   []byte
	Balance   uint64
	Code      []byte
	Keys      []AccountKey
	Contracts map[string][]byte
}

type AccountKey struct {
	Index          uint32
	PublicKey      []byte
	SignAlgo       uint32
	HashAlgo       uint32
	Weight         uint32
	SequenceNumber uint64
	Revoked        bool
}

// Timestamp is a wire timestamp.
type Timestamp struct {
	Seconds int64
	Nanos   int32
}

func TimestampFrom(t time.Time) Timestamp {
	return Timestamp{Seconds: t.Unix(), Nanos: int32(t.Nanosecond())}
}

func (t Timestamp) Time() time.Time {
	return time.Unix(t.Seconds, int64(t.Nanos)).UTC()
}

type BlockHeader struct {
	ID        []byte
	ParentID  []byte
	Height    uint64
	Timestamp Timestamp
}

type CollectionGuarantee struct {
	CollectionID []byte
}

type BlockSeal struct {
	BlockID            []byte
	ExecutionReceiptID []byte
}

type Block struct {
	BlockHeader
	CollectionGuarantees []CollectionGuarantee
	Seals                []BlockSeal
}

type Collection struct {
	ID             []byte
	TransactionIDs [][]byte
}

type Event struct {
	Type             string
	TransactionID    []byte
	TransactionIndex uint32
	EventIndex       uint32
	Payload          []byte
}

var ErrNotAnEvent = errors.New("event payload is not an Event value")

// ParsePayload decodes the JSON-Cadence payload of the event.
func (e Event) ParsePayload() (cadencejson.Event, error) {
	v, err := cadencejson.Decode(e.Payload)
	if err != nil {
		return cadencejson.Event{}, err
	}
	ev, ok := v.(cadencejson.Event)
	if !ok {
		return cadencejson.Event{}, errors.Wrapf(ErrNotAnEvent, "got %s", v.Kind())
	}
	return ev, nil
}

type BlockEvents struct {
	BlockID        []byte
	Height         uint64
	BlockTimestamp Timestamp
	Events         []Event
}

type TransactionStatus uint8

const (
	StatusUnknown TransactionStatus = iota
	StatusPending
	StatusFinalized
	StatusExecuted
	StatusSealed
	StatusExpired
)

func (s TransactionStatus) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusFinalized:
		return "FINALIZED"
	case StatusExecuted:
		return "EXECUTED"
	case StatusSealed:
		return "SEALED"
	case StatusExpired:
		return "EXPIRED"
	}
	return "UNKNOWN"
}

// Final reports whether the status can no longer change.
func (s TransactionStatus) Final() bool {
	return s == StatusSealed || s == StatusExpired
}

type TransactionResult struct {
	Status       TransactionStatus
	StatusCode   uint32
	ErrorMessage string
	Events       []Event
}

const accountCreatedEvent = "flow.AccountCreated"

// CreatedAccountAddress returns the address from the first flow.AccountCreated event in the result.
func CreatedAccountAddress(result *TransactionResult) (cadencejson.Address, bool, error) {
	for _, e := range result.Events {
		if e.Type != accountCreatedEvent {
			continue
		}
		ev, err := e.ParsePayload()
		if err != nil {
			return nil, false, err
		}
		field, ok := ev.Field("address")
		if !ok {
			return nil, false, errors.Errorf("%s event without address field", accountCreatedEvent)
		}
		return cadencejson.MustAddress(field), true, nil
	}
	return nil, false, nil
}
