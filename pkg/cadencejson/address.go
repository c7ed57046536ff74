package cadencejson

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Address is an account address as raw bytes. Its textual form is "0x" followed by lowercase hex.
type Address []byte

var (
	ErrAddressPrefix    = errors.New("address does not start with 0x")
	ErrAddressOddDigits = errors.New("odd number of digits")
)

func ParseAddress(s string) (Address, error) {
	if !strings.HasPrefix(s, "0x") {
		return nil, ErrAddressPrefix
	}
	digits := s[2:]
	if len(digits)%2 != 0 {
		return nil, ErrAddressOddDigits
	}
	b, err := hex.DecodeString(digits)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid address %q", s)
	}
	return b, nil
}

func (a Address) String() string {
	return "0x" + hex.EncodeToString(a)
}

func (a Address) Bytes() []byte {
	return []byte(a)
}

// MustAddress returns v as an Address. It panics otherwise, so it is only meant for
// fields whose shape is protocol-guaranteed, such as the address of flow.AccountCreated.
func MustAddress(v Value) Address {
	addr, ok := v.(Address)
	if !ok {
		panic(fmt.Sprintf("cadencejson: expected Address, got %T", v))
	}
	return addr
}
