package account

import (
	"github.com/pkg/errors"

	"github.com/kollektive-hackathon/flowkit/pkg/sign"
)

var (
	ErrNoMatchingKeyFound = errors.New("could not find a matching key for the secret key")
	ErrAlgoMismatch       = errors.New("the hashing and signing algorithms do not match the account key")
	ErrNotEnoughWeight    = errors.New("the keys do not have enough weight")
	ErrKeyRevoked         = errors.New("a key was revoked")
	ErrNotPayer           = errors.New("account is not the payer of the party")

	ErrTooFewKeys             = sign.ErrTooFewKeys
	ErrPrimaryIndexOutOfRange = sign.ErrPrimaryIndexOutOfRange
)

// CustomError carries a failure of the access client.
type CustomError struct {
	Op  string
	Err error
}

func custom(op string, err error) error {
	return &CustomError{Op: op, Err: errors.WithStack(err)}
}

func (e *CustomError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *CustomError) Unwrap() error { return e.Err }

func (e *CustomError) Cause() error { return errors.Cause(e.Err) }
