package transaction

import (
	"github.com/pkg/errors"

	"github.com/kollektive-hackathon/flowkit/pkg/cadencejson"
)

var ErrMissingScript = errors.New("transaction script is not set")

// Header is a transaction template: a script plus its encoded arguments.
type Header struct {
	Script    string
	Arguments [][]byte
}

type HeaderBuilder struct {
	script    *string
	arguments [][]byte
	err       error
}

func NewHeaderBuilder() *HeaderBuilder {
	return &HeaderBuilder{}
}

func (b *HeaderBuilder) Script(script string) *HeaderBuilder {
	b.script = &script
	return b
}

func (b *HeaderBuilder) Argument(v cadencejson.Value) *HeaderBuilder {
	return b.Arguments(v)
}

func (b *HeaderBuilder) Arguments(values ...cadencejson.Value) *HeaderBuilder {
	if b.err != nil {
		return b
	}
	args, err := cadencejson.EncodeArguments(values...)
	if err != nil {
		b.err = err
		return b
	}
	b.arguments = append(b.arguments, args...)
	return b
}

// ArgumentRaw appends an already encoded argument.
func (b *HeaderBuilder) ArgumentRaw(arg []byte) *HeaderBuilder {
	b.arguments = append(b.arguments, arg)
	return b
}

func (b *HeaderBuilder) Build() (Header, error) {
	if b.err != nil {
		return Header{}, b.err
	}
	if b.script == nil {
		return Header{}, ErrMissingScript
	}
	return Header{Script: *b.script, Arguments: b.arguments}, nil
}
