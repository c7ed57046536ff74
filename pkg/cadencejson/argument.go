package cadencejson

import "github.com/pkg/errors"

// Argument lets a Value sit inside structs that are marshalled with encoding/json
// compatible libraries.
type Argument struct {
	Value Value
}

func (a Argument) MarshalJSON() ([]byte, error) {
	return Encode(a.Value)
}

func (a *Argument) UnmarshalJSON(data []byte) error {
	v, err := Decode(data)
	if err != nil {
		return err
	}
	a.Value = v
	return nil
}

// EncodeArguments encodes values into transaction argument blobs, in order.
func EncodeArguments(values ...Value) ([][]byte, error) {
	out := make([][]byte, 0, len(values))
	for i, v := range values {
		b, err := Encode(v)
		if err != nil {
			return nil, errors.Wrapf(err, "argument %d", i)
		}
		out = append(out, b)
	}
	return out, nil
}

// ParseArguments decodes transaction argument blobs back into values.
func ParseArguments(args [][]byte) ([]Value, error) {
	out := make([]Value, 0, len(args))
	for i, arg := range args {
		v, err := Decode(arg)
		if err != nil {
			return nil, errors.Wrapf(err, "argument %d", i)
		}
		out = append(out, v)
	}
	return out, nil
}
