package cadencejson

import (
	"bytes"
	"math/big"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// Encode writes v as a JSON-Cadence document. Keys are written in a fixed order.
func Encode(v Value) ([]byte, error) {
	stream := json.BorrowStream(nil)
	defer json.ReturnStream(stream)

	if err := encodeValue(stream, v); err != nil {
		return nil, err
	}
	if stream.Error != nil {
		return nil, errors.Wrap(stream.Error, "cadencejson: encode")
	}
	out := make([]byte, len(stream.Buffer()))
	copy(out, stream.Buffer())
	return out, nil
}

// MustEncode is Encode for values built in code, where failure is a programming error.
func MustEncode(v Value) []byte {
	b, err := Encode(v)
	if err != nil {
		panic(err)
	}
	return b
}

// Equal reports whether a and b encode to the same document.
func Equal(a, b Value) bool {
	ea, err := Encode(a)
	if err != nil {
		return false
	}
	eb, err := Encode(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ea, eb)
}

func encodeValue(s *jsoniter.Stream, v Value) error {
	if v == nil {
		return errors.New("cadencejson: cannot encode nil value")
	}
	s.WriteObjectStart()
	s.WriteObjectField("type")
	s.WriteString(string(v.Kind()))
	if _, void := v.(Void); void {
		s.WriteObjectEnd()
		return nil
	}
	s.WriteMore()
	s.WriteObjectField("value")
	if err := encodeInner(s, v); err != nil {
		return err
	}
	s.WriteObjectEnd()
	return nil
}

func encodeInner(s *jsoniter.Stream, v Value) error {
	switch t := v.(type) {
	case Bool:
		s.WriteBool(bool(t))
	case String:
		s.WriteString(string(t))
	case Address:
		s.WriteString(t.String())
	case Int:
		return writeBig(s, t.Value)
	case UInt:
		return writeBig(s, t.Value)
	case Int128:
		return writeBig(s, t.Value)
	case UInt128:
		return writeBig(s, t.Value)
	case Int256:
		return writeBig(s, t.Value)
	case UInt256:
		if t.Value == nil {
			return errors.New("cadencejson: UInt256 without value")
		}
		s.WriteString(t.Value.Dec())
	case Int8:
		s.WriteString(strconv.FormatInt(int64(t), 10))
	case Int16:
		s.WriteString(strconv.FormatInt(int64(t), 10))
	case Int32:
		s.WriteString(strconv.FormatInt(int64(t), 10))
	case Int64:
		s.WriteString(strconv.FormatInt(int64(t), 10))
	case UInt8:
		s.WriteString(strconv.FormatUint(uint64(t), 10))
	case UInt16:
		s.WriteString(strconv.FormatUint(uint64(t), 10))
	case UInt32:
		s.WriteString(strconv.FormatUint(uint64(t), 10))
	case UInt64:
		s.WriteString(strconv.FormatUint(uint64(t), 10))
	case Word8:
		s.WriteString(strconv.FormatUint(uint64(t), 10))
	case Word16:
		s.WriteString(strconv.FormatUint(uint64(t), 10))
	case Word32:
		s.WriteString(strconv.FormatUint(uint64(t), 10))
	case Word64:
		s.WriteString(strconv.FormatUint(uint64(t), 10))
	case Fix64:
		s.WriteString(t.String())
	case UFix64:
		s.WriteString(t.String())
	case Optional:
		if t.Value == nil {
			s.WriteNil()
			return nil
		}
		return encodeValue(s, t.Value)
	case Array:
		s.WriteArrayStart()
		for i, item := range t {
			if i > 0 {
				s.WriteMore()
			}
			if err := encodeValue(s, item); err != nil {
				return err
			}
		}
		s.WriteArrayEnd()
	case Dictionary:
		s.WriteArrayStart()
		for i, e := range t {
			if i > 0 {
				s.WriteMore()
			}
			s.WriteObjectStart()
			s.WriteObjectField("key")
			if err := encodeValue(s, e.Key); err != nil {
				return err
			}
			s.WriteMore()
			s.WriteObjectField("value")
			if err := encodeValue(s, e.Value); err != nil {
				return err
			}
			s.WriteObjectEnd()
		}
		s.WriteArrayEnd()
	case Struct:
		return encodeComposite(s, t.Composite)
	case Resource:
		return encodeComposite(s, t.Composite)
	case Event:
		return encodeComposite(s, t.Composite)
	case Contract:
		return encodeComposite(s, t.Composite)
	case Enum:
		return encodeComposite(s, t.Composite)
	case Path:
		if !t.Domain.valid() {
			return errors.Errorf("cadencejson: unknown path domain %q", t.Domain)
		}
		s.WriteObjectStart()
		s.WriteObjectField("domain")
		s.WriteString(string(t.Domain))
		s.WriteMore()
		s.WriteObjectField("identifier")
		s.WriteString(t.Identifier)
		s.WriteObjectEnd()
	case TypeValue:
		s.WriteObjectStart()
		s.WriteObjectField("staticType")
		s.WriteString(t.StaticType)
		s.WriteObjectEnd()
	case Capability:
		s.WriteObjectStart()
		s.WriteObjectField("path")
		s.WriteString(t.Path)
		s.WriteMore()
		s.WriteObjectField("address")
		s.WriteString(t.Address.String())
		s.WriteMore()
		s.WriteObjectField("borrowType")
		s.WriteString(t.BorrowType)
		s.WriteObjectEnd()
	default:
		return errors.Errorf("cadencejson: cannot encode %T", v)
	}
	return nil
}

func encodeComposite(s *jsoniter.Stream, c Composite) error {
	s.WriteObjectStart()
	s.WriteObjectField("id")
	s.WriteString(c.ID)
	s.WriteMore()
	s.WriteObjectField("fields")
	s.WriteArrayStart()
	for i, f := range c.Fields {
		if i > 0 {
			s.WriteMore()
		}
		s.WriteObjectStart()
		s.WriteObjectField("name")
		s.WriteString(f.Name)
		s.WriteMore()
		s.WriteObjectField("value")
		if err := encodeValue(s, f.Value); err != nil {
			return err
		}
		s.WriteObjectEnd()
	}
	s.WriteArrayEnd()
	s.WriteObjectEnd()
	return nil
}

func writeBig(s *jsoniter.Stream, n *big.Int) error {
	if n == nil {
		return errors.New("cadencejson: integer without value")
	}
	s.WriteString(n.String())
	return nil
}
