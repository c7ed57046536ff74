package cadencejson

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	int128Min  = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	int128Max  = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	uint128Max = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	int256Min  = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 255))
	int256Max  = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 255), big.NewInt(1))
)

// DecodeError reports where in the document decoding failed.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return "cadencejson: " + e.Err.Error()
	}
	return fmt.Sprintf("cadencejson: %s: %s", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

var (
	ErrMissingType  = errors.New(`expected a "type" entry`)
	ErrMissingValue = errors.New(`expected a "value" entry`)
	ErrUnknownType  = errors.New("unknown type")
	// ErrNotCanonical is returned for text that encoding would not reproduce, such as uppercase
	// address digits or a leading plus sign.
	ErrNotCanonical = errors.New("value is not in canonical form")
)

type wireValue struct {
	Type  *string             `json:"type"`
	Value jsoniter.RawMessage `json:"value"`
}

type wireEntry struct {
	Key   jsoniter.RawMessage `json:"key"`
	Value jsoniter.RawMessage `json:"value"`
}

type wireField struct {
	Name  string              `json:"name"`
	Value jsoniter.RawMessage `json:"value"`
}

type wireComposite struct {
	ID     *string     `json:"id"`
	Fields []wireField `json:"fields"`
}

type wirePath struct {
	Domain     string `json:"domain"`
	Identifier string `json:"identifier"`
}

type wireType struct {
	StaticType *string `json:"staticType"`
}

type wireCapability struct {
	Path       string `json:"path"`
	Address    string `json:"address"`
	BorrowType string `json:"borrowType"`
}

// Decode parses one JSON-Cadence document.
func Decode(data []byte) (Value, error) {
	return decodeValue(data, "")
}

func decodeValue(data []byte, path string) (Value, error) {
	var w wireValue
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	if w.Type == nil {
		return nil, &DecodeError{Path: path, Err: ErrMissingType}
	}
	kind := Kind(*w.Type)
	if kind == KindVoid {
		return Void{}, nil
	}
	if w.Value == nil {
		return nil, &DecodeError{Path: path, Err: ErrMissingValue}
	}

	v, err := decodeKind(kind, w.Value, path)
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			return nil, err
		}
		return nil, &DecodeError{Path: path, Err: errors.Wrapf(err, "decoding %s", kind)}
	}
	return v, nil
}

func decodeKind(kind Kind, raw jsoniter.RawMessage, path string) (Value, error) {
	switch kind {
	case KindOptional:
		if isNull(raw) {
			return Optional{}, nil
		}
		inner, err := decodeValue(raw, path+".value")
		if err != nil {
			return nil, err
		}
		return Optional{Value: inner}, nil
	case KindBool:
		var b bool
		if err := unmarshalStrict(raw, &b); err != nil {
			return nil, err
		}
		return Bool(b), nil
	case KindString:
		var s string
		if err := unmarshalStrict(raw, &s); err != nil {
			return nil, err
		}
		return String(s), nil
	case KindArray:
		return decodeArray(raw, path)
	case KindDictionary:
		return decodeDictionary(raw, path)
	case KindStruct, KindResource, KindEvent, KindContract, KindEnum:
		return decodeComposite(kind, raw, path)
	case KindPath:
		var p wirePath
		if err := unmarshalStrict(raw, &p); err != nil {
			return nil, err
		}
		domain := PathDomain(p.Domain)
		if !domain.valid() {
			return nil, errors.Errorf("unknown path domain %q", p.Domain)
		}
		return Path{Domain: domain, Identifier: p.Identifier}, nil
	case KindType:
		var t wireType
		if err := unmarshalStrict(raw, &t); err != nil {
			return nil, err
		}
		if t.StaticType == nil {
			return nil, errors.New(`expected a "staticType" entry`)
		}
		return TypeValue{StaticType: *t.StaticType}, nil
	case KindCapability:
		var c wireCapability
		if err := unmarshalStrict(raw, &c); err != nil {
			return nil, err
		}
		addr, err := parseWireAddress(c.Address)
		if err != nil {
			return nil, err
		}
		return Capability{Path: c.Path, Address: addr, BorrowType: c.BorrowType}, nil
	}

	var text string
	if err := unmarshalStrict(raw, &text); err != nil {
		if isScalar(kind) {
			return nil, err
		}
		return nil, errors.Wrapf(ErrUnknownType, "%q", kind)
	}
	return decodeScalar(kind, text)
}

func decodeScalar(kind Kind, text string) (Value, error) {
	if strings.HasPrefix(text, "+") {
		return nil, errors.Wrapf(ErrNotCanonical, "%s %q", kind, text)
	}
	switch kind {
	case KindAddress:
		return parseWireAddress(text)
	case KindInt:
		n, err := parseBig(text)
		if err != nil {
			return nil, err
		}
		return Int{Value: n}, nil
	case KindUInt:
		n, err := parseBigInRange(text, big.NewInt(0), nil)
		if err != nil {
			return nil, err
		}
		return UInt{Value: n}, nil
	case KindInt8:
		n, err := strconv.ParseInt(text, 10, 8)
		return Int8(n), err
	case KindInt16:
		n, err := strconv.ParseInt(text, 10, 16)
		return Int16(n), err
	case KindInt32:
		n, err := strconv.ParseInt(text, 10, 32)
		return Int32(n), err
	case KindInt64:
		n, err := strconv.ParseInt(text, 10, 64)
		return Int64(n), err
	case KindInt128:
		n, err := parseBigInRange(text, int128Min, int128Max)
		if err != nil {
			return nil, err
		}
		return Int128{Value: n}, nil
	case KindInt256:
		n, err := parseBigInRange(text, int256Min, int256Max)
		if err != nil {
			return nil, err
		}
		return Int256{Value: n}, nil
	case KindUInt8:
		n, err := strconv.ParseUint(text, 10, 8)
		return UInt8(n), err
	case KindUInt16:
		n, err := strconv.ParseUint(text, 10, 16)
		return UInt16(n), err
	case KindUInt32:
		n, err := strconv.ParseUint(text, 10, 32)
		return UInt32(n), err
	case KindUInt64:
		n, err := strconv.ParseUint(text, 10, 64)
		return UInt64(n), err
	case KindUInt128:
		n, err := parseBigInRange(text, big.NewInt(0), uint128Max)
		if err != nil {
			return nil, err
		}
		return UInt128{Value: n}, nil
	case KindUInt256:
		n, err := uint256.FromDecimal(text)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid UInt256 %q", text)
		}
		return UInt256{Value: n}, nil
	case KindWord8:
		n, err := strconv.ParseUint(text, 10, 8)
		return Word8(n), err
	case KindWord16:
		n, err := strconv.ParseUint(text, 10, 16)
		return Word16(n), err
	case KindWord32:
		n, err := strconv.ParseUint(text, 10, 32)
		return Word32(n), err
	case KindWord64:
		n, err := strconv.ParseUint(text, 10, 64)
		return Word64(n), err
	case KindFix64:
		return ParseFix64(text)
	case KindUFix64:
		return ParseUFix64(text)
	}
	return nil, errors.Wrapf(ErrUnknownType, "%q", kind)
}

func decodeArray(raw jsoniter.RawMessage, path string) (Value, error) {
	var items []jsoniter.RawMessage
	if err := unmarshalStrict(raw, &items); err != nil {
		return nil, err
	}
	out := make(Array, 0, len(items))
	for i, item := range items {
		v, err := decodeValue(item, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func decodeDictionary(raw jsoniter.RawMessage, path string) (Value, error) {
	var entries []wireEntry
	if err := unmarshalStrict(raw, &entries); err != nil {
		return nil, err
	}
	out := make(Dictionary, 0, len(entries))
	for i, e := range entries {
		at := fmt.Sprintf("%s[%d]", path, i)
		if e.Key == nil || e.Value == nil {
			return nil, &DecodeError{Path: at, Err: errors.New(`dictionary entry needs "key" and "value"`)}
		}
		k, err := decodeValue(e.Key, at+".key")
		if err != nil {
			return nil, err
		}
		v, err := decodeValue(e.Value, at+".value")
		if err != nil {
			return nil, err
		}
		out = append(out, Entry{Key: k, Value: v})
	}
	return out, nil
}

func decodeComposite(kind Kind, raw jsoniter.RawMessage, path string) (Value, error) {
	var wc wireComposite
	if err := unmarshalStrict(raw, &wc); err != nil {
		return nil, err
	}
	if wc.ID == nil {
		return nil, errors.New(`expected an "id" entry`)
	}
	c := Composite{ID: *wc.ID, Fields: make([]Field, 0, len(wc.Fields))}
	for _, f := range wc.Fields {
		v, err := decodeValue(f.Value, path+"."+f.Name)
		if err != nil {
			return nil, err
		}
		c.Fields = append(c.Fields, Field{Name: f.Name, Value: v})
	}

	switch kind {
	case KindStruct:
		return Struct{c}, nil
	case KindResource:
		return Resource{c}, nil
	case KindEvent:
		return Event{c}, nil
	case KindContract:
		return Contract{c}, nil
	}
	return Enum{c}, nil
}

// parseWireAddress accepts lowercase digits only, the form Address.String produces.
func parseWireAddress(text string) (Address, error) {
	if strings.ToLower(text) != text {
		return nil, errors.Wrapf(ErrNotCanonical, "address %q", text)
	}
	return ParseAddress(text)
}

func parseBig(text string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return nil, errors.Errorf("invalid integer %q", text)
	}
	return n, nil
}

// parseBigInRange checks min <= n <= max; a nil bound is open.
func parseBigInRange(text string, min, max *big.Int) (*big.Int, error) {
	n, err := parseBig(text)
	if err != nil {
		return nil, err
	}
	if (min != nil && n.Cmp(min) < 0) || (max != nil && n.Cmp(max) > 0) {
		return nil, errors.Errorf("integer %s out of range", text)
	}
	return n, nil
}

// unmarshalStrict refuses null where a concrete value is required.
func unmarshalStrict(raw jsoniter.RawMessage, out interface{}) error {
	if isNull(raw) {
		return errors.New("unexpected null value")
	}
	return json.Unmarshal(raw, out)
}

func isNull(raw jsoniter.RawMessage) bool {
	return jsoniter.Get(raw).ValueType() == jsoniter.NilValue
}

func isScalar(kind Kind) bool {
	switch kind {
	case KindAddress, KindInt, KindUInt, KindInt8, KindInt16, KindInt32, KindInt64, KindInt128, KindInt256,
		KindUInt8, KindUInt16, KindUInt32, KindUInt64, KindUInt128, KindUInt256,
		KindWord8, KindWord16, KindWord32, KindWord64, KindFix64, KindUFix64:
		return true
	}
	return false
}
