// Package cadencejson implements the JSON-Cadence interchange format used by the
// Flow access API for script arguments, script results and event payloads.
//
// Every value travels as {"type": <Kind>, "value": <kind specific JSON>}, except
// Void which carries no "value" entry at all.
package cadencejson

import (
	"math/big"

	"github.com/holiman/uint256"
)

type Kind string

const (
	KindVoid       Kind = "Void"
	KindOptional   Kind = "Optional"
	KindBool       Kind = "Bool"
	KindString     Kind = "String"
	KindAddress    Kind = "Address"
	KindInt        Kind = "Int"
	KindInt8       Kind = "Int8"
	KindInt16      Kind = "Int16"
	KindInt32      Kind = "Int32"
	KindInt64      Kind = "Int64"
	KindInt128     Kind = "Int128"
	KindInt256     Kind = "Int256"
	KindUInt       Kind = "UInt"
	KindUInt8      Kind = "UInt8"
	KindUInt16     Kind = "UInt16"
	KindUInt32     Kind = "UInt32"
	KindUInt64     Kind = "UInt64"
	KindUInt128    Kind = "UInt128"
	KindUInt256    Kind = "UInt256"
	KindWord8      Kind = "Word8"
	KindWord16     Kind = "Word16"
	KindWord32     Kind = "Word32"
	KindWord64     Kind = "Word64"
	KindFix64      Kind = "Fix64"
	KindUFix64     Kind = "UFix64"
	KindArray      Kind = "Array"
	KindDictionary Kind = "Dictionary"
	KindStruct     Kind = "Struct"
	KindResource   Kind = "Resource"
	KindEvent      Kind = "Event"
	KindContract   Kind = "Contract"
	KindEnum       Kind = "Enum"
	KindPath       Kind = "Path"
	KindType       Kind = "Type"
	KindCapability Kind = "Capability"
)

// Value is one decoded JSON-Cadence value. The set of implementations is closed.
type Value interface {
	Kind() Kind
	isValue()
}

type Void struct{}

type Bool bool

type String string

type Int8 int8
type Int16 int16
type Int32 int32
type Int64 int64

type UInt8 uint8
type UInt16 uint16
type UInt32 uint32
type UInt64 uint64

// Word types wrap around on overflow, which is exactly how Go unsigned integers behave.
type Word8 uint8
type Word16 uint16
type Word32 uint32
type Word64 uint64

// Int is an arbitrary-precision signed integer.
type Int struct{ Value *big.Int }

// UInt is an arbitrary-precision unsigned integer.
type UInt struct{ Value *big.Int }

type Int128 struct{ Value *big.Int }
type UInt128 struct{ Value *big.Int }
type Int256 struct{ Value *big.Int }
type UInt256 struct{ Value *uint256.Int }

type Optional struct {
	// Value is nil when the optional is empty.
	Value Value
}

type Array []Value

type Entry struct {
	Key   Value
	Value Value
}

// Dictionary keeps entries in wire order.
type Dictionary []Entry

type Field struct {
	Name  string
	Value Value
}

// Composite is the shared shape of structs, resources, events, contracts and enums.
type Composite struct {
	ID     string
	Fields []Field
}

// Field returns the value of the first field called name.
func (c Composite) Field(name string) (Value, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

type Struct struct{ Composite }
type Resource struct{ Composite }
type Event struct{ Composite }
type Contract struct{ Composite }
type Enum struct{ Composite }

type PathDomain string

const (
	DomainStorage PathDomain = "storage"
	DomainPrivate PathDomain = "private"
	DomainPublic  PathDomain = "public"
)

func (d PathDomain) valid() bool {
	return d == DomainStorage || d == DomainPrivate || d == DomainPublic
}

type Path struct {
	Domain     PathDomain
	Identifier string
}

// TypeValue is a run-time type, e.g. {"type":"Type","value":{"staticType":"Int"}}.
type TypeValue struct {
	StaticType string
}

type Capability struct {
	Path       string
	Address    Address
	BorrowType string
}

func NewInt(i int64) Int         { return Int{Value: big.NewInt(i)} }
func NewUInt(u uint64) UInt      { return UInt{Value: new(big.Int).SetUint64(u)} }
func NewUInt256(u uint64) UInt256 { return UInt256{Value: uint256.NewInt(u)} }

func NewOptional(v Value) Optional { return Optional{Value: v} }

func (Void) Kind() Kind       { return KindVoid }
func (Bool) Kind() Kind       { return KindBool }
func (String) Kind() Kind     { return KindString }
func (Address) Kind() Kind    { return KindAddress }
func (Int) Kind() Kind        { return KindInt }
func (Int8) Kind() Kind       { return KindInt8 }
func (Int16) Kind() Kind      { return KindInt16 }
func (Int32) Kind() Kind      { return KindInt32 }
func (Int64) Kind() Kind      { return KindInt64 }
func (Int128) Kind() Kind     { return KindInt128 }
func (Int256) Kind() Kind     { return KindInt256 }
func (UInt) Kind() Kind       { return KindUInt }
func (UInt8) Kind() Kind      { return KindUInt8 }
func (UInt16) Kind() Kind     { return KindUInt16 }
func (UInt32) Kind() Kind     { return KindUInt32 }
func (UInt64) Kind() Kind     { return KindUInt64 }
func (UInt128) Kind() Kind    { return KindUInt128 }
func (UInt256) Kind() Kind    { return KindUInt256 }
func (Word8) Kind() Kind      { return KindWord8 }
func (Word16) Kind() Kind     { return KindWord16 }
func (Word32) Kind() Kind     { return KindWord32 }
func (Word64) Kind() Kind     { return KindWord64 }
func (Fix64) Kind() Kind      { return KindFix64 }
func (UFix64) Kind() Kind     { return KindUFix64 }
func (Optional) Kind() Kind   { return KindOptional }
func (Array) Kind() Kind      { return KindArray }
func (Dictionary) Kind() Kind { return KindDictionary }
func (Struct) Kind() Kind     { return KindStruct }
func (Resource) Kind() Kind   { return KindResource }
func (Event) Kind() Kind      { return KindEvent }
func (Contract) Kind() Kind   { return KindContract }
func (Enum) Kind() Kind       { return KindEnum }
func (Path) Kind() Kind       { return KindPath }
func (TypeValue) Kind() Kind  { return KindType }
func (Capability) Kind() Kind { return KindCapability }

func (Void) isValue()       {}
func (Bool) isValue()       {}
func (String) isValue()     {}
func (Address) isValue()    {}
func (Int) isValue()        {}
func (Int8) isValue()       {}
func (Int16) isValue()      {}
func (Int32) isValue()      {}
func (Int64) isValue()      {}
func (Int128) isValue()     {}
func (Int256) isValue()     {}
func (UInt) isValue()       {}
func (UInt8) isValue()      {}
func (UInt16) isValue()     {}
func (UInt32) isValue()     {}
func (UInt64) isValue()     {}
func (UInt128) isValue()    {}
func (UInt256) isValue()    {}
func (Word8) isValue()      {}
func (Word16) isValue()     {}
func (Word32) isValue()     {}
func (Word64) isValue()     {}
func (Fix64) isValue()      {}
func (UFix64) isValue()     {}
func (Optional) isValue()   {}
func (Array) isValue()      {}
func (Dictionary) isValue() {}
func (Struct) isValue()     {}
func (Resource) isValue()   {}
func (Event) isValue()      {}
func (Contract) isValue()   {}
func (Enum) isValue()       {}
func (Path) isValue()       {}
func (TypeValue) isValue()  {}
func (Capability) isValue() {}
