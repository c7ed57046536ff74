package cadencejson_test

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kollektive-hackathon/flowkit/pkg/cadencejson"
)

func TestDecodeDocuments(t *testing.T) {
	maxUint256 := new(uint256.Int).SetAllOne()
	bigInt, _ := new(big.Int).SetString("-170141183460469231731687303715884105728", 10)

	tests := []struct {
		name string
		doc  string
		want cadencejson.Value
	}{
		{"void", `{"type":"Void"}`, cadencejson.Void{}},
		{"void ignores value", `{"type":"Void","value":12}`, cadencejson.Void{}},
		{"string", `{"type":"String","value":"Hello World"}`, cadencejson.String("Hello World")},
		{"bool", `{"type":"Bool","value":true}`, cadencejson.Bool(true)},
		{"address", `{"type":"Address","value":"0x0000000000000001"}`, cadencejson.Address{0, 0, 0, 0, 0, 0, 0, 1}},
		{"int8", `{"type":"Int8","value":"-128"}`, cadencejson.Int8(-128)},
		{"uint64", `{"type":"UInt64","value":"18446744073709551615"}`, cadencejson.UInt64(18446744073709551615)},
		{"word16", `{"type":"Word16","value":"65535"}`, cadencejson.Word16(65535)},
		{"int128 min", `{"type":"Int128","value":"-170141183460469231731687303715884105728"}`, cadencejson.Int128{Value: bigInt}},
		{"uint256 max", `{"type":"UInt256","value":"` + maxUint256.Dec() + `"}`, cadencejson.UInt256{Value: maxUint256}},
		{"fix64", `{"type":"Fix64","value":"-12.30000000"}`, cadencejson.Fix64FromRaw(-1230000000)},
		{"ufix64", `{"type":"UFix64","value":"1.00000000"}`, cadencejson.UFix64FromRaw(100000000)},
		{"key order", `{"value":"x","type":"String"}`, cadencejson.String("x")},
		{"optional none", `{"type":"Optional","value":null}`, cadencejson.Optional{}},
		{"optional some", `{"type":"Optional","value":{"type":"Int","value":"42"}}`, cadencejson.NewOptional(cadencejson.NewInt(42))},
		{"path", `{"type":"Path","value":{"domain":"storage","identifier":"flowTokenVault"}}`,
			cadencejson.Path{Domain: cadencejson.DomainStorage, Identifier: "flowTokenVault"}},
		{"type", `{"type":"Type","value":{"staticType":"Int"}}`, cadencejson.TypeValue{StaticType: "Int"}},
		{"capability", `{"type":"Capability","value":{"path":"/public/x","address":"0x01","borrowType":"&Int"}}`,
			cadencejson.Capability{Path: "/public/x", Address: cadencejson.Address{1}, BorrowType: "&Int"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cadencejson.Decode([]byte(tt.doc))
			require.NoError(t, err)
			assert.True(t, cadencejson.Equal(tt.want, got), "got %#v", got)
		})
	}
}

func TestDecodeDeeplyNestedArray(t *testing.T) {
	doc := `{"type":"Array","value":[{"type":"Array","value":[{"type":"Array","value":[{"type":"Array","value":[]}]}]}]}`

	got, err := cadencejson.Decode([]byte(doc))
	require.NoError(t, err)

	want := cadencejson.Array{cadencejson.Array{cadencejson.Array{cadencejson.Array{}}}}
	assert.True(t, cadencejson.Equal(want, got))

	arr := got.(cadencejson.Array)
	require.Len(t, arr, 1)
	inner := arr[0].(cadencejson.Array)
	require.Len(t, inner, 1)
}

func TestDecodeEventComposite(t *testing.T) {
	doc := `{
		"type": "Event",
		"value": {
			"id": "flow.AccountCreated",
			"fields": [
				{"name": "address", "value": {"type": "Address", "value": "0x01cf0e2f2f715450"}}
			]
		}
	}`

	got, err := cadencejson.Decode([]byte(doc))
	require.NoError(t, err)

	event, ok := got.(cadencejson.Event)
	require.True(t, ok)
	assert.Equal(t, "flow.AccountCreated", event.ID)

	field, ok := event.Field("address")
	require.True(t, ok)
	assert.Equal(t, "0x01cf0e2f2f715450", cadencejson.MustAddress(field).String())

	_, ok = event.Field("missing")
	assert.False(t, ok)
}

func TestDictionaryKeepsWireOrder(t *testing.T) {
	doc := `{"type":"Dictionary","value":[
		{"key":{"type":"String","value":"b"},"value":{"type":"UInt8","value":"2"}},
		{"key":{"type":"String","value":"a"},"value":{"type":"UInt8","value":"1"}}
	]}`

	got, err := cadencejson.Decode([]byte(doc))
	require.NoError(t, err)

	dict := got.(cadencejson.Dictionary)
	require.Len(t, dict, 2)
	assert.Equal(t, cadencejson.String("b"), dict[0].Key)
	assert.Equal(t, cadencejson.String("a"), dict[1].Key)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"missing type", `{"value":"1"}`, cadencejson.ErrMissingType},
		{"missing value", `{"type":"Int"}`, cadencejson.ErrMissingValue},
		{"unknown type", `{"type":"Int512","value":"1"}`, cadencejson.ErrUnknownType},
		{"odd address", `{"type":"Address","value":"0x1"}`, cadencejson.ErrAddressOddDigits},
		{"address prefix", `{"type":"Address","value":"01"}`, cadencejson.ErrAddressPrefix},
		{"nested missing value", `{"type":"Array","value":[{"type":"Bool"}]}`, cadencejson.ErrMissingValue},
		{"uppercase address", `{"type":"Address","value":"0x00000000000000AB"}`, cadencejson.ErrNotCanonical},
		{"uppercase prefix", `{"type":"Address","value":"0X01"}`, cadencejson.ErrNotCanonical},
		{"plus sign", `{"type":"Int64","value":"+5"}`, cadencejson.ErrNotCanonical},
		{"plus sign big", `{"type":"Int256","value":"+5"}`, cadencejson.ErrNotCanonical},
		{"plus sign fixed", `{"type":"UFix64","value":"+1.00000000"}`, cadencejson.ErrNotCanonical},
		{"capability address", `{"type":"Capability","value":{"path":"/public/x","address":"0xAB","borrowType":"T"}}`, cadencejson.ErrNotCanonical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cadencejson.Decode([]byte(tt.doc))
			assert.Nil(t, got)
			assert.ErrorIs(t, err, tt.want)

			var de *cadencejson.DecodeError
			assert.ErrorAs(t, err, &de)
		})
	}
}

func TestDecodeRejectsBadScalars(t *testing.T) {
	for _, doc := range []string{
		`{"type":"Int8","value":"128"}`,
		`{"type":"UInt","value":"-1"}`,
		`{"type":"UInt128","value":"340282366920938463463374607431768211456"}`,
		`{"type":"Int","value":"12a"}`,
		`{"type":"Int","value":12}`,
		`{"type":"Bool","value":null}`,
		`{"type":"UFix64","value":"-1.0"}`,
		`{"type":"Path","value":{"domain":"attic","identifier":"x"}}`,
		`{"type":"Struct","value":{"fields":[]}}`,
	} {
		_, err := cadencejson.Decode([]byte(doc))
		assert.Error(t, err, doc)
	}
}

func TestEncodeVoidOmitsValue(t *testing.T) {
	b, err := cadencejson.Encode(cadencejson.Void{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Void"}`, string(b))
}

func TestEncodeArgumentsRoundTrip(t *testing.T) {
	big256, _ := new(big.Int).SetString("-57896044618658097711785492504343953926634992332820282019728792003956564819968", 10)
	huge, _ := new(big.Int).SetString("123456789012345678901234567890123456789012345678901234567890", 10)

	values := []cadencejson.Value{
		cadencejson.Void{},
		cadencejson.String("with \"quotes\" and <tags>"),
		cadencejson.Address{0xf8, 0xd6, 0xe0, 0x58, 0x6b, 0x0a, 0x20, 0xc7},
		cadencejson.Int{Value: huge},
		cadencejson.UInt{Value: huge},
		cadencejson.Int256{Value: big256},
		cadencejson.NewUInt256(7),
		cadencejson.Word64(18446744073709551615),
		cadencejson.Fix64FromRaw(-1),
		cadencejson.NewOptional(nil),
		cadencejson.NewOptional(cadencejson.NewOptional(cadencejson.Bool(false))),
		cadencejson.Dictionary{
			{Key: cadencejson.String("k"), Value: cadencejson.Array{cadencejson.UInt8(1), cadencejson.UInt8(2)}},
		},
		cadencejson.Resource{Composite: cadencejson.Composite{
			ID: "A.0000000000000001.Vault",
			Fields: []cadencejson.Field{
				{Name: "balance", Value: cadencejson.UFix64FromRaw(1000)},
				{Name: "uuid", Value: cadencejson.UInt64(3)},
			},
		}},
		cadencejson.Enum{Composite: cadencejson.Composite{ID: "E", Fields: []cadencejson.Field{}}},
		cadencejson.Path{Domain: cadencejson.DomainPublic, Identifier: "receiver"},
		cadencejson.TypeValue{StaticType: "String"},
		cadencejson.Capability{Path: "/public/receiver", Address: cadencejson.Address{0x01}, BorrowType: "&Vault"},
	}

	args, err := cadencejson.EncodeArguments(values...)
	require.NoError(t, err)

	decoded, err := cadencejson.ParseArguments(args)
	require.NoError(t, err)
	require.Len(t, decoded, len(values))
	for i := range values {
		assert.True(t, cadencejson.Equal(values[i], decoded[i]), "value %d: %s", i, args[i])

		again, err := cadencejson.Encode(decoded[i])
		require.NoError(t, err)
		assert.JSONEq(t, string(args[i]), string(again))
	}
}

func TestEncodeRejectsIncompleteValues(t *testing.T) {
	_, err := cadencejson.Encode(cadencejson.Int{})
	assert.Error(t, err)

	_, err = cadencejson.Encode(cadencejson.Array{nil})
	assert.Error(t, err)

	_, err = cadencejson.Encode(cadencejson.Path{Domain: "attic"})
	assert.Error(t, err)
}

func TestArgumentInsideStruct(t *testing.T) {
	type request struct {
		Arguments []cadencejson.Argument `json:"arguments"`
	}

	var r request
	err := json.Unmarshal([]byte(`{"arguments":[{"type":"UFix64","value":"10.5"},{"type":"Void"}]}`), &r)
	require.NoError(t, err)
	require.Len(t, r.Arguments, 2)
	assert.Equal(t, cadencejson.UFix64FromRaw(1050000000), r.Arguments[0].Value)

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"arguments":[{"type":"UFix64","value":"10.50000000"},{"type":"Void"}]}`, string(out))
}

func TestMustAddressPanicsOnOtherKinds(t *testing.T) {
	assert.Panics(t, func() { cadencejson.MustAddress(cadencejson.String("0x01")) })
}
