package utils_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kollektive-hackathon/flowkit/internal/pkg/utils"
	"github.com/kollektive-hackathon/flowkit/pkg/cadencejson"
)

type body struct {
	Script    string                 `json:"script"`
	Arguments []cadencejson.Argument `json:"arguments"`
}

func TestJsonDecodeUsesCadenceArguments(t *testing.T) {
	decoded, err := utils.JsonDecode[body](strings.NewReader(
		`{"script":"transaction {}","arguments":[{"type":"UFix64","value":"1.5"}]}`))
	require.NoError(t, err)
	require.Len(t, decoded.Arguments, 1)
	assert.Equal(t, cadencejson.UFix64(150000000), decoded.Arguments[0].Value)

	assert.JSONEq(t,
		`{"script":"transaction {}","arguments":[{"type":"UFix64","value":"1.50000000"}]}`,
		string(utils.JsonEncode(decoded)))
}

func TestJsonDecodeRejectsBadArguments(t *testing.T) {
	_, err := utils.JsonDecode[body](strings.NewReader(`{"arguments":[{"value":"1"}]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `expected a "type" entry`)

	parsed, err := utils.JsonDecodeByteStream[body]([]byte(`{"script":"s"}`))
	require.NoError(t, err)
	assert.Equal(t, "s", parsed.Script)
}
