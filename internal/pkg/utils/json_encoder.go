package utils

import (
	"io"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func JsonEncode(payload any) []byte {
	bytes, err := json.Marshal(payload)
	if err != nil {
		panic("Error serializing JSON")
	}
	return bytes
}

func JsonDecode[T any](body io.Reader) (T, error) {
	var value T
	if err := json.NewDecoder(body).Decode(&value); err != nil {
		return value, errors.Wrap(err, "decode JSON body")
	}
	return value, nil
}

func JsonDecodeByteStream[T any](data []byte) (*T, error) {
	var value T
	err := json.Unmarshal(data, &value)
	if err != nil {
		return nil, err
	}
	return &value, nil
}
