package genjson

import (
	"bytes"
	"encoding/json"

	"github.com/Invicton-Labs/go-stackerr"
)

func Unmarshal[T any](data []byte) (v T, err stackerr.Error) {
	if err := json.Unmarshal(data, &v); err != nil {
		return v, stackerr.Wrap(err)
	}
	return v, err
}

// UnmarshalInto decodes data over an existing value, so fields missing from
// data keep what v already holds. Unknown fields are an error.
func UnmarshalInto[T any](data []byte, v *T) stackerr.Error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return stackerr.Wrap(err)
	}
	return nil
}
