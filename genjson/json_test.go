package genjson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type settings struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestUnmarshal(t *testing.T) {
	v, err := Unmarshal[settings]([]byte(`{"name":"a","count":2}`))
	require.NoError(t, err)
	assert.Equal(t, settings{Name: "a", Count: 2}, v)

	_, err = Unmarshal[settings]([]byte(`{`))
	assert.Error(t, err)
}

func TestUnmarshalInto(t *testing.T) {
	v := settings{Name: "default", Count: 7}
	require.NoError(t, UnmarshalInto([]byte(`{"count":3}`), &v))
	assert.Equal(t, settings{Name: "default", Count: 3}, v)

	assert.Error(t, UnmarshalInto([]byte(`{"unknown":1}`), &v))
}
