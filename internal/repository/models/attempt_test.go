package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringSlice_Value(t *testing.T) {
	v, err := StringSlice(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	v, err = StringSlice{"Cells", "Genetics"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["Cells","Genetics"]`, v)
}

func TestStringSlice_Scan(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  StringSlice
	}{
		{"nil", nil, StringSlice{}},
		{"empty string", "", StringSlice{}},
		{"json null", []byte("null"), StringSlice{}},
		{"bytes", []byte(`["a","b"]`), StringSlice{"a", "b"}},
		{"string", `["c"]`, StringSlice{"c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s StringSlice
			require.NoError(t, s.Scan(tt.input))
			assert.Equal(t, tt.want, s)
		})
	}

	var s StringSlice
	assert.Error(t, s.Scan(42))
	assert.Error(t, s.Scan("not json"))
}
