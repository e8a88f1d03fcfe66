package sqlvalue

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "None"},
		{"string", "abc", "abc"},
		{"bytes", []byte("xyz"), "xyz"},
		{"true", true, "True"},
		{"false", false, "False"},
		{"int64", int64(42), "42"},
		{"negative int", -7, "-7"},
		{"integral float", 3.0, "3.0"},
		{"fraction", 2.5, "2.5"},
		{"small float", 0.00001, "1e-05"},
		{"json number", json.Number("17"), "17"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, String(tt.in))
		})
	}
}

func TestRow_Truncates(t *testing.T) {
	row := []any{int64(1), "a", nil}
	assert.Equal(t, []string{"1", "a"}, Row(row, 2))
	assert.Equal(t, []string{"1", "a", "None"}, Row(row, -1))
	assert.Equal(t, []string{"1", "a", "None"}, Row(row, 10))
}

func TestReprRows(t *testing.T) {
	rows := [][]any{{int64(1), "a"}, {int64(2), nil}}
	assert.Equal(t, "[(1, 'a'), (2, None)]", ReprRows(rows))
	assert.Equal(t, "[(1,)]", ReprRows([][]any{{int64(1)}}))
	assert.Equal(t, "[]", ReprRows(nil))
}

func TestRepr_DistinguishesStringFromNumber(t *testing.T) {
	assert.NotEqual(t, Repr("1"), Repr(int64(1)))
	assert.Equal(t, `"it's"`, Repr("it's"))
}
