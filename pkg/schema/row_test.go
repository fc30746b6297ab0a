package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRowStringCandidatesAndCase(t *testing.T) {
	row := Row{"COLUMN_NAME": "id", "bytes": []byte("raw")}

	v, ok := row.String("column_name")
	assert.True(t, ok)
	assert.Equal(t, "id", v)

	v, ok = row.String("missing", "BYTES")
	assert.True(t, ok)
	assert.Equal(t, "raw", v)

	_, ok = row.String("nope")
	assert.False(t, ok)
}

func TestRowStringExactMatchWinsOverFold(t *testing.T) {
	row := Row{"name": "exact", "NAME": "folded"}
	v, ok := row.String("name")
	assert.True(t, ok)
	assert.Equal(t, "exact", v)
}

func TestRowInt64Coercions(t *testing.T) {
	row := Row{
		"i64": int64(7), "i32": int32(8), "i": 9,
		"f": float64(10), "s": "11", "b": []byte(" 12 "),
		"junk": "many",
	}

	for key, want := range map[string]int64{"i64": 7, "i32": 8, "i": 9, "f": 10, "s": 11, "b": 12} {
		v, ok := row.Int64(key)
		assert.True(t, ok, key)
		assert.Equal(t, want, v, key)
	}

	_, ok := row.Int64("junk")
	assert.False(t, ok)
}

func TestRowBoolCoercions(t *testing.T) {
	truthy := Row{"b": true, "i": int64(1), "yes": "YES", "y": "y", "one": "1"}
	for key := range truthy {
		v, ok := truthy.Bool(key)
		assert.True(t, ok, key)
		assert.True(t, v, key)
	}

	falsy := Row{"b": false, "i": int64(0), "no": "NO", "n": "n", "zero": "0"}
	for key := range falsy {
		v, ok := falsy.Bool(key)
		assert.True(t, ok, key)
		assert.False(t, v, key)
	}

	_, ok := Row{"weird": "maybe"}.Bool("weird")
	assert.False(t, ok)
}

func TestRowNilValueIsAbsent(t *testing.T) {
	row := Row{"v": nil}
	_, ok := row.String("v")
	assert.False(t, ok)
	_, ok = row.Int64("v")
	assert.False(t, ok)
	_, ok = row.Bool("v")
	assert.False(t, ok)
}
