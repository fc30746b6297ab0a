package sqlguard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckValueDetectsInjection(t *testing.T) {
	f := CheckValue(0, "'; DROP TABLE users--")
	require.NotNil(t, f)
	assert.NotEmpty(t, f.Fingerprint)
	assert.Contains(t, f.Error(), "fingerprint")
}

func TestCheckValueCleanStrings(t *testing.T) {
	for _, v := range []string{"12345", "ada lovelace", "ada@example.com"} {
		assert.Nil(t, CheckValue(0, v), v)
	}
}

func TestCheckValueNonStringsAreNeverFlagged(t *testing.T) {
	for _, v := range []any{42, int64(7), 3.14, true, nil, []byte("'; DROP TABLE x--")} {
		assert.Nil(t, CheckValue(0, v))
	}
}

func TestCheckParamsReportsPosition(t *testing.T) {
	f := CheckParams([]any{"clean", int64(1), "x' OR '1'='1"})
	require.NotNil(t, f)
	assert.Equal(t, 2, f.Position)
}

func TestCheckParamsAllClean(t *testing.T) {
	assert.Nil(t, CheckParams([]any{"a", 1, true}))
	assert.Nil(t, CheckParams(nil))
}
