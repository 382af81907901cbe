package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequired(t *testing.T) {
	v := Required()

	assert.NoError(t, v("Ana"))
	assert.Error(t, v(""))
	assert.Error(t, v("   "))
}

func TestMaxLength_CountsRunes(t *testing.T) {
	v := MaxLength(5)

	assert.NoError(t, v("abcde"))
	assert.Error(t, v("abcdef"))
	// five runes, more than five bytes
	assert.NoError(t, v("ñoñón"))
}

func TestLength(t *testing.T) {
	v := Length(4)

	assert.NoError(t, v("ABCD"))
	assert.Error(t, v("ABC"))
	assert.Error(t, v("ABCDE"))
}

func TestMatches(t *testing.T) {
	v := Matches("^[A-Z]{4}$", "must be four uppercase letters")

	assert.NoError(t, v("ABCD"))
	err := v("ab")
	assert.EqualError(t, err, "must be four uppercase letters")
}

func TestOneOf(t *testing.T) {
	v := OneOf("memory", "mongo")

	assert.NoError(t, v("memory"))
	assert.Error(t, v("redis"))
}

func TestField_PrefixesName(t *testing.T) {
	v := Field("name", Required(), MaxLength(3))

	assert.NoError(t, v("Ana"))
	assert.ErrorContains(t, v(""), "name")
	assert.ErrorContains(t, v("Anabel"), "name")
}

func TestCompose_FirstErrorWins(t *testing.T) {
	v := Compose(Required(), Length(4))

	assert.ErrorContains(t, v(""), "required")
	assert.ErrorContains(t, v("AB"), "exactly 4")
}
