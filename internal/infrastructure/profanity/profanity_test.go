package profanity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContains(t *testing.T) {
	f := NewFilter()

	assert.False(t, f.Contains("Ana"))
	assert.False(t, f.Contains(""))
	assert.True(t, f.Contains("idiota"))
	assert.True(t, f.Contains("soy un IDIOTA"))
}

func TestContains_NormalizesAccentsAndLeet(t *testing.T) {
	f := NewFilter()

	assert.True(t, f.Contains("idióta"))
	assert.True(t, f.Contains("1d10ta"))
	assert.True(t, f.Contains("m!erda"))
}

func TestContains_CleanSpanishNames(t *testing.T) {
	f := NewFilter()

	for _, name := range []string{"Lucía", "Joaquín", "Renata", "Álvaro"} {
		assert.False(t, f.Contains(name), "name %q should pass", name)
	}
}
