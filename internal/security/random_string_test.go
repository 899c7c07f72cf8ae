package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlphabetRandom(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		length   int
		alphabet Alphabet
		wantErr  bool
	}{
		{name: "negative length", length: -1, alphabet: "abc", wantErr: true},
		{name: "empty alphabet", length: 1, alphabet: "", wantErr: true},
		{name: "zero length", length: 0, alphabet: "abc"},
		{name: "password alphabet", length: 64, alphabet: PasswordAlphabet},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			got, err := test.alphabet.Random(test.length)
			if test.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, got, test.length)
			for _, char := range got {
				assert.True(t, strings.ContainsRune(string(test.alphabet), char), "char %q outside alphabet", char)
			}
		})
	}
}

func TestPasswordAlphabetSkipsAmbiguousCharacters(t *testing.T) {
	t.Parallel()

	for _, ambiguous := range "0O1lI" {
		assert.NotContains(t, string(PasswordAlphabet), string(ambiguous))
	}
	got, err := Alphabet("X").Random(4)
	require.NoError(t, err)
	assert.Equal(t, "XXXX", got)
}
