package excelextract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnNumber(t *testing.T) {
	tests := []struct {
		letters  string
		expected int
	}{
		{"A", 1},
		{"Z", 26},
		{"AA", 26*1 + 1},
		{"AB", 26*1 + 2},
		{"BA", 26*2 + 1},
		{"ZA", 26*26 + 1},
		{"ZZ", 26*26 + 26},
		{"AAA", 26*26 + 26 + 1},
		{"AAB", 26*26 + 26 + 2},
		{"AAZ", 26*26 + 26 + 26},
		{"ABA", 26*26 + 26*2 + 1},
		{"CBZ", 26*26*3 + 26*2 + 26},
		{"xfd", 16384},
		{"aA", 27},
	}

	for _, tt := range tests {
		t.Run(tt.letters, func(t *testing.T) {
			n, err := ColumnNumber(tt.letters)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, n)
		})
	}
}

func TestColumnNumberRejectsInvalidInput(t *testing.T) {
	for _, in := range []string{"", "A1", "1", "A-B", " A", "Ä", "A_", "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"} {
		_, err := ColumnNumber(in)
		assert.ErrorIs(t, err, ErrInvalidColumn, "input %q", in)
	}
}

func TestColumnLettersRoundTrip(t *testing.T) {
	for n := 1; n <= 20000; n++ {
		letters, err := ColumnLetters(n)
		require.NoError(t, err)
		back, err := ColumnNumber(letters)
		require.NoError(t, err)
		require.Equal(t, n, back, "letters %s", letters)
	}

	_, err := ColumnLetters(0)
	assert.ErrorIs(t, err, ErrInvalidColumn)
}

func TestCellAddressString(t *testing.T) {
	assert.Equal(t, "D7", CellAddress{Row: 7, Column: 4}.String())
	assert.Equal(t, "AA12", CellAddress{Row: 12, Column: 27}.String())
	assert.Equal(t, "R3C0", CellAddress{Row: 3, Column: 0}.String())
}
