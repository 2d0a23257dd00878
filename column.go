package excelextract

import (
	"fmt"
	"math"
	"strings"
)

/* =========================================================
 *  Column Helpers
 * ========================================================= */

const (
	letterBase = 'Z' - 'A' + 1
	// maxColumnNumber keeps n*26+26 from overflowing int.
	maxColumnNumber = (math.MaxInt - letterBase) / letterBase
)

// CellAddress identifies a cell by its 1-based row and column.
type CellAddress struct {
	Row    int
	Column int
}

// String returns the A1-style address, e.g. "D7".
func (a CellAddress) String() string {
	letters, err := ColumnLetters(a.Column)
	if err != nil {
		return fmt.Sprintf("R%dC%d", a.Row, a.Column)
	}
	return fmt.Sprintf("%s%d", letters, a.Row)
}

// ColumnNumber converts a column letter ("A", "Z", "AA", ...) to its 1-based index.
// Letters are case-insensitive. Empty input, characters outside A-Z and values
// that do not fit an int are rejected with ErrInvalidColumn.
func ColumnNumber(letters string) (int, error) {
	if letters == "" {
		return 0, fmt.Errorf("%w: empty column", ErrInvalidColumn)
	}
	s := strings.ToUpper(letters)
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 'A' || c > 'Z' {
			return 0, fmt.Errorf("%w: %q must contain only letters A-Z", ErrInvalidColumn, letters)
		}
		if n > maxColumnNumber {
			return 0, fmt.Errorf("%w: %q is out of range", ErrInvalidColumn, letters)
		}
		n = n*letterBase + int(c-'A'+1)
	}
	return n, nil
}

// ColumnLetters converts a 1-based column index to its letter form ("A", "B", ...).
func ColumnLetters(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("%w: column index %d must be positive", ErrInvalidColumn, n)
	}
	var result []byte
	for n > 0 {
		n--
		result = append(result, byte('A'+n%letterBase))
		n /= letterBase
	}
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return string(result), nil
}
