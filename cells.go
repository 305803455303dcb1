package pptdom

import (
	"fmt"
	"strconv"
	"strings"
)

// maxRangeCells bounds range expansion. Chart ranges are small in practice;
// a whole-sheet reference would otherwise allocate billions of addresses.
const maxRangeCells = 1 << 20

// ParseCellRef parses a cell reference like "A1" or "AA100" into column and
// row indices (0-indexed).
func ParseCellRef(ref string) (col, row int, err error) {
	if ref == "" {
		return 0, 0, fmt.Errorf("%w: empty cell reference", ErrMalformedReference)
	}

	i := 0
	for i < len(ref) && isLetter(ref[i]) {
		i++
	}
	if i == 0 {
		return 0, 0, fmt.Errorf("%w: %q has no column letters", ErrMalformedReference, ref)
	}
	if i == len(ref) {
		return 0, 0, fmt.Errorf("%w: %q has no row number", ErrMalformedReference, ref)
	}

	col = ColumnToIndex(ref[:i])
	if col < 0 {
		return 0, 0, fmt.Errorf("%w: invalid column in %q", ErrMalformedReference, ref)
	}
	rowNum, err := strconv.Atoi(ref[i:])
	if err != nil || rowNum < 1 {
		return 0, 0, fmt.Errorf("%w: invalid row in %q", ErrMalformedReference, ref)
	}
	return col, rowNum - 1, nil
}

// ColumnToIndex converts column letters to a 0-indexed column number.
// A=0, B=1, ..., Z=25, AA=26. It returns -1 for invalid input.
func ColumnToIndex(col string) int {
	if col == "" {
		return -1
	}
	col = strings.ToUpper(col)
	result := 0
	for _, c := range col {
		if c < 'A' || c > 'Z' {
			return -1
		}
		result = result*26 + int(c-'A') + 1
	}
	return result - 1
}

// IndexToColumn converts a 0-indexed column number to column letters.
func IndexToColumn(index int) string {
	if index < 0 {
		return ""
	}
	var buf []byte
	index++
	for index > 0 {
		index--
		buf = append([]byte{byte('A' + index%26)}, buf...)
		index /= 26
	}
	return string(buf)
}

// CellRef builds a reference string from 0-indexed column and row.
func CellRef(col, row int) string {
	return IndexToColumn(col) + strconv.Itoa(row+1)
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// ExpandRange expands an address ("A2") or range ("A2:C3") into individual
// cell addresses. Rectangular ranges are expanded row-major: every column of
// the first row, then every column of the next row. Reversed corners
// ("A5:A2") are normalized so the result always runs top-left to
// bottom-right.
func ExpandRange(ref string) ([]string, error) {
	start, end, found := strings.Cut(ref, ":")
	if !found {
		col, row, err := ParseCellRef(start)
		if err != nil {
			return nil, err
		}
		return []string{CellRef(col, row)}, nil
	}

	c1, r1, err := ParseCellRef(start)
	if err != nil {
		return nil, fmt.Errorf("invalid range start: %w", err)
	}
	c2, r2, err := ParseCellRef(end)
	if err != nil {
		return nil, fmt.Errorf("invalid range end: %w", err)
	}
	if c1 > c2 {
		c1, c2 = c2, c1
	}
	if r1 > r2 {
		r1, r2 = r2, r1
	}

	cols, rows := c2-c1+1, r2-r1+1
	// checked per axis first so the product cannot overflow
	if cols > maxRangeCells || rows > maxRangeCells || cols*rows > maxRangeCells {
		return nil, fmt.Errorf("%w: range %s spans %d cells (max %d)", ErrMalformedReference, ref, cols*rows, maxRangeCells)
	}
	out := make([]string, 0, cols*rows)
	for r := r1; r <= r2; r++ {
		for c := c1; c <= c2; c++ {
			out = append(out, CellRef(c, r))
		}
	}
	return out, nil
}
