package spectrum

import "fmt"

// Matrix is a binary grid with one row per component and one column per
// trace. Columns are appended; rows are fixed at construction.
type Matrix struct {
	rows [][]bool
}

// NewMatrix creates a matrix with the given number of rows and no columns.
func NewMatrix(rows int) *Matrix {
	m := &Matrix{rows: make([][]bool, rows)}
	for i := range m.rows {
		m.rows[i] = []bool{}
	}
	return m
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return len(m.rows) }

// Cols returns the number of columns.
func (m *Matrix) Cols() int {
	if len(m.rows) == 0 {
		return 0
	}
	return len(m.rows[0])
}

// AppendColumn adds one column. Its length must equal Rows.
func (m *Matrix) AppendColumn(col []bool) error {
	if len(col) != len(m.rows) {
		return fmt.Errorf("column size mismatch: got %d, want %d", len(col), len(m.rows))
	}
	m.appendColumn(col)
	return nil
}

// appendColumn adds a column whose length is known to equal Rows.
func (m *Matrix) appendColumn(col []bool) {
	for r := range m.rows {
		m.rows[r] = append(m.rows[r], col[r])
	}
}

// At returns the bit at row r, column c.
func (m *Matrix) At(r, c int) bool { return m.rows[r][c] }

// Row returns a copy of row r.
func (m *Matrix) Row(r int) []bool {
	out := make([]bool, len(m.rows[r]))
	copy(out, m.rows[r])
	return out
}

// Column returns a copy of column c.
func (m *Matrix) Column(c int) []bool {
	out := make([]bool, len(m.rows))
	for r := range m.rows {
		out[r] = m.rows[r][c]
	}
	return out
}

// ColumnsEqual reports whether columns i and j are identical bit for bit.
func (m *Matrix) ColumnsEqual(i, j int) bool {
	for r := range m.rows {
		if m.rows[r][i] != m.rows[r][j] {
			return false
		}
	}
	return true
}

// Ints returns the matrix as row-major 0/1 values.
func (m *Matrix) Ints() [][]int {
	out := make([][]int, len(m.rows))
	for r, row := range m.rows {
		out[r] = Bits(row)
	}
	return out
}

// Bits converts a bool vector into 0/1 values.
func Bits(v []bool) []int {
	out := make([]int, len(v))
	for i, b := range v {
		if b {
			out[i] = 1
		}
	}
	return out
}
