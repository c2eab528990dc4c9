package stats

import (
	"sort"
)

// Scalar constrains the element types the array kernels operate on.
type Scalar interface {
	~int | ~int64 | ~float64
}

// Cumulate converts x into running totals in place.
// With up true the totals accumulate toward increasing index,
// otherwise toward decreasing index.
func Cumulate[T Scalar](x []T, up bool) {
	n := len(x)
	if n < 2 {
		return
	}
	if up {
		total := x[0]
		for i := 1; i < n; i++ {
			total += x[i]
			x[i] = total
		}
	} else {
		total := x[n-1]
		for i := n - 2; i >= 0; i-- {
			total += x[i]
			x[i] = total
		}
	}
}

// Cumulate2D converts a rectangular 2D array into running totals in place,
// independently controlling the accumulation direction of each index.
func Cumulate2D[T Scalar](x [][]T, up1, up2 bool) {
	rows := len(x)
	if rows == 0 || len(x[0]) == 0 {
		return
	}
	for i := range x {
		Cumulate(x[i], up2)
	}
	if up1 {
		for i := 1; i < rows; i++ {
			for j := range x[i] {
				x[i][j] += x[i-1][j]
			}
		}
	} else {
		for i := rows - 2; i >= 0; i-- {
			for j := range x[i] {
				x[i][j] += x[i+1][j]
			}
		}
	}
}

// Decumulate reverses an upward Cumulate in place, restoring the
// original element values by successive differences.
func Decumulate[T Scalar](x []T) {
	for i := len(x) - 1; i >= 1; i-- {
		x[i] -= x[i-1]
	}
}

// SortEachColumn sorts elements lo (inclusive) through hi (exclusive)
// of each column into ascending order.  A column is the innermost
// one-dimensional slice of the array.
func SortEachColumn[T Scalar](x [][]T, lo, hi int) {
	if hi-lo <= 1 {
		return
	}
	for i := range x {
		col := x[i][lo:hi]
		sort.Slice(col, func(a, b int) bool { return col[a] < col[b] })
	}
}

// SortEachColumn3 sorts the given index range of each column of a
// three-dimensional rectangular array.
func SortEachColumn3[T Scalar](x [][][]T, lo, hi int) {
	for i := range x {
		SortEachColumn(x[i], lo, hi)
	}
}

// GetEachColumn returns the element at the given index of each column.
func GetEachColumn[T Scalar](x [][]T, index int) []T {
	result := make([]T, len(x))
	for i := range x {
		result[i] = x[i][index]
	}
	return result
}

// SetEachColumn stores v at the given index of each column.
func SetEachColumn[T Scalar](x [][]T, index int, v T) {
	for i := range x {
		x[i][index] = v
	}
}

// ZeroEachColumn sets every element of every column to zero.
func ZeroEachColumn[T Scalar](x [][]T) {
	for i := range x {
		for j := range x[i] {
			x[i][j] = 0
		}
	}
}

// ResizeEachColumn reallocates each column to the given length,
// preserving the leading elements that fit.
func ResizeEachColumn[T Scalar](x [][]T, length int) {
	for i := range x {
		col := make([]T, length)
		copy(col, x[i])
		x[i] = col
	}
}

// Average returns the arithmetic mean of x, or zero for an empty slice.
func Average[T Scalar](x []T) float64 {
	if len(x) == 0 {
		return 0
	}
	var total float64
	for _, v := range x {
		total += float64(v)
	}
	return total / float64(len(x))
}
