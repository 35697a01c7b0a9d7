package domain

import "math"

// PageWindow is the slice of the filtered post sequence shown by a request.
type PageWindow struct {
	Number int
	Size   int
}

// NewPageWindow clamps number to 1 and falls back to defaultSize when size is
// not positive.
func NewPageWindow(number, size, defaultSize int) PageWindow {
	if number < 1 {
		number = 1
	}
	if size <= 0 {
		size = defaultSize
	}
	if size <= 0 {
		size = 1
	}
	return PageWindow{Number: number, Size: size}
}

// Offset is the index of the first post of the page. Pages too far out to
// address saturate at math.MaxInt.
func (w PageWindow) Offset() int {
	if w.Number <= 1 || w.Size <= 0 {
		return 0
	}
	if w.Number-1 > math.MaxInt/w.Size {
		return math.MaxInt
	}
	return (w.Number - 1) * w.Size
}

// PageCount returns ceil(total / size).
func PageCount(total, size int) int {
	if size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}
