// Package checkpoint persists the harvest watermark and rotation pointer.
//
// The watermark is the highest post identifier ever committed. It is
// transported as a string (upstream identifiers are decimal strings wider
// than what consumers should assume fits anywhere) but compared numerically.
package checkpoint

import "strconv"

// Watermark is a post identifier used as a since_id floor. The zero value
// means "no checkpoint": the first cycle fetches without a floor.
type Watermark string

// Int64 parses the watermark. ok is false for an empty or non-numeric value.
func (w Watermark) Int64() (int64, bool) {
	if w == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(string(w), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// After reports whether w is numerically greater than other. A non-numeric
// w is never after anything, so a malformed identifier can only fail to
// advance the checkpoint, never corrupt it. A non-numeric other counts as
// zero, so any valid watermark advances past it.
func (w Watermark) After(other Watermark) bool {
	n, ok := w.Int64()
	if !ok {
		return false
	}
	o, ok := other.Int64()
	if !ok {
		return n > 0
	}
	return n > o
}

// Max returns the numerically greater of the two watermarks.
func Max(a, b Watermark) Watermark {
	if b.After(a) {
		return b
	}
	return a
}
