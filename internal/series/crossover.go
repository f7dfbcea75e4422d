package series

import "fmt"

// CrossoverPoints finds the indices where the short series crosses the
// long one. An upward crossing at i means short was strictly below
// long at i-1 and is at or above it at i; downward is the mirror
// image. Index 0 has no predecessor and can never cross. Positions
// where either series is undefined at i or i-1 are skipped.
func CrossoverPoints(short, long Series) (up, down []int, err error) {
	if short.Len() != long.Len() {
		return nil, nil, fmt.Errorf("series length mismatch: %d != %d", short.Len(), long.Len())
	}
	for i := 1; i < short.Len(); i++ {
		if !defined(short.Values[i-1]) || !defined(short.Values[i]) ||
			!defined(long.Values[i-1]) || !defined(long.Values[i]) {
			continue
		}
		wasBelow := short.Values[i-1] < long.Values[i-1]
		wasAbove := short.Values[i-1] > long.Values[i-1]
		switch {
		case wasBelow && short.Values[i] >= long.Values[i]:
			up = append(up, i)
		case wasAbove && short.Values[i] <= long.Values[i]:
			down = append(down, i)
		}
	}
	return up, down, nil
}
