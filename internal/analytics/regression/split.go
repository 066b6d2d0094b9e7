package regression

import (
	"fmt"
	"math"
	"strings"

	"github.com/attendcast/attendcast/internal/analytics"
)

// SplitMode selects how rows are assigned to the test partition.
type SplitMode string

const (
	// SplitRandom draws the test rows from a seeded permutation. Test rows
	// may precede training rows in time.
	SplitRandom SplitMode = "random"
	// SplitChronological holds out the most recent rows.
	SplitChronological SplitMode = "chronological"
)

// ParseSplitMode parses a split mode name. An empty name means SplitRandom.
func ParseSplitMode(name string) (SplitMode, error) {
	switch SplitMode(strings.ToLower(strings.TrimSpace(name))) {
	case "", SplitRandom:
		return SplitRandom, nil
	case SplitChronological:
		return SplitChronological, nil
	default:
		return "", fmt.Errorf("unknown split mode: %s (supported: random, chronological)", name)
	}
}

// TrainTestSplit partitions row indices 0..n-1. The test partition holds
// ceil(testFraction*n) rows, at least one; the training partition holds the
// rest and must not be empty.
func TrainTestSplit(n int, testFraction float64, seed uint64, mode SplitMode) (train, test []int, err error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, fmt.Errorf("test fraction must be in (0, 1), got %v", testFraction)
	}

	nTest := int(math.Ceil(testFraction * float64(n)))
	if nTest < 1 {
		nTest = 1
	}
	nTrain := n - nTest
	if nTrain < 1 {
		return nil, nil, fmt.Errorf("%w: %d rows cannot be split into train and test", analytics.ErrInsufficientData, n)
	}

	var order []int
	switch mode {
	case SplitChronological:
		order = allRows(n)
		return order[:nTrain], order[nTrain:], nil
	default:
		order = newRand(seed).Perm(n)
		return order[nTest:], order[:nTest], nil
	}
}
