package allowlist

import "fmt"

// Threshold is the minimum percentage of current members that must have
// voted for a candidate before it is promoted into the allow-list. It is
// fixed for the lifetime of a deployment.
type Threshold uint8

func NewThreshold(percent uint8) (Threshold, error) {
	if percent == 0 || percent > 100 {
		return 0, fmt.Errorf("threshold must be in (0, 100], got %d", percent)
	}
	return Threshold(percent), nil
}

// Met reports whether votesFor out of votesRequired reaches the
// threshold. The comparison cross-multiplies integers rather than
// dividing: floating point rounds differently across denominators, and
// every node must agree on the exact promotion point.
func (t Threshold) Met(votesFor, votesRequired int) bool {
	return uint64(votesFor)*100 >= uint64(votesRequired)*uint64(t)
}
