package seqio

import "fmt"

const (
	// PhredOffset is the ASCII offset of Phred+33 quality strings.
	PhredOffset = 33
	// PhredMax is the highest score a printable Phred+33 character encodes.
	PhredMax = '~' - PhredOffset
)

// ParsePhred33 decodes a Phred+33 quality string. An empty string or the
// SAM placeholder "*" means no qualities and decodes to nil.
func ParsePhred33(encoded string) ([]int, error) {
	if encoded == "" || encoded == "*" {
		return nil, nil
	}

	scores := make([]int, len(encoded))
	for i := 0; i < len(encoded); i++ {
		c := encoded[i]
		if c < PhredOffset || c > '~' {
			return nil, fmt.Errorf("quality position %d: invalid Phred+33 character %q", i, c)
		}
		scores[i] = int(c) - PhredOffset
	}
	return scores, nil
}

// MeanQuality returns the average of the read's base qualities. It reports
// false when the read has no usable quality string.
func (r *SAMRecord) MeanQuality() (float64, bool) {
	scores, err := ParsePhred33(r.Qual)
	if err != nil || len(scores) == 0 {
		return 0, false
	}
	sum := 0
	for _, q := range scores {
		sum += q
	}
	return float64(sum) / float64(len(scores)), true
}
