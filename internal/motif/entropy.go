package motif

import (
	"math"

	"github.com/aria-lang/bioinfer-go/internal/bioerr"
)

// EntropyPenalty replaces log ratios that are infinite or undefined, which
// happens wherever either model has a zero weight.
const EntropyPenalty = -100.0

// RelativeEntropy returns the Kullback-Leibler divergence of model from
// background in bits, summed over all motif positions.
func RelativeEntropy(model, background *WeightMatrix) (float64, error) {
	if model.Width() != background.Width() {
		return 0, bioerr.Shape("relative entropy", "background width", model.Width(), background.Width())
	}

	total := 0.0
	for b := 0; b < NumBases; b++ {
		for j := 0; j < model.Width(); j++ {
			p, q := model.At(b, j), background.At(b, j)
			r := math.Log(p / q)
			if math.IsInf(r, 0) || math.IsNaN(r) {
				r = EntropyPenalty
			}
			total += p * r / math.Ln2
		}
	}
	return total, nil
}
