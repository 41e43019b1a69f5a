package motif

import (
	"fmt"
	"strings"

	"github.com/aria-lang/bioinfer-go/internal/bioerr"
)

// DefaultSeedWeight is the weight Seed gives each consensus base.
const DefaultSeedWeight = 0.97

func baseIndex(c byte) (int, bool) {
	switch c {
	case 'A':
		return 0, true
	case 'C':
		return 1, true
	case 'G':
		return 2, true
	case 'T':
		return 3, true
	}
	return 0, false
}

// WordCount is a word of motif width and the number of windows it fills.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// CountWords counts every width-long window over the sequences, upper-cased.
// Windows holding anything but A, C, G or T are skipped.
func CountWords(seqs []string, width int) (map[string]int, error) {
	if err := checkWidth("count words", width); err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, seq := range seqs {
		seq = strings.ToUpper(seq)
	window:
		for i := 0; i+width <= len(seq); i++ {
			word := seq[i : i+width]
			for j := 0; j < width; j++ {
				if _, ok := baseIndex(word[j]); !ok {
					continue window
				}
			}
			counts[word]++
		}
	}
	return counts, nil
}

// MostFrequentWord returns the most common width-long word. Ties go to the
// lexicographically smallest word.
func MostFrequentWord(seqs []string, width int) (WordCount, error) {
	counts, err := CountWords(seqs, width)
	if err != nil {
		return WordCount{}, err
	}
	if len(counts) == 0 {
		return WordCount{}, bioerr.Degenerate("seed", "no unambiguous window of width %d", width)
	}

	var best WordCount
	for word, n := range counts {
		if n > best.Count || (n == best.Count && word < best.Word) {
			best = WordCount{Word: word, Count: n}
		}
	}
	return best, nil
}

// FromWord builds a weight matrix that gives each base of word the weight p
// and splits the rest evenly over the other three bases.
func FromWord(word string, p float64) (*WeightMatrix, error) {
	if p <= 0.25 || p > 1 {
		return nil, fmt.Errorf("seed: consensus weight %v outside (0.25, 1]", p)
	}
	if word == "" {
		return nil, bioerr.Degenerate("seed", "empty word")
	}

	word = strings.ToUpper(word)
	rest := (1 - p) / 3
	rows := make([][]float64, NumBases)
	for b := range rows {
		rows[b] = make([]float64, len(word))
		for j := range rows[b] {
			rows[b][j] = rest
		}
	}
	for j := 0; j < len(word); j++ {
		b, ok := baseIndex(word[j])
		if !ok {
			return nil, &bioerr.InvalidSymbolError{Position: j, Found: rune(word[j])}
		}
		rows[b][j] = p
	}
	return FromRows(rows)
}

// Seed starts refinement from the most frequent word of the sequences.
func Seed(seqs []string, width int, p float64) (*WeightMatrix, error) {
	best, err := MostFrequentWord(seqs, width)
	if err != nil {
		return nil, err
	}
	return FromWord(best.Word, p)
}
