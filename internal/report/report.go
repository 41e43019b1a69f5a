// Package report renders ORF tallies and motif hit histograms as PGFPlots
// figures and plain text tables.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/aria-lang/bioinfer-go/internal/motif"
	"github.com/aria-lang/bioinfer-go/internal/orf"
)

// ORFHistogram writes a stacked PGFPlots area plot of ORF lengths against
// the number of ORFs that do and do not match an annotation.
func ORFHistogram(w io.Writer, tallies []orf.LengthTally) error {
	var sb strings.Builder
	sb.WriteString("\\begin{tikzpicture}\n")
	sb.WriteString("\\begin{axis}[stack plots=x, " +
		"area style, " +
		"enlarge x limits=false, " +
		"enlarge y limits=false, " +
		"xmode=log, " +
		"ymode=log, " +
		"xlabel=Number of ORFs, " +
		"ylabel=Length of ORF, " +
		"width=\\textwidth, " +
		"height=\\textheight" +
		"]\n")

	sb.WriteString("\\addplot coordinates\n{")
	for _, t := range tallies {
		fmt.Fprintf(&sb, "(%d, %d)", t.Match, t.Length)
	}
	sb.WriteString("}\n\\closedcycle;\n")
	sb.WriteString("\\addlegendentry{Match}\n")

	sb.WriteString("\\addplot coordinates {\n")
	for _, t := range tallies {
		fmt.Fprintf(&sb, "(%d, %d)", t.NoMatch, t.Length)
	}
	sb.WriteString("}\n\\closedcycle;\n")
	sb.WriteString("\\addlegendentry{No match}\n")

	sb.WriteString("\\end{axis}\n")
	sb.WriteString("\\end{tikzpicture}\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// TallyTable writes the ORF tallies as right-aligned text columns.
func TallyTable(w io.Writer, tallies []orf.LengthTally) error {
	var sb strings.Builder
	sb.WriteString("ORF length: Match - No Match\n")
	for _, t := range tallies {
		fmt.Fprintf(&sb, "%10d: %5d - %d\n", t.Length, t.Match, t.NoMatch)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// DistanceHistogram writes a PGFPlots bar chart of motif hit distances from
// the poly-A tail. The last bin holds every longer distance.
func DistanceHistogram(w io.Writer, stats *motif.ScanStats) error {
	var sb strings.Builder
	sb.WriteString("\\begin{tikzpicture}\n")
	sb.WriteString("\\begin{axis}[ybar interval, " +
		"xmin=0, " +
		fmt.Sprintf("xmax=%d, ", motif.HistogramBins) +
		"xlabel=Distance from poly-A tail, " +
		"ylabel=Motif hits, " +
		"width=\\textwidth" +
		"]\n")
	sb.WriteString("\\addplot coordinates {\n")
	for d, n := range stats.Histogram {
		fmt.Fprintf(&sb, "(%d, %d)", d, n)
	}
	// ybar interval needs a closing coordinate.
	fmt.Fprintf(&sb, "(%d, 0)", motif.HistogramBins)
	sb.WriteString("\n};\n")
	sb.WriteString("\\end{axis}\n")
	sb.WriteString("\\end{tikzpicture}\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// ScanSummary writes the hit count and mean hit distance.
func ScanSummary(w io.Writer, stats *motif.ScanStats) error {
	_, err := fmt.Fprintf(w, "Sequences: %d\nMotif hits: %d\nMean distance: %.2f\n",
		stats.Sequences, stats.Hits, stats.MeanDistance())
	return err
}
