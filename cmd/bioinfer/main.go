// Command bioinfer provides a CLI for sequence inference.
//
// Usage:
//
//	bioinfer [command] [options]
//
// Commands:
//
//	align       Align two sequences, or every pair in a FASTA file
//	orf         Find open reading frames and compare them with annotations
//	viterbi     Decode the most likely state path of a sequence
//	train       Train a hidden Markov model by Viterbi training
//	background  Build a background weight matrix from sequences
//	meme        Refine a motif weight matrix
//	scan        Scan 3' UTRs for a motif upstream of the poly-A tail
//	entropy     Relative entropy of a motif against a background
//	sam         Filter SAM alignments
//	stats       Calculate sequence statistics
//	version     Show version information
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aria-lang/bioinfer-go/internal/alignment"
	"github.com/aria-lang/bioinfer-go/internal/orf"
	"github.com/aria-lang/bioinfer-go/internal/report"
	"github.com/aria-lang/bioinfer-go/internal/seqio"
	"github.com/aria-lang/bioinfer-go/internal/sequence"
	"github.com/aria-lang/bioinfer-go/internal/stats"
	"github.com/aria-lang/bioinfer-go/pkg/bioinfer"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "align":
		alignCmd(os.Args[2:])
	case "orf":
		orfCmd(os.Args[2:])
	case "viterbi":
		viterbiCmd(os.Args[2:])
	case "train":
		trainCmd(os.Args[2:])
	case "background":
		backgroundCmd(os.Args[2:])
	case "meme":
		memeCmd(os.Args[2:])
	case "scan":
		scanCmd(os.Args[2:])
	case "entropy":
		entropyCmd(os.Args[2:])
	case "sam":
		samCmd(os.Args[2:])
	case "stats":
		statsCmd(os.Args[2:])
	case "version":
		fmt.Println(bioinfer.Info())
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`bioinfer - Sequence Inference Toolkit

Usage:
  bioinfer <command> [options]

Commands:
  align       Align two sequences, or every pair in a FASTA file
  orf         Find open reading frames and compare them with annotations
  viterbi     Decode the most likely state path of a sequence
  train       Train a hidden Markov model by Viterbi training
  background  Build a background weight matrix from sequences
  meme        Refine a motif weight matrix
  scan        Scan 3' UTRs for a motif upstream of the poly-A tail
  entropy     Relative entropy of a motif against a background
  sam         Filter SAM alignments
  stats       Calculate sequence statistics
  version     Show version information
  help        Show this help message

Use "bioinfer <command> -h" for more information about a command.`)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// readSequences loads DNA sequences from a FASTA file or a single -seq
// string. With clean, lower-case and unknown symbols are normalized first.
func readSequences(fs *flag.FlagSet, file, seq string, clean bool) []*sequence.Sequence {
	if file == "" && seq == "" {
		fmt.Fprintln(os.Stderr, "Error: Either -file or -seq is required")
		fs.Usage()
		os.Exit(1)
	}

	if file != "" {
		sequences, err := seqio.ReadFASTA(file, seqio.FASTAOptions{Type: sequence.DNA, Clean: clean})
		if err != nil {
			fatalf("reading %s: %v", file, err)
		}
		if len(sequences) == 0 {
			fatalf("no sequences found in %s", file)
		}
		return sequences
	}

	if clean {
		seq = sequence.CleanNucleotides(seq)
	}
	s, err := bioinfer.NewSequence(seq)
	if err != nil {
		fatalf("creating sequence: %v", err)
	}
	return []*sequence.Sequence{s}
}

func alignCmd(args []string) {
	fs := flag.NewFlagSet("align", flag.ExitOnError)
	seq1 := fs.String("seq1", "", "First sequence")
	seq2 := fs.String("seq2", "", "Second sequence")
	file := fs.String("file", "", "Protein FASTA file; aligns every pair of records")
	query := fs.String("query", "", "With -file, report only the best record for this sequence")
	global := fs.Bool("global", false, "Use global alignment (Needleman-Wunsch)")
	gap := fs.Int("gap", alignment.DefaultGapCost, "Linear gap cost (zero or negative)")
	matrix := fs.String("matrix", "", "Score table file (default BLOSUM62)")
	fs.Parse(args)

	if *file == "" && (*seq1 == "" || *seq2 == "") {
		fmt.Fprintln(os.Stderr, "Error: Either -file or both -seq1 and -seq2 are required")
		fs.Usage()
		os.Exit(1)
	}

	model := alignment.BLOSUM62()
	if *matrix != "" {
		f, err := os.Open(*matrix)
		if err != nil {
			fatalf("opening score table: %v", err)
		}
		model, err = alignment.ParseScoreModel(f)
		f.Close()
		if err != nil {
			fatalf("reading score table: %v", err)
		}
	}

	if *file != "" {
		if *global {
			fatalf("-global cannot be combined with -file")
		}
		records, err := seqio.ReadFASTA(*file, seqio.FASTAOptions{Type: sequence.Protein})
		if err != nil {
			fatalf("reading %s: %v", *file, err)
		}
		if *query != "" {
			err = writeBestHit(os.Stdout, *query, records, model, *gap)
		} else {
			err = writeAllPairs(os.Stdout, records, model, *gap)
		}
		if err != nil {
			fatalf("aligning %s: %v", *file, err)
		}
		return
	}

	aln, err := bioinfer.AlignWith(*seq1, *seq2, model, *gap, *global)
	if err != nil {
		fatalf("aligning sequences: %v", err)
	}
	fmt.Println(aln.Format("seq1", "seq2"))
}

// recordLabel names a FASTA record in alignment output.
func recordLabel(records []*sequence.Sequence, i int) string {
	if records[i].ID != "" {
		return records[i].ID
	}
	return fmt.Sprintf("seq%d", i+1)
}

// writeAllPairs prints one alignment block for every pair of records.
func writeAllPairs(w io.Writer, records []*sequence.Sequence, model *alignment.ScoreModel, gap int) error {
	pairs, err := bioinfer.CompareAll(seqio.Bases(records), model, gap)
	if err != nil {
		return err
	}
	for _, p := range pairs {
		a, b := recordLabel(records, p.I), recordLabel(records, p.J)
		if _, err := fmt.Fprintf(w, "# %s vs %s\n%s\n", a, b, p.Alignment.Format(a, b)); err != nil {
			return err
		}
	}
	return nil
}

// writeBestHit prints the alignment of query against its best-scoring record.
func writeBestHit(w io.Writer, query string, records []*sequence.Sequence, model *alignment.ScoreModel, gap int) error {
	idx, aln, err := bioinfer.BestHit(query, seqio.Bases(records), model, gap)
	if err != nil {
		return err
	}
	label := recordLabel(records, idx)
	_, err = fmt.Fprintf(w, "# query vs %s\n%s\n", label, aln.Format("query", label))
	return err
}

func orfCmd(args []string) {
	fs := flag.NewFlagSet("orf", flag.ExitOnError)
	file := fs.String("file", "", "FASTA genome")
	seq := fs.String("seq", "", "Sequence string to analyze")
	genbank := fs.String("genbank", "", "GenBank file with CDS annotations to compare against")
	both := fs.Bool("both", false, "Also search the reverse strand")
	translate := fs.Bool("translate", false, "Print the protein of each ORF")
	table := fs.Int("table", orf.StandardTable, "NCBI translation table")
	latex := fs.Bool("latex", false, "Print the comparison as a LaTeX histogram")
	fs.Parse(args)

	sequences := readSequences(fs, *file, *seq, true)

	if *genbank != "" {
		annotations, err := seqio.ReadGenBankCDS(*genbank)
		if err != nil {
			fatalf("reading annotations: %v", err)
		}
		genome := sequences[0].Bases
		tallies := orf.Compare(genome, bioinfer.FindORFs(genome, false), annotations)
		if *latex {
			err = report.ORFHistogram(os.Stdout, tallies)
		} else {
			err = report.TallyTable(os.Stdout, tallies)
		}
		if err != nil {
			fatalf("writing report: %v", err)
		}
		return
	}

	for _, s := range sequences {
		orfs := bioinfer.FindORFs(s.Bases, *both)
		if s.ID != "" {
			fmt.Printf(">%s: %d ORFs\n", s.ID, len(orfs))
		}
		for _, o := range orfs {
			if !*translate {
				fmt.Println(o)
				continue
			}
			protein, err := orf.Translate(s.Bases, o, *table)
			if err != nil {
				fatalf("translating %s: %v", o, err)
			}
			fmt.Printf("%s\t%s\n", o, protein)
		}
	}
}

func samCmd(args []string) {
	fs := flag.NewFlagSet("sam", flag.ExitOnError)
	file := fs.String("file", "", "SAM file (default stdin)")
	matchesOnly := fs.Bool("matches-only", false, "Drop unmapped reads")
	minMismatch := fs.Int("min-mismatch", 0, "Drop reads with fewer mismatches (NM)")
	maxScore := fs.Int("max-as", 0, "Drop reads with an alignment score (AS) above this")
	minPolyA := fs.Int("min-polya", 0, "Drop reads with a shorter poly-A tail")
	minQuality := fs.Float64("min-quality", 0, "Drop reads with a lower mean base quality")
	limit := fs.Int("limit", 0, "Stop after this many alignment lines")
	fs.Parse(args)

	in := os.Stdin
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			fatalf("opening %s: %v", *file, err)
		}
		defer f.Close()
		in = f
	}

	filter := seqio.SAMFilter{
		MatchesOnly:    *matchesOnly,
		MinMismatch:    *minMismatch,
		MaxAlignScore:  *maxScore,
		MinPolyALen:    *minPolyA,
		MinMeanQuality: *minQuality,
	}
	st, err := seqio.FilterSAM(in, os.Stdout, filter, *limit)
	if err != nil {
		fatalf("filtering SAM: %v", err)
	}
	fmt.Fprintf(os.Stderr, "Kept %d of %d reads\n", st.Kept, st.Read)
}

func statsCmd(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	file := fs.String("file", "", "FASTA file to analyze")
	fs.Parse(args)

	if *file == "" {
		fmt.Fprintln(os.Stderr, "Error: -file is required")
		fs.Usage()
		os.Exit(1)
	}

	sequences := readSequences(fs, *file, "", false)
	st, err := stats.FromSequences(sequences)
	if err != nil {
		fatalf("calculating statistics: %v", err)
	}

	fmt.Println("Sequence Set Statistics")
	fmt.Println(strings.Repeat("-", 40))
	fmt.Println(st)
}
