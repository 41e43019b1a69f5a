package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/schollz/progressbar/v3"

	"github.com/aria-lang/bioinfer-go/internal/hmm"
	"github.com/aria-lang/bioinfer-go/internal/motif"
	"github.com/aria-lang/bioinfer-go/internal/report"
	"github.com/aria-lang/bioinfer-go/internal/seqio"
	"github.com/aria-lang/bioinfer-go/internal/stats"
	"github.com/aria-lang/bioinfer-go/internal/store"
	"github.com/aria-lang/bioinfer-go/pkg/bioinfer"
)

// modelSource names where a model comes from: a JSON file, or a record in
// the SQLite model store.
type modelSource struct {
	file *string
	name *string
}

func addModelSource(fs *flag.FlagSet, flagName, what string) modelSource {
	return modelSource{
		file: fs.String(flagName, "", what+" JSON file"),
		name: fs.String(flagName+"-name", "", what+" name in the model store (needs -db)"),
	}
}

func (src modelSource) given() bool {
	return *src.file != "" || *src.name != ""
}

func openStore(ctx context.Context, db string) store.Store {
	if db == "" {
		fatalf("-db is required to use the model store")
	}
	st, err := store.NewStore("sqlite", db)
	if err != nil {
		fatalf("opening model store: %v", err)
	}
	if err := st.Init(ctx); err != nil {
		fatalf("opening model store: %v", err)
	}
	return st
}

func loadRecord(ctx context.Context, db string, kind store.Kind, name string) store.Record {
	st := openStore(ctx, db)
	defer store.CloseIfSupported(st)

	rec, ok, err := st.GetModel(ctx, kind, name)
	if err != nil {
		fatalf("loading %s model %q: %v", kind, name, err)
	}
	if !ok {
		fatalf("no %s model named %q in %s", kind, name, db)
	}
	return rec
}

func readJSONFile(path string, v any) {
	data, err := os.ReadFile(path)
	if err != nil {
		fatalf("reading %s: %v", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		fatalf("decoding %s: %v", path, err)
	}
}

func loadHMM(ctx context.Context, src modelSource, db string) *hmm.Model {
	switch {
	case *src.file != "":
		var m hmm.Model
		readJSONFile(*src.file, &m)
		return &m
	case *src.name != "":
		m, err := store.DecodeHMM(loadRecord(ctx, db, store.KindHMM, *src.name))
		if err != nil {
			fatalf("decoding model %q: %v", *src.name, err)
		}
		return m
	default:
		return bioinfer.DefaultHMM()
	}
}

func loadMatrix(ctx context.Context, src modelSource, db, what string) *motif.WeightMatrix {
	switch {
	case *src.file != "":
		var w motif.WeightMatrix
		readJSONFile(*src.file, &w)
		return &w
	case *src.name != "":
		w, err := store.DecodeWeightMatrix(loadRecord(ctx, db, store.KindWeightMatrix, *src.name))
		if err != nil {
			fatalf("decoding %s %q: %v", what, *src.name, err)
		}
		return w
	default:
		fatalf("a %s is required", what)
		return nil
	}
}

// emit writes v as JSON to out, or to stdout when out is empty. A non-nil
// encode builds a record that is saved to the store at db.
func emit(ctx context.Context, v any, out, db string, encode func() (store.Record, error)) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fatalf("encoding model: %v", err)
	}
	if out == "" {
		fmt.Println(string(data))
	} else if err := os.WriteFile(out, append(data, '\n'), 0o644); err != nil {
		fatalf("writing %s: %v", out, err)
	}

	if encode == nil {
		return
	}
	rec, err := encode()
	if err != nil {
		fatalf("encoding model: %v", err)
	}
	st := openStore(ctx, db)
	defer store.CloseIfSupported(st)
	saved, err := st.SaveModel(ctx, rec)
	if err != nil {
		fatalf("saving model: %v", err)
	}
	fmt.Fprintf(os.Stderr, "Saved %s model %q (%s)\n", saved.Kind, saved.Name, saved.ID)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func viterbiCmd(args []string) {
	fs := flag.NewFlagSet("viterbi", flag.ExitOnError)
	file := fs.String("file", "", "FASTA file to decode")
	seq := fs.String("seq", "", "Sequence string to decode")
	db := fs.String("db", "", "SQLite model store")
	src := addModelSource(fs, "model", "HMM")
	fs.Parse(args)

	ctx, cancel := signalContext()
	defer cancel()

	m := loadHMM(ctx, src, *db)
	for _, s := range readSequences(fs, *file, *seq, true) {
		dec, err := bioinfer.Decode(s.Bases, m)
		if err != nil {
			fatalf("decoding %s: %v", s.ID, err)
		}
		if s.ID != "" {
			fmt.Printf(">%s\n", s.ID)
		}
		fmt.Printf("Log probability: %g\n", dec.LogProb)
		runs := dec.Runs()
		for _, seg := range runs {
			fmt.Println(seg)
		}
		for _, st := range stats.FromSegments(runs) {
			fmt.Printf("State %d: %.2f%% of sequence, %s\n", st.State, st.Fraction*100, st.LengthStats.String())
		}
	}
}

func trainCmd(args []string) {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	file := fs.String("file", "", "FASTA file; the first sequence is used")
	seq := fs.String("seq", "", "Sequence string to train on")
	iterations := fs.Int("iter", 10, "Number of Viterbi training iterations")
	out := fs.String("out", "", "Write the trained model to this JSON file")
	db := fs.String("db", "", "SQLite model store")
	save := fs.String("save", "", "Store the trained model under this name (needs -db)")
	src := addModelSource(fs, "model", "Starting HMM")
	fs.Parse(args)

	ctx, cancel := signalContext()
	defer cancel()

	start := loadHMM(ctx, src, *db)
	symbols, err := hmm.ParseSymbols(readSequences(fs, *file, *seq, true)[0].Bases)
	if err != nil {
		fatalf("reading sequence: %v", err)
	}

	bar := progressbar.Default(int64(*iterations), "training")
	trained, reports, err := hmm.Train(ctx, symbols, start, hmm.TrainOptions{
		Iterations: *iterations,
		OnIteration: func(hmm.IterationReport) {
			bar.Add(1)
		},
	})
	bar.Finish()
	if err != nil {
		fatalf("training: %v", err)
	}
	for _, r := range reports {
		fmt.Fprintf(os.Stderr, "iteration %d: log probability %g, segments %v\n", r.Iteration, r.LogProb, r.SegmentCounts)
	}

	var encode func() (store.Record, error)
	if *save != "" {
		encode = func() (store.Record, error) { return store.EncodeHMM(*save, trained) }
	}
	emit(ctx, trained, *out, *db, encode)
}

func backgroundCmd(args []string) {
	fs := flag.NewFlagSet("background", flag.ExitOnError)
	file := fs.String("file", "", "FASTA file of background sequences")
	width := fs.Int("width", motif.DefaultWidth, "Motif width")
	out := fs.String("out", "", "Write the matrix to this JSON file")
	db := fs.String("db", "", "SQLite model store")
	save := fs.String("save", "", "Store the matrix under this name (needs -db)")
	fs.Parse(args)

	ctx, cancel := signalContext()
	defer cancel()

	seqs := seqio.Bases(readSequences(fs, *file, "", false))
	bg, err := motif.Background(seqs, *width, nil)
	if err != nil {
		fatalf("building background: %v", err)
	}

	var encode func() (store.Record, error)
	if *save != "" {
		encode = func() (store.Record, error) { return store.EncodeWeightMatrix(*save, bg) }
	}
	emit(ctx, bg, *out, *db, encode)
}

func memeCmd(args []string) {
	fs := flag.NewFlagSet("meme", flag.ExitOnError)
	file := fs.String("file", "", "FASTA file of training sequences")
	iterations := fs.Int("iter", 10, "Number of refinement iterations")
	pseudo := fs.Float64("pseudo", motif.DefaultPseudocount, "Pseudocount added before normalization")
	width := fs.Int("width", motif.DefaultWidth, "Width of the starting matrix when no -model is given")
	seed := fs.Bool("seed", false, "Start from the most frequent word instead of a uniform matrix")
	out := fs.String("out", "", "Write the refined matrix to this JSON file")
	db := fs.String("db", "", "SQLite model store")
	save := fs.String("save", "", "Store the refined matrix under this name (needs -db)")
	src := addModelSource(fs, "model", "Starting weight matrix")
	fs.Parse(args)

	ctx, cancel := signalContext()
	defer cancel()

	seqs := seqio.Bases(readSequences(fs, *file, "", false))
	var start *motif.WeightMatrix
	switch {
	case src.given():
		start = loadMatrix(ctx, src, *db, "starting matrix")
	case *seed:
		var err error
		start, err = motif.Seed(seqs, *width, motif.DefaultSeedWeight)
		if err != nil {
			fatalf("seeding: %v", err)
		}
		fmt.Fprintf(os.Stderr, "Seed: %s\n", start.Consensus())
	default:
		var err error
		start, err = motif.Uniform(*width)
		if err != nil {
			fatalf("starting matrix: %v", err)
		}
	}

	bar := progressbar.Default(int64(*iterations), "refining")
	refined, err := motif.Refine(ctx, start, seqs, *iterations, motif.RefineOptions{
		Pseudocount: *pseudo,
		OnIteration: func(int, *motif.WeightMatrix) {
			bar.Add(1)
		},
	})
	bar.Finish()
	if err != nil {
		fatalf("refining: %v", err)
	}
	fmt.Fprintf(os.Stderr, "Consensus: %s\n", refined.Consensus())

	var encode func() (store.Record, error)
	if *save != "" {
		encode = func() (store.Record, error) { return store.EncodeWeightMatrix(*save, refined) }
	}
	emit(ctx, refined, *out, *db, encode)
}

func scanCmd(args []string) {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	file := fs.String("file", "", "FASTA file of 3' UTR sequences")
	workers := fs.Int("workers", 0, "Maximum concurrent scans (0 for no limit)")
	latex := fs.Bool("latex", false, "Print the distance histogram as LaTeX")
	db := fs.String("db", "", "SQLite model store")
	modelSrc := addModelSource(fs, "model", "Motif weight matrix")
	bgSrc := addModelSource(fs, "background", "Background weight matrix")
	fs.Parse(args)

	ctx, cancel := signalContext()
	defer cancel()

	model := loadMatrix(ctx, modelSrc, *db, "motif matrix")
	bg := loadMatrix(ctx, bgSrc, *db, "background matrix")
	seqs := seqio.Bases(readSequences(fs, *file, "", false))

	st, err := bioinfer.Scan(ctx, model, bg, seqs, *workers)
	if err != nil {
		fatalf("scanning: %v", err)
	}
	if *latex {
		err = report.DistanceHistogram(os.Stdout, st)
	} else {
		err = report.ScanSummary(os.Stdout, st)
	}
	if err != nil {
		fatalf("writing report: %v", err)
	}
}

func entropyCmd(args []string) {
	fs := flag.NewFlagSet("entropy", flag.ExitOnError)
	db := fs.String("db", "", "SQLite model store")
	modelSrc := addModelSource(fs, "model", "Motif weight matrix")
	bgSrc := addModelSource(fs, "background", "Background weight matrix")
	fs.Parse(args)

	ctx, cancel := signalContext()
	defer cancel()

	model := loadMatrix(ctx, modelSrc, *db, "motif matrix")
	bg := loadMatrix(ctx, bgSrc, *db, "background matrix")
	bits, err := motif.RelativeEntropy(model, bg)
	if err != nil {
		fatalf("computing entropy: %v", err)
	}
	fmt.Printf("Relative entropy: %.4f bits\n", bits)
}
