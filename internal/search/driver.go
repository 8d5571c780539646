package search

import (
	"bufio"
	"log/slog"
	"os"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/subseqio/lz/internal/logging"
)

var driverLog = logging.ForComponent(logging.CompDriver)

// lineItem is one haystack read from an input surface, with the metadata
// a Result carries alongside its score.
type lineItem struct {
	Text     string
	Filename string
	Lineno   int
}

// lineSource yields lineItems in order until exhausted, and accumulates
// any I/O errors encountered while doing so.
type lineSource interface {
	next() (lineItem, bool)
	errors() []error
}

// sliceSource adapts an in-memory line slice to lineSource, numbering
// lines from 1.
type sliceSource struct {
	lines []string
	idx   int
}

func newSliceSource(lines []string) *sliceSource {
	return &sliceSource{lines: lines}
}

func (s *sliceSource) next() (lineItem, bool) {
	if s.idx >= len(s.lines) {
		return lineItem{}, false
	}
	it := lineItem{Text: s.lines[s.idx], Lineno: s.idx + 1}
	s.idx++
	return it, true
}

func (s *sliceSource) errors() []error { return nil }

// streamSource reads lines from a sequence of files in turn, falling back
// to stdin when filenames is empty. Line numbers restart at 1 at the
// start of each file, matching the per-stream counter the driver reads
// from. A file that fails to open is recorded as an IOError and skipped;
// the source moves on to the next one rather than aborting.
type streamSource struct {
	filenames []string
	fi        int
	usedStdin bool

	scanner  *bufio.Scanner
	file     *os.File
	filename string
	lineno   int

	ioErrs []error
}

func newStreamSource(filenames []string) *streamSource {
	return &streamSource{filenames: filenames}
}

func (s *streamSource) closeCurrent() {
	if s.file != nil {
		s.file.Close()
		s.file = nil
	}
	s.scanner = nil
}

// openNext advances to the next readable input, returning false once
// every filename (or stdin, when none were given) has been tried.
func (s *streamSource) openNext() bool {
	s.closeCurrent()

	if len(s.filenames) == 0 {
		if s.usedStdin {
			return false
		}
		s.usedStdin = true
		s.scanner = bufio.NewScanner(os.Stdin)
		s.filename = ""
		s.lineno = 0
		return true
	}

	for s.fi < len(s.filenames) {
		name := s.filenames[s.fi]
		s.fi++
		f, err := os.Open(name)
		if err != nil {
			driverLog.Warn("file_skipped", slog.String("filename", name), slog.String("error", err.Error()))
			s.ioErrs = append(s.ioErrs, &IOError{Filename: name, Err: err})
			continue
		}
		s.file = f
		s.scanner = bufio.NewScanner(f)
		s.filename = name
		s.lineno = 0
		return true
	}
	return false
}

func (s *streamSource) next() (lineItem, bool) {
	for {
		if s.scanner == nil {
			if !s.openNext() {
				return lineItem{}, false
			}
		}
		if s.scanner.Scan() {
			s.lineno++
			return lineItem{Text: s.scanner.Text(), Filename: s.filename, Lineno: s.lineno}, true
		}
		if err := s.scanner.Err(); err != nil {
			driverLog.Warn("file_skipped", slog.String("filename", s.filename), slog.String("error", err.Error()))
			s.ioErrs = append(s.ioErrs, &IOError{Filename: s.filename, Err: err})
		}
		s.closeCurrent()
	}
}

func (s *streamSource) errors() []error { return s.ioErrs }

// Driver runs a parsed query's matcher pipeline — Fuzzy.IsMatch →
// FilterTree.Match → Fuzzy.Score → TopK.Offer — against an input surface,
// either sequentially or fanned out across a batch of worker goroutines.
type Driver struct {
	cfg     Config
	tree    *FilterTree
	terms   []QueryData
	scorer  Scorer
	workers int
}

// NewDriver validates cfg, resolves smart case, and parses cfg.Query
// exactly once. The resulting fuzzy terms and filter tree are read-only
// from then on and are shared by every worker a parallel search spins up.
func NewDriver(cfg Config) (*Driver, error) {
	cfg, err := cfg.Validate()
	if err != nil {
		return nil, err
	}
	cfg = ResolveSmartCase(cfg)

	terms, tokens, err := ParseQuery(cfg.Query, cfg)
	if err != nil {
		return nil, err
	}

	workers := 1
	if cfg.Parallel {
		if n := runtime.GOMAXPROCS(0); n > 1 {
			workers = n
		}
	}

	return &Driver{
		cfg:     cfg,
		tree:    NewFilterTree(tokens),
		terms:   terms,
		scorer:  NewScorer(cfg.GapPenalty),
		workers: workers,
	}, nil
}

// newFuzzy builds a worker-private Fuzzy pipeline: a shallow copy of the
// shared, read-only query terms plus a fresh set of scratch buffers, so
// concurrent workers never contend on one another's offsets or
// haystackData.
func (d *Driver) newFuzzy() *Fuzzy {
	terms := make([]QueryData, len(d.terms))
	copy(terms, d.terms)
	return NewFuzzy(terms, d.scorer)
}

func (d *Driver) evalLine(f *Fuzzy, it lineItem) (Result, bool) {
	if len(f.Queries) > 0 && !f.IsMatch(it.Text) {
		return Result{}, false
	}
	if !d.tree.Match(it.Text) {
		return Result{}, false
	}

	var score float64
	var path []int
	if len(f.Queries) > 0 {
		score, path = f.Score(it.Text)
	}
	return Result{
		Score:    score,
		Path:     path,
		Text:     it.Text,
		Filename: it.Filename,
		Lineno:   it.Lineno,
	}, true
}

// SearchLines runs the query against an in-memory ordered sequence of
// lines, sequentially or in parallel according to cfg.Parallel.
func (d *Driver) SearchLines(lines []string) []Result {
	src := newSliceSource(lines)
	if !d.cfg.Parallel {
		return d.searchSequential(src)
	}
	return d.searchParallel(src)
}

// SearchFiles runs the query against cfg.InputFiles in turn, or stdin if
// InputFiles is empty, sequentially or in parallel according to
// cfg.Parallel. Per-file I/O errors are returned alongside whatever
// results were found; a file that can't be opened or read doesn't abort
// the rest of the search.
func (d *Driver) SearchFiles() ([]Result, []error) {
	src := newStreamSource(d.cfg.InputFiles)
	var results []Result
	if !d.cfg.Parallel {
		results = d.searchSequential(src)
	} else {
		results = d.searchParallel(src)
	}
	return results, src.errors()
}

func (d *Driver) searchSequential(src lineSource) []Result {
	f := d.newFuzzy()
	topk := NewTopK(d.cfg.TopK)
	for {
		it, ok := src.next()
		if !ok {
			break
		}
		if r, matched := d.evalLine(f, it); matched {
			topk.Offer(r)
		}
	}
	return topk.Results()
}

// searchParallel implements the batch-fill-then-dispatch loop: reset
// per-worker batch buffers, round-robin-fill them from src, run each
// worker's batch through evalLine/Offer concurrently, and repeat until
// src is exhausted. The final merge concatenates every worker's bounded
// heap and sorts ascending by score; total capacity is at most
// top_k × workers, not re-truncated to top_k.
func (d *Driver) searchParallel(src lineSource) []Result {
	fuzzies := make([]*Fuzzy, d.workers)
	topks := make([]*TopK, d.workers)
	batches := make([][]lineItem, d.workers)
	for j := range fuzzies {
		fuzzies[j] = d.newFuzzy()
		topks[j] = NewTopK(d.cfg.TopK)
		batches[j] = make([]lineItem, 0, d.cfg.BatchSize)
	}

	round := 0
	for {
		for j := range batches {
			batches[j] = batches[j][:0]
		}
		exhausted := fillBatches(src, batches, d.cfg.BatchSize)
		round++
		driverLog.Info("batch_dispatched", slog.Int("round", round), slog.Int("workers", d.workers), slog.Bool("exhausted", exhausted))

		var g errgroup.Group
		for j := range batches {
			j := j
			if len(batches[j]) == 0 {
				continue
			}
			g.Go(func() error {
				for _, it := range batches[j] {
					if r, matched := d.evalLine(fuzzies[j], it); matched {
						topks[j].Offer(r)
					}
				}
				return nil
			})
		}
		_ = g.Wait()

		if exhausted {
			driverLog.Info("batch_exhausted", slog.Int("rounds", round))
			break
		}
	}

	merged := make([]Result, 0, d.cfg.TopK*d.workers)
	for _, tk := range topks {
		merged = append(merged, tk.Results()...)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Score < merged[j].Score })
	return merged
}

// fillBatches round-robin-reads from src into batches (one per worker) up
// to batchSize lines each, stopping as soon as src runs dry. It reports
// whether src was exhausted during this fill.
func fillBatches(src lineSource, batches [][]lineItem, batchSize int) bool {
	n := len(batches)
	for count := 0; count < batchSize; count++ {
		for j := 0; j < n; j++ {
			it, ok := src.next()
			if !ok {
				return true
			}
			batches[j] = append(batches[j], it)
		}
	}
	return false
}
