package core

// pipeline.go sequences a run and owns its state machine:
//
//	idle -> validating -> transforming -> splitting -> naming -> packaging -> complete
//
// Any active phase may move to failed. Reset returns a pipeline to idle from
// any phase and discards the run. A Pipeline executes one run at a time; a
// finished pipeline must be Reset before it can run again.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/JonMunkholm/prfbulk/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Phase is a pipeline state.
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseValidating   Phase = "validating"
	PhaseTransforming Phase = "transforming"
	PhaseSplitting    Phase = "splitting"
	PhaseNaming       Phase = "naming"
	PhasePackaging    Phase = "packaging"
	PhaseComplete     Phase = "complete"
	PhaseFailed       Phase = "failed"
)

// Terminal reports whether no further transition can happen without Reset.
func (p Phase) Terminal() bool {
	return p == PhaseComplete || p == PhaseFailed
}

var nextPhase = map[Phase]Phase{
	PhaseIdle:         PhaseValidating,
	PhaseValidating:   PhaseTransforming,
	PhaseTransforming: PhaseSplitting,
	PhaseSplitting:    PhaseNaming,
	PhaseNaming:       PhasePackaging,
	PhasePackaging:    PhaseComplete,
}

var (
	// ErrRunInProgress is returned by Run when the pipeline is not idle.
	ErrRunInProgress = errors.New("pipeline is not idle")

	// ErrRunReset is returned when Reset is called while a run is executing.
	ErrRunReset = errors.New("run was reset")
)

// classifyCheckInterval is how many rows a worker classifies between
// context checks.
const classifyCheckInterval = 500

// Packager turns a bundle into a downloadable artifact.
type Packager interface {
	Package(ctx context.Context, b Bundle) ([]byte, error)
}

// PackagerFunc adapts a function to Packager.
type PackagerFunc func(ctx context.Context, b Bundle) ([]byte, error)

func (f PackagerFunc) Package(ctx context.Context, b Bundle) ([]byte, error) { return f(ctx, b) }

// Options configures a Pipeline. Zero values are usable.
type Options struct {
	// Workers bounds parallel row classification (default GOMAXPROCS).
	Workers int

	// Packager receives the bundle in the packaging phase. When nil the
	// run completes with the bundle only.
	Packager Packager

	// Decode bounds RunCSV input.
	Decode DecodeOptions

	// OnPhase is called after every transition, outside the pipeline lock.
	OnPhase func(Phase)

	// Now and NewJobID are overridable for tests.
	Now      func() time.Time
	NewJobID func() string
}

// RunResult is the outcome of a run. A failed run carries only Errors
// (plus JobID and Phase); everything else is left empty.
type RunResult struct {
	JobID         string
	Phase         Phase
	Counts        RunCounts
	Errors        []Message
	Warnings      []Message
	NewFiles      []NamedFile
	ExistingFiles []NamedFile
	Manifest      *Manifest
	Bundle        *Bundle
	Artifact      []byte
}

// Failed reports whether the run ended in PhaseFailed.
func (r *RunResult) Failed() bool { return r.Phase == PhaseFailed }

// Pipeline runs the validate, classify, dedupe, chunk, name and package
// sequence over one input.
type Pipeline struct {
	opts Options

	mu    sync.Mutex
	phase Phase
	epoch uint64
}

// NewPipeline returns an idle pipeline.
func NewPipeline(opts Options) *Pipeline {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewJobID == nil {
		opts.NewJobID = func() string { return uuid.NewString() }
	}
	opts.Decode = opts.Decode.withDefaults()
	return &Pipeline{opts: opts, phase: PhaseIdle}
}

// Phase returns the current state.
func (p *Pipeline) Phase() Phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phase
}

// Reset discards the current run and returns to idle. A run still executing
// stops at its next transition with ErrRunReset.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	p.phase = PhaseIdle
	p.epoch++
	p.mu.Unlock()
	p.notify(PhaseIdle)
}

// begin moves idle -> validating and returns the run's epoch.
func (p *Pipeline) begin() (uint64, error) {
	p.mu.Lock()
	if p.phase != PhaseIdle {
		p.mu.Unlock()
		return 0, fmt.Errorf("%w: phase %s", ErrRunInProgress, p.phase)
	}
	p.phase = PhaseValidating
	p.epoch++
	epoch := p.epoch
	p.mu.Unlock()

	p.notify(PhaseValidating)
	return epoch, nil
}

// advance performs the next linear transition for the run identified by epoch.
func (p *Pipeline) advance(epoch uint64, from Phase) error {
	to := nextPhase[from]

	p.mu.Lock()
	if p.epoch != epoch {
		p.mu.Unlock()
		return ErrRunReset
	}
	if p.phase != from {
		p.mu.Unlock()
		return fmt.Errorf("invalid transition %s -> %s (current %s)", from, to, p.phase)
	}
	p.phase = to
	p.mu.Unlock()

	p.notify(to)
	return nil
}

// fail moves an active run to failed. It is a no-op if the run was reset.
func (p *Pipeline) fail(epoch uint64) {
	p.mu.Lock()
	if p.epoch != epoch || p.phase.Terminal() || p.phase == PhaseIdle {
		p.mu.Unlock()
		return
	}
	p.phase = PhaseFailed
	p.mu.Unlock()

	p.notify(PhaseFailed)
}

func (p *Pipeline) notify(phase Phase) {
	if p.opts.OnPhase != nil {
		p.opts.OnPhase(phase)
	}
}

// run is the per-run scratch state.
type run struct {
	p        *Pipeline
	epoch    uint64
	jobID    string
	log      *slog.Logger
	started  time.Time
	errors   []Message
	warnings []Message
}

// elapsed reads the same clock as started, so an injected clock stays
// consistent in the logs.
func (r *run) elapsed() time.Duration {
	return r.p.opts.Now().Sub(r.started)
}

func (r *run) failed(code Code, text string) *RunResult {
	r.p.fail(r.epoch)
	r.errors = append(r.errors, newMessage(0, code, text))
	r.log.Warn("run failed", "code", code, "error", text, "duration_ms", r.elapsed().Milliseconds())
	return &RunResult{JobID: r.jobID, Phase: PhaseFailed, Errors: r.errors}
}

// RunCSV decodes r as CSV and runs the pipeline over it. Input larger than
// the configured byte limit, or with more data rows than the row limit,
// fails the run before any row is classified.
func (p *Pipeline) RunCSV(ctx context.Context, input io.Reader, startSeq string) (*RunResult, error) {
	return p.RunDecoded(ctx, DecodeCSV, input, startSeq)
}

// RunFile picks a decoder from the file name and runs the pipeline.
func (p *Pipeline) RunFile(ctx context.Context, name string, input io.Reader, startSeq string) (*RunResult, error) {
	return p.RunDecoded(ctx, DecoderFor(name), input, startSeq)
}

// RunDecoded runs the pipeline over the rows produced by decode.
func (p *Pipeline) RunDecoded(ctx context.Context, decode Decoder, input io.Reader, startSeq string) (*RunResult, error) {
	rn, err := p.start(ctx)
	if err != nil {
		return nil, err
	}

	header, rows, err := decode(input, p.opts.Decode)
	if err != nil {
		return rn.decodeFailed(err), nil
	}
	return rn.execute(ctx, header, rows, startSeq)
}

// Run executes the pipeline over already-decoded rows.
func (p *Pipeline) Run(ctx context.Context, header []string, rows []RawRow, startSeq string) (*RunResult, error) {
	rn, err := p.start(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) > p.opts.Decode.MaxRows {
		return rn.failed(CodeRowLimit, fmt.Sprintf("%d data rows, maximum is %d", len(rows), p.opts.Decode.MaxRows)), nil
	}
	return rn.execute(ctx, header, rows, startSeq)
}

func (p *Pipeline) start(ctx context.Context) (*run, error) {
	epoch, err := p.begin()
	if err != nil {
		return nil, err
	}
	jobID := p.opts.NewJobID()
	rn := &run{
		p:       p,
		epoch:   epoch,
		jobID:   jobID,
		log:     logging.WithFields(ctx, "job_id", jobID),
		started: p.opts.Now(),
	}
	rn.log.Info("run started")
	return rn, nil
}

func (r *run) decodeFailed(err error) *RunResult {
	switch {
	case errors.Is(err, ErrInputTooLarge):
		return r.failed(CodeFileTooLarge, fmt.Sprintf("file exceeds %d bytes", r.p.opts.Decode.MaxBytes))
	case errors.Is(err, ErrRowLimit):
		return r.failed(CodeRowLimit, fmt.Sprintf("file exceeds %d data rows", r.p.opts.Decode.MaxRows))
	case errors.Is(err, ErrEmptyFile):
		return r.failed(CodeEmptyFile, "")
	default:
		return r.failed(CodeDecode, err.Error())
	}
}

func (r *run) execute(ctx context.Context, header []string, rows []RawRow, startSeqRaw string) (*RunResult, error) {
	p := r.p

	// Validating
	hdr := ValidateHeader(header)
	if !hdr.OK() {
		r.errors = append(r.errors, hdr.Errors...)
		r.p.fail(r.epoch)
		r.log.Warn("header validation failed", "errors", len(hdr.Errors))
		return &RunResult{JobID: r.jobID, Phase: PhaseFailed, Errors: r.errors}, nil
	}
	r.warnings = append(r.warnings, hdr.Warnings...)

	startSeq, err := ParseStartSeq(startSeqRaw)
	if err != nil {
		if errors.Is(err, ErrSequenceOverflow) {
			return r.failed(CodeSequenceOverflow, err.Error()), nil
		}
		return r.failed(CodeInvalidStartSeq, err.Error()), nil
	}

	if err := p.advance(r.epoch, PhaseValidating); err != nil {
		return nil, err
	}

	// Transforming
	results, err := classifyAll(ctx, rows, hdr.Layout, p.opts.Workers)
	if err != nil {
		return r.failed(CodeCancelled, err.Error()), nil
	}

	valid := make([]ClassifiedRow, 0, len(rows))
	for _, c := range results {
		if c.Row.Rejected != nil {
			rej := c.Row.Rejected
			r.errors = append(r.errors, Message{Line: rej.Line, Code: rej.Code, Text: rej.Message})
		} else {
			valid = append(valid, c.Row)
		}
		r.warnings = append(r.warnings, c.Warnings...)
	}
	r.log.Debug("rows classified", "rows", len(rows), "valid", len(valid), "rejected", len(r.errors))

	if err := p.advance(r.epoch, PhaseTransforming); err != nil {
		return nil, err
	}

	// Splitting
	kept, dupWarnings := Dedupe(valid)
	r.warnings = append(r.warnings, dupWarnings...)
	slices.SortStableFunc(r.warnings, func(a, b Message) int { return a.Line - b.Line })

	var newRows, existingRows []ClassifiedRow
	for _, row := range kept {
		switch row.Kind {
		case KindNewMember:
			newRows = append(newRows, row)
		case KindExistingMember:
			existingRows = append(existingRows, row)
		}
	}
	newChunks := Chunk(newRows, ChunkSize)
	existingChunks := Chunk(existingRows, ChunkSize)

	if err := p.advance(r.epoch, PhaseSplitting); err != nil {
		return nil, err
	}

	// Naming
	runDate := p.opts.Now().UTC()
	names, err := AssignNames(len(newChunks), len(existingChunks), startSeq, runDate)
	if err != nil {
		code := CodeSequenceOverflow
		if errors.Is(err, ErrInvalidStartSeq) {
			code = CodeInvalidStartSeq
		}
		return r.failed(code, err.Error()), nil
	}
	for i := range names.New {
		names.New[i].RowCount = len(newChunks[i])
	}
	for i := range names.Existing {
		names.Existing[i].RowCount = len(existingChunks[i])
	}

	if err := p.advance(r.epoch, PhaseNaming); err != nil {
		return nil, err
	}

	// Packaging
	counts := RunCounts{
		TotalRows:           len(rows),
		ValidRows:           len(kept),
		NewMemberCount:      len(newRows),
		ExistingMemberCount: len(existingRows),
		WarningCount:        len(r.warnings),
		ErrorCount:          len(r.errors),
	}
	first, last := names.Range()
	manifest := Manifest{
		JobID:              r.jobID,
		DateUTC:            runDate.Format(time.DateOnly),
		StartSeq:           startSeq.String(),
		SequenceRangeStart: first,
		SequenceRangeEnd:   last,
		NewFileNames:       names.NewNames(),
		ExistingFileNames:  names.ExistingNames(),
		Counts:             counts,
		GeneratedAt:        runDate,
	}

	bundle, err := buildBundle(manifest, names, newChunks, existingChunks, r.errors, r.warnings)
	if err != nil {
		return r.failed(CodePackaging, err.Error()), nil
	}

	var artifact []byte
	if p.opts.Packager != nil {
		artifact, err = p.opts.Packager.Package(ctx, *bundle)
		if err != nil {
			return r.failed(CodePackaging, fmt.Sprintf("package bundle: %v", err)), nil
		}
	}

	if err := p.advance(r.epoch, PhasePackaging); err != nil {
		return nil, err
	}

	r.log.Info("run complete",
		"rows", counts.TotalRows,
		"new", counts.NewMemberCount,
		"existing", counts.ExistingMemberCount,
		"errors", counts.ErrorCount,
		"warnings", counts.WarningCount,
		"files", len(names.New)+len(names.Existing),
		"duration_ms", r.elapsed().Milliseconds(),
	)

	return &RunResult{
		JobID:         r.jobID,
		Phase:         PhaseComplete,
		Counts:        counts,
		Errors:        r.errors,
		Warnings:      r.warnings,
		NewFiles:      names.New,
		ExistingFiles: names.Existing,
		Manifest:      &manifest,
		Bundle:        bundle,
		Artifact:      artifact,
	}, nil
}

// classifyAll classifies rows on up to workers goroutines. Each worker owns
// a contiguous slice of rows and writes results by index, so the output
// order always matches the input order.
func classifyAll(ctx context.Context, rows []RawRow, layout Layout, workers int) ([]Classification, error) {
	results := make([]Classification, len(rows))
	if len(rows) == 0 {
		return results, nil
	}

	batch := (len(rows) + workers - 1) / workers
	g, gctx := errgroup.WithContext(ctx)
	for bi, part := range Chunk(rows, batch) {
		offset := bi * batch
		g.Go(func() error {
			for j, row := range part {
				if j%classifyCheckInterval == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				results[offset+j] = Classify(row, layout)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("classify rows: %w", err)
	}
	return results, nil
}

func buildBundle(m Manifest, names NameAssignment, newChunks, existingChunks [][]ClassifiedRow, errs, warnings []Message) (*Bundle, error) {
	b := &Bundle{Manifest: m}
	for i, f := range names.New {
		b.Files = append(b.Files, BundleFile{Name: f.FileName, Content: RenderNewMembers(newChunks[i])})
	}
	for i, f := range names.Existing {
		b.Files = append(b.Files, BundleFile{Name: f.FileName, Content: RenderExistingMembers(existingChunks[i])})
	}
	b.Files = append(b.Files,
		BundleFile{Name: ErrorReportName, Content: RenderReport(errs)},
		BundleFile{Name: WarningReportName, Content: RenderReport(warnings)},
	)

	manifest, err := RenderManifest(m)
	if err != nil {
		return nil, err
	}
	b.Files = append(b.Files, BundleFile{Name: ManifestName, Content: manifest})
	return b, nil
}
