package pipeline

import (
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/invoice-extract/internal/confidence"
	"github.com/joseph-ayodele/invoice-extract/internal/extract"
	"github.com/joseph-ayodele/invoice-extract/internal/ocr"
	"github.com/joseph-ayodele/invoice-extract/internal/rules"
	"github.com/joseph-ayodele/invoice-extract/internal/validate"
)

// Pipeline turns the fragments of one document into a Result:
// lines, then every field extractor, then validation, then scoring.
// It holds only read-only configuration and may be shared by goroutines.
type Pipeline struct {
	logger     *slog.Logger
	yTolerance float64
	extractors []extract.Extractor
	validator  *validate.Validator
	concurrent bool
}

type Option func(*Pipeline)

// WithConcurrentExtraction runs the field extractors in parallel over the
// shared lines. Results are merged in a fixed order either way.
func WithConcurrentExtraction(on bool) Option {
	return func(p *Pipeline) { p.concurrent = on }
}

// WithExtractors replaces the standard extractor set.
func WithExtractors(ex ...extract.Extractor) Option {
	return func(p *Pipeline) {
		if len(ex) > 0 {
			p.extractors = ex
		}
	}
}

func New(r rules.Rules, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		logger:     logger,
		yTolerance: r.YTolerance,
		extractors: extract.Extractors(r.ExtractConfig()),
		validator:  validate.New(r.MathTolerance),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Lines reconstructs reading-order lines from raw fragments.
func (p *Pipeline) Lines(frags []ocr.Fragment) []ocr.Line {
	return ocr.Reconstruct(frags, p.yTolerance)
}

// Run processes one document's fragments.
func (p *Pipeline) Run(frags []ocr.Fragment) Result {
	return p.RunLines(p.Lines(frags))
}

// RunLines processes already reconstructed lines.
func (p *Pipeline) RunLines(lines []ocr.Line) Result {
	parts := make([]extract.Fields, len(p.extractors))
	if p.concurrent {
		var g errgroup.Group
		for i, e := range p.extractors {
			i, e := i, e
			g.Go(func() error {
				parts[i] = e.Extract(lines)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, e := range p.extractors {
			parts[i] = e.Extract(lines)
		}
	}

	fields := extract.Merge(parts...)
	v := p.validator.Validate(fields)
	score := confidence.Score(fields, v)

	if idx, ok := extract.HeaderLine(lines); ok {
		p.logger.Debug("pipeline.line_items.skipped", "header_line", idx, "reason", "no column geometry")
	}
	p.logger.Debug("pipeline.extract.ok",
		"lines", len(lines),
		"valid", v.IsValid,
		"errors", len(v.Errors),
		"confidence", score,
	)

	return Result{Fields: fields, Validation: v, Confidence: score}
}
