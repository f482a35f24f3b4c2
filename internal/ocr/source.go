package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// Source yields the fragments of one document.
type Source interface {
	Fragments(ctx context.Context, path string) ([]Fragment, error)
}

// ErrNoFragments is returned when a dump decodes but carries no fragment list.
var ErrNoFragments = errors.New("no fragments in document")

// UnmarshalJSON accepts both {"x":1,"y":2} and the [x, y] pair form most OCR
// engines print.
func (p *Point) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var xy []float64
		if err := json.Unmarshal(data, &xy); err != nil {
			return err
		}
		if len(xy) != 2 {
			return fmt.Errorf("point: want 2 coordinates, got %d", len(xy))
		}
		p.X, p.Y = xy[0], xy[1]
		return nil
	}
	type plain Point
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = Point(v)
	return nil
}

// DecodeFragments parses a fragment dump. Both a bare JSON array and an
// object with a "fragments" member are accepted.
func DecodeFragments(data []byte) ([]Fragment, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrNoFragments
	}
	if data[0] == '[' {
		var frags []Fragment
		if err := json.Unmarshal(data, &frags); err != nil {
			return nil, fmt.Errorf("decode fragments: %w", err)
		}
		return frags, nil
	}
	var doc struct {
		Fragments *[]Fragment `json:"fragments"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode fragments: %w", err)
	}
	if doc.Fragments == nil {
		return nil, ErrNoFragments
	}
	return *doc.Fragments, nil
}

// FileSource reads fragment dumps written to disk by an OCR adapter.
type FileSource struct {
	logger *slog.Logger
}

func NewFileSource(logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{logger: logger}
}

func (s *FileSource) Fragments(ctx context.Context, path string) ([]Fragment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	frags, err := DecodeFragments(data)
	if err != nil {
		s.logger.Warn("ocr.file.decode_failed", "path", path, "error", err)
		return nil, err
	}
	s.logger.Debug("ocr.file.ok", "path", path, "fragments", len(frags))
	return frags, nil
}

// CommandSource runs an external OCR engine that prints a fragment dump on
// stdout for the document path given as its last argument.
type CommandSource struct {
	binary  string
	args    []string
	timeout time.Duration
	runner  Runner
	logger  *slog.Logger
}

type CommandOption func(*CommandSource)

// WithRunner swaps the process runner.
func WithRunner(r Runner) CommandOption {
	return func(s *CommandSource) {
		if r != nil {
			s.runner = r
		}
	}
}

func WithTimeout(d time.Duration) CommandOption {
	return func(s *CommandSource) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func NewCommandSource(binary string, args []string, logger *slog.Logger, opts ...CommandOption) *CommandSource {
	if logger == nil {
		logger = slog.Default()
	}
	s := &CommandSource{
		binary:  binary,
		args:    append([]string(nil), args...),
		timeout: 2 * time.Minute,
		runner:  execRunner{logger: logger},
		logger:  logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *CommandSource) Fragments(ctx context.Context, path string) ([]Fragment, error) {
	if s.binary == "" {
		return nil, errors.New("ocr command not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	args := append(append([]string(nil), s.args...), path)
	stdout, stderr, err := s.runner.Run(ctx, s.binary, args...)
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w: %s", s.binary, err, truncate(string(stderr), 512))
	}
	frags, err := DecodeFragments(stdout)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("ocr.command.ok", "cmd", s.binary, "path", path, "fragments", len(frags))
	return frags, nil
}
