package loader

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// StdinSpec is the source spec that reads records from standard input.
const StdinSpec = "-"

// ReaderSource decodes records from a stream that can only be read once,
// such as piped stdin. The payload is read on the first Load and decoded
// again on every later call, so a refresh re-applies the same data.
type ReaderSource struct {
	name   string
	format string

	once sync.Once
	r    io.Reader
	data []byte
	err  error
}

// NewReaderSource reads r in the given format (json, csv, yaml, toml or
// xlsx; empty means json).
func NewReaderSource(name string, r io.Reader, format string) *ReaderSource {
	format = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(format)), ".")
	if format == "yml" {
		format = "yaml"
	}
	return &ReaderSource{name: name, r: r, format: format}
}

func (s *ReaderSource) String() string { return s.name }

func (s *ReaderSource) Load(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	s.once.Do(func() {
		s.data, s.err = io.ReadAll(io.LimitReader(s.r, maxBodyBytes))
	})
	if s.err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, s.err)
	}
	ext := ""
	if s.format != "" {
		ext = "." + s.format
	}
	records, err := decodeAs(ext, s.data, "")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.name, err)
	}
	return records, nil
}
