package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oakwood-commons/prodlookup/pkg/logger"
)

// FileSource reads records from a local file. The format follows the
// extension: .json, .csv, .xlsx, .yaml/.yml or .toml. For workbooks a
// sheet can be named with a "#Sheet" suffix on the path.
type FileSource struct {
	path  string
	sheet string
}

func NewFileSource(spec string) *FileSource {
	path, sheet := spec, ""
	if i := strings.LastIndex(spec, "#"); i > 0 && strings.EqualFold(filepath.Ext(spec[:i]), ".xlsx") {
		path, sheet = spec[:i], spec[i+1:]
	}
	return &FileSource{path: path, sheet: sheet}
}

// Path returns the file path without any sheet suffix.
func (s *FileSource) Path() string { return s.path }

func (s *FileSource) String() string {
	if s.sheet != "" {
		return s.path + "#" + s.sheet
	}
	return s.path
}

func (s *FileSource) Load(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	records, err := decodeAs(strings.ToLower(filepath.Ext(s.path)), data, s.sheet)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	logger.FromContext(ctx).V(1).Info("read records", logger.SourceKey, s.path, "count", len(records))
	return records, nil
}

// decodeAs decodes data in the format named by a file extension.
func decodeAs(ext string, data []byte, sheet string) ([]Record, error) {
	switch ext {
	case ".json", "":
		return DecodeJSON(data)
	case ".csv":
		return DecodeCSV(data)
	case ".xlsx":
		return DecodeXLSX(data, sheet)
	case ".yaml", ".yml":
		return DecodeYAML(data)
	case ".toml":
		return DecodeTOML(data)
	default:
		return nil, fmt.Errorf("unsupported source format %q", ext)
	}
}
