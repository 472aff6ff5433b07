package loader

import (
	"context"
	"strings"
)

// Source produces the full record set. Every call fetches afresh.
type Source interface {
	Load(ctx context.Context) ([]Record, error)
	String() string
}

// NewSource picks an HTTPSource for http(s) URLs and a FileSource otherwise.
func NewSource(spec string, opts ...HTTPOption) Source {
	lower := strings.ToLower(strings.TrimSpace(spec))
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return NewHTTPSource(strings.TrimSpace(spec), opts...)
	}
	return NewFileSource(spec)
}

// IsRemote reports whether spec names an HTTP endpoint.
func IsRemote(spec string) bool {
	_, ok := NewSource(spec).(*HTTPSource)
	return ok
}
