package meta

import (
	"context"
	"fmt"
	"time"
)

// Source fetches meta-deck listings for a format. Implementations must
// report failures as errors instead of returning partial records.
type Source interface {
	Name() string
	FetchMetaDecks(ctx context.Context, format string) (*FetchResult, error)
}

// FetchResult is a successful fetch. Records may legitimately be empty.
type FetchResult struct {
	Source    string       `json:"source"`
	Format    string       `json:"format"`
	Records   []DeckRecord `json:"records"`
	FetchedAt time.Time    `json:"fetchedAt"`
}

// FetchError describes a failed fetch.
type FetchError struct {
	Source     string
	Format     string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: fetch %s meta: unexpected status %d", e.Source, e.Format, e.StatusCode)
	}
	return fmt.Sprintf("%s: fetch %s meta: %v", e.Source, e.Format, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// StaticSource serves fixed records. Useful for tests and offline runs.
type StaticSource struct {
	Records map[string][]DeckRecord
	Err     error
}

// Name implements Source.
func (s *StaticSource) Name() string {
	return "static"
}

// FetchMetaDecks implements Source.
func (s *StaticSource) FetchMetaDecks(ctx context.Context, format string) (*FetchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{Source: s.Name(), Format: format, Err: err}
	}
	if s.Err != nil {
		return nil, &FetchError{Source: s.Name(), Format: format, Err: s.Err}
	}
	return &FetchResult{
		Source:    s.Name(),
		Format:    format,
		Records:   s.Records[format],
		FetchedAt: time.Now(),
	}, nil
}
