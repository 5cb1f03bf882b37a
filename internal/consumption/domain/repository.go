package domain

import (
	"context"
	"time"
)

// Clock provides time for application services.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

// Now returns current time.
func (SystemClock) Now() time.Time { return time.Now() }

// SeriesRepository reads and writes normalized tables by dataset key.
type SeriesRepository interface {
	Load(ctx context.Context, key string) ([]NormalizedRecord, error)
	Save(ctx context.Context, key string, records []NormalizedRecord) error
}

// RawTableLoader obtains the publisher worksheet.
type RawTableLoader interface {
	LoadTable(ctx context.Context) (RawTable, error)
}
