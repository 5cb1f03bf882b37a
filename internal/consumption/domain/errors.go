package domain

import "errors"

var (
	// ErrFormat is returned when a raw table or a stored series does not match the expected shape.
	ErrFormat = errors.New("consumption: format error")
	// ErrTransfer is returned when loading or persisting a table fails.
	ErrTransfer = errors.New("consumption: transfer error")
	// ErrStaleComparison marks a previous period that could not be read for comparison.
	ErrStaleComparison = errors.New("consumption: previous period unavailable")
	// ErrSeriesNotFound is returned by repositories when a dataset does not exist.
	ErrSeriesNotFound = errors.New("consumption: series not found")
	// ErrInvalidPeriod is returned when a period month or year is out of range.
	ErrInvalidPeriod = errors.New("consumption: invalid period")
	// ErrEmptyKey is returned when a dataset key is empty.
	ErrEmptyKey = errors.New("consumption: empty dataset key")
)
