package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"energy-consumption/internal/consumption/domain"
	"energy-consumption/internal/consumption/infrastructure/memory"
	"energy-consumption/internal/consumption/interfaces/notify"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type stubLoader struct {
	table domain.RawTable
	err   error
	calls int
}

func (l *stubLoader) LoadTable(ctx context.Context) (domain.RawTable, error) {
	l.calls++
	return l.table, l.err
}

type failingRepo struct {
	*memory.SeriesRepository
	saveErr error
	loadErr error
}

func (r *failingRepo) Load(ctx context.Context, key string) ([]domain.NormalizedRecord, error) {
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	return r.SeriesRepository.Load(ctx, key)
}

func (r *failingRepo) Save(ctx context.Context, key string, records []domain.NormalizedRecord) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	return r.SeriesRepository.Save(ctx, key, records)
}

type stubNotifier struct {
	msgs []notify.PublishMessage
	err  error
}

func (n *stubNotifier) Notify(ctx context.Context, msg notify.PublishMessage) error {
	n.msgs = append(n.msgs, msg)
	return n.err
}

type mapStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	putErr  error
}

func newMapStore() *mapStore {
	return &mapStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *mapStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, errors.New("map store: not found")
	}
	return data, nil
}

func (s *mapStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = append([]byte{}, data...)
	s.types[key] = contentType
	return nil
}

func rawHeader() []string {
	header := []string{"Região"}
	header = append(header, domain.MonthNames()...)
	return append(header, "Total")
}

func rawRow(region string, base int) domain.RawRow {
	row := domain.RawRow{region}
	total := 0
	for m := 1; m <= 12; m++ {
		row = append(row, strconv.Itoa(base+m))
		total += base + m
	}
	return append(row, strconv.Itoa(total))
}

// rawTable builds blocks of 11 rows; the first 6 of each block carry data.
func rawTable(blocks int) domain.RawTable {
	table := domain.RawTable{Header: rawHeader()}
	for b := 0; b < blocks; b++ {
		for i := 0; i < domain.BlockSize; i++ {
			if i < domain.KeptRowsPerBlock {
				table.Rows = append(table.Rows, rawRow(fmt.Sprintf("Region %d", i), (b*10+i)*100))
				continue
			}
			table.Rows = append(table.Rows, rawRow("Var. %", -1000))
		}
	}
	return table
}

func testOptions(recorder domain.RunRecorder, notifier notify.Notifier) Options {
	return Options{
		Recorder: recorder,
		Notifier: notifier,
		Clock:    fixedClock{now: time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)},
	}
}
