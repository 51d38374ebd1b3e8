// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package retention

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/shipwatch/internal/logging"
)

func init() {
	logging.Init(logging.Config{Level: "info", Format: "console", Output: io.Discard})
}

// mockStore keeps timestamps in memory and applies DeleteBefore literally.
type mockStore struct {
	mu        sync.Mutex
	ts        []int64
	maxErr    error
	deleteErr error
	cutoffs   []int64
}

func (m *mockStore) MaxTimestamp(_ context.Context) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.maxErr != nil {
		return 0, false, m.maxErr
	}
	if len(m.ts) == 0 {
		return 0, false, nil
	}
	newest := m.ts[0]
	for _, t := range m.ts {
		if t > newest {
			newest = t
		}
	}
	return newest, true, nil
}

func (m *mockStore) DeleteBefore(_ context.Context, cutoff int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cutoffs = append(m.cutoffs, cutoff)
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	kept := m.ts[:0]
	var deleted int64
	for _, t := range m.ts {
		if t < cutoff {
			deleted++
			continue
		}
		kept = append(kept, t)
	}
	m.ts = kept
	return deleted, nil
}

func (m *mockStore) remaining() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]int64(nil), m.ts...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestNewSweeper(t *testing.T) {
	if _, err := NewSweeper(nil, Config{}); !errors.Is(err, ErrNilStore) {
		t.Fatalf("NewSweeper(nil) error = %v, want ErrNilStore", err)
	}
	s, err := NewSweeper(&mockStore{}, Config{})
	if err != nil {
		t.Fatalf("NewSweeper() error = %v", err)
	}
	if s.cfg != DefaultConfig() {
		t.Errorf("cfg = %+v, want defaults", s.cfg)
	}
}

func TestSweep_CutoffBoundary(t *testing.T) {
	const newest = int64(1_700_000_000)
	window := int64(DefaultWindow / time.Second)

	tests := []struct {
		name        string
		ts          []int64
		wantDeleted int64
		wantKept    []int64
	}{
		{
			name:        "row at cutoff kept",
			ts:          []int64{newest - window, newest},
			wantDeleted: 0,
			wantKept:    []int64{newest - window, newest},
		},
		{
			name:        "row one second older deleted",
			ts:          []int64{newest - window - 1, newest - window, newest},
			wantDeleted: 1,
			wantKept:    []int64{newest - window, newest},
		},
		{
			name:        "single row never deletes itself",
			ts:          []int64{newest},
			wantDeleted: 0,
			wantKept:    []int64{newest},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockStore{ts: append([]int64(nil), tt.ts...)}
			s, err := NewSweeper(store, Config{})
			if err != nil {
				t.Fatal(err)
			}

			deleted, err := s.Sweep(context.Background())
			if err != nil {
				t.Fatalf("Sweep() error = %v", err)
			}
			if deleted != tt.wantDeleted {
				t.Errorf("deleted = %d, want %d", deleted, tt.wantDeleted)
			}
			got := store.remaining()
			if len(got) != len(tt.wantKept) {
				t.Fatalf("remaining = %v, want %v", got, tt.wantKept)
			}
			for i := range got {
				if got[i] != tt.wantKept[i] {
					t.Errorf("remaining = %v, want %v", got, tt.wantKept)
					break
				}
			}
			if len(store.cutoffs) != 1 || store.cutoffs[0] != newest-window {
				t.Errorf("cutoffs = %v, want [%d]", store.cutoffs, newest-window)
			}
		})
	}
}

func TestSweep_EmptyHistoryIsNoop(t *testing.T) {
	store := &mockStore{}
	s, _ := NewSweeper(store, Config{})

	deleted, err := s.Sweep(context.Background())
	if err != nil || deleted != 0 {
		t.Fatalf("Sweep() = %d, %v; want 0, nil", deleted, err)
	}
	if len(store.cutoffs) != 0 {
		t.Errorf("DeleteBefore called with %v on empty history", store.cutoffs)
	}
	if st := s.Stats(); st.Runs != 1 || st.LastCutoff != 0 {
		t.Errorf("stats = %+v", st)
	}
}

func TestSweep_Errors(t *testing.T) {
	boom := errors.New("boom")

	t.Run("max timestamp", func(t *testing.T) {
		s, _ := NewSweeper(&mockStore{maxErr: boom}, Config{})
		if _, err := s.Sweep(context.Background()); !errors.Is(err, boom) {
			t.Fatalf("Sweep() error = %v, want boom", err)
		}
		if st := s.Stats(); st.Failures != 1 || st.LastError == "" {
			t.Errorf("stats = %+v", st)
		}
	})

	t.Run("delete", func(t *testing.T) {
		store := &mockStore{ts: []int64{1, 2}, deleteErr: boom}
		s, _ := NewSweeper(store, Config{})
		if _, err := s.Sweep(context.Background()); !errors.Is(err, boom) {
			t.Fatalf("Sweep() error = %v, want boom", err)
		}

		store.mu.Lock()
		store.deleteErr = nil
		store.mu.Unlock()
		if _, err := s.Sweep(context.Background()); err != nil {
			t.Fatalf("retry Sweep() error = %v", err)
		}
		st := s.Stats()
		if st.Runs != 2 || st.Failures != 1 || st.LastError != "" {
			t.Errorf("stats = %+v", st)
		}
	})
}

func TestServe_SweepsUntilCancelled(t *testing.T) {
	window := int64(time.Hour / time.Second)
	store := &mockStore{ts: []int64{0, 2 * window}}
	s, _ := NewSweeper(store, Config{Interval: 10 * time.Millisecond, Window: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	deadline := time.After(2 * time.Second)
	for s.Stats().Runs == 0 {
		select {
		case <-deadline:
			cancel()
			t.Fatal("no sweep within 2s")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not stop")
	}
	if got := store.remaining(); len(got) != 1 || got[0] != 2*window {
		t.Errorf("remaining = %v, want [%d]", got, 2*window)
	}
}
