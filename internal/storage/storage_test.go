package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"flareVault/internal/market"
	"flareVault/internal/model"
)

func readRecords(t *testing.T, path string) []map[string]json.RawMessage {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()

	var out []map[string]json.RawMessage
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var rec map[string]json.RawMessage
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("parse line %q: %v", scanner.Text(), err)
		}
		out = append(out, rec)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	return out
}

func TestJsonlStorageAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "poll.jsonl")
	s := NewJsonlStorage(path)
	ctx := context.Background()

	if err := s.PutPrices(ctx, "poll-1", model.PriceSnapshot{Prices: map[string]float64{"FLR": 0.02}, Live: true}); err != nil {
		t.Fatalf("put prices: %v", err)
	}
	if err := s.PutViews(ctx, "poll-1", []market.View{{ID: 1}, {ID: 2}}); err != nil {
		t.Fatalf("put views: %v", err)
	}
	if err := s.PutViews(ctx, "poll-2", nil); err != nil {
		t.Fatalf("put empty views: %v", err)
	}
	if err := s.PutReservations(ctx, []model.CollateralReservation{{ReservationID: "7"}}); err != nil {
		t.Fatalf("put reservations: %v", err)
	}

	records := readRecords(t, path)
	if len(records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(records))
	}
	kinds := []string{KindPrices, KindView, KindView, KindReservation}
	for i, want := range kinds {
		var kind string
		if err := json.Unmarshal(records[i]["kind"], &kind); err != nil {
			t.Fatalf("kind %d: %v", i, err)
		}
		if kind != want {
			t.Fatalf("record %d: expected kind %s, got %s", i, want, kind)
		}
	}
	if _, ok := records[3]["poll_id"]; ok {
		t.Fatalf("reservation record must not carry a poll id")
	}
}

type recordingSink struct {
	pollIDs []string
	err     error
}

func (r *recordingSink) PutPrices(_ context.Context, pollID string, _ model.PriceSnapshot) error {
	r.pollIDs = append(r.pollIDs, pollID)
	return r.err
}

func (r *recordingSink) PutViews(_ context.Context, pollID string, _ []market.View) error {
	r.pollIDs = append(r.pollIDs, pollID)
	return r.err
}

func TestFanoutWritesEverySink(t *testing.T) {
	failing := &recordingSink{err: errors.New("down")}
	healthy := &recordingSink{}
	fan := Fanout{Prices: []PriceSink{failing, healthy}, Views: []ViewSink{healthy}}

	if err := fan.PutPrices(context.Background(), "p", model.PriceSnapshot{}); err == nil {
		t.Fatalf("expected joined error")
	}
	if err := fan.PutViews(context.Background(), "p", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(failing.pollIDs) != 1 || len(healthy.pollIDs) != 2 {
		t.Fatalf("unexpected writes: failing=%v healthy=%v", failing.pollIDs, healthy.pollIDs)
	}
}
