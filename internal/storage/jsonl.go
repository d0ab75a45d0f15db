package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"flareVault/internal/market"
	"flareVault/internal/model"
)

// Record kinds written by JsonlStorage.
const (
	KindPrices      = "prices"
	KindView        = "view"
	KindReservation = "reservation"
	KindDecodeError = "decode_error"
)

// Record is one JSON line.
type Record struct {
	Kind   string      `json:"kind"`
	PollID string      `json:"poll_id,omitempty"`
	Data   interface{} `json:"data"`
}

// JsonlStorage appends records to a JSONL file.
type JsonlStorage struct {
	path string
	mu   sync.Mutex
}

func NewJsonlStorage(path string) *JsonlStorage {
	return &JsonlStorage{path: path}
}

// PutPrices implements PriceSink.
func (s *JsonlStorage) PutPrices(_ context.Context, pollID string, snap model.PriceSnapshot) error {
	return s.append([]Record{{Kind: KindPrices, PollID: pollID, Data: snap}})
}

// PutViews implements ViewSink.
func (s *JsonlStorage) PutViews(_ context.Context, pollID string, views []market.View) error {
	records := make([]Record, 0, len(views))
	for _, view := range views {
		records = append(records, Record{Kind: KindView, PollID: pollID, Data: view})
	}
	return s.append(records)
}

// PutReservations implements ReservationSink.
func (s *JsonlStorage) PutReservations(_ context.Context, reservations []model.CollateralReservation) error {
	records := make([]Record, 0, len(reservations))
	for _, r := range reservations {
		records = append(records, Record{Kind: KindReservation, Data: r})
	}
	return s.append(records)
}

// PutDecodeErrors records logs that failed to decode.
func (s *JsonlStorage) PutDecodeErrors(_ context.Context, decodeErrors []model.DecodeError) error {
	records := make([]Record, 0, len(decodeErrors))
	for _, e := range decodeErrors {
		records = append(records, Record{Kind: KindDecodeError, Data: e})
	}
	return s.append(records)
}

func (s *JsonlStorage) append(records []Record) error {
	if len(records) == 0 {
		return nil
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, record := range records {
		line, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal %s record: %w", record.Kind, err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write %s record: %w", record.Kind, err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}
