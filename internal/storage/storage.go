// Package storage defines the sinks poll and scan results are written to.
package storage

import (
	"context"
	"errors"

	"flareVault/internal/market"
	"flareVault/internal/model"
)

// PriceSink stores price snapshots.
type PriceSink interface {
	PutPrices(ctx context.Context, pollID string, snap model.PriceSnapshot) error
}

// ViewSink stores the market views computed by one poll.
type ViewSink interface {
	PutViews(ctx context.Context, pollID string, views []market.View) error
}

// ReservationSink stores decoded collateral reservations.
type ReservationSink interface {
	PutReservations(ctx context.Context, reservations []model.CollateralReservation) error
}

// DecodeErrorSink stores logs that could not be decoded.
type DecodeErrorSink interface {
	PutDecodeErrors(ctx context.Context, decodeErrors []model.DecodeError) error
}

// Fanout forwards every write to all of its sinks and joins their errors.
type Fanout struct {
	Prices []PriceSink
	Views  []ViewSink
}

// PutPrices implements PriceSink.
func (f Fanout) PutPrices(ctx context.Context, pollID string, snap model.PriceSnapshot) error {
	var errs []error
	for _, sink := range f.Prices {
		if err := sink.PutPrices(ctx, pollID, snap); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PutViews implements ViewSink.
func (f Fanout) PutViews(ctx context.Context, pollID string, views []market.View) error {
	var errs []error
	for _, sink := range f.Views {
		if err := sink.PutViews(ctx, pollID, views); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
