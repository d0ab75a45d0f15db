package bridge

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"flareVault/internal/flare"
	"flareVault/internal/model"
)

// agentPageSize bounds one getAvailableAgentsDetailedList read.
const agentPageSize = 100

// ReceiptSource fetches mined transaction receipts.
type ReceiptSource interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Service reads AssetManager state to quote mints and inspect reservations.
type Service struct {
	assetManager *flare.AssetManager
	receipts     ReceiptSource
	logger       *zap.Logger
}

// NewService builds a bridge service.
func NewService(assetManager *flare.AssetManager, receipts ReceiptSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{assetManager: assetManager, receipts: receipts, logger: logger}
}

// Quote reads lot size, agents and the reservation fee and prices lots.
func (s *Service) Quote(ctx context.Context, lots uint64) (Quote, error) {
	if lots == 0 {
		return Quote{}, ErrNoLots
	}
	lotSize, err := s.assetManager.LotSize(ctx)
	if err != nil {
		return Quote{}, fmt.Errorf("lot size: %w", err)
	}
	agents, err := s.Agents(ctx)
	if err != nil {
		return Quote{}, err
	}
	fee, err := s.assetManager.ReservationFee(ctx, lots)
	if err != nil {
		return Quote{}, fmt.Errorf("reservation fee: %w", err)
	}
	return BuildQuote(lots, lotSize, fee, agents)
}

// Agents pages through the full available agent list.
func (s *Service) Agents(ctx context.Context) ([]model.Agent, error) {
	var out []model.Agent
	for start := uint64(0); ; start += agentPageSize {
		page, total, err := s.assetManager.AvailableAgents(ctx, start, start+agentPageSize)
		if err != nil {
			return nil, fmt.Errorf("available agents: %w", err)
		}
		out = append(out, page...)
		if len(page) == 0 || start+agentPageSize >= total {
			break
		}
	}
	s.logger.Debug("loaded agents", zap.Int("count", len(out)))
	return out, nil
}

// Reservation decodes the CollateralReserved event of a reserveCollateral transaction.
func (s *Service) Reservation(ctx context.Context, txHash common.Hash) (model.CollateralReservation, error) {
	if s.receipts == nil {
		return model.CollateralReservation{}, fmt.Errorf("receipt source is nil")
	}
	receipt, err := s.receipts.TransactionReceipt(ctx, txHash)
	if errors.Is(err, ethereum.NotFound) {
		return model.CollateralReservation{}, fmt.Errorf("receipt %s: %w", txHash.Hex(), flare.ErrReservationNotFound)
	}
	if err != nil {
		return model.CollateralReservation{}, fmt.Errorf("receipt %s: %w", txHash.Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return model.CollateralReservation{}, fmt.Errorf("transaction %s failed", txHash.Hex())
	}
	reservation, err := flare.DecodeCollateralReserved(s.assetManager.Address(), receipt.Logs)
	if err != nil {
		return model.CollateralReservation{}, err
	}
	if receipt.BlockNumber != nil && receipt.BlockNumber.IsUint64() {
		reservation.BlockNumber = receipt.BlockNumber.Uint64()
	}
	return reservation, nil
}
