package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"flareVault/internal/bridge"
	"flareVault/internal/chain"
	"flareVault/internal/flare"
	"flareVault/internal/model"
	"flareVault/internal/poller"
	"flareVault/internal/portfolio"
	"flareVault/internal/stake"
	"flareVault/internal/yield"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	}
	if s.deps.Prices != nil {
		if snap, err := s.deps.Prices.LatestPrices(r.Context()); err == nil {
			body["prices_live"] = snap.Live
			body["prices_timestamp"] = snap.Timestamp
		}
	}
	s.respondJSON(w, http.StatusOK, body)
}

func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	if s.deps.Prices == nil {
		s.respondError(w, http.StatusServiceUnavailable, "prices not configured", nil)
		return
	}
	snap, err := s.deps.Prices.LatestPrices(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to load prices", err)
		return
	}
	s.respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleMarkets(w http.ResponseWriter, r *http.Request) {
	if s.deps.Markets == nil {
		s.respondError(w, http.StatusServiceUnavailable, "markets not configured", nil)
		return
	}
	account, ok := s.accountParam(w, r)
	if !ok {
		return
	}
	views, err := s.deps.Markets.Views(r.Context(), account)
	if err != nil {
		s.respondError(w, http.StatusBadGateway, "failed to build market views", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"markets": views,
		"count":   len(views),
	})
}

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	if s.deps.Markets == nil {
		s.respondError(w, http.StatusServiceUnavailable, "markets not configured", nil)
		return
	}
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid market id", nil)
		return
	}
	account, ok := s.accountParam(w, r)
	if !ok {
		return
	}
	view, err := s.deps.Markets.View(r.Context(), id, account)
	if errors.Is(err, poller.ErrMarketNotFound) {
		s.respondError(w, http.StatusNotFound, "market not found", nil)
		return
	}
	if err != nil {
		s.respondError(w, http.StatusBadGateway, "failed to build market view", err)
		return
	}
	s.respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleYields(w http.ResponseWriter, r *http.Request) {
	opps := yield.Sorted(yield.Opportunities())
	if asset := r.URL.Query().Get("asset"); asset != "" {
		opps = yield.ForAsset(opps, asset)
	}
	body := map[string]interface{}{
		"opportunities": opps,
		"count":         len(opps),
	}
	if best, ok := yield.Best(opps); ok {
		body["best"] = best
	}
	s.respondJSON(w, http.StatusOK, body)
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	if s.deps.Balances == nil {
		s.respondError(w, http.StatusServiceUnavailable, "balances not configured", nil)
		return
	}
	holders, err := chain.ParseAddresses(strings.Split(r.URL.Query().Get("address"), ","))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if len(holders) == 0 {
		holders = s.deps.DefaultHolders
	}
	if len(holders) == 0 {
		s.respondError(w, http.StatusBadRequest, "address is required", nil)
		return
	}
	prices := s.latestPrices(r)
	balances, err := s.deps.Balances.Balances(r.Context(), holders, prices)
	if err != nil {
		s.respondError(w, http.StatusBadGateway, "failed to read balances", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"holders":   len(holders),
		"balances":  balances,
		"total_usd": portfolio.TotalUSD(balances),
	})
}

func (s *Server) handleVault(w http.ResponseWriter, r *http.Request) {
	if s.deps.Vault == nil {
		s.respondError(w, http.StatusServiceUnavailable, "vault not configured", nil)
		return
	}
	account, ok := s.accountParam(w, r)
	if !ok {
		return
	}
	state, err := s.deps.Vault.FetchState(r.Context(), account)
	if errors.Is(err, flare.ErrContractNotDeployed) {
		s.respondError(w, http.StatusServiceUnavailable, "vault not deployed", nil)
		return
	}
	if err != nil {
		s.respondError(w, http.StatusBadGateway, "failed to read vault", err)
		return
	}
	prices := s.latestPrices(r)
	s.respondJSON(w, http.StatusOK, stake.BuildStats(state, prices.Price(s.deps.VaultAsset)))
}

func (s *Server) handleBridgeQuote(w http.ResponseWriter, r *http.Request) {
	if s.deps.Bridge == nil {
		s.respondError(w, http.StatusServiceUnavailable, "bridge not configured", nil)
		return
	}
	lots := uint64(1)
	if raw := r.URL.Query().Get("lots"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid lots", nil)
			return
		}
		lots = n
	}
	quote, err := s.deps.Bridge.Quote(r.Context(), lots)
	switch {
	case errors.Is(err, bridge.ErrNoLots):
		s.respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	case errors.Is(err, flare.ErrContractNotDeployed):
		s.respondError(w, http.StatusServiceUnavailable, "asset manager not deployed", nil)
		return
	case err != nil:
		s.respondError(w, http.StatusBadGateway, "failed to quote", err)
		return
	}
	s.respondJSON(w, http.StatusOK, quote)
}

func (s *Server) handleReservation(w http.ResponseWriter, r *http.Request) {
	if s.deps.Bridge == nil {
		s.respondError(w, http.StatusServiceUnavailable, "bridge not configured", nil)
		return
	}
	txHash, err := chain.ParseTxHash(chi.URLParam(r, "tx"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	reservation, err := s.deps.Bridge.Reservation(r.Context(), txHash)
	if errors.Is(err, flare.ErrReservationNotFound) {
		s.respondError(w, http.StatusNotFound, "no collateral reservation in transaction", nil)
		return
	}
	if err != nil {
		s.respondError(w, http.StatusBadGateway, "failed to load reservation", err)
		return
	}
	s.respondJSON(w, http.StatusOK, reservation)
}

// accountParam parses the optional account query parameter. It writes a 400
// and returns false when the value is not an address.
func (s *Server) accountParam(w http.ResponseWriter, r *http.Request) (common.Address, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("account"))
	if raw == "" {
		return common.Address{}, true
	}
	if !common.IsHexAddress(raw) {
		s.respondError(w, http.StatusBadRequest, "invalid account", nil)
		return common.Address{}, false
	}
	return common.HexToAddress(raw), true
}

func (s *Server) latestPrices(r *http.Request) model.PriceSnapshot {
	if s.deps.Prices == nil {
		return flare.DemoSnapshot()
	}
	snap, err := s.deps.Prices.LatestPrices(r.Context())
	if err != nil {
		s.logger.Warn("latest prices unavailable, using demo prices", zap.Error(err))
		return flare.DemoSnapshot()
	}
	return snap
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		s.logger.Warn(message, zap.Error(err))
	}
	s.respondJSON(w, status, errorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}
