// Package server exposes prices, market views, balances, vault stats and
// bridge quotes over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"flareVault/internal/bridge"
	"flareVault/internal/market"
	"flareVault/internal/model"
)

// PriceProvider returns the latest price snapshot.
type PriceProvider interface {
	LatestPrices(ctx context.Context) (model.PriceSnapshot, error)
}

// MarketProvider builds market views for an account.
type MarketProvider interface {
	Views(ctx context.Context, account common.Address) ([]market.View, error)
	View(ctx context.Context, id uint64, account common.Address) (market.View, error)
}

// BalanceProvider aggregates token balances across holders.
type BalanceProvider interface {
	Balances(ctx context.Context, holders []common.Address, prices model.PriceSnapshot) ([]model.TokenBalance, error)
}

// VaultReader reads staking vault totals and an account's shares.
type VaultReader interface {
	FetchState(ctx context.Context, account common.Address) (model.VaultState, error)
}

// BridgeProvider quotes FAssets mints and decodes reservations.
type BridgeProvider interface {
	Quote(ctx context.Context, lots uint64) (bridge.Quote, error)
	Reservation(ctx context.Context, txHash common.Hash) (model.CollateralReservation, error)
}

// Deps are the backends behind the API. Nil backends answer 503.
type Deps struct {
	Prices   PriceProvider
	Markets  MarketProvider
	Balances BalanceProvider
	Vault    VaultReader
	Bridge   BridgeProvider

	// DefaultHolders answer /balances requests without an address parameter.
	DefaultHolders []common.Address
	// VaultAsset is the price symbol of the vault's underlying asset.
	VaultAsset string
	// CORSOrigins defaults to any origin.
	CORSOrigins []string
}

// Server serves the HTTP API.
type Server struct {
	deps   Deps
	logger *zap.Logger
	router chi.Router
}

// New builds the router.
func New(deps Deps, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.VaultAsset == "" {
		deps.VaultAsset = "FXRP"
	}
	if len(deps.CORSOrigins) == 0 {
		deps.CORSOrigins = []string{"*"}
	}
	s := &Server{deps: deps, logger: logger}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.deps.CORSOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/prices", s.handlePrices)

		r.Get("/markets", s.handleMarkets)
		r.Get("/markets/{id}", s.handleMarket)

		r.Get("/yields", s.handleYields)
		r.Get("/balances", s.handleBalances)
		r.Get("/vault", s.handleVault)

		r.Route("/bridge", func(r chi.Router) {
			r.Get("/quote", s.handleBridgeQuote)
			r.Get("/reservations/{tx}", s.handleReservation)
		})
	})

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("http stopped")
	return nil
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			)
		})
	}
}
