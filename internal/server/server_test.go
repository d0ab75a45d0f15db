package server

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"flareVault/internal/bridge"
	"flareVault/internal/flare"
	"flareVault/internal/market"
	"flareVault/internal/model"
	"flareVault/internal/poller"
	"flareVault/internal/stake"
)

var testAccount = common.HexToAddress("0x2222222222222222222222222222222222222222")

type fakePrices struct {
	snap model.PriceSnapshot
}

func (f *fakePrices) LatestPrices(context.Context) (model.PriceSnapshot, error) {
	return f.snap, nil
}

type fakeMarkets struct {
	views   []market.View
	account common.Address
}

func (f *fakeMarkets) Views(_ context.Context, account common.Address) ([]market.View, error) {
	f.account = account
	return f.views, nil
}

func (f *fakeMarkets) View(_ context.Context, id uint64, account common.Address) (market.View, error) {
	f.account = account
	for _, v := range f.views {
		if v.ID == id {
			return v, nil
		}
	}
	return market.View{}, poller.ErrMarketNotFound
}

type fakeBalances struct {
	holders []common.Address
}

func (f *fakeBalances) Balances(_ context.Context, holders []common.Address, prices model.PriceSnapshot) ([]model.TokenBalance, error) {
	f.holders = holders
	return []model.TokenBalance{
		{Symbol: "C2FLR", Balance: 100, USDValue: 100 * prices.Price("C2FLR")},
	}, nil
}

type fakeVault struct {
	state model.VaultState
	err   error
}

func (f *fakeVault) FetchState(context.Context, common.Address) (model.VaultState, error) {
	return f.state, f.err
}

type fakeBridge struct {
	lots        uint64
	reservation model.CollateralReservation
	err         error
}

func (f *fakeBridge) Quote(_ context.Context, lots uint64) (bridge.Quote, error) {
	if lots == 0 {
		return bridge.Quote{}, bridge.ErrNoLots
	}
	f.lots = lots
	return bridge.Quote{Lots: lots, LotSizeXRP: 10, TotalXRP: float64(lots) * 10}, nil
}

func (f *fakeBridge) Reservation(context.Context, common.Hash) (model.CollateralReservation, error) {
	return f.reservation, f.err
}

func newTestServer() (*Server, *fakeMarkets, *fakeBalances, *fakeBridge) {
	markets := &fakeMarkets{views: []market.View{{ID: 0, Symbol: "XRP"}, {ID: 1, Symbol: "FLR"}}}
	balances := &fakeBalances{}
	br := &fakeBridge{reservation: model.CollateralReservation{ReservationID: "77"}}
	s := New(Deps{
		Prices:   &fakePrices{snap: model.PriceSnapshot{Prices: map[string]float64{"C2FLR": 0.02, "FXRP": 0.5}, Live: true, Timestamp: 9}},
		Markets:  markets,
		Balances: balances,
		Vault: &fakeVault{state: model.VaultState{
			Address:     "0xvault",
			Decimals:    6,
			TotalAssets: big.NewInt(2_000_000),
			TotalSupply: big.NewInt(1_000_000),
			Shares:      big.NewInt(500_000),
		}},
		Bridge: br,
	}, nil)
	return s, markets, balances, br
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	s, _, _, _ := newTestServer()
	rec := get(t, s, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]interface{}
	decode(t, rec, &body)
	if body["status"] != "ok" || body["prices_live"] != true {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestPrices(t *testing.T) {
	s, _, _, _ := newTestServer()
	rec := get(t, s, "/api/v1/prices")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var snap model.PriceSnapshot
	decode(t, rec, &snap)
	if !snap.Live || snap.Timestamp != 9 || snap.Price("FXRP") != 0.5 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestMarkets(t *testing.T) {
	s, markets, _, _ := newTestServer()
	rec := get(t, s, "/api/v1/markets?account="+testAccount.Hex())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Markets []market.View `json:"markets"`
		Count   int           `json:"count"`
	}
	decode(t, rec, &body)
	if body.Count != 2 || len(body.Markets) != 2 || body.Markets[1].Symbol != "FLR" {
		t.Fatalf("unexpected body: %+v", body)
	}
	if markets.account != testAccount {
		t.Fatalf("account = %s", markets.account.Hex())
	}
}

func TestMarketsRejectsBadAccount(t *testing.T) {
	s, _, _, _ := newTestServer()
	rec := get(t, s, "/api/v1/markets?account=0x1234")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	var body errorResponse
	decode(t, rec, &body)
	if body.Code != http.StatusBadRequest || body.Message != "invalid account" {
		t.Fatalf("unexpected error body: %+v", body)
	}
}

func TestMarketByID(t *testing.T) {
	s, _, _, _ := newTestServer()

	rec := get(t, s, "/api/v1/markets/1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var view market.View
	decode(t, rec, &view)
	if view.ID != 1 {
		t.Fatalf("id = %d", view.ID)
	}

	if rec := get(t, s, "/api/v1/markets/9"); rec.Code != http.StatusNotFound {
		t.Fatalf("missing market status = %d", rec.Code)
	}
	if rec := get(t, s, "/api/v1/markets/abc"); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id status = %d", rec.Code)
	}
}

func TestYields(t *testing.T) {
	s, _, _, _ := newTestServer()
	rec := get(t, s, "/api/v1/yields")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Opportunities []model.YieldOpportunity `json:"opportunities"`
		Best          *model.YieldOpportunity  `json:"best"`
	}
	decode(t, rec, &body)
	if len(body.Opportunities) == 0 || body.Best == nil {
		t.Fatalf("unexpected body: %+v", body)
	}
	if body.Best.APY != body.Opportunities[0].APY {
		t.Fatalf("best apy %v, first %v", body.Best.APY, body.Opportunities[0].APY)
	}
}

func TestBalances(t *testing.T) {
	s, _, balances, _ := newTestServer()
	other := common.HexToAddress("0x3333333333333333333333333333333333333333")
	rec := get(t, s, "/api/v1/balances?address="+testAccount.Hex()+","+other.Hex())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Holders  int                  `json:"holders"`
		Balances []model.TokenBalance `json:"balances"`
		TotalUSD float64              `json:"total_usd"`
	}
	decode(t, rec, &body)
	if body.Holders != 2 || len(balances.holders) != 2 || len(body.Balances) != 1 {
		t.Fatalf("unexpected body: %+v", body)
	}
	if body.TotalUSD != body.Balances[0].USDValue {
		t.Fatalf("total %v != %v", body.TotalUSD, body.Balances[0].USDValue)
	}

	if rec := get(t, s, "/api/v1/balances"); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing address status = %d", rec.Code)
	}
	if rec := get(t, s, "/api/v1/balances?address=nope"); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad address status = %d", rec.Code)
	}
}

func TestVault(t *testing.T) {
	s, _, _, _ := newTestServer()
	rec := get(t, s, "/api/v1/vault?account="+testAccount.Hex())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var stats stake.Stats
	decode(t, rec, &stats)
	if stats.ExchangeRate != 2 || stats.Shares != 0.5 || stats.ShareValue != 1 || stats.ShareValueUSD != 0.5 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestVaultNotDeployed(t *testing.T) {
	s := New(Deps{Vault: &fakeVault{err: flare.ErrContractNotDeployed}}, nil)
	if rec := get(t, s, "/api/v1/vault"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestBridgeQuote(t *testing.T) {
	s, _, _, br := newTestServer()
	rec := get(t, s, "/api/v1/bridge/quote?lots=3")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var quote bridge.Quote
	decode(t, rec, &quote)
	if quote.Lots != 3 || quote.TotalXRP != 30 || br.lots != 3 {
		t.Fatalf("unexpected quote: %+v", quote)
	}

	if rec := get(t, s, "/api/v1/bridge/quote?lots=0"); rec.Code != http.StatusBadRequest {
		t.Fatalf("zero lots status = %d", rec.Code)
	}
	if rec := get(t, s, "/api/v1/bridge/quote?lots=-1"); rec.Code != http.StatusBadRequest {
		t.Fatalf("negative lots status = %d", rec.Code)
	}
}

func TestReservation(t *testing.T) {
	s, _, _, br := newTestServer()
	tx := "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

	rec := get(t, s, "/api/v1/bridge/reservations/"+tx)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var reservation model.CollateralReservation
	decode(t, rec, &reservation)
	if reservation.ReservationID != "77" {
		t.Fatalf("unexpected reservation: %+v", reservation)
	}

	br.err = flare.ErrReservationNotFound
	if rec := get(t, s, "/api/v1/bridge/reservations/"+tx); rec.Code != http.StatusNotFound {
		t.Fatalf("not found status = %d", rec.Code)
	}
	br.err = errors.New("rpc down")
	if rec := get(t, s, "/api/v1/bridge/reservations/"+tx); rec.Code != http.StatusBadGateway {
		t.Fatalf("rpc failure status = %d", rec.Code)
	}
	if rec := get(t, s, "/api/v1/bridge/reservations/0x12"); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad hash status = %d", rec.Code)
	}
}

type missingReceipts struct{}

func (missingReceipts) TransactionReceipt(context.Context, common.Hash) (*types.Receipt, error) {
	return nil, ethereum.NotFound
}

func TestReservationUnknownTransaction(t *testing.T) {
	am := flare.NewAssetManager(nil, common.HexToAddress("0x00000000000000000000000000000000000A5500"))
	s := New(Deps{Bridge: bridge.NewService(am, missingReceipts{}, nil)}, nil)
	tx := "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	if rec := get(t, s, "/api/v1/bridge/reservations/"+tx); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestUnconfiguredBackends(t *testing.T) {
	s := New(Deps{}, nil)
	for _, path := range []string{
		"/api/v1/prices",
		"/api/v1/markets",
		"/api/v1/balances?address=" + testAccount.Hex(),
		"/api/v1/vault",
		"/api/v1/bridge/quote",
	} {
		if rec := get(t, s, path); rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("%s status = %d", path, rec.Code)
		}
	}
	if rec := get(t, s, "/api/v1/yields"); rec.Code != http.StatusOK {
		t.Fatalf("yields status = %d", rec.Code)
	}
}

func TestBalancesDefaultHolders(t *testing.T) {
	balances := &fakeBalances{}
	s := New(Deps{Balances: balances, DefaultHolders: []common.Address{testAccount}}, nil)
	if rec := get(t, s, "/api/v1/balances"); rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(balances.holders) != 1 || balances.holders[0] != testAccount {
		t.Fatalf("holders = %v", balances.holders)
	}
}
