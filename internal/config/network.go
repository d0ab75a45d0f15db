package config

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"flareVault/internal/model"
)

// Network is the static description of a Flare network: RPC endpoint,
// native currency, well-known contract addresses and tracked tokens.
// A zero address means the contract is not deployed there.
type Network struct {
	Name             string
	ChainID          uint64
	RPCURL           string
	NativeSymbol     string
	NativeName       string
	ContractRegistry common.Address
	Multicall3       common.Address
	WFLR             common.Address
	FXRP             common.Address
	StXRP            common.Address
	FlareBet         common.Address
	AssetManager     common.Address
	Tokens           []model.Token
}

var (
	contractRegistry = common.HexToAddress("0xaD67FE66660Fb8dFE9d6b1b4240d8650e30F6019")
	multicall3       = common.HexToAddress("0xcA11bde05977b3631167028862bE2a173976CA11")
)

// Flare is Flare mainnet.
var Flare = Network{
	Name:             "flare",
	ChainID:          14,
	RPCURL:           "https://flare-api.flare.network/ext/C/rpc",
	NativeSymbol:     "FLR",
	NativeName:       "Flare",
	ContractRegistry: contractRegistry,
	Multicall3:       multicall3,
	WFLR:             common.HexToAddress("0x1D80c49BbBCd1C0911346656B529DF9E5c2F783d"),
	FXRP:             common.HexToAddress("0x96B41289D90444B8adD57e6F265DB5aE8651c470"),
	Tokens: []model.Token{
		{Symbol: "FLR", Name: "Flare", Decimals: 18, Address: model.NativeAddress},
		{Symbol: "WFLR", Name: "Wrapped Flare", Decimals: 18, Address: "0x1D80c49BbBCd1C0911346656B529DF9E5c2F783d"},
		{Symbol: "FXRP", Name: "FXRP", Decimals: 6, Address: "0x96B41289D90444B8adD57e6F265DB5aE8651c470"},
		{Symbol: "USDT0", Name: "USDT0", Decimals: 6, Address: "0x0000000000000000000000000000000000000000"},
	},
}

// Coston2 is the Flare testnet.
var Coston2 = Network{
	Name:             "coston2",
	ChainID:          114,
	RPCURL:           "https://coston2-api.flare.network/ext/C/rpc",
	NativeSymbol:     "C2FLR",
	NativeName:       "Coston2 Flare",
	ContractRegistry: contractRegistry,
	Multicall3:       multicall3,
	WFLR:             common.HexToAddress("0xC67DCE33e8b36abDD40FdBCA35F4e24CA3AEe78A"),
	FXRP:             common.HexToAddress("0x0b6A3645c240605887a5532109323A3E12273dc7"),
	Tokens: []model.Token{
		{Symbol: "C2FLR", Name: "Coston2 Flare", Decimals: 18, Address: model.NativeAddress},
		{Symbol: "WFLR", Name: "Wrapped Flare", Decimals: 18, Address: "0xC67DCE33e8b36abDD40FdBCA35F4e24CA3AEe78A"},
		{Symbol: "FTestXRP", Name: "FXRP", Decimals: 6, Address: "0x0b6A3645c240605887a5532109323A3E12273dc7"},
		{Symbol: "USDT0", Name: "USDT0", Decimals: 6, Address: "0xC1A5B41512496B80903D1f32d6dEa3a73212E71F"},
	},
}

// LookupNetwork returns a copy of the named network.
func LookupNetwork(name string) (Network, error) {
	var n Network
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "flare", "mainnet":
		n = Flare
	case "coston2", "testnet":
		n = Coston2
	default:
		return Network{}, fmt.Errorf("unknown network: %q", name)
	}
	n.Tokens = append([]model.Token(nil), n.Tokens...)
	return n, nil
}
