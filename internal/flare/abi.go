package flare

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const contractRegistryABIJSON = `[
  {"inputs": [{"internalType": "string", "name": "_name", "type": "string"}], "name": "getContractAddressByName", "outputs": [{"internalType": "address", "name": "", "type": "address"}], "stateMutability": "view", "type": "function"}
]`

const ftsoV2ABIJSON = `[
  {
    "inputs": [{"internalType": "bytes21", "name": "_feedId", "type": "bytes21"}],
    "name": "getFeedByIdInWei",
    "outputs": [
      {"internalType": "uint256", "name": "_value", "type": "uint256"},
      {"internalType": "uint64", "name": "_timestamp", "type": "uint64"}
    ],
    "stateMutability": "payable",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "bytes21[]", "name": "_feedIds", "type": "bytes21[]"}],
    "name": "getFeedsByIdInWei",
    "outputs": [
      {"internalType": "uint256[]", "name": "_values", "type": "uint256[]"},
      {"internalType": "uint64", "name": "_timestamp", "type": "uint64"}
    ],
    "stateMutability": "payable",
    "type": "function"
  }
]`

const flareBetABIJSON = `[
  {"inputs": [], "name": "nextMarketId", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {
    "inputs": [{"internalType": "uint256", "name": "marketId", "type": "uint256"}],
    "name": "getMarket",
    "outputs": [
      {"internalType": "string", "name": "question", "type": "string"},
      {"internalType": "bytes21", "name": "feedId", "type": "bytes21"},
      {"internalType": "uint256", "name": "targetPrice", "type": "uint256"},
      {"internalType": "uint256", "name": "deadline", "type": "uint256"},
      {"internalType": "uint256", "name": "yesPool", "type": "uint256"},
      {"internalType": "uint256", "name": "noPool", "type": "uint256"},
      {"internalType": "uint256", "name": "resolvedPrice", "type": "uint256"},
      {"internalType": "bool", "name": "resolved", "type": "bool"},
      {"internalType": "bool", "name": "outcome", "type": "bool"},
      {"internalType": "address", "name": "creator", "type": "address"}
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {"inputs": [{"internalType": "uint256", "name": "", "type": "uint256"}, {"internalType": "address", "name": "", "type": "address"}], "name": "yesBets", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [{"internalType": "uint256", "name": "", "type": "uint256"}, {"internalType": "address", "name": "", "type": "address"}], "name": "noBets", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [{"internalType": "uint256", "name": "", "type": "uint256"}, {"internalType": "address", "name": "", "type": "address"}], "name": "claimed", "outputs": [{"internalType": "bool", "name": "", "type": "bool"}], "stateMutability": "view", "type": "function"},
  {"inputs": [{"internalType": "uint256", "name": "marketId", "type": "uint256"}, {"internalType": "address", "name": "user", "type": "address"}], "name": "calculatePayout", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"}
]`

const assetManagerABIJSON = `[
  {"inputs": [], "name": "lotSize", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "assetMintingGranularityUBA", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [{"internalType": "uint256", "name": "_lots", "type": "uint256"}], "name": "collateralReservationFee", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {
    "inputs": [
      {"internalType": "uint256", "name": "_start", "type": "uint256"},
      {"internalType": "uint256", "name": "_end", "type": "uint256"}
    ],
    "name": "getAvailableAgentsDetailedList",
    "outputs": [
      {
        "components": [
          {"internalType": "address", "name": "agentVault", "type": "address"},
          {"internalType": "address", "name": "ownerManagementAddress", "type": "address"},
          {"internalType": "uint256", "name": "feeBIPS", "type": "uint256"},
          {"internalType": "uint256", "name": "mintingVaultCollateralRatioBIPS", "type": "uint256"},
          {"internalType": "uint256", "name": "mintingPoolCollateralRatioBIPS", "type": "uint256"},
          {"internalType": "uint256", "name": "freeCollateralLots", "type": "uint256"},
          {"internalType": "uint8", "name": "status", "type": "uint8"}
        ],
        "internalType": "struct AvailableAgentInfo[]",
        "name": "_agents",
        "type": "tuple[]"
      },
      {"internalType": "uint256", "name": "_totalLength", "type": "uint256"}
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "agentVault", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "minter", "type": "address"},
      {"indexed": true, "internalType": "uint256", "name": "collateralReservationId", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "valueUBA", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "feeUBA", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "firstUnderlyingBlock", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "lastUnderlyingBlock", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "lastUnderlyingTimestamp", "type": "uint256"},
      {"indexed": false, "internalType": "string", "name": "paymentAddress", "type": "string"},
      {"indexed": false, "internalType": "bytes32", "name": "paymentReference", "type": "bytes32"},
      {"indexed": false, "internalType": "address", "name": "executor", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "executorFeeNatWei", "type": "uint256"}
    ],
    "name": "CollateralReserved",
    "type": "event"
  }
]`

// ERC-4626 vault reads plus the ERC-20 share token surface.
const vaultABIJSON = `[
  {"inputs": [], "name": "asset", "outputs": [{"internalType": "address", "name": "", "type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "totalAssets", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "totalSupply", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "decimals", "outputs": [{"internalType": "uint8", "name": "", "type": "uint8"}], "stateMutability": "view", "type": "function"},
  {"inputs": [{"internalType": "address", "name": "account", "type": "address"}], "name": "balanceOf", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [{"internalType": "uint256", "name": "shares", "type": "uint256"}], "name": "convertToAssets", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"}
]`

const erc20ABIJSON = `[
  {"inputs": [{"internalType": "address", "name": "account", "type": "address"}], "name": "balanceOf", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "decimals", "outputs": [{"internalType": "uint8", "name": "", "type": "uint8"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "symbol", "outputs": [{"internalType": "string", "name": "", "type": "string"}], "stateMutability": "view", "type": "function"}
]`

const multicall3ABIJSON = `[
  {
    "inputs": [
      {
        "components": [
          {"internalType": "address", "name": "target", "type": "address"},
          {"internalType": "bool", "name": "allowFailure", "type": "bool"},
          {"internalType": "bytes", "name": "callData", "type": "bytes"}
        ],
        "internalType": "struct Multicall3.Call3[]",
        "name": "calls",
        "type": "tuple[]"
      }
    ],
    "name": "aggregate3",
    "outputs": [
      {
        "components": [
          {"internalType": "bool", "name": "success", "type": "bool"},
          {"internalType": "bytes", "name": "returnData", "type": "bytes"}
        ],
        "internalType": "struct Multicall3.Result[]",
        "name": "returnData",
        "type": "tuple[]"
      }
    ],
    "stateMutability": "payable",
    "type": "function"
  },
  {"inputs": [{"internalType": "address", "name": "addr", "type": "address"}], "name": "getEthBalance", "outputs": [{"internalType": "uint256", "name": "balance", "type": "uint256"}], "stateMutability": "view", "type": "function"}
]`

type lazyABI struct {
	json   string
	once   sync.Once
	parsed abi.ABI
	err    error
}

func (l *lazyABI) get() (abi.ABI, error) {
	l.once.Do(func() {
		l.parsed, l.err = abi.JSON(strings.NewReader(l.json))
	})
	return l.parsed, l.err
}

var (
	contractRegistryABI = &lazyABI{json: contractRegistryABIJSON}
	ftsoV2ABI           = &lazyABI{json: ftsoV2ABIJSON}
	flareBetABI         = &lazyABI{json: flareBetABIJSON}
	assetManagerABI     = &lazyABI{json: assetManagerABIJSON}
	vaultABI            = &lazyABI{json: vaultABIJSON}
	erc20ABI            = &lazyABI{json: erc20ABIJSON}
	multicall3ABI       = &lazyABI{json: multicall3ABIJSON}
)

// ContractRegistryABI returns the parsed Flare ContractRegistry ABI.
func ContractRegistryABI() (abi.ABI, error) { return contractRegistryABI.get() }

// FtsoV2ABI returns the parsed FTSOv2 ABI.
func FtsoV2ABI() (abi.ABI, error) { return ftsoV2ABI.get() }

// FlareBetABI returns the parsed FlareBet prediction market ABI.
func FlareBetABI() (abi.ABI, error) { return flareBetABI.get() }

// AssetManagerABI returns the parsed FAssets AssetManager ABI.
func AssetManagerABI() (abi.ABI, error) { return assetManagerABI.get() }

// VaultABI returns the parsed ERC-4626 vault ABI.
func VaultABI() (abi.ABI, error) { return vaultABI.get() }

// ERC20ABI returns the parsed ERC-20 ABI.
func ERC20ABI() (abi.ABI, error) { return erc20ABI.get() }

// Multicall3ABI returns the parsed Multicall3 ABI.
func Multicall3ABI() (abi.ABI, error) { return multicall3ABI.get() }
