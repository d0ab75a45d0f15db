package flare

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	"flareVault/internal/model"
)

// ErrReservationNotFound is returned when no log decodes as CollateralReserved.
var ErrReservationNotFound = errors.New("collateral reservation event not found")

const collateralReservedEvent = "CollateralReserved"

type agentInfo struct {
	AgentVault                      common.Address
	OwnerManagementAddress          common.Address
	FeeBIPS                         *big.Int
	MintingVaultCollateralRatioBIPS *big.Int
	MintingPoolCollateralRatioBIPS  *big.Int
	FreeCollateralLots              *big.Int
	Status                          uint8
}

// AssetManager reads FAssets minting parameters.
type AssetManager struct {
	caller  Caller
	address common.Address
}

// NewAssetManager builds a reader for the AssetManager at address.
func NewAssetManager(caller Caller, address common.Address) *AssetManager {
	return &AssetManager{caller: caller, address: address}
}

// Address returns the AssetManager contract address.
func (a *AssetManager) Address() common.Address {
	return a.address
}

// Deployed reports whether the reader points at a contract.
func (a *AssetManager) Deployed() bool {
	return !IsZeroAddress(a.address)
}

// LotSize returns the lot size in underlying base units.
func (a *AssetManager) LotSize(ctx context.Context) (*big.Int, error) {
	return a.readBigInt(ctx, "lotSize")
}

// MintingGranularityUBA returns the smallest mintable amount in underlying base units.
func (a *AssetManager) MintingGranularityUBA(ctx context.Context) (*big.Int, error) {
	return a.readBigInt(ctx, "assetMintingGranularityUBA")
}

// ReservationFee returns the native fee for reserving collateral for lots.
func (a *AssetManager) ReservationFee(ctx context.Context, lots uint64) (*big.Int, error) {
	return a.readBigInt(ctx, "collateralReservationFee", new(big.Int).SetUint64(lots))
}

// AvailableAgents returns agents in the [start, end) window of the available list
// and the total list length.
func (a *AssetManager) AvailableAgents(ctx context.Context, start, end uint64) ([]model.Agent, uint64, error) {
	if !a.Deployed() {
		return nil, 0, ErrContractNotDeployed
	}
	parsed, err := AssetManagerABI()
	if err != nil {
		return nil, 0, err
	}
	values, err := callMethod(ctx, a.caller, a.address, parsed, "getAvailableAgentsDetailedList",
		new(big.Int).SetUint64(start), new(big.Int).SetUint64(end))
	if err != nil {
		return nil, 0, err
	}
	if len(values) != 2 {
		return nil, 0, fmt.Errorf("getAvailableAgentsDetailedList: unexpected outputs %d", len(values))
	}
	infos := *abi.ConvertType(values[0], new([]agentInfo)).(*[]agentInfo)
	total, err := asUint64(values[1])
	if err != nil {
		return nil, 0, fmt.Errorf("getAvailableAgentsDetailedList total: %w", err)
	}

	agents := make([]model.Agent, 0, len(infos))
	for _, info := range infos {
		agents = append(agents, model.Agent{
			AgentVault:                      info.AgentVault.Hex(),
			OwnerManagementAddress:          info.OwnerManagementAddress.Hex(),
			FeeBIPS:                         bigUint64(info.FeeBIPS),
			MintingVaultCollateralRatioBIPS: bigUint64(info.MintingVaultCollateralRatioBIPS),
			MintingPoolCollateralRatioBIPS:  bigUint64(info.MintingPoolCollateralRatioBIPS),
			FreeCollateralLots:              bigUint64(info.FreeCollateralLots),
			Status:                          info.Status,
		})
	}
	return agents, total, nil
}

func (a *AssetManager) readBigInt(ctx context.Context, method string, args ...interface{}) (*big.Int, error) {
	if !a.Deployed() {
		return nil, ErrContractNotDeployed
	}
	parsed, err := AssetManagerABI()
	if err != nil {
		return nil, err
	}
	return callBigInt(ctx, a.caller, a.address, parsed, method, args...)
}

// CollateralReservedTopic returns topic0 of the CollateralReserved event.
func CollateralReservedTopic() (common.Hash, error) {
	parsed, err := AssetManagerABI()
	if err != nil {
		return common.Hash{}, err
	}
	return parsed.Events[collateralReservedEvent].ID, nil
}

// DecodeCollateralReserved returns the first CollateralReserved event emitted by
// assetManager among logs, typically the logs of a reserveCollateral receipt.
// Events from any other contract are ignored.
func DecodeCollateralReserved(assetManager common.Address, logs []*types.Log) (model.CollateralReservation, error) {
	topic, err := CollateralReservedTopic()
	if err != nil {
		return model.CollateralReservation{}, err
	}
	for _, lg := range logs {
		if lg == nil || lg.Address != assetManager || len(lg.Topics) == 0 || lg.Topics[0] != topic {
			continue
		}
		return DecodeCollateralReservedLog(*lg)
	}
	return model.CollateralReservation{}, ErrReservationNotFound
}

// DecodeCollateralReservedLog decodes one CollateralReserved log.
func DecodeCollateralReservedLog(lg types.Log) (model.CollateralReservation, error) {
	parsed, err := AssetManagerABI()
	if err != nil {
		return model.CollateralReservation{}, err
	}
	event := parsed.Events[collateralReservedEvent]
	if len(lg.Topics) == 0 || lg.Topics[0] != event.ID {
		return model.CollateralReservation{}, ErrReservationNotFound
	}

	indexedArgs := indexedArguments(event.Inputs)
	if len(lg.Topics) != len(indexedArgs)+1 {
		return model.CollateralReservation{}, fmt.Errorf("expected %d topics, got %d", len(indexedArgs)+1, len(lg.Topics))
	}
	var indexed struct {
		AgentVault              common.Address
		Minter                  common.Address
		CollateralReservationId *big.Int
	}
	if err := abi.ParseTopics(&indexed, indexedArgs, lg.Topics[1:]); err != nil {
		return model.CollateralReservation{}, fmt.Errorf("parse topics: %w", err)
	}

	values, err := event.Inputs.NonIndexed().Unpack(lg.Data)
	if err != nil {
		return model.CollateralReservation{}, fmt.Errorf("unpack %s: %w", event.Name, err)
	}
	if len(values) != 9 {
		return model.CollateralReservation{}, fmt.Errorf("unexpected %s values: %d", event.Name, len(values))
	}
	nums := make([]*big.Int, 5)
	for i := range nums {
		v, err := asBigInt(values[i])
		if err != nil {
			return model.CollateralReservation{}, fmt.Errorf("%s field %d: %w", event.Name, i, err)
		}
		nums[i] = v
	}
	paymentAddress, ok := values[5].(string)
	if !ok {
		return model.CollateralReservation{}, fmt.Errorf("paymentAddress: unsupported type %T", values[5])
	}
	paymentReference, ok := values[6].([32]byte)
	if !ok {
		return model.CollateralReservation{}, fmt.Errorf("paymentReference: unsupported type %T", values[6])
	}
	executor, err := asAddress(values[7])
	if err != nil {
		return model.CollateralReservation{}, fmt.Errorf("executor: %w", err)
	}
	executorFee, err := asBigInt(values[8])
	if err != nil {
		return model.CollateralReservation{}, fmt.Errorf("executorFeeNatWei: %w", err)
	}

	return model.CollateralReservation{
		BlockNumber:             lg.BlockNumber,
		TxHash:                  lg.TxHash.Hex(),
		LogIndex:                uint64(lg.Index),
		AssetManager:            lg.Address.Hex(),
		AgentVault:              indexed.AgentVault.Hex(),
		Minter:                  indexed.Minter.Hex(),
		ReservationID:           indexed.CollateralReservationId.String(),
		ValueUBA:                nums[0].String(),
		FeeUBA:                  nums[1].String(),
		FirstUnderlyingBlock:    nums[2].String(),
		LastUnderlyingBlock:     nums[3].String(),
		LastUnderlyingTimestamp: bigUint64(nums[4]),
		PaymentAddress:          paymentAddress,
		PaymentReference:        hexutil.Encode(paymentReference[:]),
		Executor:                executor.Hex(),
		ExecutorFeeNatWei:       executorFee.String(),
	}, nil
}

func indexedArguments(args abi.Arguments) abi.Arguments {
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}

// bigUint64 saturates at the uint64 range.
func bigUint64(v *big.Int) uint64 {
	if v == nil || v.Sign() <= 0 {
		return 0
	}
	if !v.IsUint64() {
		return ^uint64(0)
	}
	return v.Uint64()
}
