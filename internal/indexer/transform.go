package indexer

import (
	"github.com/ethereum/go-ethereum/core/types"

	"flareVault/internal/flare"
	"flareVault/internal/model"
)

// decodeReservation turns one AssetManager log into a reservation, or into a
// decode error record when the log does not parse.
func decodeReservation(chainID uint64, log types.Log, timestamp uint64) (model.CollateralReservation, *model.DecodeError) {
	reservation, err := flare.DecodeCollateralReservedLog(log)
	if err != nil {
		return model.CollateralReservation{}, buildDecodeError(chainID, log, err)
	}
	reservation.ChainID = chainID
	reservation.Timestamp = timestamp
	return reservation, nil
}

func buildDecodeError(chainID uint64, log types.Log, err error) *model.DecodeError {
	topic0 := ""
	if len(log.Topics) > 0 {
		topic0 = log.Topics[0].Hex()
	}
	return &model.DecodeError{
		ChainID:     chainID,
		BlockNumber: log.BlockNumber,
		TxHash:      log.TxHash.Hex(),
		LogIndex:    uint64(log.Index),
		Address:     log.Address.Hex(),
		Topic0:      topic0,
		Error:       err.Error(),
	}
}
