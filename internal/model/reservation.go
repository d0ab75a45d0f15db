package model

// CollateralReservation is a decoded FAssets CollateralReserved event.
type CollateralReservation struct {
	ChainID                 uint64 `json:"chain_id"`
	BlockNumber             uint64 `json:"block_number"`
	TxHash                  string `json:"tx_hash"`
	LogIndex                uint64 `json:"log_index"`
	AssetManager            string `json:"asset_manager"`
	AgentVault              string `json:"agent_vault"`
	Minter                  string `json:"minter"`
	ReservationID           string `json:"reservation_id"`
	ValueUBA                string `json:"value_uba"`
	FeeUBA                  string `json:"fee_uba"`
	FirstUnderlyingBlock    string `json:"first_underlying_block"`
	LastUnderlyingBlock     string `json:"last_underlying_block"`
	LastUnderlyingTimestamp uint64 `json:"last_underlying_timestamp"`
	PaymentAddress          string `json:"payment_address"`
	PaymentReference        string `json:"payment_reference"`
	Executor                string `json:"executor"`
	ExecutorFeeNatWei       string `json:"executor_fee_nat_wei"`
	Timestamp               uint64 `json:"timestamp"`
}
