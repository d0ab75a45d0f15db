package model

// Agent is an entry of the AssetManager available agents list.
type Agent struct {
	AgentVault                      string `json:"agent_vault"`
	OwnerManagementAddress          string `json:"owner_management_address"`
	FeeBIPS                         uint64 `json:"fee_bips"`
	MintingVaultCollateralRatioBIPS uint64 `json:"minting_vault_collateral_ratio_bips"`
	MintingPoolCollateralRatioBIPS  uint64 `json:"minting_pool_collateral_ratio_bips"`
	FreeCollateralLots              uint64 `json:"free_collateral_lots"`
	Status                          uint8  `json:"status"`
}
