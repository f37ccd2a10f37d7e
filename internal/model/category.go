package model

type Category string

const (
	CategoryTokenTransfer       Category = "token_transfer"
	CategoryTokenReceived       Category = "token_received"
	CategoryTokenApproval       Category = "token_approval"
	CategoryDexTrade            Category = "dex_trade"
	CategoryLiquidityProvision  Category = "liquidity_provision"
	CategoryLiquidityRemoval    Category = "liquidity_removal"
	CategoryStaking             Category = "staking"
	CategoryLending             Category = "lending"
	CategoryNFTTrade            Category = "nft_trade"
	CategoryOutgoingTransfer    Category = "outgoing_transfer"
	CategoryIncomingTransfer    Category = "incoming_transfer"
	CategoryContractInteraction Category = "contract_interaction"
	CategoryFailedTransaction   Category = "failed_transaction"
	CategoryUnknown             Category = "unknown"
)

func (c Category) String() string { return string(c) }
