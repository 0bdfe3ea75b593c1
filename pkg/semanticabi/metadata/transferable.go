package metadata

import "math/big"

// EthTransferType classifies how value moved: a root transaction, an internal trace-level call,
// a block reward, or a decoded ERC transfer event.
type EthTransferType string

const (
	TransferPrimary  EthTransferType = "Primary"
	TransferInternal EthTransferType = "Internal"
	TransferReward   EthTransferType = "Reward"
	TransferERC      EthTransferType = "Erc"
)

// EthTokenType is the standard a token transfer was decoded from.
type EthTokenType struct {
	Code  string
	IsNFT bool
}

var (
	TokenEth         = EthTokenType{Code: "Eth"}
	TokenERC20       = EthTokenType{Code: "Erc20"}
	TokenERC721      = EthTokenType{Code: "Erc721", IsNFT: true}
	TokenERC1155     = EthTokenType{Code: "Erc1155", IsNFT: true}
	TokenCryptoPunks = EthTokenType{Code: "CryptoPunks", IsNFT: true}
)

// EthTransferable is anything with a value that moved from one address to another: a root
// transaction, an internal trace transfer, or a decoded token transfer.
type EthTransferable interface {
	ContractAddress() string
	FromAddress() string
	ToAddress() string
	Value() *big.Int
	TransferType() EthTransferType
}
