package metadata

// EthReceipt is a transaction's receipt, as returned by eth_getTransactionReceipt.
type EthReceipt struct {
	BlockHash         string   `json:"blockHash"`
	BlockNumber       string   `json:"blockNumber"`
	ContractAddress   string   `json:"contractAddress,omitempty"`
	CumulativeGasUsed string   `json:"cumulativeGasUsed"`
	EffectiveGasPrice string   `json:"effectiveGasPrice,omitempty"`
	From              string   `json:"from"`
	GasUsed           string   `json:"gasUsed"`
	Logs              []EthLog `json:"logs"`
	LogsBloom         string   `json:"logsBloom"`
	Status            string   `json:"status,omitempty"`
	To                string   `json:"to,omitempty"`
	TransactionHash   string   `json:"transactionHash"`
	TransactionIndex  string   `json:"transactionIndex"`
	Type              string   `json:"type,omitempty"`
	Error             string   `json:"error,omitempty"`
}
