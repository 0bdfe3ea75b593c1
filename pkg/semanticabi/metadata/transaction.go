package metadata

import (
	"fmt"
	"math/big"
	"strings"
)

const burnAddress = "0x0000000000000000000000000000000000000000"

// RawTransactionJSON is the wire shape of one transaction entry within a block's "transactions"
// array, as returned by eth_getBlockByNumber with full transaction objects.
type RawTransactionJSON struct {
	BlockHash        string `json:"blockHash"`
	BlockNumber      string `json:"blockNumber"`
	From             string `json:"from"`
	Gas              string `json:"gas"`
	GasPrice         string `json:"gasPrice"`
	Hash             string `json:"hash"`
	Input            string `json:"input"`
	Nonce            string `json:"nonce"`
	To               string `json:"to,omitempty"`
	TransactionIndex string `json:"transactionIndex"`
	Value            string `json:"value"`
	Type             string `json:"type"`
	ChainID          string `json:"chainId,omitempty"`
}

// EthTransaction bundles one transaction with its receipt and (if the node exposes them) its
// decoded call traces, plus everything derived from them: logs keyed by topic, token transfers,
// internal value movements.
type EthTransaction struct {
	chain  EvmChain
	raw    RawTransactionJSON
	// receipt is mutable only to backfill a missing status, mirroring the original's lazy fixup
	// for pre-Byzantium receipts that never carried one.
	receipt *EthReceipt
	traces  *EthTransactionTraces

	transfers     []TokenTransferDecoded
	transfersDone bool
	logsByTopic   map[string][]EthLog
	tracesByTopic map[string][]EthTrace
}

func NewEthTransaction(chain EvmChain, raw RawTransactionJSON, receipt *EthReceipt, traces *EthTransactionTraces) *EthTransaction {
	t := &EthTransaction{chain: chain, raw: raw, receipt: receipt, traces: traces}
	t.fixStatus()
	return t
}

// fixStatus backfills a receipt's status field for pre-Byzantium transactions that never had
// one: if there are traces, success is the absence of an error on the root trace; otherwise
// assume success.
func (t *EthTransaction) fixStatus() {
	if t.receipt.Status != "" {
		return
	}
	if t.HasTraces() && t.traces.RootTrace.Error() != "" {
		t.receipt.Status = "0x0"
	} else {
		t.receipt.Status = "0x1"
	}
}

func (t *EthTransaction) Hash() string { return strings.ToLower(t.raw.Hash) }

func (t *EthTransaction) StatusEnum() string {
	if t.receipt.Status == "0x0" {
		return "error"
	}
	return "success"
}

func (t *EthTransaction) ContractAddress() string { return t.chain.NativeTokenAddress() }

func (t *EthTransaction) FromAddress() string { return strings.ToLower(t.raw.From) }

// ToAddress is the recipient, or the created contract's address when this transaction created
// one and had no recipient of its own.
func (t *EthTransaction) ToAddress() (string, error) {
	if t.raw.To != "" {
		return strings.ToLower(t.raw.To), nil
	}
	if t.receipt.ContractAddress != "" {
		return strings.ToLower(t.receipt.ContractAddress), nil
	}
	return "", fmt.Errorf("transaction %s missing to and receipt contract address", t.Hash())
}

func (t *EthTransaction) IsContractCreation() bool { return t.receipt.ContractAddress != "" }

func (t *EthTransaction) Value() *big.Int { return hexString(t.raw.Value) }

func (t *EthTransaction) TransferType() EthTransferType { return TransferPrimary }

func (t *EthTransaction) Logs() []EthLog { return t.receipt.Logs }

func (t *EthTransaction) HasTraces() bool { return t.traces != nil }

func (t *EthTransaction) Traces() *EthTransactionTraces { return t.traces }

func (t *EthTransaction) Receipt() *EthReceipt { return t.receipt }

// Transfers lazily decodes and caches every token transfer out of this transaction's logs.
func (t *EthTransaction) Transfers() []TokenTransferDecoded {
	if t.transfersDone {
		return t.transfers
	}
	t.transfersDone = true

	for i, log := range t.Logs() {
		if !IsTokenTransferLog(log) {
			continue
		}
		t.transfers = append(t.transfers, DecodeTokenTransfers(log, i)...)
	}
	return t.transfers
}

// PositiveTransferables returns every decoded token transfer, every internal (trace-level) value
// movement, and this transaction itself if it moved positive value.
func (t *EthTransaction) PositiveTransferables() []EthTransferable {
	transferables := make([]EthTransferable, 0)

	for _, transfer := range t.Transfers() {
		transferables = append(transferables, transfer)
	}
	if t.HasTraces() {
		for _, internal := range t.traces.InternalTransactions() {
			transferables = append(transferables, internal)
		}
	}

	if v := t.Value(); v != nil && v.Sign() > 0 {
		transferables = append(transferables, transactionTransferable{t})
	}

	return transferables
}

// transactionTransferable adapts *EthTransaction (whose ToAddress can fail) to the infallible
// EthTransferable interface for use as a plain root-transaction transfer.
type transactionTransferable struct{ t *EthTransaction }

func (r transactionTransferable) ContractAddress() string { return r.t.ContractAddress() }
func (r transactionTransferable) FromAddress() string     { return r.t.FromAddress() }
func (r transactionTransferable) ToAddress() string {
	to, err := r.t.ToAddress()
	if err != nil {
		return burnAddress
	}
	return to
}
func (r transactionTransferable) Value() *big.Int               { return r.t.Value() }
func (r transactionTransferable) TransferType() EthTransferType { return r.t.TransferType() }

// LogsByTopic groups this transaction's logs by their first topic (the event signature hash,
// without the 0x prefix).
func (t *EthTransaction) LogsByTopic() map[string][]EthLog {
	if t.logsByTopic != nil {
		return t.logsByTopic
	}

	t.logsByTopic = map[string][]EthLog{}
	for _, log := range t.Logs() {
		if len(log.Topics) == 0 {
			continue
		}
		topic := strings.TrimPrefix(log.Topics[0], "0x")
		t.logsByTopic[topic] = append(t.logsByTopic[topic], log)
	}
	return t.logsByTopic
}

// TracesByTopic groups this transaction's traces by their function selector (the first 4 bytes
// of their input, without the 0x prefix).
func (t *EthTransaction) TracesByTopic() map[string][]EthTrace {
	if t.tracesByTopic != nil {
		return t.tracesByTopic
	}

	t.tracesByTopic = map[string][]EthTrace{}
	if !t.HasTraces() {
		return t.tracesByTopic
	}

	for _, trace := range t.traces.Traces() {
		sig := trace.Signature()
		if sig == "" {
			continue
		}
		topic := strings.TrimPrefix(sig, "0x")
		if topic == "" {
			continue
		}
		t.tracesByTopic[topic] = append(t.tracesByTopic[topic], trace)
	}
	return t.tracesByTopic
}
