package metadata

import (
	"encoding/json"
	"fmt"
	"strings"
)

// BlockInfoJSON is the wire shape of the block-header portion of an eth_getBlockByNumber result.
type BlockInfoJSON struct {
	Hash         string               `json:"hash"`
	Number       string               `json:"number"`
	Timestamp    string               `json:"timestamp"`
	Transactions []RawTransactionJSON `json:"transactions"`
}

// gethTraceRootJSON is the wrapper Geth's debug_traceBlockByNumber returns per transaction.
type gethTraceRootJSON struct {
	Result GethTraceJSON `json:"result"`
	Error  string         `json:"error,omitempty"`
}

// EthBlockJSON is the full payload this compiler transforms: block header, one receipt per
// transaction, and (if the node exposes them) raw call traces in either Erigon or Geth shape.
type EthBlockJSON struct {
	Block    BlockInfoJSON     `json:"block"`
	Receipts []EthReceipt      `json:"receipts"`
	// Traces is left as raw JSON since its shape (Erigon flat list vs Geth nested roots)
	// is only known once we inspect the first element's keys.
	Traces []json.RawMessage `json:"traces,omitempty"`
}

// EthBlock is one fetched block, lazily assembling its EthTransaction list (with traces
// attached) the first time it's asked for.
type EthBlock struct {
	Chain EvmChain
	JSON  EthBlockJSON

	transactions []*EthTransaction
}

func NewEthBlock(chain EvmChain, blockJSON EthBlockJSON) *EthBlock {
	return &EthBlock{Chain: chain, JSON: blockJSON}
}

func (b *EthBlock) Number() (int64, error) { return parseHexInt(b.JSON.Block.Number) }

func (b *EthBlock) Timestamp() (int64, error) { return parseHexInt(b.JSON.Block.Timestamp) }

func (b *EthBlock) HasTraces() bool { return len(b.JSON.Traces) > 0 }

// Transactions builds (and caches) this block's list of EthTransaction, attaching normalized
// traces to each one when the node provided them.
func (b *EthBlock) Transactions() ([]*EthTransaction, error) {
	if b.transactions != nil {
		return b.transactions, nil
	}

	if len(b.JSON.Block.Transactions) != len(b.JSON.Receipts) {
		return nil, fmt.Errorf("differing number of transactions and receipts for block %s", b.JSON.Block.Number)
	}

	traces, err := b.parseTraces()
	if err != nil {
		return nil, err
	}

	blockNumber, err := b.Number()
	if err != nil {
		return nil, err
	}

	transactions := make([]*EthTransaction, 0, len(b.JSON.Block.Transactions))
	for i, rawTx := range b.JSON.Block.Transactions {
		receipt := b.JSON.Receipts[i]
		txHash := strings.ToLower(rawTx.Hash)
		if txHash != strings.ToLower(receipt.TransactionHash) {
			return nil, fmt.Errorf("transaction and receipt hash mismatch for block %d (%s)", blockNumber, txHash)
		}

		var txTraces *EthTransactionTraces
		if traces != nil {
			txTraces, _ = traces.Traces(txHash)
		}

		transactions = append(transactions, NewEthTransaction(b.Chain, rawTx, &receipt, txTraces))
	}

	b.transactions = transactions
	return transactions, nil
}

// parseTraces detects whether the block's raw trace array is Erigon's flat shape (each element
// has a top-level "traceAddress") or Geth's nested shape (each element wraps a "result" call
// tree), then normalizes accordingly.
func (b *EthBlock) parseTraces() (EthTraces, error) {
	if !b.HasTraces() {
		return nil, nil
	}

	blockNumber, err := b.Number()
	if err != nil {
		return nil, err
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(b.JSON.Traces[0], &probe); err != nil {
		return nil, fmt.Errorf("decoding trace shape: %w", err)
	}

	if _, isErigon := probe["traceAddress"]; isErigon {
		erigonTraces := make([]ErigonTraceJSON, len(b.JSON.Traces))
		for i, raw := range b.JSON.Traces {
			if err := json.Unmarshal(raw, &erigonTraces[i]); err != nil {
				return nil, fmt.Errorf("decoding erigon trace %d: %w", i, err)
			}
		}
		return NewErigonTraces(b.Chain, blockNumber, erigonTraces), nil
	}

	gethRoots := make([]gethTraceRootJSON, len(b.JSON.Traces))
	for i, raw := range b.JSON.Traces {
		if err := json.Unmarshal(raw, &gethRoots[i]); err != nil {
			return nil, fmt.Errorf("decoding geth trace %d: %w", i, err)
		}
	}

	gethTraces := make([]GethTraceJSON, len(gethRoots))
	for i, root := range gethRoots {
		gethTraces[i] = root.Result
	}

	txHashes := make([]string, len(b.JSON.Block.Transactions))
	for i, tx := range b.JSON.Block.Transactions {
		txHashes[i] = tx.Hash
	}

	return NewGethTraces(b.Chain, blockNumber, b.JSON.Block.Hash, txHashes, gethTraces)
}

func parseHexInt(s string) (int64, error) {
	n := hexString(s)
	if n == nil {
		return 0, fmt.Errorf("invalid hex integer %q", s)
	}
	return n.Int64(), nil
}
