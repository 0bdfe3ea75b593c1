package metadata

import (
	"fmt"
	"math/big"
	"strings"
)

// GethTraceJSON is the wire shape of one node in a Geth debug_traceTransaction call tree.
type GethTraceJSON struct {
	From    string          `json:"from"`
	Gas     string          `json:"gas"`
	GasUsed string          `json:"gasUsed"`
	To      string          `json:"to"`
	Input   string          `json:"input"`
	Output  string          `json:"output,omitempty"`
	Value   string          `json:"value,omitempty"`
	Error   string          `json:"error,omitempty"`
	Type    string          `json:"type"`
	Calls   []GethTraceJSON `json:"calls,omitempty"`
}

// GethTraces flattens a block's nested Geth call trees (one per transaction, matched by index)
// into the same per-transaction container shape Erigon's flat list normalizes to.
type GethTraces struct {
	chain        EvmChain
	blockNumber  int64
	transactions map[string]*EthTransactionTraces
}

// NewGethTraces builds a GethTraces from a block's transaction hashes (in block order) and their
// parallel Geth trace trees.
func NewGethTraces(chain EvmChain, blockNumber int64, blockHash string, transactionHashes []string, traces []GethTraceJSON) (*GethTraces, error) {
	if len(transactionHashes) != len(traces) {
		return nil, fmt.Errorf("have %d transactions for %d traces", len(transactionHashes), len(traces))
	}

	t := &GethTraces{chain: chain, blockNumber: blockNumber, transactions: map[string]*EthTransactionTraces{}}
	blockHash = strings.ToLower(blockHash)

	for i, raw := range traces {
		txHash := strings.ToLower(transactionHashes[i])
		transaction := parseGethTransactionTree(chain, blockHash, txHash, raw)
		t.transactions[transaction.Hash()] = transaction
	}

	return t, nil
}

func parseGethTransactionTree(chain EvmChain, blockHash, transactionHash string, root GethTraceJSON) *EthTransactionTraces {
	transaction := NewEthTransactionTraces(NewGethTrace(chain, blockHash, transactionHash, nil, root))

	var dfs func(node GethTraceJSON, address []int)
	dfs = func(node GethTraceJSON, address []int) {
		if len(address) > 0 {
			transaction.AddTrace(NewGethTrace(chain, blockHash, transactionHash, address, node))
		}
		for i, child := range node.Calls {
			dfs(child, append(append([]int{}, address...), i))
		}
	}
	dfs(root, nil)

	return transaction
}

func (t *GethTraces) Transactions() []*EthTransactionTraces {
	out := make([]*EthTransactionTraces, 0, len(t.transactions))
	for _, tx := range t.transactions {
		out = append(out, tx)
	}
	return out
}

func (t *GethTraces) TransactionHashes() map[string]struct{} {
	out := make(map[string]struct{}, len(t.transactions))
	for hash := range t.transactions {
		out[hash] = struct{}{}
	}
	return out
}

func (t *GethTraces) Traces(transactionHash string) (*EthTransactionTraces, bool) {
	tx, ok := t.transactions[transactionHash]
	return tx, ok
}

// GethTrace is one node of a flattened Geth call tree, with a synthetic trace address assigned
// by its position in the DFS walk (its "calls" children are stripped, same as the original).
type GethTrace struct {
	chain           EvmChain
	blockHash       string
	transactionHash string
	traceAddress    []int
	raw             GethTraceJSON
}

func NewGethTrace(chain EvmChain, blockHash, transactionHash string, traceAddress []int, raw GethTraceJSON) *GethTrace {
	raw.Calls = nil
	return &GethTrace{
		chain:           chain,
		blockHash:       blockHash,
		transactionHash: transactionHash,
		traceAddress:    traceAddress,
		raw:             raw,
	}
}

func (t *GethTrace) ContractAddress() string { return t.chain.NativeTokenAddress() }

func (t *GethTrace) FromAddress() string { return strings.ToLower(t.raw.From) }

// ToAddress is always present in Geth traces: either the real recipient, or the address of the
// contract being created.
func (t *GethTrace) ToAddress() string { return strings.ToLower(t.raw.To) }

func (t *GethTrace) Value() *big.Int { return hexString(t.raw.Value) }

func (t *GethTrace) IsRoot() bool { return len(t.traceAddress) == 0 }

func (t *GethTrace) BlockHash() string { return t.blockHash }

func (t *GethTrace) TransactionHash() string { return t.transactionHash }

func (t *GethTrace) TraceAddress() []int { return t.traceAddress }

func (t *GethTrace) TraceHash() string { return HashTraceAddress(t.traceAddress) }

func (t *GethTrace) ParentTraceAddress() []int {
	if t.IsRoot() {
		return nil
	}
	return t.traceAddress[:len(t.traceAddress)-1]
}

func (t *GethTrace) Signature() string {
	if t.raw.Input == "" || len(t.raw.Input) < 10 {
		return ""
	}
	return t.raw.Input[:10]
}

func (t *GethTrace) Error() string { return t.raw.Error }

func (t *GethTrace) Input() string { return t.raw.Input }

func (t *GethTrace) Output() string { return t.raw.Output }

func (t *GethTrace) Type() TraceType { return TraceCall }

func (t *GethTrace) CallType() CallType { return CallType(strings.ToLower(t.raw.Type)) }

func (t *GethTrace) Gas() *int64 { return hexIntString(t.raw.Gas) }

func (t *GethTrace) GasUsed() *int64 { return hexIntString(t.raw.GasUsed) }

func (t *GethTrace) TransferType() EthTransferType { return TransferInternal }

func hexString(s string) *big.Int {
	if s == "" {
		return nil
	}
	n := new(big.Int)
	n.SetString(strings.TrimPrefix(s, "0x"), 16)
	return n
}

func hexIntString(s string) *int64 {
	n := hexString(s)
	if n == nil {
		return nil
	}
	v := n.Int64()
	return &v
}
