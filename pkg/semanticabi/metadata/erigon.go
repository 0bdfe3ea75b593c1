package metadata

import (
	"fmt"
	"math/big"
	"strings"
)

// ErigonTraceJSON is the wire shape of one flat Erigon trace entry.
type ErigonTraceJSON struct {
	Action          map[string]any `json:"action"`
	BlockHash       string         `json:"blockHash"`
	BlockNumber     int64          `json:"blockNumber"`
	Subtraces       int            `json:"subtraces"`
	TraceAddress    []int          `json:"traceAddress"`
	TransactionHash string         `json:"transactionHash"`
	Type            string         `json:"type"`
	Error           string         `json:"error,omitempty"`
	Result          map[string]any `json:"result,omitempty"`
}

// ErigonTraces groups a block's flat Erigon trace list into per-transaction containers, tracking
// mining/uncle rewards separately since they don't belong to any transaction.
type ErigonTraces struct {
	chain        EvmChain
	blockNumber  int64
	transactions map[string]*EthTransactionTraces
	rewards      []*ErigonTrace
}

func NewErigonTraces(chain EvmChain, blockNumber int64, traces []ErigonTraceJSON) *ErigonTraces {
	t := &ErigonTraces{chain: chain, blockNumber: blockNumber, transactions: map[string]*EthTransactionTraces{}}

	var current *EthTransactionTraces
	for _, raw := range traces {
		trace := NewErigonTrace(chain, raw)

		if trace.Type() == TraceReward {
			t.rewards = append(t.rewards, trace)
			continue
		}

		if current == nil || trace.TransactionHash() != current.Hash() {
			current = NewEthTransactionTraces(trace)
			t.transactions[current.Hash()] = current
		} else {
			current.AddTrace(trace)
		}
	}

	return t
}

func (t *ErigonTraces) Transactions() []*EthTransactionTraces {
	out := make([]*EthTransactionTraces, 0, len(t.transactions))
	for _, tx := range t.transactions {
		out = append(out, tx)
	}
	return out
}

func (t *ErigonTraces) TransactionHashes() map[string]struct{} {
	out := make(map[string]struct{}, len(t.transactions))
	for hash := range t.transactions {
		out[hash] = struct{}{}
	}
	return out
}

func (t *ErigonTraces) Traces(transactionHash string) (*EthTransactionTraces, bool) {
	tx, ok := t.transactions[transactionHash]
	return tx, ok
}

// ErigonTrace is one flat Erigon trace entry, normalized to the common EthTrace shape.
type ErigonTrace struct {
	chain EvmChain
	raw   ErigonTraceJSON
}

func NewErigonTrace(chain EvmChain, raw ErigonTraceJSON) *ErigonTrace {
	return &ErigonTrace{chain: chain, raw: raw}
}

func (t *ErigonTrace) ContractAddress() string { return t.chain.NativeTokenAddress() }

func (t *ErigonTrace) TraceAddress() []int { return t.raw.TraceAddress }

func (t *ErigonTrace) TraceHash() string { return HashTraceAddress(t.raw.TraceAddress) }

func (t *ErigonTrace) ParentTraceAddress() []int {
	if t.IsRoot() {
		return nil
	}
	return t.raw.TraceAddress[:len(t.raw.TraceAddress)-1]
}

func (t *ErigonTrace) Signature() string {
	input := t.Input()
	if input == "" || len(input) < 10 {
		return ""
	}
	return input[:10]
}

func (t *ErigonTrace) Error() string { return t.raw.Error }

func (t *ErigonTrace) BlockHash() string { return t.raw.BlockHash }

func (t *ErigonTrace) TransactionHash() string { return strings.ToLower(t.raw.TransactionHash) }

func (t *ErigonTrace) IsRoot() bool { return len(t.raw.TraceAddress) == 0 }

func (t *ErigonTrace) Type() TraceType { return TraceType(t.raw.Type) }

func (t *ErigonTrace) CallType() CallType {
	return CallType(strings.ToLower(fmt.Sprintf("%v", t.action()["callType"])))
}

func (t *ErigonTrace) Input() string { return stringField(t.action(), "input") }

func (t *ErigonTrace) Output() string { return stringField(t.result(), "output") }

func (t *ErigonTrace) FromAddress() string { return strings.ToLower(stringField(t.action(), "from")) }

// ToAddress fixes the missing "return" in the original's success branch: a successful
// contract-creation trace returns the lowercased created-contract address, a failed one returns
// the all-zero address. Both branches are made explicit.
func (t *ErigonTrace) ToAddress() string {
	if _, isCreate := t.action()["init"]; isCreate {
		created := stringField(t.result(), "address")
		if created == "" {
			return "0x0000000000000000000000000000000000000000"
		}
		return strings.ToLower(created)
	}
	return strings.ToLower(stringField(t.action(), "to"))
}

func (t *ErigonTrace) Value() *big.Int { return hexField(t.action(), "value") }

func (t *ErigonTrace) TransferType() EthTransferType { return TransferInternal }

func (t *ErigonTrace) Gas() *int64 { return hexIntField(t.action(), "gas") }

func (t *ErigonTrace) GasUsed() *int64 { return hexIntField(t.result(), "gasUsed") }

func (t *ErigonTrace) action() map[string]any {
	if t.raw.Action == nil {
		return map[string]any{}
	}
	return t.raw.Action
}

func (t *ErigonTrace) result() map[string]any {
	if t.raw.Result == nil {
		return map[string]any{}
	}
	return t.raw.Result
}

func stringField(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

func hexField(m map[string]any, key string) *big.Int {
	s := stringField(m, key)
	if s == "" {
		return nil
	}
	n := new(big.Int)
	n.SetString(strings.TrimPrefix(s, "0x"), 16)
	return n
}

func hexIntField(m map[string]any, key string) *int64 {
	n := hexField(m, key)
	if n == nil {
		return nil
	}
	v := n.Int64()
	return &v
}
