package metadata

import (
	"fmt"
	"math/big"
	"strings"
)

// TraceType distinguishes a normal call trace from a block/uncle mining reward (Erigon only).
type TraceType string

const (
	TraceCall   TraceType = "call"
	TraceReward TraceType = "reward"
)

// CallType is the EVM call opcode a trace represents.
type CallType string

const (
	CallCall         CallType = "call"
	CallDelegateCall CallType = "delegatecall"
	CallStaticCall   CallType = "staticcall"
	CallCallCode     CallType = "callcode"
	CallCreate       CallType = "create"
	CallCreate2      CallType = "create2"
)

// EthTraces is every trace in a block, whichever node format it was sourced from.
type EthTraces interface {
	Transactions() []*EthTransactionTraces
	TransactionHashes() map[string]struct{}
	Traces(transactionHash string) (*EthTransactionTraces, bool)
}

// EthTrace is a single call frame, normalized from either Erigon's flat trace list or Geth's
// nested call tree.
type EthTrace interface {
	EthTransferable
	IsRoot() bool
	BlockHash() string
	TransactionHash() string
	TraceAddress() []int
	TraceHash() string
	ParentTraceAddress() []int
	// Signature is the first 4 bytes (0x + 8 hex chars) of Input, or "" if there's no input.
	Signature() string
	Error() string
	Type() TraceType
	CallType() CallType
	Input() string
	Output() string
	Gas() *int64
	GasUsed() *int64
}

// HashTraceAddress "hashes" a trace address like [0, 3, 1] into "0_3_1", the key traces are
// looked up by within a transaction.
func HashTraceAddress(traceAddress []int) string {
	parts := make([]string, len(traceAddress))
	for i, v := range traceAddress {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, "_")
}

// EthTransactionTraces is every trace belonging to one transaction: the root call plus every
// sub-call, keyed by trace address hash.
type EthTransactionTraces struct {
	RootTrace EthTrace
	subTraces map[string]EthTrace
	// subTraceOrder preserves insertion order for Traces().
	subTraceOrder []string
}

func NewEthTransactionTraces(root EthTrace) *EthTransactionTraces {
	return &EthTransactionTraces{RootTrace: root, subTraces: map[string]EthTrace{}}
}

func (t *EthTransactionTraces) Hash() string        { return t.RootTrace.TransactionHash() }
func (t *EthTransactionTraces) FromAddress() string { return t.RootTrace.FromAddress() }
func (t *EthTransactionTraces) ToAddress() string   { return t.RootTrace.ToAddress() }

// Value is the value of the root transaction only, excluding any internal transfers.
func (t *EthTransactionTraces) Value() *big.Int { return t.RootTrace.Value() }

// Traces returns the root trace followed by every sub-trace, in the order they were added.
func (t *EthTransactionTraces) Traces() []EthTrace {
	out := make([]EthTrace, 0, len(t.subTraceOrder)+1)
	out = append(out, t.RootTrace)
	for _, hash := range t.subTraceOrder {
		out = append(out, t.subTraces[hash])
	}
	return out
}

// InternalTransactions returns the sub-traces that are plain "call"s moving positive value,
// i.e. the internal ETH transfers that only show up in traces, not in the transaction itself.
func (t *EthTransactionTraces) InternalTransactions() []EthTrace {
	out := make([]EthTrace, 0)
	for _, hash := range t.subTraceOrder {
		trace := t.subTraces[hash]
		if trace.CallType() == CallCall && trace.Value() != nil && trace.Value().Sign() > 0 {
			out = append(out, trace)
		}
	}
	return out
}

// Errors returns every non-empty error across the root and sub-traces, or nil if there were none.
func (t *EthTransactionTraces) Errors() []string {
	var errs []string
	if t.RootTrace.Error() != "" {
		errs = append(errs, t.RootTrace.Error())
	}
	for _, hash := range t.subTraceOrder {
		if err := t.subTraces[hash].Error(); err != "" {
			errs = append(errs, err)
		}
	}
	return errs
}

func (t *EthTransactionTraces) AddTrace(trace EthTrace) {
	hash := trace.TraceHash()
	if _, exists := t.subTraces[hash]; !exists {
		t.subTraceOrder = append(t.subTraceOrder, hash)
	}
	t.subTraces[hash] = trace
}

// TraceByAddress returns the root trace (empty address) or a sub-trace by its trace address.
func (t *EthTransactionTraces) TraceByAddress(address []int) (EthTrace, bool) {
	if len(address) == 0 {
		return t.RootTrace, true
	}
	trace, ok := t.subTraces[HashTraceAddress(address)]
	return trace, ok
}

// CallStack returns every trace from the root down to address, in root-to-leaf order.
func (t *EthTransactionTraces) CallStack(address []int) ([]EthTrace, error) {
	cur, ok := t.TraceByAddress(address)
	if !ok {
		return nil, fmt.Errorf("no trace at address %v", address)
	}
	stack := []EthTrace{cur}
	for !cur.IsRoot() {
		cur, ok = t.TraceByAddress(cur.ParentTraceAddress())
		if !ok {
			return nil, fmt.Errorf("missing parent trace for %v", cur.TraceAddress())
		}
		stack = append(stack, cur)
	}
	for i, j := 0, len(stack)-1; i < j; i, j = i+1, j-1 {
		stack[i], stack[j] = stack[j], stack[i]
	}
	return stack, nil
}
