package fetch

import "fmt"

// NodeType distinguishes the JSON-RPC methods a block fetch can use: Erigon exposes
// eth_getBlockReceipts and trace_block, letting a whole block's receipts and traces come back in
// one call each; Geth doesn't, so a Geth fetch falls back to one eth_getTransactionReceipt per
// transaction and debug_traceBlockByNumber with the callTracer.
type NodeType string

const (
	NodeTypeErigon NodeType = "erigon"
	NodeTypeGeth   NodeType = "geth"
)

func ParseNodeType(s string) (NodeType, error) {
	switch NodeType(s) {
	case NodeTypeErigon:
		return NodeTypeErigon, nil
	case NodeTypeGeth:
		return NodeTypeGeth, nil
	default:
		return "", fmt.Errorf("unknown node type %q, expected \"erigon\" or \"geth\"", s)
	}
}
