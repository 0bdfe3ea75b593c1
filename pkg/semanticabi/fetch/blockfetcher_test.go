package fetch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRPCServer(t *testing.T, handler func(method string, params []any) any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode rpc request: %v", err)
		}
		result := handler(req.Method, req.Params)
		w.Header().Set("content-type", "application/json")
		resultJSON, err := json.Marshal(result)
		require.NoError(t, err)
		_ = json.NewEncoder(w).Encode(rpcResponse{Jsonrpc: "2.0", Result: resultJSON, ID: req.ID})
	}))
}

func TestParseNodeType(t *testing.T) {
	nodeType, err := ParseNodeType("erigon")
	require.NoError(t, err)
	assert.Equal(t, NodeTypeErigon, nodeType)

	_, err = ParseNodeType("parity")
	assert.Error(t, err)
}

func TestFetchBlockErigonUsesSingleCallReceiptsAndTraces(t *testing.T) {
	var calledMethods []string

	server := newMockRPCServer(t, func(method string, params []any) any {
		calledMethods = append(calledMethods, method)
		switch method {
		case "eth_getBlockByNumber":
			return map[string]any{
				"hash":      "0xblock",
				"number":    "0x64",
				"timestamp": "0x5",
				"transactions": []map[string]any{
					{"hash": "0xtx1"},
				},
			}
		case "eth_getBlockReceipts":
			return []map[string]any{
				{"transactionHash": "0xtx1", "status": "0x1"},
			}
		case "trace_block":
			return []map[string]any{
				{"traceAddress": []int{}, "type": "call"},
			}
		default:
			t.Fatalf("unexpected method %q for erigon fetch", method)
			return nil
		}
	})
	defer server.Close()

	fetcher := New(server.URL, NodeTypeErigon)
	block, err := fetcher.FetchBlock(context.Background(), 100)
	require.NoError(t, err)

	assert.Equal(t, "0xblock", block.Block.Hash)
	require.Len(t, block.Receipts, 1)
	assert.Equal(t, "0xtx1", block.Receipts[0].TransactionHash)
	require.Len(t, block.Traces, 1)
	assert.ElementsMatch(t, []string{"eth_getBlockByNumber", "eth_getBlockReceipts", "trace_block"}, calledMethods)
}

func TestFetchBlockGethFallsBackToPerTransactionCalls(t *testing.T) {
	var calledMethods []string

	server := newMockRPCServer(t, func(method string, params []any) any {
		calledMethods = append(calledMethods, method)
		switch method {
		case "eth_getBlockByNumber":
			return map[string]any{
				"hash":      "0xblock",
				"number":    "0x64",
				"timestamp": "0x5",
				"transactions": []map[string]any{
					{"hash": "0xtx1"},
					{"hash": "0xtx2"},
				},
			}
		case "eth_getTransactionReceipt":
			hash := params[0].(string)
			return map[string]any{"transactionHash": hash, "status": "0x1"}
		case "debug_traceBlockByNumber":
			return []map[string]any{
				{"result": map[string]any{"type": "CALL"}},
			}
		default:
			t.Fatalf("unexpected method %q for geth fetch", method)
			return nil
		}
	})
	defer server.Close()

	fetcher := New(server.URL, NodeTypeGeth)
	block, err := fetcher.FetchBlock(context.Background(), 100)
	require.NoError(t, err)

	require.Len(t, block.Receipts, 2)
	assert.Equal(t, "0xtx1", block.Receipts[0].TransactionHash)
	assert.Equal(t, "0xtx2", block.Receipts[1].TransactionHash)
	require.Len(t, block.Traces, 1)
	assert.Equal(t, 2, countOccurrences(calledMethods, "eth_getTransactionReceipt"))
}

func countOccurrences(items []string, target string) int {
	n := 0
	for _, item := range items {
		if item == target {
			n++
		}
	}
	return n
}
