// Package fetch retrieves a block, its receipts, and its call traces from an EVM-based node over
// JSON-RPC, in the shape the metadata package's decode layer expects.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hyperarc/semanticabi/pkg/semanticabi/metadata"
)

// BlockFetcher fetches a block with receipts and traces from a node, branching its receipt and
// trace strategy on the node's type.
type BlockFetcher struct {
	client   *rpcClient
	nodeType NodeType
}

// New builds a BlockFetcher against nodeURL. nodeType picks which JSON-RPC methods are used to
// fetch receipts and traces.
func New(nodeURL string, nodeType NodeType) *BlockFetcher {
	return &BlockFetcher{client: newRPCClient(nodeURL), nodeType: nodeType}
}

// FetchBlock fetches blockNumber's header, one receipt per transaction, and (where the node
// exposes them) call traces for every transaction in the block.
func (f *BlockFetcher) FetchBlock(ctx context.Context, blockNumber int64) (metadata.EthBlockJSON, error) {
	var blockInfo metadata.BlockInfoJSON
	if err := f.client.call(ctx, "eth_getBlockByNumber", []any{hexInt(blockNumber), true}, &blockInfo); err != nil {
		return metadata.EthBlockJSON{}, fmt.Errorf("fetching block %d: %w", blockNumber, err)
	}

	receipts, err := f.fetchReceipts(ctx, blockNumber, blockInfo)
	if err != nil {
		return metadata.EthBlockJSON{}, err
	}

	traces, err := f.fetchTraces(ctx, blockNumber)
	if err != nil {
		return metadata.EthBlockJSON{}, err
	}

	return metadata.EthBlockJSON{Block: blockInfo, Receipts: receipts, Traces: traces}, nil
}

func (f *BlockFetcher) fetchReceipts(ctx context.Context, blockNumber int64, blockInfo metadata.BlockInfoJSON) ([]metadata.EthReceipt, error) {
	if f.nodeType == NodeTypeErigon {
		var receipts []metadata.EthReceipt
		if err := f.client.call(ctx, "eth_getBlockReceipts", []any{hexInt(blockNumber)}, &receipts); err != nil {
			return nil, fmt.Errorf("fetching block receipts for %d: %w", blockNumber, err)
		}
		return receipts, nil
	}

	receipts := make([]metadata.EthReceipt, 0, len(blockInfo.Transactions))
	for _, transaction := range blockInfo.Transactions {
		var receipt metadata.EthReceipt
		if err := f.client.call(ctx, "eth_getTransactionReceipt", []any{transaction.Hash}, &receipt); err != nil {
			return nil, fmt.Errorf("fetching transaction receipt for %s: %w", transaction.Hash, err)
		}
		receipts = append(receipts, receipt)
	}
	return receipts, nil
}

func (f *BlockFetcher) fetchTraces(ctx context.Context, blockNumber int64) ([]json.RawMessage, error) {
	if f.nodeType == NodeTypeErigon {
		var traces []json.RawMessage
		if err := f.client.call(ctx, "trace_block", []any{hexInt(blockNumber)}, &traces); err != nil {
			return nil, fmt.Errorf("fetching erigon traces for block %d: %w", blockNumber, err)
		}
		return traces, nil
	}

	var traces []json.RawMessage
	if err := f.client.call(ctx, "debug_traceBlockByNumber", []any{
		hexInt(blockNumber),
		map[string]any{"tracer": "callTracer", "timeout": "500s"},
	}, &traces); err != nil {
		return nil, fmt.Errorf("fetching geth traces for block %d: %w", blockNumber, err)
	}
	return traces, nil
}

func hexInt(n int64) string { return fmt.Sprintf("0x%x", n) }
