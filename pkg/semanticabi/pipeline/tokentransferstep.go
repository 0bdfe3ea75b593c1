package pipeline

import (
	"strconv"

	"github.com/hyperarc/semanticabi/pkg/semanticabi/column"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/metadata"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/schema"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/semantic"
)

var tokenTransferSchema = schema.New([]column.Column{
	column.NewAddressHash("fromAddress"),
	column.NewAddressHash("toAddress"),
	column.Int256("value", column.WithHigherOrderType(column.NumericCurrency)),
	column.NewID("tokenId"),
	column.NewEnum("tokenType"),
})

// TokenTransferTransformItem wraps one canonicalized token transfer for the `transfer`-type
// `@matches` entries: it has no decoded ABI result, since it was never an ABI item to begin with.
type TokenTransferTransformItem struct {
	transformItemBase
	transfer metadata.TokenTransferDecoded
}

func NewTokenTransferTransformItem(transfer metadata.TokenTransferDecoded) *TokenTransferTransformItem {
	return &TokenTransferTransformItem{transfer: transfer}
}

func (t *TokenTransferTransformItem) ContractAddress() string { return t.transfer.ContractAddress() }

func (t *TokenTransferTransformItem) InternalIndex() string {
	return strconv.FormatFloat(t.transfer.InternalIndex(), 'f', -1, 64)
}

func (t *TokenTransferTransformItem) ItemType() string { return "transfer" }

// NativeTransferTransformItem wraps a positive value movement that never went through a token
// standard's Transfer event: either an internal (trace-level) call or the transaction's own
// top-level value. It joins against the same `transfer`-type `@matches` entries as a token
// transfer, with tokenType "Eth" and no tokenId.
type NativeTransferTransformItem struct {
	transformItemBase
	transferable metadata.EthTransferable
	index        int
}

func NewNativeTransferTransformItem(transferable metadata.EthTransferable, index int) *NativeTransferTransformItem {
	return &NativeTransferTransformItem{transferable: transferable, index: index}
}

func (t *NativeTransferTransformItem) ContractAddress() string {
	return t.transferable.ContractAddress()
}

func (t *NativeTransferTransformItem) InternalIndex() string { return strconv.Itoa(t.index) }

func (t *NativeTransferTransformItem) ItemType() string { return "transfer" }

// TokenTransferStep is the one step with no item and no upstream step: it turns every positive
// value movement out of the transaction - canonicalized token transfers, internal trace calls,
// and the transaction's own top-level value - into its own row, for `transfer`-type `@matches`
// entries to join against.
type TokenTransferStep struct{}

func NewTokenTransferStep() *TokenTransferStep { return &TokenTransferStep{} }

func (s *TokenTransferStep) Abi() *semantic.SemanticAbi        { return nil }
func (s *TokenTransferStep) AbiItem() semantic.SemanticAbiItem { return nil }
func (s *TokenTransferStep) Schema() schema.AbiSchema          { return tokenTransferSchema }

func (s *TokenTransferStep) innerTransform(_ *metadata.EthBlock, transaction *metadata.EthTransaction) ([]ItemRows, error) {
	transferables := transaction.PositiveTransferables()
	out := make([]ItemRows, 0, len(transferables))
	for i, transferable := range transferables {
		if transfer, ok := transferable.(metadata.TokenTransferDecoded); ok {
			tokenID, _ := transfer.TokenID()
			out = append(out, ItemRows{
				Item: NewTokenTransferTransformItem(transfer),
				Rows: []map[string]any{{
					"fromAddress": transfer.FromAddress(),
					"toAddress":   transfer.ToAddress(),
					"value":       transfer.Value(),
					"tokenId":     tokenID,
					"tokenType":   transfer.TokenType().Code,
				}},
			})
			continue
		}

		out = append(out, ItemRows{
			Item: NewNativeTransferTransformItem(transferable, i),
			Rows: []map[string]any{{
				"fromAddress": transferable.FromAddress(),
				"toAddress":   transferable.ToAddress(),
				"value":       transferable.Value(),
				"tokenId":     nil,
				"tokenType":   metadata.TokenEth.Code,
			}},
		})
	}
	return out, nil
}
