package metadata

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/hyperarc/semanticabi/pkg/semanticabi/abi"
)

// the small set of well-known transfer-flavored events this compiler can canonicalize without
// a user-authored semantic ABI: ERC20/721 Transfer, ERC1155 TransferSingle/TransferBatch, and
// the two CryptoPunks marketplace events.
var transferEvents = buildTransferEvents()

func buildTransferEvents() map[string][]*abi.Event {
	mustParams := func(entries ...abi.ParameterJSON) abi.Parameters {
		params, err := abi.ParametersFromJSON(entries)
		if err != nil {
			panic(err)
		}
		return params
	}
	p := func(name, typ string, indexed bool) abi.ParameterJSON {
		return abi.ParameterJSON{Name: name, Type: typ, Indexed: indexed}
	}

	erc20Transfer := abi.NewEvent("Transfer", mustParams(
		p("from", "address", true),
		p("to", "address", true),
		p("value", "uint256", false),
	), map[string]any{"standard": "Erc20"})

	erc721Transfer := abi.NewEvent("Transfer", mustParams(
		p("from", "address", true),
		p("to", "address", true),
		p("tokenId", "uint256", true),
	), map[string]any{"standard": "Erc721"})

	transferSingle := abi.NewEvent("TransferSingle", mustParams(
		p("operator", "address", true),
		p("from", "address", true),
		p("to", "address", true),
		p("id", "uint256", false),
		p("value", "uint256", false),
	), nil)

	transferBatch := abi.NewEvent("TransferBatch", mustParams(
		p("operator", "address", true),
		p("from", "address", true),
		p("to", "address", true),
		p("ids", "uint256[]", false),
		p("values", "uint256[]", false),
	), nil)

	punkTransfer := abi.NewEvent("PunkTransfer", mustParams(
		p("from", "address", true),
		p("to", "address", true),
		p("punkIndex", "uint256", false),
	), nil)

	punkBought := abi.NewEvent("PunkBought", mustParams(
		p("punkIndex", "uint256", true),
		p("minValue", "uint256", false),
		p("fromAddress", "address", true),
		p("toAddress", "address", true),
	), nil)

	byHash := map[string][]*abi.Event{}
	for _, event := range []*abi.Event{erc20Transfer, erc721Transfer, transferSingle, transferBatch, punkTransfer, punkBought} {
		byHash[event.Hash()] = append(byHash[event.Hash()], event)
	}
	return byHash
}

// IsTokenTransferLog reports whether log's first topic is one of the known transfer event hashes.
func IsTokenTransferLog(log EthLog) bool {
	if len(log.Topics) == 0 {
		return false
	}
	_, ok := transferEvents[strings.TrimPrefix(log.Topics[0], "0x")]
	return ok
}

func resolveTransferEvent(log EthLog) *abi.Event {
	candidates, ok := transferEvents[strings.TrimPrefix(log.Topics[0], "0x")]
	if !ok {
		return nil
	}
	if len(candidates) == 1 {
		return candidates[0]
	}
	for _, candidate := range candidates {
		if candidate.IsOf(log.Topics, true) {
			return candidate
		}
	}
	return nil
}

// TokenTransferDecoded is a canonicalized token transfer: one row per unit of value moved,
// regardless of whether it came from an ERC20, ERC721, ERC1155, or CryptoPunks event.
type TokenTransferDecoded struct {
	log           EthLog
	fromAddress   string
	toAddress     string
	value         *big.Int
	tokenID       string
	hasTokenID    bool
	eventName     string
	tokenType     EthTokenType
	internalIndex float64
}

func (t TokenTransferDecoded) ContractAddress() string      { return strings.ToLower(t.log.Address) }
func (t TokenTransferDecoded) FromAddress() string           { return t.fromAddress }
func (t TokenTransferDecoded) ToAddress() string              { return t.toAddress }
func (t TokenTransferDecoded) Value() *big.Int                { return t.value }
func (t TokenTransferDecoded) TokenID() (string, bool)        { return t.tokenID, t.hasTokenID }
func (t TokenTransferDecoded) EventName() string              { return t.eventName }
func (t TokenTransferDecoded) TokenType() EthTokenType        { return t.tokenType }
func (t TokenTransferDecoded) InternalIndex() float64         { return t.internalIndex }
func (t TokenTransferDecoded) TransferType() EthTransferType  { return TransferERC }

func asBigInt(v any) *big.Int {
	switch n := v.(type) {
	case *big.Int:
		return n
	case int64:
		return big.NewInt(n)
	default:
		result := new(big.Int)
		result.SetString(fmt.Sprintf("%v", v), 10)
		return result
	}
}

func asAddress(v any) string {
	return strings.ToLower(fmt.Sprintf("%v", v))
}

func asTokenID(v any) string {
	return asBigInt(v).String()
}

// DecodeTokenTransfers decodes every canonicalized token transfer out of one log, given the
// log's position within the transaction's full log list (used to build a stable internal index
// for multi-row events like TransferBatch).
func DecodeTokenTransfers(log EthLog, logIndex int) []TokenTransferDecoded {
	if !IsTokenTransferLog(log) {
		return nil
	}

	event := resolveTransferEvent(log)
	if event == nil {
		return nil
	}

	decoded, err := event.Decode(log.Topics, log.Data)
	if err != nil {
		return nil
	}
	values := decoded.ToJSON()

	make1 := func(value *big.Int, tokenID string, hasTokenID bool, tokenType EthTokenType, internalIndex float64) TokenTransferDecoded {
		return TokenTransferDecoded{
			log:           log,
			fromAddress:   asAddress(values["from"]),
			toAddress:     asAddress(values["to"]),
			value:         value,
			tokenID:       tokenID,
			hasTokenID:    hasTokenID,
			eventName:     event.Name(),
			tokenType:     tokenType,
			internalIndex: internalIndex,
		}
	}

	switch event.Name() {
	case "Transfer":
		if standard, _ := event.Extra()["standard"].(string); standard == "Erc721" {
			return []TokenTransferDecoded{
				make1(big.NewInt(1), asTokenID(values["tokenId"]), true, TokenERC721, float64(logIndex)),
			}
		}
		return []TokenTransferDecoded{
			make1(asBigInt(values["value"]), "", false, TokenERC20, float64(logIndex)),
		}

	case "TransferSingle":
		return []TokenTransferDecoded{
			make1(asBigInt(values["value"]), asTokenID(values["id"]), true, TokenERC1155, float64(logIndex)),
		}

	case "TransferBatch":
		ids, _ := values["ids"].([]any)
		vals, _ := values["values"].([]any)
		numTransfers := len(ids)
		if numTransfers == 0 {
			return nil
		}
		padding := int(math.Log10(float64(numTransfers))) + 1

		out := make([]TokenTransferDecoded, 0, numTransfers)
		for i, id := range ids {
			var value *big.Int
			if i < len(vals) {
				value = asBigInt(vals[i])
			}
			subIndex := strconv.Itoa(i + 1)
			for len(subIndex) < padding {
				subIndex = "0" + subIndex
			}
			internalIndex, _ := strconv.ParseFloat(fmt.Sprintf("%d.%s", logIndex, subIndex), 64)
			out = append(out, make1(value, asTokenID(id), true, TokenERC1155, internalIndex))
		}
		return out

	case "PunkTransfer":
		return []TokenTransferDecoded{
			make1(big.NewInt(1), asTokenID(values["punkIndex"]), true, TokenCryptoPunks, float64(logIndex)),
		}

	case "PunkBought":
		return []TokenTransferDecoded{
			{
				log:           log,
				fromAddress:   asAddress(values["fromAddress"]),
				toAddress:     asAddress(values["toAddress"]),
				value:         big.NewInt(1),
				tokenID:       asTokenID(values["punkIndex"]),
				hasTokenID:    true,
				eventName:     event.Name(),
				tokenType:     TokenCryptoPunks,
				internalIndex: float64(logIndex),
			},
		}

	default:
		return nil
	}
}
