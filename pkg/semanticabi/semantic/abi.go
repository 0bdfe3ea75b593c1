package semantic

import (
	"strings"

	"github.com/hyperarc/semanticabi/pkg/semanticabi/abierr"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/metadata"
)

// MetadataJSON is the document-level `metadata` block of a semantic ABI document.
type MetadataJSON struct {
	Chains            []string         `json:"chains"`
	ContractAddresses []string         `json:"contractAddresses,omitempty"`
	Expressions       []ExpressionJSON `json:"expressions,omitempty"`
}

// SemanticAbiJSON is the full wire shape of a user-authored semantic ABI document.
type SemanticAbiJSON struct {
	Metadata  MetadataJSON `json:"metadata"`
	Events    []ItemJSON   `json:"events,omitempty"`
	Functions []ItemJSON   `json:"functions,omitempty"`
}

// SemanticAbi is a fully parsed and validated semantic ABI document: which chains and contract
// addresses it applies to, its document-level computed columns, and every event/function item
// it declares, indexed both by hash (for fast dispatch while scanning a block) and by signature
// (for `@matches` resolution).
type SemanticAbi struct {
	chains            []metadata.EvmChain
	contractAddresses map[string]bool
	expressions       []*NamedExpression

	eventsByHash      map[string][]*SemanticAbiEvent
	eventsBySignature map[string]*SemanticAbiEvent
	functionsByHash      map[string][]*SemanticAbiFunction
	functionsBySignature map[string]*SemanticAbiFunction

	primaryEvents    []*SemanticAbiEvent
	primaryFunctions []*SemanticAbiFunction
}

// FromJSON parses and fully validates a semantic ABI document.
func FromJSON(j SemanticAbiJSON) (*SemanticAbi, error) {
	if len(j.Metadata.Chains) == 0 {
		return nil, abierr.New("metadata.chains cannot be empty")
	}

	chains := make([]metadata.EvmChain, 0, len(j.Metadata.Chains))
	for _, name := range j.Metadata.Chains {
		chain, err := metadata.ParseEvmChain(name)
		if err != nil {
			return nil, abierr.New("metadata.chains: %v", err)
		}
		chains = append(chains, chain)
	}

	contractAddresses := map[string]bool{}
	for _, addr := range j.Metadata.ContractAddresses {
		contractAddresses[strings.ToLower(addr)] = true
	}

	expressions, err := ExpressionsFromJSON(j.Metadata.Expressions)
	if err != nil {
		return nil, err
	}

	sa := &SemanticAbi{
		chains:                chains,
		contractAddresses:     contractAddresses,
		expressions:           expressions,
		eventsByHash:          map[string][]*SemanticAbiEvent{},
		eventsBySignature:     map[string]*SemanticAbiEvent{},
		functionsByHash:       map[string][]*SemanticAbiFunction{},
		functionsBySignature:  map[string]*SemanticAbiFunction{},
	}

	for _, itemJSON := range j.Events {
		event, err := SemanticAbiEventFromJSON(itemJSON)
		if err != nil {
			return nil, err
		}
		if _, exists := sa.eventsBySignature[event.Signature()]; exists {
			return nil, abierr.New("duplicate event signature %q", event.Signature())
		}
		sa.eventsBySignature[event.Signature()] = event
		sa.eventsByHash[event.Hash()] = append(sa.eventsByHash[event.Hash()], event)
		if event.Properties().IsPrimary {
			sa.primaryEvents = append(sa.primaryEvents, event)
		}
	}

	for _, itemJSON := range j.Functions {
		function, err := SemanticAbiFunctionFromJSON(itemJSON)
		if err != nil {
			return nil, err
		}
		if _, exists := sa.functionsBySignature[function.Signature()]; exists {
			return nil, abierr.New("duplicate function signature %q", function.Signature())
		}
		sa.functionsBySignature[function.Signature()] = function
		sa.functionsByHash[function.Hash()] = append(sa.functionsByHash[function.Hash()], function)
		if function.Properties().IsPrimary {
			sa.primaryFunctions = append(sa.primaryFunctions, function)
		}
	}

	if len(sa.primaryEvents) == 0 && len(sa.primaryFunctions) == 0 {
		return nil, abierr.New("semantic ABI document declares no @isPrimary item")
	}

	if err := sa.validateMatchSignatures(); err != nil {
		return nil, err
	}

	return sa, nil
}

// validateMatchSignatures ensures every non-transfer `@matches` entry references a signature
// that's actually declared somewhere in this document (events matching against events,
// functions matching against functions).
func (sa *SemanticAbi) validateMatchSignatures() error {
	check := func(props *SemanticAbiItemProperties) error {
		if props == nil || props.Matches == nil {
			return nil
		}
		for _, m := range props.Matches.All() {
			switch m.ItemType {
			case MatchEvent:
				if _, ok := sa.eventsBySignature[m.Signature]; !ok {
					return abierr.New("@matches references unknown event signature %q", m.Signature)
				}
			case MatchFunction:
				if _, ok := sa.functionsBySignature[m.Signature]; !ok {
					return abierr.New("@matches references unknown function signature %q", m.Signature)
				}
			case MatchTransfer:
				// transfers are a built-in pseudo-item, not declared in the document.
			}
		}
		return nil
	}

	for _, e := range sa.primaryEvents {
		if err := check(e.Properties()); err != nil {
			return err
		}
	}
	for _, f := range sa.primaryFunctions {
		if err := check(f.Properties()); err != nil {
			return err
		}
	}
	return nil
}

func (sa *SemanticAbi) Chains() []metadata.EvmChain { return sa.chains }

func (sa *SemanticAbi) Expressions() []*NamedExpression { return sa.expressions }

func (sa *SemanticAbi) PrimaryEvents() []*SemanticAbiEvent { return sa.primaryEvents }

func (sa *SemanticAbi) PrimaryFunctions() []*SemanticAbiFunction { return sa.primaryFunctions }

// EventsByHash returns every event declared with the given topic-0 hash, possibly more than one
// when two differently-shaped events collide (e.g. ERC20 vs ERC721 Transfer).
func (sa *SemanticAbi) EventsByHash(hash string) []*SemanticAbiEvent { return sa.eventsByHash[hash] }

func (sa *SemanticAbi) EventBySignature(signature string) (*SemanticAbiEvent, bool) {
	e, ok := sa.eventsBySignature[signature]
	return e, ok
}

func (sa *SemanticAbi) FunctionsByHash(hash string) []*SemanticAbiFunction {
	return sa.functionsByHash[hash]
}

func (sa *SemanticAbi) FunctionBySignature(signature string) (*SemanticAbiFunction, bool) {
	f, ok := sa.functionsBySignature[signature]
	return f, ok
}

// IsValidForChain reports whether this document applies to the given chain.
func (sa *SemanticAbi) IsValidForChain(chain metadata.EvmChain) bool {
	for _, c := range sa.chains {
		if c == chain {
			return true
		}
	}
	return false
}

// ShouldConsider reports whether a contract address is in scope for this document: every
// address is in scope when no contractAddresses filter was declared.
func (sa *SemanticAbi) ShouldConsider(contractAddress string) bool {
	if len(sa.contractAddresses) == 0 {
		return true
	}
	return sa.contractAddresses[strings.ToLower(contractAddress)]
}

// ResolveEvent finds the declared event (if any) matching a raw log, disambiguating hash
// collisions by indexed-parameter count.
func (sa *SemanticAbi) ResolveEvent(log metadata.EthLog) *SemanticAbiEvent {
	if len(log.Topics) == 0 {
		return nil
	}
	candidates := sa.eventsByHash[strings.TrimPrefix(log.Topics[0], "0x")]
	if len(candidates) == 1 {
		return candidates[0]
	}
	for _, candidate := range candidates {
		if candidate.IsOf(log, true) {
			return candidate
		}
	}
	return nil
}

// ResolveFunction finds the declared function (if any) matching a trace's calldata, by 4-byte
// selector.
func (sa *SemanticAbi) ResolveFunction(trace metadata.EthTrace) *SemanticAbiFunction {
	selector := strings.TrimPrefix(trace.Signature(), "0x")
	if selector == "" {
		return nil
	}
	candidates := sa.functionsByHash[selector]
	if len(candidates) == 0 {
		return nil
	}
	return candidates[0]
}
