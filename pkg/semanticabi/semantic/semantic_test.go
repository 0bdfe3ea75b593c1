package semantic

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func transferDoc() SemanticAbiJSON {
	return SemanticAbiJSON{
		Metadata: MetadataJSON{Chains: []string{"ethereum"}},
		Events: []ItemJSON{
			{
				Type:      "event",
				Name:      "Transfer",
				IsPrimary: true,
				Inputs: []ParameterJSON{
					{Name: "from", Type: "address", Indexed: true},
					{Name: "to", Type: "address", Indexed: true},
					{Name: "value", Type: "uint256"},
				},
			},
		},
	}
}

func TestSemanticAbiRequiresAtLeastOnePrimaryItem(t *testing.T) {
	doc := transferDoc()
	doc.Events[0].IsPrimary = false

	_, err := FromJSON(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no @isPrimary item")
}

func TestSemanticAbiRejectsNonPrimaryExplode(t *testing.T) {
	doc := transferDoc()
	doc.Events[0].IsPrimary = false
	doc.Events[0].Explode = []string{"value"}

	_, err := FromJSON(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "@explode requires @isPrimary")
}

func TestSemanticAbiResolvesContractScope(t *testing.T) {
	doc := transferDoc()
	doc.Metadata.ContractAddresses = []string{"0xAAAA000000000000000000000000000000AAAA"}

	sa, err := FromJSON(doc)
	require.NoError(t, err)

	assert.True(t, sa.ShouldConsider("0xaaaa000000000000000000000000000000aaaa"))
	assert.False(t, sa.ShouldConsider("0xbbbb000000000000000000000000000000bbbb"))
}

func TestSemanticAbiNoFilterConsidersEverything(t *testing.T) {
	sa, err := FromJSON(transferDoc())
	require.NoError(t, err)
	assert.True(t, sa.ShouldConsider("0xdeadbeef00000000000000000000000000dead"))
}

func TestParameterTransformRejectsNonThisExpression(t *testing.T) {
	doc := transferDoc()
	doc.Events[0].Inputs[2].Transform = &ParameterTransformJSON{Expression: "other * 2"}

	_, err := FromJSON(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "may only reference")
}

func TestParameterTransformAcceptsThisExpression(t *testing.T) {
	doc := transferDoc()
	doc.Events[0].Inputs[2].Transform = &ParameterTransformJSON{Name: "amount", Expression: "this / 1000000"}

	sa, err := FromJSON(doc)
	require.NoError(t, err)

	value, ok := sa.EventBySignature(sa.PrimaryEvents()[0].Signature())
	require.True(t, ok)
	param, ok := value.Parameters().Get("value")
	require.True(t, ok)
	assert.Equal(t, "amount", param.OutputName())

	result, err := param.Transform().Apply(float64(2000000))
	require.NoError(t, err)
	assert.Equal(t, float64(2), result)
}

func TestExplodeRejectsNonArrayTerminal(t *testing.T) {
	doc := SemanticAbiJSON{
		Metadata: MetadataJSON{Chains: []string{"ethereum"}},
		Events: []ItemJSON{
			{
				Type:      "event",
				Name:      "Swap",
				IsPrimary: true,
				Explode:   []string{"amount"},
				Inputs: []ParameterJSON{
					{Name: "amount", Type: "uint256"},
				},
			},
		},
	}

	_, err := FromJSON(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not an array")
}

func TestExplodeAcceptsArrayTerminal(t *testing.T) {
	doc := SemanticAbiJSON{
		Metadata: MetadataJSON{Chains: []string{"ethereum"}},
		Events: []ItemJSON{
			{
				Type:      "event",
				Name:      "Batch",
				IsPrimary: true,
				Explode:   []string{"amounts"},
				Inputs: []ParameterJSON{
					{Name: "amounts", Type: "uint256[]"},
				},
			},
		},
	}

	sa, err := FromJSON(doc)
	require.NoError(t, err)
	explode := sa.PrimaryEvents()[0].Properties().Explode
	require.NotNil(t, explode)
	assert.Equal(t, []string{"amounts"}, explode.Paths())
}

func TestExplodeSupportsMultipleSimultaneousPaths(t *testing.T) {
	doc := SemanticAbiJSON{
		Metadata: MetadataJSON{Chains: []string{"ethereum"}},
		Events: []ItemJSON{
			{
				Type:      "event",
				Name:      "OrdersFulfilled",
				IsPrimary: true,
				Explode:   []string{"offerers", "considerations", "spentAmounts"},
				Inputs: []ParameterJSON{
					{Name: "offerers", Type: "address[]"},
					{Name: "considerations", Type: "address[]"},
					{Name: "spentAmounts", Type: "uint256[]"},
				},
			},
		},
	}

	sa, err := FromJSON(doc)
	require.NoError(t, err)
	explode := sa.PrimaryEvents()[0].Properties().Explode
	require.NotNil(t, explode)
	assert.Equal(t, []string{"offerers", "considerations", "spentAmounts"}, explode.Paths())
	assert.Equal(t, [][]string{{"offerers"}, {"considerations"}, {"spentAmounts"}}, explode.PathParts())
}

func TestMatchesRejectsMultipleManyAsserts(t *testing.T) {
	doc := transferDoc()
	doc.Events = append(doc.Events, ItemJSON{
		Type: "event",
		Name: "Other",
		Inputs: []ParameterJSON{
			{Name: "x", Type: "uint256"},
		},
	})
	doc.Events[0].Matches = []MatchJSON{
		{Type: "transfer", Prefix: "t", Assert: "many"},
		{Type: "event", Signature: "Other(uint256)", Prefix: "o", Assert: "many"},
	}

	_, err := FromJSON(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at most one @matches entry may assert MANY")
}

func TestMatchesRejectsUnknownSignature(t *testing.T) {
	doc := transferDoc()
	doc.Events[0].Matches = []MatchJSON{
		{Type: "event", Signature: "Nope(uint256)", Prefix: "n", Assert: "onlyOne"},
	}

	_, err := FromJSON(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown event signature")
}

func TestMatchPrefixedColumnName(t *testing.T) {
	m := &Match{Prefix: "left"}
	assert.Equal(t, "left_value", m.MakePrefixedColumnName("value"))
}

func TestBoundMatchAcceptsBigIntAmounts(t *testing.T) {
	lower, upper := 0.95, 1.05
	m, err := newBoundMatch("quoted", "filled", &lower, &upper)
	require.NoError(t, err)

	quoted := big.NewInt(1000)
	within := big.NewInt(990)
	outside := big.NewInt(800)

	assert.True(t, m.Matches(map[string]any{"quoted": quoted}, map[string]any{"filled": within}))
	assert.False(t, m.Matches(map[string]any{"quoted": quoted}, map[string]any{"filled": outside}))
}
