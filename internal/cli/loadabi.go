package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hyperarc/semanticabi/pkg/semanticabi/semantic"
)

// loadSemanticAbi reads and parses the semantic ABI document at path.
func loadSemanticAbi(path string) (*semantic.SemanticAbi, error) {
	if path == "" {
		return nil, fmt.Errorf("--abi is required")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var document semantic.SemanticAbiJSON
	if err := json.Unmarshal(raw, &document); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	abi, err := semantic.FromJSON(document)
	if err != nil {
		return nil, fmt.Errorf("validating %s: %w", path, err)
	}

	return abi, nil
}
