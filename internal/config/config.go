// Package config resolves the runtime configuration every command needs: the semantic ABI
// document to compile, the node to fetch blocks from, and cross-cutting execution flags.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hyperarc/semanticabi/pkg/semanticabi/fetch"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/metadata"
)

// RuntimeConfig is the complete resolved configuration for one command invocation.
type RuntimeConfig struct {
	// AbiPath is the path to the semantic ABI JSON document to compile.
	AbiPath string

	// NodeURL and NodeType describe the node a block fetch talks to.
	NodeURL  string
	NodeType fetch.NodeType

	// Chain is the EVM chain a fetched block belongs to, for chain-gating a document.
	Chain metadata.EvmChain

	// OutputPath is where transformed rows are written; empty means stdout.
	OutputPath string

	Debug          bool
	NonInteractive bool
	JSON           bool
	Timeout        time.Duration
}

// SetupViper wires up environment variables, an optional config file, and cobra flag binding the
// way every command's persistent pre-run expects.
func SetupViper(cmd *cobra.Command) *viper.Viper {
	_ = godotenv.Load()

	v := viper.New()
	nameFormatter := strings.NewReplacer("-", "_", ".", "_")

	v.SetConfigName("semanticabi")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SEMANTICABI")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(nameFormatter)

	v.SetDefault("node_type", string(fetch.NodeTypeErigon))
	v.SetDefault("chain", string(metadata.Ethereum))
	v.SetDefault("timeout", "5m")
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)

	_ = v.ReadInConfig()

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		name := nameFormatter.Replace(f.Name)
		if err := v.BindPFlag(name, f); err != nil {
			panic(err)
		}
	})

	return v
}

// Load builds a RuntimeConfig from the already-populated viper instance.
func Load(v *viper.Viper) (*RuntimeConfig, error) {
	nodeType, err := fetch.ParseNodeType(v.GetString("node_type"))
	if err != nil {
		return nil, fmt.Errorf("resolving node type: %w", err)
	}

	chain, err := metadata.ParseEvmChain(v.GetString("chain"))
	if err != nil {
		return nil, fmt.Errorf("resolving chain: %w", err)
	}

	return &RuntimeConfig{
		AbiPath:        v.GetString("abi"),
		NodeURL:        v.GetString("node_url"),
		NodeType:       nodeType,
		Chain:          chain,
		OutputPath:     v.GetString("output"),
		Debug:          v.GetBool("debug"),
		NonInteractive: v.GetBool("non_interactive"),
		JSON:           v.GetBool("json"),
		Timeout:        v.GetDuration("timeout"),
	}, nil
}
