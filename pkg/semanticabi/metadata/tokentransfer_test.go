package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const transferTopicHash = "0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef"

func TestDecodeTokenTransfersErc20(t *testing.T) {
	log := EthLog{
		Address: "0xCoNtRaCt00000000000000000000000000000000",
		Topics: []string{
			transferTopicHash,
			"0x000000000000000000000000aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
			"0x000000000000000000000000bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
		},
		Data: "0x00000000000000000000000000000000000000000000000000000000000003e8",
	}

	transfers := DecodeTokenTransfers(log, 0)
	require.Len(t, transfers, 1)
	assert.Equal(t, TokenERC20, transfers[0].TokenType())
	assert.Equal(t, "1000", transfers[0].Value().String())
	_, hasTokenID := transfers[0].TokenID()
	assert.False(t, hasTokenID)
}

func TestDecodeTokenTransfersErc721(t *testing.T) {
	log := EthLog{
		Address: "0xCoNtRaCt00000000000000000000000000000000",
		Topics: []string{
			transferTopicHash,
			"0x000000000000000000000000aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
			"0x000000000000000000000000bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
			"0x000000000000000000000000000000000000000000000000000000000000002a",
		},
		Data: "0x",
	}

	transfers := DecodeTokenTransfers(log, 0)
	require.Len(t, transfers, 1)
	assert.Equal(t, TokenERC721, transfers[0].TokenType())
	tokenID, hasTokenID := transfers[0].TokenID()
	assert.True(t, hasTokenID)
	assert.Equal(t, "42", tokenID)
}

func TestDecodeTokenTransfersNotATransfer(t *testing.T) {
	log := EthLog{Topics: []string{"0xdeadbeef"}}
	assert.Empty(t, DecodeTokenTransfers(log, 0))
}
