package keymanager

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMnemonic = strings.Split(
	"abandon abandon abandon abandon abandon abandon abandon abandon "+
		"abandon abandon abandon abandon abandon abandon abandon abandon "+
		"abandon abandon abandon abandon abandon abandon abandon art",
	" ",
)

const (
	goldenTestnetAddress = "addr_test1qp23t8sku3nyxncq7ejxfqvtjxj3lu3tzfl30qwfdwjm2cyym9vp7dy32e0rf2hxkwf8czg6kv83lm4zneme48luc97se5j5u3"
	goldenTestnetStake   = "stake_test1uzzdjkqlxjg4vh354tnt8ynupydtxrcla63fuau6nl7vzlg7lsy8u"
	goldenMainnetAddress = "addr1q923t8sku3nyxncq7ejxfqvtjxj3lu3tzfl30qwfdwjm2cyym9vp7dy32e0rf2hxkwf8czg6kv83lm4zneme48luc97s6z05sw"
	goldenMainnetStake   = "stake1uxzdjkqlxjg4vh354tnt8ynupydtxrcla63fuau6nl7vzlge46xrp"
)

func TestDeriveWalletKeys(t *testing.T) {
	keys, err := DeriveWalletKeys(DeriveWalletKeysOpts{
		Mnemonic: testMnemonic,
		Network:  Testnet,
	})
	require.NoError(t, err)

	assert.Equal(t, goldenTestnetAddress, keys.Address)
	assert.Equal(t, goldenTestnetStake, keys.StakeAddress)
	assert.Len(t, keys.RootKey, 2*rootKeySize)
}

func TestDeriveWalletKeysMainnet(t *testing.T) {
	keys, err := DeriveWalletKeys(DeriveWalletKeysOpts{
		Mnemonic: testMnemonic,
		Network:  Mainnet,
	})
	require.NoError(t, err)

	assert.Equal(t, goldenMainnetAddress, keys.Address)
	assert.Equal(t, goldenMainnetStake, keys.StakeAddress)
}

func TestDeriveWalletKeysIsDeterministic(t *testing.T) {
	first, err := DeriveWalletKeys(DeriveWalletKeysOpts{
		Mnemonic: testMnemonic,
		Network:  Testnet,
	})
	require.NoError(t, err)
	second, err := DeriveWalletKeys(DeriveWalletKeysOpts{
		Mnemonic: testMnemonic,
		Network:  Testnet,
	})
	require.NoError(t, err)

	assert.Equal(t, first.Address, second.Address)
	assert.Equal(t, first.StakeAddress, second.StakeAddress)
	assert.Equal(t, first.RootKey, second.RootKey)
}

func TestDeriveWalletKeysFromRoot(t *testing.T) {
	fromMnemonic, err := DeriveWalletKeys(DeriveWalletKeysOpts{
		Mnemonic: testMnemonic,
		Network:  Testnet,
	})
	require.NoError(t, err)

	fromRoot, err := DeriveWalletKeysFromRoot(DeriveWalletKeysFromRootOpts{
		RootKey: fromMnemonic.RootKey,
		Network: Testnet,
	})
	require.NoError(t, err)

	assert.Equal(t, fromMnemonic.Address, fromRoot.Address)
	assert.Equal(t, fromMnemonic.StakeAddress, fromRoot.StakeAddress)
}

func TestFailingDeriveWalletKeys(t *testing.T) {
	tests := []struct {
		opts DeriveWalletKeysOpts
		err  error
	}{
		{
			opts: DeriveWalletKeysOpts{Network: Testnet},
			err:  ErrNullMnemonic,
		},
		{
			opts: DeriveWalletKeysOpts{
				Mnemonic: []string{"not", "a", "valid", "mnemonic"},
				Network:  Testnet,
			},
			err: ErrInvalidMnemonic,
		},
		{
			opts: DeriveWalletKeysOpts{
				Mnemonic: testMnemonic,
				Network:  Network("regtest"),
			},
			err: ErrInvalidNetwork,
		},
	}
	for _, tt := range tests {
		_, err := DeriveWalletKeys(tt.opts)
		assert.Equal(t, tt.err, err)
	}
}

func TestFailingDeriveWalletKeysFromRoot(t *testing.T) {
	tests := []struct {
		opts DeriveWalletKeysFromRootOpts
		err  error
	}{
		{
			opts: DeriveWalletKeysFromRootOpts{RootKey: "", Network: Testnet},
			err:  ErrInvalidRootKey,
		},
		{
			opts: DeriveWalletKeysFromRootOpts{RootKey: "abcd", Network: Testnet},
			err:  ErrInvalidRootKey,
		},
	}
	for _, tt := range tests {
		_, err := DeriveWalletKeysFromRoot(tt.opts)
		assert.Equal(t, tt.err, err)
	}
}
