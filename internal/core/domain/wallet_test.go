package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cardanoconnect/connectd/internal/core/domain"
	"github.com/cardanoconnect/connectd/pkg/keymanager"
)

func newTestMnemonic(t *testing.T) []string {
	t.Helper()
	mnemonic, err := keymanager.NewMnemonic(keymanager.NewMnemonicOpts{})
	require.NoError(t, err)
	return mnemonic
}

func TestNewHDWallet(t *testing.T) {
	wallet, err := domain.NewHDWallet(domain.NewHDWalletArgs{
		ID:       "w1",
		Name:     "my wallet",
		Network:  keymanager.Testnet,
		Mnemonic: newTestMnemonic(t),
	})
	require.NoError(t, err)
	require.Equal(t, domain.WalletKindHD, wallet.Kind)
	require.False(t, wallet.IsSpoofed())
	require.False(t, wallet.HasPassword)
	require.NotEmpty(t, wallet.Address)
	require.NotEmpty(t, wallet.StakeAddress)
	require.NotEmpty(t, wallet.Secret)
	require.Empty(t, wallet.EncryptedSecret)
	require.Equal(t, "0", wallet.Balance)

	secret, err := wallet.Secrets("")
	require.NoError(t, err)
	require.Equal(t, wallet.Secret, secret)
}

func TestNewHDWalletWithPassword(t *testing.T) {
	password := "correct horse battery staple"
	wallet, err := domain.NewHDWallet(domain.NewHDWalletArgs{
		ID:       "w1",
		Name:     "my wallet",
		Network:  keymanager.Testnet,
		Mnemonic: newTestMnemonic(t),
		Password: password,
	})
	require.NoError(t, err)
	require.True(t, wallet.HasPassword)
	require.Empty(t, wallet.Secret)
	require.NotEmpty(t, wallet.EncryptedSecret)

	secret, err := wallet.Secrets(password)
	require.NoError(t, err)
	require.NotEmpty(t, secret)

	_, err = wallet.Secrets("wrong password")
	require.Error(t, err)
}

func TestFailingNewHDWallet(t *testing.T) {
	tests := []struct {
		name string
		args domain.NewHDWalletArgs
	}{
		{
			"missing name",
			domain.NewHDWalletArgs{
				ID:       "w1",
				Network:  keymanager.Testnet,
				Mnemonic: []string{"abandon"},
			},
		},
		{
			"missing mnemonic",
			domain.NewHDWalletArgs{
				ID:      "w1",
				Name:    "my wallet",
				Network: keymanager.Testnet,
			},
		},
		{
			"invalid network",
			domain.NewHDWalletArgs{
				ID:       "w1",
				Name:     "my wallet",
				Network:  keymanager.Network("regtest"),
				Mnemonic: newTestMnemonic(t),
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewHDWallet(tt.args)
			require.Error(t, err)
		})
	}
}

func TestNewSpoofedWallet(t *testing.T) {
	hd, err := domain.NewHDWallet(domain.NewHDWalletArgs{
		ID:       "w1",
		Name:     "source",
		Network:  keymanager.Testnet,
		Mnemonic: newTestMnemonic(t),
	})
	require.NoError(t, err)

	wallet, err := domain.NewSpoofedWallet(domain.NewSpoofedWalletArgs{
		ID:      "w2",
		Name:    "watch only",
		Network: keymanager.Testnet,
		Address: hd.Address,
	})
	require.NoError(t, err)
	require.Equal(t, domain.WalletKindSpoofed, wallet.Kind)
	require.True(t, wallet.IsSpoofed())
	require.Empty(t, wallet.StakeAddress)

	_, err = wallet.Secrets("")
	require.ErrorIs(t, err, domain.ErrNullSecret)
}

func TestFailingNewSpoofedWallet(t *testing.T) {
	hd, err := domain.NewHDWallet(domain.NewHDWalletArgs{
		ID:       "w1",
		Name:     "source",
		Network:  keymanager.Testnet,
		Mnemonic: newTestMnemonic(t),
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		args domain.NewSpoofedWalletArgs
	}{
		{
			"missing name",
			domain.NewSpoofedWalletArgs{
				ID:      "w2",
				Network: keymanager.Testnet,
				Address: hd.Address,
			},
		},
		{
			"malformed address",
			domain.NewSpoofedWalletArgs{
				ID:      "w2",
				Name:    "watch only",
				Network: keymanager.Testnet,
				Address: "not an address",
			},
		},
		{
			"stake address instead of payment",
			domain.NewSpoofedWalletArgs{
				ID:      "w2",
				Name:    "watch only",
				Network: keymanager.Testnet,
				Address: hd.StakeAddress,
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewSpoofedWallet(tt.args)
			require.Error(t, err)
		})
	}
}
