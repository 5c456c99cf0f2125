package domain

import "context"

// WalletRepository is the interface for the wallet storage. Every method is a
// single atomic operation on the underlying store; in particular AddWallet
// marks the wallet active in the same update when it is the first one, and
// DeleteWallet clears the active pointer when it referenced the deleted
// wallet.
type WalletRepository interface {
	AddWallet(ctx context.Context, wallet *Wallet) error
	GetWallet(ctx context.Context, id string) (*Wallet, error)
	ListWallets(ctx context.Context) ([]Wallet, error)
	UpdateWallet(
		ctx context.Context, id string,
		updateFn func(w *Wallet) (*Wallet, error),
	) error
	DeleteWallet(ctx context.Context, id string) error
	GetActiveWallet(ctx context.Context) (*Wallet, error)
	SetActiveWallet(ctx context.Context, id string) error
}
