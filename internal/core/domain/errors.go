package domain

import "errors"

var (
	// ErrWalletNotFound ...
	ErrWalletNotFound = errors.New("wallet not found")
	// ErrNoActiveWallet is returned when an operation needs the active wallet
	// and none is set.
	ErrNoActiveWallet = errors.New("no active wallet")
	// ErrWalletAlreadyExists ...
	ErrWalletAlreadyExists = errors.New("a wallet with the same id already exists")
	// ErrNullWalletName ...
	ErrNullWalletName = errors.New("wallet name must not be null")
	// ErrNullSecret is thrown when creating an HD wallet without key material.
	ErrNullSecret = errors.New("hd wallet must hold key material")
	// ErrAmbiguousSecret is thrown when a wallet would hold both plaintext and
	// encrypted key material at once.
	ErrAmbiguousSecret = errors.New(
		"wallet secret must be either plaintext or encrypted, never both",
	)
	// ErrNullOrigin ...
	ErrNullOrigin = errors.New("origin must not be null")
)
