package domain

import (
	"time"

	"github.com/cardanoconnect/connectd/pkg/keymanager"
)

// WalletKind discriminates wallets derived from a seed from address-only ones.
type WalletKind string

const (
	// WalletKindHD is a wallet whose keys are derived from a seed phrase.
	WalletKindHD WalletKind = "hd"
	// WalletKindSpoofed is an address-only wallet with no key material, used
	// for read-only monitoring.
	WalletKindSpoofed WalletKind = "spoofed"
)

// Wallet defines the entity data structure for a wallet known to the daemon.
// The secret material is either absent (spoofed wallet), held in Secret
// (no password) or in EncryptedSecret (password set), never in both.
type Wallet struct {
	ID              string
	Name            string
	Network         keymanager.Network
	Address         string
	StakeAddress    string
	Balance         string
	Kind            WalletKind
	HasPassword     bool
	Secret          string
	EncryptedSecret string
	CreatedAt       time.Time
}

// NewHDWalletArgs groups the arguments of NewHDWallet.
type NewHDWalletArgs struct {
	ID       string
	Name     string
	Network  keymanager.Network
	Mnemonic []string
	Password string
}

// NewHDWallet derives the wallet addresses for the given mnemonic and network
// and returns the wallet entity holding them. When a password is given the
// root key material is encrypted at rest and never stored in plain text.
func NewHDWallet(args NewHDWalletArgs) (*Wallet, error) {
	if len(args.Name) <= 0 {
		return nil, ErrNullWalletName
	}

	keys, err := keymanager.DeriveWalletKeys(keymanager.DeriveWalletKeysOpts{
		Mnemonic: args.Mnemonic,
		Network:  args.Network,
	})
	if err != nil {
		return nil, err
	}

	wallet := &Wallet{
		ID:           args.ID,
		Name:         args.Name,
		Network:      args.Network,
		Address:      keys.Address,
		StakeAddress: keys.StakeAddress,
		Balance:      "0",
		Kind:         WalletKindHD,
		CreatedAt:    time.Now(),
	}

	if len(args.Password) > 0 {
		encrypted, err := keymanager.Encrypt(keymanager.EncryptOpts{
			PlainText:  keys.RootKey,
			Passphrase: args.Password,
		})
		if err != nil {
			return nil, err
		}
		wallet.HasPassword = true
		wallet.EncryptedSecret = encrypted
	} else {
		wallet.Secret = keys.RootKey
	}

	if err := wallet.validateSecret(); err != nil {
		return nil, err
	}
	return wallet, nil
}

// NewSpoofedWalletArgs groups the arguments of NewSpoofedWallet.
type NewSpoofedWalletArgs struct {
	ID      string
	Name    string
	Network keymanager.Network
	Address string
}

// NewSpoofedWallet returns a read-only wallet wrapping a bare payment
// address. The address must classify as a payment address.
func NewSpoofedWallet(args NewSpoofedWalletArgs) (*Wallet, error) {
	if len(args.Name) <= 0 {
		return nil, ErrNullWalletName
	}

	kind, err := keymanager.ClassifyAddress(args.Address)
	if err != nil {
		return nil, err
	}
	if kind != keymanager.KindBasePayment && kind != keymanager.KindEnterprisePayment {
		return nil, keymanager.ErrInvalidAddressPayload
	}

	return &Wallet{
		ID:        args.ID,
		Name:      args.Name,
		Network:   args.Network,
		Address:   args.Address,
		Balance:   "0",
		Kind:      WalletKindSpoofed,
		CreatedAt: time.Now(),
	}, nil
}

// IsSpoofed returns whether the wallet holds no key material at all.
func (w *Wallet) IsSpoofed() bool {
	return w.Kind == WalletKindSpoofed
}

// Secrets returns the root key material, decrypting it with the given
// password when the wallet is protected.
func (w *Wallet) Secrets(password string) (string, error) {
	if w.IsSpoofed() {
		return "", ErrNullSecret
	}
	if !w.HasPassword {
		return w.Secret, nil
	}
	return keymanager.Decrypt(keymanager.DecryptOpts{
		CypherText: w.EncryptedSecret,
		Passphrase: password,
	})
}

func (w *Wallet) validateSecret() error {
	if w.IsSpoofed() {
		return nil
	}
	if len(w.Secret) <= 0 && len(w.EncryptedSecret) <= 0 {
		return ErrNullSecret
	}
	if len(w.Secret) > 0 && len(w.EncryptedSecret) > 0 {
		return ErrAmbiguousSecret
	}
	return nil
}
