package application

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/cardanoconnect/connectd/internal/core/domain"
	"github.com/cardanoconnect/connectd/pkg/keymanager"
)

// WalletService manages the wallet list: creation of HD and spoofed wallets,
// the active-wallet pointer and deletion. It is the daemon-side counterpart
// of the onboarding UI, which this core only knows by its effects.
type WalletService struct {
	walletRepo domain.WalletRepository
}

// NewWalletService ...
func NewWalletService(walletRepo domain.WalletRepository) *WalletService {
	return &WalletService{walletRepo: walletRepo}
}

// CreateHDWalletArgs groups the arguments of CreateHDWallet.
type CreateHDWalletArgs struct {
	Name     string
	Mnemonic []string
	Password string
	Network  keymanager.Network
}

func (a CreateHDWalletArgs) validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Name, validation.Required, validation.Length(1, 64)),
		validation.Field(&a.Mnemonic, validation.Required),
		validation.Field(&a.Network, validation.Required),
	)
}

// CreateHDWallet derives a wallet from the given mnemonic and stores it; the
// first wallet ever added automatically becomes the active one.
func (s *WalletService) CreateHDWallet(
	ctx context.Context, args CreateHDWalletArgs,
) (*domain.Wallet, error) {
	if err := args.validate(); err != nil {
		return nil, err
	}

	wallet, err := domain.NewHDWallet(domain.NewHDWalletArgs{
		ID:       uuid.NewString(),
		Name:     args.Name,
		Network:  args.Network,
		Mnemonic: args.Mnemonic,
		Password: args.Password,
	})
	if err != nil {
		return nil, err
	}

	if err := s.walletRepo.AddWallet(ctx, wallet); err != nil {
		return nil, err
	}
	return wallet, nil
}

// CreateSpoofedWalletArgs groups the arguments of CreateSpoofedWallet.
type CreateSpoofedWalletArgs struct {
	Name    string
	Address string
	Network keymanager.Network
}

func (a CreateSpoofedWalletArgs) validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Name, validation.Required, validation.Length(1, 64)),
		validation.Field(&a.Address, validation.Required),
		validation.Field(&a.Network, validation.Required),
	)
}

// CreateSpoofedWallet stores a read-only wallet around a bare address.
func (s *WalletService) CreateSpoofedWallet(
	ctx context.Context, args CreateSpoofedWalletArgs,
) (*domain.Wallet, error) {
	if err := args.validate(); err != nil {
		return nil, err
	}

	wallet, err := domain.NewSpoofedWallet(domain.NewSpoofedWalletArgs{
		ID:      uuid.NewString(),
		Name:    args.Name,
		Network: args.Network,
		Address: args.Address,
	})
	if err != nil {
		return nil, err
	}

	if err := s.walletRepo.AddWallet(ctx, wallet); err != nil {
		return nil, err
	}
	return wallet, nil
}

// ListWallets ...
func (s *WalletService) ListWallets(ctx context.Context) ([]domain.Wallet, error) {
	return s.walletRepo.ListWallets(ctx)
}

// SetActiveWallet ...
func (s *WalletService) SetActiveWallet(ctx context.Context, id string) error {
	return s.walletRepo.SetActiveWallet(ctx, id)
}

// DeleteWallet removes a wallet; the repository clears the active pointer in
// the same update when it referenced the deleted wallet.
func (s *WalletService) DeleteWallet(ctx context.Context, id string) error {
	return s.walletRepo.DeleteWallet(ctx, id)
}

// GenSeed returns a fresh mnemonic of the given entropy size (in bits).
func (s *WalletService) GenSeed(_ context.Context, entropySize int) ([]string, error) {
	return keymanager.NewMnemonic(keymanager.NewMnemonicOpts{
		EntropySize: entropySize,
	})
}
