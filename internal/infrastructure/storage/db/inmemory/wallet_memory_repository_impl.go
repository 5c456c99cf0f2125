package inmemory

import (
	"context"

	"github.com/cardanoconnect/connectd/internal/core/domain"
)

// WalletRepositoryImpl represents an in memory storage
type WalletRepositoryImpl struct {
	db *DbManager
}

// NewWalletRepositoryImpl returns a new empty WalletRepositoryImpl
func NewWalletRepositoryImpl(db *DbManager) domain.WalletRepository {
	return &WalletRepositoryImpl{db: db}
}

func (r WalletRepositoryImpl) AddWallet(ctx context.Context, wallet *domain.Wallet) error {
	r.db.walletStore.locker.Lock()
	defer r.db.walletStore.locker.Unlock()

	if _, ok := r.db.walletStore.wallets[wallet.ID]; ok {
		return domain.ErrWalletAlreadyExists
	}
	r.db.walletStore.wallets[wallet.ID] = *wallet
	if len(r.db.walletStore.activeID) <= 0 {
		r.db.walletStore.activeID = wallet.ID
	}
	return nil
}

func (r WalletRepositoryImpl) GetWallet(ctx context.Context, id string) (*domain.Wallet, error) {
	r.db.walletStore.locker.Lock()
	defer r.db.walletStore.locker.Unlock()

	wallet, ok := r.db.walletStore.wallets[id]
	if !ok {
		return nil, domain.ErrWalletNotFound
	}
	return &wallet, nil
}

func (r WalletRepositoryImpl) ListWallets(ctx context.Context) ([]domain.Wallet, error) {
	r.db.walletStore.locker.Lock()
	defer r.db.walletStore.locker.Unlock()

	wallets := make([]domain.Wallet, 0, len(r.db.walletStore.wallets))
	for _, wallet := range r.db.walletStore.wallets {
		wallets = append(wallets, wallet)
	}
	return wallets, nil
}

func (r WalletRepositoryImpl) UpdateWallet(
	ctx context.Context, id string,
	updateFn func(w *domain.Wallet) (*domain.Wallet, error),
) error {
	r.db.walletStore.locker.Lock()
	defer r.db.walletStore.locker.Unlock()

	wallet, ok := r.db.walletStore.wallets[id]
	if !ok {
		return domain.ErrWalletNotFound
	}

	updated, err := updateFn(&wallet)
	if err != nil {
		return err
	}
	r.db.walletStore.wallets[id] = *updated
	return nil
}

func (r WalletRepositoryImpl) DeleteWallet(ctx context.Context, id string) error {
	r.db.walletStore.locker.Lock()
	defer r.db.walletStore.locker.Unlock()

	if _, ok := r.db.walletStore.wallets[id]; !ok {
		return domain.ErrWalletNotFound
	}
	delete(r.db.walletStore.wallets, id)
	if r.db.walletStore.activeID == id {
		r.db.walletStore.activeID = ""
	}
	return nil
}

func (r WalletRepositoryImpl) GetActiveWallet(ctx context.Context) (*domain.Wallet, error) {
	r.db.walletStore.locker.Lock()
	defer r.db.walletStore.locker.Unlock()

	if len(r.db.walletStore.activeID) <= 0 {
		return nil, domain.ErrNoActiveWallet
	}
	wallet, ok := r.db.walletStore.wallets[r.db.walletStore.activeID]
	if !ok {
		return nil, domain.ErrNoActiveWallet
	}
	return &wallet, nil
}

func (r WalletRepositoryImpl) SetActiveWallet(ctx context.Context, id string) error {
	r.db.walletStore.locker.Lock()
	defer r.db.walletStore.locker.Unlock()

	if _, ok := r.db.walletStore.wallets[id]; !ok {
		return domain.ErrWalletNotFound
	}
	r.db.walletStore.activeID = id
	return nil
}
