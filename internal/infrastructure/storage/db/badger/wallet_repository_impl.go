package dbbadger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v3"
	"github.com/timshannon/badgerhold/v4"

	"github.com/cardanoconnect/connectd/internal/core/domain"
)

const activeWalletKey = "active"

// activePointer is the single record referencing the currently active
// wallet. It lives in its own badgerhold type namespace.
type activePointer struct {
	WalletID string
}

type walletRepositoryImpl struct {
	store *badgerhold.Store
}

// NewWalletRepositoryImpl ...
func NewWalletRepositoryImpl(db *DbManager) domain.WalletRepository {
	return walletRepositoryImpl{store: db.Store}
}

// AddWallet inserts the wallet and, in the same transaction, marks it active
// when no active pointer exists yet.
func (r walletRepositoryImpl) AddWallet(ctx context.Context, wallet *domain.Wallet) error {
	return r.store.Badger().Update(func(tx *badger.Txn) error {
		if err := r.store.TxInsert(tx, wallet.ID, *wallet); err != nil {
			if errors.Is(err, badgerhold.ErrKeyExists) {
				return domain.ErrWalletAlreadyExists
			}
			return err
		}

		var pointer activePointer
		err := r.store.TxGet(tx, activeWalletKey, &pointer)
		if errors.Is(err, badgerhold.ErrNotFound) {
			return r.store.TxUpsert(tx, activeWalletKey, activePointer{wallet.ID})
		}
		return err
	})
}

func (r walletRepositoryImpl) GetWallet(ctx context.Context, id string) (*domain.Wallet, error) {
	var wallet domain.Wallet
	if err := r.store.Get(id, &wallet); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, domain.ErrWalletNotFound
		}
		return nil, err
	}
	return &wallet, nil
}

func (r walletRepositoryImpl) ListWallets(ctx context.Context) ([]domain.Wallet, error) {
	wallets := make([]domain.Wallet, 0)
	if err := r.store.Find(&wallets, nil); err != nil {
		return nil, err
	}
	return wallets, nil
}

func (r walletRepositoryImpl) UpdateWallet(
	ctx context.Context, id string,
	updateFn func(w *domain.Wallet) (*domain.Wallet, error),
) error {
	return r.store.Badger().Update(func(tx *badger.Txn) error {
		var wallet domain.Wallet
		if err := r.store.TxGet(tx, id, &wallet); err != nil {
			if errors.Is(err, badgerhold.ErrNotFound) {
				return domain.ErrWalletNotFound
			}
			return err
		}

		updated, err := updateFn(&wallet)
		if err != nil {
			return err
		}
		return r.store.TxUpdate(tx, id, *updated)
	})
}

// DeleteWallet removes the wallet and clears the active pointer in the same
// transaction when it referenced the deleted wallet.
func (r walletRepositoryImpl) DeleteWallet(ctx context.Context, id string) error {
	return r.store.Badger().Update(func(tx *badger.Txn) error {
		if err := r.store.TxDelete(tx, id, domain.Wallet{}); err != nil {
			if errors.Is(err, badgerhold.ErrNotFound) {
				return domain.ErrWalletNotFound
			}
			return err
		}

		var pointer activePointer
		err := r.store.TxGet(tx, activeWalletKey, &pointer)
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if pointer.WalletID == id {
			return r.store.TxDelete(tx, activeWalletKey, activePointer{})
		}
		return nil
	})
}

func (r walletRepositoryImpl) GetActiveWallet(ctx context.Context) (*domain.Wallet, error) {
	var wallet domain.Wallet
	err := r.store.Badger().View(func(tx *badger.Txn) error {
		var pointer activePointer
		if err := r.store.TxGet(tx, activeWalletKey, &pointer); err != nil {
			if errors.Is(err, badgerhold.ErrNotFound) {
				return domain.ErrNoActiveWallet
			}
			return err
		}

		if err := r.store.TxGet(tx, pointer.WalletID, &wallet); err != nil {
			if errors.Is(err, badgerhold.ErrNotFound) {
				return domain.ErrNoActiveWallet
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (r walletRepositoryImpl) SetActiveWallet(ctx context.Context, id string) error {
	return r.store.Badger().Update(func(tx *badger.Txn) error {
		var wallet domain.Wallet
		if err := r.store.TxGet(tx, id, &wallet); err != nil {
			if errors.Is(err, badgerhold.ErrNotFound) {
				return domain.ErrWalletNotFound
			}
			return err
		}
		return r.store.TxUpsert(tx, activeWalletKey, activePointer{id})
	})
}
