package inmemory

import (
	"sync"

	"github.com/cardanoconnect/connectd/internal/core/domain"
)

type walletStore struct {
	locker   sync.Mutex
	wallets  map[string]domain.Wallet
	activeID string
}

type permissionStore struct {
	locker      sync.Mutex
	permissions map[string]domain.Permission
}

// DbManager is the in-memory twin of the badger manager, handy for tests and
// ephemeral deployments.
type DbManager struct {
	walletStore     *walletStore
	permissionStore *permissionStore
}

// NewDbManager returns an empty in-memory storage.
func NewDbManager() *DbManager {
	return &DbManager{
		walletStore: &walletStore{
			wallets: map[string]domain.Wallet{},
		},
		permissionStore: &permissionStore{
			permissions: map[string]domain.Permission{},
		},
	}
}
