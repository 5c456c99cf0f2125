package inmemory

import (
	"context"

	"github.com/cardanoconnect/connectd/internal/core/domain"
)

// PermissionRepositoryImpl represents an in memory storage
type PermissionRepositoryImpl struct {
	db *DbManager
}

// NewPermissionRepositoryImpl returns a new empty PermissionRepositoryImpl
func NewPermissionRepositoryImpl(db *DbManager) domain.PermissionRepository {
	return &PermissionRepositoryImpl{db: db}
}

func (r PermissionRepositoryImpl) GetPermission(
	ctx context.Context, origin string,
) (*domain.Permission, error) {
	r.db.permissionStore.locker.Lock()
	defer r.db.permissionStore.locker.Unlock()

	permission, ok := r.db.permissionStore.permissions[origin]
	if !ok {
		return nil, nil
	}
	return &permission, nil
}

func (r PermissionRepositoryImpl) UpsertPermission(
	ctx context.Context, permission *domain.Permission,
) error {
	r.db.permissionStore.locker.Lock()
	defer r.db.permissionStore.locker.Unlock()

	r.db.permissionStore.permissions[permission.Origin] = *permission
	return nil
}

func (r PermissionRepositoryImpl) ListPermissions(
	ctx context.Context,
) ([]domain.Permission, error) {
	r.db.permissionStore.locker.Lock()
	defer r.db.permissionStore.locker.Unlock()

	permissions := make([]domain.Permission, 0, len(r.db.permissionStore.permissions))
	for _, permission := range r.db.permissionStore.permissions {
		permissions = append(permissions, permission)
	}
	return permissions, nil
}

func (r PermissionRepositoryImpl) DeletePermission(
	ctx context.Context, origin string,
) error {
	r.db.permissionStore.locker.Lock()
	defer r.db.permissionStore.locker.Unlock()

	delete(r.db.permissionStore.permissions, origin)
	return nil
}
