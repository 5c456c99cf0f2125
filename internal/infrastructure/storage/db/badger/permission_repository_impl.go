package dbbadger

import (
	"context"
	"errors"

	"github.com/timshannon/badgerhold/v4"

	"github.com/cardanoconnect/connectd/internal/core/domain"
)

type permissionRepositoryImpl struct {
	store *badgerhold.Store
}

// NewPermissionRepositoryImpl ...
func NewPermissionRepositoryImpl(db *DbManager) domain.PermissionRepository {
	return permissionRepositoryImpl{store: db.Store}
}

func (r permissionRepositoryImpl) GetPermission(
	ctx context.Context, origin string,
) (*domain.Permission, error) {
	var permission domain.Permission
	if err := r.store.Get(origin, &permission); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &permission, nil
}

func (r permissionRepositoryImpl) UpsertPermission(
	ctx context.Context, permission *domain.Permission,
) error {
	return r.store.Upsert(permission.Origin, *permission)
}

func (r permissionRepositoryImpl) ListPermissions(
	ctx context.Context,
) ([]domain.Permission, error) {
	permissions := make([]domain.Permission, 0)
	if err := r.store.Find(&permissions, nil); err != nil {
		return nil, err
	}
	return permissions, nil
}

func (r permissionRepositoryImpl) DeletePermission(
	ctx context.Context, origin string,
) error {
	if err := r.store.Delete(origin, domain.Permission{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil
		}
		return err
	}
	return nil
}
