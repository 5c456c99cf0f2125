package domain

import "context"

// PermissionRepository is the interface for the permission storage.
// GetPermission returns a nil record, not an error, when no decision was ever
// stored for the origin.
type PermissionRepository interface {
	GetPermission(ctx context.Context, origin string) (*Permission, error)
	UpsertPermission(ctx context.Context, permission *Permission) error
	ListPermissions(ctx context.Context) ([]Permission, error)
	DeletePermission(ctx context.Context, origin string) error
}
