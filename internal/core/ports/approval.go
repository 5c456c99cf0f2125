package ports

import "context"

// ApprovalPrompter abstracts the human-interactive approval surface. Prompt
// asks it to render a consent dialog for the given origin and session; the
// decision flows back asynchronously through the broker's ResolvePermission.
// A Prompt error means the surface could not be presented at all, in which
// case the outstanding enable call must fail rather than hang.
type ApprovalPrompter interface {
	Prompt(ctx context.Context, origin, session string) error
}
