package application

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/cardanoconnect/connectd/internal/core/domain"
	"github.com/cardanoconnect/connectd/internal/core/ports"
	"github.com/cardanoconnect/connectd/pkg/keymanager"
)

// ConnectorService is the privileged broker of the connector protocol: it
// drives the permission handshake and serves wallet-state queries against
// the active wallet. All its dependencies are injected so the handshake
// state machine is testable in isolation.
type ConnectorService struct {
	walletRepo      domain.WalletRepository
	permissionRepo  domain.PermissionRepository
	pendingRequests *PendingRequestTable
	prompter        ports.ApprovalPrompter
	chainSource     ports.ChainSource
}

// NewConnectorService returns a broker operating on the given stores and
// collaborators. chainSource may be nil, in which case GetUtxos reports an
// empty set.
func NewConnectorService(
	walletRepo domain.WalletRepository,
	permissionRepo domain.PermissionRepository,
	pendingRequests *PendingRequestTable,
	prompter ports.ApprovalPrompter,
	chainSource ports.ChainSource,
) *ConnectorService {
	return &ConnectorService{
		walletRepo:      walletRepo,
		permissionRepo:  permissionRepo,
		pendingRequests: pendingRequests,
		prompter:        prompter,
		chainSource:     chainSource,
	}
}

// Enable runs the permission handshake for the given origin and session.
// An origin already approved in the permission store short-circuits without
// any UI. Otherwise the caller suspends on the pending request of the
// (origin, session) key, joining it if a concurrent enable already created
// one, until the approval surface reports a decision or the request expires.
func (s *ConnectorService) Enable(ctx context.Context, origin, session string) (bool, error) {
	if len(origin) <= 0 || len(session) <= 0 {
		return false, ErrMalformedRequest
	}

	permission, err := s.permissionRepo.GetPermission(ctx, origin)
	if err != nil {
		return false, internalError(err)
	}
	if permission != nil && permission.Approved {
		return true, nil
	}

	request, created := s.pendingRequests.JoinOrCreate(origin, session)
	if created {
		if err := s.prompter.Prompt(ctx, origin, session); err != nil {
			log.WithError(err).WithField("origin", origin).
				Warn("could not present approval UI")
			s.pendingRequests.Fail(origin, session, ErrApprovalUnavailable)
		}
	}

	return request.Wait(ctx)
}

// ResolvePermission feeds a human decision back into the handshake. On
// approval the permission record is persisted before the suspended caller is
// signalled, so IsEnabled reflects the decision by the time enable returns.
// Resolving a request that no longer exists is a no-op.
func (s *ConnectorService) ResolvePermission(
	ctx context.Context, origin, session string, approved bool,
) error {
	if approved {
		permission, err := domain.NewPermission(origin, true)
		if err != nil {
			return internalError(err)
		}
		if err := s.permissionRepo.UpsertPermission(ctx, permission); err != nil {
			return internalError(err)
		}
	}

	if !s.pendingRequests.Resolve(origin, session, approved) {
		log.WithField("origin", origin).Debug("ignored late permission resolution")
	}
	return nil
}

// IsEnabled is a pure read of the permission store: it never triggers a
// handshake.
func (s *ConnectorService) IsEnabled(ctx context.Context, origin string) (bool, error) {
	permission, err := s.permissionRepo.GetPermission(ctx, origin)
	if err != nil {
		return false, internalError(err)
	}
	return permission != nil && permission.Approved, nil
}

// GetNetworkID returns 1 for mainnet and 0 for the test network.
func (s *ConnectorService) GetNetworkID(ctx context.Context) (int, error) {
	wallet, err := s.activeWallet(ctx)
	if err != nil {
		return 0, err
	}
	if wallet.Network == keymanager.Mainnet {
		return 1, nil
	}
	return 0, nil
}

// GetBalance returns the wallet balance, already denominated in the smallest
// on-chain unit. A stored value that does not parse as a non-negative
// integer is rejected, never coerced to zero.
func (s *ConnectorService) GetBalance(ctx context.Context) (string, error) {
	wallet, err := s.activeWallet(ctx)
	if err != nil {
		return "", err
	}

	balance, err := decimal.NewFromString(wallet.Balance)
	if err != nil || balance.IsNegative() || !balance.IsInteger() {
		return "", ErrMalformedBalance
	}
	return wallet.Balance, nil
}

// GetUsedAddresses returns the payment addresses of the active wallet.
func (s *ConnectorService) GetUsedAddresses(ctx context.Context) ([]string, error) {
	wallet, err := s.activeWallet(ctx)
	if err != nil {
		return nil, err
	}
	return []string{wallet.Address}, nil
}

// GetRewardAddresses returns the stake addresses of the active wallet. A
// spoofed wallet has none.
func (s *ConnectorService) GetRewardAddresses(ctx context.Context) ([]string, error) {
	wallet, err := s.activeWallet(ctx)
	if err != nil {
		return nil, err
	}
	if len(wallet.StakeAddress) <= 0 {
		return []string{}, nil
	}
	return []string{wallet.StakeAddress}, nil
}

// GetWalletName returns the display name of the active wallet.
func (s *ConnectorService) GetWalletName(ctx context.Context) (string, error) {
	wallet, err := s.activeWallet(ctx)
	if err != nil {
		return "", err
	}
	return wallet.Name, nil
}

// GetUtxos returns the unspent outputs of the active wallet as reported by
// the chain source. Without a chain source it reports an empty set, which is
// a legitimate success: a wallet with no UTXOs answers the same way.
func (s *ConnectorService) GetUtxos(ctx context.Context) ([]ports.Utxo, error) {
	wallet, err := s.activeWallet(ctx)
	if err != nil {
		return nil, err
	}
	if s.chainSource == nil {
		return []ports.Utxo{}, nil
	}

	utxos, err := s.chainSource.GetUtxos(ctx, wallet.Address)
	if err != nil {
		return nil, internalError(err)
	}
	return utxos, nil
}

func (s *ConnectorService) activeWallet(ctx context.Context) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetActiveWallet(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNoActiveWallet) {
			return nil, ErrNoActiveWallet
		}
		return nil, internalError(err)
	}
	return wallet, nil
}
