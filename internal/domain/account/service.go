// Package account manages the connected-account lifecycle: onboarding a
// screen owner as a payable party and mirroring processor-side onboarding
// state back into the user document.
package account

import (
	"context"
	"fmt"
	"log"

	"screenrent/backend/internal/config"
	"screenrent/backend/internal/domain/user"
	"screenrent/backend/internal/ids"
	"screenrent/backend/internal/payments"
)

type Service struct {
	users   *user.Repo
	gateway payments.Gateway
	cfg     config.Config
}

func NewService(users *user.Repo, gw payments.Gateway, cfg config.Config) *Service {
	return &Service{users: users, gateway: gw, cfg: cfg}
}

// CreateConnectAccount creates a payable-party account for the caller and
// stores its id on the user document. The document write happens strictly
// after a successful gateway call.
func (s *Service) CreateConnectAccount(ctx context.Context, uid ids.UserID, in CreateAccountInput) (ids.AccountID, error) {
	in.Trim()

	if in.Email == "" {
		return "", fmt.Errorf("%w: email is required", ErrBadRequest)
	}

	accountID, err := s.gateway.CreateAccount(ctx, in.Email, in.Country)
	if err != nil {
		log.Printf("connect account for %s: create failed: %v", uid, err)
		return "", fmt.Errorf("%w: could not create connected account", ErrPayment)
	}

	if err := s.users.SetStripeAccount(ctx, uid, accountID); err != nil {
		return "", fmt.Errorf("failed to store account id: %w", err)
	}
	return accountID, nil
}

// CreateAccountLink returns a one-time onboarding URL, falling back to the
// platform's configured redirect targets.
func (s *Service) CreateAccountLink(ctx context.Context, uid ids.UserID, in CreateAccountLinkInput) (string, error) {
	in.Trim()

	if in.AccountID == "" {
		return "", fmt.Errorf("%w: accountId is required", ErrBadRequest)
	}
	returnURL := in.ReturnURL
	if returnURL == "" {
		returnURL = s.cfg.ConnectReturnURL
	}
	refreshURL := in.RefreshURL
	if refreshURL == "" {
		refreshURL = s.cfg.ConnectRefreshURL
	}

	url, err := s.gateway.CreateAccountLink(ctx, ids.NewAccountID(in.AccountID), returnURL, refreshURL)
	if err != nil {
		log.Printf("account link for %s (%s): %v", uid, in.AccountID, err)
		return "", fmt.Errorf("%w: could not create onboarding link", ErrPayment)
	}
	return url, nil
}

// GetAccountStatus is a read-through status mirror for the client UI.
// No caching, no document writes.
func (s *Service) GetAccountStatus(ctx context.Context, accountID ids.AccountID) (*payments.AccountStatus, error) {
	if accountID == "" {
		return nil, fmt.Errorf("%w: accountId is required", ErrBadRequest)
	}

	st, err := s.gateway.RetrieveAccount(ctx, accountID)
	if err != nil {
		log.Printf("account status %s: %v", accountID, err)
		return nil, fmt.Errorf("%w: could not retrieve account status", ErrPayment)
	}
	return st, nil
}
