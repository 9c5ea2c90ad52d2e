// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/canonical/portal-auth/internal/logging"
	"github.com/canonical/portal-auth/internal/monitoring"
	"github.com/canonical/portal-auth/internal/storage"
	"github.com/canonical/portal-auth/internal/tracing"
	"github.com/canonical/portal-auth/internal/types"
	"github.com/canonical/portal-auth/pkg/authentication"
)

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrInvalidResetToken   = errors.New("invalid reset token")
)

var _ ServiceInterface = (*Service)(nil)

type Service struct {
	storage  StorageInterface
	tx       TransactorInterface
	issuer   authentication.TokenIssuerInterface
	hasher   authentication.PasswordHasherInterface
	notifier NotifierInterface
	config   Config
	now      func() time.Time

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Login verifies the credentials and issues a new token pair. Unknown
// accounts, wrong passwords and deactivated accounts all yield
// ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, identifier, password, clientIP string) (*TokenPair, error) {
	ctx, span := s.tracer.Start(ctx, "session.Service.Login")
	defer span.End()

	account, err := s.storage.GetAccountByIdentifier(ctx, identifier)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	hash := ""
	if account != nil {
		hash = account.PasswordHash
	}

	if !s.hasher.Compare(hash, password) || account == nil || !account.Active {
		s.logger.Security().AuthnLoginFailure(identifier, clientIP)
		s.recordOutcome("login", "failure")
		return nil, ErrInvalidCredentials
	}

	var pair *TokenPair
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		pair, err = s.issue(ctx, account)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Security().AuthnLoginSuccess(account.ID, clientIP)
	s.recordOutcome("login", "success")

	return pair, nil
}

// Refresh rotates a refresh token: the presented record is deleted and a
// replacement is issued in the same transaction. A token can be rotated at
// most once; every later attempt fails with ErrInvalidRefreshToken.
func (s *Service) Refresh(ctx context.Context, rawRefreshToken string) (*TokenPair, error) {
	ctx, span := s.tracer.Start(ctx, "session.Service.Refresh")
	defer span.End()

	var pair *TokenPair
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		accountID, err := s.storage.ConsumeRefreshToken(ctx, HashToken(rawRefreshToken), s.now().UTC())
		if errors.Is(err, storage.ErrNotFound) {
			return ErrInvalidRefreshToken
		}
		if err != nil {
			return err
		}

		account, err := s.storage.GetAccountByID(ctx, accountID)
		if errors.Is(err, storage.ErrNotFound) {
			return ErrInvalidRefreshToken
		}
		if err != nil {
			return err
		}

		if !account.Active {
			return ErrInvalidRefreshToken
		}

		pair, err = s.issue(ctx, account)
		return err
	})

	if errors.Is(err, ErrInvalidRefreshToken) {
		s.recordOutcome("refresh", "failure")
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	s.recordOutcome("refresh", "success")
	return pair, nil
}

// Logout deletes the caller's refresh token. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, principal types.Principal, rawRefreshToken string) error {
	ctx, span := s.tracer.Start(ctx, "session.Service.Logout")
	defer span.End()

	n, err := s.storage.DeleteRefreshToken(ctx, HashToken(rawRefreshToken), principal.AccountID)
	if err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}

	if n > 0 {
		s.logger.Security().AuthnTokenRevoked(principal.AccountID)
	}

	return nil
}

// LogoutAll revokes every refresh token held by the caller.
func (s *Service) LogoutAll(ctx context.Context, principal types.Principal) error {
	ctx, span := s.tracer.Start(ctx, "session.Service.LogoutAll")
	defer span.End()

	n, err := s.storage.RevokeRefreshTokensByAccountID(ctx, principal.AccountID)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}

	s.logger.Infof("revoked %d refresh tokens for %s", n, principal.AccountID)
	s.logger.Security().AuthnTokenRevoked(principal.AccountID)

	return nil
}

func (s *Service) ForgotPassword(ctx context.Context, email string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "session.Service.ForgotPassword")
	defer span.End()

	account, err := s.storage.GetAccountByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up account: %w", err)
	}

	if !account.Active {
		return "", nil
	}

	raw, hash, err := newOpaqueToken()
	if err != nil {
		return "", err
	}

	expiresAt := s.now().UTC().Add(s.config.ResetTTL)

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if _, err := s.storage.DeletePasswordResetTokensByAccountID(ctx, account.ID); err != nil {
			return err
		}

		return s.storage.CreatePasswordResetToken(ctx, &types.PasswordResetToken{
			AccountID: account.ID,
			TokenHash: hash,
			ExpiresAt: expiresAt,
		})
	})
	if err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}

	if err := s.notifier.NotifyPasswordReset(ctx, account, raw, expiresAt); err != nil {
		s.logger.Errorf("failed to deliver password reset for %s: %v", account.ID, err)
	}

	s.recordOutcome("forgot_password", "issued")
	return raw, nil
}

// ResetPassword consumes a reset token, replaces the password hash and
// revokes every refresh token of the account.
func (s *Service) ResetPassword(ctx context.Context, rawResetToken, newPassword string) error {
	ctx, span := s.tracer.Start(ctx, "session.Service.ResetPassword")
	defer span.End()

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	var accountID string
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		accountID, err = s.storage.ConsumePasswordResetToken(ctx, HashToken(rawResetToken), s.now().UTC())
		if errors.Is(err, storage.ErrNotFound) {
			return ErrInvalidResetToken
		}
		if err != nil {
			return err
		}

		if err := s.storage.UpdatePasswordHash(ctx, accountID, passwordHash); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return ErrInvalidResetToken
			}
			return err
		}

		_, err = s.storage.RevokeRefreshTokensByAccountID(ctx, accountID)
		return err
	})

	if errors.Is(err, ErrInvalidResetToken) {
		s.recordOutcome("reset_password", "failure")
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}

	s.logger.Security().AuthnPasswordChange(accountID)
	s.recordOutcome("reset_password", "success")

	return nil
}

// issue stores a fresh refresh token for the account and signs an access
// token bound to the same identity.
func (s *Service) issue(ctx context.Context, account *types.Account) (*TokenPair, error) {
	raw, hash, err := newOpaqueToken()
	if err != nil {
		return nil, err
	}

	err = s.storage.CreateRefreshToken(ctx, &types.RefreshToken{
		AccountID: account.ID,
		TokenHash: hash,
		ExpiresAt: s.now().UTC().Add(s.config.RefreshTTL),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	principal := types.Principal{
		AccountID: account.ID,
		Role:      account.Role,
		PortalID:  account.PortalID,
	}

	accessToken, expiresAt, err := s.issuer.IssueAccessToken(ctx, principal)
	if err != nil {
		return nil, err
	}

	s.logger.Security().AuthnTokenCreated(account.ID)

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: raw,
		TokenType:    TokenTypeBearer,
		ExpiresIn:    int64(expiresAt.Sub(s.now().UTC()).Round(time.Second) / time.Second),
	}, nil
}

func (s *Service) recordOutcome(event, outcome string) {
	if err := s.monitor.IncAuthEventMetric(map[string]string{"event": event, "outcome": outcome}); err != nil {
		s.logger.Debugf("failed to record auth event: %v", err)
	}
}

func NewService(
	storage StorageInterface,
	tx TransactorInterface,
	issuer authentication.TokenIssuerInterface,
	hasher authentication.PasswordHasherInterface,
	notifier NotifierInterface,
	config Config,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	return &Service{
		storage:  storage,
		tx:       tx,
		issuer:   issuer,
		hasher:   hasher,
		notifier: notifier,
		config:   config,
		now:      time.Now,
		tracer:   tracer,
		monitor:  monitor,
		logger:   logger,
	}
}
