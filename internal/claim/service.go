package claim

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hotpotspot/franchise-ledger/internal/adapter"
	"github.com/hotpotspot/franchise-ledger/internal/chain"
	"github.com/hotpotspot/franchise-ledger/internal/domain"
	"github.com/hotpotspot/franchise-ledger/internal/ledger"
	"github.com/hotpotspot/franchise-ledger/internal/logger"
)

// Service handles phone registration and check claims. A check claim is
// exactly-once: every validation runs before the first state change, so a
// failed claim leaves no trace and a second attempt on the same check
// fails on its claimed flag.
type Service struct {
	ledger *ledger.Ledger
	random adapter.Random
}

// NewService creates a claim service.
func NewService(l *ledger.Ledger, random adapter.Random) *Service {
	return &Service{ledger: l, random: random}
}

// RegisterUserWithPhone binds a wallet to a phone number and issues a
// verification code. Phone numbers register at most once.
func (s *Service) RegisterUserWithPhone(ctx context.Context, phone, wallet string) (*domain.AuthorizedUser, error) {
	if phone == "" {
		return nil, domain.ErrPhoneNotRegistered
	}
	if !domain.IsValidWalletAddress(wallet) {
		return nil, domain.ErrInvalidAddress
	}

	code, err := s.random.Code(6)
	if err != nil {
		return nil, fmt.Errorf("generate verification code: %w", err)
	}

	var user *domain.AuthorizedUser
	err = s.ledger.Update(func(tx *ledger.Tx) error {
		user = &domain.AuthorizedUser{
			PhoneNumber:      phone,
			WalletAddress:    wallet,
			VerificationCode: code,
			CreatedAt:        tx.Now(),
		}
		return tx.RegisterUser(user)
	})
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "user registered", zap.String("wallet", wallet))
	return user, nil
}

// VerifyPhoneNumber marks a phone as verified when the code matches.
// Verifying an already verified phone is a no-op.
func (s *Service) VerifyPhoneNumber(ctx context.Context, phone, code string) error {
	return s.ledger.Update(func(tx *ledger.Tx) error {
		user, err := tx.User(phone)
		if err != nil {
			return err
		}
		if user.IsVerified {
			return nil
		}
		if user.VerificationCode != code {
			return domain.ErrInvalidVerificationCode
		}
		user.IsVerified = true
		return nil
	})
}

// ActivateAccount wakes a check's sleeping account and binds the
// claimant's identity to it. The activation code must match and the check
// must still be claimable.
func (s *Service) ActivateAccount(ctx context.Context, checkID, activationCode string, pd domain.PersonalData) error {
	cfg := s.ledger.Config()
	err := s.ledger.Update(func(tx *ledger.Tx) error {
		check, err := tx.Check(checkID)
		if err != nil {
			return err
		}
		if check.IsClaimed {
			return domain.ErrCheckAlreadyClaimed
		}
		if check.Expired(cfg.CheckTTL, tx.Now()) {
			return domain.ErrCheckExpired
		}
		if check.IsActivated {
			return domain.ErrCheckAlreadyActivated
		}
		if check.ActivationCode != activationCode {
			return domain.ErrInvalidActivationCode
		}

		account, err := tx.Account(check.Account)
		if err != nil {
			return err
		}
		if err := account.Activate(pd, tx.Now()); err != nil {
			return err
		}
		check.IsActivated = true
		return nil
	})
	if err != nil {
		return err
	}

	logger.InfoCtx(ctx, "account activated", zap.String("checkID", checkID))
	return nil
}

// transferID derives a stable identifier for a claim transfer.
func transferID() string {
	sum := sha256.Sum256([]byte(uuid.NewString()))
	return "TRANSFER_" + hex.EncodeToString(sum[:])[:16]
}

// claimCap selects the concentration cap for a claim recipient. The main
// owner and node owners keep their ownership caps even when claiming a
// customer check.
func claimCap(tx *ledger.Tx, cfg ledger.Config, wallet string) float64 {
	if wallet == cfg.MainOwnerWallet {
		return cfg.MaxOwnerPercent
	}
	for _, n := range tx.Nodes() {
		if n.OwnerWallet == wallet {
			return cfg.MaxFranchisePercent
		}
	}
	return cfg.MaxCustomerPercent
}

// TransferBalanceFromCheck claims a check's balance into the wallet bound
// to a verified phone number. The claim debits the check's anonymous
// account in both token classes and credits the claimant, leaving each
// class supply unchanged.
func (s *Service) TransferBalanceFromCheck(ctx context.Context, checkID, activationCode, phone string) (*domain.BalanceTransferRecord, error) {
	cfg := s.ledger.Config()
	var record *domain.BalanceTransferRecord

	err := s.ledger.Update(func(tx *ledger.Tx) error {
		check, err := tx.Check(checkID)
		if err != nil {
			return err
		}
		if check.IsClaimed {
			return domain.ErrCheckAlreadyClaimed
		}
		now := tx.Now()
		if check.Expired(cfg.CheckTTL, now) {
			return domain.ErrCheckExpired
		}
		if check.ActivationCode != activationCode {
			return domain.ErrInvalidActivationCode
		}

		user, err := tx.User(phone)
		if err != nil {
			return err
		}
		if !user.IsVerified {
			return domain.ErrPhoneNotVerified
		}

		var sec, util domain.Amount
		if h, err := tx.Holder(user.WalletAddress); err == nil {
			sec, util = h.SecurityTokens, h.UtilityTokens
		}
		limit := claimCap(tx, cfg, user.WalletAddress)
		exceeds := func(balance, supply domain.Amount) bool {
			if supply == 0 {
				return false
			}
			return float64(balance)/float64(supply)*100 > limit+domain.CapTolerance
		}
		// a claim moves tokens inside each class, so the cap is checked
		// per class against that class's unchanged supply
		if exceeds(sec+check.Amount, tx.TotalSecurity()) || exceeds(util+check.Amount, tx.TotalUtility()) {
			return fmt.Errorf("%w: claimant %s", domain.ErrOwnershipLimitExceeded, user.WalletAddress)
		}

		account, err := tx.Account(check.Account)
		if err != nil {
			return err
		}

		// validations done, mutate
		if err := tx.DebitSecurity(check.Account, check.Amount); err != nil {
			return err
		}
		if err := tx.CreditSecurity(user.WalletAddress, check.Amount); err != nil {
			return err
		}
		if err := tx.DebitUtility(check.Account, check.Amount); err != nil {
			return err
		}
		if err := tx.CreditUtility(user.WalletAddress, check.Amount); err != nil {
			return err
		}

		if account.Status == domain.AccountStatusSleep {
			pd := domain.PersonalData{Phone: phone, WalletAddress: user.WalletAddress}
			if err := account.Activate(pd, now); err != nil {
				return err
			}
		}
		account.Status = domain.AccountStatusArchived

		check.IsActivated = true
		check.IsClaimed = true
		check.PhoneNumber = phone
		user.LastLoginAt = &now

		if err := tx.DeleteUnclaimed(checkID); err != nil {
			return err
		}

		record = &domain.BalanceTransferRecord{
			TransferID:     transferID(),
			FromCheckID:    checkID,
			FromWallet:     check.Account,
			ToWallet:       user.WalletAddress,
			ToPhone:        phone,
			SecurityTokens: check.Amount,
			UtilityTokens:  check.Amount,
			Timestamp:      now,
			Status:         domain.TransferStatusCompleted,
		}
		if err := tx.AppendTransfer(*record); err != nil {
			return err
		}

		return tx.AppendPending(chain.Transaction{
			ID:        uuid.NewString(),
			From:      check.Account,
			To:        user.WalletAddress,
			Amount:    check.Amount,
			Kind:      chain.TxKindClaim,
			Reference: checkID,
			Timestamp: now.Unix(),
		})
	})
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "check claimed",
		zap.String("checkID", checkID),
		zap.String("transferID", record.TransferID))
	return record, nil
}

// BalanceTransferHistory returns the transfers touching a wallet, newest
// first.
func (s *Service) BalanceTransferHistory(wallet string) ([]domain.BalanceTransferRecord, error) {
	var out []domain.BalanceTransferRecord
	err := s.ledger.View(func(tx *ledger.Tx) error {
		out = tx.TransfersByWallet(wallet)
		return nil
	})
	return out, err
}
