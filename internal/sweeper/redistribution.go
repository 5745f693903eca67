package sweeper

import (
	"context"
	"errors"
	"math/bits"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hotpotspot/franchise-ledger/internal/chain"
	"github.com/hotpotspot/franchise-ledger/internal/domain"
	"github.com/hotpotspot/franchise-ledger/internal/ledger"
	"github.com/hotpotspot/franchise-ledger/internal/logger"
)

const redistributionPool = "unclaimed_pool"

// RedistributionSweeper periodically sweeps expired unclaimed checks and
// redistributes their balances across the holder set pro rata.
type RedistributionSweeper struct {
	ledger   *ledger.Ledger
	interval time.Duration

	running   atomic.Bool
	stopChan  chan struct{}
	stoppedCh chan struct{}
}

// NewRedistributionSweeper creates a redistribution sweeper that checks
// for expired checks at the given interval.
func NewRedistributionSweeper(l *ledger.Ledger, interval time.Duration) *RedistributionSweeper {
	return &RedistributionSweeper{
		ledger:    l,
		interval:  interval,
		stopChan:  make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Name returns the sweeper's name.
func (s *RedistributionSweeper) Name() string {
	return "redistribution"
}

// Start runs the sweep loop until the context is canceled or Stop is
// called.
func (s *RedistributionSweeper) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return errors.New("redistribution sweeper already running")
	}
	defer close(s.stoppedCh)

	logger.InfoCtx(ctx, "redistribution sweeper started",
		zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopChan:
			return nil
		case <-ticker.C:
			if _, err := s.Distribute(ctx); err != nil {
				if errors.Is(err, domain.ErrNothingToDistribute) {
					logger.DebugCtx(ctx, "no expired checks to redistribute")
					continue
				}
				logger.ErrorCtx(ctx, err, zap.String("sweeper", s.Name()))
			}
		}
	}
}

// Stop signals the loop to exit and waits for it to finish.
func (s *RedistributionSweeper) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	close(s.stopChan)

	select {
	case <-s.stoppedCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// proRata computes pool*balance/weight without overflowing uint64. The
// caller keeps balance <= weight, which bounds the quotient below 2^64.
func proRata(pool, balance, weight domain.Amount) domain.Amount {
	hi, lo := bits.Mul64(uint64(pool), uint64(balance))
	q, _ := bits.Div64(hi, lo, uint64(weight))
	return domain.Amount(q)
}

// Distribute sweeps every expired, undistributed check in one atomic pass.
// Expired balances leave their check accounts and spread across holders in
// proportion to current holdings, in both token classes. Shares clamped by
// a recipient's concentration cap re-spread among the remaining eligible
// holders; only what no holder can absorb goes to the charity fund, so the
// supply of each class is unchanged. Each record distributes exactly once.
func (s *RedistributionSweeper) Distribute(ctx context.Context) (*domain.AnnualDistribution, error) {
	cfg := s.ledger.Config()
	var round *domain.AnnualDistribution

	err := s.ledger.Update(func(tx *ledger.Tx) error {
		now := tx.Now()
		expired := tx.ExpiredUnclaimed(now)
		if len(expired) == 0 {
			return domain.ErrNothingToDistribute
		}

		// total is the per-class pool: each expired check holds its
		// amount in both classes
		var total domain.Amount
		for _, rec := range expired {
			check, err := tx.Check(rec.CheckID)
			if err != nil {
				return err
			}
			if err := tx.DebitSecurity(check.Account, rec.Amount); err != nil {
				return err
			}
			if err := tx.DebitUtility(check.Account, rec.Amount); err != nil {
				return err
			}
			if account, err := tx.Account(check.Account); err == nil {
				account.Status = domain.AccountStatusArchived
			}
			total += rec.Amount
		}

		supply := float64(tx.TotalSecurity()) + float64(tx.TotalUtility()) + 2*float64(total)
		nodeOwners := make(map[string]bool)
		for _, n := range tx.Nodes() {
			nodeOwners[n.OwnerWallet] = true
		}

		// recipients hold tokens and are neither check accounts nor the
		// charity fund
		type recipient struct {
			wallet  string
			balance domain.Amount
			granted domain.Amount
		}
		var recipients []recipient
		for _, h := range tx.Holders() {
			if h.IsCharity {
				continue
			}
			if _, err := tx.Account(h.Wallet); err == nil {
				continue
			}
			bal := h.SecurityTokens + h.UtilityTokens
			if bal == 0 {
				continue
			}
			recipients = append(recipients, recipient{wallet: h.Wallet, balance: bal})
		}
		if len(recipients) == 0 {
			return domain.ErrNothingToDistribute
		}

		capFor := func(wallet string) float64 {
			switch {
			case wallet == cfg.MainOwnerWallet:
				return cfg.MaxOwnerPercent
			case nodeOwners[wallet]:
				return cfg.MaxFranchisePercent
			default:
				return cfg.MaxCustomerPercent
			}
		}
		// headroom is the per-class amount a recipient can still absorb
		// before its combined balance hits the cap
		headroom := func(r *recipient) domain.Amount {
			maxBal := capFor(r.wallet) / 100 * supply
			if float64(r.balance) >= maxBal {
				return 0
			}
			return domain.Amount((maxBal - float64(r.balance)) / 2)
		}

		// each pass spreads what is left pro rata over the holders with
		// headroom; clamped excess rolls into the next pass
		remaining := total
		for remaining > 0 {
			var weight domain.Amount
			var eligible []*recipient
			for i := range recipients {
				r := &recipients[i]
				if headroom(r) == 0 {
					continue
				}
				eligible = append(eligible, r)
				weight += r.balance
			}
			if weight == 0 {
				break
			}

			pool := remaining
			progressed := false
			for _, r := range eligible {
				share := proRata(pool, r.balance, weight)
				if room := headroom(r); share > room {
					share = room
				}
				if share > remaining {
					share = remaining
				}
				if share == 0 {
					continue
				}
				r.granted += share
				r.balance += 2 * share
				remaining -= share
				progressed = true
			}
			if !progressed {
				break
			}
		}

		var entries []domain.TokenDistribution
		for i := range recipients {
			r := &recipients[i]
			if r.granted == 0 {
				continue
			}
			if err := tx.CreditSecurity(r.wallet, r.granted); err != nil {
				return err
			}
			if err := tx.CreditUtility(r.wallet, r.granted); err != nil {
				return err
			}

			rtype := domain.RecipientCustomer
			switch {
			case r.wallet == cfg.MainOwnerWallet:
				rtype = domain.RecipientMainOwner
			case nodeOwners[r.wallet]:
				rtype = domain.RecipientFranchiseOwner
			}
			entries = append(entries, domain.TokenDistribution{
				Recipient:     r.wallet,
				Amount:        r.granted,
				Percent:       r.granted.PercentOf(total),
				RecipientType: rtype,
			})

			if err := tx.AppendPending(chain.Transaction{
				ID:        uuid.NewString(),
				From:      redistributionPool,
				To:        r.wallet,
				Amount:    r.granted,
				Kind:      chain.TxKindRedistribution,
				Timestamp: now.Unix(),
			}); err != nil {
				return err
			}
		}

		// only the undistributable remainder goes to the charity fund
		sink := cfg.CharityWallet
		if sink == "" {
			sink = cfg.MainOwnerWallet
		}
		if remaining > 0 && sink != "" {
			if err := tx.CreditSecurity(sink, remaining); err != nil {
				return err
			}
			if err := tx.CreditUtility(sink, remaining); err != nil {
				return err
			}
			entries = append(entries, domain.TokenDistribution{
				Recipient:     sink,
				Amount:        remaining,
				Percent:       remaining.PercentOf(total),
				RecipientType: domain.RecipientCharityFund,
			})
			if err := tx.AppendPending(chain.Transaction{
				ID:        uuid.NewString(),
				From:      redistributionPool,
				To:        sink,
				Amount:    remaining,
				Kind:      chain.TxKindRedistribution,
				Timestamp: now.Unix(),
			}); err != nil {
				return err
			}
		}

		for _, rec := range expired {
			rec.IsDistributed = true
			t := now
			rec.DistributedAt = &t
		}

		round = &domain.AnnualDistribution{
			DistributionID: uuid.NewString(),
			Year:           now.Year(),
			TotalUnclaimed: total,
			Timestamp:      now,
			Distributions:  entries,
		}
		return tx.AppendDistribution(*round)
	})
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "unclaimed tokens redistributed",
		zap.String("distributionID", round.DistributionID),
		zap.Uint64("total", uint64(round.TotalUnclaimed)),
		zap.Int("recipients", len(round.Distributions)))
	return round, nil
}
