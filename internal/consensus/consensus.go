package consensus

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hotpotspot/franchise-ledger/internal/adapter"
	"github.com/hotpotspot/franchise-ledger/internal/chain"
	"github.com/hotpotspot/franchise-ledger/internal/domain"
	"github.com/hotpotspot/franchise-ledger/internal/ledger"
	"github.com/hotpotspot/franchise-ledger/internal/logger"
)

// Validator is a staked block producer.
type Validator struct {
	Wallet       string        `json:"wallet"`
	Stake        domain.Amount `json:"stake"`
	BlocksSealed uint64        `json:"blocks_sealed"`
	RegisteredAt time.Time     `json:"registered_at"`
}

// Registry tracks the validator set. Selection is stake-weighted.
type Registry struct {
	mu         sync.RWMutex
	minStake   domain.Amount
	validators map[string]*Validator
}

// NewRegistry creates a validator registry with the given minimum stake.
func NewRegistry(minStake domain.Amount) *Registry {
	return &Registry{
		minStake:   minStake,
		validators: make(map[string]*Validator),
	}
}

// Register adds a validator. The stake must meet the minimum and a wallet
// registers at most once.
func (r *Registry) Register(wallet string, stake domain.Amount, now time.Time) error {
	if stake < r.minStake {
		return domain.ErrInsufficientStake
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.validators[wallet]; ok {
		return domain.ErrValidatorExists
	}
	r.validators[wallet] = &Validator{
		Wallet:       wallet,
		Stake:        stake,
		RegisteredAt: now,
	}
	return nil
}

// Validators returns the validator set ordered by wallet.
func (r *Registry) Validators() []Validator {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Validator, 0, len(r.validators))
	for _, v := range r.validators {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Wallet < out[j].Wallet })
	return out
}

// Select picks a validator with probability proportional to its stake.
func (r *Registry) Select(random adapter.Random) (*Validator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.validators) == 0 {
		return nil, domain.ErrNoValidators
	}

	wallets := make([]string, 0, len(r.validators))
	var total uint64
	for w, v := range r.validators {
		wallets = append(wallets, w)
		total += uint64(v.Stake)
	}
	sort.Strings(wallets)

	pick, err := random.Uint64n(total)
	if err != nil {
		return nil, err
	}
	for _, w := range wallets {
		v := r.validators[w]
		if pick < uint64(v.Stake) {
			selected := *v
			return &selected, nil
		}
		pick -= uint64(v.Stake)
	}
	// unreachable while stakes are positive
	selected := *r.validators[wallets[len(wallets)-1]]
	return &selected, nil
}

func (r *Registry) recordSealed(wallet string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.validators[wallet]; ok {
		v.BlocksSealed++
	}
}

// Sealer drains pending transactions into mined blocks.
type Sealer struct {
	ledger   *ledger.Ledger
	registry *Registry
	random   adapter.Random
}

// NewSealer creates a block sealer.
func NewSealer(l *ledger.Ledger, registry *Registry, random adapter.Random) *Sealer {
	return &Sealer{
		ledger:   l,
		registry: registry,
		random:   random,
	}
}

// MineBlock selects a validator, drains the pending queue into a block,
// mines it at the configured difficulty, puts the candidate through
// validator consensus and credits the block reward. It fails without side
// effects when there are no validators, nothing is pending or the set
// rejects the candidate.
func (s *Sealer) MineBlock(ctx context.Context) (*chain.Block, error) {
	validator, err := s.registry.Select(s.random)
	if err != nil {
		return nil, err
	}

	cfg := s.ledger.Config()
	var sealed *chain.Block

	err = s.ledger.Update(func(tx *ledger.Tx) error {
		pending := tx.Pending()
		if len(pending) == 0 {
			return domain.ErrNoPendingTransactions
		}

		now := tx.Now()
		reward := chain.Transaction{
			ID:        "REWARD_" + uuid.NewString(),
			From:      "network",
			To:        validator.Wallet,
			Amount:    cfg.BlockReward,
			Kind:      chain.TxKindReward,
			Timestamp: now.Unix(),
		}
		txs := append(pending, reward)

		head := tx.Head()
		block := chain.NewBlock(head.Index+1, txs, head.Hash, validator.Wallet, now)
		if err := block.Mine(cfg.Difficulty); err != nil {
			return err
		}
		// the candidate is built from a copy of the queue, so a rejected
		// block leaves the pending transactions in place
		if !s.ReachConsensus(block) {
			return domain.ErrConsensusNotReached
		}

		if _, err := tx.DrainPending(); err != nil {
			return err
		}
		if err := tx.AppendBlock(block); err != nil {
			return err
		}
		if err := tx.CreditSecurity(validator.Wallet, cfg.BlockReward); err != nil {
			return err
		}
		sealed = block
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.registry.recordSealed(validator.Wallet)

	logger.InfoCtx(ctx, "block sealed",
		zap.Uint64("index", sealed.Index),
		zap.String("validator", sealed.Validator),
		zap.Int("transactions", len(sealed.Transactions)))
	return sealed, nil
}

// ReachConsensus has every validator re-verify the block and reports
// whether at least two thirds of the set approve.
func (s *Sealer) ReachConsensus(block *chain.Block) bool {
	validators := s.registry.Validators()
	if len(validators) == 0 {
		return false
	}

	approvals := 0
	for range validators {
		if block.Verify(s.ledger.Config().Difficulty) == nil {
			approvals++
		}
	}
	return approvals*3 >= len(validators)*2
}
