package ledger

import (
	"sync"
	"time"

	"github.com/hotpotspot/franchise-ledger/internal/adapter"
	"github.com/hotpotspot/franchise-ledger/internal/chain"
	"github.com/hotpotspot/franchise-ledger/internal/domain"
)

// Config carries the network's economic parameters. Percentages are whole
// points and each split branch must sum to 100.
type Config struct {
	MainOwnerWallet string
	CharityWallet   string

	// Owner-node purchase split.
	OwnerSharePct    uint64
	CharitySharePct  uint64
	CustomerSharePct uint64

	// Franchise-node purchase split. NetworkSharePct goes to the main owner.
	FranchiseSharePct uint64
	NetworkSharePct   uint64

	// Chef share when a node has a chef wallet. It is carved out of the
	// customer share on owner nodes and out of both the network and
	// customer shares on franchise nodes.
	ChefSharePct uint64

	// Concentration caps enforced on issuance and claims.
	MaxOwnerPercent     float64
	MaxFranchisePercent float64
	MaxCustomerPercent  float64

	// Proof-of-stake parameters.
	Difficulty  int
	MinStake    domain.Amount
	BlockReward domain.Amount

	// Unclaimed checks expire after this TTL and become redistributable.
	CheckTTL time.Duration
}

// DefaultConfig returns the canonical network parameters.
func DefaultConfig() Config {
	return Config{
		OwnerSharePct:       48,
		CharitySharePct:     3,
		CustomerSharePct:    49,
		FranchiseSharePct:   25,
		NetworkSharePct:     24,
		ChefSharePct:        24,
		MaxOwnerPercent:     48,
		MaxFranchisePercent: 24,
		MaxCustomerPercent:  49,
		Difficulty:          4,
		MinStake:            10 * domain.TokenScale,
		BlockReward:         5 * domain.TokenScale,
		CheckTTL:            365 * 24 * time.Hour,
	}
}

// Holder is one wallet's position in both token classes.
type Holder struct {
	Wallet         string        `json:"wallet"`
	SecurityTokens domain.Amount `json:"security_tokens"`
	UtilityTokens  domain.Amount `json:"utility_tokens"`
	IsMainOwner    bool          `json:"is_main_owner"`
	IsCharity      bool          `json:"is_charity"`
	CreatedAt      time.Time     `json:"created_at"`
}

// FranchiseNode is a registered point of sale. The chef wallet is optional;
// nodes without one route the chef share to the customer instead.
type FranchiseNode struct {
	NodeID      string    `json:"node_id"`
	Name        string    `json:"name"`
	OwnerWallet string    `json:"owner_wallet"`
	ChefWallet  string    `json:"chef_wallet,omitempty"`
	Location    string    `json:"location,omitempty"`
	IsOwnerNode bool      `json:"is_owner_node"`
	CreatedAt   time.Time `json:"created_at"`
}

type state struct {
	holders       map[string]*Holder
	nodes         map[string]*FranchiseNode
	checks        map[string]*domain.Check
	accounts      map[string]*domain.BlockchainAccount
	users         map[string]*domain.AuthorizedUser
	unclaimed     map[string]*domain.UnclaimedTokenRecord
	transfers     []domain.BalanceTransferRecord
	alerts        []domain.MonitoringAlert
	distributions []domain.AnnualDistribution
	pending       []chain.Transaction
	blocks        []*chain.Block
}

func newState() *state {
	return &state{
		holders:   make(map[string]*Holder),
		nodes:     make(map[string]*FranchiseNode),
		checks:    make(map[string]*domain.Check),
		accounts:  make(map[string]*domain.BlockchainAccount),
		users:     make(map[string]*domain.AuthorizedUser),
		unclaimed: make(map[string]*domain.UnclaimedTokenRecord),
	}
}

// Ledger is the authoritative in-memory state of the network. All reads and
// writes go through View and Update closures; Update holds the single writer
// lock for the whole closure, so a multi-step mutation is atomic as long as
// its validations run before its first write.
type Ledger struct {
	mu    sync.RWMutex
	cfg   Config
	clock adapter.Clock
	st    *state
}

// New creates a ledger with a mined genesis block and the main owner and
// charity holders pre-registered.
func New(cfg Config, clock adapter.Clock) (*Ledger, error) {
	l := &Ledger{
		cfg:   cfg,
		clock: clock,
		st:    newState(),
	}

	now := clock.Now()
	genesis, err := chain.Genesis(now)
	if err != nil {
		return nil, err
	}
	l.st.blocks = []*chain.Block{genesis}

	if cfg.MainOwnerWallet != "" {
		l.st.holders[cfg.MainOwnerWallet] = &Holder{
			Wallet:      cfg.MainOwnerWallet,
			IsMainOwner: true,
			CreatedAt:   now,
		}
	}
	if cfg.CharityWallet != "" {
		l.st.holders[cfg.CharityWallet] = &Holder{
			Wallet:    cfg.CharityWallet,
			IsCharity: true,
			CreatedAt: now,
		}
	}

	return l, nil
}

// Config returns the network parameters.
func (l *Ledger) Config() Config {
	return l.cfg
}

// View runs fn with a read transaction. fn must not mutate state.
func (l *Ledger) View(fn func(tx *Tx) error) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return fn(&Tx{ledger: l, st: l.st, writable: false})
}

// Update runs fn with the writer lock held. State changes made before an
// error returns are kept, so fn must validate before it mutates.
func (l *Ledger) Update(fn func(tx *Tx) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return fn(&Tx{ledger: l, st: l.st, writable: true})
}
