package ledger

import (
	"errors"
	"sort"
	"time"

	"github.com/hotpotspot/franchise-ledger/internal/chain"
	"github.com/hotpotspot/franchise-ledger/internal/domain"
)

// ErrTxNotWritable is returned by mutating accessors inside a View closure.
var ErrTxNotWritable = errors.New("ledger: transaction is read-only")

// Tx is a handle on ledger state, valid only inside the View or Update
// closure that produced it.
type Tx struct {
	ledger   *Ledger
	st       *state
	writable bool
}

// Config returns the network parameters.
func (tx *Tx) Config() Config {
	return tx.ledger.cfg
}

// Now returns the ledger clock's current time.
func (tx *Tx) Now() time.Time {
	return tx.ledger.clock.Now()
}

// Holder returns the holder for wallet.
func (tx *Tx) Holder(wallet string) (*Holder, error) {
	h, ok := tx.st.holders[wallet]
	if !ok {
		return nil, domain.ErrHolderNotFound
	}
	return h, nil
}

// HolderOrCreate returns the holder for wallet, registering a zero-balance
// holder when none exists.
func (tx *Tx) HolderOrCreate(wallet string) (*Holder, error) {
	if h, ok := tx.st.holders[wallet]; ok {
		return h, nil
	}
	if !tx.writable {
		return nil, ErrTxNotWritable
	}
	h := &Holder{Wallet: wallet, CreatedAt: tx.Now()}
	tx.st.holders[wallet] = h
	return h, nil
}

// Holders returns all holders ordered by wallet.
func (tx *Tx) Holders() []*Holder {
	out := make([]*Holder, 0, len(tx.st.holders))
	for _, h := range tx.st.holders {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Wallet < out[j].Wallet })
	return out
}

// CreditSecurity adds amount to wallet's security balance, creating the
// holder if needed.
func (tx *Tx) CreditSecurity(wallet string, amount domain.Amount) error {
	if !tx.writable {
		return ErrTxNotWritable
	}
	h, err := tx.HolderOrCreate(wallet)
	if err != nil {
		return err
	}
	sum, err := h.SecurityTokens.Add(amount)
	if err != nil {
		return err
	}
	h.SecurityTokens = sum
	return nil
}

// DebitSecurity subtracts amount from wallet's security balance.
func (tx *Tx) DebitSecurity(wallet string, amount domain.Amount) error {
	if !tx.writable {
		return ErrTxNotWritable
	}
	h, err := tx.Holder(wallet)
	if err != nil {
		return err
	}
	rest, err := h.SecurityTokens.Sub(amount)
	if err != nil {
		return err
	}
	h.SecurityTokens = rest
	return nil
}

// CreditUtility adds amount to wallet's utility balance, creating the
// holder if needed.
func (tx *Tx) CreditUtility(wallet string, amount domain.Amount) error {
	if !tx.writable {
		return ErrTxNotWritable
	}
	h, err := tx.HolderOrCreate(wallet)
	if err != nil {
		return err
	}
	sum, err := h.UtilityTokens.Add(amount)
	if err != nil {
		return err
	}
	h.UtilityTokens = sum
	return nil
}

// DebitUtility subtracts amount from wallet's utility balance.
func (tx *Tx) DebitUtility(wallet string, amount domain.Amount) error {
	if !tx.writable {
		return ErrTxNotWritable
	}
	h, err := tx.Holder(wallet)
	if err != nil {
		return err
	}
	rest, err := h.UtilityTokens.Sub(amount)
	if err != nil {
		return err
	}
	h.UtilityTokens = rest
	return nil
}

// TotalSecurity returns the total issued security-token supply.
func (tx *Tx) TotalSecurity() domain.Amount {
	var total domain.Amount
	for _, h := range tx.st.holders {
		total += h.SecurityTokens
	}
	return total
}

// TotalUtility returns the total issued utility-token supply.
func (tx *Tx) TotalUtility() domain.Amount {
	var total domain.Amount
	for _, h := range tx.st.holders {
		total += h.UtilityTokens
	}
	return total
}

// RegisterNode adds a franchise node. Node IDs are unique.
func (tx *Tx) RegisterNode(node *FranchiseNode) error {
	if !tx.writable {
		return ErrTxNotWritable
	}
	if _, ok := tx.st.nodes[node.NodeID]; ok {
		return domain.ErrNodeExists
	}
	tx.st.nodes[node.NodeID] = node
	return nil
}

// Node returns the franchise node with the given ID.
func (tx *Tx) Node(nodeID string) (*FranchiseNode, error) {
	n, ok := tx.st.nodes[nodeID]
	if !ok {
		return nil, domain.ErrNodeNotFound
	}
	return n, nil
}

// Nodes returns all registered nodes ordered by ID.
func (tx *Tx) Nodes() []*FranchiseNode {
	out := make([]*FranchiseNode, 0, len(tx.st.nodes))
	for _, n := range tx.st.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NodeID < out[j].NodeID })
	return out
}

// PutCheck stores a check under its ID.
func (tx *Tx) PutCheck(c *domain.Check) error {
	if !tx.writable {
		return ErrTxNotWritable
	}
	tx.st.checks[c.CheckID] = c
	return nil
}

// Check returns the check with the given ID.
func (tx *Tx) Check(checkID string) (*domain.Check, error) {
	c, ok := tx.st.checks[checkID]
	if !ok {
		return nil, domain.ErrCheckNotFound
	}
	return c, nil
}

// PutAccount stores a blockchain account under its address.
func (tx *Tx) PutAccount(a *domain.BlockchainAccount) error {
	if !tx.writable {
		return ErrTxNotWritable
	}
	tx.st.accounts[a.Address] = a
	return nil
}

// Account returns the blockchain account at address.
func (tx *Tx) Account(address string) (*domain.BlockchainAccount, error) {
	a, ok := tx.st.accounts[address]
	if !ok {
		return nil, domain.ErrHolderNotFound
	}
	return a, nil
}

// RegisterUser adds a phone-bound user. Phone numbers are unique.
func (tx *Tx) RegisterUser(u *domain.AuthorizedUser) error {
	if !tx.writable {
		return ErrTxNotWritable
	}
	if _, ok := tx.st.users[u.PhoneNumber]; ok {
		return domain.ErrPhoneAlreadyRegistered
	}
	tx.st.users[u.PhoneNumber] = u
	return nil
}

// User returns the user registered under phone.
func (tx *Tx) User(phone string) (*domain.AuthorizedUser, error) {
	u, ok := tx.st.users[phone]
	if !ok {
		return nil, domain.ErrPhoneNotRegistered
	}
	return u, nil
}

// PutUnclaimed stores an unclaimed-token record under its check ID.
func (tx *Tx) PutUnclaimed(rec *domain.UnclaimedTokenRecord) error {
	if !tx.writable {
		return ErrTxNotWritable
	}
	tx.st.unclaimed[rec.CheckID] = rec
	return nil
}

// Unclaimed returns the unclaimed-token record for checkID.
func (tx *Tx) Unclaimed(checkID string) (*domain.UnclaimedTokenRecord, error) {
	rec, ok := tx.st.unclaimed[checkID]
	if !ok {
		return nil, domain.ErrCheckNotFound
	}
	return rec, nil
}

// DeleteUnclaimed drops the unclaimed-token record for a claimed check.
func (tx *Tx) DeleteUnclaimed(checkID string) error {
	if !tx.writable {
		return ErrTxNotWritable
	}
	delete(tx.st.unclaimed, checkID)
	return nil
}

// UnclaimedRecords returns every unclaimed-token record, ordered by
// check ID.
func (tx *Tx) UnclaimedRecords() []*domain.UnclaimedTokenRecord {
	out := make([]*domain.UnclaimedTokenRecord, 0, len(tx.st.unclaimed))
	for _, rec := range tx.st.unclaimed {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckID < out[j].CheckID })
	return out
}

// ExpiredUnclaimed returns undistributed records past their expiry, ordered
// by check ID.
func (tx *Tx) ExpiredUnclaimed(now time.Time) []*domain.UnclaimedTokenRecord {
	var out []*domain.UnclaimedTokenRecord
	for _, rec := range tx.st.unclaimed {
		if !rec.IsDistributed && now.After(rec.ExpiresAt) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckID < out[j].CheckID })
	return out
}

// AppendTransfer records a completed or failed balance transfer.
func (tx *Tx) AppendTransfer(rec domain.BalanceTransferRecord) error {
	if !tx.writable {
		return ErrTxNotWritable
	}
	tx.st.transfers = append(tx.st.transfers, rec)
	return nil
}

// Transfers returns the full transfer history in insertion order.
func (tx *Tx) Transfers() []domain.BalanceTransferRecord {
	out := make([]domain.BalanceTransferRecord, len(tx.st.transfers))
	copy(out, tx.st.transfers)
	return out
}

// TransfersByWallet returns transfers where wallet is sender or
// recipient, newest first.
func (tx *Tx) TransfersByWallet(wallet string) []domain.BalanceTransferRecord {
	var out []domain.BalanceTransferRecord
	for i := len(tx.st.transfers) - 1; i >= 0; i-- {
		rec := tx.st.transfers[i]
		if rec.FromWallet == wallet || rec.ToWallet == wallet {
			out = append(out, rec)
		}
	}
	return out
}

// AppendAlert records a monitoring alert.
func (tx *Tx) AppendAlert(a domain.MonitoringAlert) error {
	if !tx.writable {
		return ErrTxNotWritable
	}
	tx.st.alerts = append(tx.st.alerts, a)
	return nil
}

// Alerts returns all recorded alerts in insertion order.
func (tx *Tx) Alerts() []domain.MonitoringAlert {
	out := make([]domain.MonitoringAlert, len(tx.st.alerts))
	copy(out, tx.st.alerts)
	return out
}

// AppendDistribution records a redistribution round.
func (tx *Tx) AppendDistribution(d domain.AnnualDistribution) error {
	if !tx.writable {
		return ErrTxNotWritable
	}
	tx.st.distributions = append(tx.st.distributions, d)
	return nil
}

// Distributions returns all redistribution rounds in insertion order.
func (tx *Tx) Distributions() []domain.AnnualDistribution {
	out := make([]domain.AnnualDistribution, len(tx.st.distributions))
	copy(out, tx.st.distributions)
	return out
}

// AppendPending queues a transaction for the next sealed block.
func (tx *Tx) AppendPending(t chain.Transaction) error {
	if !tx.writable {
		return ErrTxNotWritable
	}
	tx.st.pending = append(tx.st.pending, t)
	return nil
}

// Pending returns the queued transactions without draining them.
func (tx *Tx) Pending() []chain.Transaction {
	out := make([]chain.Transaction, len(tx.st.pending))
	copy(out, tx.st.pending)
	return out
}

// DrainPending removes and returns all queued transactions.
func (tx *Tx) DrainPending() ([]chain.Transaction, error) {
	if !tx.writable {
		return nil, ErrTxNotWritable
	}
	out := tx.st.pending
	tx.st.pending = nil
	return out, nil
}

// Head returns the latest sealed block.
func (tx *Tx) Head() *chain.Block {
	return tx.st.blocks[len(tx.st.blocks)-1]
}

// AppendBlock seals a block onto the chain after verifying its link and
// hash at the configured difficulty.
func (tx *Tx) AppendBlock(b *chain.Block) error {
	if !tx.writable {
		return ErrTxNotWritable
	}
	head := tx.Head()
	if b.PrevHash != head.Hash || b.Index != head.Index+1 {
		return domain.ErrInvalidBlock
	}
	if err := b.Verify(tx.ledger.cfg.Difficulty); err != nil {
		return err
	}
	tx.st.blocks = append(tx.st.blocks, b)
	return nil
}

// Blocks returns the full chain from genesis.
func (tx *Tx) Blocks() []*chain.Block {
	out := make([]*chain.Block, len(tx.st.blocks))
	copy(out, tx.st.blocks)
	return out
}
