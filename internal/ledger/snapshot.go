package ledger

import (
	"github.com/hotpotspot/franchise-ledger/internal/chain"
	"github.com/hotpotspot/franchise-ledger/internal/domain"
)

// Snapshot is a serializable copy of the full ledger state, used for
// durable checkpoints and recovery.
type Snapshot struct {
	Holders       []Holder                       `json:"holders"`
	Nodes         []FranchiseNode                `json:"nodes"`
	Checks        []domain.Check                 `json:"checks"`
	Accounts      []domain.BlockchainAccount     `json:"accounts"`
	Users         []domain.AuthorizedUser        `json:"users"`
	Unclaimed     []domain.UnclaimedTokenRecord  `json:"unclaimed"`
	Transfers     []domain.BalanceTransferRecord `json:"transfers"`
	Alerts        []domain.MonitoringAlert       `json:"alerts"`
	Distributions []domain.AnnualDistribution    `json:"distributions"`
	Pending       []chain.Transaction            `json:"pending"`
	Blocks        []*chain.Block                 `json:"blocks"`
}

// Snapshot copies the current state under the read lock.
func (l *Ledger) Snapshot() *Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	snap := &Snapshot{}
	for _, h := range l.st.holders {
		snap.Holders = append(snap.Holders, *h)
	}
	for _, n := range l.st.nodes {
		snap.Nodes = append(snap.Nodes, *n)
	}
	for _, c := range l.st.checks {
		snap.Checks = append(snap.Checks, *c)
	}
	for _, a := range l.st.accounts {
		snap.Accounts = append(snap.Accounts, *a)
	}
	for _, u := range l.st.users {
		snap.Users = append(snap.Users, *u)
	}
	for _, rec := range l.st.unclaimed {
		snap.Unclaimed = append(snap.Unclaimed, *rec)
	}
	snap.Transfers = append(snap.Transfers, l.st.transfers...)
	snap.Alerts = append(snap.Alerts, l.st.alerts...)
	snap.Distributions = append(snap.Distributions, l.st.distributions...)
	snap.Pending = append(snap.Pending, l.st.pending...)
	snap.Blocks = append(snap.Blocks, l.st.blocks...)
	return snap
}

// Restore replaces the current state with the snapshot's contents.
func (l *Ledger) Restore(snap *Snapshot) error {
	if len(snap.Blocks) == 0 {
		return domain.ErrInvalidBlock
	}
	if err := chain.ValidateChain(snap.Blocks, l.cfg.Difficulty); err != nil {
		return err
	}

	st := newState()
	for i := range snap.Holders {
		h := snap.Holders[i]
		st.holders[h.Wallet] = &h
	}
	for i := range snap.Nodes {
		n := snap.Nodes[i]
		st.nodes[n.NodeID] = &n
	}
	for i := range snap.Checks {
		c := snap.Checks[i]
		st.checks[c.CheckID] = &c
	}
	for i := range snap.Accounts {
		a := snap.Accounts[i]
		st.accounts[a.Address] = &a
	}
	for i := range snap.Users {
		u := snap.Users[i]
		st.users[u.PhoneNumber] = &u
	}
	for i := range snap.Unclaimed {
		rec := snap.Unclaimed[i]
		st.unclaimed[rec.CheckID] = &rec
	}
	st.transfers = append(st.transfers, snap.Transfers...)
	st.alerts = append(st.alerts, snap.Alerts...)
	st.distributions = append(st.distributions, snap.Distributions...)
	st.pending = append(st.pending, snap.Pending...)
	st.blocks = append(st.blocks, snap.Blocks...)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.st = st
	return nil
}
