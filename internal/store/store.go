package store

import (
	"context"

	"github.com/hotpotspot/franchise-ledger/internal/chain"
	"github.com/hotpotspot/franchise-ledger/internal/domain"
	"github.com/hotpotspot/franchise-ledger/internal/ledger"
)

// Store persists the durable side of the ledger: periodic state
// snapshots and the append-only audit records
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// SaveSnapshot persists a full ledger snapshot
	SaveSnapshot(ctx context.Context, snap *ledger.Snapshot) error

	// LatestSnapshot returns the most recent snapshot, or nil when none exists
	LatestSnapshot(ctx context.Context) (*ledger.Snapshot, error)

	// SaveTransfer persists a balance transfer audit record
	SaveTransfer(ctx context.Context, rec domain.BalanceTransferRecord) error

	// Transfers returns the transfers touching a wallet, newest first
	Transfers(ctx context.Context, wallet string) ([]domain.BalanceTransferRecord, error)

	// SaveDistribution persists a redistribution round
	SaveDistribution(ctx context.Context, d domain.AnnualDistribution) error

	// Distributions returns all redistribution rounds, newest first
	Distributions(ctx context.Context) ([]domain.AnnualDistribution, error)

	// SaveBlock persists a sealed block
	SaveBlock(ctx context.Context, b *chain.Block) error

	// Blocks returns the persisted chain in index order
	Blocks(ctx context.Context) ([]*chain.Block, error)
}
