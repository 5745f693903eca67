package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/hotpotspot/franchise-ledger/internal/chain"
	"github.com/hotpotspot/franchise-ledger/internal/domain"
	"github.com/hotpotspot/franchise-ledger/internal/ledger"
)

// SnapshotRow is one persisted ledger snapshot.
type SnapshotRow struct {
	ID        uint           `gorm:"primaryKey"`
	CreatedAt time.Time      `gorm:"index"`
	Payload   datatypes.JSON `gorm:"not null"`
}

// TableName returns the table name for snapshots.
func (SnapshotRow) TableName() string {
	return "ledger_snapshots"
}

// TransferRow is one persisted balance transfer.
type TransferRow struct {
	TransferID     string    `gorm:"primaryKey"`
	FromCheckID    string    `gorm:"index"`
	FromWallet     string    `gorm:"index"`
	ToWallet       string    `gorm:"index"`
	ToPhone        string
	SecurityTokens uint64
	UtilityTokens  uint64
	Status         string
	Timestamp      time.Time
}

// TableName returns the table name for transfers.
func (TransferRow) TableName() string {
	return "balance_transfers"
}

// DistributionRow is one persisted redistribution round.
type DistributionRow struct {
	DistributionID string         `gorm:"primaryKey"`
	Year           int            `gorm:"index"`
	TotalUnclaimed uint64
	Timestamp      time.Time
	Payload        datatypes.JSON `gorm:"not null"`
}

// TableName returns the table name for distributions.
func (DistributionRow) TableName() string {
	return "annual_distributions"
}

// BlockRow is one persisted block.
type BlockRow struct {
	Height    uint64         `gorm:"primaryKey;autoIncrement:false"`
	Hash      string         `gorm:"uniqueIndex"`
	PrevHash  string
	Validator string
	Timestamp int64
	Payload   datatypes.JSON `gorm:"not null"`
}

// TableName returns the table name for blocks.
func (BlockRow) TableName() string {
	return "blocks"
}

// PGStore implements Store on PostgreSQL.
type PGStore struct {
	db *gorm.DB
}

// NewPGStore opens a PostgreSQL connection and migrates the schema.
func NewPGStore(dsn string) (*PGStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.AutoMigrate(&SnapshotRow{}, &TransferRow{}, &DistributionRow{}, &BlockRow{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &PGStore{db: db}, nil
}

// SaveSnapshot persists a full ledger snapshot.
func (s *PGStore) SaveSnapshot(ctx context.Context, snap *ledger.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	row := SnapshotRow{CreatedAt: time.Now(), Payload: payload}
	return s.db.WithContext(ctx).Create(&row).Error
}

// LatestSnapshot returns the most recent snapshot, or nil when none exists.
func (s *PGStore) LatestSnapshot(ctx context.Context) (*ledger.Snapshot, error) {
	var row SnapshotRow
	err := s.db.WithContext(ctx).Order("id DESC").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snap ledger.Snapshot
	if err := json.Unmarshal(row.Payload, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// SaveTransfer persists a balance transfer audit record.
func (s *PGStore) SaveTransfer(ctx context.Context, rec domain.BalanceTransferRecord) error {
	row := TransferRow{
		TransferID:     rec.TransferID,
		FromCheckID:    rec.FromCheckID,
		FromWallet:     rec.FromWallet,
		ToWallet:       rec.ToWallet,
		ToPhone:        rec.ToPhone,
		SecurityTokens: uint64(rec.SecurityTokens),
		UtilityTokens:  uint64(rec.UtilityTokens),
		Status:         string(rec.Status),
		Timestamp:      rec.Timestamp,
	}
	return s.db.WithContext(ctx).Create(&row).Error
}

// Transfers returns the transfers touching a wallet, newest first.
func (s *PGStore) Transfers(ctx context.Context, wallet string) ([]domain.BalanceTransferRecord, error) {
	var rows []TransferRow
	err := s.db.WithContext(ctx).
		Where("from_wallet = ? OR to_wallet = ?", wallet, wallet).
		Order("timestamp DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.BalanceTransferRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.BalanceTransferRecord{
			TransferID:     row.TransferID,
			FromCheckID:    row.FromCheckID,
			FromWallet:     row.FromWallet,
			ToWallet:       row.ToWallet,
			ToPhone:        row.ToPhone,
			SecurityTokens: domain.Amount(row.SecurityTokens),
			UtilityTokens:  domain.Amount(row.UtilityTokens),
			Status:         domain.TransferStatus(row.Status),
			Timestamp:      row.Timestamp,
		})
	}
	return out, nil
}

// SaveDistribution persists a redistribution round.
func (s *PGStore) SaveDistribution(ctx context.Context, d domain.AnnualDistribution) error {
	payload, err := json.Marshal(d.Distributions)
	if err != nil {
		return fmt.Errorf("marshal distributions: %w", err)
	}

	row := DistributionRow{
		DistributionID: d.DistributionID,
		Year:           d.Year,
		TotalUnclaimed: uint64(d.TotalUnclaimed),
		Timestamp:      d.Timestamp,
		Payload:        payload,
	}
	return s.db.WithContext(ctx).Create(&row).Error
}

// Distributions returns all redistribution rounds, newest first.
func (s *PGStore) Distributions(ctx context.Context) ([]domain.AnnualDistribution, error) {
	var rows []DistributionRow
	if err := s.db.WithContext(ctx).Order("timestamp DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]domain.AnnualDistribution, 0, len(rows))
	for _, row := range rows {
		var entries []domain.TokenDistribution
		if err := json.Unmarshal(row.Payload, &entries); err != nil {
			return nil, fmt.Errorf("unmarshal distributions: %w", err)
		}
		out = append(out, domain.AnnualDistribution{
			DistributionID: row.DistributionID,
			Year:           row.Year,
			TotalUnclaimed: domain.Amount(row.TotalUnclaimed),
			Timestamp:      row.Timestamp,
			Distributions:  entries,
		})
	}
	return out, nil
}

// SaveBlock persists a sealed block.
func (s *PGStore) SaveBlock(ctx context.Context, b *chain.Block) error {
	payload, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal block: %w", err)
	}

	row := BlockRow{
		Height:    b.Index,
		Hash:      b.Hash,
		PrevHash:  b.PrevHash,
		Validator: b.Validator,
		Timestamp: b.Timestamp,
		Payload:   payload,
	}
	return s.db.WithContext(ctx).Create(&row).Error
}

// Blocks returns the persisted chain in index order.
func (s *PGStore) Blocks(ctx context.Context) ([]*chain.Block, error) {
	var rows []BlockRow
	if err := s.db.WithContext(ctx).Order("height ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]*chain.Block, 0, len(rows))
	for _, row := range rows {
		var b chain.Block
		if err := json.Unmarshal(row.Payload, &b); err != nil {
			return nil, fmt.Errorf("unmarshal block: %w", err)
		}
		out = append(out, &b)
	}
	return out, nil
}
