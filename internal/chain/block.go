package chain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gowebpki/jcs"

	"github.com/hotpotspot/franchise-ledger/internal/domain"
)

// Transaction is an immutable record of a single token movement.
type Transaction struct {
	ID        string        `json:"id"`
	From      string        `json:"from"`
	To        string        `json:"to"`
	Amount    domain.Amount `json:"amount"`
	Kind      string        `json:"kind"`
	Reference string        `json:"reference,omitempty"`
	Timestamp int64         `json:"timestamp"`
}

// Transaction kinds recorded on the chain.
const (
	TxKindIssuance       = "issuance"
	TxKindClaim          = "claim"
	TxKindRedistribution = "redistribution"
	TxKindReward         = "reward"
)

// Block is a sealed batch of transactions linked to its predecessor by hash.
type Block struct {
	Index        uint64        `json:"index"`
	Timestamp    int64         `json:"timestamp"`
	Transactions []Transaction `json:"transactions"`
	PrevHash     string        `json:"prev_hash"`
	Validator    string        `json:"validator"`
	Nonce        uint64        `json:"nonce"`
	Hash         string        `json:"hash"`
}

// NewBlock builds an unsealed block on top of prev. Call Mine to seal it.
func NewBlock(index uint64, txs []Transaction, prevHash, validator string, now time.Time) *Block {
	return &Block{
		Index:        index,
		Timestamp:    now.Unix(),
		Transactions: txs,
		PrevHash:     prevHash,
		Validator:    validator,
	}
}

// Genesis returns the first block of a chain. It carries no transactions
// and is sealed at difficulty zero.
func Genesis(now time.Time) (*Block, error) {
	b := NewBlock(0, nil, domain.GenesisPrevHash, "genesis", now)
	hash, err := b.ComputeHash()
	if err != nil {
		return nil, err
	}
	b.Hash = hash
	return b, nil
}

// ComputeHash returns the SHA-256 digest of the block header and body,
// excluding the Hash field itself. The payload is canonicalized so the
// digest is independent of map ordering and encoder quirks.
func (b *Block) ComputeHash() (string, error) {
	header := struct {
		Index        uint64        `json:"index"`
		Timestamp    int64         `json:"timestamp"`
		Transactions []Transaction `json:"transactions"`
		PrevHash     string        `json:"prev_hash"`
		Validator    string        `json:"validator"`
		Nonce        uint64        `json:"nonce"`
	}{b.Index, b.Timestamp, b.Transactions, b.PrevHash, b.Validator, b.Nonce}

	raw, err := json.Marshal(header)
	if err != nil {
		return "", fmt.Errorf("marshal block header: %w", err)
	}

	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("canonicalize block header: %w", err)
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// Mine increments the nonce until the block hash carries the required
// number of leading zero hex digits, then seals the block.
func (b *Block) Mine(difficulty int) error {
	prefix := strings.Repeat("0", difficulty)
	for {
		hash, err := b.ComputeHash()
		if err != nil {
			return err
		}
		if strings.HasPrefix(hash, prefix) {
			b.Hash = hash
			return nil
		}
		b.Nonce++
	}
}

// Verify checks that the stored hash matches the block contents and
// satisfies the difficulty target.
func (b *Block) Verify(difficulty int) error {
	hash, err := b.ComputeHash()
	if err != nil {
		return err
	}
	if hash != b.Hash {
		return fmt.Errorf("%w: hash mismatch at index %d", domain.ErrInvalidBlock, b.Index)
	}
	if !strings.HasPrefix(b.Hash, strings.Repeat("0", difficulty)) {
		return fmt.Errorf("%w: difficulty not met at index %d", domain.ErrInvalidBlock, b.Index)
	}
	return nil
}

// ValidateChain walks the chain and verifies every block's hash, its
// difficulty target and its link to the previous block. The genesis
// block is exempt from the difficulty check.
func ValidateChain(blocks []*Block, difficulty int) error {
	for i, b := range blocks {
		d := difficulty
		if i == 0 {
			d = 0
		}
		if err := b.Verify(d); err != nil {
			return err
		}
		if i > 0 && b.PrevHash != blocks[i-1].Hash {
			return fmt.Errorf("%w: broken link at index %d", domain.ErrInvalidBlock, b.Index)
		}
	}
	return nil
}
