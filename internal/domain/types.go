package domain

import (
	"math/bits"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Amount is a token quantity in subunits (1 token = 100 subunits).
// Balances only grow through issuance and move between holders through
// explicit transfers, so Amount arithmetic never wraps silently.
type Amount uint64

// Add returns a+b, failing with ErrAmountOverflow instead of wrapping.
func (a Amount) Add(b Amount) (Amount, error) {
	sum := a + b
	if sum < a {
		return 0, ErrAmountOverflow
	}
	return sum, nil
}

// Sub returns a-b, failing with ErrInsufficientBalance when b > a.
func (a Amount) Sub(b Amount) (Amount, error) {
	if b > a {
		return 0, ErrInsufficientBalance
	}
	return a - b, nil
}

// Percent returns the integer pct% share of a, truncating toward zero.
// Callers assign the truncation remainder deterministically. pct must not
// exceed 100; the 128-bit intermediate keeps the product exact for any a.
func (a Amount) Percent(pct uint64) Amount {
	hi, lo := bits.Mul64(uint64(a), pct)
	q, _ := bits.Div64(hi, lo, 100)
	return Amount(q)
}

// PercentOf returns a as a percentage of total. Zero total yields zero.
func (a Amount) PercentOf(total Amount) float64 {
	if total == 0 {
		return 0
	}
	return float64(a) / float64(total) * 100
}

// Role is a holder's tier, derived from its share of the security-token
// supply at query time. Roles are never stored as independent truth.
type Role string

const (
	RoleUnauthorized Role = "unauthorized"
	RoleStarter      Role = "starter"       // > 1% of total supply
	RoleMiddlePlayer Role = "middle_player" // > 5% of total supply
	RoleBigStack     Role = "big_stack"     // > 10% of total supply
	RoleMainOwner    Role = "main_owner"    // network owner, regardless of share
)

// RoleFromPercent maps a security-token supply share to a role tier.
func RoleFromPercent(percent float64) Role {
	switch {
	case percent > 10:
		return RoleBigStack
	case percent > 5:
		return RoleMiddlePlayer
	case percent > 1:
		return RoleStarter
	default:
		return RoleUnauthorized
	}
}

// TokenClass distinguishes the two issued token classes.
type TokenClass string

const (
	TokenClassSecurity TokenClass = "security"
	TokenClassUtility  TokenClass = "utility"
)

// AccountStatus is the lifecycle state of a check-derived blockchain account.
type AccountStatus string

const (
	AccountStatusSleep    AccountStatus = "sleep"
	AccountStatusActive   AccountStatus = "active"
	AccountStatusForSale  AccountStatus = "for_sale"
	AccountStatusArchived AccountStatus = "archived"
)

// PersonalData is the claimant identity bound to an account at activation.
type PersonalData struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	WalletAddress string `json:"wallet_address,omitempty"`
}

// BlockchainAccount is the anonymous account derived for a check. It starts
// in Sleep and activates exactly once with a matching activation code.
type BlockchainAccount struct {
	Address      string        `json:"address"`
	Status       AccountStatus `json:"status"`
	PersonalData *PersonalData `json:"personal_data,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	ActivatedAt  *time.Time    `json:"activated_at,omitempty"`
}

// NewBlockchainAccount creates a sleeping account for an address.
func NewBlockchainAccount(address string, now time.Time) *BlockchainAccount {
	return &BlockchainAccount{
		Address:   address,
		Status:    AccountStatusSleep,
		CreatedAt: now,
	}
}

// Activate transitions Sleep -> Active and binds the claimant's identity.
func (a *BlockchainAccount) Activate(pd PersonalData, now time.Time) error {
	if a.Status != AccountStatusSleep {
		return ErrAccountNotSleeping
	}
	a.Status = AccountStatusActive
	a.PersonalData = &pd
	a.ActivatedAt = &now
	return nil
}

// ListForSale transitions Active -> ForSale. Listing states do not revert.
func (a *BlockchainAccount) ListForSale() error {
	if a.Status != AccountStatusActive {
		return ErrAccountNotActive
	}
	a.Status = AccountStatusForSale
	return nil
}

// Check is an anonymous, single-claim holding of the customer share of one
// purchase. The issuing holder keeps the balance until the check is claimed.
type Check struct {
	CheckID        string    `json:"check_id"`
	QRCode         string    `json:"qr_code"`
	ActivationCode string    `json:"activation_code"`
	Amount         Amount    `json:"amount"`
	Currency       string    `json:"currency"`
	Items          []string  `json:"items"`
	Account        string    `json:"blockchain_account"`
	PhoneNumber    string    `json:"phone_number,omitempty"`
	IsActivated    bool      `json:"is_activated"`
	IsClaimed      bool      `json:"is_claimed"`
	CreatedAt      time.Time `json:"created_at"`
}

// Expired reports whether the check is past its claim TTL.
func (c *Check) Expired(ttl time.Duration, now time.Time) bool {
	return now.After(c.CreatedAt.Add(ttl))
}

// AuthorizedUser is a phone-bound identity. Phone numbers are globally
// unique; verification succeeds exactly once and is a no-op afterwards.
type AuthorizedUser struct {
	PhoneNumber      string     `json:"phone_number"`
	WalletAddress    string     `json:"wallet_address"`
	VerificationCode string     `json:"-"`
	IsVerified       bool       `json:"is_verified"`
	CreatedAt        time.Time  `json:"created_at"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`
}

// TransferStatus is the terminal state of a balance transfer.
type TransferStatus string

const (
	TransferStatusCompleted TransferStatus = "completed"
	TransferStatusFailed    TransferStatus = "failed"
	TransferStatusReversed  TransferStatus = "reversed"
)

// BalanceTransferRecord is an immutable audit entry for a check claim.
type BalanceTransferRecord struct {
	TransferID     string         `json:"transfer_id"`
	FromCheckID    string         `json:"from_check_id"`
	FromWallet     string         `json:"from_wallet"`
	ToWallet       string         `json:"to_wallet"`
	ToPhone        string         `json:"to_phone"`
	SecurityTokens Amount         `json:"security_tokens"`
	UtilityTokens  Amount         `json:"utility_tokens"`
	Timestamp      time.Time      `json:"timestamp"`
	Status         TransferStatus `json:"status"`
}

// UnclaimedTokenRecord tracks an anonymous check's customer share until it
// is either claimed or swept into a redistribution round after expiry.
type UnclaimedTokenRecord struct {
	CheckID       string     `json:"check_id"`
	Amount        Amount     `json:"amount"`
	CreatedAt     time.Time  `json:"created_at"`
	ExpiresAt     time.Time  `json:"expires_at"`
	IsDistributed bool       `json:"is_distributed"`
	DistributedAt *time.Time `json:"distributed_at,omitempty"`
}

// RecipientType classifies a redistribution recipient.
type RecipientType string

const (
	RecipientMainOwner      RecipientType = "main_owner"
	RecipientCharityFund    RecipientType = "charity_fund"
	RecipientFranchiseOwner RecipientType = "franchise_owner"
	RecipientCustomer       RecipientType = "customer"
)

// TokenDistribution is one holder's share of a redistribution round.
type TokenDistribution struct {
	Recipient     string        `json:"recipient"`
	Amount        Amount        `json:"amount"`
	Percent       float64       `json:"percent"`
	RecipientType RecipientType `json:"recipient_type"`
}

// AnnualDistribution records one redistribution round of expired unclaimed
// balances across the holder set.
type AnnualDistribution struct {
	DistributionID string              `json:"distribution_id"`
	Year           int                 `json:"year"`
	TotalUnclaimed Amount              `json:"total_unclaimed_tokens"`
	Timestamp      time.Time           `json:"timestamp"`
	Distributions  []TokenDistribution `json:"distributions"`
}

// OwnershipRisk flags a holder above its concentration cap for one token class.
type OwnershipRisk struct {
	Wallet     string     `json:"wallet"`
	Percent    float64    `json:"percent"`
	TokenClass TokenClass `json:"token_class"`
}

// NetworkSecurityReport is a point-in-time concentration snapshot.
type NetworkSecurityReport struct {
	TotalSecurityTokens Amount          `json:"total_security_tokens"`
	TotalUtilityTokens  Amount          `json:"total_utility_tokens"`
	MaxOwnerPercent     float64         `json:"max_owner_percent"`
	SecurityRisks       []OwnershipRisk `json:"security_risks"`
	UtilityRisks        []OwnershipRisk `json:"utility_risks"`
	IsSecure            bool            `json:"is_secure"`
}

// AlertType classifies monitoring alerts.
type AlertType string

const (
	AlertOwnerExceedsLimit     AlertType = "owner_exceeds_limit"
	AlertFranchiseExceedsLimit AlertType = "franchise_exceeds_limit"
	AlertCustomerExceedsLimit  AlertType = "customer_exceeds_limit"
	AlertTokenConcentration    AlertType = "token_concentration"
	AlertCharityFundLow        AlertType = "charity_fund_low"
)

// AlertSeverity orders monitoring alerts by urgency.
type AlertSeverity string

const (
	SeverityLow      AlertSeverity = "low"
	SeverityMedium   AlertSeverity = "medium"
	SeverityHigh     AlertSeverity = "high"
	SeverityCritical AlertSeverity = "critical"
)

// MonitoringAlert is a standing record of an observed limit breach.
type MonitoringAlert struct {
	AlertID    string        `json:"alert_id"`
	Type       AlertType     `json:"type"`
	Severity   AlertSeverity `json:"severity"`
	Message    string        `json:"message"`
	Wallet     string        `json:"wallet,omitempty"`
	Percent    float64       `json:"percent,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
	IsResolved bool          `json:"is_resolved"`
}

// KitchenOrder is the fulfillment order dispatched to a node's chef after a
// purchase. Dispatch is best-effort and never blocks the ledger.
type KitchenOrder struct {
	OrderID    string    `json:"order_id"`
	NodeID     string    `json:"node_id"`
	ChefWallet string    `json:"chef_wallet"`
	Items      []string  `json:"items"`
	Amount     Amount    `json:"amount"`
	CreatedAt  time.Time `json:"created_at"`
}

// IsValidWalletAddress reports whether s is a 0x-prefixed hex account address.
func IsValidWalletAddress(s string) bool {
	return common.IsHexAddress(s)
}
