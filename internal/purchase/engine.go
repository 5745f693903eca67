package purchase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/alitto/pond/v2"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/hotpotspot/franchise-ledger/internal/adapter"
	"github.com/hotpotspot/franchise-ledger/internal/chain"
	"github.com/hotpotspot/franchise-ledger/internal/domain"
	"github.com/hotpotspot/franchise-ledger/internal/ledger"
	"github.com/hotpotspot/franchise-ledger/internal/logger"
	"github.com/hotpotspot/franchise-ledger/internal/monitor"
)

// POSAuthorizer reports whether a point-of-sale terminal may submit
// purchases.
//
//go:generate mockgen -source=engine.go -destination=../mocks/purchase.go -package=mocks -mock_names=POSAuthorizer=MockPOSAuthorizer,KitchenDispatcher=MockKitchenDispatcher
type POSAuthorizer interface {
	IsAuthorized(posID string) bool
}

// KitchenDispatcher delivers fulfillment orders to a node's kitchen.
type KitchenDispatcher interface {
	PublishKitchenOrder(ctx context.Context, order domain.KitchenOrder) error
}

// Request is one purchase submitted by a POS terminal.
type Request struct {
	NodeID string        `json:"node_id"`
	POSID  string        `json:"pos_id"`
	Amount domain.Amount `json:"amount"`
	Items  []string      `json:"items"`
}

// Result reports the issuance produced by one purchase.
type Result struct {
	Check         *domain.Check              `json:"check"`
	Distributions []domain.TokenDistribution `json:"distributions"`
	NodeID        string                     `json:"node_id"`
}

// Engine converts purchases into token issuance. Every purchase issues
// exactly the purchase amount in each token class across the split
// recipients; the customer share sits on the check's anonymous account
// until claimed or swept.
type Engine struct {
	ledger     *ledger.Ledger
	random     adapter.Random
	authorizer POSAuthorizer
	dispatcher KitchenDispatcher
	pool       pond.Pool
}

// NewEngine creates a purchase engine. dispatcher may be nil when kitchen
// routing is disabled.
func NewEngine(l *ledger.Ledger, random adapter.Random, authorizer POSAuthorizer, dispatcher KitchenDispatcher) *Engine {
	return &Engine{
		ledger:     l,
		random:     random,
		authorizer: authorizer,
		dispatcher: dispatcher,
		pool:       pond.NewPool(10),
	}
}

// Stop drains the kitchen dispatch pool.
func (e *Engine) Stop() {
	e.pool.StopAndWait()
}

// shares is one purchase's issuance split. Each share is a whole-point
// percentage of the purchase amount; truncation remainders go to the
// main owner.
type shares struct {
	owner     domain.Amount
	franchise domain.Amount
	charity   domain.Amount
	chef      domain.Amount
	customer  domain.Amount
}

func splitPurchase(cfg ledger.Config, node *ledger.FranchiseNode, amount domain.Amount) shares {
	var s shares
	s.charity = amount.Percent(cfg.CharitySharePct)

	if node.IsOwnerNode {
		s.owner = amount.Percent(cfg.OwnerSharePct)
		if node.ChefWallet != "" {
			s.chef = amount.Percent(cfg.ChefSharePct)
			s.customer = amount.Percent(cfg.CustomerSharePct - cfg.ChefSharePct)
		} else {
			s.customer = amount.Percent(cfg.CustomerSharePct)
		}
	} else {
		s.franchise = amount.Percent(cfg.FranchiseSharePct)
		s.owner = amount.Percent(cfg.NetworkSharePct)
		if node.ChefWallet != "" {
			s.chef = amount.Percent(cfg.ChefSharePct)
			s.customer = amount - s.franchise - s.owner - s.charity - s.chef
		} else {
			s.customer = amount - s.franchise - s.owner - s.charity
		}
	}

	// conservation: the whole amount is issued, remainder to the main owner
	issued := s.owner + s.franchise + s.charity + s.chef + s.customer
	s.owner += amount - issued
	return s
}

// deriveAccount returns the deterministic anonymous account address for a
// check and its activation code.
func deriveAccount(checkID, activationCode string) string {
	sum := sha256.Sum256([]byte(checkID + activationCode))
	return "0x" + hex.EncodeToString(sum[:])[:40]
}

// capExceeded reports whether issuing share to a holder in both token
// classes would push it past cap percent of the post-issuance combined
// supply.
func capExceeded(tx *ledger.Tx, wallet string, share, issuing domain.Amount, cap float64) bool {
	var balance domain.Amount
	if h, err := tx.Holder(wallet); err == nil {
		balance = h.SecurityTokens + h.UtilityTokens
	}
	supply := float64(tx.TotalSecurity()+tx.TotalUtility()) + 2*float64(issuing)
	if supply == 0 {
		return false
	}
	pct := (float64(balance) + 2*float64(share)) / supply * 100
	return pct > cap+domain.CapTolerance
}

// ProcessPurchase validates, splits and issues tokens for one purchase,
// creates the anonymous check for the customer share and queues the
// issuance transactions for the next block. On any validation failure the
// ledger is left untouched.
func (e *Engine) ProcessPurchase(ctx context.Context, req Request) (*Result, error) {
	if req.Amount == 0 {
		return nil, domain.ErrInvalidAmount
	}
	if e.authorizer != nil && !e.authorizer.IsAuthorized(req.POSID) {
		return nil, domain.ErrPOSNotWhitelisted
	}

	checkID := func() string {
		sum := sha256.Sum256([]byte(uuid.NewString()))
		return hex.EncodeToString(sum[:])
	}()
	activationCode, err := e.random.Code(6)
	if err != nil {
		return nil, fmt.Errorf("generate activation code: %w", err)
	}
	account := deriveAccount(checkID, activationCode)

	cfg := e.ledger.Config()
	var result *Result
	var order *domain.KitchenOrder

	err = e.ledger.Update(func(tx *ledger.Tx) error {
		node, err := tx.Node(req.NodeID)
		if err != nil {
			return err
		}

		split := splitPurchase(cfg, node, req.Amount)
		ownerWallet := cfg.MainOwnerWallet
		now := tx.Now()

		type issuance struct {
			wallet string
			share  domain.Amount
		}
		plan := []issuance{{ownerWallet, split.owner}}
		if !node.IsOwnerNode {
			plan = append(plan, issuance{node.OwnerWallet, split.franchise})
		}
		plan = append(plan, issuance{cfg.CharityWallet, split.charity})
		if node.ChefWallet != "" {
			plan = append(plan, issuance{node.ChefWallet, split.chef})
		}
		// the customer share sits on the check's anonymous account until claimed
		plan = append(plan, issuance{account, split.customer})

		// the ledger keeps partial writes on error, so every credit is
		// checked against current balances before the first one lands
		staged := make(map[string]domain.Amount, len(plan))
		for _, p := range plan {
			if p.share == 0 {
				continue
			}
			var sec, util domain.Amount
			if h, err := tx.Holder(p.wallet); err == nil {
				sec, util = h.SecurityTokens, h.UtilityTokens
			}
			total, err := staged[p.wallet].Add(p.share)
			if err != nil {
				return fmt.Errorf("issue to %s: %w", p.wallet, err)
			}
			staged[p.wallet] = total
			if _, err := sec.Add(total); err != nil {
				return fmt.Errorf("issue to %s: %w", p.wallet, err)
			}
			if _, err := util.Add(total); err != nil {
				return fmt.Errorf("issue to %s: %w", p.wallet, err)
			}
		}

		for _, p := range plan {
			if p.share == 0 {
				continue
			}
			// each share lands in both classes: security carries
			// ownership, utility carries the spendable balance
			if err := tx.CreditSecurity(p.wallet, p.share); err != nil {
				return err
			}
			if err := tx.CreditUtility(p.wallet, p.share); err != nil {
				return err
			}
			if err := tx.AppendPending(chain.Transaction{
				ID:        uuid.NewString(),
				From:      "network",
				To:        p.wallet,
				Amount:    p.share,
				Kind:      chain.TxKindIssuance,
				Reference: checkID,
				Timestamp: now.Unix(),
			}); err != nil {
				return err
			}
		}

		check := &domain.Check{
			CheckID:        checkID,
			QRCode:         fmt.Sprintf("%s|%s|%s", checkID, activationCode, account),
			ActivationCode: activationCode,
			Amount:         split.customer,
			Currency:       domain.Currency,
			Items:          req.Items,
			Account:        account,
			CreatedAt:      now,
		}
		if err := tx.PutCheck(check); err != nil {
			return err
		}
		if err := tx.PutAccount(domain.NewBlockchainAccount(account, now)); err != nil {
			return err
		}
		if err := tx.PutUnclaimed(&domain.UnclaimedTokenRecord{
			CheckID:   checkID,
			Amount:    split.customer,
			CreatedAt: now,
			ExpiresAt: now.Add(cfg.CheckTTL),
		}); err != nil {
			return err
		}

		standing := make(map[string]bool)
		for _, a := range tx.Alerts() {
			if !a.IsResolved {
				standing[string(a.Type)+"|"+a.Wallet] = true
			}
		}
		for _, alert := range monitor.CollectLimitAlerts(tx) {
			if standing[string(alert.Type)+"|"+alert.Wallet] {
				continue
			}
			if err := tx.AppendAlert(alert); err != nil {
				return err
			}
		}

		total := req.Amount
		result = &Result{
			Check:  check,
			NodeID: node.NodeID,
			Distributions: []domain.TokenDistribution{
				{Recipient: ownerWallet, Amount: split.owner, Percent: split.owner.PercentOf(total), RecipientType: domain.RecipientMainOwner},
				{Recipient: cfg.CharityWallet, Amount: split.charity, Percent: split.charity.PercentOf(total), RecipientType: domain.RecipientCharityFund},
			},
		}
		if !node.IsOwnerNode {
			result.Distributions = append(result.Distributions, domain.TokenDistribution{
				Recipient: node.OwnerWallet, Amount: split.franchise, Percent: split.franchise.PercentOf(total), RecipientType: domain.RecipientFranchiseOwner,
			})
		}
		result.Distributions = append(result.Distributions, domain.TokenDistribution{
			Recipient: account, Amount: split.customer, Percent: split.customer.PercentOf(total), RecipientType: domain.RecipientCustomer,
		})

		if node.ChefWallet != "" {
			order = &domain.KitchenOrder{
				OrderID:    ulid.Make().String(),
				NodeID:     node.NodeID,
				ChefWallet: node.ChefWallet,
				Items:      req.Items,
				Amount:     req.Amount,
				CreatedAt:  now,
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if order != nil && e.dispatcher != nil {
		e.dispatchOrder(ctx, *order)
	}

	logger.InfoCtx(ctx, "purchase processed",
		zap.String("nodeID", req.NodeID),
		zap.String("checkID", checkID),
		zap.Uint64("amount", uint64(req.Amount)))
	return result, nil
}

// dispatchOrder publishes the kitchen order off the request path with
// exponential backoff. Delivery is best-effort.
func (e *Engine) dispatchOrder(ctx context.Context, order domain.KitchenOrder) {
	e.pool.Submit(func() {
		op := func() error {
			return e.dispatcher.PublishKitchenOrder(context.Background(), order)
		}
		policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5)
		if err := backoff.Retry(op, policy); err != nil {
			logger.ErrorCtx(ctx, err,
				zap.String("orderID", order.OrderID),
				zap.String("nodeID", order.NodeID))
		}
	})
}

// EmitForInvestor issues tokens in both classes directly to an investor
// wallet, subject to the franchise concentration cap.
func (e *Engine) EmitForInvestor(ctx context.Context, wallet string, amount domain.Amount) error {
	if amount == 0 {
		return domain.ErrInvalidAmount
	}
	if !domain.IsValidWalletAddress(wallet) {
		return domain.ErrInvalidAddress
	}

	cfg := e.ledger.Config()
	err := e.ledger.Update(func(tx *ledger.Tx) error {
		if capExceeded(tx, wallet, amount, amount, cfg.MaxFranchisePercent) {
			return fmt.Errorf("%w: investor %s", domain.ErrOwnershipLimitExceeded, wallet)
		}
		var sec, util domain.Amount
		if h, err := tx.Holder(wallet); err == nil {
			sec, util = h.SecurityTokens, h.UtilityTokens
		}
		if _, err := sec.Add(amount); err != nil {
			return fmt.Errorf("emit to %s: %w", wallet, err)
		}
		if _, err := util.Add(amount); err != nil {
			return fmt.Errorf("emit to %s: %w", wallet, err)
		}
		if err := tx.CreditSecurity(wallet, amount); err != nil {
			return err
		}
		if err := tx.CreditUtility(wallet, amount); err != nil {
			return err
		}
		return tx.AppendPending(chain.Transaction{
			ID:        uuid.NewString(),
			From:      "network",
			To:        wallet,
			Amount:    amount,
			Kind:      chain.TxKindIssuance,
			Timestamp: tx.Now().Unix(),
		})
	})
	if err != nil {
		return err
	}

	logger.InfoCtx(ctx, "investor emission",
		zap.String("wallet", wallet),
		zap.Uint64("amount", uint64(amount)))
	return nil
}
