package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "github.com/hotpotspot/franchise-ledger/internal/api/shared/errors"
	"github.com/hotpotspot/franchise-ledger/internal/chain"
	"github.com/hotpotspot/franchise-ledger/internal/claim"
	"github.com/hotpotspot/franchise-ledger/internal/consensus"
	"github.com/hotpotspot/franchise-ledger/internal/domain"
	"github.com/hotpotspot/franchise-ledger/internal/ledger"
	"github.com/hotpotspot/franchise-ledger/internal/logger"
	"github.com/hotpotspot/franchise-ledger/internal/monitor"
	"github.com/hotpotspot/franchise-ledger/internal/purchase"
	"github.com/hotpotspot/franchise-ledger/internal/registry"
	"github.com/hotpotspot/franchise-ledger/internal/sweeper"
)

// Handler serves the ledger REST API.
type Handler struct {
	ledger    *ledger.Ledger
	purchases *purchase.Engine
	claims    *claim.Service
	monitor   *monitor.Monitor
	sealer    *consensus.Sealer
	registry  *consensus.Registry
	sweep     *sweeper.RedistributionSweeper
	whitelist *registry.POSWhitelist
}

// NewHandler creates a REST handler.
func NewHandler(
	l *ledger.Ledger,
	purchases *purchase.Engine,
	claims *claim.Service,
	mon *monitor.Monitor,
	sealer *consensus.Sealer,
	validators *consensus.Registry,
	sweep *sweeper.RedistributionSweeper,
	whitelist *registry.POSWhitelist,
) *Handler {
	return &Handler{
		ledger:    l,
		purchases: purchases,
		claims:    claims,
		monitor:   mon,
		sealer:    sealer,
		registry:  validators,
		sweep:     sweep,
		whitelist: whitelist,
	}
}

func (h *Handler) abortWithError(c *gin.Context, err error) {
	status, envelope := apierrors.StatusAndEnvelope(err)
	if status == http.StatusInternalServerError {
		logger.ErrorCtx(c.Request.Context(), err, zap.String("path", c.Request.URL.Path))
	}
	c.AbortWithStatusJSON(status, envelope)
}

// RegisterNodeRequest is the payload for node registration.
type RegisterNodeRequest struct {
	NodeID      string `json:"node_id" binding:"required"`
	Name        string `json:"name"`
	OwnerWallet string `json:"owner_wallet" binding:"required"`
	ChefWallet  string `json:"chef_wallet"`
	Location    string `json:"location"`
	IsOwnerNode bool   `json:"is_owner_node"`
}

// RegisterNode adds a franchise node to the network.
func (h *Handler) RegisterNode(c *gin.Context) {
	var req RegisterNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, apierrors.NewBadRequestError("invalid request body", err.Error()))
		return
	}
	if !domain.IsValidWalletAddress(req.OwnerWallet) {
		h.abortWithError(c, domain.ErrInvalidAddress)
		return
	}
	if req.ChefWallet != "" && !domain.IsValidWalletAddress(req.ChefWallet) {
		h.abortWithError(c, domain.ErrInvalidAddress)
		return
	}

	var node *ledger.FranchiseNode
	err := h.ledger.Update(func(tx *ledger.Tx) error {
		node = &ledger.FranchiseNode{
			NodeID:      req.NodeID,
			Name:        req.Name,
			OwnerWallet: req.OwnerWallet,
			ChefWallet:  req.ChefWallet,
			Location:    req.Location,
			IsOwnerNode: req.IsOwnerNode,
			CreatedAt:   tx.Now(),
		}
		if _, err := tx.HolderOrCreate(req.OwnerWallet); err != nil {
			return err
		}
		return tx.RegisterNode(node)
	})
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, node)
}

// ListNodes returns all registered nodes.
func (h *Handler) ListNodes(c *gin.Context) {
	var nodes []*ledger.FranchiseNode
	_ = h.ledger.View(func(tx *ledger.Tx) error {
		nodes = tx.Nodes()
		return nil
	})
	c.JSON(http.StatusOK, gin.H{"nodes": nodes})
}

// ProcessPurchase converts a purchase into token issuance and a check.
func (h *Handler) ProcessPurchase(c *gin.Context) {
	var req purchase.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, apierrors.NewBadRequestError("invalid request body", err.Error()))
		return
	}

	result, err := h.purchases.ProcessPurchase(c.Request.Context(), req)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// EmitRequest is the payload for a direct investor emission.
type EmitRequest struct {
	Wallet string `json:"wallet" binding:"required"`
	Amount uint64 `json:"amount" binding:"required"`
}

// EmitForInvestor issues security tokens to an investor wallet.
func (h *Handler) EmitForInvestor(c *gin.Context) {
	var req EmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, apierrors.NewBadRequestError("invalid request body", err.Error()))
		return
	}

	if err := h.purchases.EmitForInvestor(c.Request.Context(), req.Wallet, domain.Amount(req.Amount)); err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"wallet": req.Wallet, "amount": req.Amount})
}

// RegisterUserRequest is the payload for phone registration.
type RegisterUserRequest struct {
	PhoneNumber   string `json:"phone_number" binding:"required"`
	WalletAddress string `json:"wallet_address" binding:"required"`
}

// RegisterUser binds a wallet to a phone number.
func (h *Handler) RegisterUser(c *gin.Context) {
	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, apierrors.NewBadRequestError("invalid request body", err.Error()))
		return
	}

	user, err := h.claims.RegisterUserWithPhone(c.Request.Context(), req.PhoneNumber, req.WalletAddress)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	// the verification code travels out of band, never in the response
	c.JSON(http.StatusCreated, user)
}

// VerifyPhoneRequest is the payload for phone verification.
type VerifyPhoneRequest struct {
	PhoneNumber      string `json:"phone_number" binding:"required"`
	VerificationCode string `json:"verification_code" binding:"required"`
}

// VerifyPhone confirms a phone's verification code.
func (h *Handler) VerifyPhone(c *gin.Context) {
	var req VerifyPhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, apierrors.NewBadRequestError("invalid request body", err.Error()))
		return
	}

	if err := h.claims.VerifyPhoneNumber(c.Request.Context(), req.PhoneNumber, req.VerificationCode); err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"phone_number": req.PhoneNumber, "verified": true})
}

// ActivateAccountRequest is the payload for account activation.
type ActivateAccountRequest struct {
	CheckID        string              `json:"check_id" binding:"required"`
	ActivationCode string              `json:"activation_code" binding:"required"`
	PersonalData   domain.PersonalData `json:"personal_data"`
}

// ActivateAccount wakes a check's sleeping account.
func (h *Handler) ActivateAccount(c *gin.Context) {
	var req ActivateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, apierrors.NewBadRequestError("invalid request body", err.Error()))
		return
	}

	if err := h.claims.ActivateAccount(c.Request.Context(), req.CheckID, req.ActivationCode, req.PersonalData); err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"check_id": req.CheckID, "activated": true})
}

// ClaimRequest is the payload for a check claim.
type ClaimRequest struct {
	CheckID        string `json:"check_id" binding:"required"`
	ActivationCode string `json:"activation_code" binding:"required"`
	PhoneNumber    string `json:"phone_number" binding:"required"`
}

// ClaimCheck transfers a check's balance to its claimant.
func (h *Handler) ClaimCheck(c *gin.Context) {
	var req ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, apierrors.NewBadRequestError("invalid request body", err.Error()))
		return
	}

	record, err := h.claims.TransferBalanceFromCheck(c.Request.Context(), req.CheckID, req.ActivationCode, req.PhoneNumber)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// TransferHistory returns the transfers touching a wallet.
func (h *Handler) TransferHistory(c *gin.Context) {
	wallet := c.Param("wallet")
	history, err := h.claims.BalanceTransferHistory(wallet)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wallet": wallet, "transfers": history})
}

// GetHolder returns one wallet's balances and derived role.
func (h *Handler) GetHolder(c *gin.Context) {
	wallet := c.Param("wallet")

	var holder *ledger.Holder
	err := h.ledger.View(func(tx *ledger.Tx) error {
		found, err := tx.Holder(wallet)
		if err != nil {
			return err
		}
		holder = found
		return nil
	})
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	role, err := h.monitor.RoleOf(wallet)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"holder": holder, "role": role})
}

// GetCheck returns a check's public status. The activation code never
// leaves the QR slip, so it is masked here.
func (h *Handler) GetCheck(c *gin.Context) {
	checkID := c.Param("checkID")

	var out gin.H
	err := h.ledger.View(func(tx *ledger.Tx) error {
		check, err := tx.Check(checkID)
		if err != nil {
			return err
		}
		out = gin.H{
			"check_id":     check.CheckID,
			"amount":       check.Amount,
			"currency":     check.Currency,
			"is_activated": check.IsActivated,
			"is_claimed":   check.IsClaimed,
			"created_at":   check.CreatedAt,
		}
		return nil
	})
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// SecurityReport returns the current concentration snapshot.
func (h *Handler) SecurityReport(c *gin.Context) {
	report, err := h.monitor.Report()
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ListAlerts returns the alert history.
func (h *Handler) ListAlerts(c *gin.Context) {
	alerts, err := h.monitor.Alerts()
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

// RegisterValidatorRequest is the payload for validator registration.
type RegisterValidatorRequest struct {
	Wallet string `json:"wallet" binding:"required"`
	Stake  uint64 `json:"stake" binding:"required"`
}

// RegisterValidator adds a staked validator.
func (h *Handler) RegisterValidator(c *gin.Context) {
	var req RegisterValidatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, apierrors.NewBadRequestError("invalid request body", err.Error()))
		return
	}
	if !domain.IsValidWalletAddress(req.Wallet) {
		h.abortWithError(c, domain.ErrInvalidAddress)
		return
	}

	err := h.ledger.View(func(tx *ledger.Tx) error {
		return h.registry.Register(req.Wallet, domain.Amount(req.Stake), tx.Now())
	})
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"wallet": req.Wallet, "stake": req.Stake})
}

// ListValidators returns the validator set.
func (h *Handler) ListValidators(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"validators": h.registry.Validators()})
}

// SealBlock drains pending transactions into a mined block.
func (h *Handler) SealBlock(c *gin.Context) {
	block, err := h.sealer.MineBlock(c.Request.Context())
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, block)
}

// ListBlocks returns the chain from genesis.
func (h *Handler) ListBlocks(c *gin.Context) {
	var out []interface{}
	_ = h.ledger.View(func(tx *ledger.Tx) error {
		for _, b := range tx.Blocks() {
			out = append(out, b)
		}
		return nil
	})
	c.JSON(http.StatusOK, gin.H{"blocks": out})
}

// ChainValidity re-verifies every sealed block and reports the result.
func (h *Handler) ChainValidity(c *gin.Context) {
	var blocks []*chain.Block
	var difficulty int
	_ = h.ledger.View(func(tx *ledger.Tx) error {
		blocks = tx.Blocks()
		difficulty = tx.Config().Difficulty
		return nil
	})

	if err := chain.ValidateChain(blocks, difficulty); err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "height": len(blocks), "reason": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true, "height": len(blocks)})
}

// ListUnclaimed returns unclaimed-token records, oldest check first. A
// limit query parameter caps the result.
func (h *Handler) ListUnclaimed(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit < 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, apierrors.NewBadRequestError("invalid limit", c.Query("limit")))
		return
	}

	var out []domain.UnclaimedTokenRecord
	_ = h.ledger.View(func(tx *ledger.Tx) error {
		for _, rec := range tx.UnclaimedRecords() {
			out = append(out, *rec)
			if limit > 0 && len(out) == limit {
				break
			}
		}
		return nil
	})
	c.JSON(http.StatusOK, gin.H{"unclaimed": out})
}

// RunDistribution triggers a redistribution round immediately.
func (h *Handler) RunDistribution(c *gin.Context) {
	round, err := h.sweep.Distribute(c.Request.Context())
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, round)
}

// ListDistributions returns past redistribution rounds.
func (h *Handler) ListDistributions(c *gin.Context) {
	var out []domain.AnnualDistribution
	_ = h.ledger.View(func(tx *ledger.Tx) error {
		out = tx.Distributions()
		return nil
	})
	c.JSON(http.StatusOK, gin.H{"distributions": out})
}

// AddPOSTerminal authorizes a POS terminal.
func (h *Handler) AddPOSTerminal(c *gin.Context) {
	h.whitelist.Add(c.Param("posID"))
	c.JSON(http.StatusCreated, gin.H{"pos_id": c.Param("posID")})
}

// RemovePOSTerminal revokes a POS terminal.
func (h *Handler) RemovePOSTerminal(c *gin.Context) {
	h.whitelist.Remove(c.Param("posID"))
	c.Status(http.StatusNoContent)
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
