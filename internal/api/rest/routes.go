package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/hotpotspot/franchise-ledger/internal/api/middleware"
)

// RegisterRoutes mounts the API on the engine. Admin routes require
// authentication when authCfg carries a JWT key or API keys.
func (h *Handler) RegisterRoutes(r *gin.Engine, authCfg middleware.AuthConfig) {
	r.GET("/healthz", h.Health)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/purchases", h.ProcessPurchase)
		v1.GET("/nodes", h.ListNodes)

		v1.POST("/users", h.RegisterUser)
		v1.POST("/users/verify", h.VerifyPhone)
		v1.POST("/accounts/activate", h.ActivateAccount)
		v1.POST("/claims", h.ClaimCheck)
		v1.GET("/transfers/:wallet", h.TransferHistory)

		v1.GET("/holders/:wallet", h.GetHolder)
		v1.GET("/checks/:checkID", h.GetCheck)

		v1.GET("/report", h.SecurityReport)
		v1.GET("/alerts", h.ListAlerts)

		v1.GET("/validators", h.ListValidators)
		v1.GET("/blocks", h.ListBlocks)
		v1.GET("/chain/validity", h.ChainValidity)
		v1.GET("/unclaimed", h.ListUnclaimed)
		v1.GET("/distributions", h.ListDistributions)
	}

	admin := v1.Group("")
	if authCfg.JWTPublicKey != "" || len(authCfg.APIKeys) > 0 {
		admin.Use(middleware.Auth(authCfg))
	}
	{
		admin.POST("/nodes", h.RegisterNode)
		admin.POST("/investors/emissions", h.EmitForInvestor)
		admin.POST("/validators", h.RegisterValidator)
		admin.POST("/blocks/seal", h.SealBlock)
		admin.POST("/distributions", h.RunDistribution)
		admin.POST("/pos/:posID", h.AddPOSTerminal)
		admin.DELETE("/pos/:posID", h.RemovePOSTerminal)
	}
}
