package rest_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotpotspot/franchise-ledger/internal/api/middleware"
	"github.com/hotpotspot/franchise-ledger/internal/api/rest"
	"github.com/hotpotspot/franchise-ledger/internal/claim"
	"github.com/hotpotspot/franchise-ledger/internal/consensus"
	"github.com/hotpotspot/franchise-ledger/internal/domain"
	"github.com/hotpotspot/franchise-ledger/internal/ledger"
	"github.com/hotpotspot/franchise-ledger/internal/logger"
	"github.com/hotpotspot/franchise-ledger/internal/mocks"
	"github.com/hotpotspot/franchise-ledger/internal/monitor"
	"github.com/hotpotspot/franchise-ledger/internal/purchase"
	"github.com/hotpotspot/franchise-ledger/internal/registry"
	"github.com/hotpotspot/franchise-ledger/internal/sweeper"
)

const (
	ownerWallet    = "0x1111111111111111111111111111111111111111"
	charityWallet  = "0x2222222222222222222222222222222222222222"
	customerWallet = "0x3333333333333333333333333333333333333333"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := logger.Initialize(logger.Config{Debug: true}); err != nil {
		panic(err)
	}
	m.Run()
}

type fixture struct {
	ledger *ledger.Ledger
	router *gin.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().Return(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)).AnyTimes()

	random := mocks.NewMockRandom(ctrl)
	random.EXPECT().Code(6).Return("123456", nil).AnyTimes()
	random.EXPECT().Uint64n(gomock.Any()).Return(uint64(0), nil).AnyTimes()

	cfg := ledger.DefaultConfig()
	cfg.MainOwnerWallet = ownerWallet
	cfg.CharityWallet = charityWallet
	cfg.Difficulty = 1

	l, err := ledger.New(cfg, clock)
	require.NoError(t, err)

	whitelist := registry.NewPOSWhitelist(mocks.NewMockFileSystem(ctrl))
	whitelist.Add("pos-1")

	engine := purchase.NewEngine(l, random, whitelist, nil)
	t.Cleanup(engine.Stop)

	claims := claim.NewService(l, random)
	mon := monitor.New(l)
	validators := consensus.NewRegistry(cfg.MinStake)
	sealer := consensus.NewSealer(l, validators, random)
	sweep := sweeper.NewRedistributionSweeper(l, time.Hour)

	handler := rest.NewHandler(l, engine, claims, mon, sealer, validators, sweep, whitelist)

	router := gin.New()
	handler.RegisterRoutes(router, middleware.AuthConfig{})

	return &fixture{ledger: l, router: router}
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) registerNode(t *testing.T) {
	t.Helper()

	w := f.do(t, http.MethodPost, "/api/v1/nodes", rest.RegisterNodeRequest{
		NodeID:      "node-1",
		Name:        "Main Kitchen",
		OwnerWallet: ownerWallet,
		IsOwnerNode: true,
	})
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterNodeEndpoint(t *testing.T) {
	f := newFixture(t)
	f.registerNode(t)

	t.Run("duplicate conflicts", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/nodes", rest.RegisterNodeRequest{
			NodeID: "node-1", OwnerWallet: ownerWallet, IsOwnerNode: true,
		})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "CONFLICT")
	})

	t.Run("invalid wallet", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/nodes", rest.RegisterNodeRequest{
			NodeID: "node-2", OwnerWallet: "bogus",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("list", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/nodes", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "node-1")
	})
}

func TestPurchaseAndClaimFlow(t *testing.T) {
	f := newFixture(t)
	f.registerNode(t)

	// purchase
	w := f.do(t, http.MethodPost, "/api/v1/purchases", purchase.Request{
		NodeID: "node-1", POSID: "pos-1", Amount: 1000, Items: []string{"khinkali"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var result purchase.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.NotNil(t, result.Check)
	assert.Equal(t, domain.Amount(490), result.Check.Amount)

	// check status is public but masked
	w = f.do(t, http.MethodGet, "/api/v1/checks/"+result.Check.CheckID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "123456")

	// register and verify the claimant
	w = f.do(t, http.MethodPost, "/api/v1/users", rest.RegisterUserRequest{
		PhoneNumber: "+995500000001", WalletAddress: customerWallet,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "123456")

	w = f.do(t, http.MethodPost, "/api/v1/users/verify", rest.VerifyPhoneRequest{
		PhoneNumber: "+995500000001", VerificationCode: "123456",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// claim
	w = f.do(t, http.MethodPost, "/api/v1/claims", rest.ClaimRequest{
		CheckID:        result.Check.CheckID,
		ActivationCode: "123456",
		PhoneNumber:    "+995500000001",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var record domain.BalanceTransferRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	assert.Equal(t, customerWallet, record.ToWallet)
	assert.Equal(t, domain.Amount(490), record.SecurityTokens)
	assert.Equal(t, domain.Amount(490), record.UtilityTokens)

	t.Run("second claim conflicts", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/claims", rest.ClaimRequest{
			CheckID:        result.Check.CheckID,
			ActivationCode: "123456",
			PhoneNumber:    "+995500000001",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("holder shows claimed balance", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/holders/"+customerWallet, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "490")
	})

	t.Run("transfer history", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/transfers/"+customerWallet, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), record.TransferID)
	})
}

func TestPurchaseErrors(t *testing.T) {
	f := newFixture(t)
	f.registerNode(t)

	t.Run("unknown node", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/purchases", purchase.Request{
			NodeID: "missing", POSID: "pos-1", Amount: 100,
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unauthorized terminal", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/purchases", purchase.Request{
			NodeID: "node-1", POSID: "pos-rogue", Amount: 100,
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestValidatorAndBlockEndpoints(t *testing.T) {
	f := newFixture(t)
	f.registerNode(t)

	w := f.do(t, http.MethodPost, "/api/v1/validators", rest.RegisterValidatorRequest{
		Wallet: customerWallet, Stake: uint64(f.ledger.Config().MinStake),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("stake too low", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/validators", rest.RegisterValidatorRequest{
			Wallet: ownerWallet, Stake: 1,
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	// nothing pending yet
	w = f.do(t, http.MethodPost, "/api/v1/blocks/seal", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// a purchase queues issuance transactions, then sealing works
	w = f.do(t, http.MethodPost, "/api/v1/purchases", purchase.Request{
		NodeID: "node-1", POSID: "pos-1", Amount: 1000,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/blocks/seal", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/blocks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), fmt.Sprintf("%q", customerWallet))

	w = f.do(t, http.MethodGet, "/api/v1/chain/validity", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"valid":true`)
}

func TestReportAndDistributionEndpoints(t *testing.T) {
	f := newFixture(t)
	f.registerNode(t)

	w := f.do(t, http.MethodGet, "/api/v1/report", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "is_secure")

	w = f.do(t, http.MethodPost, "/api/v1/distributions", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/distributions", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListUnclaimedEndpoint(t *testing.T) {
	f := newFixture(t)
	f.registerNode(t)

	for i := 0; i < 3; i++ {
		w := f.do(t, http.MethodPost, "/api/v1/purchases", purchase.Request{
			NodeID: "node-1", POSID: "pos-1", Amount: 1000, Items: []string{"khinkali"},
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := f.do(t, http.MethodGet, "/api/v1/unclaimed", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listing struct {
		Unclaimed []domain.UnclaimedTokenRecord `json:"unclaimed"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	assert.Len(t, listing.Unclaimed, 3)

	t.Run("limit", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/unclaimed?limit=2", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
		assert.Len(t, listing.Unclaimed, 2)
	})

	t.Run("invalid limit", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/unclaimed?limit=-1", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPOSAdminEndpoints(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/pos/pos-9", nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = f.do(t, http.MethodDelete, "/api/v1/pos/pos-9", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
