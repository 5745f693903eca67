package purchase_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotpotspot/franchise-ledger/internal/domain"
	"github.com/hotpotspot/franchise-ledger/internal/ledger"
	"github.com/hotpotspot/franchise-ledger/internal/logger"
	"github.com/hotpotspot/franchise-ledger/internal/mocks"
	"github.com/hotpotspot/franchise-ledger/internal/purchase"
)

const (
	ownerWallet     = "0x1111111111111111111111111111111111111111"
	charityWallet   = "0x2222222222222222222222222222222222222222"
	franchiseWallet = "0x3333333333333333333333333333333333333333"
	chefWallet      = "0x4444444444444444444444444444444444444444"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: true}); err != nil {
		panic(err)
	}
	m.Run()
}

type capturingDispatcher struct {
	mu     sync.Mutex
	orders []domain.KitchenOrder
	done   chan struct{}
}

func (d *capturingDispatcher) PublishKitchenOrder(_ context.Context, order domain.KitchenOrder) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.orders = append(d.orders, order)
	close(d.done)
	return nil
}

func newFixture(t *testing.T) (*ledger.Ledger, *purchase.Engine, *capturingDispatcher) {
	t.Helper()

	ctrl := gomock.NewController(t)

	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().Return(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)).AnyTimes()

	random := mocks.NewMockRandom(ctrl)
	random.EXPECT().Code(6).Return("123456", nil).AnyTimes()

	authorizer := mocks.NewMockPOSAuthorizer(ctrl)
	authorizer.EXPECT().IsAuthorized(gomock.Any()).DoAndReturn(func(posID string) bool {
		return posID != "pos-banned"
	}).AnyTimes()

	cfg := ledger.DefaultConfig()
	cfg.MainOwnerWallet = ownerWallet
	cfg.CharityWallet = charityWallet
	cfg.Difficulty = 1

	l, err := ledger.New(cfg, clock)
	require.NoError(t, err)

	require.NoError(t, l.Update(func(tx *ledger.Tx) error {
		if err := tx.RegisterNode(&ledger.FranchiseNode{
			NodeID: "owner-node", OwnerWallet: ownerWallet, ChefWallet: chefWallet, IsOwnerNode: true, CreatedAt: tx.Now(),
		}); err != nil {
			return err
		}
		if err := tx.RegisterNode(&ledger.FranchiseNode{
			NodeID: "owner-node-solo", OwnerWallet: ownerWallet, IsOwnerNode: true, CreatedAt: tx.Now(),
		}); err != nil {
			return err
		}
		if err := tx.RegisterNode(&ledger.FranchiseNode{
			NodeID: "franchise-node", OwnerWallet: franchiseWallet, CreatedAt: tx.Now(),
		}); err != nil {
			return err
		}
		return tx.RegisterNode(&ledger.FranchiseNode{
			NodeID: "franchise-node-chef", OwnerWallet: franchiseWallet, ChefWallet: chefWallet, CreatedAt: tx.Now(),
		})
	}))

	dispatcher := &capturingDispatcher{done: make(chan struct{})}
	engine := purchase.NewEngine(l, random, authorizer, dispatcher)
	t.Cleanup(engine.Stop)

	return l, engine, dispatcher
}

func balances(t *testing.T, l *ledger.Ledger, wallet string) (domain.Amount, domain.Amount) {
	t.Helper()
	var sec, util domain.Amount
	require.NoError(t, l.View(func(tx *ledger.Tx) error {
		h, err := tx.Holder(wallet)
		if err != nil {
			return nil
		}
		sec, util = h.SecurityTokens, h.UtilityTokens
		return nil
	}))
	return sec, util
}

func TestProcessPurchaseOwnerNodeWithChef(t *testing.T) {
	l, engine, dispatcher := newFixture(t)

	result, err := engine.ProcessPurchase(context.Background(), purchase.Request{
		NodeID: "owner-node", POSID: "pos-1", Amount: 1000, Items: []string{"khinkali"},
	})
	require.NoError(t, err)

	ownerSec, ownerUtil := balances(t, l, ownerWallet)
	charitySec, charityUtil := balances(t, l, charityWallet)
	chefSec, chefUtil := balances(t, l, chefWallet)

	// every share lands in both classes at a 1:1 ratio
	assert.Equal(t, domain.Amount(480), ownerSec)
	assert.Equal(t, domain.Amount(480), ownerUtil)
	assert.Equal(t, domain.Amount(30), charitySec)
	assert.Equal(t, domain.Amount(30), charityUtil)
	assert.Equal(t, domain.Amount(240), chefSec)
	assert.Equal(t, domain.Amount(240), chefUtil)
	assert.Equal(t, domain.Amount(250), result.Check.Amount)

	// the check's customer share sits on its anonymous account
	accountSec, accountUtil := balances(t, l, result.Check.Account)
	assert.Equal(t, domain.Amount(250), accountSec)
	assert.Equal(t, domain.Amount(250), accountUtil)

	require.NoError(t, l.View(func(tx *ledger.Tx) error {
		assert.Equal(t, domain.Amount(1000), tx.TotalSecurity())
		assert.Equal(t, domain.Amount(1000), tx.TotalUtility())
		assert.Len(t, tx.Pending(), 4)
		return nil
	}))

	select {
	case <-dispatcher.done:
	case <-time.After(2 * time.Second):
		t.Fatal("kitchen order not dispatched")
	}
	dispatcher.mu.Lock()
	defer dispatcher.mu.Unlock()
	require.Len(t, dispatcher.orders, 1)
	assert.Equal(t, chefWallet, dispatcher.orders[0].ChefWallet)
	assert.Equal(t, []string{"khinkali"}, dispatcher.orders[0].Items)
}

func TestProcessPurchaseOwnerNodeNoChef(t *testing.T) {
	l, engine, _ := newFixture(t)

	result, err := engine.ProcessPurchase(context.Background(), purchase.Request{
		NodeID: "owner-node-solo", POSID: "pos-1", Amount: 1000,
	})
	require.NoError(t, err)

	ownerSec, _ := balances(t, l, ownerWallet)
	charitySec, _ := balances(t, l, charityWallet)
	accountSec, accountUtil := balances(t, l, result.Check.Account)

	assert.Equal(t, domain.Amount(480), ownerSec)
	assert.Equal(t, domain.Amount(30), charitySec)
	assert.Equal(t, domain.Amount(490), accountSec)
	assert.Equal(t, domain.Amount(490), accountUtil)
	assert.Equal(t, domain.Amount(490), result.Check.Amount)
}

func TestProcessPurchaseFranchiseNode(t *testing.T) {
	l, engine, _ := newFixture(t)

	result, err := engine.ProcessPurchase(context.Background(), purchase.Request{
		NodeID: "franchise-node", POSID: "pos-1", Amount: 1000,
	})
	require.NoError(t, err)

	franchiseSec, franchiseUtil := balances(t, l, franchiseWallet)
	ownerSec, _ := balances(t, l, ownerWallet)
	charitySec, _ := balances(t, l, charityWallet)
	accountSec, accountUtil := balances(t, l, result.Check.Account)

	assert.Equal(t, domain.Amount(250), franchiseSec)
	assert.Equal(t, domain.Amount(250), franchiseUtil)
	assert.Equal(t, domain.Amount(240), ownerSec)
	assert.Equal(t, domain.Amount(30), charitySec)
	assert.Equal(t, domain.Amount(480), accountSec)
	assert.Equal(t, domain.Amount(480), accountUtil)
	assert.Equal(t, domain.Amount(480), result.Check.Amount)
}

func TestProcessPurchaseFranchiseNodeWithChef(t *testing.T) {
	l, engine, _ := newFixture(t)

	result, err := engine.ProcessPurchase(context.Background(), purchase.Request{
		NodeID: "franchise-node-chef", POSID: "pos-1", Amount: 1000,
	})
	require.NoError(t, err)

	chefSec, chefUtil := balances(t, l, chefWallet)
	assert.Equal(t, domain.Amount(240), chefSec)
	assert.Equal(t, domain.Amount(240), chefUtil)
	assert.Equal(t, domain.Amount(240), result.Check.Amount)

	require.NoError(t, l.View(func(tx *ledger.Tx) error {
		assert.Equal(t, domain.Amount(1000), tx.TotalSecurity())
		assert.Equal(t, domain.Amount(1000), tx.TotalUtility())
		return nil
	}))
}

func TestProcessPurchaseConservesOddAmounts(t *testing.T) {
	l, engine, _ := newFixture(t)

	// 997 does not divide evenly by any split percentage
	_, err := engine.ProcessPurchase(context.Background(), purchase.Request{
		NodeID: "owner-node", POSID: "pos-1", Amount: 997,
	})
	require.NoError(t, err)

	require.NoError(t, l.View(func(tx *ledger.Tx) error {
		assert.Equal(t, domain.Amount(997), tx.TotalSecurity())
		assert.Equal(t, domain.Amount(997), tx.TotalUtility())
		return nil
	}))
}

func TestProcessPurchaseCheck(t *testing.T) {
	l, engine, _ := newFixture(t)

	result, err := engine.ProcessPurchase(context.Background(), purchase.Request{
		NodeID: "owner-node", POSID: "pos-1", Amount: 1000, Items: []string{"khachapuri"},
	})
	require.NoError(t, err)

	check := result.Check
	assert.Len(t, check.CheckID, 64)
	assert.Equal(t, "123456", check.ActivationCode)
	assert.True(t, strings.HasPrefix(check.Account, "0x"))
	assert.Len(t, check.Account, 42)
	assert.Equal(t, check.CheckID+"|123456|"+check.Account, check.QRCode)
	assert.False(t, check.IsClaimed)
	assert.False(t, check.IsActivated)

	require.NoError(t, l.View(func(tx *ledger.Tx) error {
		stored, err := tx.Check(check.CheckID)
		require.NoError(t, err)
		assert.Equal(t, check.Amount, stored.Amount)

		account, err := tx.Account(check.Account)
		require.NoError(t, err)
		assert.Equal(t, domain.AccountStatusSleep, account.Status)

		rec, err := tx.Unclaimed(check.CheckID)
		require.NoError(t, err)
		assert.Equal(t, check.Amount, rec.Amount)
		assert.Equal(t, rec.CreatedAt.Add(l.Config().CheckTTL), rec.ExpiresAt)
		assert.False(t, rec.IsDistributed)
		return nil
	}))
}

func TestProcessPurchaseValidation(t *testing.T) {
	l, engine, _ := newFixture(t)

	tests := []struct {
		name    string
		req     purchase.Request
		wantErr error
	}{
		{
			name:    "zero amount",
			req:     purchase.Request{NodeID: "owner-node", POSID: "pos-1"},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "unknown node",
			req:     purchase.Request{NodeID: "missing", POSID: "pos-1", Amount: 100},
			wantErr: domain.ErrNodeNotFound,
		},
		{
			name:    "unauthorized terminal",
			req:     purchase.Request{NodeID: "owner-node", POSID: "pos-banned", Amount: 100},
			wantErr: domain.ErrPOSNotWhitelisted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.ProcessPurchase(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// failed purchases leave no trace
	require.NoError(t, l.View(func(tx *ledger.Tx) error {
		assert.Equal(t, domain.Amount(0), tx.TotalSecurity()+tx.TotalUtility())
		assert.Empty(t, tx.Pending())
		return nil
	}))
}

func TestEmitForInvestor(t *testing.T) {
	l, engine, _ := newFixture(t)
	investor := "0x5555555555555555555555555555555555555555"

	// seed supply so the investor's cap has a denominator
	_, err := engine.ProcessPurchase(context.Background(), purchase.Request{
		NodeID: "owner-node", POSID: "pos-1", Amount: 10000,
	})
	require.NoError(t, err)

	require.NoError(t, engine.EmitForInvestor(context.Background(), investor, 1000))

	sec, util := balances(t, l, investor)
	assert.Equal(t, domain.Amount(1000), sec)
	assert.Equal(t, domain.Amount(1000), util)

	t.Run("cap exceeded", func(t *testing.T) {
		err := engine.EmitForInvestor(context.Background(), investor, 50000)
		assert.ErrorIs(t, err, domain.ErrOwnershipLimitExceeded)

		sec, util := balances(t, l, investor)
		assert.Equal(t, domain.Amount(1000), sec)
		assert.Equal(t, domain.Amount(1000), util)
	})

	t.Run("invalid wallet", func(t *testing.T) {
		err := engine.EmitForInvestor(context.Background(), "not-a-wallet", 100)
		assert.ErrorIs(t, err, domain.ErrInvalidAddress)
	})
}
