package monitor_test

import (
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotpotspot/franchise-ledger/internal/domain"
	"github.com/hotpotspot/franchise-ledger/internal/ledger"
	"github.com/hotpotspot/franchise-ledger/internal/mocks"
	"github.com/hotpotspot/franchise-ledger/internal/monitor"
)

const (
	ownerWallet   = "0x1111111111111111111111111111111111111111"
	charityWallet = "0x2222222222222222222222222222222222222222"
	franchiseA    = "0x3333333333333333333333333333333333333333"
	franchiseB    = "0x4444444444444444444444444444444444444444"
	franchiseC    = "0x5555555555555555555555555555555555555555"
	franchiseD    = "0x6666666666666666666666666666666666666666"
)

func newTestLedger(t *testing.T) *ledger.Ledger {
	t.Helper()

	ctrl := gomock.NewController(t)
	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().Return(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)).AnyTimes()

	cfg := ledger.DefaultConfig()
	cfg.MainOwnerWallet = ownerWallet
	cfg.CharityWallet = charityWallet
	cfg.Difficulty = 1

	l, err := ledger.New(cfg, clock)
	require.NoError(t, err)
	return l
}

func credit(t *testing.T, l *ledger.Ledger, wallet string, security, utility domain.Amount) {
	t.Helper()
	require.NoError(t, l.Update(func(tx *ledger.Tx) error {
		if security > 0 {
			if err := tx.CreditSecurity(wallet, security); err != nil {
				return err
			}
		}
		if utility > 0 {
			return tx.CreditUtility(wallet, utility)
		}
		return nil
	}))
}

func TestReportSecureNetwork(t *testing.T) {
	l := newTestLedger(t)

	// Owner sits exactly at its 48% cap, franchises well under theirs.
	credit(t, l, ownerWallet, 4800, 0)
	credit(t, l, charityWallet, 300, 0)
	for _, w := range []string{franchiseA, franchiseB, franchiseC, franchiseD} {
		credit(t, l, w, 1225, 0)
	}

	report, err := monitor.New(l).Report()
	require.NoError(t, err)

	assert.True(t, report.IsSecure)
	assert.Empty(t, report.SecurityRisks)
	assert.Empty(t, report.UtilityRisks)
	assert.Equal(t, domain.Amount(10000), report.TotalSecurityTokens)
	assert.InDelta(t, 48.0, report.MaxOwnerPercent, 0.001)
}

func TestReportFlagsConcentrationBreaches(t *testing.T) {
	l := newTestLedger(t)

	credit(t, l, ownerWallet, 4000, 0)
	credit(t, l, franchiseA, 3000, 0) // 30% combined, franchise cap is 24%
	credit(t, l, franchiseB, 3000, 0)

	report, err := monitor.New(l).Report()
	require.NoError(t, err)

	assert.False(t, report.IsSecure)
	require.Len(t, report.SecurityRisks, 2)
	for _, risk := range report.SecurityRisks {
		assert.Contains(t, []string{franchiseA, franchiseB}, risk.Wallet)
		assert.InDelta(t, 30.0, risk.Percent, 0.001)
		assert.Equal(t, domain.TokenClassSecurity, risk.TokenClass)
	}
	assert.Empty(t, report.UtilityRisks)
}

func TestReportFlagsUtilityConcentration(t *testing.T) {
	l := newTestLedger(t)

	credit(t, l, ownerWallet, 6000, 0)
	credit(t, l, franchiseA, 0, 4000) // 40% of combined supply in utility

	report, err := monitor.New(l).Report()
	require.NoError(t, err)

	assert.False(t, report.IsSecure)
	require.Len(t, report.UtilityRisks, 1)
	assert.Equal(t, franchiseA, report.UtilityRisks[0].Wallet)
	assert.InDelta(t, 40.0, report.UtilityRisks[0].Percent, 0.001)
	assert.Equal(t, domain.TokenClassUtility, report.UtilityRisks[0].TokenClass)

	// The same position also breaches the combined franchise cap.
	require.Len(t, report.SecurityRisks, 2)
}

func TestReportExemptsCharityAndCheckAccounts(t *testing.T) {
	l := newTestLedger(t)

	credit(t, l, ownerWallet, 4000, 0)
	credit(t, l, charityWallet, 3000, 0) // would breach every cap if counted

	// franchiseA is an unclaimed check account, bounded by the check flow.
	require.NoError(t, l.Update(func(tx *ledger.Tx) error {
		return tx.PutAccount(domain.NewBlockchainAccount(franchiseA, tx.Now()))
	}))
	credit(t, l, franchiseA, 0, 3000)

	report, err := monitor.New(l).Report()
	require.NoError(t, err)

	assert.True(t, report.IsSecure)
	assert.Empty(t, report.SecurityRisks)
	assert.Empty(t, report.UtilityRisks)
}

func TestCollectLimitAlertsGradesSeverity(t *testing.T) {
	l := newTestLedger(t)

	credit(t, l, ownerWallet, 6000, 0) // 60%, more than 10 points past the 48% cap
	credit(t, l, franchiseA, 3000, 0)  // 30%, 6 points past the 24% cap
	credit(t, l, franchiseB, 1000, 0)

	var alerts []domain.MonitoringAlert
	require.NoError(t, l.View(func(tx *ledger.Tx) error {
		alerts = monitor.CollectLimitAlerts(tx)
		return nil
	}))

	require.Len(t, alerts, 2)
	byWallet := make(map[string]domain.MonitoringAlert, len(alerts))
	for _, a := range alerts {
		assert.NotEmpty(t, a.AlertID)
		assert.False(t, a.IsResolved)
		byWallet[a.Wallet] = a
	}

	ownerAlert := byWallet[ownerWallet]
	assert.Equal(t, domain.AlertOwnerExceedsLimit, ownerAlert.Type)
	assert.Equal(t, domain.SeverityCritical, ownerAlert.Severity)
	assert.InDelta(t, 60.0, ownerAlert.Percent, 0.001)

	franchiseAlert := byWallet[franchiseA]
	assert.Equal(t, domain.AlertFranchiseExceedsLimit, franchiseAlert.Type)
	assert.Equal(t, domain.SeverityHigh, franchiseAlert.Severity)
}

func TestRoleOf(t *testing.T) {
	l := newTestLedger(t)

	credit(t, l, ownerWallet, 8050, 0)
	credit(t, l, franchiseA, 1200, 0) // 12% of security supply
	credit(t, l, franchiseB, 600, 0)  // 6%
	credit(t, l, franchiseC, 120, 0)  // 1.2%
	credit(t, l, franchiseD, 30, 0)   // 0.3%

	m := monitor.New(l)

	tests := []struct {
		wallet string
		want   domain.Role
	}{
		{ownerWallet, domain.RoleMainOwner},
		{franchiseA, domain.RoleBigStack},
		{franchiseB, domain.RoleMiddlePlayer},
		{franchiseC, domain.RoleStarter},
		{franchiseD, domain.RoleUnauthorized},
		{"0x9999999999999999999999999999999999999999", domain.RoleUnauthorized},
	}
	for _, tc := range tests {
		role, err := m.RoleOf(tc.wallet)
		require.NoError(t, err)
		assert.Equal(t, tc.want, role, "wallet %s", tc.wallet)
	}
}
