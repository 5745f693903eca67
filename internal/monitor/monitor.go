package monitor

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/hotpotspot/franchise-ledger/internal/domain"
	"github.com/hotpotspot/franchise-ledger/internal/ledger"
)

// capFor returns the concentration cap for a holder's security position.
func capFor(cfg ledger.Config, h *ledger.Holder) float64 {
	if h.IsMainOwner {
		return cfg.MaxOwnerPercent
	}
	return cfg.MaxFranchisePercent
}

// severityFor grades a breach by how far past the cap it runs.
func severityFor(percent, cap float64) domain.AlertSeverity {
	switch {
	case percent > cap+10:
		return domain.SeverityCritical
	case percent > cap+5:
		return domain.SeverityHigh
	default:
		return domain.SeverityMedium
	}
}

// ReportFromTx builds a concentration snapshot inside an open transaction.
// Shares are measured against the combined supply of both token classes.
// Charity holdings and unclaimed check accounts are exempt; the check flow
// bounds the latter on its own.
func ReportFromTx(tx *ledger.Tx) domain.NetworkSecurityReport {
	cfg := tx.Config()
	totalSec := tx.TotalSecurity()
	totalUtil := tx.TotalUtility()
	supply := totalSec + totalUtil

	report := domain.NetworkSecurityReport{
		TotalSecurityTokens: totalSec,
		TotalUtilityTokens:  totalUtil,
	}

	for _, h := range tx.Holders() {
		if h.IsCharity {
			continue
		}
		if _, err := tx.Account(h.Wallet); err == nil {
			continue
		}

		pct := (h.SecurityTokens + h.UtilityTokens).PercentOf(supply)
		if pct > report.MaxOwnerPercent {
			report.MaxOwnerPercent = pct
		}
		if pct > capFor(cfg, h)+domain.CapTolerance {
			report.SecurityRisks = append(report.SecurityRisks, domain.OwnershipRisk{
				Wallet:     h.Wallet,
				Percent:    pct,
				TokenClass: domain.TokenClassSecurity,
			})
		}

		utilPct := h.UtilityTokens.PercentOf(supply)
		if utilPct > domain.UtilityConcentrationLimit+domain.CapTolerance {
			report.UtilityRisks = append(report.UtilityRisks, domain.OwnershipRisk{
				Wallet:     h.Wallet,
				Percent:    utilPct,
				TokenClass: domain.TokenClassUtility,
			})
		}
	}

	report.IsSecure = len(report.SecurityRisks) == 0 && len(report.UtilityRisks) == 0
	return report
}

// CollectLimitAlerts turns the current concentration risks into alerts.
func CollectLimitAlerts(tx *ledger.Tx) []domain.MonitoringAlert {
	cfg := tx.Config()
	report := ReportFromTx(tx)
	now := tx.Now()

	var alerts []domain.MonitoringAlert
	for _, risk := range report.SecurityRisks {
		alertType := domain.AlertFranchiseExceedsLimit
		cap := cfg.MaxFranchisePercent
		if risk.Wallet == cfg.MainOwnerWallet {
			alertType = domain.AlertOwnerExceedsLimit
			cap = cfg.MaxOwnerPercent
		}
		alerts = append(alerts, domain.MonitoringAlert{
			AlertID:   uuid.NewString(),
			Type:      alertType,
			Severity:  severityFor(risk.Percent, cap),
			Message:   fmt.Sprintf("%s holds %.2f%% of security tokens, cap is %.0f%%", risk.Wallet, risk.Percent, cap),
			Wallet:    risk.Wallet,
			Percent:   risk.Percent,
			Timestamp: now,
		})
	}
	for _, risk := range report.UtilityRisks {
		alerts = append(alerts, domain.MonitoringAlert{
			AlertID:   uuid.NewString(),
			Type:      domain.AlertTokenConcentration,
			Severity:  domain.SeverityHigh,
			Message:   fmt.Sprintf("%s holds %.2f%% of utility tokens, limit is %.0f%%", risk.Wallet, risk.Percent, domain.UtilityConcentrationLimit),
			Wallet:    risk.Wallet,
			Percent:   risk.Percent,
			Timestamp: now,
		})
	}
	return alerts
}

// Monitor exposes concentration reporting over the ledger.
type Monitor struct {
	ledger *ledger.Ledger
}

// New creates a monitor.
func New(l *ledger.Ledger) *Monitor {
	return &Monitor{ledger: l}
}

// Report takes a concentration snapshot.
func (m *Monitor) Report() (domain.NetworkSecurityReport, error) {
	var report domain.NetworkSecurityReport
	err := m.ledger.View(func(tx *ledger.Tx) error {
		report = ReportFromTx(tx)
		return nil
	})
	return report, err
}

// Alerts returns the recorded alert history.
func (m *Monitor) Alerts() ([]domain.MonitoringAlert, error) {
	var alerts []domain.MonitoringAlert
	err := m.ledger.View(func(tx *ledger.Tx) error {
		alerts = tx.Alerts()
		return nil
	})
	return alerts, err
}

// RoleOf derives a wallet's role tier from its current security share.
func (m *Monitor) RoleOf(wallet string) (domain.Role, error) {
	var role domain.Role
	err := m.ledger.View(func(tx *ledger.Tx) error {
		cfg := tx.Config()
		if wallet == cfg.MainOwnerWallet {
			role = domain.RoleMainOwner
			return nil
		}
		h, err := tx.Holder(wallet)
		if err != nil {
			role = domain.RoleUnauthorized
			return nil
		}
		role = domain.RoleFromPercent(h.SecurityTokens.PercentOf(tx.TotalSecurity()))
		return nil
	})
	return role, err
}
