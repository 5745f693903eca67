package domain

const (
	// TokenScale is the number of subunits per whole token (1 token = 100 subunits)
	TokenScale = 100

	// Currency is the fiat currency purchases are denominated in
	Currency = "GEL"

	// GenesisPrevHash is the previous-hash marker of the genesis block
	GenesisPrevHash = "0"

	// CapTolerance is the slack (in percentage points) applied to ownership
	// cap comparisons so holders sitting exactly on a cap are not rejected
	CapTolerance = 0.01

	// UtilityConcentrationLimit is the utility-token share (percent) above
	// which a concentration alert is raised
	UtilityConcentrationLimit = 30.0
)
