package analysis

import "github.com/adoptai/zapi/internal/config"

// CostModel derives cost and processing-time estimates from aggregate
// totals. It is a pure function of the snapshot and its coefficients;
// both outputs are non-decreasing in the valid entry count.
type CostModel struct {
	cfg config.CostConfig
}

// NewCostModel creates a model with the given coefficients.
func NewCostModel(cfg config.CostConfig) *CostModel {
	return &CostModel{cfg: cfg}
}

// Estimate returns (cost in USD, time in minutes) for the given number
// of valid entries. An empty run costs exactly the base fee and takes
// the floor time.
func (m *CostModel) Estimate(validEntries int) (costUSD, timeMinutes float64) {
	costUSD = m.cfg.BaseFeeUSD + float64(validEntries)*m.cfg.PerEntryRateUSD

	timeMinutes = float64(validEntries) * m.cfg.AvgSecondsPerEntry / 60
	if timeMinutes < m.cfg.FloorMinutes {
		timeMinutes = m.cfg.FloorMinutes
	}
	return costUSD, timeMinutes
}
