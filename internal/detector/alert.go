package detector

import (
	"time"

	"github.com/shopspring/decimal"
)

// AlertType identifies a detection rule.
type AlertType string

const (
	AlertDepthShrink           AlertType = "depth_shrink"
	AlertSpreadWiden           AlertType = "spread_widen"
	AlertImpactCostRise        AlertType = "impact_cost_rise"
	AlertInsufficientLiquidity AlertType = "insufficient_liquidity"
	AlertVolumeSpike           AlertType = "volume_spike"
)

// Severity grades an alert.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarn     Severity = "warn"
	SeverityCritical Severity = "critical"
)

// Alert is an immutable candidate anomaly record. Once persisted it is never
// mutated; a later alert of the same type supersedes it.
type Alert struct {
	ObservedAt time.Time
	Venue      string
	Symbol     string
	Type       AlertType
	Severity   Severity
	Message    string

	Threshold     *decimal.Decimal
	Observed      *decimal.Decimal
	BaselineValue *decimal.Decimal
}
