package portfolio

import "fmt"

// WarningCode categorizes non-fatal simulation anomalies.
type WarningCode string

const (
	WarnFundingShortfall  WarningCode = "FUNDING_SHORTFALL"
	WarnNAVWriteDown      WarningCode = "NAV_WRITEDOWN"
	WarnNumericDegeneracy WarningCode = "NUMERIC_DEGENERACY"
)

// Warning records a per-path anomaly that did not abort the run.
type Warning struct {
	Code    WarningCode `json:"code"`
	Month   int         `json:"month"`
	Amount  float64     `json:"amount,omitempty"`
	Message string      `json:"message"`
}

func shortfall(month int, amount float64) Warning {
	return Warning{
		Code:    WarnFundingShortfall,
		Month:   month,
		Amount:  amount,
		Message: fmt.Sprintf("capital call short by %.2f in month %d", amount, month),
	}
}

func writeDown(month int, amount float64) Warning {
	return Warning{
		Code:    WarnNAVWriteDown,
		Month:   month,
		Amount:  amount,
		Message: fmt.Sprintf("NAV written down by %.2f in month %d", amount, month),
	}
}
