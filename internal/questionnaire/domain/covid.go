package domain

import "time"

// Residence indicates whether a student lives on campus or outside of it.
// The arrival threshold and the QR color depend on it.
type Residence string

const (
	ResidenceInternal Residence = "internal"
	ResidenceExternal Residence = "external"
	ResidenceUnknown  Residence = "unknown"
)

// Reason identifies the single dominant cause surfaced by an evaluation.
// Even when several validations are true at once only one reason is
// reported; Validations carries the full picture.
type Reason string

const (
	ReasonNone               Reason = "none"
	ReasonRecentArrival      Reason = "recentArrival"
	ReasonIsSuspect          Reason = "isSuspect"
	ReasonHaveCovid          Reason = "haveCovid"
	ReasonIsInQuarantine     Reason = "isInQuarantine"
	ReasonNoResponsiveLetter Reason = "noResponsiveLetter"
)

// CovidInformation is the per-user declaration snapshot held by the academic
// system. A true flag with an absent paired date means the condition holds
// indefinitely.
type CovidInformation struct {
	ArrivalDate        *time.Time `json:"arrivalDate,omitempty"`
	IsVaccinated       bool       `json:"isVaccinated"`
	HaveCovid          bool       `json:"haveCovid"`
	StartCovidDate     *time.Time `json:"startCovidDate,omitempty"`
	IsSuspect          bool       `json:"isSuspect"`
	StartSuspicionDate *time.Time `json:"startSuspicionDate,omitempty"`
	IsInQuarantine     bool       `json:"isInQuarantine"`
	QuarantineEndDate  *time.Time `json:"quarantineEndDate,omitempty"`
}

// CovidValidations holds the five independent rule outcomes.
type CovidValidations struct {
	RecentArrival      bool `json:"recentArrival"`
	IsSuspect          bool `json:"isSuspect"`
	HaveCovid          bool `json:"haveCovid"`
	IsInQuarantine     bool `json:"isInQuarantine"`
	NoResponsiveLetter bool `json:"noResponsiveLetter"`
}

// Any reports whether at least one validation is true.
func (v CovidValidations) Any() bool {
	return v.RecentArrival || v.IsSuspect || v.HaveCovid || v.IsInQuarantine || v.NoResponsiveLetter
}

// CovidValidation is the evaluator output. It is computed per request and
// never stored.
type CovidValidation struct {
	AllowAccess bool             `json:"allowAccess"`
	Reason      Reason           `json:"reason"`
	QRURL       string           `json:"qrUrl"`
	Validations CovidValidations `json:"validations"`
	UsedData    CovidInformation `json:"usedData"`
}
