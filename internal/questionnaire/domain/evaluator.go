package domain

import "time"

// DayThresholds groups the policy day-windows used by the evaluator.
// The values are policy, not algorithm, so they stay injectable.
type DayThresholds struct {
	ArrivalInternals int
	ArrivalExternals int
	Suspicion        int
	Covid            int
}

// DefaultDayThresholds returns the thresholds used in production.
func DefaultDayThresholds() DayThresholds {
	return DayThresholds{
		ArrivalInternals: 5,
		ArrivalExternals: 7,
		Suspicion:        7,
		Covid:            14,
	}
}

// Evaluator computes campus-access verdicts from a declaration snapshot.
// It is a pure function over its inputs plus "today". Now defaults to
// time.Now; callers that pin a business timezone inject a clock returning
// instants in that zone.
type Evaluator struct {
	Thresholds DayThresholds
	QRBaseURL  string
	Now        func() time.Time
}

// NewEvaluator builds an evaluator with production thresholds.
func NewEvaluator(qrBaseURL string) Evaluator {
	return Evaluator{Thresholds: DefaultDayThresholds(), QRBaseURL: qrBaseURL}
}

// reasonRule pairs a reason tag with the validation that triggers it. The
// slice order is the resolution priority: the first active rule wins.
type reasonRule struct {
	reason Reason
	active func(CovidValidations) bool
}

var reasonPriority = []reasonRule{
	{ReasonNoResponsiveLetter, func(v CovidValidations) bool { return v.NoResponsiveLetter }},
	{ReasonIsInQuarantine, func(v CovidValidations) bool { return v.IsInQuarantine }},
	{ReasonHaveCovid, func(v CovidValidations) bool { return v.HaveCovid }},
	{ReasonIsSuspect, func(v CovidValidations) bool { return v.IsSuspect }},
	{ReasonRecentArrival, func(v CovidValidations) bool { return v.RecentArrival }},
}

// ResolveReason returns the dominant reason for a validation set, or
// ReasonNone when every validation is false.
func ResolveReason(v CovidValidations) Reason {
	for _, rule := range reasonPriority {
		if rule.active(v) {
			return rule.reason
		}
	}
	return ReasonNone
}

// Evaluate runs the five rule predicates against today's date and resolves
// the verdict, reason, and QR URL for the user.
func (e Evaluator) Evaluate(userID string, info CovidInformation, hasResponsiveLetter bool, residence Residence) CovidValidation {
	today := e.today()

	validations := CovidValidations{
		RecentArrival:      e.recentArrival(info, residence, today),
		IsSuspect:          e.suspect(info, today),
		HaveCovid:          e.haveCovid(info, today),
		IsInQuarantine:     e.inQuarantine(info, today),
		NoResponsiveLetter: !hasResponsiveLetter,
	}

	allow := !validations.Any()
	return CovidValidation{
		AllowAccess: allow,
		Reason:      ResolveReason(validations),
		QRURL:       BuildQRURL(e.QRBaseURL, userID, allow, residence),
		Validations: validations,
		UsedData:    info,
	}
}

func (e Evaluator) today() time.Time {
	now := time.Now()
	if e.Now != nil {
		now = e.Now()
	}
	return DateOnly(now)
}

// recentArrival holds while fewer than the residence threshold days have
// elapsed since arrival. An absent arrival date means no recent arrival.
// Unknown residence uses the external threshold.
func (e Evaluator) recentArrival(info CovidInformation, residence Residence, today time.Time) bool {
	if info.ArrivalDate == nil {
		return false
	}
	days := e.Thresholds.ArrivalExternals
	if residence == ResidenceInternal {
		days = e.Thresholds.ArrivalInternals
	}
	return withinDays(*info.ArrivalDate, days, today)
}

// suspect holds while the flag is set and the suspicion window has not
// elapsed; with no start date the suspicion never expires on its own.
func (e Evaluator) suspect(info CovidInformation, today time.Time) bool {
	if !info.IsSuspect {
		return false
	}
	if info.StartSuspicionDate == nil {
		return true
	}
	return withinDays(*info.StartSuspicionDate, e.Thresholds.Suspicion, today)
}

// haveCovid holds while the flag is set and the infection window has not
// elapsed; with no start date the restriction never expires on its own.
func (e Evaluator) haveCovid(info CovidInformation, today time.Time) bool {
	if !info.HaveCovid {
		return false
	}
	if info.StartCovidDate == nil {
		return true
	}
	return withinDays(*info.StartCovidDate, e.Thresholds.Covid, today)
}

// inQuarantine holds while the flag is set and the end date, when present,
// is today or later.
func (e Evaluator) inQuarantine(info CovidInformation, today time.Time) bool {
	if !info.IsInQuarantine {
		return false
	}
	if info.QuarantineEndDate == nil {
		return true
	}
	return !DateOnly(*info.QuarantineEndDate).Before(today)
}

// withinDays reports whether fewer than n days have elapsed since start:
// today must be strictly before start+n. Exactly n elapsed days lifts the
// restriction.
func withinDays(start time.Time, n int, today time.Time) bool {
	boundary := DateOnly(start).AddDate(0, 0, n)
	return today.Before(boundary)
}
