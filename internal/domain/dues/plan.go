package dues

import "github.com/shopspring/decimal"

// Household is the roster entry the planner needs.
type Household struct {
	ID        uint
	Address   string
	ZoneLabel string
	Occupied  bool
}

// StagedBill is a bill to be inserted.
type StagedBill struct {
	HouseholdID uint
	Amount      decimal.Decimal
	TariffID    uint
}

// Plan is the outcome of reconciling a roster against tariffs and the
// existing-bill index for one period.
type Plan struct {
	Period   Period
	Total    int
	Staged   []StagedBill
	Skipped  []Household // already billed for the period
	NoTariff []Household
}

// BuildPlan walks the roster in order. Households already in billed are
// skipped; the rest are matched against tariffs and staged, or reported as
// having no tariff.
func BuildPlan(p Period, roster []Household, tariffs TariffTable, billed map[uint]struct{}, zones *ZoneDirectory) Plan {
	plan := Plan{Period: p, Total: len(roster)}
	for _, h := range roster {
		if _, ok := billed[h.ID]; ok {
			plan.Skipped = append(plan.Skipped, h)
			continue
		}
		rule, ok := tariffs.Match(zones.Resolve(h.ZoneLabel))
		if !ok {
			plan.NoTariff = append(plan.NoTariff, h)
			continue
		}
		plan.Staged = append(plan.Staged, StagedBill{
			HouseholdID: h.ID,
			Amount:      rule.Rate(h.Occupied),
			TariffID:    rule.ID,
		})
	}
	return plan
}

// Addresses returns the addresses of hs, at most limit entries when limit is
// positive.
func Addresses(hs []Household, limit int) []string {
	n := len(hs)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]string, 0, n)
	for _, h := range hs[:n] {
		out = append(out, h.Address)
	}
	return out
}
