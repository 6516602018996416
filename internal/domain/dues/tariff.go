package dues

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Rule is a tariff rule as loaded from storage.
type Rule struct {
	ID             uint
	ZoneLabel      string
	OccupiedRate   decimal.Decimal
	UnoccupiedRate decimal.NullDecimal
	EffectiveStart time.Time
	EffectiveEnd   *time.Time
}

// ActiveIn reports whether the rule's window contains the first day of p.
func (r Rule) ActiveIn(p Period) bool {
	day := p.Time()
	if dateOnly(r.EffectiveStart).After(day) {
		return false
	}
	return r.EffectiveEnd == nil || !dateOnly(*r.EffectiveEnd).Before(day)
}

// Rate returns the amount billed to a household with the given occupancy.
// Unoccupied households fall back to the occupied rate when the rule has no
// unoccupied rate.
func (r Rule) Rate(occupied bool) decimal.Decimal {
	if !occupied && r.UnoccupiedRate.Valid {
		return r.UnoccupiedRate.Decimal
	}
	return r.OccupiedRate
}

type scopedRule struct {
	Rule
	scope ZoneScope
}

// TariffTable is an ordered set of rules ready for matching. Order: latest
// effective start first; on equal start a named zone precedes the wildcard;
// then higher id first.
type TariffTable struct {
	rules []scopedRule
}

// NewTariffTable resolves rule scopes through zones and orders them. Rules
// not active in p are dropped.
func NewTariffTable(rules []Rule, p Period, zones *ZoneDirectory) TariffTable {
	out := make([]scopedRule, 0, len(rules))
	for _, r := range rules {
		if !r.ActiveIn(p) {
			continue
		}
		out = append(out, scopedRule{Rule: r, scope: zones.Scope(r.ZoneLabel)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		as, bs := dateOnly(a.EffectiveStart), dateOnly(b.EffectiveStart)
		if !as.Equal(bs) {
			return as.After(bs)
		}
		if a.scope.IsAll() != b.scope.IsAll() {
			return !a.scope.IsAll()
		}
		return a.ID > b.ID
	})
	return TariffTable{rules: out}
}

// Len returns the number of active rules.
func (t TariffTable) Len() int { return len(t.rules) }

// Match returns the first rule covering z.
func (t TariffTable) Match(z Zone) (Rule, bool) {
	for _, r := range t.rules {
		if r.scope.Covers(z) {
			return r.Rule, true
		}
	}
	return Rule{}, false
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
