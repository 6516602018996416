package dues

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func rate(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func nullRate(v int64) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.NewFromInt(v), Valid: true}
}

func mustPeriod(t *testing.T, s string) Period {
	t.Helper()
	p, err := ParsePeriod(s)
	require.NoError(t, err)
	return p
}

func mustZones(t *testing.T) *ZoneDirectory {
	t.Helper()
	z, err := NewZoneDirectory("umum", nil)
	require.NoError(t, err)
	return z
}

func scenarioRoster() []Household {
	return []Household{
		{ID: 1, Address: "Jl. Melati No. 1", ZoneLabel: "Timur", Occupied: true},
		{ID: 2, Address: "Jl. Melati No. 2", ZoneLabel: "Timur", Occupied: false},
		{ID: 3, Address: "Jl. Mawar No. 7", ZoneLabel: "Barat", Occupied: true},
	}
}

func scenarioRules() []Rule {
	return []Rule{
		{ID: 1, ZoneLabel: "Timur", OccupiedRate: rate(200000), UnoccupiedRate: nullRate(150000), EffectiveStart: date(2024, 1, 1)},
		{ID: 2, ZoneLabel: "ALL", OccupiedRate: rate(100000), EffectiveStart: date(2023, 1, 1)},
	}
}

func amounts(plan Plan) map[uint]string {
	out := make(map[uint]string)
	for _, b := range plan.Staged {
		out[b.HouseholdID] = b.Amount.String()
	}
	return out
}

func TestBuildPlan(t *testing.T) {
	t.Run("zone and wildcard tariffs", func(t *testing.T) {
		p := mustPeriod(t, "2024-03")
		zones := mustZones(t)

		plan := BuildPlan(p, scenarioRoster(), NewTariffTable(scenarioRules(), p, zones), nil, zones)

		assert.Equal(t, 3, plan.Total)
		assert.Empty(t, plan.Skipped)
		assert.Empty(t, plan.NoTariff)
		assert.Equal(t, map[uint]string{1: "200000", 2: "150000", 3: "100000"}, amounts(plan))
	})

	t.Run("already billed household is skipped", func(t *testing.T) {
		p := mustPeriod(t, "2024-03")
		zones := mustZones(t)

		plan := BuildPlan(p, scenarioRoster(), NewTariffTable(scenarioRules(), p, zones), map[uint]struct{}{1: {}}, zones)

		assert.Len(t, plan.Staged, 2)
		require.Len(t, plan.Skipped, 1)
		assert.Equal(t, uint(1), plan.Skipped[0].ID)
		assert.NotContains(t, amounts(plan), uint(1))
	})

	t.Run("no matching tariff", func(t *testing.T) {
		p := mustPeriod(t, "2024-03")
		zones := mustZones(t)
		rules := scenarioRules()[:1] // Timur only, no wildcard

		plan := BuildPlan(p, scenarioRoster(), NewTariffTable(rules, p, zones), nil, zones)

		assert.Len(t, plan.Staged, 2)
		require.Len(t, plan.NoTariff, 1)
		assert.Equal(t, []string{"Jl. Mawar No. 7"}, Addresses(plan.NoTariff, 0))
	})

	t.Run("unoccupied falls back to occupied rate", func(t *testing.T) {
		p := mustPeriod(t, "2024-03")
		zones := mustZones(t)
		rules := []Rule{{ID: 9, ZoneLabel: "ALL", OccupiedRate: rate(250000), EffectiveStart: date(2024, 1, 1)}}
		roster := []Household{{ID: 5, ZoneLabel: "Utara", Occupied: false}}

		plan := BuildPlan(p, roster, NewTariffTable(rules, p, zones), nil, zones)

		require.Len(t, plan.Staged, 1)
		assert.True(t, plan.Staged[0].Amount.Equal(rate(250000)))
		assert.Equal(t, uint(9), plan.Staged[0].TariffID)
	})

	t.Run("blank zone uses default zone", func(t *testing.T) {
		p := mustPeriod(t, "2024-03")
		zones := mustZones(t)
		rules := []Rule{{ID: 4, ZoneLabel: "Umum", OccupiedRate: rate(50000), EffectiveStart: date(2024, 1, 1)}}
		roster := []Household{{ID: 6, ZoneLabel: "", Occupied: true}}

		plan := BuildPlan(p, roster, NewTariffTable(rules, p, zones), nil, zones)

		require.Len(t, plan.Staged, 1)
		assert.Equal(t, "50000", plan.Staged[0].Amount.String())
	})
}

func TestTariffTable(t *testing.T) {
	t.Run("latest effective start wins", func(t *testing.T) {
		p := mustPeriod(t, "2024-07")
		zones := mustZones(t)
		rules := []Rule{
			{ID: 1, ZoneLabel: "Timur", OccupiedRate: rate(100000), EffectiveStart: date(2024, 1, 1)},
			{ID: 2, ZoneLabel: "Timur", OccupiedRate: rate(120000), EffectiveStart: date(2024, 6, 1)},
		}

		got, ok := NewTariffTable(rules, p, zones).Match("timur")

		require.True(t, ok)
		assert.Equal(t, uint(2), got.ID)
	})

	t.Run("named zone beats wildcard on equal start", func(t *testing.T) {
		p := mustPeriod(t, "2024-07")
		zones := mustZones(t)
		rules := []Rule{
			{ID: 7, ZoneLabel: "ALL", OccupiedRate: rate(90000), EffectiveStart: date(2024, 6, 1)},
			{ID: 3, ZoneLabel: "Timur", OccupiedRate: rate(120000), EffectiveStart: date(2024, 6, 1)},
		}

		table := NewTariffTable(rules, p, zones)
		got, ok := table.Match("timur")
		require.True(t, ok)
		assert.Equal(t, uint(3), got.ID)

		got, ok = table.Match("barat")
		require.True(t, ok)
		assert.Equal(t, uint(7), got.ID)
	})

	t.Run("newer wildcard beats older named zone", func(t *testing.T) {
		p := mustPeriod(t, "2024-07")
		zones := mustZones(t)
		rules := []Rule{
			{ID: 1, ZoneLabel: "Timur", OccupiedRate: rate(120000), EffectiveStart: date(2024, 1, 1)},
			{ID: 2, ZoneLabel: "ALL", OccupiedRate: rate(130000), EffectiveStart: date(2024, 6, 1)},
		}

		got, ok := NewTariffTable(rules, p, zones).Match("timur")
		require.True(t, ok)
		assert.Equal(t, uint(2), got.ID)
	})

	t.Run("inactive rules are dropped", func(t *testing.T) {
		p := mustPeriod(t, "2024-07")
		zones := mustZones(t)
		ended := date(2024, 6, 30)
		lastDay := date(2024, 7, 1)
		rules := []Rule{
			{ID: 1, ZoneLabel: "ALL", OccupiedRate: rate(1), EffectiveStart: date(2024, 1, 1), EffectiveEnd: &ended},
			{ID: 2, ZoneLabel: "ALL", OccupiedRate: rate(2), EffectiveStart: date(2024, 8, 1)},
			{ID: 3, ZoneLabel: "ALL", OccupiedRate: rate(3), EffectiveStart: date(2024, 7, 1), EffectiveEnd: &lastDay},
		}

		table := NewTariffTable(rules, p, zones)
		assert.Equal(t, 1, table.Len())
		got, ok := table.Match("timur")
		require.True(t, ok)
		assert.Equal(t, uint(3), got.ID)
	})
}

func TestAddresses(t *testing.T) {
	hs := scenarioRoster()
	assert.Equal(t, []string{"Jl. Melati No. 1", "Jl. Melati No. 2"}, Addresses(hs, 2))
	assert.Len(t, Addresses(hs, 10), 3)
	assert.Empty(t, Addresses(nil, 5))
}
