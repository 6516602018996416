package dues

import (
	"errors"
	"strings"
)

// Zone is a canonical zone key produced by a ZoneDirectory.
type Zone string

// ZoneScope is the scope of a tariff rule: either one named zone or all
// zones.
type ZoneScope struct {
	all  bool
	zone Zone
}

// AllZones returns the wildcard scope.
func AllZones() ZoneScope { return ZoneScope{all: true} }

// NamedZone returns a scope covering exactly z.
func NamedZone(z Zone) ZoneScope { return ZoneScope{zone: z} }

// IsAll reports whether the scope is the wildcard.
func (s ZoneScope) IsAll() bool { return s.all }

// Zone returns the named zone; empty for the wildcard.
func (s ZoneScope) Zone() Zone { return s.zone }

// Covers reports whether a household in z falls under the scope.
func (s ZoneScope) Covers(z Zone) bool {
	return s.all || s.zone == z
}

func (s ZoneScope) String() string {
	if s.all {
		return "ALL"
	}
	return string(s.zone)
}

// ZoneDirectory maps free-text zone labels onto canonical zones. Labels are
// compared after trimming, collapsing inner whitespace and case folding, then
// looked up in the alias table. Blank labels resolve to the default zone.
type ZoneDirectory struct {
	defaultZone Zone
	aliases     map[string]Zone
}

// NewZoneDirectory builds a directory. defaultZone must not be blank.
func NewZoneDirectory(defaultZone string, aliases map[string]string) (*ZoneDirectory, error) {
	def := normalizeLabel(defaultZone)
	if def == "" {
		return nil, errors.New("default zone must not be blank")
	}
	d := &ZoneDirectory{
		defaultZone: Zone(def),
		aliases:     make(map[string]Zone, len(aliases)),
	}
	for alias, target := range aliases {
		a, t := normalizeLabel(alias), normalizeLabel(target)
		if a == "" || t == "" {
			return nil, errors.New("zone alias and target must not be blank")
		}
		d.aliases[a] = Zone(t)
	}
	return d, nil
}

// DefaultZone returns the zone used for blank labels.
func (d *ZoneDirectory) DefaultZone() Zone { return d.defaultZone }

// Resolve returns the canonical zone of a household label.
func (d *ZoneDirectory) Resolve(label string) Zone {
	n := normalizeLabel(label)
	if n == "" {
		return d.defaultZone
	}
	if z, ok := d.aliases[n]; ok {
		return z
	}
	return Zone(n)
}

// Scope returns the scope of a tariff rule label. "ALL" in any case is the
// wildcard.
func (d *ZoneDirectory) Scope(label string) ZoneScope {
	if strings.EqualFold(strings.TrimSpace(label), "ALL") {
		return AllZones()
	}
	return NamedZone(d.Resolve(label))
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
