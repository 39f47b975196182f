package core

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog/log"
)

// Order is the result of comparing two version strings.
type Order int

const (
	OrderLess    Order = -1
	OrderEqual   Order = 0
	OrderGreater Order = 1
)

// versionCache memoizes parsed versions and engine constraints to avoid
// repeated parsing during release selection and plan generation. A nil
// cached version marks a string that is not structured, so the parse
// failure is only paid once per distinct string.
type versionCache struct {
	versions    map[string]*semver.Version
	constraints map[string]*semver.Constraints
}

func newVersionCache() *versionCache {
	return &versionCache{
		versions:    map[string]*semver.Version{},
		constraints: map[string]*semver.Constraints{},
	}
}

// version returns the parsed structured version for value, or nil when the
// string is not a strict major.minor.patch[-prerelease] version.
func (c *versionCache) version(value string) *semver.Version {
	if parsed, ok := c.versions[value]; ok {
		return parsed
	}
	parsed, err := semver.StrictNewVersion(strings.TrimSpace(value))
	if err != nil {
		c.versions[value] = nil
		return nil
	}
	c.versions[value] = parsed
	return parsed
}

// constraint returns the parsed compatibility range for value, or nil when
// the range expression is malformed.
func (c *versionCache) constraint(value string) *semver.Constraints {
	if parsed, ok := c.constraints[value]; ok {
		return parsed
	}
	parsed, err := semver.NewConstraint(strings.TrimSpace(value))
	if err != nil {
		c.constraints[value] = nil
		return nil
	}
	c.constraints[value] = parsed
	return parsed
}

// compare orders two version strings. When both parse as structured
// versions the numeric components are compared left to right, a release
// sorts above a prerelease of the same triple, and two prerelease tags
// compare lexicographically. When either side does not parse, both raw
// strings are compared lexicographically; structured and string comparison
// are never mixed within one call. The mixed-universe fallback can order
// non-structured identifiers inconsistently relative to structured ones
// across calls, which is why the fallback is logged.
func (c *versionCache) compare(a string, b string) Order {
	va := c.version(a)
	vb := c.version(b)
	if va == nil || vb == nil {
		log.Debug().Str("a", a).Str("b", b).
			Msg("version comparison falling back to lexicographic")
		return orderOf(strings.Compare(a, b))
	}
	return compareStructured(va, vb)
}

// Compare is the stand-alone form of the version ordering used by release
// selection and plan generation. It is total and deterministic for any
// fixed pair of inputs.
func Compare(a string, b string) Order {
	return newVersionCache().compare(a, b)
}

func compareStructured(a *semver.Version, b *semver.Version) Order {
	if order := compareUint(a.Major(), b.Major()); order != OrderEqual {
		return order
	}
	if order := compareUint(a.Minor(), b.Minor()); order != OrderEqual {
		return order
	}
	if order := compareUint(a.Patch(), b.Patch()); order != OrderEqual {
		return order
	}
	pa := a.Prerelease()
	pb := b.Prerelease()
	switch {
	case pa == "" && pb == "":
		return OrderEqual
	case pa == "":
		return OrderGreater
	case pb == "":
		return OrderLess
	default:
		return orderOf(strings.Compare(pa, pb))
	}
}

func compareUint(a uint64, b uint64) Order {
	switch {
	case a < b:
		return OrderLess
	case a > b:
		return OrderGreater
	default:
		return OrderEqual
	}
}

func orderOf(cmp int) Order {
	switch {
	case cmp < 0:
		return OrderLess
	case cmp > 0:
		return OrderGreater
	default:
		return OrderEqual
	}
}
