package altstore

import (
	"encoding/json"

	"github.com/Masterminds/semver/v3"
)

// Version returns the version an app entry declares, preferring the newest
// entry of the versions array over the legacy top-level field. Empty when
// neither is a string.
func (a App) Version() string {
	var probe struct {
		Version  string `json:"version"`
		Versions []struct {
			Version string `json:"version"`
		} `json:"versions"`
	}
	// Type mismatches are ignored; whatever decoded is used.
	_ = json.Unmarshal(a.Raw, &probe)

	if len(probe.Versions) > 0 && probe.Versions[0].Version != "" {
		return probe.Versions[0].Version
	}
	return probe.Version
}

// IsNewer reports whether candidate is a strictly greater semantic version
// than current. Unparseable versions never compare as newer.
func IsNewer(candidate, current string) bool {
	c, err := semver.NewVersion(candidate)
	if err != nil {
		return false
	}
	cur, err := semver.NewVersion(current)
	if err != nil {
		return false
	}
	return c.GreaterThan(cur)
}
