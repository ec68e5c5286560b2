package congress

import (
	"fmt"
)

// Committee is a congressional committee or subcommittee. The system code is
// the immutable identifier, e.g. "hsag00" for House Agriculture.
type Committee struct {
	URL           string         `json:"url,omitempty"`
	SystemCode    string         `json:"systemCode"`
	Name          string         `json:"name,omitempty"`
	Chamber       string         `json:"chamber,omitempty"`
	TypeCode      string         `json:"committeeTypeCode,omitempty"`
	Parent        *CommitteeRef  `json:"parent,omitempty"`
	Subcommittees []CommitteeRef `json:"subcommittees,omitempty"`
	IsCurrent     bool           `json:"isCurrent,omitempty"`
	UpdateDate    string         `json:"updateDate,omitempty"`
}

// Validate checks the fields a committee snapshot cannot do without.
func (c *Committee) Validate() error {
	if c.SystemCode == "" {
		return fmt.Errorf("committee missing system code")
	}
	return nil
}

// ChamberKind returns the normalized chamber.
func (c *Committee) ChamberKind() Chamber {
	return ParseChamber(c.Chamber)
}

// DisplayChamber returns a human-readable chamber name.
func (c *Committee) DisplayChamber() string {
	return c.ChamberKind().Display()
}

// IsSubcommittee reports whether this committee has a parent.
func (c *Committee) IsSubcommittee() bool {
	return c.Parent != nil
}

// Label renders a one-line summary like "House Agriculture (House)".
func (c *Committee) Label() string {
	name := c.Name
	if name == "" {
		name = c.SystemCode
	}
	return fmt.Sprintf("%s (%s)", name, c.DisplayChamber())
}

// CommitteeList is the upstream list envelope for committees.
type CommitteeList struct {
	Committees []Committee `json:"committees"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Validate checks each committee in the batch.
func (l *CommitteeList) Validate() error {
	for i := range l.Committees {
		if err := l.Committees[i].Validate(); err != nil {
			return fmt.Errorf("committee %d: %w", i, err)
		}
	}
	return nil
}

// DanglingSubcommitteeRefs returns subcommittee system codes referenced in
// the batch that do not resolve to a committee in the same batch. Upstream
// list pages can legitimately split a family across pages, so callers treat
// a non-empty result as a warning rather than a hard failure.
func (l *CommitteeList) DanglingSubcommitteeRefs() []string {
	present := make(map[string]bool, len(l.Committees))
	for i := range l.Committees {
		present[l.Committees[i].SystemCode] = true
	}

	var dangling []string
	seen := make(map[string]bool)
	for i := range l.Committees {
		for _, sub := range l.Committees[i].Subcommittees {
			if sub.SystemCode == "" || present[sub.SystemCode] || seen[sub.SystemCode] {
				continue
			}
			seen[sub.SystemCode] = true
			dangling = append(dangling, sub.SystemCode)
		}
	}
	return dangling
}

// CommitteeDetail is the upstream detail envelope for a single committee.
type CommitteeDetail struct {
	Committee *Committee `json:"committee"`
}

// Validate requires the payload to actually carry a committee.
func (d *CommitteeDetail) Validate() error {
	if d.Committee == nil {
		return fmt.Errorf("committee detail payload is empty")
	}
	return d.Committee.Validate()
}
