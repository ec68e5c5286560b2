package congress

import (
	"fmt"
	"strings"
)

// MemberTerm is one term of service.
type MemberTerm struct {
	Congress  int    `json:"congress,omitempty"`
	Chamber   string `json:"chamber,omitempty"`
	StartYear int    `json:"startYear,omitempty"`
	EndYear   int    `json:"endYear,omitempty"`
	State     string `json:"stateCode,omitempty"`
	District  int    `json:"district,omitempty"`
	PartyName string `json:"partyName,omitempty"`
}

// MemberTerms matches the upstream nesting of terms under an "item" key.
type MemberTerms struct {
	Items []MemberTerm `json:"item,omitempty"`
}

// MemberLeadership is a leadership position held by a member.
type MemberLeadership struct {
	Congress int    `json:"congress,omitempty"`
	Current  bool   `json:"current,omitempty"`
	Type     string `json:"type,omitempty"`
}

// MemberDepiction is the member's official photo.
type MemberDepiction struct {
	Attribution string `json:"attribution,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// Member is a member of Congress. The bioguide ID is the immutable
// identifier.
type Member struct {
	URL        string             `json:"url,omitempty"`
	BioguideID string             `json:"bioguideId"`
	Name       string             `json:"name,omitempty"`
	FirstName  string             `json:"firstName,omitempty"`
	LastName   string             `json:"lastName,omitempty"`
	Party      string             `json:"partyName,omitempty"`
	State      string             `json:"state,omitempty"`
	District   int                `json:"district,omitempty"`
	Terms      *MemberTerms       `json:"terms,omitempty"`
	Leadership []MemberLeadership `json:"leadership,omitempty"`
	Committees []CommitteeRef     `json:"committees,omitempty"`
	Depiction  *MemberDepiction   `json:"depiction,omitempty"`
	UpdateDate string             `json:"updateDate,omitempty"`
}

// Validate checks the identifier a member snapshot cannot do without.
func (m *Member) Validate() error {
	if m.BioguideID == "" {
		return fmt.Errorf("member missing bioguide id")
	}
	return nil
}

// DisplayName returns the best available name for the member.
func (m *Member) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	if m.FirstName != "" || m.LastName != "" {
		return strings.TrimSpace(m.FirstName + " " + m.LastName)
	}
	return "Unknown"
}

// DisplayParty returns the party display name. Upstream sometimes sends the
// full name and sometimes a single-letter code.
func (m *Member) DisplayParty() string {
	return PartyDisplay(m.Party)
}

// DisplayDistrict returns "District N" or "At Large".
func (m *Member) DisplayDistrict() string {
	if m.District > 0 {
		return fmt.Sprintf("District %d", m.District)
	}
	return "At Large"
}

// CurrentTerm returns the most recent term of service, or nil.
func (m *Member) CurrentTerm() *MemberTerm {
	if m.Terms == nil || len(m.Terms.Items) == 0 {
		return nil
	}
	latest := &m.Terms.Items[0]
	for i := range m.Terms.Items {
		if m.Terms.Items[i].Congress > latest.Congress {
			latest = &m.Terms.Items[i]
		}
	}
	return latest
}

// CurrentChamber returns the chamber of the most recent term.
func (m *Member) CurrentChamber() Chamber {
	term := m.CurrentTerm()
	if term == nil {
		return ""
	}
	return ParseChamber(term.Chamber)
}

// LeadershipPositions returns the titles of currently held leadership roles.
func (m *Member) LeadershipPositions() []string {
	var positions []string
	for _, pos := range m.Leadership {
		if pos.Current && pos.Type != "" {
			positions = append(positions, pos.Type)
		}
	}
	return positions
}

// MemberList is the upstream list envelope for members.
type MemberList struct {
	Members    []Member    `json:"members"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Validate checks each member in the batch.
func (l *MemberList) Validate() error {
	for i := range l.Members {
		if err := l.Members[i].Validate(); err != nil {
			return fmt.Errorf("member %d: %w", i, err)
		}
	}
	return nil
}

// MemberDetail is the upstream detail envelope for a single member.
type MemberDetail struct {
	Member *Member `json:"member"`
}

// Validate requires the payload to actually carry a member.
func (d *MemberDetail) Validate() error {
	if d.Member == nil {
		return fmt.Errorf("member detail payload is empty")
	}
	return d.Member.Validate()
}
