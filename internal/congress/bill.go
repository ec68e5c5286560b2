package congress

import (
	"encoding/json"
	"fmt"
	"strings"
)

// BillSponsor identifies a bill's sponsor or cosponsor.
type BillSponsor struct {
	BioguideID string `json:"bioguideId,omitempty"`
	FullName   string `json:"fullName,omitempty"`
	FirstName  string `json:"firstName,omitempty"`
	LastName   string `json:"lastName,omitempty"`
	Party      string `json:"party,omitempty"`
	State      string `json:"state,omitempty"`
	District   int    `json:"district,omitempty"`
	URL        string `json:"url,omitempty"`
}

// DisplayName returns the best available sponsor name.
func (s *BillSponsor) DisplayName() string {
	if s.FullName != "" {
		return s.FullName
	}
	if s.FirstName != "" || s.LastName != "" {
		return strings.TrimSpace(s.FirstName + " " + s.LastName)
	}
	return "Unknown"
}

// BillLaw records an enacted public/private law citation.
type BillLaw struct {
	Number string `json:"number,omitempty"`
	Type   string `json:"type,omitempty"`
}

// Bill is a congressional bill or resolution. The (congress, type, number)
// triple is the immutable identifier.
type Bill struct {
	URL            string        `json:"url,omitempty"`
	Congress       int           `json:"congress"`
	Type           string        `json:"type"`
	Number         FlexibleID    `json:"number"`
	OriginChamber  string        `json:"originChamber,omitempty"`
	Title          string        `json:"title,omitempty"`
	IntroducedDate string        `json:"introducedDate,omitempty"`
	Sponsors       []BillSponsor `json:"sponsors,omitempty"`
	LatestAction   *Action       `json:"latestAction,omitempty"`
	Actions        []Action      `json:"actions,omitempty"`
	Laws           []BillLaw     `json:"laws,omitempty"`
	UpdateDate     string        `json:"updateDate,omitempty"`
}

// FlexibleID tolerates upstream identifiers that arrive as either a JSON
// number or a string; the Congress API is not consistent about this.
type FlexibleID string

func (f *FlexibleID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexibleID(n.String())
	return nil
}

func (f FlexibleID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(f))
}

func (f FlexibleID) String() string { return string(f) }

// Validate checks the triple that identifies a bill.
func (b *Bill) Validate() error {
	if b.Congress <= 0 {
		return fmt.Errorf("bill missing congress number")
	}
	if b.Type == "" {
		return fmt.Errorf("bill missing type")
	}
	if b.Number == "" {
		return fmt.Errorf("bill missing number")
	}
	return nil
}

// BillKind returns the normalized bill type.
func (b *Bill) BillKind() BillType {
	return ParseBillType(b.Type)
}

// Identifier renders the conventional citation, e.g. "HR 3684".
func (b *Bill) Identifier() string {
	return fmt.Sprintf("%s %s", b.BillKind().Display(), b.Number)
}

// Label renders a full human-readable label like
// "HR 3684 (118th Congress): Infrastructure Investment and Jobs Act".
func (b *Bill) Label() string {
	label := fmt.Sprintf("%s (%s Congress)", b.Identifier(), Ordinal(b.Congress))
	if b.Title != "" {
		label += ": " + b.Title
	}
	return label
}

// DisplayChamber returns the origin chamber display name.
func (b *Bill) DisplayChamber() string {
	return ParseChamber(b.OriginChamber).Display()
}

// SponsorName returns the primary sponsor's name, or "Unknown".
func (b *Bill) SponsorName() string {
	if len(b.Sponsors) == 0 {
		return "Unknown"
	}
	return b.Sponsors[0].DisplayName()
}

// IsEnacted reports whether the bill became law.
func (b *Bill) IsEnacted() bool {
	return len(b.Laws) > 0
}

// LatestActionText returns the most recent action text, or "Unknown".
func (b *Bill) LatestActionText() string {
	if b.LatestAction == nil || b.LatestAction.Text == "" {
		return "Unknown"
	}
	return b.LatestAction.Text
}

// LatestActionDate returns the most recent action date, falling back to the
// introduced date when no action is recorded.
func (b *Bill) LatestActionDate() string {
	if b.LatestAction != nil && b.LatestAction.ActionDate != "" {
		return b.LatestAction.ActionDate
	}
	return b.IntroducedDate
}

// BillList is the upstream list envelope for bills.
type BillList struct {
	Bills      []Bill      `json:"bills"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Validate checks each bill in the batch.
func (l *BillList) Validate() error {
	for i := range l.Bills {
		if err := l.Bills[i].Validate(); err != nil {
			return fmt.Errorf("bill %d: %w", i, err)
		}
	}
	return nil
}

// BillDetail is the upstream detail envelope for a single bill.
type BillDetail struct {
	Bill *Bill `json:"bill"`
}

// Validate requires the payload to actually carry a bill.
func (d *BillDetail) Validate() error {
	if d.Bill == nil {
		return fmt.Errorf("bill detail payload is empty")
	}
	return d.Bill.Validate()
}
