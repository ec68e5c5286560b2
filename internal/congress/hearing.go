package congress

import (
	"fmt"
)

// HearingWitness is a person testifying at a hearing.
type HearingWitness struct {
	Name         string `json:"name,omitempty"`
	Organization string `json:"organization,omitempty"`
	Title        string `json:"title,omitempty"`
}

// HearingDocument is a document attached to a hearing record.
type HearingDocument struct {
	Name        string `json:"name,omitempty"`
	Type        string `json:"type,omitempty"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`
}

// RelatedBill links a hearing to legislation it concerns.
type RelatedBill struct {
	Congress int        `json:"congress,omitempty"`
	Type     string     `json:"billType,omitempty"`
	Number   FlexibleID `json:"billNumber,omitempty"`
	Title    string     `json:"title,omitempty"`
	URL      string     `json:"url,omitempty"`
}

// Hearing is a congressional hearing. The jacket number is the immutable
// identifier within a congress.
type Hearing struct {
	URL          string            `json:"url,omitempty"`
	Congress     int               `json:"congress,omitempty"`
	Chamber      string            `json:"chamber,omitempty"`
	JacketNumber FlexibleID        `json:"jacketNumber"`
	Title        string            `json:"title,omitempty"`
	Date         string            `json:"date,omitempty"`
	Committee    *CommitteeRef     `json:"committee,omitempty"`
	Witnesses    []HearingWitness  `json:"witnesses,omitempty"`
	Documents    []HearingDocument `json:"documents,omitempty"`
	RelatedBills []RelatedBill     `json:"relatedBills,omitempty"`
	UpdateDate   string            `json:"updateDate,omitempty"`
}

// Validate checks the identifier a hearing snapshot cannot do without.
func (h *Hearing) Validate() error {
	if h.JacketNumber == "" {
		return fmt.Errorf("hearing missing jacket number")
	}
	return nil
}

// ChamberKind returns the normalized chamber.
func (h *Hearing) ChamberKind() Chamber {
	return ParseChamber(h.Chamber)
}

// DisplayChamber returns a human-readable chamber name.
func (h *Hearing) DisplayChamber() string {
	return h.ChamberKind().Display()
}

// CommitteeName returns the hosting committee's name, or "Unknown".
func (h *Hearing) CommitteeName() string {
	if h.Committee == nil || h.Committee.Name == "" {
		return "Unknown"
	}
	return h.Committee.Name
}

// DisplayTitle returns the title, or "Unknown" when upstream omits one.
func (h *Hearing) DisplayTitle() string {
	if h.Title == "" {
		return "Unknown"
	}
	return h.Title
}

// HearingList is the upstream list envelope for hearings.
type HearingList struct {
	Hearings   []Hearing   `json:"hearings"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Validate checks each hearing in the batch.
func (l *HearingList) Validate() error {
	for i := range l.Hearings {
		if err := l.Hearings[i].Validate(); err != nil {
			return fmt.Errorf("hearing %d: %w", i, err)
		}
	}
	return nil
}

// HearingDetail is the upstream detail envelope for a single hearing.
type HearingDetail struct {
	Hearing *Hearing `json:"hearing"`
}

// Validate requires the payload to actually carry a hearing.
func (d *HearingDetail) Validate() error {
	if d.Hearing == nil {
		return fmt.Errorf("hearing detail payload is empty")
	}
	return d.Hearing.Validate()
}

// CommitteeMeeting is a scheduled committee meeting, a close cousin of a
// hearing in the upstream API.
type CommitteeMeeting struct {
	URL        string        `json:"url,omitempty"`
	EventID    FlexibleID    `json:"eventId"`
	Congress   int           `json:"congress,omitempty"`
	Chamber    string        `json:"chamber,omitempty"`
	Committee  *CommitteeRef `json:"committee,omitempty"`
	Date       string        `json:"date,omitempty"`
	Type       string        `json:"meetingType,omitempty"`
	Title      string        `json:"title,omitempty"`
	UpdateDate string        `json:"updateDate,omitempty"`
}

// Validate checks the meeting identifier.
func (m *CommitteeMeeting) Validate() error {
	if m.EventID == "" {
		return fmt.Errorf("committee meeting missing event id")
	}
	return nil
}

// CommitteeMeetingList is the upstream list envelope for committee meetings.
type CommitteeMeetingList struct {
	Meetings   []CommitteeMeeting `json:"committeeMeetings"`
	Pagination *Pagination        `json:"pagination,omitempty"`
}

// Validate checks each meeting in the batch.
func (l *CommitteeMeetingList) Validate() error {
	for i := range l.Meetings {
		if err := l.Meetings[i].Validate(); err != nil {
			return fmt.Errorf("committee meeting %d: %w", i, err)
		}
	}
	return nil
}
