// Package congress holds the typed domain models for Congress API data.
// Models are immutable value snapshots built from upstream JSON: they are
// validated once at the client boundary and never mutated afterwards.
//
// Upstream vocabularies evolve, so enumerated fields (chamber, bill type)
// keep unrecognized raw values instead of rejecting them. Parse helpers
// normalize known values and pass everything else through; Known() reports
// whether a value is part of the current vocabulary.
package congress

import (
	"fmt"
	"strings"
)

// Chamber identifies an originating chamber. Unrecognized upstream values
// are preserved verbatim.
type Chamber string

const (
	ChamberHouse  Chamber = "house"
	ChamberSenate Chamber = "senate"
	ChamberJoint  Chamber = "joint"
)

// ParseChamber normalizes a raw chamber string. Unknown values come back
// as-is so nothing upstream sends is lost.
func ParseChamber(raw string) Chamber {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "house", "house of representatives":
		return ChamberHouse
	case "senate":
		return ChamberSenate
	case "joint":
		return ChamberJoint
	default:
		return Chamber(raw)
	}
}

// Known reports whether the chamber is part of the recognized vocabulary.
func (c Chamber) Known() bool {
	switch c {
	case ChamberHouse, ChamberSenate, ChamberJoint:
		return true
	}
	return false
}

// Display returns a human-readable chamber name.
func (c Chamber) Display() string {
	switch c {
	case ChamberHouse:
		return "House"
	case ChamberSenate:
		return "Senate"
	case ChamberJoint:
		return "Joint"
	case "":
		return "Unknown"
	default:
		return string(c)
	}
}

// BillType identifies a bill or resolution type. Unrecognized upstream
// values are preserved verbatim.
type BillType string

const (
	BillTypeHR      BillType = "hr"
	BillTypeS       BillType = "s"
	BillTypeHJRes   BillType = "hjres"
	BillTypeSJRes   BillType = "sjres"
	BillTypeHConRes BillType = "hconres"
	BillTypeSConRes BillType = "sconres"
	BillTypeHRes    BillType = "hres"
	BillTypeSRes    BillType = "sres"
)

// BillTypes lists the recognized bill type vocabulary.
var BillTypes = []BillType{
	BillTypeHR, BillTypeS,
	BillTypeHJRes, BillTypeSJRes,
	BillTypeHConRes, BillTypeSConRes,
	BillTypeHRes, BillTypeSRes,
}

// ParseBillType normalizes a raw bill type string, preserving unknowns.
func ParseBillType(raw string) BillType {
	bt := BillType(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range BillTypes {
		if bt == known {
			return known
		}
	}
	return BillType(raw)
}

// Known reports whether the bill type is part of the recognized vocabulary.
func (bt BillType) Known() bool {
	for _, known := range BillTypes {
		if BillType(strings.ToLower(string(bt))) == known {
			return true
		}
	}
	return false
}

// Display returns the conventional upper-case citation form, e.g. "HR" or
// "SJRES".
func (bt BillType) Display() string {
	if bt == "" {
		return "Unknown"
	}
	return strings.ToUpper(string(bt))
}

// Party maps a single-letter party code to its display name.
func PartyDisplay(code string) string {
	switch code {
	case "D":
		return "Democrat"
	case "R":
		return "Republican"
	case "I":
		return "Independent"
	case "ID":
		return "Independent Democrat"
	case "L":
		return "Libertarian"
	case "":
		return "Unknown"
	default:
		return code
	}
}

// Pagination carries the upstream paging envelope.
type Pagination struct {
	Count    int    `json:"count"`
	Next     string `json:"next,omitempty"`
	Previous string `json:"prev,omitempty"`
}

// Action is a dated legislative action.
type Action struct {
	ActionDate string `json:"actionDate,omitempty"`
	ActionTime string `json:"actionTime,omitempty"`
	Text       string `json:"text,omitempty"`
	Type       string `json:"type,omitempty"`
	URL        string `json:"url,omitempty"`
}

// CommitteeRef is a lightweight pointer to a committee carried inside other
// entities.
type CommitteeRef struct {
	URL        string `json:"url,omitempty"`
	SystemCode string `json:"systemCode,omitempty"`
	Name       string `json:"name,omitempty"`
	Chamber    string `json:"chamber,omitempty"`
	Rank       int    `json:"rank,omitempty"`
}

// Ordinal renders a congress number as "118th" style text.
func Ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
