package pitch

import (
	"strings"
	"unicode"
)

// Structure is the fixed ten-field narrative breakdown of a pitch.
// All ten keys are always present on the wire, absent input fields
// decode to empty strings
type Structure struct {
	Problem       string `json:"problem"`
	Solution      string `json:"solution"`
	Market        string `json:"market"`
	Competition   string `json:"competition"`
	BusinessModel string `json:"businessModel"`
	Traction      string `json:"traction"`
	Team          string `json:"team"`
	Financials    string `json:"financials"`
	Funding       string `json:"funding"`
	Timeline      string `json:"timeline"`
}

// Generated is the result of one generation call
type Generated struct {
	OneLiner  string    `json:"oneLiner"`
	Structure Structure `json:"structure"`
}

// FieldNames lists structure keys in their fixed narrative order
func FieldNames() []string {
	return []string{"problem", "solution", "market", "competition", "businessModel",
		"traction", "team", "financials", "funding", "timeline"}
}

// Fields returns name-value pairs in the fixed narrative order
func (s *Structure) Fields() [][2]string {
	return [][2]string{
		{"problem", s.Problem}, {"solution", s.Solution}, {"market", s.Market},
		{"competition", s.Competition}, {"businessModel", s.BusinessModel},
		{"traction", s.Traction}, {"team", s.Team}, {"financials", s.Financials},
		{"funding", s.Funding}, {"timeline", s.Timeline},
	}
}

// Set assigns a structure field by its json name
func (s *Structure) Set(name, value string) bool {
	switch name {
	case "problem":
		s.Problem = value
	case "solution":
		s.Solution = value
	case "market":
		s.Market = value
	case "competition":
		s.Competition = value
	case "businessModel":
		s.BusinessModel = value
	case "traction":
		s.Traction = value
	case "team":
		s.Team = value
	case "financials":
		s.Financials = value
	case "funding":
		s.Funding = value
	case "timeline":
		s.Timeline = value
	default:
		return false
	}
	return true
}

const maxTitleLen = 60

// Title derives a record title from the one-liner: first 60 runes,
// cut at a word boundary when possible
func Title(oneLiner string) string {
	res := strings.TrimSpace(oneLiner)
	if res == "" {
		return "Untitled pitch"
	}
	runes := []rune(res)
	if len(runes) <= maxTitleLen {
		return res
	}
	cut := string(runes[:maxTitleLen])
	if i := strings.LastIndexFunc(cut, unicode.IsSpace); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " .,;:")
}
