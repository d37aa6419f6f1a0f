package export

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/pitchforge/pitchforge/internal/pkg/pitch"
)

const (
	oneLinerHeader   = "ONE-LINER"
	transcriptHeader = "ORIGINAL TRANSCRIPT"
	footerPrefix     = "Generated on "
)

// Document is the parsed form of one exported deck file
type Document struct {
	Title      string
	OneLiner   string
	Structure  pitch.Structure
	Transcript string
}

// Format renders a saved pitch into the plain-text deck document:
// title line, one-liner section, ten structure sections, transcript
// section and a generation-date footer
func Format(title, oneLiner string, s *pitch.Structure, transcript string, created time.Time) string {
	var b strings.Builder
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", 50) + "\n\n")
	writeSection(&b, oneLinerHeader, oneLiner)
	for _, f := range s.Fields() {
		writeSection(&b, SectionName(f[0]), f[1])
	}
	writeSection(&b, transcriptHeader, transcript)
	b.WriteString(footerPrefix + created.Format("2006-01-02") + "\n")
	return b.String()
}

func writeSection(b *strings.Builder, header, value string) {
	b.WriteString(header + "\n")
	b.WriteString(strings.TrimSpace(value) + "\n\n")
}

// SectionName maps a structure field name to its document header:
// upper-cased with a space inserted before every capital,
// businessModel becomes BUSINESS MODEL
func SectionName(field string) string {
	var b strings.Builder
	for _, r := range field {
		if unicode.IsUpper(r) {
			b.WriteRune(' ')
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// FileName builds the download attachment name
func FileName(title string) string {
	res := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return '-'
	}, title)
	for strings.Contains(res, "--") {
		res = strings.ReplaceAll(res, "--", "-")
	}
	return strings.Trim(res, "-") + ".txt"
}

// Parse reads a formatted document back into its parts. Section header
// lines delimit values, so values survive the round trip verbatim.
// Known limitation: a value line that exactly equals a later, not yet
// seen section header is taken as that header and splits the value
func Parse(doc string) (*Document, error) {
	lines := strings.Split(doc, "\n")
	if len(lines) < 2 || !strings.HasPrefix(lines[1], "==") {
		return nil, fmt.Errorf("no title block")
	}
	res := &Document{Title: lines[0]}

	headers := map[string]string{oneLinerHeader: oneLinerHeader, transcriptHeader: transcriptHeader}
	for _, n := range pitch.FieldNames() {
		headers[SectionName(n)] = n
	}

	section, seen := "", map[string]bool{}
	var value []string
	flush := func() error {
		if section == "" {
			return nil
		}
		v := strings.TrimSpace(strings.Join(value, "\n"))
		switch section {
		case oneLinerHeader:
			res.OneLiner = v
		case transcriptHeader:
			res.Transcript = v
		default:
			if !res.Structure.Set(headers[section], v) {
				return fmt.Errorf("unknown section '%s'", section)
			}
		}
		seen[section] = true
		return nil
	}
	for _, ln := range lines[2:] {
		if strings.HasPrefix(ln, footerPrefix) && section == transcriptHeader {
			break
		}
		if _, ok := headers[ln]; ok && !seen[ln] {
			if err := flush(); err != nil {
				return nil, err
			}
			section, value = ln, nil
			continue
		}
		value = append(value, ln)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	if !seen[oneLinerHeader] {
		return nil, fmt.Errorf("no %s section", oneLinerHeader)
	}
	return res, nil
}
