package card

import "regexp"

// The card header, each variant absorbing one common misread.
var headerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)TRAINER\s+CARD`),
	regexp.MustCompile(`(?i)TRAI[NM]ER\s+CARD`),
	regexp.MustCompile(`(?i)TRAINER\s+C[AH]RD`),
	regexp.MustCompile(`(?i)TRA[I!]NER\s+CARD`),
}

type fieldLabel struct {
	field   string
	pattern *regexp.Regexp
}

var fieldLabels = []fieldLabel{
	{"name", regexp.MustCompile(`(?i)NAME[:\s]`)},
	{"badges", regexp.MustCompile(`(?i)BADGES?[:\s]`)},
	{"time", regexp.MustCompile(`(?i)TIME[:\s]|TINE[:\s]`)},
	{"pokedex", regexp.MustCompile(`(?i)POK[EéÉe](?:DEX|NEX|DE|eDE|keDE)`)},
}

const minFieldLabels = 3

// HasHeader reports whether text contains the card header in any known spelling.
func HasHeader(text string) bool {
	for _, p := range headerPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// FieldLabels lists which of the four field labels appear in text.
func FieldLabels(text string) []string {
	var found []string
	for _, l := range fieldLabels {
		if l.pattern.MatchString(text) {
			found = append(found, l.field)
		}
	}
	return found
}

// Validate decides whether fused OCR text plausibly comes from a trainer card:
// either the header is legible or at least three field labels are.
func Validate(text string) bool {
	if HasHeader(text) {
		return true
	}
	return len(FieldLabels(text)) >= minFieldLabels
}
