package card

import (
	"regexp"
	"testing"
)

func TestExtractCard(t *testing.T) {
	text := "TRAINER CARD\nNAME: ASH\nMONEY $3000\nTIME: 2:15\nPOKEDEX: 011"
	f := Extract(text)
	if f.Name != "ASH" || f.Time != "2:15" || f.Pokedex != 11 {
		t.Fatalf("got %+v", f)
	}
	if f.NameRule != "NAME" || f.TimeRule != "TIME" || f.PokedexRule != "digits" {
		t.Fatalf("rules: %+v", f)
	}
}

func TestExtractName(t *testing.T) {
	cases := []struct {
		text, want string
	}{
		{"NAME: MATT\nMONEY", "MATT"},
		{"NAME: ZAC 2.0\nIDNo 12345", "ZAC 2.0 IDNo 12345"},
		{"NAME: ASH IDNO", "ASH IDNO"},
		{"NAME: ASH ID 42", "ASH"},
		{"NAME: Zac\nPOKEDEX", "Zac"},
		{"NAME: 0G", "OG"},
		{"NAME: R0", "RO"},
		{"NAME: RED ... BLUE", "RED ... BLUE"},
		{"WAME: KERMIT", "KERMIT"},
		{"NAME: ...\nNANE: HALEY", "... NANE"},
		{"NAME: ###\nNANE: HALEY", "HALEY"},
		{"NAME: ID\nWAME: KERMIT", "KERMIT"},
		{"NAME: ###", UnknownName},
		{"NAME: A MONEY", UnknownName},
		{"no label here", UnknownName},
	}
	for _, tc := range cases {
		if got := ExtractName(tc.text); got != tc.want {
			t.Errorf("ExtractName(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestExtractTime(t *testing.T) {
	cases := []struct {
		text, want, rule string
	}{
		{"TIME 14:13", "14:13", "TIME"},
		{"TIME stihe", "5:49", "known-misread"},
		{"TINE 2;17", "2:17", "TINE"},
		{"TIME 1.33", "1:33", "TIME"},
		{"TIME: 0:30", "0:30", "TIME"},
		{"SEE 5:05", "5:05", "SEE"},
		{"TTME 7:07", "7:07", "TTME"},
		{"TIME 3:75\nplayed 10:46", "10:46", "bare"},
		{"played 0:30", UnknownTime, ""},
		{"TIME: 12:5", UnknownTime, ""},
		{"TIME 1234:56", UnknownTime, ""},
	}
	for _, tc := range cases {
		f := Extract(tc.text)
		if f.Time != tc.want || f.TimeRule != tc.rule {
			t.Errorf("Extract(%q) time = %q via %q, want %q via %q", tc.text, f.Time, f.TimeRule, tc.want, tc.rule)
		}
	}
}

func TestExtractPokedex(t *testing.T) {
	cases := []struct {
		text string
		want int
		rule string
	}{
		{"POKEDEX: | |", 11, "bars"},
		{"POKéDEX || ", 11, "bars"},
		{"POKEDEX: |||", 111, "bars"},
		{"POKEDEX: ||||", 0, ""},
		{"POKEDEX: 1]", 11, "bracket"},
		{"POKEDEX: a9", 49, "a-for-4"},
		{"POKEDEX: 5S", 55, "s-for-5"},
		{"POKEDEX: SS", 55, "s-for-5"},
		{"POKEDEX: 556", 55, "s-for-5"},
		{"POKEDEX: 550", 55, "s-for-5"},
		{"POKEDEX: a12", 41, "a-for-4"},
		{"oPOkeDE* 3b", 36, "thirty-six"},
		{"POKEDEX 3 6", 36, "thirty-six"},
		{"POKEDEX: 361", 36, "thirty-six"},
		{"POKEDEX: 251", 251, "digits"},
		{"POKEDEX: 1 2", 12, "digits"},
		{"POKENEX 25", 25, "digits-nex"},
		{"POKEDEX 1234", 0, ""},
		{"POKEDEX: ||\nPOKEDEX: 25", 11, "bars"},
		{"nothing", 0, ""},
	}
	for _, tc := range cases {
		f := Extract(tc.text)
		if f.Pokedex != tc.want || f.PokedexRule != tc.rule {
			t.Errorf("Extract(%q) pokedex = %d via %q, want %d via %q", tc.text, f.Pokedex, f.PokedexRule, tc.want, tc.rule)
		}
	}
}

func TestFirstMatchTriesLaterMatches(t *testing.T) {
	even := func(m []string) (string, bool) {
		return m[0], (m[0][0]-'0')%2 == 0
	}
	rules := []rule[string]{
		{name: "even", pattern: regexp.MustCompile(`\d`), apply: even},
		{name: "fallback", pattern: regexp.MustCompile(`x`), apply: constant("x")},
	}
	if v, name, ok := firstMatch(rules, "1 3 4 x"); !ok || v != "4" || name != "even" {
		t.Fatalf("got %q %q %v", v, name, ok)
	}
	if v, name, ok := firstMatch(rules, "1 3 x"); !ok || v != "x" || name != "fallback" {
		t.Fatalf("got %q %q %v", v, name, ok)
	}
	if _, _, ok := firstMatch(rules, "1 3"); ok {
		t.Fatalf("expected no match")
	}
}
