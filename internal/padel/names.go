package padel

import (
	"regexp"
	"strings"
)

var (
	rankingSuffix = regexp.MustCompile(`\s*\(\d+\)\s*$`)
	flagCountry   = regexp.MustCompile(`(?i)/([A-Z]{2,3})\.jpg$`)
)

// CleanName strips a trailing ranking suffix: "V. Virseda Sanchez (8)"
// becomes "V. Virseda Sanchez". Qualifier markers such as "(Q)" are kept.
func CleanName(name string) string {
	return strings.TrimSpace(rankingSuffix.ReplaceAllString(name, ""))
}

// NameFunc maps a raw player name to the name to display.
type NameFunc func(string) string

// TeamName joins the display names of both players with sep. A nil fn uses
// the raw names. Ranking suffixes are stripped after fn is applied.
func TeamName(t Team, fn NameFunc, sep string) string {
	if t.Player1 == nil {
		return ""
	}
	name := func(p *Player) string {
		n := p.Name
		if fn != nil {
			n = fn(n)
		}
		return CleanName(n)
	}
	first := name(t.Player1)
	if t.Player2 == nil {
		return first
	}
	if second := name(t.Player2); second != "" {
		return first + sep + second
	}
	return first
}

// CountryFromFlag extracts the country code from a flag image URL such as
// ".../images/flags/ESP.jpg". Returns "" when the URL has no code.
func CountryFromFlag(flagURL string) string {
	m := flagCountry.FindStringSubmatch(flagURL)
	if m == nil {
		return ""
	}
	return strings.ToUpper(m[1])
}

var countryLanguage = map[string]string{
	"ESP": "es-ES",
	"ARG": "es-AR",
	"MEX": "es-MX",
	"ITA": "it-IT",
	"FRA": "fr-FR",
	"POR": "pt-PT",
	"BRA": "pt-BR",
	"GER": "de-DE",
	"SWE": "sv-SE",
	"NED": "nl-NL",
	"BEL": "nl-BE",
	"USA": "en-US",
	"GBR": "en-GB",
	"AUS": "en-AU",
}

// DefaultLanguage is used when no player country maps to a language.
const DefaultLanguage = "en-US"

// LanguageForCountry maps a country code to a BCP 47 language tag.
func LanguageForCountry(code string) string {
	if lang, ok := countryLanguage[code]; ok {
		return lang
	}
	return DefaultLanguage
}

// Language picks the speech language for a match from the players' flags.
// Spanish wins whenever any player maps to it, otherwise the most common
// language, ties broken by first appearance.
func (m Match) Language() string {
	var order []string
	counts := map[string]int{}
	for _, t := range []Team{m.Team1, m.Team2} {
		for _, p := range t.Players() {
			code := CountryFromFlag(p.Flag)
			if code == "" {
				continue
			}
			lang := LanguageForCountry(code)
			if counts[lang] == 0 {
				order = append(order, lang)
			}
			counts[lang]++
		}
	}
	if len(order) == 0 {
		return DefaultLanguage
	}

	best := ""
	for _, lang := range order {
		if strings.HasPrefix(lang, "es") && (best == "" || counts[lang] > counts[best]) {
			best = lang
		}
	}
	if best != "" {
		return best
	}
	for _, lang := range order {
		if best == "" || counts[lang] > counts[best] {
			best = lang
		}
	}
	return best
}
