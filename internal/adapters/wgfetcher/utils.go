package wgfetcher

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeAddressPart схлопывает пробелы и делает заглавной первую букву,
// ведущие цифры индекса пропускаются: "80802  münchen" -> "80802 München"
func NormalizeAddressPart(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}

	caser := cases.Upper(language.German) // Caser хранит состояние, один на вызов
	runes := []rune(s)
	for i, r := range runes {
		if (r >= '0' && r <= '9') || r == ' ' {
			continue
		}
		if upper := []rune(caser.String(string(r))); len(upper) == 1 {
			runes[i] = upper[0]
		}
		break
	}
	return string(runes)
}
