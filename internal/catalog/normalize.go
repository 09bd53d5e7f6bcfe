package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.Und)

// NormalizeCountry canonicalizes user-supplied country input to the form used
// as a catalog key, so "jordan" and "JORDAN" both resolve to "Jordan". Input
// that matches no known country is returned title-cased as a best effort.
func (c *Catalog) NormalizeCountry(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || strings.EqualFold(trimmed, AllCountries) {
		return AllCountries
	}
	if _, ok := c.byCountry[trimmed]; ok {
		return trimmed
	}
	titled := titleCaser.String(strings.ToLower(trimmed))
	if _, ok := c.byCountry[titled]; ok {
		return titled
	}
	for country := range c.byCountry {
		if strings.EqualFold(country, trimmed) {
			return country
		}
	}
	return titled
}
