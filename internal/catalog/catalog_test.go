package catalog_test

import (
	"testing"

	"aircheck/internal/catalog"
)

const fixture = `{
  "stations_by_country": {
    "Jordan": [
      {"name": "Radio Hala", "url": "http://example.net/hala", "state": "Amman", "bitrate": 128},
      {"name": "Yarmouk FM", "url": "http://example.net/yarmouk", "state": "Irbid"}
    ],
    "Egypt": [
      {"name": "Nile FM", "url": "http://example.net/nile", "state": "Cairo"},
      {"name": "Silent FM", "url": ""}
    ]
  },
  "stations_by_city": {
    "Amman": [
      {"name": "Radio Hala", "url": "http://example.net/hala"}
    ]
  }
}`

func mustParse(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Parse([]byte(fixture))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return c
}

func TestParseDropsStationsWithoutURL(t *testing.T) {
	c := mustParse(t)
	if got := c.Len(); got != 3 {
		t.Fatalf("Len = %d, want 3 (empty-URL station dropped)", got)
	}
	if got := len(c.ByCountry("Egypt")); got != 1 {
		t.Fatalf("Egypt stations = %d, want 1", got)
	}
}

func TestCountriesSorted(t *testing.T) {
	c := mustParse(t)
	countries := c.Countries()
	if len(countries) != 2 || countries[0] != "Egypt" || countries[1] != "Jordan" {
		t.Fatalf("Countries = %v", countries)
	}
}

func TestStationsCarryCountryTag(t *testing.T) {
	c := mustParse(t)
	for _, s := range c.ByCountry("Jordan") {
		if s.Country != "Jordan" {
			t.Fatalf("station %q country = %q, want Jordan", s.Name, s.Country)
		}
	}
}

func TestFind(t *testing.T) {
	c := mustParse(t)

	if _, ok := c.Find("Jordan", "Radio Hala"); !ok {
		t.Fatal("Find with country filter failed")
	}
	if _, ok := c.Find("", "Nile FM"); !ok {
		t.Fatal("Find across all countries failed")
	}
	if _, ok := c.Find("Egypt", "Radio Hala"); ok {
		t.Fatal("Find matched a station outside the filtered country")
	}
}

func TestSelect(t *testing.T) {
	c := mustParse(t)

	all := c.Select(catalog.Filter{})
	if len(all) != 3 {
		t.Fatalf("Select all = %d stations, want 3", len(all))
	}

	jordan := c.Select(catalog.Filter{Country: "Jordan"})
	if len(jordan) != 2 {
		t.Fatalf("Select Jordan = %d stations, want 2", len(jordan))
	}

	capped := c.Select(catalog.Filter{Max: 2})
	if len(capped) != 2 {
		t.Fatalf("Select capped = %d stations, want 2", len(capped))
	}

	unknown := c.Select(catalog.Filter{Country: "Atlantis"})
	if len(unknown) != 0 {
		t.Fatalf("Select unknown country = %d stations, want 0", len(unknown))
	}
}

func TestCitiesForCountry(t *testing.T) {
	c := mustParse(t)
	cities := c.CitiesForCountry("Jordan")
	if len(cities) != 2 || cities[0] != "Amman" || cities[1] != "Irbid" {
		t.Fatalf("CitiesForCountry = %v", cities)
	}
}
