package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// AllCountries is the filter value that selects every station regardless of country.
const AllCountries = "All Countries"

// Station is a named network stream source with location tags.
type Station struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Country  string `json:"country,omitempty"`
	City     string `json:"state,omitempty"`
	Bitrate  int    `json:"bitrate,omitempty"`
	Language string `json:"language,omitempty"`
	Votes    int    `json:"votes,omitempty"`
}

// Catalog holds the loaded station set keyed by country and city.
type Catalog struct {
	byCountry map[string][]Station
	byCity    map[string][]Station
	total     int
}

type catalogFile struct {
	StationsByCountry map[string][]Station `json:"stations_by_country"`
	StationsByCity    map[string][]Station `json:"stations_by_city"`
}

// Load reads and parses the station catalog from path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a catalog from raw JSON.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{
		byCountry: make(map[string][]Station, len(file.StationsByCountry)),
		byCity:    make(map[string][]Station, len(file.StationsByCity)),
	}
	for country, stations := range file.StationsByCountry {
		tagged := make([]Station, 0, len(stations))
		for _, s := range stations {
			if strings.TrimSpace(s.URL) == "" {
				continue
			}
			s.Country = country
			tagged = append(tagged, s)
		}
		if len(tagged) == 0 {
			continue
		}
		c.byCountry[country] = tagged
		c.total += len(tagged)
	}
	for city, stations := range file.StationsByCity {
		kept := make([]Station, 0, len(stations))
		for _, s := range stations {
			if strings.TrimSpace(s.URL) == "" {
				continue
			}
			if s.City == "" {
				s.City = city
			}
			kept = append(kept, s)
		}
		if len(kept) > 0 {
			c.byCity[city] = kept
		}
	}
	return c, nil
}

// Len returns the total number of stations across all countries.
func (c *Catalog) Len() int {
	return c.total
}

// Countries returns the sorted list of countries with at least one station.
func (c *Catalog) Countries() []string {
	countries := make([]string, 0, len(c.byCountry))
	for country := range c.byCountry {
		countries = append(countries, country)
	}
	sort.Strings(countries)
	return countries
}

// ByCountry returns the stations for a country, or nil when unknown.
func (c *Catalog) ByCountry(country string) []Station {
	stations := c.byCountry[country]
	cp := make([]Station, len(stations))
	copy(cp, stations)
	return cp
}

// ByCity returns the stations for a city, or nil when unknown.
func (c *Catalog) ByCity(city string) []Station {
	stations := c.byCity[city]
	cp := make([]Station, len(stations))
	copy(cp, stations)
	return cp
}

// CitiesForCountry returns the sorted city names present in a country's stations.
func (c *Catalog) CitiesForCountry(country string) []string {
	seen := map[string]struct{}{}
	for _, s := range c.byCountry[country] {
		city := strings.TrimSpace(s.City)
		if city == "" {
			continue
		}
		seen[city] = struct{}{}
	}
	cities := make([]string, 0, len(seen))
	for city := range seen {
		cities = append(cities, city)
	}
	sort.Strings(cities)
	return cities
}

// Find locates a station by name, optionally narrowed by country.
func (c *Catalog) Find(country, name string) (Station, bool) {
	if country != "" && country != AllCountries {
		for _, s := range c.byCountry[country] {
			if s.Name == name {
				return s, true
			}
		}
		return Station{}, false
	}
	for _, countryName := range c.Countries() {
		for _, s := range c.byCountry[countryName] {
			if s.Name == name {
				return s, true
			}
		}
	}
	return Station{}, false
}

// Filter bounds a bulk selection of stations.
type Filter struct {
	// Country restricts the selection; empty or AllCountries selects everything.
	Country string
	// Max caps the number of returned stations; zero means no cap.
	Max int
}

// Select returns the stations matching a filter, in stable country order.
func (c *Catalog) Select(filter Filter) []Station {
	var selected []Station
	if filter.Country != "" && filter.Country != AllCountries {
		selected = append(selected, c.byCountry[filter.Country]...)
	} else {
		for _, country := range c.Countries() {
			selected = append(selected, c.byCountry[country]...)
		}
	}
	if filter.Max > 0 && filter.Max < len(selected) {
		selected = selected[:filter.Max]
	}
	return selected
}
