package feed

import (
	"time"
)

// Candidate video types

type Item struct {
	ID          string // Platform video id
	Title       string
	Link        string // Permalink handed to the report
	Channel     string // Display name of the channel that announced the video
	PublishedAt time.Time
}

// Configuration types

type PolicyType string

const (
	PolicyLatest      PolicyType = "latest"
	PolicySmartSelect PolicyType = "smart_select"
)

type Config struct {
	ID          string         // Derived from filename (without .yml extension)
	Name        string         `yaml:"name"`      // Display name used in reports
	Reference   string         `yaml:"reference"` // Handle (@name) or channel URL
	ListingURL  string         `yaml:"listing_url"`
	SearchQuery string         `yaml:"search_query"`
	Settings    ConfigSettings `yaml:"settings"`
	Policy      Policy         `yaml:"policy"`
	Markers     Markers        `yaml:"markers"`
}

type ConfigSettings struct {
	Enabled *bool `yaml:"enabled"` // nil means enabled
}

type Policy struct {
	Type    PolicyType `yaml:"type" json:"type"`
	Include []string   `yaml:"include" json:"include,omitempty"`
	Exclude []string   `yaml:"exclude" json:"exclude,omitempty"`
}

// Markers are title tokens recognised regardless of the policy's own terms.
type Markers struct {
	ShortForm   []string `yaml:"short_form" json:"short_form"`
	MembersOnly []string `yaml:"members_only" json:"members_only"`
	Subject     []string `yaml:"subject" json:"subject"`
}

var DefaultMarkers = Markers{
	ShortForm:   []string{"Shorts", "ショート"},
	MembersOnly: []string{"メンバー限定", "Members only"},
	Subject:     []string{"ドル", "円"},
}

func (c *Config) IsEnabled() bool {
	return c.Settings.Enabled == nil || *c.Settings.Enabled
}

// Query returns the text used for the channel search fallback.
func (c *Config) Query() string {
	if c.SearchQuery != "" {
		return c.SearchQuery
	}
	return c.Name
}
