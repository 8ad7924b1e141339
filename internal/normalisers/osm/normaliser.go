package osm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/everydaystudy/golf-db-loader/internal/core/domain"
	"github.com/everydaystudy/golf-db-loader/internal/core/ports/driven"
	"github.com/everydaystudy/golf-db-loader/internal/fingerprint"
	"github.com/everydaystudy/golf-db-loader/internal/normalisers/text"
	"github.com/everydaystudy/golf-db-loader/internal/slug"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

const (
	// LeisureGolfCourse is the OSM tag value for golf courses.
	LeisureGolfCourse = "golf_course"

	// DefaultCountry is used when an element carries no country tag.
	DefaultCountry = "US"

	// MaxAliases caps the alias list.
	MaxAliases = 10

	// SourcePrefix prefixes the provenance tag.
	SourcePrefix = "osm"
)

var (
	holesPattern   = regexp.MustCompile(`(9|18|27|36|45|54)`)
	aliasSeparator = regexp.MustCompile(`[;,]`)

	aliasKeys   = []string{"alt_name", "short_name", "official_name", "name:en"}
	websiteKeys = []string{"website", "contact:website", "url"}
)

// Normaliser maps OSM elements to courses.
type Normaliser struct {
	now func() time.Time
}

// Option configures a Normaliser.
type Option func(*Normaliser)

// WithClock overrides the clock used for the provenance tag.
func WithClock(now func() time.Time) Option {
	return func(n *Normaliser) {
		n.now = now
	}
}

// New creates a new OSM normaliser.
func New(opts ...Option) *Normaliser {
	n := &Normaliser{now: time.Now}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalise transforms a raw element into a course.
func (n *Normaliser) Normalise(partition domain.Partition, raw domain.RawElement) (*domain.Course, error) {
	tags := raw.Tags
	if leisure, ok := tags["leisure"]; ok && leisure != LeisureGolfCourse {
		return nil, &domain.ValidationError{Field: "leisure", Reason: fmt.Sprintf("unexpected value %q", leisure)}
	}

	name := strings.TrimSpace(tags["name"])
	if name == "" {
		return nil, &domain.ValidationError{Field: "name", Reason: "missing"}
	}

	pos, ok := raw.Position()
	if !ok {
		return nil, &domain.ValidationError{Field: "coordinates", Reason: "missing lat/lon and center"}
	}

	city, state, country := locality(tags)
	if country == "" {
		country = DefaultCountry
	}
	if partition.Country != "" && country != partition.Country {
		return nil, &domain.ValidationError{
			Field:  "country",
			Reason: fmt.Sprintf("%s is outside partition %s", country, partition.ISO3166()),
		}
	}
	if state == "" {
		state = partition.Code
	}

	norm := text.Normalize(name)
	c := &domain.Course{
		OSMID:          osmID(raw),
		Name:           name,
		NameLower:      text.Lower(name),
		NameNorm:       norm,
		Aliases:        aliases(tags),
		City:           city,
		State:          state,
		Country:        country,
		Lat:            pos.Lat,
		Lng:            pos.Lon,
		Holes:          holes(tags),
		Website:        website(tags),
		NameTokens:     text.Tokenize(name),
		NameNgrams:     text.NGrams(name, text.DefaultNGramSize),
		NameTokensNorm: text.Tokenize(norm),
		NameNgramsNorm: text.NGrams(norm, text.DefaultNGramSize),
		Source:         SourcePrefix + ":" + n.now().UTC().Format("2006-01"),
	}
	c.ID = slug.Generate(c.Name, c.City, c.State)
	if c.ID == "" {
		return nil, &domain.ValidationError{Field: "id", Reason: "name, city and state produce an empty slug"}
	}
	c.Fingerprint = fingerprint.Course(*c)

	return c, nil
}

// osmID formats "<type>:<id>", or "" when the element has no type.
func osmID(raw domain.RawElement) string {
	if raw.Type == "" {
		return ""
	}
	return raw.Type + ":" + strconv.FormatInt(raw.ID, 10)
}

// locality extracts city, state and country using the first tag present.
func locality(tags map[string]string) (city, state, country string) {
	city = firstTag(tags, "addr:city", "is_in:city")
	state = firstTag(tags, "addr:state", "is_in:state_code", "is_in:state")
	country = firstTag(tags, "addr:country", "is_in:country_code", "is_in:country")

	if len(country) == 2 {
		country = strings.ToUpper(country)
	} else {
		switch strings.ToLower(country) {
		case "usa", "united states", "united states of america":
			country = "US"
		}
	}
	if len(state) == 2 {
		state = strings.ToUpper(state)
	}
	return city, state, country
}

// holes parses a hole count from golf:holes or holes.
// Strings containing a standard layout size win; otherwise a plain integer
// between 1 and 54 is accepted.
func holes(tags map[string]string) *int {
	v := firstTag(tags, "golf:holes", "holes")
	if v == "" {
		return nil
	}
	if m := holesPattern.FindString(v); m != "" {
		h, _ := strconv.Atoi(m)
		return &h
	}
	if h, err := strconv.Atoi(v); err == nil && h > 0 && h <= 54 {
		return &h
	}
	return nil
}

// website returns the first http(s) URL among the website keys.
func website(tags map[string]string) string {
	for _, key := range websiteKeys {
		if v := strings.TrimSpace(tags[key]); strings.HasPrefix(v, "http") {
			return v
		}
	}
	return ""
}

// aliases collects alternative names, deduplicated case-insensitively.
func aliases(tags map[string]string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, key := range aliasKeys {
		v, ok := tags[key]
		if !ok {
			continue
		}
		for _, part := range aliasSeparator.Split(v, -1) {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			lower := strings.ToLower(part)
			if seen[lower] {
				continue
			}
			seen[lower] = true
			out = append(out, part)
			if len(out) == MaxAliases {
				return out
			}
		}
	}
	return out
}

func firstTag(tags map[string]string, keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(tags[key]); v != "" {
			return v
		}
	}
	return ""
}
