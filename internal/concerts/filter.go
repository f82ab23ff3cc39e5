// Package concerts holds the concert search index and the hybrid
// recommendation engine built on it.
package concerts

import (
	"regexp"
	"strconv"
	"strings"
)

// Index field names.
const (
	FieldID               = "id"
	FieldName             = "name"
	FieldArtist           = "artist"
	FieldGenre            = "genre"
	FieldDescription      = "description"
	FieldVenue            = "venue"
	FieldLocation         = "location"
	FieldDate             = "date"
	FieldTime             = "time"
	FieldPriceMin         = "price_min"
	FieldPriceMax         = "price_max"
	FieldTicketsAvailable = "tickets_available"
	FieldAgeRestriction   = "age_restriction"
	FieldEmbedding        = "embedding"
)

// ReturnFields are the stored fields fetched for every hit.
var ReturnFields = []string{
	FieldID, FieldName, FieldArtist, FieldGenre, FieldDescription, FieldVenue,
	FieldLocation, FieldDate, FieldTime, FieldPriceMin, FieldPriceMax,
	FieldTicketsAvailable, FieldAgeRestriction,
}

// Filter is the backend-neutral conjunction of hard constraints on a search.
type Filter struct {
	// Genres matches a concert carrying any of the tags.
	Genres []string
	// City matches the location tag exactly.
	City string
	// MaxPrice is an inclusive upper bound on price_min.
	MaxPrice *float64
	// TicketsAvailable matches the availability tag.
	TicketsAvailable string
}

// BuildFilter derives the search filter from the caller's constraints.
// Only the part of location before the first comma is kept, so
// "Austin, TX" filters on the city tag "Austin". A max price that is zero or
// negative is treated as absent. Available tickets are always required.
func BuildFilter(genres []string, location string, maxPrice *float64) Filter {
	f := Filter{TicketsAvailable: "true"}

	for _, g := range genres {
		if strings.TrimSpace(g) != "" {
			f.Genres = append(f.Genres, g)
		}
	}

	if location != "" {
		f.City = strings.TrimSpace(strings.SplitN(location, ",", 2)[0])
	}

	if maxPrice != nil && *maxPrice > 0 {
		v := *maxPrice
		f.MaxPrice = &v
	}

	return f
}

var tagEscaper = regexp.MustCompile(`([,.<>{}\[\]\\"':;!@#$%^&*()\-+=~/ |])`)

func escapeTag(v string) string {
	return tagEscaper.ReplaceAllString(v, `\$1`)
}

// RedisQuery renders the filter in RediSearch query syntax.
func (f Filter) RedisQuery() string {
	var parts []string

	if len(f.Genres) > 0 {
		escaped := make([]string, len(f.Genres))
		for i, g := range f.Genres {
			escaped[i] = escapeTag(g)
		}
		parts = append(parts, "@"+FieldGenre+":{"+strings.Join(escaped, "|")+"}")
	}
	if f.City != "" {
		parts = append(parts, "@"+FieldLocation+":{"+escapeTag(f.City)+"}")
	}
	if f.MaxPrice != nil {
		parts = append(parts, "@"+FieldPriceMin+":[-inf "+formatNumber(*f.MaxPrice)+"]")
	}
	if f.TicketsAvailable != "" {
		parts = append(parts, "@"+FieldTicketsAvailable+":{"+escapeTag(f.TicketsAvailable)+"}")
	}

	switch len(parts) {
	case 0:
		return "*"
	case 1:
		return parts[0]
	default:
		return "(" + strings.Join(parts, " ") + ")"
	}
}

// ElasticsearchClauses renders the filter as bool filter clauses over the
// keyword tag fields of the Elasticsearch mapping.
func (f Filter) ElasticsearchClauses() []interface{} {
	clauses := []interface{}{}

	if len(f.Genres) > 0 {
		clauses = append(clauses, map[string]interface{}{
			"terms": map[string]interface{}{esTagField(FieldGenre): f.Genres},
		})
	}
	if f.City != "" {
		clauses = append(clauses, map[string]interface{}{
			"term": map[string]interface{}{esTagField(FieldLocation): f.City},
		})
	}
	if f.MaxPrice != nil {
		clauses = append(clauses, map[string]interface{}{
			"range": map[string]interface{}{FieldPriceMin: map[string]interface{}{"lte": *f.MaxPrice}},
		})
	}
	if f.TicketsAvailable != "" {
		clauses = append(clauses, map[string]interface{}{
			"term": map[string]interface{}{FieldTicketsAvailable: f.TicketsAvailable},
		})
	}

	return clauses
}

// SplitTags splits a comma-separated tag list the way the index does.
func SplitTags(v string) []string {
	var tags []string
	for _, t := range strings.Split(v, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
