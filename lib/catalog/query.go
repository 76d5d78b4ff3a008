package catalog

import (
	"fmt"
	"strings"
)

// Query is one request in the catalog's plain-text query language. The
// wire form is "fields a,b,c; where ...; sort ...; limit N;".
type Query struct {
	Fields []string
	Where  string
	Sort   string
	Limit  int
}

func (q Query) String() string {
	var b strings.Builder
	if len(q.Fields) > 0 {
		fmt.Fprintf(&b, "fields %s;", strings.Join(q.Fields, ","))
	}
	if q.Where != "" {
		fmt.Fprintf(&b, " where %s;", q.Where)
	}
	if q.Sort != "" {
		fmt.Fprintf(&b, " sort %s;", q.Sort)
	}
	if q.Limit > 0 {
		fmt.Fprintf(&b, " limit %d;", q.Limit)
	}
	return strings.TrimSpace(b.String())
}

// gameFields is the projection used for every query against the games
// resource. Sub-entity fields are expanded with dot notation.
var gameFields = []string{
	"id", "name", "slug", "url", "summary", "storyline",
	"first_release_date",
	"rating", "rating_count", "aggregated_rating", "aggregated_rating_count",
	"cover.url", "cover.width", "cover.height",
	"screenshots.url", "screenshots.width", "screenshots.height",
	"artworks.url", "artworks.width", "artworks.height",
	"videos.name", "videos.video_id",
	"genres.name", "genres.slug",
	"platforms.name", "platforms.slug",
	"themes.name", "themes.slug",
	"keywords.name", "keywords.slug",
	"player_perspectives.name", "player_perspectives.slug",
	"game_modes.name", "game_modes.slug",
	"involved_companies.company.name", "involved_companies.developer", "involved_companies.publisher",
	"websites.category", "websites.url",
}

// taxonomyFields is the fixed projection for taxonomy list fetches.
var taxonomyFields = []string{"id", "name", "slug"}
