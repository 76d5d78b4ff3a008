package catalog

// Record is one game as the remote catalog returns it. Field names
// follow the catalog's JSON; absent fields decode to zero values.
type Record struct {
	ID                    int64             `json:"id"`
	Name                  string            `json:"name"`
	Slug                  string            `json:"slug"`
	URL                   string            `json:"url"`
	Summary               string            `json:"summary"`
	Storyline             string            `json:"storyline"`
	FirstReleaseDate      int64             `json:"first_release_date"`
	Rating                float64           `json:"rating"`
	RatingCount           int               `json:"rating_count"`
	AggregatedRating      float64           `json:"aggregated_rating"`
	AggregatedRatingCount int               `json:"aggregated_rating_count"`
	Cover                 *Image            `json:"cover"`
	Screenshots           []Image           `json:"screenshots"`
	Artworks              []Image           `json:"artworks"`
	Videos                []Video           `json:"videos"`
	Genres                []NamedRef        `json:"genres"`
	Platforms             []NamedRef        `json:"platforms"`
	Themes                []NamedRef        `json:"themes"`
	Keywords              []NamedRef        `json:"keywords"`
	PlayerPerspectives    []NamedRef        `json:"player_perspectives"`
	GameModes             []NamedRef        `json:"game_modes"`
	InvolvedCompanies     []InvolvedCompany `json:"involved_companies"`
	Websites              []WebsiteRef      `json:"websites"`
}

// NamedRef is the expanded form of a taxonomy reference (genre,
// platform, theme, keyword, perspective, game mode, company).
type NamedRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Image covers cover/screenshot/artwork entries.
type Image struct {
	ID     int64  `json:"id"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Video carries only a host-side video id; the playable URL is
// synthesized against the video host.
type Video struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	VideoID string `json:"video_id"`
}

// InvolvedCompany links a company to a game with its role flags.
type InvolvedCompany struct {
	ID        int64    `json:"id"`
	Company   NamedRef `json:"company"`
	Developer bool     `json:"developer"`
	Publisher bool     `json:"publisher"`
}

// WebsiteRef is a remote website entry; Category is the catalog's
// numeric category code.
type WebsiteRef struct {
	ID       int64  `json:"id"`
	Category int    `json:"category"`
	URL      string `json:"url"`
}

// TimeToBeatStub is the catalog's own advisory completion-time
// resource, keyed by game id. All durations are in seconds.
type TimeToBeatStub struct {
	ID         int64 `json:"id"`
	GameID     int64 `json:"game_id"`
	Hastily    int   `json:"hastily"`
	Normally   int   `json:"normally"`
	Completely int   `json:"completely"`
	Count      int   `json:"count"`
}

// TaxonomyKind names a catalog taxonomy resource for list fetches.
type TaxonomyKind string

const (
	TaxonomyGenres       TaxonomyKind = "genres"
	TaxonomyThemes       TaxonomyKind = "themes"
	TaxonomyGameModes    TaxonomyKind = "game_modes"
	TaxonomyPerspectives TaxonomyKind = "player_perspectives"
	TaxonomyPlatforms    TaxonomyKind = "platforms"
)
