package models

import (
	"time"

	"gorm.io/gorm"
)

// MediaKind identifies what a MediaItem points at.
type MediaKind string

const (
	MediaCover      MediaKind = "cover"
	MediaScreenshot MediaKind = "screenshot"
	MediaArtwork    MediaKind = "artwork"
	MediaVideo      MediaKind = "video"
)

// WebsiteCategory is the local enum for a game's external links.
type WebsiteCategory string

const (
	WebsiteOfficial  WebsiteCategory = "official"
	WebsiteWikipedia WebsiteCategory = "wikipedia"
	WebsiteTwitch    WebsiteCategory = "twitch"
	WebsiteYoutube   WebsiteCategory = "youtube"
	WebsiteSteam     WebsiteCategory = "steam"
	WebsiteReddit    WebsiteCategory = "reddit"
	WebsiteItch      WebsiteCategory = "itch"
	WebsiteEpic      WebsiteCategory = "epic"
	WebsiteGOG       WebsiteCategory = "gog"
	WebsiteDiscord   WebsiteCategory = "discord"
)

// Game is the canonical local record for one imported title. One row
// per distinct external catalog id; the slug is globally unique.
type Game struct {
	gorm.Model
	Title        string `gorm:"not null"`
	Slug         string `gorm:"uniqueIndex;not null"`
	Summary      string
	Storyline    string
	ReleaseDate  *time.Time
	ExternalID   *int64 `gorm:"uniqueIndex"`
	ExternalSlug string
	ExternalURL  string
	CoverURL     string
	CoverThumb   string

	// Legacy scalar display fields, kept in sync with the first
	// developer/publisher company links.
	Developer string
	Publisher string

	LastSyncedAt time.Time
	Complete     bool

	Genres             []*Genre             `gorm:"many2many:game_genres;"`
	Platforms          []*Platform          `gorm:"many2many:game_platforms;"`
	Themes             []*Theme             `gorm:"many2many:game_themes;"`
	Keywords           []*Keyword           `gorm:"many2many:game_keywords;"`
	PlayerPerspectives []*PlayerPerspective `gorm:"many2many:game_player_perspectives;"`
	GameModes          []*GameMode          `gorm:"many2many:game_game_modes;"`

	Companies []GameCompany
	Websites  []Website
	Media     []MediaItem
	Rating    *RatingSnapshot
	Playtime  *PlaytimeSnapshot
}

type Genre struct {
	gorm.Model
	Name         string `gorm:"not null"`
	ExternalID   *int64 `gorm:"uniqueIndex"`
	ExternalName string
}

type Platform struct {
	gorm.Model
	Name         string `gorm:"not null"`
	ExternalID   *int64 `gorm:"uniqueIndex"`
	ExternalName string
}

type Company struct {
	gorm.Model
	Name         string `gorm:"not null"`
	ExternalID   *int64 `gorm:"uniqueIndex"`
	ExternalName string
}

type Theme struct {
	gorm.Model
	Name         string `gorm:"not null"`
	ExternalID   *int64 `gorm:"uniqueIndex"`
	ExternalName string
}

type Keyword struct {
	gorm.Model
	Name         string `gorm:"not null"`
	ExternalID   *int64 `gorm:"uniqueIndex"`
	ExternalName string
}

type PlayerPerspective struct {
	gorm.Model
	Name         string `gorm:"not null"`
	ExternalID   *int64 `gorm:"uniqueIndex"`
	ExternalName string
}

type GameMode struct {
	gorm.Model
	Name         string `gorm:"not null"`
	ExternalID   *int64 `gorm:"uniqueIndex"`
	ExternalName string
}

// GameCompany links a game to a company with its role on that game.
type GameCompany struct {
	gorm.Model
	GameID      uint `gorm:"index"`
	CompanyID   uint `gorm:"index"`
	Company     Company
	IsDeveloper bool
	IsPublisher bool
}

type Website struct {
	gorm.Model
	GameID   uint `gorm:"index"`
	Category WebsiteCategory
	URL      string
}

// MediaItem rows are append-only; re-imports add new rows rather than
// replacing old ones.
type MediaItem struct {
	gorm.Model
	GameID     uint `gorm:"index"`
	Kind       MediaKind
	URL        string
	ThumbURL   string
	ExternalID *int64
	Width      int
	Height     int
	Primary    bool
}

// RatingSnapshot is a point-in-time copy of the catalog's aggregate
// ratings, overwritten on each sync.
type RatingSnapshot struct {
	gorm.Model
	GameID            uint `gorm:"uniqueIndex"`
	UserRating        float64
	UserRatingCount   int
	CriticRating      float64
	CriticRatingCount int
	LastSyncedAt      time.Time
}

// PlaytimeSnapshot holds completion-time statistics from the playtime
// proxy. Absent when the lookup yields nothing.
type PlaytimeSnapshot struct {
	gorm.Model
	GameID               uint `gorm:"uniqueIndex"`
	MainSeconds          int
	MainPolled           int
	MainExtraSeconds     int
	MainExtraPolled      int
	CompletionistSeconds int
	CompletionistPolled  int
	AllStylesSeconds     int
	AllStylesPolled      int
	MatchedTitle         string
	MatchedExternalID    int64
}
