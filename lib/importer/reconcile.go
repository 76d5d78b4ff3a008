package importer

import (
	"log/slog"

	"github.com/semihsari152/coregame/lib/catalog"
	"github.com/semihsari152/coregame/lib/store"
	"github.com/semihsari152/coregame/models"
)

// linkRefs resolves a slice of remote taxonomy references against the
// store under the given policy. Failures are absorbed per entry: a
// store error or an unmatched MatchOnly entry logs and skips, so one
// bad reference never costs the rest of the step.
func linkRefs[T any](run *pipelineRun, refs []catalog.NamedRef, policy store.ResolvePolicy, kind string, construct func(catalog.NamedRef) *T) []*T {
	var linked []*T
	for _, ref := range refs {
		ref := ref
		var build func() *T
		if construct != nil {
			build = func() *T { return construct(ref) }
		}
		found, err := store.Resolve(run.tx, store.TaxonomyKey{ExternalID: ref.ID, Name: ref.Name}, policy, build)
		if err != nil {
			run.logger.Warn("Failed to resolve taxonomy entry",
				slog.String("kind", kind),
				slog.Int64("external_id", ref.ID),
				slog.String("name", ref.Name),
				slog.Any("error", err))
			continue
		}
		if found == nil {
			run.logger.Warn("Skipping unmatched taxonomy entry",
				slog.String("kind", kind),
				slog.Int64("external_id", ref.ID),
				slog.String("name", ref.Name))
			continue
		}
		linked = append(linked, found)
	}
	return linked
}

// reconcileGenres links only genres whose external id already exists
// locally. Unmatched genres are skipped, never created: the taxonomy
// canon is curated and must not grow from unreviewed remote
// categories.
func (i *Importer) reconcileGenres(run *pipelineRun) error {
	run.game.Genres = linkRefs[models.Genre](run, run.record.Genres, store.MatchOnly, "genre", nil)
	return nil
}

func (i *Importer) reconcilePlatforms(run *pipelineRun) error {
	run.game.Platforms = linkRefs(run, run.record.Platforms, store.MatchThenCreate, "platform",
		func(ref catalog.NamedRef) *models.Platform {
			return &models.Platform{Name: ref.Name, ExternalID: &ref.ID, ExternalName: ref.Name}
		})
	return nil
}

func (i *Importer) reconcileThemes(run *pipelineRun) error {
	run.game.Themes = linkRefs(run, run.record.Themes, store.MatchThenCreate, "theme",
		func(ref catalog.NamedRef) *models.Theme {
			return &models.Theme{Name: ref.Name, ExternalID: &ref.ID, ExternalName: ref.Name}
		})
	return nil
}

func (i *Importer) reconcileKeywords(run *pipelineRun) error {
	run.game.Keywords = linkRefs(run, run.record.Keywords, store.MatchThenCreate, "keyword",
		func(ref catalog.NamedRef) *models.Keyword {
			return &models.Keyword{Name: ref.Name, ExternalID: &ref.ID, ExternalName: ref.Name}
		})
	return nil
}

func (i *Importer) reconcilePerspectives(run *pipelineRun) error {
	run.game.PlayerPerspectives = linkRefs(run, run.record.PlayerPerspectives, store.MatchThenCreate, "player perspective",
		func(ref catalog.NamedRef) *models.PlayerPerspective {
			return &models.PlayerPerspective{Name: ref.Name, ExternalID: &ref.ID, ExternalName: ref.Name}
		})
	return nil
}

func (i *Importer) reconcileGameModes(run *pipelineRun) error {
	run.game.GameModes = linkRefs(run, run.record.GameModes, store.MatchThenCreate, "game mode",
		func(ref catalog.NamedRef) *models.GameMode {
			return &models.GameMode{Name: ref.Name, ExternalID: &ref.ID, ExternalName: ref.Name}
		})
	return nil
}

// reconcileCompanies resolves each involved company and links it with
// its role flags. The first developer and publisher also populate the
// legacy scalar display fields.
func (i *Importer) reconcileCompanies(run *pipelineRun) error {
	// On refresh, matching link rows keep their ids so the save
	// updates them instead of inserting duplicates.
	existingLinks := make(map[uint]models.GameCompany, len(run.game.Companies))
	for _, link := range run.game.Companies {
		existingLinks[link.CompanyID] = link
	}

	var links []models.GameCompany
	for _, involved := range run.record.InvolvedCompanies {
		involved := involved
		ref := involved.Company
		company, err := store.Resolve(run.tx, store.TaxonomyKey{ExternalID: ref.ID, Name: ref.Name}, store.MatchThenCreate,
			func() *models.Company {
				return &models.Company{Name: ref.Name, ExternalID: &ref.ID, ExternalName: ref.Name}
			})
		if err != nil {
			run.logger.Warn("Failed to resolve company",
				slog.Int64("external_id", ref.ID),
				slog.String("name", ref.Name),
				slog.Any("error", err))
			continue
		}
		if company == nil {
			continue
		}

		link := models.GameCompany{
			CompanyID:   company.ID,
			Company:     *company,
			IsDeveloper: involved.Developer,
			IsPublisher: involved.Publisher,
		}
		if prev, ok := existingLinks[company.ID]; ok {
			link.Model = prev.Model
			link.GameID = prev.GameID
		}
		links = append(links, link)

		if involved.Developer && run.game.Developer == "" {
			run.game.Developer = company.Name
		}
		if involved.Publisher && run.game.Publisher == "" {
			run.game.Publisher = company.Name
		}
	}
	run.game.Companies = links
	return nil
}

// websiteCategories maps the catalog's numeric website category codes
// to the local enum. Codes with no mapping are dropped silently.
var websiteCategories = map[int]models.WebsiteCategory{
	1:  models.WebsiteOfficial,
	3:  models.WebsiteWikipedia,
	6:  models.WebsiteTwitch,
	9:  models.WebsiteYoutube,
	13: models.WebsiteSteam,
	14: models.WebsiteReddit,
	15: models.WebsiteItch,
	16: models.WebsiteEpic,
	17: models.WebsiteGOG,
	18: models.WebsiteDiscord,
}

func (i *Importer) reconcileWebsites(run *pipelineRun) error {
	existing := make(map[string]models.Website, len(run.game.Websites))
	for _, site := range run.game.Websites {
		existing[string(site.Category)+"|"+site.URL] = site
	}

	var sites []models.Website
	for _, ref := range run.record.Websites {
		category, ok := websiteCategories[ref.Category]
		if !ok {
			continue
		}
		site := models.Website{Category: category, URL: ref.URL}
		if prev, ok := existing[string(category)+"|"+ref.URL]; ok {
			site = prev
		}
		sites = append(sites, site)
	}
	run.game.Websites = sites
	return nil
}

// ingestMedia appends one media row for the cover (marked primary) and
// one for every screenshot, artwork, and video. Media is additive: a
// refresh appends new rows rather than replacing earlier ones.
func (i *Importer) ingestMedia(run *pipelineRun) error {
	record := run.record

	if record.Cover != nil {
		cover := record.Cover
		run.game.Media = append(run.game.Media, models.MediaItem{
			Kind:       models.MediaCover,
			URL:        imageURL(cover.URL, sizeCoverBig),
			ThumbURL:   imageURL(cover.URL, sizeThumb),
			ExternalID: &cover.ID,
			Width:      cover.Width,
			Height:     cover.Height,
			Primary:    true,
		})
	}

	for _, shot := range record.Screenshots {
		shot := shot
		run.game.Media = append(run.game.Media, models.MediaItem{
			Kind:       models.MediaScreenshot,
			URL:        imageURL(shot.URL, sizeScreenshotBig),
			ThumbURL:   imageURL(shot.URL, sizeThumb),
			ExternalID: &shot.ID,
			Width:      shot.Width,
			Height:     shot.Height,
		})
	}

	for _, art := range record.Artworks {
		art := art
		run.game.Media = append(run.game.Media, models.MediaItem{
			Kind:       models.MediaArtwork,
			URL:        imageURL(art.URL, sizeScreenshotBig),
			ThumbURL:   imageURL(art.URL, sizeThumb),
			ExternalID: &art.ID,
			Width:      art.Width,
			Height:     art.Height,
		})
	}

	for _, video := range record.Videos {
		video := video
		if video.VideoID == "" {
			continue
		}
		run.game.Media = append(run.game.Media, models.MediaItem{
			Kind:       models.MediaVideo,
			URL:        videoURL(video.VideoID),
			ThumbURL:   videoThumbURL(video.VideoID),
			ExternalID: &video.ID,
		})
	}
	return nil
}
