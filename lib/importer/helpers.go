package importer

import (
	"fmt"
	"strings"

	gosimple "github.com/gosimple/slug"
)

// Image size tokens understood by the catalog's image CDN. Responses
// always reference the thumbnail rendition; other sizes are derived by
// swapping the token in the URL path.
const (
	sizeThumb         = "t_thumb"
	sizeCoverBig      = "t_cover_big"
	sizeScreenshotBig = "t_screenshot_big"
)

// videoHost is the external host all catalog video ids resolve
// against.
const videoHost = "https://www.youtube.com"

func slugify(title string) string {
	return gosimple.Make(title)
}

// imageURL normalizes a catalog image reference to an absolute https
// URL at the requested size.
func imageURL(raw, size string) string {
	if raw == "" {
		return ""
	}
	u := raw
	if strings.HasPrefix(u, "//") {
		u = "https:" + u
	}
	if size != sizeThumb {
		u = strings.Replace(u, sizeThumb, size, 1)
	}
	return u
}

func videoURL(videoID string) string {
	return fmt.Sprintf("%s/watch?v=%s", videoHost, videoID)
}

func videoThumbURL(videoID string) string {
	return fmt.Sprintf("https://img.youtube.com/vi/%s/hqdefault.jpg", videoID)
}
