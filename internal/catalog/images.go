package catalog

import (
	"strings"

	"github.com/mrlokans/booklend/internal/entities"
)

// Placeholder covers used when a book has no uploaded image.
const (
	PlaceholderFiction   = "https://images.unsplash.com/photo-1544947950-fa07a98d237f?w=400&h=600&fit=crop"
	PlaceholderFantasy   = "https://images.unsplash.com/photo-1518770660439-4636190af475?w=400&h=600&fit=crop"
	PlaceholderRomance   = "https://images.unsplash.com/photo-1474552226712-ac0f0961a954?w=400&h=600&fit=crop"
	PlaceholderDystopian = "https://images.unsplash.com/photo-1531746790731-6c087fecd65a?w=400&h=600&fit=crop"
	PlaceholderDefault   = "https://images.unsplash.com/photo-1543002588-bfa74002ed7e?w=400&h=600&fit=crop"
)

var genrePlaceholders = map[string]string{
	"Fiction":   PlaceholderFiction,
	"Fantasy":   PlaceholderFantasy,
	"Romance":   PlaceholderRomance,
	"Dystopian": PlaceholderDystopian,
}

// ImageURL returns the uploaded cover URL when the book has one, otherwise a
// placeholder keyed by genre. Genre matching is exact.
func ImageURL(baseURL string, book entities.Book) string {
	if book.HasUpload() {
		return UploadsOrigin(baseURL) + "/uploads/" + *book.ImageFilename
	}
	return PlaceholderFor(book.Genre)
}

// PlaceholderFor returns the placeholder cover for a genre.
func PlaceholderFor(genre string) string {
	if url, ok := genrePlaceholders[genre]; ok {
		return url
	}
	return PlaceholderDefault
}

// UploadsOrigin derives the static host from the API base by dropping the
// trailing "/api" segment.
func UploadsOrigin(baseURL string) string {
	origin := strings.TrimRight(baseURL, "/")
	return strings.TrimSuffix(origin, "/api")
}
