package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/booklend/internal/entities"
)

func strPtr(s string) *string { return &s }

func TestImageURL_UploadedCover(t *testing.T) {
	for _, genre := range []string{"Fantasy", "Horror", ""} {
		book := entities.Book{Genre: genre, ImageFilename: strPtr("cover-1.png")}

		got := ImageURL("http://localhost:8080/api", book)

		assert.Equal(t, "http://localhost:8080/uploads/cover-1.png", got, genre)
	}
}

func TestImageURL_GenrePlaceholders(t *testing.T) {
	tests := map[string]string{
		"Fiction":   PlaceholderFiction,
		"Fantasy":   PlaceholderFantasy,
		"Romance":   PlaceholderRomance,
		"Dystopian": PlaceholderDystopian,
		"Horror":    PlaceholderDefault,
		"fantasy":   PlaceholderDefault,
		"":          PlaceholderDefault,
	}

	for genre, want := range tests {
		t.Run(genre, func(t *testing.T) {
			book := entities.Book{Genre: genre}
			assert.Equal(t, want, ImageURL("http://localhost:8080/api", book))
		})
	}
}

func TestImageURL_EmptyFilenameUsesPlaceholder(t *testing.T) {
	book := entities.Book{Genre: "Fantasy", ImageFilename: strPtr("")}

	assert.Equal(t, PlaceholderFantasy, ImageURL("http://localhost:8080/api", book))
}

func TestUploadsOrigin(t *testing.T) {
	assert.Equal(t, "http://localhost:8080", UploadsOrigin("http://localhost:8080/api"))
	assert.Equal(t, "http://localhost:8080", UploadsOrigin("http://localhost:8080/api/"))
	assert.Equal(t, "https://books.example.com/v1", UploadsOrigin("https://books.example.com/v1"))
	assert.Equal(t, "https://api.example.com", UploadsOrigin("https://api.example.com/api"))
}

func TestClient_ImageURL(t *testing.T) {
	client := NewClient("http://localhost:8080/api", 0)
	book := entities.Book{Genre: "Romance", ImageFilename: strPtr("emma.jpg")}

	assert.Equal(t, "http://localhost:8080/uploads/emma.jpg", client.ImageURL(book))
}
