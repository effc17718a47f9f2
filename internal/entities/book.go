package entities

// Book is a read-only copy of a catalog item as served by the book API.
// The backend owns and mutates books; the client never persists them.
type Book struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	Genre         string  `json:"genre"`
	Summary       string  `json:"summary"`
	StockCount    int     `json:"stockCount"`
	ImageFilename *string `json:"imageFilename"`
}

// Available reports whether at least one copy can be lent.
func (b Book) Available() bool {
	return b.StockCount > 0
}

// HasUpload reports whether the backend holds an uploaded cover for the book.
func (b Book) HasUpload() bool {
	return b.ImageFilename != nil && *b.ImageFilename != ""
}
