package entities

import "time"

// LibraryEntry marks a catalog book as part of a user's personal library.
// Only the book ID is stored; book data is always fetched from the API.
type LibraryEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_library_user_book" json:"user_id"`
	BookID    int       `gorm:"uniqueIndex:idx_library_user_book" json:"book_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (LibraryEntry) TableName() string {
	return "library_entries"
}
