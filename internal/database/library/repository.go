// Package library stores which catalog books each user keeps in their
// personal library.
//
// This package implements the LibraryStore interface defined in internal/http/stores.go.
//
// # Usage
//
//	repo := library.NewRepository(db)
//	ids, err := repo.ListBookIDs(userID)
package library

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/booklend/internal/entities"
)

// Repository handles all library database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new library repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AddBook puts a book into the user's library. Adding twice is a no-op.
func (r *Repository) AddBook(userID uint, bookID int) error {
	entry := &entities.LibraryEntry{UserID: userID, BookID: bookID}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(entry).Error
}

// RemoveBook takes a book out of the user's library.
func (r *Repository) RemoveBook(userID uint, bookID int) error {
	return r.db.Where("user_id = ? AND book_id = ?", userID, bookID).
		Delete(&entities.LibraryEntry{}).Error
}

// ListBookIDs returns the user's library book IDs, most recently added first.
func (r *Repository) ListBookIDs(userID uint) ([]int, error) {
	var ids []int
	err := r.db.Model(&entities.LibraryEntry{}).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Pluck("book_id", &ids).Error
	return ids, err
}

// Contains reports whether the book is in the user's library.
func (r *Repository) Contains(userID uint, bookID int) (bool, error) {
	var count int64
	err := r.db.Model(&entities.LibraryEntry{}).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Count(&count).Error
	return count > 0, err
}
