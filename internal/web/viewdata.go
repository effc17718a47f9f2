package web

import "github.com/mrlokans/booklend/internal/entities"

// HeaderData is rendered by the shared header on every screen.
type HeaderData struct {
	Title     string
	Page      string
	LoggedIn  bool
	Username  string
	CSRFToken string
	Flash     string
}

// Page wraps shared Header + page-specific Content.
type Page[T any] struct {
	Header  HeaderData
	Content T
}

// AuthForm is the content of the login and register screens.
type AuthForm struct {
	Error    string
	Login    string
	Username string
	Email    string
}

// BookCard is a book as shown in a listing.
type BookCard struct {
	Book      entities.Book
	CoverURL  string
	InLibrary bool
}

type HomeContent struct {
	TotalTitles  int
	Available    int
	GenreCount   int
	LibraryCount int
}

type BrowseContent struct {
	Query string
	Total int
	Books []BookCard
}

type LibraryContent struct {
	Books   []BookCard
	Missing int
}

// GenreGroup is one genre on the categories screen.
type GenreGroup struct {
	Name  string
	Count int
	Books []BookCard
}

type CategoriesContent struct {
	Selected string
	Genres   []GenreGroup
	Books    []BookCard
}
