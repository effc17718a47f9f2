// Package database provides the local data access layer.
//
// Book data lives in the remote book API; this database only holds what the
// web client owns itself: user accounts, the per-user library of book IDs
// and the account activity trail.
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── users/           # Account storage used by the auth service
//	├── library/         # Personal library entries (user ID, book ID)
//	└── audit/           # Sign-in and library activity events
//
// # Usage
//
//	db, err := database.NewDatabase("./booklend.db")
//	usersRepo := users.NewRepository(db.DB)
//	libraryRepo := library.NewRepository(db.DB)
package database
