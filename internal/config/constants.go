package config

const (
	// DefaultDatabasePath is the default path for the local accounts and library database
	DefaultDatabasePath = "./booklend.db"

	// DefaultAPIBaseURL is the book API the client talks to when API_BASE_URL is unset
	DefaultAPIBaseURL = "http://localhost:8080/api"
)
