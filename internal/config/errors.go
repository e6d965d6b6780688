package config

const (
	// Database errors
	ErrInitializeDatabaseFmt = "Failed to initialize database: %v"

	// Storage errors
	ErrCreateRepositoryFmt = "Failed to create post repository: %v"
	ErrSavePost            = "The post could not be saved. Please try again."
	ErrLoadPost            = "The post could not be loaded"
	ErrListPosts           = "The posts could not be listed"
	ErrInvalidSlug         = "Slugs may only contain letters, digits, '.', '_' and '-', and must start with a letter or digit."

	ErrInternalServerError = "Internal server error"
)
