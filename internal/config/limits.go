package config

import "time"

const (
	// MaxDocumentTitleLength matches the VARCHAR(255) title column
	MaxDocumentTitleLength = 255

	// MaxTemplateLength matches the VARCHAR(50) template column
	MaxTemplateLength = 50

	// MaxGithubRepoLength matches the VARCHAR(500) github_repo column
	MaxGithubRepoLength = 500

	// MaxCreatedByLength matches the VARCHAR(255) created_by column
	MaxCreatedByLength = 255

	// MaxMessageLength bounds a single user message.
	// The whole transcript is resent on every exchange.
	MaxMessageLength = 20000

	// MaxDerivedTitleLength caps a title taken from the title section
	MaxDerivedTitleLength = 50

	// MaxSectionKeyLength bounds section keys accepted through the API
	MaxSectionKeyLength = 100

	// DefaultTurnsPage and MaxTurnsPage bound turn listings
	DefaultTurnsPage = 50
	MaxTurnsPage     = 500

	// DefaultRecentConversations is the size of the recent activity list
	DefaultRecentConversations = 10
	MaxRecentConversations     = 100

	// DefaultGenerationTimeout is the hard limit on one generation request
	DefaultGenerationTimeout = 30 * time.Second
)
