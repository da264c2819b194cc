package contracts

import (
	"portal/internal/contracts/albums"
	"portal/internal/contracts/articles"
	"portal/internal/contracts/audit"
	"portal/internal/contracts/messages"
	"portal/internal/contracts/notes"
	"portal/internal/contracts/settings"
	"portal/internal/contracts/users"
)

// Repos groups feature-specific repositories for injection into services and handlers.
type Repos struct {
	Users    users.Repository
	Articles articles.Repository
	Notes    notes.Repository
	Messages messages.Repository
	Albums   albums.Repository
	Audit    audit.Repository
	Settings settings.Repository
}
