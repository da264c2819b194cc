package wiring

import (
	"portal/internal/contracts"
	"portal/internal/features/albums"
	"portal/internal/features/articles"
	"portal/internal/features/auth"
	"portal/internal/features/health"
	"portal/internal/features/home"
	"portal/internal/features/messages"
	"portal/internal/features/notes"
	"portal/internal/features/profile"
	portalserver "portal/internal/platform/server"
)

// Deps adapts the server and its repositories to every feature's
// Dependencies interface.
type Deps struct {
	srv   *portalserver.Server
	repos contracts.Repos
}

func NewDeps(srv *portalserver.Server) Deps {
	return Deps{srv: srv, repos: srv.Repos()}
}

var (
	_ albums.Dependencies   = Deps{}
	_ articles.Dependencies = Deps{}
	_ auth.Dependencies     = Deps{}
	_ health.Dependencies   = Deps{}
	_ home.Dependencies     = Deps{}
	_ messages.Dependencies = Deps{}
	_ notes.Dependencies    = Deps{}
	_ profile.Dependencies  = Deps{}
)
