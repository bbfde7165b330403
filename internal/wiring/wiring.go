// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/ivpm/internal/adapters/archive"
	_ "go.trai.ch/ivpm/internal/adapters/cache"
	_ "go.trai.ch/ivpm/internal/adapters/detector"
	_ "go.trai.ch/ivpm/internal/adapters/events"
	_ "go.trai.ch/ivpm/internal/adapters/forge"
	_ "go.trai.ch/ivpm/internal/adapters/ghacache"
	_ "go.trai.ch/ivpm/internal/adapters/git"
	_ "go.trai.ch/ivpm/internal/adapters/httpfetch"
	_ "go.trai.ch/ivpm/internal/adapters/lockfile"
	_ "go.trai.ch/ivpm/internal/adapters/logger"
	_ "go.trai.ch/ivpm/internal/adapters/manifest"
	_ "go.trai.ch/ivpm/internal/adapters/pyinstall"
	_ "go.trai.ch/ivpm/internal/adapters/s3cache"
	_ "go.trai.ch/ivpm/internal/adapters/settings"
	_ "go.trai.ch/ivpm/internal/adapters/shell"
	_ "go.trai.ch/ivpm/internal/adapters/source"
	// Register app nodes.
	_ "go.trai.ch/ivpm/internal/app"
)
