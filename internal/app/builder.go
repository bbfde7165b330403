package app

import (
	"go.trai.ch/ivpm/internal/adapters/settings"
	"go.trai.ch/ivpm/internal/core/ports"
)

// Components contains all the initialized application components.
type Components struct {
	App      *App
	Logger   ports.Logger
	Settings *settings.Settings
}
