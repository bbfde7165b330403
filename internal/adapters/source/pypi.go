package source

import (
	"context"

	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/ivpm/internal/core/ports"
)

// PyPIHandler records registry packages. They are installed by the python
// post-handler, not fetched.
type PyPIHandler struct{}

// NewPyPIHandler creates a PyPIHandler.
func NewPyPIHandler() *PyPIHandler {
	return &PyPIHandler{}
}

// Create implements ports.SourceHandler.
func (h *PyPIHandler) Create(name string, opts domain.Options, si domain.SrcInfo) (*domain.Package, error) {
	r := newOptionReader(opts)
	pkg, err := newPackage(domain.SrcPyPI, name, r, si)
	if err != nil {
		return nil, err
	}
	pkg.Source = &domain.PyPISource{Version: r.str("version")}
	if err := r.finish(); err != nil {
		return nil, err
	}
	return pkg, nil
}

// Update implements ports.SourceHandler.
func (h *PyPIHandler) Update(context.Context, *ports.UpdateContext, *domain.Package) (domain.UpdateResult, error) {
	return domain.UpdateResult{}, nil
}
