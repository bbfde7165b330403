package source

import (
	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/zerr"
)

// optionReader consumes the keys of a dependency entry and remembers which
// ones were read, so that leftovers can be reported.
type optionReader struct {
	opts domain.Options
	used map[string]bool
}

func newOptionReader(opts domain.Options) *optionReader {
	return &optionReader{opts: opts, used: make(map[string]bool, len(opts))}
}

func (r *optionReader) get(key string) (domain.Option, bool) {
	opt, ok := r.opts.Get(key)
	if ok {
		r.used[key] = true
	}
	return opt, ok
}

func (r *optionReader) str(key string) string {
	opt, ok := r.get(key)
	if !ok {
		return ""
	}
	return opt.String()
}

func (r *optionReader) boolean(key string, def bool) (bool, error) {
	opt, ok := r.get(key)
	if !ok || opt.Value == nil {
		return def, nil
	}
	v, ok := opt.Bool()
	if !ok {
		return false, invalid(opt, "expected a boolean")
	}
	return v, nil
}

func (r *optionReader) integer(key string, def int) (int, error) {
	opt, ok := r.get(key)
	if !ok || opt.Value == nil {
		return def, nil
	}
	v, ok := opt.Int()
	if !ok || v < 0 {
		return 0, invalid(opt, "expected a non-negative integer")
	}
	return v, nil
}

func (r *optionReader) cacheMode() (domain.CacheMode, error) {
	opt, ok := r.get("cache")
	if !ok || opt.Value == nil {
		return domain.CacheUnset, nil
	}
	v, ok := opt.Bool()
	if !ok {
		return domain.CacheUnset, invalid(opt, "expected a boolean")
	}
	if v {
		return domain.CacheEnabled, nil
	}
	return domain.CacheDisabled, nil
}

// finish reports the first option nobody read.
func (r *optionReader) finish() error {
	for _, opt := range r.opts {
		if !r.used[opt.Key] {
			return zerr.With(opt.SrcInfo.Annotate(zerr.Wrap(domain.ErrUnknownPackageOption, "")), "option", opt.Key)
		}
	}
	return nil
}

func invalid(opt domain.Option, reason string) error {
	err := opt.SrcInfo.Annotate(zerr.Wrap(domain.ErrInvalidPackageOption, ""))
	err = zerr.With(err, "option", opt.Key)
	return zerr.With(err, "reason", reason)
}

// newPackage reads the options shared by every variant.
func newPackage(tag domain.SourceType, name string, r *optionReader, si domain.SrcInfo) (*domain.Package, error) {
	pkg := &domain.Package{
		Name:        name,
		Src:         tag,
		ProcessDeps: true,
		SrcInfo:     si,
	}
	pkg.DepSet = r.str("dep-set")
	pkg.PkgType = r.str("type")
	if opt, ok := r.get("deps"); ok {
		if opt.String() != "skip" {
			return nil, invalid(opt, "the only supported value is skip")
		}
		pkg.ProcessDeps = false
	}
	return pkg, nil
}

// requireURL returns the url option or fails when it is absent.
func requireURL(r *optionReader, name string, si domain.SrcInfo) (string, error) {
	opt, ok := r.get("url")
	if !ok || opt.String() == "" {
		err := si.Annotate(zerr.Wrap(domain.ErrInvalidPackageOption, ""))
		err = zerr.With(err, "package", name)
		return "", zerr.With(err, "reason", "url is required")
	}
	return opt.String(), nil
}
