package domain

// Release is a tagged release of a forge repository.
type Release struct {
	TagName    string
	Name       string
	Prerelease bool
	Draft      bool
	TarballURL string
	ZipballURL string
	Assets     []Asset
}

// Asset is a downloadable file attached to a Release.
type Asset struct {
	Name string
	URL  string
	Size int64
}
