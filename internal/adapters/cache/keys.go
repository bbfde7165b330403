package cache

import "fmt"

// Keys builds remote cache keys for one prefix and runner OS.
type Keys struct {
	Prefix string
	OS     string
}

// Package is the key of one (name, version) entry.
func (k Keys) Package(name, version string) string {
	return fmt.Sprintf("%s-pkg-%s-%s-%s", k.Prefix, k.OS, name, version)
}

// Venv is the key of an interpreter environment.
func (k Keys) Venv(pyVersion, reqHash string) string {
	return k.VenvPrefix(pyVersion) + reqHash
}

// VenvPrefix matches any environment built for pyVersion.
func (k Keys) VenvPrefix(pyVersion string) string {
	return fmt.Sprintf("%s-pyenv-%s-%s-", k.Prefix, k.OS, pyVersion)
}

// Pip is the key of the wheel cache.
func (k Keys) Pip(reqHash string) string {
	return k.PipPrefix() + reqHash
}

// PipPrefix matches any wheel cache of this OS.
func (k Keys) PipPrefix() string {
	return fmt.Sprintf("%s-pip-%s-", k.Prefix, k.OS)
}
