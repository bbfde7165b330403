package forge

import (
	"bytes"
	"context"
	"io"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"

	"go.trai.ch/ivpm/internal/core/ports"
)

// Glibc is a glibc version as (major, minor).
type Glibc struct {
	Major int
	Minor int
}

// AtMost reports whether g <= other.
func (g Glibc) AtMost(other Glibc) bool {
	if g.Major != other.Major {
		return g.Major < other.Major
	}
	return g.Minor <= other.Minor
}

// String renders the version as major.minor.
func (g Glibc) String() string {
	return strconv.Itoa(g.Major) + "." + strconv.Itoa(g.Minor)
}

// Platform describes the machine a binary asset must run on.
type Platform struct {
	// OS is a GOOS value.
	OS string
	// Arch is a GOARCH value.
	Arch string
	// Glibc is the runtime glibc on linux. The zero value means unknown.
	Glibc Glibc
}

// Machine returns the architecture name used in asset file names.
func (p Platform) Machine() string {
	switch p.Arch {
	case "amd64":
		return "x86_64"
	case "arm64":
		if p.OS == "linux" {
			return "aarch64"
		}
		return "arm64"
	case "386":
		return "i686"
	default:
		return p.Arch
	}
}

// Tag is the <os>_<arch> suffix recorded in versions of binary assets.
func (p Platform) Tag() string {
	return p.OS + "_" + p.Machine()
}

var glibcVersionRe = regexp.MustCompile(`(\d+)\.(\d+)`)

const getconfTimeout = 5 * time.Second

// DetectPlatform describes the running machine. On linux the glibc version is
// read by running getconf through exec.
func DetectPlatform(ctx context.Context, exec ports.Executor) Platform {
	return detectPlatform(ctx, exec, runtime.GOOS, runtime.GOARCH)
}

func detectPlatform(ctx context.Context, exec ports.Executor, goos, goarch string) Platform {
	p := Platform{OS: goos, Arch: goarch}
	if p.OS != "linux" || exec == nil {
		return p
	}

	ctx, cancel := context.WithTimeout(ctx, getconfTimeout)
	defer cancel()
	var out bytes.Buffer
	cmd := ports.Command{Path: "getconf", Args: []string{"GNU_LIBC_VERSION"}}
	if err := exec.Execute(ctx, cmd, &out, io.Discard); err != nil {
		return p
	}
	p.Glibc = parseGlibc(strings.TrimSpace(out.String()))
	return p
}

func parseGlibc(s string) Glibc {
	m := glibcVersionRe.FindStringSubmatch(s)
	if m == nil {
		return Glibc{}
	}
	major, _ := strconv.Atoi(m[1])
	minor, _ := strconv.Atoi(m[2])
	return Glibc{Major: major, Minor: minor}
}
