// Package platform describes the machine an installer runs on and provides
// the table of built-in platform conditions derived from it.
package platform

import (
	"runtime"
	"strings"

	"github.com/arthur-debert/instkit/pkg/logging"
	"github.com/spf13/afero"
	"github.com/subosito/gotenv"
)

// Family groups operating systems that installers treat alike
type Family string

const (
	FamilyWindows Family = "windows"
	FamilyMac     Family = "mac"
	FamilyLinux   Family = "linux"
	FamilySolaris Family = "solaris"
	FamilyBSD     Family = "bsd"
	FamilyUnknown Family = "unknown"
)

// OSReleasePath is where Linux distributions describe themselves
const OSReleasePath = "/etc/os-release"

// Platform identifies the host an installer runs on
type Platform struct {
	Family Family
	OS     string
	Arch   string

	// Distribution is the os-release ID on Linux, e.g. "debian"
	Distribution string

	// Like lists the os-release ID_LIKE entries, e.g. ["rhel", "fedora"]
	Like []string

	// Version is the os-release VERSION_ID on Linux
	Version string
}

// FromGOOS builds a Platform from Go's OS and architecture names
func FromGOOS(goos, goarch string) Platform {
	return Platform{
		Family: familyOf(goos),
		OS:     goos,
		Arch:   goarch,
	}
}

// Detect returns the running platform. On Linux the distribution is read
// from /etc/os-release on fs; a missing or unreadable file is not an error.
func Detect(fs afero.Fs) Platform {
	p := FromGOOS(runtime.GOOS, runtime.GOARCH)
	if p.Family != FamilyLinux {
		return p
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}

	logger := logging.GetLogger("platform")
	f, err := fs.Open(OSReleasePath)
	if err != nil {
		logger.Debug().Err(err).Msg("No os-release file, distribution unknown")
		return p
	}
	defer func() { _ = f.Close() }()

	env, err := gotenv.StrictParse(f)
	if err != nil {
		logger.Warn().Err(err).Str("path", OSReleasePath).Msg("Failed to parse os-release")
		return p
	}
	return p.WithRelease(env)
}

// WithRelease returns a copy of p carrying the distribution fields of an
// os-release key/value set.
func (p Platform) WithRelease(release map[string]string) Platform {
	p.Distribution = strings.ToLower(release["ID"])
	p.Version = release["VERSION_ID"]
	p.Like = nil
	for _, like := range strings.Fields(strings.ToLower(release["ID_LIKE"])) {
		p.Like = append(p.Like, like)
	}
	return p
}

// IsUnix reports whether the platform is any Unix flavour
func (p Platform) IsUnix() bool {
	switch p.Family {
	case FamilyMac, FamilyLinux, FamilySolaris, FamilyBSD:
		return true
	}
	return false
}

// IsDistribution reports whether the Linux distribution is id or derives from it
func (p Platform) IsDistribution(id string) bool {
	if p.Family != FamilyLinux {
		return false
	}
	if p.Distribution == id {
		return true
	}
	for _, like := range p.Like {
		if like == id {
			return true
		}
	}
	return false
}

func (p Platform) String() string {
	s := string(p.Family) + "/" + p.Arch
	if p.Distribution != "" {
		s += " (" + p.Distribution
		if p.Version != "" {
			s += " " + p.Version
		}
		s += ")"
	}
	return s
}

func familyOf(goos string) Family {
	switch goos {
	case "windows":
		return FamilyWindows
	case "darwin", "ios":
		return FamilyMac
	case "linux", "android":
		return FamilyLinux
	case "solaris", "illumos":
		return FamilySolaris
	case "freebsd", "openbsd", "netbsd", "dragonfly":
		return FamilyBSD
	}
	return FamilyUnknown
}
