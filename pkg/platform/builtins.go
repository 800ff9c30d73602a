package platform

import "strings"

// Prefix starts the id of every built-in platform condition
const Prefix = "platform."

// Builtin is one entry of the built-in platform condition table
type Builtin struct {
	ID    string
	Match func(Platform) bool
}

var distributions = []string{"debian", "ubuntu", "fedora", "rhel", "centos", "suse", "alpine", "arch"}

var architectures = []string{"amd64", "arm64", "386", "arm"}

// Builtins returns the built-in platform conditions in a fixed order
func Builtins() []Builtin {
	table := []Builtin{
		{ID: Prefix + "windows", Match: isFamily(FamilyWindows)},
		{ID: Prefix + "mac", Match: isFamily(FamilyMac)},
		{ID: Prefix + "linux", Match: isFamily(FamilyLinux)},
		{ID: Prefix + "solaris", Match: isFamily(FamilySolaris)},
		{ID: Prefix + "bsd", Match: isFamily(FamilyBSD)},
		{ID: Prefix + "unix", Match: Platform.IsUnix},
		{ID: Prefix + "solaris.x86", Match: func(p Platform) bool {
			return p.Family == FamilySolaris && (p.Arch == "amd64" || p.Arch == "386")
		}},
		{ID: Prefix + "solaris.sparc", Match: func(p Platform) bool {
			return p.Family == FamilySolaris && strings.HasPrefix(p.Arch, "sparc")
		}},
		{ID: Prefix + "mac.arm64", Match: func(p Platform) bool {
			return p.Family == FamilyMac && p.Arch == "arm64"
		}},
	}

	for _, distro := range distributions {
		id := distro
		table = append(table, Builtin{
			ID:    Prefix + "linux." + id,
			Match: func(p Platform) bool { return p.IsDistribution(id) },
		})
	}
	for _, arch := range architectures {
		a := arch
		table = append(table, Builtin{
			ID:    Prefix + "arch." + a,
			Match: func(p Platform) bool { return p.Arch == a },
		})
	}
	return table
}

// IsBuiltinID reports whether id names a built-in platform condition
func IsBuiltinID(id string) bool {
	if !strings.HasPrefix(id, Prefix) {
		return false
	}
	for _, b := range Builtins() {
		if b.ID == id {
			return true
		}
	}
	return false
}

func isFamily(f Family) func(Platform) bool {
	return func(p Platform) bool { return p.Family == f }
}
