package version

import "runtime"

// Overridden at build time with -ldflags "-X .../version.buildVersion=...".
var (
	buildVersion = "dev"
	builtAt      = ""
)

type Info struct {
	Version   string `json:"version"`
	BuiltAt   string `json:"built_at,omitempty"`
	GoVersion string `json:"go_version"`
}

func BuildVersion() string {
	return buildVersion
}

func BuiltAt() string {
	return builtAt
}

func GetInfo() Info {
	return Info{
		Version:   BuildVersion(),
		BuiltAt:   BuiltAt(),
		GoVersion: runtime.Version(),
	}
}
