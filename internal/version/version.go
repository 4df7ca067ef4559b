package version

import (
	"github.com/earthboundkid/versioninfo/v2"
)

// GetVersion returns the module version, or a short revision for
// development builds
func GetVersion() string {
	return versioninfo.Short()
}

// GetFullVersion returns version with commit info
func GetFullVersion() string {
	ver := versioninfo.Version
	if versioninfo.Revision == "" || versioninfo.Revision == "unknown" {
		return ver
	}

	rev := versioninfo.Revision
	if len(rev) > 7 {
		rev = rev[:7]
	}
	full := ver + " (commit: " + rev
	if versioninfo.DirtyBuild {
		full += ", dirty"
	}
	if !versioninfo.LastCommit.IsZero() {
		full += ", " + versioninfo.LastCommit.Format("2006-01-02")
	}
	return full + ")"
}
