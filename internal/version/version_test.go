package version

import (
	"strings"
	"testing"

	"github.com/earthboundkid/versioninfo/v2"
)

func TestGetVersionNotEmpty(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion() returned empty string")
	}
}

func TestGetFullVersionIncludesVersion(t *testing.T) {
	full := GetFullVersion()
	if !strings.HasPrefix(full, versioninfo.Version) {
		t.Errorf("GetFullVersion() = %q, want prefix %q", full, versioninfo.Version)
	}
}
