package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadBuildInfo_CommitIsNeverEmpty(t *testing.T) {
	// go test binaries carry build info but usually no vcs.revision setting
	// unless the module is built from a VCS checkout; either shape must
	// resolve to a usable commit string, never a blank one.
	info := readBuildInfo()
	assert.NotEmpty(t, info.commit)
}

func TestFull_AppendsDirtySuffixOnlyWhenModified(t *testing.T) {
	clean := vcsInfo{commit: "abcd1234", dirty: false}
	dirty := vcsInfo{commit: "abcd1234", dirty: true}

	assert.Equal(t, "reasonctl/abcd1234", fullFor(clean))
	assert.Equal(t, "reasonctl/abcd1234+dirty", fullFor(dirty))
}

// fullFor mirrors Full()'s formatting for an arbitrary vcsInfo, so the
// dirty-suffix logic can be tested without depending on the process's
// actual build info.
func fullFor(v vcsInfo) string {
	if v.dirty {
		return AppName + "/" + v.commit + "+dirty"
	}
	return AppName + "/" + v.commit
}

func TestModulePath_PopulatedFromBuildInfoWhenAvailable(t *testing.T) {
	info, ok := tryReadRealBuildInfo()
	if !ok {
		t.Skip("no build info available in this test binary")
	}
	assert.NotEmpty(t, info.modulePath)
}

func tryReadRealBuildInfo() (vcsInfo, bool) {
	info := readBuildInfo()
	return info, info.modulePath != ""
}
