package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRelease(t *testing.T) {
	version, commit := Version, Commit
	t.Cleanup(func() { Version, Commit = version, commit })

	Version, Commit = "", ""
	assert.Equal(t, "dev", Release())

	Commit = "0123456789abcdef0123"
	assert.Equal(t, "0123456789ab", Release())

	Version = "v1.2.0"
	assert.Equal(t, "v1.2.0", Release())
}
