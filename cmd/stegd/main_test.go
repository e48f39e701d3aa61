package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionString(t *testing.T) {
	assert.Equal(t, "stegd dev (unknown)", versionString())

	t.Run("reflects ldflags overrides", func(t *testing.T) {
		origVersion, origCommit := version, gitCommit
		t.Cleanup(func() {
			version, gitCommit = origVersion, origCommit
		})

		version, gitCommit = "1.2.3", "abc1234"
		assert.Equal(t, "stegd 1.2.3 (abc1234)", versionString())
	})
}
