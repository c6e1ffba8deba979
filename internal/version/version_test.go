package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	assert.Equal(t, "track-replay dev (unknown, built unknown)", String("track-replay"))
}
