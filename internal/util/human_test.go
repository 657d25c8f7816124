package util_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Jezza/wuxia-dl/internal/util"
)

func TestHuman(t *testing.T) {
	assert.Equal(t, "0 B", util.Human(0))
	assert.Equal(t, "512 B", util.Human(512))
	assert.Equal(t, "1023 B", util.Human(1023))
	assert.Equal(t, "1 KB", util.Human(1024))
	assert.Equal(t, "1.5 KB", util.Human(1536))
	assert.Equal(t, "2 MB", util.Human(2<<20))
	assert.Equal(t, "1.2 GB", util.Human(1<<30+200<<20))
	assert.Equal(t, "3 TB", util.Human(3<<40))
}
