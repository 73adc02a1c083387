package cli

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd(t *testing.T) {
	original := version
	t.Cleanup(func() { version = original })

	for _, v := range []string{"dev", "1.2.0"} {
		version = v
		out, err := execute(t, "", "version")
		require.NoError(t, err)
		assert.Contains(t, out, "themescope version "+v)
		assert.Contains(t, out, runtime.GOOS+"/"+runtime.GOARCH)
	}
}

func TestVersionCmd_NeedsNoServices(t *testing.T) {
	SetWiring(nil)

	_, err := execute(t, "", "version")
	assert.NoError(t, err)
}

func TestVersionCmd_RejectsArgs(t *testing.T) {
	_, err := execute(t, "", "version", "extra")
	assert.Error(t, err)
}
