package migrate

import (
	"errors"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSource_VersionsHaveUpAndDown(t *testing.T) {
	src, err := Source()
	require.NoError(t, err)
	defer src.Close()

	v, err := src.First()
	require.NoError(t, err)

	seen := 0
	for {
		up, _, err := src.ReadUp(v)
		require.NoError(t, err, "version %d has no up file", v)
		_ = up.Close()

		down, _, err := src.ReadDown(v)
		require.NoError(t, err, "version %d has no down file", v)
		body, err := io.ReadAll(down)
		require.NoError(t, err)
		require.NotEmpty(t, body)
		_ = down.Close()

		seen++
		v, err = src.Next(v)
		if errors.Is(err, os.ErrNotExist) {
			break
		}
		require.NoError(t, err)
	}
	require.Equal(t, 2, seen)
}
