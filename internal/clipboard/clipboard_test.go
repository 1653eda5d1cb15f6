package clipboard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupOnly(available map[string]string) func(string) (string, error) {
	return func(name string) (string, error) {
		if path, ok := available[name]; ok {
			return path, nil
		}
		return "", errors.New("not found")
	}
}

func TestSelectCommandDarwin(t *testing.T) {
	cmd, err := SelectCommand("darwin", lookupOnly(map[string]string{"pbcopy": "/usr/bin/pbcopy"}))
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/pbcopy", cmd.Path)
	assert.Empty(t, cmd.Args)
}

func TestSelectCommandLinuxPrefersWlCopy(t *testing.T) {
	cmd, err := SelectCommand("linux", lookupOnly(map[string]string{
		"wl-copy": "/usr/bin/wl-copy",
		"xclip":   "/usr/bin/xclip",
	}))
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/wl-copy", cmd.Path)
}

func TestSelectCommandLinuxFallsBackToXclip(t *testing.T) {
	cmd, err := SelectCommand("linux", lookupOnly(map[string]string{"xclip": "/usr/bin/xclip"}))
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/xclip", cmd.Path)
	assert.Equal(t, []string{"-selection", "clipboard"}, cmd.Args)
}

func TestSelectCommandLinuxFallsBackToClipExe(t *testing.T) {
	cmd, err := SelectCommand("linux", lookupOnly(map[string]string{"clip.exe": "/mnt/c/Windows/system32/clip.exe"}))
	require.NoError(t, err)
	assert.Equal(t, "/mnt/c/Windows/system32/clip.exe", cmd.Path)
}

func TestSelectCommandWindows(t *testing.T) {
	cmd, err := SelectCommand("windows", lookupOnly(map[string]string{"clip.exe": `C:\Windows\system32\clip.exe`}))
	require.NoError(t, err)
	assert.Equal(t, `C:\Windows\system32\clip.exe`, cmd.Path)
}

func TestSelectCommandUnavailable(t *testing.T) {
	_, err := SelectCommand("linux", lookupOnly(nil))
	assert.ErrorIs(t, err, ErrToolNotFound)

	_, err = SelectCommand("plan9", lookupOnly(map[string]string{"pbcopy": "/bin/pbcopy"}))
	assert.ErrorIs(t, err, ErrToolNotFound)
}
