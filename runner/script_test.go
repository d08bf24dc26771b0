package runner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWrapperScript_Contents(t *testing.T) {
	dir := t.TempDir()
	args := []string{"-root", "-log_sections=all", "-logdir=logs/", "tests/root/cryptoserver/stable.list", "tests/root/cryptoserver/flakey.list"}

	script, err := newWrapperScript(dir, "./ESTest.pl", args)
	require.NoError(t, err)
	defer script.Remove(false, log.New())

	data, err := os.ReadFile(script.Path)
	require.NoError(t, err)
	contents := string(data)

	assert.True(t, strings.HasPrefix(contents, "#!/usr/bin/perl\n"))
	assert.Contains(t, contents, `local @ARGV = ("-root", "-log_sections=all", "-logdir=logs/", "tests/root/cryptoserver/stable.list", "tests/root/cryptoserver/flakey.list");`)
	assert.Contains(t, contents, `do './ESTest.pl';`)
}

func TestNewWrapperScript_Executable(t *testing.T) {
	dir := t.TempDir()

	script, err := newWrapperScript(dir, "./ESTest.pl", []string{"-root"})
	require.NoError(t, err)
	defer script.Remove(false, log.New())

	info, err := os.Stat(script.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	// The wrapper lives next to the engine in the work directory
	assert.Equal(t, dir, filepath.Dir(script.Path))
	assert.True(t, strings.HasPrefix(filepath.Base(script.Path), "estest_wrapper_"))
	assert.True(t, strings.HasSuffix(script.Path, ".pl"))
}

func TestNewWrapperScript_UniqueNames(t *testing.T) {
	dir := t.TempDir()

	a, err := newWrapperScript(dir, "./ESTest.pl", nil)
	require.NoError(t, err)
	defer a.Remove(false, log.New())
	b, err := newWrapperScript(dir, "./ESTest.pl", nil)
	require.NoError(t, err)
	defer b.Remove(false, log.New())

	assert.NotEqual(t, a.Path, b.Path)
}

func TestWrapperScript_Remove(t *testing.T) {
	dir := t.TempDir()

	script, err := newWrapperScript(dir, "./ESTest.pl", nil)
	require.NoError(t, err)

	script.Remove(false, log.New())
	assert.NoFileExists(t, script.Path)

	// Removing twice is harmless
	script.Remove(false, log.New())
}

func TestWrapperScript_RemoveKeep(t *testing.T) {
	dir := t.TempDir()

	script, err := newWrapperScript(dir, "./ESTest.pl", nil)
	require.NoError(t, err)

	script.Remove(true, log.New())
	assert.FileExists(t, script.Path)
}

func TestPerlList(t *testing.T) {
	assert.Equal(t, "", perlList(nil))
	assert.Equal(t, `"-root"`, perlList([]string{"-root"}))
	assert.Equal(t, `"-root", "a.list", "b.list"`, perlList([]string{"-root", "a.list", "b.list"}))
}
