package di

import (
	"path/filepath"
	"testing"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagetrail/pagetrail-server/internal/config"
	"github.com/pagetrail/pagetrail-server/internal/di/providers"
	"github.com/pagetrail/pagetrail-server/internal/domain"
	"github.com/pagetrail/pagetrail-server/internal/service"
)

func testFlags(t *testing.T, backend string) map[string]string {
	t.Helper()
	dir := t.TempDir()
	return map[string]string{
		config.FlagEnvFile:  filepath.Join(dir, "missing.env"),
		config.FlagBackend:  backend,
		config.FlagDataPath: dir,
		config.FlagCovers:   "false",
		config.FlagLogLevel: "error",
	}
}

func TestBootstrap_Backends(t *testing.T) {
	for _, backend := range []string{config.BackendMemory, config.BackendSQLite, config.BackendBadger} {
		t.Run(backend, func(t *testing.T) {
			injector := NewContainer(testFlags(t, backend))
			require.NoError(t, Bootstrap(injector))

			library := do.MustInvoke[*service.LibraryService](injector)
			assert.Zero(t, library.Count())

			assert.Nil(t, injector.Shutdown())
		})
	}
}

func TestBootstrap_InvalidConfig(t *testing.T) {
	flags := testFlags(t, "postgres")

	injector := NewContainer(flags)
	assert.Error(t, Bootstrap(injector))
}

func TestBootstrap_PersistsAcrossContainers(t *testing.T) {
	flags := testFlags(t, config.BackendSQLite)

	first := NewContainer(flags)
	require.NoError(t, Bootstrap(first))
	library := do.MustInvoke[*service.LibraryService](first)
	_, err := library.Add(t.Context(), service.BookInput{Title: "Dune", Author: "Frank Herbert", Status: domain.StatusWishlist})
	require.NoError(t, err)
	require.Nil(t, first.Shutdown())

	second := NewContainer(flags)
	require.NoError(t, Bootstrap(second))
	defer second.Shutdown()

	assert.Equal(t, 1, do.MustInvoke[*service.LibraryService](second).Count())
	_, err = do.Invoke[*providers.APIServerHandle](second)
	assert.NoError(t, err)
}
