package di

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoefit/shoefit-server/internal/config"
	"github.com/shoefit/shoefit-server/internal/recommend"
	"github.com/shoefit/shoefit-server/internal/service"
	"github.com/shoefit/shoefit-server/internal/store/sqlite"
)

func testArgs(dir string, extra ...string) []string {
	args := []string{
		"--data-path", dir,
		"--port", "0",
		"--log-level", "error",
		"--env-file", filepath.Join(dir, "none.env"),
	}
	return append(args, extra...)
}

func TestBootstrap_StartsAndShutsDown(t *testing.T) {
	dir := t.TempDir()
	injector := NewContainer(testArgs(dir, "--policy", "same_system"))

	require.NoError(t, Bootstrap(injector))

	cfg := do.MustInvoke[*config.Config](injector)
	assert.Equal(t, dir, cfg.Data.BasePath)

	engine := do.MustInvoke[*recommend.Engine](injector)
	assert.Equal(t, recommend.PolicySameSystem, engine.Policy())

	catalog := do.MustInvoke[*service.CatalogService](injector)
	_, err := catalog.Create(context.Background(), service.CreateCatalogEntryRequest{Brand: "Nike", Model: "Pegasus"})
	require.NoError(t, err)

	report := injector.Shutdown()
	require.NotNil(t, report)
	assert.True(t, report.Succeed, report.Error())

	// The database was closed, so it can be opened again and holds the entry.
	st, err := sqlite.Open(filepath.Join(dir, "shoefit.db"), nil)
	require.NoError(t, err)
	defer st.Close()
	n, err := st.CountCatalog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestBootstrap_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	injector := NewContainer(testArgs(dir, "--policy", "convert"))

	err := Bootstrap(injector)
	assert.Error(t, err)

	injector.Shutdown()
}
