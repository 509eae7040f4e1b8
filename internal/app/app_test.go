package app

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `Order ID,Product ID,Division,Product Name,Order Date,Ship Date,Sales,Units,Gross Profit,Cost
1001,P-1,Chocolate,Wonka Bar - Milk Chocolate,2024-01-05,2024-01-08,500.00,50,200.00,300.00
1002,P-2,Sugar,Nerds,2024-02-10,2024-02-12,250.00,25,50.00,200.00
1003,P-1,Chocolate,Wonka Bar - Milk Chocolate,2024-02-15,2024-02-18,300.00,30,120.00,180.00
`

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	source := filepath.Join(dir, "sales.csv")
	require.NoError(t, os.WriteFile(source, []byte(sampleCSV), 0o644))

	cfg := `
server:
  port: 18080
logging:
  level: error
  format: text
data:
  source_path: ` + source + `
`
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func TestNewApplication(t *testing.T) {
	app, err := New(writeConfig(t))
	require.NoError(t, err)

	assert.Equal(t, 18080, app.Config.Server.Port)
	assert.Equal(t, ":18080", app.Server.Addr)
	require.NotNil(t, app.Router)
}

func TestRouterEndToEnd(t *testing.T) {
	app, err := New(writeConfig(t))
	require.NoError(t, err)

	srv := httptest.NewServer(app.Router)
	defer srv.Close()

	t.Run("health", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/healthz")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("summary over real pipeline", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/summary")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("filter excluding everything yields 404", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/summary?division=Nougat")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("metrics endpoint scrapes", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
