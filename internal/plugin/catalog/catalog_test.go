// File: internal/plugin/catalog/catalog_test.go
package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wisdark/tsunami-security-scanner/internal/network"
	"github.com/wisdark/tsunami-security-scanner/internal/plugin"
	"github.com/wisdark/tsunami-security-scanner/internal/plugin/payload"
	"github.com/wisdark/tsunami-security-scanner/internal/plugin/tcs"
)

func TestLoad(t *testing.T) {
	r := plugin.NewRegistry()
	require.NoError(t, Load(r))
	assert.Equal(t, len(registrations), r.Len())

	// Loading the same catalog twice must trip duplicate detection.
	assert.Error(t, Load(r))
}

func TestLoadedCatalogBuilds(t *testing.T) {
	r := plugin.NewRegistry()
	require.NoError(t, Load(r))

	httpClient := network.NewClient(network.ClientConfig{})
	t.Cleanup(httpClient.CloseIdleConnections)

	definitions, err := payload.DefaultDefinitions()
	require.NoError(t, err)
	callback := tcs.NewClient("127.0.0.1", 8881, "http://127.0.0.1:8880", httpClient, nil)
	generator, err := payload.NewGenerator(payload.RandomSecretGenerator{}, definitions, callback, nil)
	require.NoError(t, err)

	set, err := r.Build(plugin.Deps{
		HTTPClient:       httpClient,
		PayloadGenerator: generator,
	})
	require.NoError(t, err)
	assert.Equal(t, r.Len(), set.Len())

	for _, def := range set.Definitions() {
		assert.NotEmpty(t, def.Name())
		assert.NotEmpty(t, def.Info.Version)
	}
}
