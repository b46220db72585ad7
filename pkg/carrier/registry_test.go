package carrier_test

import (
	"testing"

	"github.com/parcelgrid/rateshop/pkg/carrier"
	"github.com/parcelgrid/rateshop/pkg/carrier/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Register(t *testing.T) {
	registry := carrier.NewRegistry()

	require.NoError(t, registry.Register(mock.New("test-carrier")))

	got, err := registry.Get("test-carrier")
	require.NoError(t, err)
	assert.Equal(t, "test-carrier", got.Name())
}

func TestRegistry_Register_DuplicateFails(t *testing.T) {
	registry := carrier.NewRegistry()

	require.NoError(t, registry.Register(mock.New("test-carrier")))

	err := registry.Register(mock.New("test-carrier"))
	require.Error(t, err)

	cerr, ok := carrier.AsError(err)
	require.True(t, ok)
	assert.Equal(t, carrier.KindConfiguration, cerr.Kind)
	assert.Equal(t, 1, registry.Count())
}

func TestRegistry_Get_NotFound(t *testing.T) {
	registry := carrier.NewRegistry()

	_, err := registry.Get("nonexistent")
	require.Error(t, err)

	cerr, ok := carrier.AsError(err)
	require.True(t, ok)
	assert.Equal(t, carrier.KindCarrierUnavailable, cerr.Kind)
	assert.Equal(t, "nonexistent", cerr.Carrier)
}

func TestRegistry_ProvidersFor(t *testing.T) {
	registry := carrier.NewRegistry()

	require.NoError(t, registry.Register(mock.New("carrier-a")))
	require.NoError(t, registry.Register(mock.New("carrier-b")))

	rating := registry.ProvidersFor(carrier.OperationRate)
	assert.Len(t, rating, 2)

	labels := registry.ProvidersFor(carrier.OperationLabel)
	assert.Empty(t, labels, "mock carriers only support rating")
}

func TestRegistry_Names_RegistrationOrder(t *testing.T) {
	registry := carrier.NewRegistry()

	require.NoError(t, registry.Register(mock.New("zeta")))
	require.NoError(t, registry.Register(mock.New("alpha")))
	require.NoError(t, registry.Register(mock.New("mid")))

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, registry.Names())
	assert.Equal(t, 3, registry.Count())
}
