package settings_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netbilling/backend/internal/settings"
)

func TestMemoryStore(t *testing.T) {
	store := settings.NewMemoryStore()

	assert.Equal(t, "fallback", store.Get("missing", "fallback"))

	require.NoError(t, store.Set("company_name", "PT Contoh Net"))
	assert.Equal(t, "PT Contoh Net", store.Get("company_name", ""))

	require.NoError(t, store.Set("company_name", "PT Lain"))
	assert.Equal(t, "PT Lain", store.Get("company_name", ""))

	require.NoError(t, store.Delete("company_name"))
	assert.Equal(t, "fallback", store.Get("company_name", "fallback"))

	require.NoError(t, store.Set("a", "1"))
	require.NoError(t, store.Set("b", "2"))
	all, err := store.All()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, all)
}

func TestGetInt(t *testing.T) {
	store := settings.NewMemoryStore()
	store.Set("limit", "25")
	store.Set("bad", "not-a-number")

	assert.Equal(t, 25, settings.GetInt(store, "limit", 10))
	assert.Equal(t, 10, settings.GetInt(store, "missing", 10))
	assert.Equal(t, 10, settings.GetInt(store, "bad", 10))
}

func TestGetBool(t *testing.T) {
	store := settings.NewMemoryStore()
	store.Set("on", "true")
	store.Set("off", "false")
	store.Set("bad", "maybe")

	assert.True(t, settings.GetBool(store, "on", false))
	assert.False(t, settings.GetBool(store, "off", true))
	assert.True(t, settings.GetBool(store, "missing", true))
	assert.False(t, settings.GetBool(store, "bad", true), "unparseable values are false")
}
