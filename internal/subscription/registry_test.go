package subscription

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagindex/internal/identity"
)

func TestRegistryRegisterAndPublish(t *testing.T) {
	r := NewRegistry(nil)

	id, err := r.Register("env=prod AND region=us")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	matches := r.Publish(identity.NewIdentity("cpu", map[string]string{"env": "prod", "region": "us"}))
	assert.Contains(t, matches, id)

	matches = r.Publish(identity.NewIdentity("cpu", map[string]string{"env": "prod", "region": "eu"}))
	assert.NotContains(t, matches, id)
}

func TestRegistryRegisterInvalidExpression(t *testing.T) {
	r := NewRegistry(nil)

	_, err := r.Register("env=")
	require.Error(t, err)
}

func TestRegistryUnregisterStopsMatching(t *testing.T) {
	r := NewRegistry(nil)

	id, err := r.Register("env=prod")
	require.NoError(t, err)

	require.True(t, r.Unregister(id))
	require.False(t, r.Unregister(id), "unregistering twice should report false")

	matches := r.Publish(identity.NewIdentity("cpu", map[string]string{"env": "prod"}))
	assert.NotContains(t, matches, id)
}

func TestRegistryListReflectsRegistrations(t *testing.T) {
	r := NewRegistry(nil)

	id1, err := r.Register("env=prod")
	require.NoError(t, err)
	id2, err := r.Register("env=staging")
	require.NoError(t, err)

	subs := r.List()
	require.Len(t, subs, 2)

	ids := make(map[ID]bool)
	for _, s := range subs {
		ids[s.ID] = true
	}
	assert.True(t, ids[id1])
	assert.True(t, ids[id2])
}

func TestRegistryCompileCacheReusesParse(t *testing.T) {
	r := NewRegistry(nil)

	id1, err := r.Register("env=prod")
	require.NoError(t, err)
	id2, err := r.Register("env=prod")
	require.NoError(t, err)
	require.NotEqual(t, id1, id2, "two registrations of the same text get distinct IDs")

	matches := r.Publish(identity.NewIdentity("cpu", map[string]string{"env": "prod"}))
	assert.Contains(t, matches, id1)
	assert.Contains(t, matches, id2)
}

func TestRegistryRegisterWithIDPreservesCallerSuppliedID(t *testing.T) {
	r := NewRegistry(nil)

	err := r.RegisterWithID(ID("declared-id"), "env=prod")
	require.NoError(t, err)

	matches := r.Publish(identity.NewIdentity("cpu", map[string]string{"env": "prod"}))
	assert.Contains(t, matches, ID("declared-id"))

	subs := r.List()
	require.Len(t, subs, 1)
	assert.Equal(t, ID("declared-id"), subs[0].ID)
}

func TestRegistryRegisterWithIDInvalidExpression(t *testing.T) {
	r := NewRegistry(nil)

	err := r.RegisterWithID(ID("declared-id"), "env=")
	require.Error(t, err)
	assert.Empty(t, r.List())
}

func TestRegistryCouldPublishConservativeOnPartialTags(t *testing.T) {
	r := NewRegistry(nil)
	_, err := r.Register("env=prod AND region=us")
	require.NoError(t, err)

	assert.True(t, r.CouldPublish(identity.Tags{"name": "cpu", "env": "prod"}.Lookup()))
	assert.False(t, r.CouldPublish(identity.Tags{"name": "cpu", "env": "staging"}.Lookup()))
}
