package plugin

import (
	"encoding/json"
	"testing"

	"github.com/reglet-dev/native-starter/application/manifest"
	"github.com/reglet-dev/native-starter/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGreeting(t *testing.T) {
	assert.Equal(t, []byte("Hello there"), Greeting())
}

func TestDescribe(t *testing.T) {
	data, err := Describe()
	require.NoError(t, err)

	var m entities.Manifest
	require.NoError(t, json.Unmarshal(data, &m))
	require.NoError(t, manifest.Validate(&m))
	assert.Equal(t, manifest.DefaultName, m.Name)

	again, err := Describe()
	require.NoError(t, err)
	assert.Equal(t, data, again)
}
