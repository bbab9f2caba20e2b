package vec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestVec3Basics(t *testing.T) {
	a := Vec3{X: 1, Y: 2, Z: 0}
	b := Vec3{X: 0, Y: 1, Z: 1}

	assert.Equal(t, Vec3{X: 1, Y: 3, Z: 1}, a.Add(b))
	assert.Equal(t, "1:2:0", a.String())
}

func TestVec3Decoding(t *testing.T) {
	var fromYAML Vec3
	require.NoError(t, yaml.Unmarshal([]byte("{x: 3, y: 4, z: 1}"), &fromYAML))
	assert.Equal(t, Vec3{X: 3, Y: 4, Z: 1}, fromYAML)

	data, err := json.Marshal(Vec3{X: 5})
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":5,"y":0,"z":0}`, string(data))
}
