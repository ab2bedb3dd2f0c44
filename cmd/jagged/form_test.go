package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/qri-io/jagged"
)

func TestFormYAML(t *testing.T) {
	f := jagged.MustForm(`{"class":"RecordArray","contents":{"z":"int64","a":{"class":"ListOffsetArray64","offsets":"i64","content":"float64"}}}`)
	out, err := formYAML(f, false)
	require.NoError(t, err)
	assert.Equal(t, `class: RecordArray
contents:
    z: int64
    a:
        class: ListOffsetArray64
        offsets: i64
        content: float64
`, out)

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "RecordArray", decoded["class"])
}

func TestFormYAMLVerbose(t *testing.T) {
	f := jagged.MustForm(`{"class":"RegularArray","size":3,"content":"bool"}`)
	out, err := formYAML(f, true)
	require.NoError(t, err)

	var decoded struct {
		Class         string                 `yaml:"class"`
		Size          int                    `yaml:"size"`
		HasIdentities bool                   `yaml:"has_identities"`
		Parameters    map[string]interface{} `yaml:"parameters"`
		Content       map[string]interface{} `yaml:"content"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "RegularArray", decoded.Class)
	assert.Equal(t, 3, decoded.Size)
	assert.False(t, decoded.HasIdentities)
	assert.Empty(t, decoded.Parameters)
	assert.Equal(t, "bool", decoded.Content["primitive"])
}

func TestNewLogger(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		assert.NotNil(t, newLogger(lvl))
	}
}
