package proxysdk_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdk "github.com/leaksignal/proxy-sdk"
)

const pluginSchema = `{
	"type": "object",
	"properties": {
		"mode": {"type": "string", "enum": ["enforce", "audit"]},
		"sample_rate": {"type": "number", "minimum": 0, "maximum": 1}
	},
	"required": ["mode"]
}`

type pluginConfig struct {
	Mode       string  `json:"mode"`
	SampleRate float64 `json:"sample_rate"`
}

func TestConfigSchemaValidate(t *testing.T) {
	schema, err := sdk.NewConfigSchema(pluginSchema)
	require.NoError(t, err)

	assert.NoError(t, schema.Validate([]byte(`{"mode":"audit","sample_rate":0.5}`)))

	err = schema.Validate([]byte(`{"mode":"panic"}`))
	require.Error(t, err)
	var validationErr *sdk.ConfigValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "ConfigValidation", validationErr.Type)
	assert.NotEmpty(t, validationErr.Issues)
}

func TestConfigSchemaValidateRejectsMissingRequired(t *testing.T) {
	schema := sdk.MustConfigSchema(pluginSchema)
	assert.Error(t, schema.Validate([]byte(`{"sample_rate":0.5}`)))
	// Empty configuration is treated as an empty object.
	assert.Error(t, schema.Validate(nil))
}

func TestConfigSchemaParse(t *testing.T) {
	schema := sdk.MustConfigSchema(pluginSchema)

	var config pluginConfig
	require.NoError(t, schema.Parse([]byte(`{"mode":"enforce","sample_rate":0.25}`), &config))
	assert.Equal(t, "enforce", config.Mode)
	assert.Equal(t, 0.25, config.SampleRate)

	assert.Error(t, schema.Parse([]byte(`not json`), &config))
}

func TestMustConfigSchemaPanicsOnBadSchema(t *testing.T) {
	assert.Panics(t, func() {
		sdk.MustConfigSchema(`{"type": 42}`)
	})
}
