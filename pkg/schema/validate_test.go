package schema_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/aretw0/knitout/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ribSchema() schema.Schema {
	return schema.Schema{
		"width":     {Type: schema.IntRange(1, 250), Default: 4, Doc: "needles"},
		"rib_width": {Type: schema.IntRange(1, 0), Doc: "knit/purl column width"},
	}
}

func TestApply_FillsDefaults(t *testing.T) {
	params, err := ribSchema().Apply(map[string]any{"rib_width": 2.0})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"width": 4, "rib_width": 2}, params)
	assert.Equal(t, 2, schema.IntParam(params, "rib_width"))
}

func TestApply_ReportsEveryFailure(t *testing.T) {
	_, err := ribSchema().Apply(map[string]any{"width": 0, "colour": "red"})
	require.Error(t, err)

	errs := schema.ValidationErrors(err)
	require.Len(t, errs, 3)

	var keys []string
	for _, e := range errs {
		var ve *schema.ValidationError
		require.True(t, errors.As(e, &ve))
		keys = append(keys, ve.Key)
	}
	assert.Equal(t, []string{"colour", "rib_width", "width"}, keys)
	assert.Contains(t, err.Error(), "3 validation errors")

	var ve *schema.ValidationError
	assert.True(t, errors.As(err, &ve), "aggregate unwraps to its members")
}

func TestSchema_ParseText(t *testing.T) {
	s := ribSchema()
	values, err := s.Parse(map[string]string{"rib_width": "3", "extra": "x"})
	require.NoError(t, err)
	assert.Equal(t, 3, values["rib_width"])

	_, err = s.Apply(values)
	assert.ErrorContains(t, err, "unknown parameter")

	_, err = s.Parse(map[string]string{"width": "wide"})
	assert.ErrorContains(t, err, "width")
}

func TestSchema_JSON(t *testing.T) {
	data, err := json.Marshal(ribSchema())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"width": {"type": "int(1..250)", "default": 4, "doc": "needles"},
		"rib_width": {"type": "int(1..)", "doc": "knit/purl column width"}
	}`, string(data))

	var back schema.Schema
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []string{"rib_width", "width"}, back.Names())
	assert.Equal(t, 4, back["width"].Default)
	assert.Nil(t, back["rib_width"].Default)

	var short schema.Schema
	require.NoError(t, json.Unmarshal([]byte(`{"n": "int", "tags": "[string]"}`), &short))
	assert.Equal(t, "[string]", short["tags"].Type.Name())
}
