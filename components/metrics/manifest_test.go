package metrics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `
version: "1"
name: partner-charts
package: github.com/example/partner-charts
charts:
  - definition:
      code: partner.chart.conversion
      name: Conversion Funnel
      kind: line
    tags: [analytics]
`

func TestDecodeManifest(t *testing.T) {
	doc, err := DecodeManifest(strings.NewReader(sampleManifest))
	require.NoError(t, err)

	assert.Equal(t, ManifestVersion, doc.Version)
	require.Len(t, doc.Charts, 1)
	assert.Equal(t, "partner.chart.conversion", doc.Charts[0].Definition.Code)
	assert.Equal(t, "line", doc.Charts[0].Definition.Kind)
}

func TestDecodeManifestRejectsUnknownVersion(t *testing.T) {
	_, err := DecodeManifest(strings.NewReader(`version: "9"` + "\ncharts: []\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported manifest version")
}

func TestDecodeManifestRejectsDuplicates(t *testing.T) {
	doc := `
version: "1"
charts:
  - definition: {code: a.chart, name: A, kind: bar}
  - definition: {code: a.chart, name: B, kind: pie}
`
	_, err := DecodeManifest(strings.NewReader(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicates chart code")
}

func TestDecodeManifestRequiresName(t *testing.T) {
	doc := `
version: "1"
charts:
  - definition: {code: a.chart, kind: bar}
`
	_, err := DecodeManifest(strings.NewReader(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing definition.name")
}

func TestRegistryLoadManifestDocument(t *testing.T) {
	doc, err := DecodeManifest(strings.NewReader(sampleManifest))
	require.NoError(t, err)

	reg := NewRegistry()
	require.NoError(t, reg.LoadManifestDocument(doc))

	def, ok := reg.Definition("partner.chart.conversion")
	require.True(t, ok)
	assert.Equal(t, "Conversion Funnel", def.Name)
}
