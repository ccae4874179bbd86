package portal

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `
version: "1"
name: isic
sections:
  - code: finances
    name: Finances
    icon: fa-money
    sequence: 50
    groups: [isic_base.group_isic_direction]
  - code: ged
    name: Mes fichiers
    active: false
`

func TestDecodeManifestAppliesToCatalog(t *testing.T) {
	doc, err := DecodeManifest(strings.NewReader(sampleManifest))
	require.NoError(t, err)
	assert.Equal(t, ManifestVersion, doc.Version)
	require.Len(t, doc.Sections, 2)

	catalog := DefaultSectionCatalog()
	require.NoError(t, catalog.LoadManifestDocument(doc))

	finances, ok := catalog.Definition("finances")
	require.True(t, ok)
	assert.Equal(t, 50, finances.Sequence)
	assert.Equal(t, "fa-money", finances.Icon)

	ged, ok := catalog.Definition("ged")
	require.True(t, ok)
	assert.Equal(t, "Mes fichiers", ged.Name)
	assert.False(t, ged.IsActive())
	assert.Equal(t, defaultSectionIcon, ged.Icon)

	visible := catalog.Visible(ViewerContext{Groups: []string{GroupDirection}})
	codes := make([]string, len(visible))
	for i, def := range visible {
		codes[i] = def.Code
	}
	assert.Equal(t, []string{"direction", "approbation", "finances"}, codes)
}

func TestDecodeManifestRejectsUnknownFields(t *testing.T) {
	_, err := DecodeManifest(strings.NewReader("version: \"1\"\nsections:\n  - code: a\n    name: A\n    colour: red\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation")
}

func TestDecodeManifestRejectsBadEntries(t *testing.T) {
	cases := map[string]string{
		"empty":         "",
		"version":       "version: \"2\"\nsections: []\n",
		"missing name":  "sections:\n  - code: a\n",
		"bad code":      "sections:\n  - code: Not Valid\n    name: A\n",
		"bad icon":      "sections:\n  - code: a\n    name: A\n    icon: glyph\n",
		"duplicate":     "sections:\n  - code: a\n    name: A\n  - code: a\n    name: B\n",
		"negative seq":  "sections:\n  - code: a\n    name: A\n    sequence: -1\n",
		"wrong type":    "sections:\n  - code: a\n    name: A\n    active: maybe\n",
		"missing list":  "version: \"1\"\n",
		"not a mapping": "- a\n- b\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeManifest(strings.NewReader(input))
			assert.Error(t, err)
		})
	}
}

func TestReadManifestRoundTrip(t *testing.T) {
	active := true
	doc := &SectionManifestDocument{
		Version: ManifestVersion,
		Sections: []SectionDefinition{
			{Code: "stages", Name: "Stages", Icon: "fa-briefcase", Sequence: 60, Active: &active, HasChart: true},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, EncodeManifest(&buf, doc))

	path := filepath.Join(t.TempDir(), "sections.yaml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	catalog := DefaultSectionCatalog()
	loaded, err := catalog.LoadManifestFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, loaded.Source)
	def, ok := catalog.Definition("stages")
	require.True(t, ok)
	assert.True(t, def.HasChart)

	_, err = ReadManifest(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateSection(t *testing.T) {
	assert.NoError(t, ValidateSection(SectionDefinition{Code: "ok", Name: "Ok", Icon: "fa-check"}))
	assert.Error(t, ValidateSection(SectionDefinition{Code: "Bad-Code", Name: "Bad"}))
}
