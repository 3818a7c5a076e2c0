package facturx_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rezonia/facturx-fusion/internal/facturx"
)

func TestProfileFromGuideline(t *testing.T) {
	tests := []struct {
		guideline string
		want      facturx.Profile
	}{
		{"urn:factur-x.eu:1p0:minimum", facturx.ProfileMinimum},
		{"urn:factur-x.eu:1p0:basicwl", facturx.ProfileBasicWL},
		{"urn:cen.eu:en16931:2017#compliant#urn:factur-x.eu:1p0:basic", facturx.ProfileBasic},
		{"urn:cen.eu:en16931:2017", facturx.ProfileEN16931},
		{"urn:cen.eu:en16931:2017#conformant#urn:factur-x.eu:1p0:extended", facturx.ProfileExtended},
		{"urn:cen.eu:en16931:2017#compliant#urn:xeinkauf.de:kosit:xrechnung_3.0", facturx.ProfileXRechnung},
		{"  URN:FACTUR-X.EU:1P0:MINIMUM  ", facturx.ProfileMinimum},
		{"urn:example:custom", facturx.ProfileUnknown},
		{"", facturx.ProfileUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.guideline, func(t *testing.T) {
			assert.Equal(t, tt.want, facturx.ProfileFromGuideline(tt.guideline))
		})
	}
}

func TestProfileString(t *testing.T) {
	assert.Equal(t, "unknown", facturx.ProfileUnknown.String())
	assert.Equal(t, "en16931", facturx.ProfileEN16931.String())
}

func TestProfileConformanceLevel(t *testing.T) {
	for _, p := range facturx.Profiles {
		assert.NotEmpty(t, p.ConformanceLevel(), p)
	}
	assert.Equal(t, "EN 16931", facturx.ProfileEN16931.ConformanceLevel())
	assert.Empty(t, facturx.ProfileUnknown.ConformanceLevel())
}
