package client

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceGenerator_LengthAndPrefix(t *testing.T) {
	for _, prefix := range []string{"NAT", "", "VOYAGES", "AVERYLONGPREFIX123"} {
		g, err := NewReferenceGenerator(prefix)
		require.NoError(t, err)

		for i := 0; i < 50; i++ {
			ref := g.Generate()
			assert.LessOrEqual(t, len(ref), MaxReferenceLength)
			want := prefix
			if len(want) > MaxReferenceLength {
				want = want[:MaxReferenceLength]
			}
			assert.True(t, strings.HasPrefix(ref, want), ref)
		}
	}
}

func TestReferenceGenerator_Layout(t *testing.T) {
	g, err := NewReferenceGenerator("NAT")
	require.NoError(t, err)
	g.now = func() time.Time { return time.UnixMilli(1767225600123) }

	ref := g.Generate()
	require.Len(t, ref, 15)
	assert.Equal(t, "NAT25600123", ref[:11])
	assert.Regexp(t, `^[0-9A-F]{4}$`, ref[11:])
}
