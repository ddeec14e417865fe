package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  青岛啤酒股份有限公司  ", "青岛啤酒股份有限公司"},
		{"青岛 啤酒\t股份有限公司", "青岛啤酒股份有限公司"},
		{"青岛\n啤酒", "青岛啤酒"},
		// Full-width punctuation folds to half-width.
		{"青岛啤酒（集团）有限公司", "青岛啤酒(集团)有限公司"},
		{"华为：技术", "华为:技术"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "input %q", tt.in)
	}
}

func TestNormalizeStableForCacheKeys(t *testing.T) {
	// Same company written three ways collapses to one cache key.
	variants := []string{
		"青岛啤酒（集团）",
		" 青岛啤酒(集团) ",
		"青岛 啤酒（集团）",
	}
	want := Normalize(variants[0])
	for _, v := range variants[1:] {
		assert.Equal(t, want, Normalize(v))
	}
}
