package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		language string
		want     Tag
	}{
		{"rust", TagSource},
		{"rust,ignore", TagSource},
		{" rust ", TagSource},
		{"toml", TagManifest},
		{"Rust", TagOther},
		{"rs", TagOther},
		{"", TagOther},
		{"json", TagOther},
	}
	for _, tt := range tests {
		t.Run(tt.language, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.language))
		})
	}
}

func TestTagString(t *testing.T) {
	assert.Equal(t, "source", TagSource.String())
	assert.Equal(t, "manifest", TagManifest.String())
	assert.Equal(t, "other", TagOther.String())
}
