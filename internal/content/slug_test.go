package content_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Bitlatte/redefine/internal/content"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		id       string
		expected string
	}{
		{id: "hello.md", expected: "hello"},
		{id: "Hello World.md", expected: "hello-world"},
		{id: "2024/data-mesh.mdx", expected: "2024/data-mesh"},
		{id: "guides/index.md", expected: "guides"},
		{id: "index.md", expected: "index"},
		{id: "What's new?.md", expected: "whats-new"},
		{id: "snake_case.yaml", expected: "snake_case"},
		{id: "Ünïcode Title.md", expected: "ünïcode-title"},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.expected, content.Slugify(tt.id))
		})
	}
}

func TestNormalizeSlug(t *testing.T) {
	tests := []struct {
		slug     string
		expected string
	}{
		{slug: "my-custom", expected: "my-custom"},
		{slug: "/wrapped/", expected: "wrapped"},
		{slug: "../../escaped", expected: "escaped"},
		{slug: "2024/./../post", expected: "2024/post"},
		{slug: "Hello World?x=1", expected: "hello-worldx1"},
		{slug: "v1.2", expected: "v12"},
		{slug: "/", expected: ""},
		{slug: "..", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			assert.Equal(t, tt.expected, content.NormalizeSlug(tt.slug))
		})
	}
}
