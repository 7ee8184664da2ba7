package schema_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bitlatte/redefine/internal/schema"
)

type stubAssets struct {
	img schema.Image
	err error
	got []string
}

func (s *stubAssets) ResolveImage(ref string) (schema.Image, error) {
	s.got = append(s.got, ref)
	return s.img, s.err
}

func requireValidationError(t *testing.T, err error) *schema.ValidationError {
	t.Helper()
	var verr *schema.ValidationError
	require.True(t, errors.As(err, &verr), "expected *schema.ValidationError, got %v", err)
	return verr
}

func TestValidateBlogPost(t *testing.T) {
	tests := []struct {
		name     string
		raw      schema.Raw
		expected schema.BlogPost
	}{
		{
			name: "string date and explicit author",
			raw: schema.Raw{
				"title":       "Lakehouse basics",
				"description": "What a lakehouse is",
				"publishDate": "2024-03-01",
				"author":      "Jane Doe",
			},
			expected: schema.BlogPost{
				Title:       "Lakehouse basics",
				Description: "What a lakehouse is",
				PublishDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
				Author:      "Jane Doe",
			},
		},
		{
			name: "missing author falls back to default",
			raw: schema.Raw{
				"title":       "Untitled",
				"description": "",
				"publishDate": time.Date(2023, 12, 24, 10, 0, 0, 0, time.UTC),
			},
			expected: schema.BlogPost{
				Title:       "Untitled",
				PublishDate: time.Date(2023, 12, 24, 10, 0, 0, 0, time.UTC),
				Author:      schema.DefaultAuthor,
			},
		},
		{
			name: "null author falls back to default",
			raw: schema.Raw{
				"title":       "t",
				"description": "d",
				"publishDate": "2024-01-01T08:30:00+02:00",
				"author":      nil,
			},
			expected: schema.BlogPost{
				Title:       "t",
				Description: "d",
				PublishDate: time.Date(2024, 1, 1, 6, 30, 0, 0, time.UTC),
				Author:      schema.DefaultAuthor,
			},
		},
		{
			name: "unknown keys are ignored",
			raw: schema.Raw{
				"title":       "t",
				"description": "d",
				"publishDate": "Mar 5, 2024",
				"tags":        []interface{}{"data"},
			},
			expected: schema.BlogPost{
				Title:       "t",
				Description: "d",
				PublishDate: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
				Author:      schema.DefaultAuthor,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post, err := schema.ValidateBlogPost(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, post)
		})
	}
}

func TestValidateBlogPostRejects(t *testing.T) {
	tests := []struct {
		name   string
		raw    schema.Raw
		fields []string
	}{
		{
			name:   "unparsable date",
			raw:    schema.Raw{"title": "t", "description": "d", "publishDate": "not-a-date"},
			fields: []string{"publishDate"},
		},
		{
			name:   "empty date",
			raw:    schema.Raw{"title": "t", "description": "d", "publishDate": ""},
			fields: []string{"publishDate"},
		},
		{
			name:   "missing everything",
			raw:    schema.Raw{},
			fields: []string{"title", "description", "publishDate"},
		},
		{
			name:   "wrong types",
			raw:    schema.Raw{"title": 3, "description": true, "publishDate": "2024-01-01", "author": 7},
			fields: []string{"title", "description", "author"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := schema.ValidateBlogPost(tt.raw)
			verr := requireValidationError(t, err)
			assert.Equal(t, schema.Blog, verr.Collection)
			require.Len(t, verr.Fields, len(tt.fields))
			for _, f := range tt.fields {
				assert.True(t, verr.HasField(f), "expected %s to be reported", f)
			}
		})
	}
}

func TestValidatePolicyPage(t *testing.T) {
	page, err := schema.ValidatePolicyPage(schema.Raw{
		"title":       "Privacy Policy",
		"description": "How we handle your data",
		"updatedDate": "2023-06-15",
	})
	require.NoError(t, err)
	assert.Equal(t, schema.PolicyPage{
		Title:       "Privacy Policy",
		Description: "How we handle your data",
		UpdatedDate: time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC),
	}, page)

	_, err = schema.ValidatePolicyPage(schema.Raw{"title": "Terms", "description": "d"})
	verr := requireValidationError(t, err)
	assert.Equal(t, schema.Policies, verr.Collection)
	assert.True(t, verr.HasField("updatedDate"))
	assert.Contains(t, verr.Error(), "policies")
	assert.Contains(t, verr.Error(), "updatedDate")
}

func TestValidateAuthor(t *testing.T) {
	assets := &stubAssets{img: schema.Image{Src: "/_astro/jane.abcd1234.png", Width: 64, Height: 64, Format: "png"}}

	author, err := schema.ValidateAuthor(schema.Raw{
		"name":  "Jane Doe",
		"title": "Head of Data",
		"image": "./jane.png",
	}, assets)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", author.Name)
	assert.Equal(t, "Head of Data", author.Title)
	assert.Equal(t, assets.img, author.Image)
	assert.Equal(t, []string{"./jane.png"}, assets.got)
}

func TestValidateAuthorRejects(t *testing.T) {
	t.Run("empty name", func(t *testing.T) {
		_, err := schema.ValidateAuthor(schema.Raw{"name": "", "title": "CTO", "image": "a.png"}, &stubAssets{})
		verr := requireValidationError(t, err)
		assert.Equal(t, schema.Authors, verr.Collection)
		assert.True(t, verr.HasField("name"))
	})

	t.Run("image resolution failure", func(t *testing.T) {
		assets := &stubAssets{err: errors.New("file not found")}
		_, err := schema.ValidateAuthor(schema.Raw{"name": "n", "title": "t", "image": "missing.png"}, assets)
		verr := requireValidationError(t, err)
		require.Len(t, verr.Fields, 1)
		assert.Equal(t, "image", verr.Fields[0].Field)
		assert.Contains(t, verr.Fields[0].Message, "file not found")
	})

	t.Run("missing image is not resolved", func(t *testing.T) {
		assets := &stubAssets{}
		_, err := schema.ValidateAuthor(schema.Raw{"name": "n", "title": "t"}, assets)
		verr := requireValidationError(t, err)
		assert.True(t, verr.HasField("image"))
		assert.Empty(t, assets.got)
	})
}

func TestCoerceDate(t *testing.T) {
	tests := []struct {
		name     string
		in       interface{}
		expected time.Time
	}{
		{name: "iso date", in: "2024-02-01", expected: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{name: "rfc3339", in: "2024-02-01T12:00:00Z", expected: time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)},
		{name: "rfc1123z", in: "Thu, 01 Feb 2024 12:00:00 +0000", expected: time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)},
		{name: "long form", in: "February 1, 2024", expected: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{name: "epoch millis int", in: 1706745600000, expected: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{name: "epoch millis float", in: float64(1706745600000), expected: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{name: "time value in other zone", in: time.Date(2024, 2, 1, 1, 0, 0, 0, time.FixedZone("CET", 3600)), expected: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := schema.CoerceDate(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(got), "expected %s, got %s", tt.expected, got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}

	for _, bad := range []interface{}{nil, "", "not-a-date", true, []interface{}{"2024"}} {
		_, err := schema.CoerceDate(bad)
		assert.Error(t, err, "expected %v to be rejected", bad)
	}
}

func TestRegistry(t *testing.T) {
	r := schema.NewRegistry()
	assert.Equal(t, []schema.Collection{schema.Authors, schema.Blog, schema.Policies}, r.Names())

	rec, err := r.Validate(schema.Blog, schema.Raw{"title": "t", "description": "d", "publishDate": "2024-01-01"}, nil)
	require.NoError(t, err)
	assert.IsType(t, schema.BlogPost{}, rec)

	rec, err = r.Validate(schema.Policies, schema.Raw{"title": "t", "description": "d", "updatedDate": "2024-01-01"}, nil)
	require.NoError(t, err)
	assert.IsType(t, schema.PolicyPage{}, rec)

	_, err = r.Validate("pages", schema.Raw{}, nil)
	assert.Error(t, err)

	_, ok := r.Lookup("pages")
	assert.False(t, ok)
}
