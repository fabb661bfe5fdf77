package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatNumbers(t *testing.T) {
	assert.Equal(t, "i", FormatRoman(1))
	assert.Equal(t, "xiv", FormatRoman(14))
	assert.Equal(t, "mcmxcix", FormatRoman(1999))
	assert.Equal(t, "0", FormatRoman(0))

	assert.Equal(t, "a", FormatAlpha(1))
	assert.Equal(t, "z", FormatAlpha(26))
	assert.Equal(t, "aa", FormatAlpha(27))
}

func TestResolveUrl(t *testing.T) {
	assert.Equal(t, "http://a.org/b/img.png", ResolveUrl("http://a.org/b/index.html", "img.png"))
	assert.Equal(t, "http://c.org/x", ResolveUrl("http://a.org/b/", "http://c.org/x"))
	assert.Equal(t, filepath.Join("dir", "img.png"), ResolveUrl(filepath.Join("dir", "doc.html"), "img.png"))
	assert.Equal(t, "", ResolveUrl("http://a.org", " "))
}

func TestDefaultUrlFetcher(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.css")
	require.NoError(t, os.WriteFile(path, []byte("p {}"), 0o644))

	res, err := DefaultUrlFetcher(path)
	require.NoError(t, err)
	assert.Equal(t, "text/css", res.MimeType)
	assert.Equal(t, int64(4), res.Content.Size())

	_, err = DefaultUrlFetcher("ftp://a.org/x")
	assert.Error(t, err)
}
