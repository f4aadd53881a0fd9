package content

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedAboutPage(t *testing.T) {
	lib := New(nil)

	page, err := lib.Get(context.Background(), "about")
	require.NoError(t, err)
	require.Equal(t, "About Elegance", page.Title)
	require.False(t, page.UpdatedAt.IsZero())
	require.NotEmpty(t, page.SEODescription)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(page.Body)))
	require.NoError(t, err)
	require.Equal(t, 3, doc.Find("h2").Length())
	require.Equal(t, "/products", doc.Find(`a[href="/products"]`).AttrOr("href", ""))
}

func TestGetUnknownAndUnsafeSlugs(t *testing.T) {
	lib := New(nil)
	for _, slug := range []string{"missing", "", "../etc/passwd", "a/b"} {
		_, err := lib.Get(context.Background(), slug)
		require.ErrorIs(t, err, ErrNotFound, slug)
	}
}

func TestMarkdownIsSanitised(t *testing.T) {
	lib := New(fstest.MapFS{})
	out := string(lib.Markdown("Made from **silk**. <script>alert(1)</script>"))
	require.Contains(t, out, "<strong>silk</strong>")
	require.NotContains(t, out, "<script>")
}

func TestFrontMatterOptional(t *testing.T) {
	lib := New(fstest.MapFS{
		"size-guide.md": {Data: []byte("Measure twice.")},
	})
	page, err := lib.Get(context.Background(), "size-guide")
	require.NoError(t, err)
	require.Equal(t, "Size Guide", page.Title)
	require.Contains(t, string(page.Body), "Measure twice.")
}
