package extractor

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/law-makers/quotecrawl/pkg/models"
)

const listingPage = `<!DOCTYPE html>
<html>
<body>
<div class="container">
	<div class="quote">
		<span class="text">“The world as we have created it is a process of our thinking.”</span>
		<span>by <small class="author">Albert Einstein</small>
		<a href="/author/Albert-Einstein">(about)</a></span>
		<div class="tags">
			Tags:
			<a class="tag" href="/tag/inspirational/">inspirational</a>
			<a class="tag" href="/tag/life/">life</a>
		</div>
	</div>
	<div class="quote">
		<span class="text">“It is our choices, Harry.”</span>
		<span>by <small class="author">J.K. Rowling</small></span>
		<div class="tags">Tags:</div>
	</div>
	<nav><ul class="pager"><li class="next"><a href="/js/page/2/">Next <span aria-hidden="true">&rarr;</span></a></li></ul></nav>
</div>
</body>
</html>`

func TestExtractQuotes_Fields(t *testing.T) {
	quotes, err := ExtractQuotes(listingPage)
	require.NoError(t, err)
	require.Len(t, quotes, 2)

	assert.Equal(t, models.Quote{
		Quote:  "“The world as we have created it is a process of our thinking.”",
		Author: "Albert Einstein",
		Tags:   []string{"inspirational", "life"},
	}, quotes[0])

	assert.Equal(t, "J.K. Rowling", quotes[1].Author)
	assert.NotNil(t, quotes[1].Tags)
	assert.Empty(t, quotes[1].Tags)
}

func TestExtractQuotes_KeepsWhitespaceVerbatim(t *testing.T) {
	page := `<div class="quote"><span> padded </span><small>
	Someone </small><a class="tag"> x </a></div>`

	quotes, err := ExtractQuotes(page)
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, " padded ", quotes[0].Quote)
	assert.Equal(t, "\n\tSomeone ", quotes[0].Author)
	assert.Equal(t, []string{" x "}, quotes[0].Tags)
}

func TestExtractQuotes_DocumentOrder(t *testing.T) {
	var sb strings.Builder
	for _, q := range []string{"A", "B", "C", "D"} {
		sb.WriteString(`<div class="quote"><span>` + q + `</span><small>Author` + q + `</small></div>`)
	}

	quotes, err := ExtractQuotes(sb.String())
	require.NoError(t, err)

	var got []string
	for _, q := range quotes {
		got = append(got, q.Quote)
	}
	assert.Equal(t, []string{"A", "B", "C", "D"}, got)
}

func TestExtractQuotes_NoContainers(t *testing.T) {
	quotes, err := ExtractQuotes(`<html><body><p>nothing here</p></body></html>`)
	require.NoError(t, err)
	assert.NotNil(t, quotes)
	assert.Empty(t, quotes)
}

func TestExtractQuotes_MissingAuthor(t *testing.T) {
	page := `<div class="quote"><span>A</span><small>ok</small></div>
<div class="quote"><span>B</span></div>`

	quotes, err := ExtractQuotes(page)
	require.Error(t, err)
	assert.Nil(t, quotes)
	assert.True(t, errors.Is(err, ErrMalformedQuote))
	assert.Contains(t, err.Error(), "quote 2")
}

func TestExtractQuotes_MissingText(t *testing.T) {
	_, err := ExtractQuotes(`<div class="quote"><small>Nobody</small></div>`)
	assert.ErrorIs(t, err, ErrMalformedQuote)
}

func TestExtractQuotes_TolerantOfMalformedMarkup(t *testing.T) {
	page := `<div class="quote"><span>Unclosed <b>bold</span><small>X</small><a class="tag">t</a>`

	quotes, err := ExtractQuotes(page)
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "X", quotes[0].Author)
	assert.Equal(t, []string{"t"}, quotes[0].Tags)
}

func TestExtractQuotes_FirstNestedElementWins(t *testing.T) {
	page := `<div class="quote">
<p><span class="text">first <i>nested</i></span></p>
<span>second</span>
<span>by <small class="author">Author1</small><small>Other</small></span>
</div>`

	quotes, err := ExtractQuotes(page)
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "first nested", quotes[0].Quote)
	assert.Equal(t, "Author1", quotes[0].Author)
	assert.Equal(t, []string{}, quotes[0].Tags)
}
