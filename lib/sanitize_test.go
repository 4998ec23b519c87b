package lib

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeRichTextKeepsSafeSubset(t *testing.T) {
	in := `<p>Tri-band <b>mesh</b> router</p><script>steal()</script>`

	out := SanitizeRichText(in)

	assert.Contains(t, out, "<p>")
	assert.Contains(t, out, "<b>mesh</b>")
	assert.NotContains(t, out, "script")
}

func TestSanitizePlainTextStripsAllMarkup(t *testing.T) {
	out := SanitizePlainText(`  Mesh <em>Router</em> AX3000  `)

	assert.Equal(t, "Mesh Router AX3000", out)
}

func TestCapitalizeFirst(t *testing.T) {
	assert.Equal(t, "Brand", CapitalizeFirst("brand"))
	assert.Equal(t, "Warranty period", CapitalizeFirst("warranty period"))
	assert.Equal(t, "", CapitalizeFirst(""))
	assert.Equal(t, "Ék", CapitalizeFirst("ék"))
}
