package parsing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripHTML_Highlighting(t *testing.T) {
	snippet := "Leading <b>revenue operations</b> at Acme &amp; Co. Based in   Austin."
	assert.Equal(t, "Leading revenue operations at Acme & Co. Based in Austin.", StripHTML(snippet))
}

func TestStripHTML_PlainText(t *testing.T) {
	assert.Equal(t, "plain snippet text", StripHTML(" plain  snippet\ntext "))
}

func TestStripHTML_Empty(t *testing.T) {
	assert.Equal(t, "", StripHTML(""))
}
