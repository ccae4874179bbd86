package branding

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const casLoginPage = `<!DOCTYPE html>
<html><head><title>CAS - Central Authentication Service</title></head>
<body>
<aside><div class="mdc-drawer__title">CAS</div><div class="mdc-drawer__subtitle">Apereo</div></aside>
<img id="cas-logo" src="/images/cas-logo.png" title="Apereo CAS">
<main id="main-content">
  <div id="content">
    <h3 class="text-center"><span>Enter Username &amp; Password</span></h3>
    <div class="mdc-card-content">
      <form id="fm1">
        <section id="usernameSection"><label class="mdc-floating-label">Username:</label></section>
        <section id="passwordSection"><label class="mdc-floating-label">Password:</label></section>
        <button type="submit"><span class="mdc-button__label">LOGIN</span></button>
      </form>
      <a href="/cas/pswdreset">Forgot your password?</a>
    </div>
    <p>Intro</p>
    <p>For security reasons, please log out and exit your web browser.</p>
  </div>
</main>
</body></html>`

func parse(t *testing.T, page []byte) *html.Node {
	t.Helper()
	doc, err := html.Parse(bytes.NewReader(page))
	require.NoError(t, err)
	return doc
}

func text(t *testing.T, doc *html.Node, sel ...Selector) string {
	t.Helper()
	n := findFirst(doc, sel...)
	require.NotNil(t, n, "selector %+v matched nothing", sel)
	return textContent(n)
}

func TestRewriteBrandsLoginPage(t *testing.T) {
	out, applied, err := NewRewriter(DefaultRules()).RewriteCount([]byte(casLoginPage))
	require.NoError(t, err)
	assert.Positive(t, applied)
	doc := parse(t, out)

	logo := findFirst(doc, Selector{ID: "cas-logo"})
	require.NotNil(t, logo)
	assert.Equal(t, "/cas/images/isic-logo.png", attr(logo, "src"))
	assert.Equal(t, "ISIC", attr(logo, "title"))

	assert.Equal(t, "ISIC - Authentification", text(t, doc, Selector{Tag: "title"}))
	assert.Equal(t, "ISIC", text(t, doc, Selector{Class: "mdc-drawer__title"}))
	assert.Equal(t, "Espace Numérique", text(t, doc, Selector{Class: "mdc-drawer__subtitle"}))
	assert.Equal(t, "Entrez votre identifiant et votre mot de passe.", text(t, doc, Selector{Tag: "span", Within: &Selector{Tag: "h3"}}))
	assert.Equal(t, "SE CONNECTER", text(t, doc, Selector{Class: "mdc-button__label"}))
	assert.Equal(t, "Identifiant :", text(t, doc, Selector{Class: "mdc-floating-label", Within: &Selector{ID: "usernameSection"}}))
	assert.Equal(t, "Mot de passe :", text(t, doc, Selector{Class: "mdc-floating-label", Within: &Selector{ID: "passwordSection"}}))
	assert.Equal(t, "Mot de passe oublié ?", text(t, doc, Selector{Tag: "a", Attr: "href", AttrContains: "pswdreset"}))

	header := findFirst(doc, Selector{ID: "isic-header"})
	require.NotNil(t, header)
	assert.True(t, hasClass(header, "isic-login-header"))
	assert.Equal(t, "mdc-card-content", attr(header.NextSibling, "class"))
	assert.Contains(t, textContent(header), "Espace Numérique ISIC")

	footer := findFirst(doc, Selector{ID: "isic-footer"})
	require.NotNil(t, footer)
	assert.Equal(t, "main-content", attr(footer.Parent, "id"))
	assert.Len(t, findAll(footer, []Selector{{Tag: "a"}}), 3)

	paragraphs := findAll(doc, []Selector{{Tag: "p", Within: &Selector{ID: "content"}}})
	notice := paragraphs[len(paragraphs)-1]
	assert.Contains(t, textContent(notice), "Pour des raisons de sécurité")
	assert.Equal(t, "Intro", textContent(paragraphs[len(paragraphs)-2]))

	links := findAll(doc, []Selector{{Tag: "link", Attr: "href", AttrValue: "/cas/themes/isic/css/isic-cas.css"}})
	assert.Len(t, links, 1)
}

func TestRewriteIsIdempotent(t *testing.T) {
	rewriter := NewRewriter(DefaultRules())
	once := rewriter.Rewrite([]byte(casLoginPage))
	twice, applied, err := rewriter.RewriteCount(once)
	require.NoError(t, err)
	assert.Zero(t, applied)
	assert.Equal(t, string(once), string(twice))
}

func TestRewriteSkipsMissingElements(t *testing.T) {
	page := []byte(`<html><head></head><body><p>Nothing to brand</p></body></html>`)
	out, applied, err := NewRewriter(DefaultRules()).RewriteCount(page)
	require.NoError(t, err)
	// Only the stylesheet and the title apply.
	assert.Equal(t, 2, applied)
	doc := parse(t, out)
	assert.Nil(t, findFirst(doc, Selector{ID: "isic-header"}))
	assert.Equal(t, "Nothing to brand", text(t, doc, Selector{Tag: "p"}))
}

func TestSecurityNoticeRequiresKeyword(t *testing.T) {
	page := []byte(`<html><body><div id="content"><p>Welcome</p></div></body></html>`)
	out := NewRewriter(DefaultRules()).Rewrite(page)
	assert.Equal(t, "Welcome", text(t, parse(t, out), Selector{Tag: "p"}))
}

func TestInjectedFragmentsAreSanitized(t *testing.T) {
	rules := []Rule{{
		Name:    "banner",
		Action:  ActionAppendChild,
		Select:  []Selector{{Tag: "body"}},
		GuardID: "banner",
		HTML:    `<p class="note" onclick="steal()">Hi</p><script>alert(1)</script>`,
	}}
	out := NewRewriter(rules).Rewrite([]byte(`<html><body></body></html>`))
	assert.NotContains(t, string(out), "script")
	assert.NotContains(t, string(out), "onclick")
	assert.Contains(t, string(out), `<p class="note">Hi</p>`)
}

func TestSecondPassReachesElementsFromFirstPass(t *testing.T) {
	rules := []Rule{
		{Name: "label", Action: ActionSetText, Select: []Selector{{Class: "late"}}, Text: "ready"},
		{Name: "inject", Action: ActionAppendChild, Select: []Selector{{Tag: "body"}}, GuardID: "box", HTML: `<span class="late">pending</span>`},
	}
	out := NewRewriter(rules).Rewrite([]byte(`<html><body></body></html>`))
	assert.Equal(t, "ready", text(t, parse(t, out), Selector{Class: "late"}))
}

func TestDecodeRules(t *testing.T) {
	rules, err := DecodeRules(strings.NewReader(`
rules:
  - name: logo
    action: set_attr
    select:
      - id: cas-logo
    attrs:
      src: /logo.png
  - name: title
    action: set_title
    text: Portal
`))
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "/logo.png", rules[0].Attrs["src"])

	_, err = DecodeRules(strings.NewReader("rules:\n  - name: x\n    action: explode\n"))
	assert.Error(t, err)
	_, err = DecodeRules(strings.NewReader("rules:\n  - name: x\n    action: append_child\n    select: [{tag: body}]\n"))
	assert.Error(t, err)
	_, err = DecodeRules(strings.NewReader("rules:\n  - name: x\n    action: set_text\n    colour: red\n"))
	assert.Error(t, err)
	_, err = DecodeRules(strings.NewReader(""))
	assert.Error(t, err)
}

func TestDefaultRulesAreValid(t *testing.T) {
	for _, rule := range DefaultRules() {
		assert.NoError(t, rule.Validate(), rule.Name)
	}
}
