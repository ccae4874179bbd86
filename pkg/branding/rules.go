package branding

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Rule actions.
const (
	ActionSetAttr      = "set_attr"
	ActionSetText      = "set_text"
	ActionSetHTML      = "set_html"
	ActionInsertBefore = "insert_before"
	ActionAppendChild  = "append_child"
	ActionSetTitle     = "set_title"
	ActionStylesheet   = "stylesheet"
)

// Rule is one guarded page mutation. Select lists alternative selectors; the
// first matching element in document order is mutated, or the last one when
// Last is set. Insertions are skipped when an element with GuardID exists.
type Rule struct {
	Name           string            `yaml:"name" json:"name"`
	Action         string            `yaml:"action" json:"action"`
	Select         []Selector        `yaml:"select,omitempty" json:"select,omitempty"`
	Last           bool              `yaml:"last,omitempty" json:"last,omitempty"`
	Attrs          map[string]string `yaml:"attrs,omitempty" json:"attrs,omitempty"`
	Text           string            `yaml:"text,omitempty" json:"text,omitempty"`
	HTML           string            `yaml:"html,omitempty" json:"html,omitempty"`
	GuardID        string            `yaml:"guard_id,omitempty" json:"guard_id,omitempty"`
	Class          string            `yaml:"class,omitempty" json:"class,omitempty"`
	Href           string            `yaml:"href,omitempty" json:"href,omitempty"`
	IfTextContains string            `yaml:"if_text_contains,omitempty" json:"if_text_contains,omitempty"`
}

// RuleSet is the YAML document holding branding rules.
type RuleSet struct {
	Rules []Rule `yaml:"rules" json:"rules"`
}

// Validate checks the rule is well formed.
func (r Rule) Validate() error {
	switch r.Action {
	case ActionSetTitle:
		if r.Text == "" {
			return fmt.Errorf("branding: rule %s: text is required", r.Name)
		}
		return nil
	case ActionStylesheet:
		if r.Href == "" {
			return fmt.Errorf("branding: rule %s: href is required", r.Name)
		}
		return nil
	case ActionSetAttr, ActionSetText, ActionSetHTML:
	case ActionInsertBefore, ActionAppendChild:
		if r.GuardID == "" {
			return fmt.Errorf("branding: rule %s: guard_id is required for insertions", r.Name)
		}
	default:
		return fmt.Errorf("branding: rule %s: unknown action %q", r.Name, r.Action)
	}
	if len(r.Select) == 0 {
		return fmt.Errorf("branding: rule %s: select is required", r.Name)
	}
	return nil
}

// DecodeRules reads a YAML rule set.
func DecodeRules(r io.Reader) ([]Rule, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var set RuleSet
	if err := decoder.Decode(&set); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("branding: rule set is empty")
		}
		return nil, fmt.Errorf("branding: parse rules: %w", err)
	}
	var errs []error
	for _, rule := range set.Rules {
		if err := rule.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return set.Rules, nil
}

// DefaultRules brands the CAS login page for ISIC.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "stylesheet", Action: ActionStylesheet, Href: "/cas/themes/isic/css/isic-cas.css"},
		{
			Name:   "logo",
			Action: ActionSetAttr,
			Select: []Selector{{ID: "cas-logo"}},
			Attrs: map[string]string{
				"src":   "/cas/images/isic-logo.png",
				"title": "ISIC",
				"style": "max-width: 120px; filter: none;",
			},
		},
		{Name: "drawer-title", Action: ActionSetText, Select: []Selector{{Class: "mdc-drawer__title"}}, Text: "ISIC"},
		{Name: "drawer-subtitle", Action: ActionSetText, Select: []Selector{{Class: "mdc-drawer__subtitle"}}, Text: "Espace Numérique"},
		{Name: "title", Action: ActionSetTitle, Text: "ISIC - Authentification"},
		{
			Name:    "header",
			Action:  ActionInsertBefore,
			Select:  []Selector{{Class: "mdc-card-content"}},
			GuardID: "isic-header",
			Class:   "isic-login-header",
			HTML: `<img src="/cas/images/isic-logo.png" alt="ISIC" class="isic-logo"/>` +
				`<h1 class="isic-title">Espace Numérique ISIC</h1>` +
				`<p class="isic-subtitle">Institut Supérieur de l’Information et de la Communication</p>`,
		},
		{
			Name:    "footer",
			Action:  ActionAppendChild,
			Select:  []Selector{{ID: "main-content"}},
			GuardID: "isic-footer",
			Class:   "isic-login-footer",
			HTML: `<p>Plateforme de gestion académique <strong>ISIC</strong></p>` +
				`<div class="isic-footer-links">` +
				`<a href="https://isic.ac.ma" target="_blank">isic.ac.ma</a> <span>|</span> ` +
				`<a href="https://isic.ac.ma/contact" target="_blank">Contact</a> <span>|</span> ` +
				`<a href="https://isic.ac.ma/faq" target="_blank">Aide</a>` +
				`</div>`,
		},
		{
			Name:   "instructions",
			Action: ActionSetText,
			Select: []Selector{{Tag: "span", Within: &Selector{Tag: "h3", Class: "text-center"}}},
			Text:   "Entrez votre identifiant et votre mot de passe.",
		},
		{
			Name:   "submit",
			Action: ActionSetText,
			Select: []Selector{
				{Class: "mdc-button__label", Within: &Selector{Tag: "button", Attr: "type", AttrValue: "submit"}},
				{Tag: "input", Attr: "type", AttrValue: "submit"},
			},
			Text: "SE CONNECTER",
		},
		{
			Name:   "username-label",
			Action: ActionSetText,
			Select: []Selector{{Class: "mdc-floating-label", Within: &Selector{ID: "usernameSection"}}},
			Text:   "Identifiant :",
		},
		{
			Name:   "password-label",
			Action: ActionSetText,
			Select: []Selector{{Class: "mdc-floating-label", Within: &Selector{ID: "passwordSection"}}},
			Text:   "Mot de passe :",
		},
		{
			Name:           "security-notice",
			Action:         ActionSetHTML,
			Select:         []Selector{{Tag: "p", Within: &Selector{ID: "content"}}},
			Last:           true,
			IfTextContains: "security",
			HTML: `Pour des raisons de sécurité, veuillez vous <a href="logout">déconnecter</a> ` +
				`et fermer votre navigateur lorsque vous avez fini d’accéder aux services authentifiés.`,
		},
		{
			Name:   "forgot-password",
			Action: ActionSetText,
			Select: []Selector{{Tag: "a", Attr: "href", AttrContains: "pswdreset"}},
			Text:   "Mot de passe oublié ?",
		},
	}
}
