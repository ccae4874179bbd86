package portal

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-echarts/go-echarts/v2/types"
)

// Color schemes a viewer can select.
const (
	ColorSchemeLight = "light"
	ColorSchemeDark  = "dark"
)

// ColorScheme normalizes a stored preference: dark when set to dark, light otherwise.
func ColorScheme(preference string) string {
	if strings.EqualFold(strings.TrimSpace(preference), ColorSchemeDark) {
		return ColorSchemeDark
	}
	return ColorSchemeLight
}

// ThemeForScheme picks the chart theme matching a color scheme.
func ThemeForScheme(scheme string) string {
	if ColorScheme(scheme) == ColorSchemeDark {
		return types.ThemeChalk
	}
	return types.ThemeWesteros
}

// Company carries the background image availability of a company.
type Company struct {
	ID                      int  `json:"id"`
	HasBackgroundImageDark  bool `json:"has_background_image_dark"`
	HasBackgroundImageLight bool `json:"has_background_image_light"`
}

// CompanyBackgroundImageURL returns the home menu background for scheme, or
// an empty string when the company has no image for it.
func CompanyBackgroundImageURL(company *Company, scheme string) string {
	if company == nil {
		return ""
	}
	field := ""
	switch {
	case scheme == ColorSchemeDark && company.HasBackgroundImageDark:
		field = "background_image_dark"
	case scheme != ColorSchemeDark && company.HasBackgroundImageLight:
		field = "background_image_light"
	default:
		return ""
	}
	return fmt.Sprintf("/web/image?model=%s&field=%s&id=%d",
		url.QueryEscape("res.company"), url.QueryEscape(field), company.ID)
}
