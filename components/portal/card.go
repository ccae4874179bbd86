package portal

import (
	"github.com/ettle/strcase"
)

const (
	defaultCardIcon  = "fa-bar-chart"
	defaultCardColor = "primary"
)

// CardClickHandler receives the action identifier of a clicked card.
type CardClickHandler func(action string)

// KPICard renders a CardDescriptor. It holds no state beyond its descriptor.
type KPICard struct {
	desc CardDescriptor
}

// NewKPICard applies descriptor defaults and returns the card.
func NewKPICard(desc CardDescriptor) KPICard {
	return KPICard{desc: desc.withDefaults()}
}

// Descriptor returns the card descriptor with defaults applied.
func (c KPICard) Descriptor() CardDescriptor {
	return c.desc
}

// ColorClass is the CSS modifier class for the card color.
func (c KPICard) ColorClass() string {
	return "isic-kpi-card--" + strcase.ToKebab(c.desc.Color)
}

// Clickable reports whether a click would produce an action.
func (c KPICard) Clickable() bool {
	return c.desc.Action != ""
}

// Click forwards the card action to handler. Without an action or a handler
// the click is a no-op.
func (c KPICard) Click(handler CardClickHandler) bool {
	if c.desc.Action == "" || handler == nil {
		return false
	}
	handler(c.desc.Action)
	return true
}

func (d CardDescriptor) withDefaults() CardDescriptor {
	if d.Icon == "" {
		d.Icon = defaultCardIcon
	}
	if d.Color == "" {
		d.Color = defaultCardColor
	}
	return d
}
