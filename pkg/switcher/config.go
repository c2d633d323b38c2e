package switcher

// Default option values.
const (
	DefaultButtonClass    = "semi_responsive"
	DefaultSelectedClass  = "semi_responsive_selected"
	DefaultLinkHrefAttr   = "sr_link_href"
	DefaultMinWidthAttr   = "sr_min_width"
	DefaultParamValueAttr = "sr_param_val"
	DefaultParamKey       = "view"
)

// Config names the classes, attributes and query key the widget uses.
// Empty fields mean "use the default".
type Config struct {
	// ButtonClass marks a selector button.
	// Default: "semi_responsive".
	ButtonClass string `json:"buttonClass,omitempty" yaml:"buttonClass,omitempty"`

	// SelectedClass marks the currently selected button(s).
	// Default: "semi_responsive_selected".
	SelectedClass string `json:"selectedClass,omitempty" yaml:"selectedClass,omitempty"`

	// LinkHrefAttr holds the stylesheet URL of a button.
	// Default: "sr_link_href".
	LinkHrefAttr string `json:"linkHrefAttr,omitempty" yaml:"linkHrefAttr,omitempty"`

	// MinWidthAttr holds the minimum viewport width of a button.
	// Default: "sr_min_width".
	MinWidthAttr string `json:"minWidthAttr,omitempty" yaml:"minWidthAttr,omitempty"`

	// ParamValueAttr holds the URL parameter value of a button.
	// Default: "sr_param_val".
	ParamValueAttr string `json:"paramValueAttr,omitempty" yaml:"paramValueAttr,omitempty"`

	// ParamKey is the query parameter the selection is stored under.
	// Default: "view".
	ParamKey string `json:"paramKey,omitempty" yaml:"paramKey,omitempty"`
}

// DefaultConfig returns a Config with every option set to its default.
func DefaultConfig() Config {
	return Config{
		ButtonClass:    DefaultButtonClass,
		SelectedClass:  DefaultSelectedClass,
		LinkHrefAttr:   DefaultLinkHrefAttr,
		MinWidthAttr:   DefaultMinWidthAttr,
		ParamValueAttr: DefaultParamValueAttr,
		ParamKey:       DefaultParamKey,
	}
}

// Merge returns c with every non-empty field of over applied on top.
func (c Config) Merge(over Config) Config {
	if over.ButtonClass != "" {
		c.ButtonClass = over.ButtonClass
	}
	if over.SelectedClass != "" {
		c.SelectedClass = over.SelectedClass
	}
	if over.LinkHrefAttr != "" {
		c.LinkHrefAttr = over.LinkHrefAttr
	}
	if over.MinWidthAttr != "" {
		c.MinWidthAttr = over.MinWidthAttr
	}
	if over.ParamValueAttr != "" {
		c.ParamValueAttr = over.ParamValueAttr
	}
	if over.ParamKey != "" {
		c.ParamKey = over.ParamKey
	}
	return c
}
