package overlay

// Styles controls the look of the endpoint-drag overlay: the grab handles
// and the highlight line drawn behind a selected connector.
type Styles struct {
	HandleRadius      float64
	HandleFill        string
	HandleStroke      string
	HandleStrokeWidth float64
	HandleOpacity     float64
	HandleShadowColor string
	HandleShadowBlur  float64
	HoverScale        float64

	HighlightColor      string
	HighlightWidthExtra float64
	HighlightOpacity    float64
}

func DefaultStyles() Styles {
	return Styles{
		HandleRadius:      7,
		HandleFill:        "#ffffff",
		HandleStroke:      "#2f6fed",
		HandleStrokeWidth: 2,
		HandleOpacity:     1,
		HandleShadowColor: "#00000040",
		HandleShadowBlur:  4,
		HoverScale:        1.3,

		HighlightColor:      "#2f6fed",
		HighlightWidthExtra: 6,
		HighlightOpacity:    0.35,
	}
}

// StylesPatch overrides a subset of Styles. Nil fields keep their current
// value.
type StylesPatch struct {
	HandleRadius      *float64
	HandleFill        *string
	HandleStroke      *string
	HandleStrokeWidth *float64
	HandleOpacity     *float64
	HoverScale        *float64

	HighlightColor      *string
	HighlightWidthExtra *float64
	HighlightOpacity    *float64
}

func (s Styles) Merge(p StylesPatch) Styles {
	if p.HandleRadius != nil {
		s.HandleRadius = *p.HandleRadius
	}
	if p.HandleFill != nil {
		s.HandleFill = *p.HandleFill
	}
	if p.HandleStroke != nil {
		s.HandleStroke = *p.HandleStroke
	}
	if p.HandleStrokeWidth != nil {
		s.HandleStrokeWidth = *p.HandleStrokeWidth
	}
	if p.HandleOpacity != nil {
		s.HandleOpacity = *p.HandleOpacity
	}
	if p.HoverScale != nil {
		s.HoverScale = *p.HoverScale
	}
	if p.HighlightColor != nil {
		s.HighlightColor = *p.HighlightColor
	}
	if p.HighlightWidthExtra != nil {
		s.HighlightWidthExtra = *p.HighlightWidthExtra
	}
	if p.HighlightOpacity != nil {
		s.HighlightOpacity = *p.HighlightOpacity
	}
	return s
}
