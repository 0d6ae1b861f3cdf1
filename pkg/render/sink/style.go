package sink

import (
	"bytes"
	"encoding/xml"
)

// Style holds the fixed colors and stroke widths of a skyline.
type Style struct {
	Fill        string
	FocusFill   string
	BaseFill    string
	Stroke      string
	StrokeWidth float64
	InnerWidth  float64
	Opacity     float64
	FontSize    float64
}

// DefaultStyle is the solarized palette the skyline has always used.
func DefaultStyle() Style {
	return Style{
		Fill:        "#ffffff",
		FocusFill:   "#d33682",
		BaseFill:    "#002b36",
		Stroke:      "black",
		StrokeWidth: 0.5,
		InnerWidth:  0.25,
		Opacity:     0.7,
		FontSize:    2,
	}
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
