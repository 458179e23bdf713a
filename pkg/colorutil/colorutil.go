// Package colorutil provides shared color utilities for the annotator.
package colorutil

import (
	"fmt"
	"image/color"
)

// Common colors used throughout the application.
var (
	Black  = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Green  = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	Yellow = color.RGBA{R: 255, G: 255, B: 0, A: 255}
)

// Palette is a set of highly saturated colors assigned to annotation
// classes in order.
var Palette = []color.RGBA{
	{255, 82, 82, 255},   // Red
	{76, 175, 80, 255},   // Green
	{33, 150, 243, 255},  // Blue
	{255, 235, 59, 255},  // Yellow
	{233, 30, 99, 255},   // Pink
	{0, 188, 212, 255},   // Cyan
	{255, 152, 0, 255},   // Orange
	{156, 39, 176, 255},  // Purple
	{139, 195, 74, 255},  // Light green
	{121, 85, 72, 255},   // Brown
	{63, 81, 181, 255},   // Indigo
	{0, 150, 136, 255},   // Teal
}

// ForIndex returns the palette color for a class index, wrapping around.
func ForIndex(i int) color.RGBA {
	if i < 0 {
		i = -i
	}
	return Palette[i%len(Palette)]
}

// ParseHex parses a "#RRGGBB" or "RRGGBB" color string.
func ParseHex(s string) (color.RGBA, error) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// ToHex formats a color as "#RRGGBB".
func ToHex(c color.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
