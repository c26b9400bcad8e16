package app

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

type rgb struct{ r, g, b uint8 }

// parseHexColor parses "#rrggbb" or "#rgb". Empty means no color.
func parseHexColor(s string) (*rgb, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return nil, fmt.Errorf("color %q must start with '#'", s)
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return nil, fmt.Errorf("color %q must have 3 or 6 hex digits", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("color %q is not hex", s)
	}
	return &rgb{uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
}

// parseColorPair parses a stored "foreground|background" color. Either
// half may be empty.
func parseColorPair(s string) (fg, bg *rgb, err error) {
	fgText, bgText, _ := strings.Cut(s, "|")
	if fg, err = parseHexColor(fgText); err != nil {
		return nil, nil, err
	}
	if bg, err = parseHexColor(bgText); err != nil {
		return nil, nil, err
	}
	return fg, bg, nil
}

// TagRenderer paints tags with their display colors as 24-bit ANSI escapes.
// Unparsable colors are logged once per value and the tag is printed plain.
type TagRenderer struct {
	colors  map[string]string
	def     string
	logger  *slog.Logger
	enabled bool
}

func NewTagRenderer(colors map[string]string, def string, logger *slog.Logger, enabled bool) *TagRenderer {
	return &TagRenderer{colors: colors, def: def, logger: logger, enabled: enabled}
}

func (r *TagRenderer) Render(tag string) string {
	if !r.enabled {
		return tag
	}
	color, ok := r.colors[tag]
	if !ok || color == "" {
		color = r.def
	}

	fg, bg, err := parseColorPair(color)
	if err != nil {
		r.logger.Warn("ignoring unparsable tag color", "tag", tag, "color", color, "error", err, onceKey, "color:"+color)
		return tag
	}
	if fg == nil && bg == nil {
		return tag
	}

	var b strings.Builder
	if fg != nil {
		fmt.Fprintf(&b, "\x1b[38;2;%d;%d;%dm", fg.r, fg.g, fg.b)
	}
	if bg != nil {
		fmt.Fprintf(&b, "\x1b[48;2;%d;%d;%dm", bg.r, bg.g, bg.b)
	}
	b.WriteString(tag)
	b.WriteString("\x1b[0m")
	return b.String()
}

// RenderAll renders tags separated by spaces.
func (r *TagRenderer) RenderAll(tags []string) string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = r.Render(t)
	}
	return strings.Join(out, " ")
}
