package app

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColorPair(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		fg      *rgb
		bg      *rgb
		wantErr bool
	}{
		{name: "both", in: "#c0c0c0|#ffffff", fg: &rgb{0xc0, 0xc0, 0xc0}, bg: &rgb{0xff, 0xff, 0xff}},
		{name: "foreground only", in: "#ff0000", fg: &rgb{0xff, 0, 0}},
		{name: "background only", in: "|#00f", bg: &rgb{0, 0, 0xff}},
		{name: "empty", in: ""},
		{name: "missing hash", in: "ff0000", wantErr: true},
		{name: "bad digits", in: "#gg0000", wantErr: true},
		{name: "wrong length", in: "#ff00", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fg, bg, err := parseColorPair(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.fg, fg)
			assert.Equal(t, tt.bg, bg)
		})
	}
}

func TestTagRenderer(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(newDedupHandler(newTabHandler(&logs, slog.LevelDebug, "op")))
	colors := map[string]string{
		"red":    "#ff0000",
		"broken": "#nothex",
		"also":   "#nothex",
		"plain":  "",
	}
	r := NewTagRenderer(colors, "#c0c0c0|#ffffff", logger, true)

	assert.Equal(t, "\x1b[38;2;255;0;0mred\x1b[0m", r.Render("red"))
	assert.Equal(t, "\x1b[38;2;192;192;192m\x1b[48;2;255;255;255mplain\x1b[0m", r.Render("plain"))
	assert.Equal(t, "\x1b[38;2;192;192;192m\x1b[48;2;255;255;255munknown\x1b[0m", r.Render("unknown"))

	assert.Equal(t, "broken", r.Render("broken"))
	assert.Equal(t, "also", r.Render("also"))
	assert.Equal(t, "broken", r.Render("broken"))
	assert.Equal(t, 1, strings.Count(logs.String(), "unparsable tag color"), "one warning per color value")

	off := NewTagRenderer(colors, "#c0c0c0|#ffffff", logger, false)
	assert.Equal(t, "red plain", off.RenderAll([]string{"red", "plain"}))
}
