package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetDefaults(t *testing.T) {
	t.Run("uses env vars when set", func(t *testing.T) {
		t.Setenv("TAGSPACE_CONFIG_PATH", "/custom/config.toml")
		t.Setenv("TAGSPACE_HOME", "/custom/tagspace")

		d, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}
		want := Defaults{
			ConfigPath: "/custom/config.toml",
			BaseDir:    "/custom/tagspace",
			LogDir:     filepath.Join("/custom/tagspace", "log"),
		}
		if *d != want {
			t.Errorf("GetDefaults() = %+v, want %+v", *d, want)
		}
	})

	t.Run("falls back to home dir defaults", func(t *testing.T) {
		t.Setenv("TAGSPACE_CONFIG_PATH", "")
		t.Setenv("TAGSPACE_HOME", "")

		d, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}
		homeDir, _ := os.UserHomeDir()
		base := filepath.Join(homeDir, ".local", "share", "tagspace")
		want := Defaults{
			ConfigPath: filepath.Join(homeDir, ".config", "tagspace.toml"),
			BaseDir:    base,
			LogDir:     filepath.Join(base, "log"),
		}
		if *d != want {
			t.Errorf("GetDefaults() = %+v, want %+v", *d, want)
		}
	})
}
