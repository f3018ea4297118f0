package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/clearnote/notescore/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaults(t *testing.T) {
	Convey("Given a fresh configuration", t, func() {
		cfg := config.New()

		Convey("Then the defaults are populated", func() {
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.MetricsAddr, ShouldBeEmpty)
			So(cfg.DatabasePath, ShouldEqual, "notescore.db")
			So(cfg.MFDeadlineMS, ShouldEqual, 30_000)
			So(cfg.TriggerThreshold, ShouldEqual, 200)
		})
	})
}

func TestLoadEnvOverrides(t *testing.T) {
	Convey("Given environment overrides", t, func() {
		t.Setenv("NOTESCORE_LOG_LEVEL", "debug")
		t.Setenv("NOTESCORE_MF_DEADLINE_MS", "5000")
		t.Setenv("NOTESCORE_TRIGGER_THRESHOLD", "500")

		Convey("When loading the configuration", func() {
			cfg, err := config.Load(context.Background())

			Convey("Then env values override the defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.LogLevel, ShouldEqual, "debug")
				So(cfg.MFDeadlineMS, ShouldEqual, 5000)
				So(cfg.TriggerThreshold, ShouldEqual, 500)
			})

			Convey("And untouched fields keep their defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.DatabasePath, ShouldEqual, "notescore.db")
			})
		})
	})
}

func TestLoadFile(t *testing.T) {
	Convey("Given a yaml configuration file", t, func() {
		path := filepath.Join(t.TempDir(), "config.yaml")
		yaml := "log_level: warn\ndatabase_path: /data/communities.db\nmf_deadline_ms: 10000\n"
		So(os.WriteFile(path, []byte(yaml), 0o600), ShouldBeNil)
		t.Setenv("NOTESCORE_CONFIG", path)

		Convey("When loading the configuration", func() {
			cfg, err := config.Load(context.Background())

			Convey("Then the file values land in the config", func() {
				So(err, ShouldBeNil)
				So(cfg.LogLevel, ShouldEqual, "warn")
				So(cfg.DatabasePath, ShouldEqual, "/data/communities.db")
				So(cfg.MFDeadlineMS, ShouldEqual, 10000)
			})
		})

		Convey("When an env var contradicts the file", func() {
			t.Setenv("NOTESCORE_LOG_LEVEL", "error")
			cfg, err := config.Load(context.Background())

			Convey("Then env takes precedence", func() {
				So(err, ShouldBeNil)
				So(cfg.LogLevel, ShouldEqual, "error")
			})
		})
	})
}

func TestLoadValidation(t *testing.T) {
	Convey("Given invalid configuration values", t, func() {
		Convey("When the deadline is non-positive", func() {
			t.Setenv("NOTESCORE_MF_DEADLINE_MS", "0")
			_, err := config.Load(context.Background())

			Convey("Then loading fails with the invalid-config kind", func() {
				So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
			})
		})

		Convey("When the trigger threshold is negative", func() {
			t.Setenv("NOTESCORE_TRIGGER_THRESHOLD", "-1")
			_, err := config.Load(context.Background())

			Convey("Then loading fails with the invalid-config kind", func() {
				So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
			})
		})

		Convey("When the config file is missing", func() {
			t.Setenv("NOTESCORE_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
			_, err := config.Load(context.Background())

			Convey("Then loading fails with the load-config kind", func() {
				So(errors.Is(err, config.ErrLoadConfig), ShouldBeTrue)
			})
		})
	})
}
