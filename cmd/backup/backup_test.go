package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/semmidev/snapvault/internal/domain"
	"github.com/semmidev/snapvault/internal/usecase"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBackupFlags(t *testing.T) {
	Convey("Given the backup:run command", t, func() {
		cmd := newBackupRunCmd(&rootOptions{})
		flags := &backupFlags{}

		Convey("When prefix and suffix are not passed", func() {
			So(cmd.ParseFlags([]string{"--only-db"}), ShouldBeNil)
			flags.onlyDB, _ = cmd.Flags().GetBool("only-db")
			opts := flags.options(cmd)

			Convey("They should stay unset", func() {
				So(opts.OnlyDB, ShouldBeTrue)
				So(opts.Prefix, ShouldBeNil)
				So(opts.Suffix, ShouldBeNil)
			})
		})

		Convey("When an empty prefix is passed", func() {
			So(cmd.ParseFlags([]string{"--prefix=", "--suffix=-v1"}), ShouldBeNil)
			flags.prefix, _ = cmd.Flags().GetString("prefix")
			flags.suffix, _ = cmd.Flags().GetString("suffix")
			opts := flags.options(cmd)

			Convey("It should still override the config", func() {
				So(opts.Prefix, ShouldNotBeNil)
				So(*opts.Prefix, ShouldEqual, "")
				So(*opts.Suffix, ShouldEqual, "-v1")
			})
		})
	})
}

func TestPrintReport(t *testing.T) {
	Convey("Given a completed report with one failure", t, func() {
		report := &usecase.Report{
			RunID:   "run-1",
			Status:  usecase.StatusCompleted,
			Archive: &domain.Archive{Entries: []string{"alpha_backup.sql"}, Size: 2048},
			Results: []usecase.DestinationResult{
				{Destination: "local", Path: "backups/20240101120000.zip", Duration: time.Second},
				{Destination: "s3", Err: errors.New("bucket missing")},
			},
		}

		var out bytes.Buffer
		printReport(&out, report)

		So(out.String(), ShouldContainSubstring, "run-1")
		So(out.String(), ShouldContainSubstring, "✓ local")
		So(out.String(), ShouldContainSubstring, "✗ s3")
		So(out.String(), ShouldContainSubstring, "bucket missing")
	})

	Convey("Given a nothing-to-back-up report", t, func() {
		var out bytes.Buffer
		printReport(&out, &usecase.Report{Status: usecase.StatusNothingToBackup})
		So(out.String(), ShouldEqual, "Nothing to back up.\n")
	})

	Convey("callbackURL fills in localhost", t, func() {
		So(callbackURL(":8085"), ShouldEqual, "http://localhost:8085/auth/google/callback")
		So(callbackURL("0.0.0.0:9000"), ShouldEqual, "http://0.0.0.0:9000/auth/google/callback")
	})
}

func TestBackupRunConflictingFlags(t *testing.T) {
	Convey("Given a config with a local disk and a log file", t, func() {
		tempDir, err := os.MkdirTemp("", "backup_cmd_test")
		So(err, ShouldBeNil)
		defer os.RemoveAll(tempDir)

		root := filepath.Join(tempDir, "disk")
		logDir := filepath.Join(tempDir, "logs")
		configPath := filepath.Join(tempDir, "config.yaml")
		So(os.WriteFile(configPath, []byte(strings.Join([]string{
			"app:",
			"  log_file: " + filepath.Join(logDir, "snapvault.log"),
			"backup:",
			"  temp_dir: " + filepath.Join(tempDir, "scratch"),
			"  databases: [alpha]",
			"filesystems:",
			"  local:",
			"    driver: local",
			"    root: " + root,
			"",
		}, "\n")), 0644), ShouldBeNil)

		Convey("When backup:run gets both --only-db and --only-files", func() {
			cmd := newRootCmd()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetArgs([]string{"backup:run", "--only-db", "--only-files", "--config=" + configPath})

			err := cmd.Execute()

			Convey("It should fail with a configuration error before touching disk", func() {
				So(usecase.IsType(err, usecase.ErrorTypeConfiguration), ShouldBeTrue)

				_, statErr := os.Stat(root)
				So(os.IsNotExist(statErr), ShouldBeTrue)
				_, statErr = os.Stat(logDir)
				So(os.IsNotExist(statErr), ShouldBeTrue)
				_, statErr = os.Stat(filepath.Join(tempDir, "scratch"))
				So(os.IsNotExist(statErr), ShouldBeTrue)
			})
		})
	})
}
