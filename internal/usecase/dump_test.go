package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/semmidev/snapvault/internal/infrastructure/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDumper(t *testing.T) {
	Convey("Given a Dumper", t, func() {
		tempDir, err := os.MkdirTemp("", "dumper_test")
		So(err, ShouldBeNil)
		defer os.RemoveAll(tempDir)

		scratch := filepath.Join(tempDir, "scratch")
		db := &fakeDatabase{}
		temps := NewTempFiles()
		dumper := NewDumper(db, scratch, temps, logger.NewNop())
		ctx := context.Background()

		Convey("When every dump succeeds", func() {
			entries, err := dumper.DumpAll(ctx, []string{"alpha", "beta"})

			Convey("It should return one entry per database in order", func() {
				So(err, ShouldBeNil)
				So(len(entries), ShouldEqual, 2)
				So(entries[0].Database, ShouldEqual, "alpha")
				So(entries[0].Name, ShouldEqual, "alpha_backup.sql")
				So(entries[1].Database, ShouldEqual, "beta")
				So(entries[1].Name, ShouldEqual, "beta_backup.sql")
				So(db.dumped, ShouldResemble, []string{"alpha", "beta"})
			})

			Convey("It should write the dumps into the scratch directory", func() {
				content, err := os.ReadFile(entries[0].SourcePath)
				So(err, ShouldBeNil)
				So(string(content), ShouldEqual, "-- dump of alpha\n")
				So(filepath.Dir(entries[0].SourcePath), ShouldEqual, scratch)
			})

			Convey("It should register every dump file", func() {
				So(temps.Paths(), ShouldResemble, []string{entries[0].SourcePath, entries[1].SourcePath})
			})
		})

		Convey("When the scratch directory holds stale files", func() {
			So(os.MkdirAll(scratch, 0700), ShouldBeNil)
			stale := filepath.Join(scratch, "stale.sql")
			So(os.WriteFile(stale, []byte("old"), 0600), ShouldBeNil)

			_, err := dumper.DumpAll(ctx, []string{"alpha"})

			Convey("It should clear them first", func() {
				So(err, ShouldBeNil)
				_, statErr := os.Stat(stale)
				So(os.IsNotExist(statErr), ShouldBeTrue)
			})
		})

		Convey("When the database list is empty", func() {
			entries, err := dumper.DumpAll(ctx, nil)

			Convey("It should return a dump error", func() {
				So(entries, ShouldBeNil)
				So(IsType(err, ErrorTypeDump), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "nothing to back up")
			})
		})

		Convey("When the database is unreachable", func() {
			db.pingErr = errors.New("connection refused")
			_, err := dumper.DumpAll(ctx, []string{"alpha"})

			Convey("It should fail before dumping anything", func() {
				So(IsType(err, ErrorTypeDump), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "connection refused")
				So(db.dumped, ShouldBeEmpty)
			})
		})

		Convey("When a dump fails midway", func() {
			db.fail = map[string]error{"beta": errors.New("access denied")}
			_, err := dumper.DumpAll(ctx, []string{"alpha", "beta", "gamma"})

			Convey("It should stop and keep the partial files registered", func() {
				So(IsType(err, ErrorTypeDump), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "beta")
				So(db.dumped, ShouldResemble, []string{"alpha", "beta"})
				So(len(temps.Paths()), ShouldEqual, 2)
			})
		})

		Convey("When a dump produces an empty file", func() {
			db.empty = map[string]bool{"alpha": true}
			_, err := dumper.DumpAll(ctx, []string{"alpha"})

			Convey("It should return a dump error", func() {
				So(IsType(err, ErrorTypeDump), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "empty file")
			})
		})

		Convey("When the context is cancelled between dumps", func() {
			cancelCtx, cancel := context.WithCancel(ctx)
			db.onDump = func(string) { cancel() }

			_, err := dumper.DumpAll(cancelCtx, []string{"alpha", "beta"})

			Convey("It should stop before the next database", func() {
				So(IsType(err, ErrorTypeDump), ShouldBeTrue)
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
				So(db.dumped, ShouldResemble, []string{"alpha"})
			})
		})

		Convey("When a database name contains a path separator", func() {
			entries, err := dumper.DumpAll(ctx, []string{"tenant/alpha"})

			Convey("It should keep the dump inside the scratch directory", func() {
				So(err, ShouldBeNil)
				So(filepath.Dir(entries[0].SourcePath), ShouldEqual, scratch)
				So(entries[0].Name, ShouldEqual, "tenant/alpha_backup.sql")
			})
		})
	})
}

func TestResetScratchDir(t *testing.T) {
	Convey("Given dangerous scratch directories", t, func() {
		for _, dir := range []string{"", ".", "/"} {
			So(resetScratchDir(dir), ShouldNotBeNil)
		}
	})
}
