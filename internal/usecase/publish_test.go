package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/semmidev/snapvault/internal/adapter/storage"
	"github.com/semmidev/snapvault/internal/domain"
	"github.com/semmidev/snapvault/internal/infrastructure/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPublisher(t *testing.T) {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local)

	Convey("Given a Publisher", t, func() {
		Convey("Filename joins prefix, timestamp and suffix", func() {
			p := NewPublisher("", "nightly-", "-v1", logger.NewNop())
			So(p.Filename(at), ShouldEqual, "nightly-20240101120000-v1.zip")
			So(p.DestinationPath(at), ShouldEqual, "nightly-20240101120000-v1.zip")
		})

		Convey("DestinationPath places the file under the base path", func() {
			p := NewPublisher("backups/db", "", "", logger.NewNop())
			So(p.DestinationPath(at), ShouldEqual, "backups/db/20240101120000.zip")
		})

		tempDir, err := os.MkdirTemp("", "publish_test")
		So(err, ShouldBeNil)
		defer os.RemoveAll(tempDir)

		archivePath := filepath.Join(tempDir, "archive.zip")
		So(os.WriteFile(archivePath, []byte("zip bytes"), 0600), ShouldBeNil)
		archive := &domain.Archive{Path: archivePath, Size: 9}

		ctx := context.Background()
		publisher := NewPublisher("backups", "", "", logger.NewNop())

		Convey("When one of several destinations fails", func() {
			broken := newMemStorage()
			broken.failWith = errors.New("access denied")
			healthy := newMemStorage()

			results := publisher.PublishAll(ctx, archive, []domain.Destination{
				{Name: "s3", Storage: broken},
				{Name: "gcs", Storage: healthy},
			}, at)

			Convey("It should still copy to the others", func() {
				So(len(results), ShouldEqual, 2)

				So(results[0].Destination, ShouldEqual, "s3")
				So(results[0].Succeeded(), ShouldBeFalse)
				So(IsType(results[0].Err, ErrorTypePublish), ShouldBeTrue)
				So(results[0].Err.Error(), ShouldContainSubstring, "access denied")

				So(results[1].Succeeded(), ShouldBeTrue)
				So(results[1].Path, ShouldEqual, "backups/20240101120000.zip")
				content, ok := healthy.file("backups/20240101120000.zip")
				So(ok, ShouldBeTrue)
				So(string(content), ShouldEqual, "zip bytes")
			})
		})

		Convey("When a destination supports marker files", func() {
			marked := newMemStorage()
			plain := newMemStorage()

			publisher.PublishAll(ctx, archive, []domain.Destination{
				{Name: "local", Storage: marked, SupportsMarkerFile: true},
				{Name: "s3", Storage: plain},
			}, at)

			Convey("It should write the marker only there", func() {
				marker, ok := marked.file("backups/.gitignore")
				So(ok, ShouldBeTrue)
				So(string(marker), ShouldEqual, "*\n!.gitignore\n")

				_, ok = plain.file("backups/.gitignore")
				So(ok, ShouldBeFalse)
				So(plain.dirs, ShouldResemble, []string{"backups"})
			})
		})

		Convey("When there is no base path", func() {
			dest := newMemStorage()
			NewPublisher("", "", "", logger.NewNop()).PublishAll(ctx, archive, []domain.Destination{
				{Name: "local", Storage: dest, SupportsMarkerFile: true},
			}, at)

			Convey("It should not create a directory", func() {
				So(dest.dirs, ShouldBeEmpty)
				_, ok := dest.file("20240101120000.zip")
				So(ok, ShouldBeTrue)
			})
		})

		Convey("When publishing to a real local disk", func() {
			root := filepath.Join(tempDir, "disk")
			local, err := storage.NewLocal(root)
			So(err, ShouldBeNil)

			results := publisher.PublishAll(ctx, archive, []domain.Destination{
				{Name: "local", Storage: local, SupportsMarkerFile: true},
			}, at)

			Convey("It should leave the archive and marker on disk", func() {
				So(results[0].Succeeded(), ShouldBeTrue)
				content, err := os.ReadFile(filepath.Join(root, "backups", "20240101120000.zip"))
				So(err, ShouldBeNil)
				So(string(content), ShouldEqual, "zip bytes")
				_, err = os.Stat(filepath.Join(root, "backups", ".gitignore"))
				So(err, ShouldBeNil)
			})
		})

		Convey("When the context is already cancelled", func() {
			cancelCtx, cancel := context.WithCancel(ctx)
			cancel()
			dest := newMemStorage()

			results := publisher.PublishAll(cancelCtx, archive, []domain.Destination{{Name: "local", Storage: dest}}, at)

			Convey("It should record the cancellation", func() {
				So(errors.Is(results[0].Err, context.Canceled), ShouldBeTrue)
				So(dest.files, ShouldBeEmpty)
			})
		})
	})
}
