package compressor

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/semmidev/snapvault/internal/domain"

	. "github.com/smartystreets/goconvey/convey"
)

func readZip(data []byte) map[string]string {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	So(err, ShouldBeNil)

	contents := make(map[string]string)
	for _, f := range r.File {
		rc, err := f.Open()
		So(err, ShouldBeNil)
		body, err := io.ReadAll(rc)
		So(err, ShouldBeNil)
		rc.Close()
		contents[f.Name] = string(body)
	}
	return contents
}

func TestZipArchiver(t *testing.T) {
	Convey("Given a ZipArchiver", t, func() {
		archiver := NewZip()

		tempDir, err := os.MkdirTemp("", "zip_test")
		So(err, ShouldBeNil)
		defer os.RemoveAll(tempDir)

		alpha := filepath.Join(tempDir, "alpha-123.sql")
		beta := filepath.Join(tempDir, "beta-456.sql")
		So(os.WriteFile(alpha, []byte("CREATE TABLE a (id INT);"), 0644), ShouldBeNil)
		So(os.WriteFile(beta, []byte("CREATE TABLE b (id INT);"), 0644), ShouldBeNil)

		Convey("When every source exists", func() {
			var buf bytes.Buffer
			added, err := archiver.Archive(&buf, []domain.ArchiveEntry{
				{SourcePath: alpha, Name: "alpha_backup.sql"},
				{SourcePath: beta, Name: "beta_backup.sql"},
			})

			Convey("It should add each entry under its logical name", func() {
				So(err, ShouldBeNil)
				So(added, ShouldResemble, []string{"alpha_backup.sql", "beta_backup.sql"})

				contents := readZip(buf.Bytes())
				So(len(contents), ShouldEqual, 2)
				So(contents["alpha_backup.sql"], ShouldEqual, "CREATE TABLE a (id INT);")
				So(contents["beta_backup.sql"], ShouldEqual, "CREATE TABLE b (id INT);")
			})
		})

		Convey("When a source has vanished", func() {
			So(os.Remove(beta), ShouldBeNil)

			var buf bytes.Buffer
			added, err := archiver.Archive(&buf, []domain.ArchiveEntry{
				{SourcePath: alpha, Name: "alpha_backup.sql"},
				{SourcePath: beta, Name: "beta_backup.sql"},
			})

			Convey("It should skip it silently", func() {
				So(err, ShouldBeNil)
				So(added, ShouldResemble, []string{"alpha_backup.sql"})

				contents := readZip(buf.Bytes())
				So(len(contents), ShouldEqual, 1)
				So(contents, ShouldContainKey, "alpha_backup.sql")
			})
		})

		Convey("When there are no entries", func() {
			var buf bytes.Buffer
			added, err := archiver.Archive(&buf, nil)

			Convey("It should still produce a valid empty zip", func() {
				So(err, ShouldBeNil)
				So(added, ShouldBeEmpty)
				So(len(readZip(buf.Bytes())), ShouldEqual, 0)
			})
		})

		Convey("When a source is a directory", func() {
			var buf bytes.Buffer
			_, err := archiver.Archive(&buf, []domain.ArchiveEntry{
				{SourcePath: tempDir, Name: "dir_backup.sql"},
			})

			Convey("It should return an error", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "failed to compress")
			})
		})
	})
}
