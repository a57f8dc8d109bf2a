package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/semmidev/snapvault/internal/domain"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTelegramPruning(t *testing.T) {
	Convey("Given a TelegramStorage", t, func() {
		stor := &TelegramStorage{chatID: 42}

		Convey("List reports that listing is unsupported", func() {
			objects, err := stor.List(context.Background(), "backups")
			So(objects, ShouldBeNil)
			So(errors.Is(err, domain.ErrListUnsupported), ShouldBeTrue)
		})

		Convey("Delete is a no-op", func() {
			So(stor.Delete(context.Background(), "backups/a.zip"), ShouldBeNil)
		})
	})
}
