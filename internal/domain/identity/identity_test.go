package identity_test

import (
	"testing"

	"github.com/cameronntaylor/nba-watchability/internal/domain/identity"
	. "github.com/smartystreets/goconvey/convey"
)

func TestKey(t *testing.T) {
	Convey("Given team display names from different feeds", t, func() {
		Convey("Then casing and punctuation differences collapse to one key", func() {
			So(identity.Key("Boston Celtics"), ShouldEqual, "boston celtics")
			So(identity.Key("  boston   CELTICS "), ShouldEqual, "boston celtics")
			So(identity.Key("Philadelphia 76ers"), ShouldEqual, "philadelphia 76ers")
			So(identity.Key("Phila. 76ers"), ShouldResemble, identity.Key("Phila 76ers"))
		})

		Convey("Then known short-form aliases expand to the full name", func() {
			So(identity.Key("LA Clippers"), ShouldEqual, "los angeles clippers")
			So(identity.Key("LA Lakers"), ShouldEqual, "los angeles lakers")
			So(identity.Key("NY Knicks"), ShouldEqual, "new york knicks")
			So(identity.Key("GS Warriors"), ShouldEqual, "golden state warriors")
		})

		Convey("Then the full form is a fixed point", func() {
			So(identity.Key("Los Angeles Clippers"), ShouldEqual, "los angeles clippers")
			So(identity.Key(identity.Key("LA Clippers")), ShouldEqual, "los angeles clippers")
		})

		Convey("Then empty and junk inputs stay empty rather than erroring", func() {
			So(identity.Key(""), ShouldEqual, "")
			So(identity.Key("  !!  "), ShouldEqual, "")
		})
	})
}
