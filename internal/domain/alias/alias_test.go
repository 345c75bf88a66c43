package alias_test

import (
	"testing"

	"github.com/openultimate/ratings/internal/domain/alias"
	. "github.com/smartystreets/goconvey/convey"
)

func TestResolve(t *testing.T) {
	Convey("Given a teams table with aliases", t, func() {
		table := alias.NewTable([][]string{
			{"Clapham", "Clapham Ultimate", "CU"},
			{"Chevron", "Chevron Action Flash"},
			{"Reading", ""},
			{},
		})

		Convey("Then aliases resolve to the canonical name", func() {
			So(table.Resolve("Clapham Ultimate"), ShouldEqual, "Clapham")
			So(table.Resolve("CU"), ShouldEqual, "Clapham")
			So(table.Resolve("Chevron Action Flash"), ShouldEqual, "Chevron")
		})

		Convey("And canonical names resolve to themselves", func() {
			So(table.Resolve("Clapham"), ShouldEqual, "Clapham")
			So(table.Resolve("Reading"), ShouldEqual, "Reading")
		})

		Convey("And unknown names are canonical by definition", func() {
			So(table.Resolve("Brighton"), ShouldEqual, "Brighton")
		})

		Convey("And canonical order follows the table", func() {
			So(table.Canonicals(), ShouldResemble, []string{"Clapham", "Chevron", "Reading"})
		})
	})
}
