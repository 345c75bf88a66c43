package model_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/openultimate/ratings/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSettings(t *testing.T) {
	Convey("Given default settings", t, func() {
		s := model.DefaultSettings()

		Convey("Then the documented defaults apply", func() {
			So(s.MinTournaments, ShouldEqual, 1)
			So(s.MinGames, ShouldEqual, 5)
			So(s.MinInterconnectivity, ShouldEqual, 10)
			So(s.BlowoutsIgnored(), ShouldBeFalse)
		})

		Convey("When ignore_blowouts is the literal TRUE", func() {
			s.IgnoreBlowouts = "TRUE"
			So(s.BlowoutsIgnored(), ShouldBeTrue)
		})

		Convey("When ignore_blowouts is any other spelling", func() {
			for _, v := range []string{"true", "True", "1", "yes", ""} {
				s.IgnoreBlowouts = v
				So(s.BlowoutsIgnored(), ShouldBeFalse)
			}
		})
	})
}

func TestTeamRatingJSON(t *testing.T) {
	Convey("Given ratings including a diverged series", t, func() {
		in := []model.TeamRating{
			{Team: "A", Rating: 1530.25},
			{Team: "B", Rating: math.Inf(1)},
			{Team: "C", Rating: math.Inf(-1)},
			{Team: "D", Rating: 0},
		}

		Convey("When marshaled to JSON", func() {
			data, err := json.Marshal(in)
			So(err, ShouldBeNil)

			Convey("Then ratings travel in the table's fixed-point form", func() {
				So(string(data), ShouldContainSubstring, `"rating":"1530.25"`)
				So(string(data), ShouldContainSubstring, `"+Inf"`)
				So(string(data), ShouldContainSubstring, `"-Inf"`)
			})

			Convey("And unmarshaling restores the values", func() {
				var out []model.TeamRating
				So(json.Unmarshal(data, &out), ShouldBeNil)
				So(out[0].Rating, ShouldEqual, 1530.25)
				So(math.IsInf(out[1].Rating, 1), ShouldBeTrue)
				So(math.IsInf(out[2].Rating, -1), ShouldBeTrue)
				So(out[3].Rating, ShouldEqual, 0)
			})
		})
	})
}

func TestAdjacency(t *testing.T) {
	Convey("Given an adjacency matrix over three teams", t, func() {
		a := model.NewAdjacency([]string{"A", "B", "C"})

		Convey("When games are recorded", func() {
			a.Add("A", "B")
			a.Add("A", "B")
			a.Add("B", "C")

			Convey("Then counts are symmetric", func() {
				So(a.Count("A", "B"), ShouldEqual, 2)
				So(a.Count("B", "A"), ShouldEqual, 2)
				So(a.Count("B", "C"), ShouldEqual, 1)
				So(a.Count("C", "B"), ShouldEqual, 1)
			})

			Convey("And the diagonal stays zero", func() {
				a.Add("A", "A")
				So(a.Count("A", "A"), ShouldEqual, 0)
			})

			Convey("And unknown pairs count zero", func() {
				So(a.Count("A", "C"), ShouldEqual, 0)
				So(a.Count("X", "Y"), ShouldEqual, 0)
			})
		})
	})
}
