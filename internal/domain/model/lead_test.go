package model_test

import (
	"testing"

	"github.com/vallarta-sunsets/intake/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestStatusTransitions(t *testing.T) {
	Convey("Given the lead status state machine", t, func() {
		Convey("When a lead is in an initial state", func() {
			for _, s := range []model.Status{model.StatusNew, model.StatusNeedsClarification} {
				Convey("Then "+string(s)+" may move to approved", func() {
					So(s.CanTransition(model.StatusApproved), ShouldBeTrue)
				})
				Convey("And "+string(s)+" may move to rejected", func() {
					So(s.CanTransition(model.StatusRejected), ShouldBeTrue)
				})
				Convey("And "+string(s)+" may not move to another initial state", func() {
					So(s.CanTransition(model.StatusNew), ShouldBeFalse)
					So(s.CanTransition(model.StatusNeedsClarification), ShouldBeFalse)
				})
			}
		})

		Convey("When a lead is in a terminal state", func() {
			for _, s := range []model.Status{model.StatusApproved, model.StatusRejected} {
				Convey("Then "+string(s)+" allows no further transitions", func() {
					So(s.Terminal(), ShouldBeTrue)
					So(s.CanTransition(model.StatusApproved), ShouldBeFalse)
					So(s.CanTransition(model.StatusRejected), ShouldBeFalse)
					So(s.CanTransition(model.StatusNew), ShouldBeFalse)
				})
			}
		})

		Convey("When checking validity", func() {
			So(model.Status("new").Valid(), ShouldBeTrue)
			So(model.Status("escalated").Valid(), ShouldBeFalse)
			So(model.StatusNew.CanTransition(model.Status("escalated")), ShouldBeFalse)
		})
	})
}

func TestTierWeights(t *testing.T) {
	Convey("Given the default tier weight table", t, func() {
		Convey("Then concierge outranks every other tier", func() {
			w := model.DefaultTierWeights
			So(w[string(model.TierConcierge)], ShouldBeGreaterThan, w[string(model.TierPartner)])
			So(w[string(model.TierPartner)], ShouldEqual, w[string(model.TierVerified)])
			So(w[string(model.TierVerified)], ShouldBeGreaterThan, w[string(model.TierFeatured)])
			So(w[string(model.TierFeatured)], ShouldBeGreaterThan, w[string(model.TierFree)])
		})

		Convey("Then free listings carry zero weight", func() {
			So(model.DefaultTierWeights[string(model.TierFree)], ShouldEqual, 0)
		})
	})
}
