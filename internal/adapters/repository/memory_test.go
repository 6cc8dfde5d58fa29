package repository_test

import (
	"context"
	"sync"
	"testing"

	"github.com/vallarta-sunsets/intake/internal/adapters/repository"
	"github.com/vallarta-sunsets/intake/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func strPtr(s string) *string { return &s }

func TestMemoryStoreLeads(t *testing.T) {
	Convey("Given an in-memory store", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()

		Convey("When creating a lead", func() {
			lead, err := store.CreateLead(ctx, model.Lead{
				Name:         "Ana",
				ContactEmail: "ana@example.com",
				Message:      "Sunset cruise for two",
				Origin:       model.OriginHuman,
				Status:       model.StatusNew,
			})

			Convey("Then an id and creation time are assigned", func() {
				So(err, ShouldBeNil)
				So(lead.ID, ShouldNotBeEmpty)
				So(lead.CreatedAt.IsZero(), ShouldBeFalse)
			})

			Convey("And the lead is retrievable by id", func() {
				got, err := store.GetLead(ctx, lead.ID)
				So(err, ShouldBeNil)
				So(got.Name, ShouldEqual, "Ana")
				So(got.Confidence, ShouldBeNil)
			})

			Convey("And the lead count reflects it", func() {
				n, err := store.CountLeads(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
			})
		})

		Convey("When creating two leads with the same request id", func() {
			first, err := store.CreateLead(ctx, model.Lead{
				Name:      "Agent User",
				Origin:    model.OriginAgent,
				Status:    model.StatusNew,
				RequestID: strPtr("req-1"),
			})
			So(err, ShouldBeNil)

			_, err = store.CreateLead(ctx, model.Lead{
				Name:      "Agent User",
				Origin:    model.OriginAgent,
				Status:    model.StatusNew,
				RequestID: strPtr("req-1"),
			})

			Convey("Then the second insert is rejected", func() {
				So(err, ShouldEqual, repository.ErrDuplicateRequestID)
			})

			Convey("And the first lead is found by request id", func() {
				got, err := store.GetLeadByRequestID(ctx, "req-1")
				So(err, ShouldBeNil)
				So(got.ID, ShouldEqual, first.ID)
			})
		})

		Convey("When leads carry no request id", func() {
			_, err := store.CreateLead(ctx, model.Lead{Origin: model.OriginHuman, Status: model.StatusNew})
			So(err, ShouldBeNil)
			_, err = store.CreateLead(ctx, model.Lead{Origin: model.OriginHuman, Status: model.StatusNew})

			Convey("Then no dedup applies", func() {
				So(err, ShouldBeNil)
				n, _ := store.CountLeads(ctx)
				So(n, ShouldEqual, 2)
			})
		})

		Convey("When looking up an unknown request id", func() {
			_, err := store.GetLeadByRequestID(ctx, "nope")

			Convey("Then not-found is reported", func() {
				So(err, ShouldEqual, repository.ErrNotFound)
			})
		})

		Convey("When a reviewer updates status", func() {
			lead, _ := store.CreateLead(ctx, model.Lead{Origin: model.OriginAgent, Status: model.StatusNeedsClarification})

			Convey("Then a legal transition succeeds", func() {
				got, err := store.UpdateLeadStatus(ctx, lead.ID, model.StatusApproved)
				So(err, ShouldBeNil)
				So(got.Status, ShouldEqual, model.StatusApproved)
			})

			Convey("Then a terminal lead refuses further moves", func() {
				_, err := store.UpdateLeadStatus(ctx, lead.ID, model.StatusRejected)
				So(err, ShouldBeNil)
				_, err = store.UpdateLeadStatus(ctx, lead.ID, model.StatusApproved)
				So(err, ShouldEqual, repository.ErrInvalidTransition)
			})

			Convey("Then an unknown id reports not-found", func() {
				_, err := store.UpdateLeadStatus(ctx, "missing", model.StatusApproved)
				So(err, ShouldEqual, repository.ErrNotFound)
			})
		})

		Convey("When concurrent inserts race on one request id", func() {
			const racers = 20
			var wg sync.WaitGroup
			errs := make(chan error, racers)
			for i := 0; i < racers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := store.CreateLead(ctx, model.Lead{
						Origin:    model.OriginAgent,
						Status:    model.StatusNew,
						RequestID: strPtr("race-key"),
					})
					errs <- err
				}()
			}
			wg.Wait()
			close(errs)

			Convey("Then exactly one insert wins", func() {
				var created, rejected int
				for err := range errs {
					switch err {
					case nil:
						created++
					case repository.ErrDuplicateRequestID:
						rejected++
					}
				}
				So(created, ShouldEqual, 1)
				So(rejected, ShouldEqual, racers-1)
			})
		})
	})
}

func TestMemoryStoreListings(t *testing.T) {
	Convey("Given a store seeded with listings", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore(repository.WithListings(
			model.Listing{ID: "L1", Name: "Marina Dinner Cruise", Tier: model.TierConcierge, Area: "marina", Category: "tours"},
			model.Listing{ID: "L2", Name: "Malecon Tacos", Tier: model.TierVerified, Area: "centro", Category: "dining"},
			model.Listing{ID: "L3", Name: "Free Beach Bar", Tier: model.TierFree, Area: "marina", Category: "dining"},
		))

		Convey("When querying without filters", func() {
			got, err := store.FindEligible(ctx, "", "")

			Convey("Then all non-free listings match", func() {
				So(err, ShouldBeNil)
				So(len(got), ShouldEqual, 2)
			})
		})

		Convey("When filtering by area", func() {
			got, err := store.FindEligible(ctx, "marina", "")

			Convey("Then the free listing is excluded", func() {
				So(err, ShouldBeNil)
				So(len(got), ShouldEqual, 1)
				So(got[0].ID, ShouldEqual, "L1")
			})
		})

		Convey("When filtering by area and category", func() {
			got, err := store.FindEligible(ctx, "centro", "dining")

			So(err, ShouldBeNil)
			So(len(got), ShouldEqual, 1)
			So(got[0].ID, ShouldEqual, "L2")
		})

		Convey("When fetching a listing by id", func() {
			got, err := store.GetListing(ctx, "L2")
			So(err, ShouldBeNil)
			So(got.Name, ShouldEqual, "Malecon Tacos")

			_, err = store.GetListing(ctx, "missing")
			So(err, ShouldEqual, repository.ErrListingNotFound)
		})
	})
}

func TestMemoryStoreSunsetSpots(t *testing.T) {
	Convey("Given a store seeded with sunset spots", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore(repository.WithSunsetSpots(
			model.SunsetSpot{ID: "1", Slug: "los-muertos-pier", Name: "Los Muertos Pier", Area: "Romantic Zone"},
			model.SunsetSpot{ID: "2", Slug: "mirador-cerro-de-la-cruz", Name: "Mirador Cerro de la Cruz", Area: "Centro"},
		))

		Convey("When fetching by id", func() {
			got, err := store.GetSunsetSpot(ctx, "1")

			So(err, ShouldBeNil)
			So(got.Area, ShouldEqual, "Romantic Zone")
		})

		Convey("When fetching by slug", func() {
			got, err := store.GetSunsetSpot(ctx, "mirador-cerro-de-la-cruz")

			So(err, ShouldBeNil)
			So(got.ID, ShouldEqual, "2")
		})

		Convey("When the spot is unknown", func() {
			_, err := store.GetSunsetSpot(ctx, "missing")

			So(err, ShouldEqual, repository.ErrSpotNotFound)
		})
	})
}
