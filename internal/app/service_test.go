package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/vallarta-sunsets/intake/internal/adapters/repository"
	service "github.com/vallarta-sunsets/intake/internal/app"
	"github.com/vallarta-sunsets/intake/internal/domain/model"
	"github.com/vallarta-sunsets/intake/internal/domain/routing"
	"github.com/vallarta-sunsets/intake/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func newStartedService(t *testing.T, store repository.Store, opts ...service.Option) *service.Service {
	t.Helper()
	if err := logger.Init(); err != nil {
		t.Fatalf("logger init: %v", err)
	}
	opts = append([]service.Option{service.WithStore(store)}, opts...)
	svc := service.New(opts...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

// raceStore reports not-found on the idempotency lookup until an insert has
// failed with a duplicate, reproducing two identical requests racing past the
// read-then-write check.
type raceStore struct {
	*repository.MemoryStore
	winner    model.Lead
	raceTaken bool
}

func (r *raceStore) GetLeadByRequestID(ctx context.Context, requestID string) (model.Lead, error) {
	if !r.raceTaken {
		return model.Lead{}, repository.ErrNotFound
	}
	return r.winner, nil
}

func (r *raceStore) CreateLead(ctx context.Context, lead model.Lead) (model.Lead, error) {
	if !r.raceTaken {
		r.raceTaken = true
		return model.Lead{}, repository.ErrDuplicateRequestID
	}
	return r.MemoryStore.CreateLead(ctx, lead)
}

func TestSubmitPublic(t *testing.T) {
	Convey("Given a started intake service", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		svc := newStartedService(t, store)

		Convey("When a clean form submission arrives", func() {
			res, err := svc.SubmitPublic(ctx, service.PublicSubmission{
				Name:       "Ana",
				Email:      "ana@example.com",
				Message:    "Sunset cruise for two",
				Date:       "2026-10-01",
				Guests:     2,
				SourcePath: "/tours",
				RemoteIP:   "1.2.3.4",
			})

			Convey("Then a human lead is persisted with status new", func() {
				So(err, ShouldBeNil)
				So(res.Spam, ShouldBeFalse)
				lead, err := store.GetLead(ctx, res.LeadID)
				So(err, ShouldBeNil)
				So(lead.Origin, ShouldEqual, model.OriginHuman)
				So(lead.Status, ShouldEqual, model.StatusNew)
				So(lead.Confidence, ShouldBeNil)
				So(*lead.SourcePath, ShouldEqual, "/tours")
			})

			Convey("And the metadata envelope carries the form channel", func() {
				lead, _ := store.GetLead(ctx, res.LeadID)
				So(lead.Metadata["channel"], ShouldEqual, "form")
				So(lead.Metadata["agent_suggested"], ShouldEqual, false)
			})
		})

		Convey("When the submitter omits a name", func() {
			res, err := svc.SubmitPublic(ctx, service.PublicSubmission{
				Email:    "ana@example.com",
				Message:  "hola",
				RemoteIP: "1.2.3.4",
			})

			Convey("Then the anonymous default fills in", func() {
				So(err, ShouldBeNil)
				lead, _ := store.GetLead(ctx, res.LeadID)
				So(lead.Name, ShouldEqual, "Anonymous User")
			})
		})

		Convey("When the honeypot field is filled", func() {
			res, err := svc.SubmitPublic(ctx, service.PublicSubmission{
				Email:    "bot@spam.example",
				Message:  "buy now",
				Honeypot: "http://spam.example",
				RemoteIP: "9.9.9.9",
			})

			Convey("Then the submission reads as success but nothing is stored", func() {
				So(err, ShouldBeNil)
				So(res.Spam, ShouldBeTrue)
				So(res.LeadID, ShouldBeEmpty)
				n, _ := store.CountLeads(ctx)
				So(n, ShouldEqual, 0)
			})
		})

		Convey("When one origin submits four times within the window", func() {
			for i := 0; i < 3; i++ {
				_, err := svc.SubmitPublic(ctx, service.PublicSubmission{
					Email:    "ana@example.com",
					Message:  "hola",
					RemoteIP: "7.7.7.7",
				})
				So(err, ShouldBeNil)
			}

			_, err := svc.SubmitPublic(ctx, service.PublicSubmission{
				Email:    "ana@example.com",
				Message:  "hola",
				RemoteIP: "7.7.7.7",
			})

			Convey("Then the fourth call is rate limited", func() {
				So(errors.Is(err, service.ErrRateLimited), ShouldBeTrue)
			})

			Convey("And a different origin is unaffected", func() {
				_, err := svc.SubmitPublic(ctx, service.PublicSubmission{
					Email:    "luis@example.com",
					Message:  "hola",
					RemoteIP: "8.8.8.8",
				})
				So(err, ShouldBeNil)
			})
		})
	})
}

func TestSubmitAgent(t *testing.T) {
	Convey("Given a started intake service", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore(
			repository.WithListings(
				model.Listing{ID: "L-con", Tier: model.TierConcierge, Area: "marina", Category: "tours"},
				model.Listing{ID: "L-feat", Tier: model.TierFeatured, Area: "marina", Category: "tours"},
				model.Listing{ID: "L-rz", Tier: model.TierPartner, Area: "Romantic Zone", Category: "dining"},
			),
			repository.WithSunsetSpots(
				model.SunsetSpot{ID: "spot-1", Slug: "los-muertos-pier", Name: "Los Muertos Pier", Area: "Romantic Zone"},
			),
		)
		svc := newStartedService(t, store)

		Convey("When confidence clears the gate with an explicit target", func() {
			res, err := svc.SubmitAgent(ctx, service.AgentSubmission{
				AgentID:    "openai:gpt-4",
				Confidence: 0.9,
				TargetType: "listing",
				TargetID:   "L1",
				RemoteIP:   "1.2.3.4",
			})

			Convey("Then the lead is new and attributed directly", func() {
				So(err, ShouldBeNil)
				So(res.Duplicate, ShouldBeFalse)
				So(res.Status, ShouldEqual, model.StatusNew)
				lead, _ := store.GetLead(ctx, res.LeadID)
				So(*lead.ListingID, ShouldEqual, "L1")
				So(*lead.Confidence, ShouldEqual, 0.9)
				So(lead.Origin, ShouldEqual, model.OriginAgent)
			})

			Convey("And agent defaults fill the omitted user context", func() {
				lead, _ := store.GetLead(ctx, res.LeadID)
				So(lead.Name, ShouldEqual, "Agent User")
				So(lead.ContactEmail, ShouldEqual, "agent_placeholder@example.com")
				So(lead.Message, ShouldEqual, "Agent-generated booking intent.")
			})
		})

		Convey("When confidence falls below the gate", func() {
			res, err := svc.SubmitAgent(ctx, service.AgentSubmission{
				AgentID:    "chatbot",
				Confidence: 0.4,
				RemoteIP:   "1.2.3.4",
			})

			Convey("Then the lead needs clarification", func() {
				So(err, ShouldBeNil)
				So(res.Status, ShouldEqual, model.StatusNeedsClarification)
			})
		})

		Convey("When confidence sits exactly on the threshold", func() {
			res, err := svc.SubmitAgent(ctx, service.AgentSubmission{
				AgentID:    "chatbot",
				Confidence: 0.7,
				RemoteIP:   "1.2.3.4",
			})

			Convey("Then the lead is new", func() {
				So(err, ShouldBeNil)
				So(res.Status, ShouldEqual, model.StatusNew)
			})
		})

		Convey("When preferences carry area and category but no target", func() {
			res, err := svc.SubmitAgent(ctx, service.AgentSubmission{
				AgentID:    "chatbot",
				Confidence: 0.8,
				Preferences: &service.Preferences{
					Area:     "marina",
					Category: "tours",
				},
				RemoteIP: "1.2.3.4",
			})

			Convey("Then resolution attributes the highest tier", func() {
				So(err, ShouldBeNil)
				lead, _ := store.GetLead(ctx, res.LeadID)
				So(lead.ListingID, ShouldNotBeNil)
				So(*lead.ListingID, ShouldEqual, "L-con")
			})
		})

		Convey("When the target is a sunset spot", func() {
			res, err := svc.SubmitAgent(ctx, service.AgentSubmission{
				AgentID:    "chatbot",
				Confidence: 0.8,
				TargetType: service.TargetSunsetSpot,
				TargetID:   "spot-1",
				RemoteIP:   "1.2.3.4",
			})

			Convey("Then attribution routes through the spot's area", func() {
				So(err, ShouldBeNil)
				lead, _ := store.GetLead(ctx, res.LeadID)
				So(lead.ListingID, ShouldNotBeNil)
				So(*lead.ListingID, ShouldEqual, "L-rz")
			})

			Convey("And the spot id lands in the lead metadata", func() {
				lead, _ := store.GetLead(ctx, res.LeadID)
				So(lead.Metadata["sunset_spot_id"], ShouldEqual, "spot-1")
			})
		})

		Convey("When a sunset spot target names an unknown spot", func() {
			res, err := svc.SubmitAgent(ctx, service.AgentSubmission{
				AgentID:    "chatbot",
				Confidence: 0.8,
				TargetType: service.TargetSunsetSpot,
				TargetID:   "spot-404",
				RemoteIP:   "1.2.3.4",
			})

			Convey("Then the lead is still created, unattributed", func() {
				So(err, ShouldBeNil)
				lead, _ := store.GetLead(ctx, res.LeadID)
				So(lead.ListingID, ShouldBeNil)
			})
		})

		Convey("When the agent id is omitted", func() {
			res, err := svc.SubmitAgent(ctx, service.AgentSubmission{
				Confidence: 0.8,
				RemoteIP:   "1.2.3.4",
			})

			Convey("Then the lead books under the anonymous agent", func() {
				So(err, ShouldBeNil)
				lead, _ := store.GetLead(ctx, res.LeadID)
				So(lead.AgentID, ShouldEqual, "anon")
				So(lead.Metadata["agent_id"], ShouldEqual, "anon")
			})
		})

		Convey("When no signal is present at all", func() {
			res, err := svc.SubmitAgent(ctx, service.AgentSubmission{
				AgentID:    "chatbot",
				Confidence: 0.8,
				RemoteIP:   "1.2.3.4",
			})

			Convey("Then the lead stays unattributed for triage", func() {
				So(err, ShouldBeNil)
				lead, _ := store.GetLead(ctx, res.LeadID)
				So(lead.ListingID, ShouldBeNil)
			})
		})

		Convey("When the same request id is submitted twice", func() {
			first, err := svc.SubmitAgent(ctx, service.AgentSubmission{
				AgentID:    "chatbot",
				Confidence: 0.9,
				RequestID:  "req-42",
				RemoteIP:   "1.2.3.4",
			})
			So(err, ShouldBeNil)
			So(first.Duplicate, ShouldBeFalse)

			second, err := svc.SubmitAgent(ctx, service.AgentSubmission{
				AgentID:    "chatbot",
				Confidence: 0.9,
				RequestID:  "req-42",
				RemoteIP:   "1.2.3.4",
			})

			Convey("Then the replay returns the original lead", func() {
				So(err, ShouldBeNil)
				So(second.Duplicate, ShouldBeTrue)
				So(second.LeadID, ShouldEqual, first.LeadID)
				So(second.Status, ShouldEqual, first.Status)
			})

			Convey("And only one lead exists", func() {
				n, _ := store.CountLeads(ctx)
				So(n, ShouldEqual, 1)
			})
		})

		Convey("When the agent exceeds its quota", func() {
			for i := 0; i < 10; i++ {
				_, err := svc.SubmitAgent(ctx, service.AgentSubmission{
					AgentID:    "noisy-bot",
					Confidence: 0.9,
					RemoteIP:   "5.5.5.5",
				})
				So(err, ShouldBeNil)
			}

			_, err := svc.SubmitAgent(ctx, service.AgentSubmission{
				AgentID:    "noisy-bot",
				Confidence: 0.9,
				RemoteIP:   "5.5.5.5",
			})

			Convey("Then the eleventh call is rate limited", func() {
				So(errors.Is(err, service.ErrRateLimited), ShouldBeTrue)
			})

			Convey("And the same agent from another origin still passes", func() {
				_, err := svc.SubmitAgent(ctx, service.AgentSubmission{
					AgentID:    "noisy-bot",
					Confidence: 0.9,
					RemoteIP:   "6.6.6.6",
				})
				So(err, ShouldBeNil)
			})
		})
	})
}

func TestSubmitAgentInsertRace(t *testing.T) {
	Convey("Given two identical requests racing past the idempotency lookup", t, func() {
		ctx := context.Background()
		winner := model.Lead{ID: "lead-winner", Status: model.StatusNew}
		store := &raceStore{MemoryStore: repository.NewMemoryStore(), winner: winner}
		svc := newStartedService(t, store)

		Convey("When the loser's insert hits the uniqueness constraint", func() {
			res, err := svc.SubmitAgent(ctx, service.AgentSubmission{
				AgentID:    "chatbot",
				Confidence: 0.9,
				RequestID:  "req-race",
				RemoteIP:   "1.2.3.4",
			})

			Convey("Then the loser is answered as an idempotent replay", func() {
				So(err, ShouldBeNil)
				So(res.Duplicate, ShouldBeTrue)
				So(res.LeadID, ShouldEqual, "lead-winner")
			})
		})
	})
}

func TestResolveTarget(t *testing.T) {
	Convey("Given a service with seeded listings", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore(
			repository.WithListings(
				model.Listing{ID: "L-ver", Tier: model.TierVerified, Area: "centro", Category: "dining"},
			),
			repository.WithSunsetSpots(
				model.SunsetSpot{ID: "spot-2", Slug: "mirador-cerro-de-la-cruz", Name: "Mirador Cerro de la Cruz", Area: "centro"},
			),
		)
		svc := newStartedService(t, store)

		Convey("When resolving matching criteria", func() {
			got, err := svc.ResolveTarget(ctx, routing.Criteria{Area: "centro"})

			So(err, ShouldBeNil)
			So(got, ShouldNotBeNil)
			So(got.ID, ShouldEqual, "L-ver")
		})

		Convey("When resolving by sunset spot", func() {
			got, err := svc.ResolveTarget(ctx, routing.Criteria{SunsetSpotID: "spot-2"})

			So(err, ShouldBeNil)
			So(got, ShouldNotBeNil)
			So(got.ID, ShouldEqual, "L-ver")
		})

		Convey("When nothing matches", func() {
			got, err := svc.ResolveTarget(ctx, routing.Criteria{Area: "mismatch"})

			So(err, ShouldBeNil)
			So(got, ShouldBeNil)
		})
	})
}

func TestGetStats(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		svc := newStartedService(t, store)

		_, err := svc.SubmitPublic(ctx, service.PublicSubmission{
			Email:    "ana@example.com",
			Message:  "hola",
			RemoteIP: "1.2.3.4",
		})
		So(err, ShouldBeNil)

		Convey("When reading stats", func() {
			stats := svc.GetStats()

			Convey("Then intake configuration and volume are reported", func() {
				So(stats["publicLimit"], ShouldEqual, 3)
				So(stats["agentLimit"], ShouldEqual, 10)
				So(stats["totalLeads"], ShouldEqual, 1)
				So(stats["publicActors"], ShouldEqual, 1)
			})
		})
	})
}
