package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "vallarta")
				So(manager.subsystem, ShouldEqual, "intake")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options are applied", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "test-namespace")
				So(manager.subsystem, ShouldEqual, "test-subsystem")
				So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
			})
		})
	})
}

func TestRecordHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording intake outcomes", func() {
			Convey("Then the helpers do not panic", func() {
				So(func() {
					RecordLeadCreated("human")
					RecordLeadCreated("agent")
					RecordLeadDuplicate()
					RecordSpamDropped()
					RecordRateLimited("public")
					RecordConfidenceGated()
					RecordTargetResolved()
					RecordTargetUnresolved()
					RecordStoreError()
					UpdateLeadsTotal(12)
					RecordHTTPRequest("bookings", "POST", "200")
					RecordHTTPRequestDuration("bookings", "POST", "200", 3.2)
					RecordErrorByEndpoint("bookings", "POST", "rate_limit")
					RecordErrorByType("rate_limit", "medium")
					RecordErrorLatency("http", "rate_limit", 1.1)
				}, ShouldNotPanic)
			})
		})

		Convey("When gathering the registry", func() {
			families, err := GetRegistry().Gather()

			Convey("Then intake metrics are registered", func() {
				So(err, ShouldBeNil)
				names := make(map[string]bool, len(families))
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["vallarta_intake_leads_created_total"], ShouldBeTrue)
				So(names["vallarta_intake_rate_limited_total"], ShouldBeTrue)
				So(names["vallarta_intake_spam_dropped_total"], ShouldBeTrue)
			})
		})
	})
}

func TestMetricsErrors(t *testing.T) {
	Convey("Given metrics error constants", t, func() {
		Convey("Then ErrObserveFailed should be defined", func() {
			So(ErrObserveFailed, ShouldNotBeNil)
			So(ErrObserveFailed.Error(), ShouldEqual, "metrics observe failed")
		})
	})
}
