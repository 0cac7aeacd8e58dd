package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test-namespace")
			subsystemOpt := WithSubsystem("test-subsystem")
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})
			metricsEnabledOpt := WithMetricsEnabled(true)
			refreshIntervalOpt := WithRefreshInterval(5 * time.Second)

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
				So(metricsEnabledOpt, ShouldNotBeNil)
				So(refreshIntervalOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestManagerCreation(t *testing.T) {
	Convey("Given manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithRefreshInterval(10*time.Second),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When options carry empty values", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithRefreshInterval(0),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults are kept and creation succeeds", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given metrics recording", t, func() {
		Convey("When recording submission metrics", func() {
			So(func() {
				RecordSubmissionAccepted()
				RecordSubmissionAccepted()
				RecordSubmissionDuplicate()
				RecordSubmissionRejected()
			}, ShouldNotPanic)
		})

		Convey("When recording ranking metrics", func() {
			So(func() {
				RecordRankingComputed()
				RecordRankingError()
				UpdateJobsByRank("A", 4)
				UpdateJobsByRank("B", 12)
				UpdateJobsByRank("C", 3)
			}, ShouldNotPanic)
		})

		Convey("When recording bulk validation metrics", func() {
			So(func() {
				RecordBulkRun(50, 84.0)
				RecordBulkRun(0, 0.0)
			}, ShouldNotPanic)
		})

		Convey("When recording operational metrics", func() {
			So(func() {
				UpdateTrackedJobs(100)
				UpdateWorkerCount(8)
				UpdateQueueSize(1000)
				UpdateQueueCapacity(10000)
				UpdateQueueUtilization(0.1)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
			}, ShouldNotPanic)
		})

		Convey("When recording worker metrics", func() {
			So(func() {
				RecordWorkerProcessingLatency(50.0)
				RecordWorkerProcessingLatency(75.0)
				RecordWorkerError()
			}, ShouldNotPanic)
		})

		Convey("When recording HTTP metrics", func() {
			So(func() {
				RecordHTTPRequest("/jobs", "POST", "201")
				RecordHTTPRequest("/jobs/{id}/scores", "POST", "202")
				RecordHTTPRequestDuration("/jobs", "POST", "201", 5.0)
				RecordHTTPRequestDuration("/weights", "PUT", "200", 2.0)
			}, ShouldNotPanic)
		})

		Convey("When recording system metrics", func() {
			So(func() {
				UpdateSystemMemoryUsage(1024 * 1024 * 100)
				UpdateSystemGoroutineCount(200)
			}, ShouldNotPanic)
		})
	})
}

func TestMetricsEdgeCases(t *testing.T) {
	Convey("Given metrics edge cases", t, func() {
		Convey("When using zero values", func() {
			So(func() {
				UpdateQueueSize(0)
				UpdateWorkerCount(0)
				UpdateTrackedJobs(0)
				RecordWorkerProcessingLatency(0.0)
				RecordHTTPRequestDuration("/test", "GET", "200", 0.0)
			}, ShouldNotPanic)
		})

		Convey("When using negative values", func() {
			So(func() {
				UpdateQueueSize(-100)
				UpdateWorkerCount(-10)
				UpdateTrackedJobs(-1000)
			}, ShouldNotPanic)
		})

		Convey("When using very large values", func() {
			So(func() {
				UpdateQueueSize(1000000)
				UpdateWorkerCount(10000)
				RecordWorkerProcessingLatency(10000.0)
				RecordHTTPRequestDuration("/test", "GET", "200", 30000.0)
			}, ShouldNotPanic)
		})

		Convey("When using empty label values", func() {
			So(func() {
				RecordHTTPRequest("", "", "200")
				RecordHTTPRequestDuration("", "", "200", 10.0)
				UpdateJobsByRank("", 0)
			}, ShouldNotPanic)
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given metrics concurrency", t, func() {
		Convey("When recording metrics concurrently", func() {
			done := make(chan bool, 10)

			for i := 0; i < 10; i++ {
				go func() {
					for j := 0; j < 100; j++ {
						RecordSubmissionAccepted()
						UpdateQueueSize(1000 + j)
						RecordWorkerProcessingLatency(float64(j))
						RecordHTTPRequest("/test", "GET", "200")
					}
					done <- true
				}()
			}

			for i := 0; i < 10; i++ {
				<-done
			}

			Convey("Then it should handle concurrent access without panics", func() {
				So(true, ShouldBeTrue)
			})
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("Given the global registry", t, func() {
		registry := GetRegistry()

		Convey("Then it serves the registered metric families", func() {
			So(registry, ShouldNotBeNil)

			RecordSubmissionAccepted()
			families, err := registry.Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}
