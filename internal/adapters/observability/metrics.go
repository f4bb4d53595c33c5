package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const namespace = "hostel"

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "external_requests_total", Help: "Requests to the hosted database."},
		[]string{"service", "endpoint", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "external_request_duration_seconds",
			Help:    "Hosted database request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
	BookingSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "booking_submissions_total", Help: "Booking submissions by outcome."},
		[]string{"outcome"}, // invalid|failed|succeeded
	)
	RoomStatusFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "room_status_failures_total", Help: "Room status writes that failed after a booking was created."},
	)
	CatalogLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "catalog_loads_total", Help: "Catalog loads by source."},
		[]string{"result"}, // cache|store|error
	)
	FeedEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "feed_events_total", Help: "Booking events merged into owner feeds."},
		[]string{"kind"},
	)
)

// Serve exposes reg on a separate listener. An empty addr disables it.
func Serve(addr string, reg *prometheus.Registry) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, ExternalRequests, ExternalLatency, CacheEvents,
		BookingSubmissions, RoomStatusFailures, CatalogLoads, FeedEvents)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveExternal(service, endpoint string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}

func ObserveBooking(outcome string) { BookingSubmissions.WithLabelValues(outcome).Inc() }

func ObserveRoomStatusFailure() { RoomStatusFailures.Inc() }

func ObserveCatalogLoad(result string) { CatalogLoads.WithLabelValues(result).Inc() }

func ObserveFeedEvent(kind string) { FeedEvents.WithLabelValues(kind).Inc() }
