package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	VehiclesRegistered prometheus.Counter
	DriversRegistered  prometheus.Counter
	RentalsOpened      prometheus.Counter
	RentalsClosed      prometheus.Counter
	EventsPublished    prometheus.Counter
	EventPublishErrors prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		VehiclesRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "motofleet_vehicles_registered_total",
			Help: "Total number of vehicles registered in the fleet",
		}),
		DriversRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "motofleet_drivers_registered_total",
			Help: "Total number of delivery drivers registered",
		}),
		RentalsOpened: promauto.NewCounter(prometheus.CounterOpts{
			Name: "motofleet_rentals_opened_total",
			Help: "Total number of rental contracts opened",
		}),
		RentalsClosed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "motofleet_rentals_closed_total",
			Help: "Total number of rental contracts closed and priced",
		}),
		EventsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "motofleet_registration_events_published_total",
			Help: "Registration events successfully handed to the broker",
		}),
		EventPublishErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "motofleet_registration_event_publish_errors_total",
			Help: "Registration event publish attempts that failed",
		}),
	}
}
