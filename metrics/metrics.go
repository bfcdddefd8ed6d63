package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collectors 收集即時推播相關的指標，每個實例擁有自己的 prometheus.Registry，
// 測試中可以同時存在多個。
type Collectors struct {
	registry *prometheus.Registry

	Subscriptions   prometheus.Gauge
	Sessions        prometheus.Gauge
	Published       prometheus.Counter
	Delivered       prometheus.Counter
	SlowConsumers   prometheus.Counter
	AuthFailures    prometheus.Counter
	RequestErrors   *prometheus.CounterVec
	MessagesCreated prometheus.Counter
}

// New 建立並註冊所有指標
func New() *Collectors {
	c := &Collectors{
		registry: prometheus.NewRegistry(),
		Subscriptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "roomchat", Name: "subscriptions",
			Help: "Room subscriptions currently registered.",
		}),
		Sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "roomchat", Name: "sessions",
			Help: "Live websocket sessions.",
		}),
		Published: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "roomchat", Name: "events_published_total",
			Help: "Events handed to the registry for fan-out.",
		}),
		Delivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "roomchat", Name: "events_enqueued_total",
			Help: "Events enqueued on a subscriber queue.",
		}),
		SlowConsumers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "roomchat", Name: "slow_consumers_dropped_total",
			Help: "Subscribers dropped because their queue was full.",
		}),
		AuthFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "roomchat", Name: "handshake_auth_failures_total",
			Help: "Websocket handshakes rejected for bad credentials.",
		}),
		RequestErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roomchat", Name: "request_errors_total",
			Help: "Websocket requests answered with an error, by code.",
		}, []string{"code"}),
		MessagesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "roomchat", Name: "messages_created_total",
			Help: "Messages persisted and accepted by the broker.",
		}),
	}
	c.registry.MustRegister(
		c.Subscriptions, c.Sessions, c.Published, c.Delivered,
		c.SlowConsumers, c.AuthFailures, c.RequestErrors, c.MessagesCreated,
		prometheus.NewGoCollector(),
	)
	return c
}

// Handler 回傳 /metrics 的 HTTP handler
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
