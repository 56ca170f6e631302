package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestMetricsRegistered(t *testing.T) {
	tests := []struct {
		name   string
		metric prometheus.Collector
	}{
		{"APIRequestsTotal", APIRequestsTotal},
		{"APIRequestDuration", APIRequestDuration},
		{"APIAuthFailuresTotal", APIAuthFailuresTotal},
		{"ChirpsCreatedTotal", ChirpsCreatedTotal},
		{"EventsDispatchedTotal", EventsDispatchedTotal},
		{"EventHandlerErrorsTotal", EventHandlerErrorsTotal},
		{"FanoutRecipientsTotal", FanoutRecipientsTotal},
		{"FanoutDuration", FanoutDuration},
		{"NotificationsTotal", NotificationsTotal},
		{"NotificationSendDuration", NotificationSendDuration},
		{"ArchiveErrorsTotal", ArchiveErrorsTotal},
		{"DBConnectionsActive", DBConnectionsActive},
		{"DBConnectionsIdle", DBConnectionsIdle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s is nil", tt.name)
			}
		})
	}
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestNotificationsCounter(t *testing.T) {
	before := counterValue(t, NotificationsTotal.WithLabelValues("mail", "sent"))
	NotificationsTotal.WithLabelValues("mail", "sent").Inc()
	after := counterValue(t, NotificationsTotal.WithLabelValues("mail", "sent"))
	if after-before != 1 {
		t.Errorf("expected counter to increase by 1, got %v", after-before)
	}
}

func TestEventLabels(t *testing.T) {
	EventsDispatchedTotal.WithLabelValues("chirp.created").Inc()
	EventHandlerErrorsTotal.WithLabelValues("chirp.created").Inc()
	APIRequestDuration.WithLabelValues("POST", "/api/v1/chirps").Observe(0.01)
	NotificationSendDuration.WithLabelValues("stdout").Observe(0.001)
}
