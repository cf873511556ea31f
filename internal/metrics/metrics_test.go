package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New()
	m.ReminderEmails.WithLabelValues("task_due", "sent").Add(3)
	m.NotificationsTotal.WithLabelValues("comment").Inc()

	assert.Equal(t, 3.0, testutil.ToFloat64(m.ReminderEmails.WithLabelValues("task_due", "sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsTotal.WithLabelValues("comment")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "taskflow_reminder_emails_total")
}
