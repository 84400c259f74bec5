package ui

import (
	"testing"
	"time"

	"github.com/NomadCrew/feedback-client/services"
	"github.com/stretchr/testify/assert"
)

func TestToasts_PushAndExpire(t *testing.T) {
	var ts toasts
	assert.Empty(t, ts.view(DefaultStyles(), 80))

	cmd := ts.push(services.Notification{Title: "Feedback sent", Description: "Thanks!", Duration: time.Millisecond})
	assert.NotNil(t, cmd)
	ts.push(services.Notification{Title: "Submission failed", Variant: services.VariantError, Duration: time.Millisecond})
	assert.Equal(t, 2, ts.len())

	view := ts.view(DefaultStyles(), 80)
	assert.Contains(t, view, "Feedback sent")
	assert.Contains(t, view, "Thanks!")
	assert.Contains(t, view, "Submission failed")

	assert.Equal(t, toastExpiredMsg{id: 1}, cmd())
	ts.expire(1)
	ts.expire(42)
	assert.Equal(t, 1, ts.len())
	assert.Equal(t, 2, ts.items[0].id)
}
