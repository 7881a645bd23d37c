package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubscriptionIsEntitled(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{status: SubscriptionStatusActive, want: true},
		{status: SubscriptionStatusTrialing, want: true},
		{status: SubscriptionStatusPastDue, want: true},
		{status: SubscriptionStatusCanceled, want: false},
		{status: SubscriptionStatusExpired, want: false},
		{status: SubscriptionStatusPaused, want: false},
		{status: "", want: false},
	}

	for _, tt := range tests {
		sub := &Subscription{Status: tt.status}
		assert.Equal(t, tt.want, sub.IsEntitled(), "status %q", tt.status)
	}
}
