package repository

import (
	"testing"
	"time"

	"github.com/launchstack/SubRelay/app/models"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestIsStaleDelivery(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	later := now.AddDate(0, 1, 0)

	base := func() *models.Subscription {
		return &models.Subscription{
			Provider:               models.BillingProviderPolar,
			ProviderSubscriptionID: "sub_1",
			CurrentPeriodEnd:       timePtr(later),
		}
	}

	tests := []struct {
		name     string
		existing *models.Subscription
		incoming *models.Subscription
		want     bool
	}{
		{
			name:     "earlier period end is stale",
			existing: base(),
			incoming: &models.Subscription{
				Provider:               models.BillingProviderPolar,
				ProviderSubscriptionID: "sub_1",
				CurrentPeriodEnd:       timePtr(now),
			},
			want: true,
		},
		{
			name:     "same period end is not stale",
			existing: base(),
			incoming: base(),
			want:     false,
		},
		{
			name:     "later period end is not stale",
			existing: base(),
			incoming: &models.Subscription{
				Provider:               models.BillingProviderPolar,
				ProviderSubscriptionID: "sub_1",
				CurrentPeriodEnd:       timePtr(later.AddDate(0, 1, 0)),
			},
			want: false,
		},
		{
			name:     "different provider is never stale",
			existing: base(),
			incoming: &models.Subscription{
				Provider:               models.BillingProviderRevenueCat,
				ProviderSubscriptionID: "sub_1",
				CurrentPeriodEnd:       timePtr(now),
			},
			want: false,
		},
		{
			name:     "different provider subscription is never stale",
			existing: base(),
			incoming: &models.Subscription{
				Provider:               models.BillingProviderPolar,
				ProviderSubscriptionID: "sub_2",
				CurrentPeriodEnd:       timePtr(now),
			},
			want: false,
		},
		{
			name:     "missing incoming period end is never stale",
			existing: base(),
			incoming: &models.Subscription{
				Provider:               models.BillingProviderPolar,
				ProviderSubscriptionID: "sub_1",
			},
			want: false,
		},
		{
			name: "missing existing period end is never stale",
			existing: &models.Subscription{
				Provider:               models.BillingProviderPolar,
				ProviderSubscriptionID: "sub_1",
			},
			incoming: base(),
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isStaleDelivery(tt.existing, tt.incoming); got != tt.want {
				t.Fatalf("isStaleDelivery() = %v, want %v", got, tt.want)
			}
		})
	}
}
