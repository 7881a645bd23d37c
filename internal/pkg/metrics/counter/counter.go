package counter

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"github.com/launchstack/SubRelay/app/models"
	"github.com/launchstack/SubRelay/internal/pkg/cache"
)

const webhookOutcomesKeyPattern = "webhook:counters:%s"

// AddWebhookOutcome increments the outcome counter for a provider in Redis
func AddWebhookOutcome(provider, outcome string) error {
	ctx := context.Background()
	key := fmt.Sprintf(webhookOutcomesKeyPattern, provider)
	return cache.GetClient().HIncrBy(ctx, key, outcome, 1).Err()
}

// Snapshot returns the current outcome counters for every known provider
func Snapshot() (map[string]map[string]int64, error) {
	ctx := context.Background()
	rdb := cache.GetClient()

	out := make(map[string]map[string]int64)
	for _, provider := range []string{models.BillingProviderPolar, models.BillingProviderRevenueCat} {
		key := fmt.Sprintf(webhookOutcomesKeyPattern, provider)
		data, err := rdb.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, err
		}
		counts := make(map[string]int64, len(data))
		for outcome, v := range data {
			var n int64
			if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
				continue
			}
			counts[outcome] = n
		}
		out[provider] = counts
	}
	return out, nil
}

// RedisRecorder adapts the Redis counters to the dispatcher's best-effort
// OutcomeRecorder collaborator.
type RedisRecorder struct{}

func (RedisRecorder) Add(provider, outcome string) {
	if err := AddWebhookOutcome(provider, outcome); err != nil {
		log.Debugf("[Counter] failed to count %s/%s: %v", provider, outcome, err)
	}
}
