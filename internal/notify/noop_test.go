package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/vehicle-deal-checker/pkg/logger"
	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
)

func TestNoOpNotifier_SendAlert(t *testing.T) {
	t.Parallel()

	n := NewNoOpNotifier(logger.Discard())
	err := n.SendAlert(context.Background(), &AlertPayload{
		Title:  "2018 Honda Civic",
		Rating: domain.RatingExcellent,
	})
	require.NoError(t, err)
}

// compile-time interface checks.
var (
	_ Notifier = (*NoOpNotifier)(nil)
	_ Notifier = (*DiscordNotifier)(nil)
)
