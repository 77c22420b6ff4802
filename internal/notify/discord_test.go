package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/vehicle-deal-checker/internal/metrics"
	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
)

func testAlert(rating domain.DealRatingKind) AlertPayload {
	p := NewAlertPayload(testEvaluation())
	p.Rating = rating
	return *p
}

func TestDiscordNotifier_SendAlert(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		alert      AlertPayload
		statusCode int
		wantErr    bool
		errMsg     string
		wantColor  int
	}{
		{
			name:       "excellent deal uses green",
			alert:      testAlert(domain.RatingExcellent),
			statusCode: http.StatusNoContent,
			wantColor:  colorGreen,
		},
		{
			name:       "good deal uses yellow",
			alert:      testAlert(domain.RatingGood),
			statusCode: http.StatusNoContent,
			wantColor:  colorYellow,
		},
		{
			name:       "fair price uses orange",
			alert:      testAlert(domain.RatingFair),
			statusCode: http.StatusNoContent,
			wantColor:  colorOrange,
		},
		{
			name:       "overpriced uses red",
			alert:      testAlert(domain.RatingOverpriced),
			statusCode: http.StatusOK,
			wantColor:  colorRed,
		},
		{
			name:       "discord returns 429 rate limited",
			alert:      testAlert(domain.RatingExcellent),
			statusCode: http.StatusTooManyRequests,
			wantErr:    true,
			errMsg:     "rate limited",
		},
		{
			name:       "discord returns 400 error",
			alert:      testAlert(domain.RatingExcellent),
			statusCode: http.StatusBadRequest,
			wantErr:    true,
			errMsg:     "discord returned 400",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var received discordWebhookPayload

			srv := httptest.NewServer(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
					assert.Equal(t, http.MethodPost, r.Method)

					err := json.NewDecoder(r.Body).Decode(&received)
					assert.NoError(t, err)

					w.WriteHeader(tt.statusCode)
				}),
			)
			defer srv.Close()

			d := NewDiscordNotifier(srv.URL, WithHTTPClient(srv.Client()))
			err := d.SendAlert(context.Background(), &tt.alert)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}

			require.NoError(t, err)
			require.Len(t, received.Embeds, 1)

			embed := received.Embeds[0]
			assert.Equal(t, tt.wantColor, embed.Color)
			assert.Equal(t, string(tt.alert.Rating)+": 2018 Honda Civic EX", embed.Title)
			assert.Equal(t, tt.alert.ListingURL, embed.URL)
			assert.Equal(t, tt.alert.Comment, embed.Description)
			require.NotNil(t, embed.Footer)
			assert.Contains(t, embed.Footer.Text, tt.alert.EvaluationID)

			fieldMap := make(map[string]string)
			for _, f := range embed.Fields {
				fieldMap[f.Name] = f.Value
			}
			assert.Equal(t, "$13,500", fieldMap["Listing Price"])
			assert.Equal(t, "$16,200", fieldMap["Fair Value"])
			assert.Equal(t, "60,000 mi", fieldMap["Mileage"])
			assert.Equal(t, "$15,066 - $17,334", fieldMap["Range"])
			assert.Equal(t, "[info] No VIN", fieldMap["Flags"])
		})
	}
}

func TestDiscordNotifier_SendAlert_MinimalEmbed(t *testing.T) {
	t.Parallel()

	var received discordWebhookPayload

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := json.NewDecoder(r.Body).Decode(&received)
		assert.NoError(t, err)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	alert := AlertPayload{
		Title:        "Honda",
		Rating:       domain.RatingNA,
		ListingPrice: "n/a",
		FairValue:    "$0",
		Mileage:      "n/a",
	}

	d := NewDiscordNotifier(srv.URL)
	require.NoError(t, d.SendAlert(context.Background(), &alert))

	require.Len(t, received.Embeds, 1)
	embed := received.Embeds[0]
	assert.Equal(t, colorGrey, embed.Color)
	assert.Nil(t, embed.Footer)
	assert.Len(t, embed.Fields, 3)
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", truncate("short", 10))
	long := strings.Repeat("é", 20)
	got := truncate(long, 10)
	assert.Len(t, []rune(got), 10)
	assert.True(t, strings.HasSuffix(got, "…"))
}

func TestDiscordNotifier_NetworkError(t *testing.T) {
	t.Parallel()

	d := NewDiscordNotifier("http://127.0.0.1:1") // nothing listening
	alert := testAlert(domain.RatingExcellent)
	err := d.SendAlert(context.Background(), &alert)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sending discord webhook")
}

func TestDiscordNotifier_InvalidWebhookURL(t *testing.T) {
	t.Parallel()

	d := NewDiscordNotifier("://not-a-valid-url")
	alert := testAlert(domain.RatingExcellent)
	err := d.SendAlert(context.Background(), &alert)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating discord request")
}

func TestWithHTTPClient(t *testing.T) {
	t.Parallel()

	custom := &http.Client{}
	d := NewDiscordNotifier("https://example.com", WithHTTPClient(custom))
	assert.Same(t, custom, d.client)
}

func notificationSampleCount() uint64 {
	ch := make(chan prometheus.Metric, 1)
	metrics.NotificationDuration.Collect(ch)
	m := <-ch
	pb := &dto.Metric{}
	_ = m.Write(pb)
	return pb.GetHistogram().GetSampleCount()
}

func TestSendAlert_ObservesNotificationDuration(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	before := notificationSampleCount()

	d := NewDiscordNotifier(srv.URL)
	alert := testAlert(domain.RatingGood)
	require.NoError(t, d.SendAlert(context.Background(), &alert))

	assert.Greater(t, notificationSampleCount(), before)
}
