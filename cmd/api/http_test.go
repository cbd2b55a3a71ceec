package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imadgeboyega/kiekky-matching/internal/events"
)

type downStream struct{ *events.MemoryStream }

func (d *downStream) Len(ctx context.Context) (int64, error) {
	return 0, errors.New("connection refused")
}

func TestHealthCheckReportsStreamLength(t *testing.T) {
	ctx := context.Background()
	healthy := events.NewMemoryStream("dating-events")
	for i := 0; i < 3; i++ {
		_, err := healthy.Append(ctx, map[string]interface{}{"event_type": "message.sent"})
		require.NoError(t, err)
	}

	tests := []struct {
		name       string
		stream     events.Stream
		wantStatus int
		wantHealth string
	}{
		{name: "healthy", stream: healthy, wantStatus: http.StatusOK, wantHealth: "healthy"},
		{name: "stream down", stream: &downStream{events.NewMemoryStream("down")}, wantStatus: http.StatusServiceUnavailable, wantHealth: "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			healthCheck(tt.stream)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body struct {
				Status      string                 `json:"status"`
				EventStream map[string]interface{} `json:"event_stream"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantHealth, body.Status)
			assert.Equal(t, tt.stream.Name(), body.EventStream["name"])
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, float64(3), body.EventStream["length"])
			}
		})
	}
}
