package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpoSend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/--/api/v2/push/send", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var messages []Message
		require.NoError(t, json.NewDecoder(r.Body).Decode(&messages))
		require.Len(t, messages, 2)
		assert.Equal(t, "tok-1", messages[0].To)

		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{
				{"id": "t1", "status": "ok"},
				{"id": "t2", "status": "error", "message": "DeviceNotRegistered"},
			},
		})
	}))
	defer srv.Close()

	client := NewExpoClient(srv.URL)
	tickets, err := client.Send(context.Background(), []Message{
		{To: "tok-1", Title: "Budget check", Body: "You can still spend 12.00 today."},
		{To: "tok-2", Title: "Budget check", Body: "You can still spend 30.00 today."},
	})
	require.NoError(t, err)
	require.Len(t, tickets, 2)
	assert.Equal(t, "ok", tickets[0].Status)
	assert.Equal(t, "error", tickets[1].Status)
	assert.Equal(t, "DeviceNotRegistered", tickets[1].Message)
}

func TestExpoSendNothing(t *testing.T) {
	client := NewExpoClient("http://127.0.0.1:1")
	tickets, err := client.Send(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, tickets)
}

func TestExpoSendGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"errors": []map[string]string{{"code": "PUSH_TOO_MANY_EXPERIENCE_IDS", "message": "mixed projects"}},
		})
	}))
	defer srv.Close()

	client := NewExpoClient(srv.URL)
	_, err := client.Send(context.Background(), []Message{{To: "tok"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PUSH_TOO_MANY_EXPERIENCE_IDS")
}

func TestExpoSendHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewExpoClient(srv.URL)
	_, err := client.Send(context.Background(), []Message{{To: "tok"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}
