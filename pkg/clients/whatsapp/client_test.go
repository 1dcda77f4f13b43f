package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/ranch/internal/config"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *APIClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(config.WhatsAppConfig{
		BaseURL:       srv.URL + "/",
		APIVersion:    "v20.0",
		AccessToken:   "tok",
		PhoneNumberID: "555",
	})
}

func TestSendTextMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v20.0/555/messages", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "+15550001", body["to"])
		assert.Equal(t, "Herd report", body["text"].(map[string]any)["body"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	})

	resp, err := client.SendTextMessage(context.Background(), SendTextMessageRequest{To: "+15550001", Body: "Herd report"})
	require.NoError(t, err)
	assert.Equal(t, "wamid.1", resp.MessageID())
}

func TestSendTextMessageAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid parameter","type":"OAuthException","code":100}}`))
	})

	_, err := client.SendTextMessage(context.Background(), SendTextMessageRequest{To: "+1", Body: "x"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, 100, apiErr.Detail.Code)
	assert.Contains(t, err.Error(), "Invalid parameter")
}

func TestSendTextMessageRetriesServerErrors(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.2"}]}`))
	})

	resp, err := client.SendTextMessage(context.Background(), SendTextMessageRequest{To: "+1", Body: "x"})
	require.NoError(t, err)
	assert.Equal(t, "wamid.2", resp.MessageID())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestSendTextMessageValidatesLocally(t *testing.T) {
	client := newTestClient(t, func(http.ResponseWriter, *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := client.SendTextMessage(context.Background(), SendTextMessageRequest{Body: "x"})
	assert.Error(t, err)

	_, err = client.SendTextMessage(context.Background(), SendTextMessageRequest{To: "+1", Body: strings.Repeat("a", MaxBodyLength+1)})
	assert.Error(t, err)
}
