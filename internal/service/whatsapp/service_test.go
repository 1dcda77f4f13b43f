package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/ranch/internal/config"
	"github.com/mamadbah2/ranch/internal/domain/models"
	"github.com/mamadbah2/ranch/internal/service/commands"
	client "github.com/mamadbah2/ranch/pkg/clients/whatsapp"
)

type mockClient struct{ mock.Mock }

func (m *mockClient) SendTextMessage(ctx context.Context, req client.SendTextMessageRequest) (*client.SendTextMessageResponse, error) {
	args := m.Called(req)
	return &client.SendTextMessageResponse{}, args.Error(0)
}

type mockDispatcher struct{ mock.Mock }

func (m *mockDispatcher) HandleCommand(_ context.Context, cmd models.Command, sender string) (string, error) {
	args := m.Called(cmd.Type, cmd.Args, sender)
	return args.String(0), args.Error(1)
}

func textPayload(from, body string) models.WebhookPayload {
	return models.WebhookPayload{Entry: []models.WebhookEntry{{
		Changes: []models.WebhookChange{{Value: models.WebhookValue{
			Messages: []models.InboundMessage{{From: from, ID: "m1", Type: "text", Text: &models.TextContent{Body: body}}},
		}}},
	}}}
}

func newTestService(c *mockClient, d *mockDispatcher) *MetaWhatsAppService {
	return NewMetaWhatsAppService(config.WhatsAppConfig{VerifyToken: "secret"}, c, d, nil)
}

func TestVerifyWebhookToken(t *testing.T) {
	svc := newTestService(&mockClient{}, &mockDispatcher{})

	challenge, err := svc.VerifyWebhookToken("subscribe", "secret", "42")
	require.NoError(t, err)
	assert.Equal(t, "42", challenge)

	_, err = svc.VerifyWebhookToken("subscribe", "wrong", "42")
	assert.Error(t, err)
	_, err = svc.VerifyWebhookToken("unsubscribe", "secret", "42")
	assert.Error(t, err)
	_, err = svc.VerifyWebhookToken("", "", "42")
	assert.Error(t, err)
}

func TestHandleWebhookRepliesWithDispatcherOutput(t *testing.T) {
	c, d := &mockClient{}, &mockDispatcher{}
	d.On("HandleCommand", models.CommandADG, []string{"A-102"}, "+1555").Return("Growth for A-102", nil)
	c.On("SendTextMessage", client.SendTextMessageRequest{To: "+1555", Body: "Growth for A-102"}).Return(nil)

	require.NoError(t, newTestService(c, d).HandleWebhook(context.Background(), textPayload("+1555", " /adg A-102 ")))
	c.AssertExpectations(t)
	d.AssertExpectations(t)
}

func TestHandleWebhookErrorReplies(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unsupported", commands.ErrUnsupportedCommand, "Unknown command."},
		{"bad args", fmt.Errorf("%w: animal tag required", commands.ErrInvalidArguments), "animal tag required"},
		{"unknown tag", fmt.Errorf("animal Z-1: %w", models.ErrNotFound), "No animal found: animal Z-1"},
		{"unexpected", errors.New("mongo down"), "something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, d := &mockClient{}, &mockDispatcher{}
			d.On("HandleCommand", mock.Anything, mock.Anything, "+1555").Return("", tt.err)
			c.On("SendTextMessage", mock.MatchedBy(func(req client.SendTextMessageRequest) bool {
				return strings.Contains(req.Body, tt.want)
			})).Return(nil)

			require.NoError(t, newTestService(c, d).HandleWebhook(context.Background(), textPayload("+1555", "/cost Z-1")))
			c.AssertExpectations(t)
		})
	}
}

func TestHandleWebhookIgnoresNonText(t *testing.T) {
	c, d := &mockClient{}, &mockDispatcher{}
	payload := textPayload("+1555", "")
	payload.Entry[0].Changes[0].Value.Messages[0].Text = nil

	require.NoError(t, newTestService(c, d).HandleWebhook(context.Background(), payload))
	d.AssertNotCalled(t, "HandleCommand", mock.Anything, mock.Anything, mock.Anything)
	c.AssertNotCalled(t, "SendTextMessage", mock.Anything)
}

func TestHandleWebhookReturnsSendError(t *testing.T) {
	c, d := &mockClient{}, &mockDispatcher{}
	d.On("HandleCommand", models.CommandHelp, []string(nil), "+1555").Return(commands.HelpText, nil)
	c.On("SendTextMessage", mock.Anything).Return(errors.New("timeout"))

	err := newTestService(c, d).HandleWebhook(context.Background(), textPayload("+1555", "/help"))
	assert.EqualError(t, err, "timeout")
}

func TestSendReportSplitsLongText(t *testing.T) {
	c := &mockClient{}
	c.On("SendTextMessage", mock.Anything).Return(nil)

	line := strings.Repeat("x", 99) + "\n"
	text := strings.Repeat(line, 50)
	require.NoError(t, newTestService(c, &mockDispatcher{}).SendReport(context.Background(), "+1555", text))

	c.AssertNumberOfCalls(t, "SendTextMessage", 2)
	for _, call := range c.Calls {
		req := call.Arguments.Get(0).(client.SendTextMessageRequest)
		assert.LessOrEqual(t, len(req.Body), client.MaxBodyLength)
		assert.False(t, strings.HasPrefix(req.Body, "\n"))
	}
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{""}, splitMessage("", 10))
	assert.Equal(t, []string{"abc"}, splitMessage("abc", 10))
	assert.Equal(t, []string{"abcd", "efgh"}, splitMessage("abcd\nefgh", 6))
	assert.Equal(t, []string{"abcdef", "gh"}, splitMessage("abcdefgh", 6))
}

func TestSplitMessageKeepsRunesWhole(t *testing.T) {
	assert.Equal(t, []string{"Pen B", "ñb"}, splitMessage("Pen Bñb", 6))
	assert.Equal(t, []string{"€", "€"}, splitMessage("€€", 2), "a rune wider than the limit is sent whole")

	long := strings.Repeat("Corral Peñasco ", 400)
	parts := splitMessage(long, 4096)
	require.Len(t, parts, 2)
	for _, p := range parts {
		assert.True(t, utf8.ValidString(p))
		assert.LessOrEqual(t, len(p), 4096)
	}
	assert.Equal(t, long, strings.Join(parts, ""))
}
