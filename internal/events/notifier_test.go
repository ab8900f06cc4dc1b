package events

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"thumblytic-backend-go/internal/models"
	"thumblytic-backend-go/pkg/mailer"
)

type recordingSender struct {
	sent []mailer.Message
	err  error
}

func (s *recordingSender) Send(msg mailer.Message) error {
	s.sent = append(s.sent, msg)
	return s.err
}

func encode(t *testing.T, e models.Event) []byte {
	t.Helper()
	body, err := json.Marshal(e)
	require.NoError(t, err)
	return body
}

func TestNotifierAppealSubmitted(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(sender, "ops@example.com", "https://app.example.com/", zap.NewNop())

	err := n.Handle(encode(t, New(models.EventAppealSubmitted, "u1", "u1@example.com", map[string]string{"requestedPlan": "elite"})))
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "ops@example.com", sender.sent[0].To)
	assert.Equal(t, "New elite plan appeal", sender.sent[0].Subject)
	assert.Contains(t, sender.sent[0].Body, "https://app.example.com/admin")
}

func TestNotifierDecisionsMailTheUser(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(sender, "", "", zap.NewNop())

	require.NoError(t, n.Handle(encode(t, New(models.EventAppealApproved, "u1", "u1@example.com",
		map[string]string{"plan": "pro", "credits": "10"}))))
	require.NoError(t, n.Handle(encode(t, New(models.EventAppealRejected, "u1", "u1@example.com", nil))))
	require.NoError(t, n.Handle(encode(t, New(models.EventAppealSubmitted, "u1", "u1@example.com", nil))))

	require.Len(t, sender.sent, 2, "no admin address configured")
	assert.Contains(t, sender.sent[0].Body, "<b>pro</b> plan with 10 credits")
	assert.Equal(t, "u1@example.com", sender.sent[1].To)
}

func TestNotifierDropsMalformedAndReturnsSendErrors(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp 421")}
	n := NewNotifier(sender, "ops@example.com", "", zap.NewNop())

	assert.NoError(t, n.Handle([]byte("{garbage")))
	assert.Empty(t, sender.sent)

	err := n.Handle(encode(t, New(models.EventAppealSubmitted, "u1", "", nil)))
	assert.Error(t, err)
}
