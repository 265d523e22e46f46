package notify

import (
	"context"
	"testing"

	"github.com/AdamBeresnev/bracket-admin/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	r := NewRenderer("Bracket Admin", "https://brackets.example.com")
	tournamentID := uuid.New()

	msg, err := r.Render(Notification{
		Kind:         TournamentWon,
		Message:      "You won Spring Cup",
		TournamentID: utils.Ptr(tournamentID),
	}, "Ada")
	require.NoError(t, err)

	assert.Equal(t, "You won the tournament", msg.Subject)
	assert.Contains(t, msg.HTML, "You won Spring Cup")
	assert.Contains(t, msg.HTML, "https://brackets.example.com/tournaments/"+tournamentID.String())
	assert.Contains(t, msg.Text, "You won Spring Cup")
}

func TestRenderUnknownKind(t *testing.T) {
	r := NewRenderer("Bracket Admin", "http://localhost")
	msg, err := r.Render(Notification{Kind: "something_new", Message: "hello"}, "")
	require.NoError(t, err)
	assert.Equal(t, "Tournament update", msg.Subject)
}

func TestMemoryMailer(t *testing.T) {
	m := &MemoryMailer{}
	require.NoError(t, m.Send(context.Background(), Message{To: "a@example.com"}))
	require.NoError(t, LogMailer{From: "noreply@example.com"}.Send(context.Background(), Message{To: "b@example.com"}))
	assert.Len(t, m.Sent(), 1)
}
