package notify

import (
	"fmt"

	"github.com/matcornic/hermes/v2"
)

var subjects = map[Kind]string{
	RegistrationApproved: "Your registration was approved",
	RegistrationRejected: "Your registration was declined",
	BracketGenerated:     "The bracket is ready",
	MatchWon:             "You advanced",
	MatchLost:            "Your match result",
	MatchReset:           "A match result was reset",
	TournamentWon:        "You won the tournament",
	TournamentCompleted:  "Your tournament has a champion",
}

// Renderer turns notifications into emails.
type Renderer struct {
	h       hermes.Hermes
	baseURL string
}

func NewRenderer(productName, baseURL string) *Renderer {
	return &Renderer{
		h: hermes.Hermes{
			Product: hermes.Product{
				Name: productName,
				Link: baseURL,
			},
		},
		baseURL: baseURL,
	}
}

func (r *Renderer) Render(n Notification, recipientName string) (Message, error) {
	subject, ok := subjects[n.Kind]
	if !ok {
		subject = "Tournament update"
	}

	body := hermes.Body{
		Name:   recipientName,
		Intros: []string{n.Message},
		Outros: []string{"You can turn off emails in your notification settings."},
	}
	if n.TournamentID != nil {
		body.Actions = []hermes.Action{{
			Instructions: "Open the tournament to see the bracket:",
			Button: hermes.Button{
				Text: "View bracket",
				Link: fmt.Sprintf("%s/tournaments/%s", r.baseURL, n.TournamentID),
			},
		}}
	}
	email := hermes.Email{Body: body}

	html, err := r.h.GenerateHTML(email)
	if err != nil {
		return Message{}, fmt.Errorf("failed to render email html: %w", err)
	}
	text, err := r.h.GeneratePlainText(email)
	if err != nil {
		return Message{}, fmt.Errorf("failed to render email text: %w", err)
	}

	return Message{Subject: subject, HTML: html, Text: text}, nil
}
