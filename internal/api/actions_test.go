package api

import (
	"errors"
	"strings"
	"testing"

	"github.com/AdamBeresnev/bracket-admin/internal/apperr"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	matchID, winnerID := uuid.New(), uuid.New()

	action, err := Decode(strings.NewReader(`{"type":"set_match_winner","payload":{"matchId":"` + matchID.String() + `","winnerId":"` + winnerID.String() + `"}}`))
	require.NoError(t, err)

	set, ok := action.(SetMatchWinner)
	require.True(t, ok)
	assert.Equal(t, matchID, set.MatchID)
	assert.Equal(t, winnerID, set.WinnerID)
	assert.Equal(t, TypeSetMatchWinner, action.Type())
}

func TestDecodeEveryType(t *testing.T) {
	id := uuid.NewString()
	testCases := []struct {
		body     string
		expected ActionType
	}{
		{`{"type":"generate_bracket","payload":{"tournamentId":"` + id + `"}}`, TypeGenerateBracket},
		{`{"type":"get_bracket","payload":{"tournamentId":"` + id + `"}}`, TypeGetBracket},
		{`{"type":"set_tournament_winner","payload":{"matchId":"` + id + `","winnerId":"` + id + `"}}`, TypeSetTournamentWinner},
		{`{"type":"reset_match","payload":{"matchId":"` + id + `"}}`, TypeResetMatch},
		{`{"type":"reset_all_matches","payload":{"tournamentId":"` + id + `"}}`, TypeResetAllMatches},
	}

	for _, tc := range testCases {
		t.Run(string(tc.expected), func(t *testing.T) {
			action, err := Decode(strings.NewReader(tc.body))
			require.NoError(t, err)
			assert.Equal(t, tc.expected, action.Type())
		})
	}
}

func TestDecodeRejects(t *testing.T) {
	id := uuid.NewString()
	testCases := []struct {
		name     string
		body     string
		expected error
	}{
		{"unknown type", `{"type":"delete_everything","payload":{}}`, ErrUnknownAction},
		{"missing payload", `{"type":"reset_match"}`, ErrMalformedRequest},
		{"unknown envelope field", `{"type":"reset_match","payload":{"matchId":"` + id + `"},"extra":1}`, ErrMalformedRequest},
		{"unknown payload field", `{"type":"reset_match","payload":{"matchId":"` + id + `","force":true}}`, ErrMalformedRequest},
		{"missing winner", `{"type":"set_match_winner","payload":{"matchId":"` + id + `"}}`, ErrMissingWinner},
		{"missing match", `{"type":"reset_match","payload":{}}`, ErrMissingMatch},
		{"missing tournament", `{"type":"generate_bracket","payload":{}}`, ErrMissingTournament},
		{"bad uuid", `{"type":"reset_match","payload":{"matchId":"nope"}}`, ErrMalformedRequest},
		{"trailing data", `{"type":"reset_match","payload":{"matchId":"` + id + `"}} {}`, ErrMalformedRequest},
		{"not json", `hello`, ErrMalformedRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tc.body))
			require.Error(t, err)
			assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))
			assert.Equal(t, apperr.Message(tc.expected), apperr.Message(err))
		})
	}
}

func TestDecodeInto(t *testing.T) {
	var reset ResetMatch
	require.NoError(t, DecodeInto(strings.NewReader(`{"matchId":"`+uuid.NewString()+`"}`), &reset))
	assert.NotEqual(t, uuid.Nil, reset.MatchID)

	var generate GenerateBracket
	assert.ErrorIs(t, DecodeInto(strings.NewReader(`{}`), &generate), ErrMissingTournament)
}

func TestResponses(t *testing.T) {
	ok := OK(map[string]int{"matches": 3})
	assert.True(t, ok.Success)

	notFound := apperr.New(apperr.NotFound, "match not found")
	fail := Fail(notFound)
	assert.False(t, fail.Success)
	assert.Equal(t, "match not found", fail.Message)
	assert.Equal(t, apperr.NotFound, fail.Kind)

	internal := Fail(errors.New("disk I/O error"))
	assert.Equal(t, apperr.StorageFailure, internal.Kind)
	assert.NotContains(t, internal.Message, "disk")
}
