package services

import (
	"github.com/Dosada05/chess-tournament/brackets"
	"github.com/Dosada05/chess-tournament/models"
)

// Notifier is the outbound notification sink. Delivery is best effort.
type Notifier interface {
	Broadcast(message brackets.WebSocketMessage)
	SendToParticipant(message brackets.WebSocketMessage, participantKey string)
}

const (
	MessageTournamentStarted = "tournament_started"
	MessageTournamentEnded   = "tournament_ended"
	MessageRoundStarted      = "round_started"
	MessageRoundAboutToStart = "round_about_to_start"
	MessageResultSettled     = "match_result_settled"
	MessageResultConflict    = "match_result_conflict"
	MessageTournamentStatus  = "tournament_status"
)

type ResultSettledNotification struct {
	MatchKey         string `json:"matchKey"`
	FirstPlayerName  string `json:"firstPlayerName"`
	SecondPlayerName string `json:"secondPlayerName"`
	Result           string `json:"result"`
}

type ResultConflictNotification struct {
	MatchKey           string `json:"matchKey"`
	FirstPlayerName    string `json:"firstPlayerName"`
	FirstPlayerResult  string `json:"firstPlayerResult"`
	SecondPlayerName   string `json:"secondPlayerName"`
	SecondPlayerResult string `json:"secondPlayerResult"`
}

type RoundStatus struct {
	Number  int              `json:"number"`
	State   models.GameState `json:"state"`
	Matches []*models.Match  `json:"matches"`
}

type TournamentStatus struct {
	Key          string                    `json:"key"`
	Name         string                    `json:"name"`
	State        models.GameState          `json:"state"`
	CurrentRound int                       `json:"current_round"`
	Rounds       []RoundStatus             `json:"rounds"`
	Leaderboard  []models.LeaderboardEntry `json:"leaderboard"`
}

type nopNotifier struct{}

func (nopNotifier) Broadcast(brackets.WebSocketMessage)                 {}
func (nopNotifier) SendToParticipant(brackets.WebSocketMessage, string) {}

func textMessage(kind, tournamentKey, text string) brackets.WebSocketMessage {
	return brackets.WebSocketMessage{Type: kind, Payload: text, TournamentKey: tournamentKey}
}

type TournamentEndedNotification struct {
	Message string                    `json:"message"`
	Winners []models.LeaderboardEntry `json:"winners"`
}
