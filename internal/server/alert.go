package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Alerter posts operator alerts to a webhook. A zero URL disables it; every
// call is fire-and-forget so the turn loop never waits on the network.
type Alerter struct {
	url    string
	client *http.Client
	log    *zap.Logger
}

func NewAlerter(url string, log *zap.Logger) *Alerter {
	return &Alerter{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
		log:    log,
	}
}

type desyncAlert struct {
	Kind               string `json:"kind"`
	GameID             string `json:"gameID"`
	ClientID           string `json:"clientID"`
	Turn               int    `json:"turn"`
	ClientsWithCorrect int    `json:"clientsWithCorrectHash"`
	TotalReporting     int    `json:"totalReporting"`
}

// DesyncAlert reports a client that stayed desynced past the configured
// span.
func (a *Alerter) DesyncAlert(gameID, clientID string, turn, agree, total int) {
	if a == nil || a.url == "" {
		return
	}
	body, err := json.Marshal(desyncAlert{
		Kind:               "persistent_desync",
		GameID:             gameID,
		ClientID:           clientID,
		Turn:               turn,
		ClientsWithCorrect: agree,
		TotalReporting:     total,
	})
	if err != nil {
		return
	}
	go func() {
		resp, err := a.client.Post(a.url, "application/json", bytes.NewReader(body))
		if err != nil {
			a.log.Warn("desync alert failed", zap.Error(err))
			return
		}
		_ = resp.Body.Close()
	}()
}
