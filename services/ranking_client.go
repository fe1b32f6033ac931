// tournament-score-system/services/ranking_client.go
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// RankingClient calls the external ranking service. Recalculation is an
// opaque remote procedure: this client only knows the endpoint and the
// service token, never the algorithm.
type RankingClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewRankingClient(baseURL, token string) *RankingClient {
	return &RankingClient{
		BaseURL: baseURL,
		Token:   token,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Recalculate asks the ranking service to rebuild standings for one
// tournament. Callers treat failure as non-fatal — the score mutation has
// already committed by the time this runs.
func (c *RankingClient) Recalculate(tournamentID string) error {
	url := fmt.Sprintf("%s/rankings/recalculate", c.BaseURL)

	reqBody := map[string]string{
		"tournament_id": tournamentID,
	}
	jsonData, _ := json.Marshal(reqBody)

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Printf("RankingService /recalculate returned %d: %s", resp.StatusCode, string(body))
		return fmt.Errorf("ranking recalculation failed: %d", resp.StatusCode)
	}

	return nil
}
