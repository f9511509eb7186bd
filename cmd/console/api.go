package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/htnguyen/novel-engine/internal/handlers"
)

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

func decodeGameView(resp *http.Response, wantStatus int) (*handlers.GameView, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != wantStatus {
		var errorResp handlers.ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("request failed: %s", errorResp.Error)
	}

	var view handlers.GameView
	if err := json.Unmarshal(body, &view); err != nil {
		return nil, fmt.Errorf("failed to parse game view: %w", err)
	}
	return &view, nil
}

func createGame(client *http.Client, baseURL string) (*handlers.GameView, error) {
	resp, err := client.Post(baseURL+"/v1/games", "application/json", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	return decodeGameView(resp, http.StatusCreated)
}

func getGame(client *http.Client, baseURL string, id uuid.UUID) (*handlers.GameView, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/games/%s", baseURL, id))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	return decodeGameView(resp, http.StatusOK)
}

func selectChoice(client *http.Client, baseURL string, id uuid.UUID, choiceID string) (*handlers.GameView, error) {
	jsonData, err := json.Marshal(handlers.SelectChoiceRequest{ChoiceID: choiceID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(
		fmt.Sprintf("%s/v1/games/%s/choice", baseURL, id),
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	return decodeGameView(resp, http.StatusOK)
}

func continueGame(client *http.Client, baseURL string, id uuid.UUID) (*handlers.GameView, error) {
	resp, err := client.Post(
		fmt.Sprintf("%s/v1/games/%s/continue", baseURL, id),
		"application/json",
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	return decodeGameView(resp, http.StatusOK)
}
