package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const expoPushURL = "https://exp.host/--/api/v2/push/send"

var pushClient = &http.Client{Timeout: 10 * time.Second}

type expoPushMessage struct {
	To    string            `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
	Sound string            `json:"sound"`
}

// SendNotification delivers one push message to an Expo push token.
func SendNotification(token, title, body string, data map[string]string) error {
	message := expoPushMessage{
		To:    token,
		Title: title,
		Body:  body,
		Data:  data,
		Sound: "default",
	}

	payload, err := json.Marshal(message)
	if err != nil {
		return err
	}

	resp, err := pushClient.Post(expoPushURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("push service returned status %d", resp.StatusCode)
	}
	return nil
}
