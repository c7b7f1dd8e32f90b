package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

// Config
const (
	defaultAPIURL = "http://localhost:8080/api/v1/update"
)

// Summary matches models.UpdateSummary
type Summary struct {
	RunID    string `json:"run_id"`
	Date     string `json:"date"`
	Results  int    `json:"results"`
	Matched  int    `json:"matched"`
	Users    int    `json:"users"`
	Archived int    `json:"archived"`
}

// seeder asks a running server to pull the feed and store today's snapshot,
// so a fresh deployment has standings to serve before the first scheduled
// refresh.
func main() {
	apiURL := os.Getenv("API_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	token := os.Getenv("ADMIN_TOKEN")
	if token == "" {
		log.Fatal("ADMIN_TOKEN is required")
	}

	req, err := http.NewRequest(http.MethodPost, apiURL, nil)
	if err != nil {
		log.Fatalf("Failed to create request: %v", err)
	}
	req.Header.Set("X-Admin-Token", token)

	// A full feed pull can take a while.
	client := &http.Client{Timeout: 2 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("Failed to send request: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("Status: %s\n", resp.Status)

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Response: %s\n", string(body))
		os.Exit(1)
	}

	var s Summary
	if err := json.Unmarshal(body, &s); err != nil {
		log.Fatalf("Failed to decode summary: %v", err)
	}
	fmt.Printf("Snapshot %s stored: %d users from %d results (%d ranked, %d archived), run %s\n",
		s.Date, s.Users, s.Results, s.Matched, s.Archived, s.RunID)
}
