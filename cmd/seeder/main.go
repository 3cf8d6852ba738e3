// Seeder drives a full analysis through the running API for one player and
// prints the NDJSON progress stream. Useful for warming the match cache and
// eyeballing the pipeline during local development.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"
)

func main() {
	apiURL := flag.String("url", "http://localhost:8080/api/v1/analyze", "analyze endpoint")
	riotID := flag.String("riot-id", "", "player to analyze, in gameName#tagLine form")
	region := flag.String("region", "", "platform region (server default when empty)")
	flag.Parse()

	if *riotID == "" {
		fmt.Fprintln(os.Stderr, "usage: seeder -riot-id 'Name#TAG' [-region euw1] [-url ...]")
		os.Exit(2)
	}

	payload, err := json.Marshal(map[string]string{
		"riot_id": *riotID,
		"region":  *region,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal request: %v\n", err)
		os.Exit(1)
	}

	req, err := http.NewRequest(http.MethodPost, *apiURL, bytes.NewReader(payload))
	if err != nil {
		fmt.Fprintf(os.Stderr, "build request: %v\n", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")

	// No overall timeout: a cold analysis streams for as long as ingestion
	// takes, and the server closes the stream when it finishes.
	client := &http.Client{}
	start := time.Now()

	resp, err := client.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "request failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "status %s\n", resp.Status)
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			fmt.Fprintln(os.Stderr, scanner.Text())
		}
		os.Exit(1)
	}

	type event struct {
		Type    string          `json:"type"`
		Message string          `json:"message"`
		Percent int             `json:"percent"`
		Data    json.RawMessage `json:"data"`
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var ev event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			fmt.Fprintf(os.Stderr, "bad stream line: %v\n", err)
			continue
		}
		switch ev.Type {
		case "progress":
			fmt.Printf("[%3d%%] %s\n", ev.Percent, ev.Message)
		case "error":
			fmt.Fprintf(os.Stderr, "error: %s\n", ev.Message)
			os.Exit(1)
		case "result":
			fmt.Printf("result after %s:\n", time.Since(start).Round(time.Millisecond))
			var pretty bytes.Buffer
			if err := json.Indent(&pretty, ev.Data, "", "  "); err != nil {
				fmt.Println(string(ev.Data))
			} else {
				fmt.Println(pretty.String())
			}
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "reading stream: %v\n", err)
		os.Exit(1)
	}
}
