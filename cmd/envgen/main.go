// Command envgen pushes synthetic readings at a running env-server. It is a
// local-testing tool: one worker per (location, sensor) pair, each with its
// own random-walk state, posting at a fixed interval.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

var locations = []string{"living-room", "bedroom", "office", "outside"}

type sensorSpec struct {
	name  string
	start float64
	min   float64
	max   float64
	step  float64
}

var sensors = []sensorSpec{
	{name: "temperature", start: 21.0, min: 15.0, max: 30.0, step: 0.4},
	{name: "humidity", start: 50.0, min: 20.0, max: 80.0, step: 1.5},
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the env-server")
	interval := flag.Duration("interval", 5*time.Minute, "Delay between readings per series")
	count := flag.Int("count", 0, "Readings per series before exiting (0 = run until interrupted)")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Base RNG seed")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, stopping generators...")
		cancel()
	}()

	client := &http.Client{Timeout: 10 * time.Second}

	if err := registerVocabulary(ctx, client, *baseURL); err != nil {
		slog.Error("Failed to register vocabulary", "error", err)
		os.Exit(1)
	}

	g, ctx := errgroup.WithContext(ctx)
	series := 0
	for _, location := range locations {
		for _, spec := range sensors {
			w := newWalk(*seed+int64(series), spec.start, spec.min, spec.max, spec.step)
			series++

			g.Go(func() error {
				return generate(ctx, client, *baseURL, location, spec.name, w, *interval, *count)
			})
		}
	}

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		slog.Error("Generator stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("All generators finished")
}

// registerVocabulary makes sure every generated name resolves before any
// data is written; registration is idempotent on the server side.
func registerVocabulary(ctx context.Context, client *http.Client, baseURL string) error {
	for _, location := range locations {
		if err := putJSON(ctx, client, baseURL+"/api/v0/location", map[string]string{"location": location}); err != nil {
			return fmt.Errorf("register location %q: %w", location, err)
		}
	}
	for _, spec := range sensors {
		if err := putJSON(ctx, client, baseURL+"/api/v0/sensor", map[string]string{"sensor": spec.name}); err != nil {
			return fmt.Errorf("register sensor %q: %w", spec.name, err)
		}
	}
	return nil
}

func generate(ctx context.Context, client *http.Client, baseURL, location, sensor string, w *walk, interval time.Duration, count int) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sent := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		reading := map[string]interface{}{
			"unix_timestamp": time.Now().Unix(),
			"location":       location,
			"sensor":         sensor,
			"value":          w.next(),
		}
		if err := putJSON(ctx, client, baseURL+"/api/v0/data", reading); err != nil {
			// Duplicates and transient failures shouldn't kill the worker.
			slog.Warn("Failed to push reading",
				"location", location,
				"sensor", sensor,
				"error", err)
		}

		sent++
		if count > 0 && sent >= count {
			slog.Info("Series complete", "location", location, "sensor", sensor, "sent", sent)
			return nil
		}
	}
}

func putJSON(ctx context.Context, client *http.Client, url string, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return nil
}
