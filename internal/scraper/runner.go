// Package scraper invokes the executable scraper shipped inside a recipe
// bundle. The script is a black box to the catalog: it receives the
// endpoint name as its single argument, request parameters as
// WEB2API_PARAM_* environment variables, and writes one JSON result
// document to stdout.
package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Result is the JSON document a scraper writes to stdout
type Result struct {
	Items       []map[string]any `json:"items"`
	CurrentPage int              `json:"current_page,omitempty"`
	HasNext     bool             `json:"has_next,omitempty"`
}

// Runner executes recipe scraper scripts
type Runner struct {
	timeout time.Duration
	logger  *slog.Logger
}

// NewRunner creates a scraper runner. A zero timeout defaults to 60s.
func NewRunner(timeout time.Duration, logger *slog.Logger) *Runner {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		timeout: timeout,
		logger:  logger,
	}
}

// Run executes the scraper at scriptPath for one endpoint. Params are
// exported as WEB2API_PARAM_<NAME> on top of the parent environment, so
// required credentials stay visible to the script.
func (r *Runner) Run(ctx context.Context, scriptPath, endpoint string, params map[string]string) (*Result, error) {
	if _, err := os.Stat(scriptPath); err != nil {
		return nil, fmt.Errorf("scraper not found: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, scriptPath, endpoint)
	cmd.Env = append(os.Environ(), paramEnv(params)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()

	r.logger.Debug("scraper finished",
		"script", scriptPath,
		"endpoint", endpoint,
		"duration", time.Since(start),
		"error", err,
	)

	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("scraper timed out after %s", r.timeout)
	}
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("scraper failed: %s", msg)
	}

	var result Result
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		return nil, fmt.Errorf("scraper produced invalid JSON: %w", err)
	}

	return &result, nil
}

// paramEnv converts request parameters to WEB2API_PARAM_* variables.
// Parameter names are upper-cased with dashes mapped to underscores.
func paramEnv(params map[string]string) []string {
	env := make([]string, 0, len(params))
	for name, value := range params {
		key := strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
		env = append(env, "WEB2API_PARAM_"+key+"="+value)
	}
	return env
}
