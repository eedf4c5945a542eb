// Package main implements mwctl, a command-line client for the moodwall
// HTTP API.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	httpapi "github.com/fyrsmithlabs/moodwall/internal/http"
)

// version information
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// options are the persistent flags shared by every command.
type options struct {
	serverURL string
	timeout   time.Duration
	json      bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "mwctl",
		Short: "CLI for the moodwall message board",
		Long: `mwctl is a command-line interface for the moodwall HTTP server.
It posts, lists and clears board messages, searches for similar messages
and shows how the intention classifier scores a piece of text.`,
		Version:       version,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&opts.serverURL, "server", envOr("MOODWALL_SERVER", "http://localhost:8080"), "moodwall server URL")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "request timeout")
	root.PersistentFlags().BoolVar(&opts.json, "json", false, "print raw JSON responses")

	root.AddCommand(
		newPostCmd(opts),
		newListCmd(opts),
		newClearCmd(opts),
		newSimilarCmd(opts),
		newHealthCmd(opts),
		newClassifyCmd(opts),
	)
	return root
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// apiError is a non-2xx reply.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("server returned status %d: %s", e.Status, e.Message)
}

// do sends a JSON request and decodes the JSON reply into out. raw, when
// non-nil, receives the undecoded body.
func (o *options) do(ctx context.Context, method, path string, in, out any, raw *[]byte) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	url := strings.TrimRight(o.serverURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: o.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to %s: %w", url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e httpapi.ErrorResponse
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			return &apiError{Status: resp.StatusCode, Message: e.Error}
		}
		return &apiError{Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}

	if raw != nil {
		*raw = data
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// printJSON writes raw indented.
func printJSON(w io.Writer, raw []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(w)
	return err
}
