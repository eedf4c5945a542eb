package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	httpapi "github.com/fyrsmithlabs/moodwall/internal/http"
)

func newPostCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "post <text>...",
		Short: "Post a message to the board",
		Long: `Post a message. The server tags it with an intention emoji, or masks it
when it is toxic.

Examples:
  mwctl post "congrats on the launch"
  mwctl post --server http://wall:8080 thanks everyone`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				resp httpapi.PostMessageResponse
				raw  []byte
			)
			req := httpapi.PostMessageRequest{Content: strings.Join(args, " ")}
			if err := opts.do(cmd.Context(), http.MethodPost, "/api/v1/messages", req, &resp, &raw); err != nil {
				return err
			}
			if opts.json {
				return printJSON(cmd.OutOrStdout(), raw)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", resp.Data.Content)
			fmt.Fprintf(cmd.OutOrStdout(), "id: %s\n", resp.Data.ID)
			return nil
		},
	}
}

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List board messages, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				resp httpapi.MessagesResponse
				raw  []byte
			)
			if err := opts.do(cmd.Context(), http.MethodGet, "/api/v1/messages", nil, &resp, &raw); err != nil {
				return err
			}
			if opts.json {
				return printJSON(cmd.OutOrStdout(), raw)
			}
			if len(resp.Messages) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No messages.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTAG\tCREATED\tCONTENT")
			for _, m := range resp.Messages {
				tag := string(m.Intention)
				if m.Toxic {
					tag = "toxic:" + string(m.Category)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", shortID(m.ID), tag, m.CreatedAt.Format("15:04:05"), m.Content)
			}
			return w.Flush()
		},
	}
}

func newClearCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every message from the board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp httpapi.StatusMessage
			if err := opts.do(cmd.Context(), http.MethodDelete, "/api/v1/messages", nil, &resp, nil); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d removed)\n", resp.Message, resp.Cleared)
			return nil
		},
	}
}

func newSimilarCmd(opts *options) *cobra.Command {
	var k int
	cmd := &cobra.Command{
		Use:   "similar <query>...",
		Short: "Find board messages similar to a query",
		Long: `Find the stored messages whose embeddings are nearest to the query.

Examples:
  mwctl similar "great job"
  mwctl similar -k 3 feeling down`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			q.Set("q", strings.Join(args, " "))
			q.Set("k", strconv.Itoa(k))

			var (
				resp httpapi.SimilarResponse
				raw  []byte
			)
			if err := opts.do(cmd.Context(), http.MethodGet, "/api/v1/messages/similar?"+q.Encode(), nil, &resp, &raw); err != nil {
				return err
			}
			if opts.json {
				return printJSON(cmd.OutOrStdout(), raw)
			}
			if len(resp.Matches) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No similar messages.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SIMILARITY\tID\tCONTENT")
			for _, m := range resp.Matches {
				fmt.Fprintf(w, "%.3f\t%s\t%s\n", m.Similarity, shortID(m.Message.ID), m.Message.Content)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&k, "k", "k", 5, "number of matches")
	return cmd
}

func newHealthCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check moodwall server health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp httpapi.HealthResponse
			if err := opts.do(cmd.Context(), http.MethodGet, "/health", nil, &resp, nil); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Server Status: %s\n", resp.Status)
			fmt.Fprintf(cmd.OutOrStdout(), "Server URL: %s\n", opts.serverURL)
			return nil
		},
	}
}

func newClassifyCmd(opts *options) *cobra.Command {
	var width int
	cmd := &cobra.Command{
		Use:   "classify <text>...",
		Short: "Show how a text would be tagged, without posting it",
		Long: `Classify text and chart the similarity to every intention.

Examples:
  mwctl classify "you did it, congratulations"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				resp httpapi.ClassifyResponse
				raw  []byte
			)
			req := httpapi.ClassifyRequest{Text: strings.Join(args, " ")}
			if err := opts.do(cmd.Context(), http.MethodPost, "/api/v1/classify", req, &resp, &raw); err != nil {
				return err
			}
			if opts.json {
				return printJSON(cmd.OutOrStdout(), raw)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderClassification(resp, width))
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 60, "chart width in columns")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
