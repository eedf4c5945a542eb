package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/moodwall/internal/board"
	httpapi "github.com/fyrsmithlabs/moodwall/internal/http"
	"github.com/fyrsmithlabs/moodwall/internal/intent"
	"github.com/fyrsmithlabs/moodwall/internal/toxicity"
)

// fakeWall answers the moodwall routes with canned bodies and records the
// last request.
type fakeWall struct {
	lastMethod string
	lastPath   string
	lastQuery  string
	lastBody   []byte
}

func (f *fakeWall) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	record := func(r *http.Request) {
		f.lastMethod = r.Method
		f.lastPath = r.URL.Path
		f.lastQuery = r.URL.RawQuery
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r.Body)
		f.lastBody = buf.Bytes()
	}
	reply := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		require.NoError(t, json.NewEncoder(w).Encode(v))
	}
	msg := board.Message{
		ID:        "0b4c2a8e-1111-2222-3333-444455556666",
		Content:   "congrats 🎉",
		Text:      "congrats",
		Intention: intent.Celebration,
		CreatedAt: time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC),
	}

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		reply(w, http.StatusOK, httpapi.HealthResponse{Status: "ok"})
	})
	mux.HandleFunc("/api/v1/messages", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		switch r.Method {
		case http.MethodPost:
			var req httpapi.PostMessageRequest
			_ = json.Unmarshal(f.lastBody, &req)
			if req.Content == "" {
				reply(w, http.StatusBadRequest, httpapi.ErrorResponse{Error: "Content is required"})
				return
			}
			reply(w, http.StatusCreated, httpapi.PostMessageResponse{Message: "Message added successfully", Data: msg})
		case http.MethodGet:
			reply(w, http.StatusOK, httpapi.MessagesResponse{Messages: []board.Message{
				msg,
				{ID: "short", Content: "*****", Toxic: true, Category: toxicity.Insult, CreatedAt: msg.CreatedAt},
			}})
		case http.MethodDelete:
			reply(w, http.StatusOK, httpapi.StatusMessage{Message: "All messages cleared", Cleared: 2})
		}
	})
	mux.HandleFunc("/api/v1/messages/similar", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		reply(w, http.StatusOK, httpapi.SimilarResponse{
			Query:   r.URL.Query().Get("q"),
			Matches: []board.Match{{Message: msg, Similarity: 0.875}},
		})
	})
	mux.HandleFunc("/api/v1/classify", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		var req httpapi.ClassifyRequest
		_ = json.Unmarshal(f.lastBody, &req)
		if req.Text == "idiot" {
			reply(w, http.StatusOK, httpapi.ClassifyResponse{
				Text:     req.Text,
				Content:  "*****",
				Toxic:    true,
				Toxicity: &toxicity.Verdict{Toxic: true, Category: toxicity.Insult},
			})
			return
		}
		reply(w, http.StatusOK, httpapi.ClassifyResponse{
			Text:    req.Text,
			Content: req.Text + " 😊",
			Emoji:   "😊",
			Intention: &intent.Result{
				Text:  req.Text,
				Label: intent.Happiness,
				Score: 0.91,
				Scores: []intent.Score{
					{Label: intent.Happiness, Score: 0.91},
					{Label: intent.Sadness, Score: -0.12},
				},
			},
		})
	})
	return mux
}

func execute(t *testing.T, f *fakeWall, args ...string) (string, error) {
	t.Helper()
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--server", srv.URL}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestPost(t *testing.T) {
	f := &fakeWall{}
	out, err := execute(t, f, "post", "congrats", "everyone")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, f.lastMethod)
	assert.JSONEq(t, `{"content":"congrats everyone"}`, string(f.lastBody))
	assert.Contains(t, out, "congrats 🎉")
	assert.Contains(t, out, "id: 0b4c2a8e-1111-2222-3333-444455556666")
}

func TestPost_JSON(t *testing.T) {
	out, err := execute(t, &fakeWall{}, "--json", "post", "congrats")
	require.NoError(t, err)

	var resp httpapi.PostMessageResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "Message added successfully", resp.Message)
	assert.Equal(t, intent.Celebration, resp.Data.Intention)
}

func TestPost_ServerError(t *testing.T) {
	_, err := execute(t, &fakeWall{}, "post", "")
	require.Error(t, err)

	var apiErr *apiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Content is required", apiErr.Message)
}

func TestPost_RequiresArgs(t *testing.T) {
	_, err := execute(t, &fakeWall{}, "post")
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	f := &fakeWall{}
	out, err := execute(t, f, "list")
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, f.lastMethod)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "0b4c2a8e ")
	assert.Contains(t, out, "celebration")
	assert.Contains(t, out, "toxic:insult")
	assert.Contains(t, out, "15:04:05")
}

func TestClear(t *testing.T) {
	f := &fakeWall{}
	out, err := execute(t, f, "clear")
	require.NoError(t, err)

	assert.Equal(t, http.MethodDelete, f.lastMethod)
	assert.Equal(t, "All messages cleared (2 removed)\n", out)
}

func TestSimilar(t *testing.T) {
	f := &fakeWall{}
	out, err := execute(t, f, "similar", "-k", "3", "great", "job")
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/messages/similar", f.lastPath)
	assert.Equal(t, "k=3&q=great+job", f.lastQuery)
	assert.Contains(t, out, "0.875")
	assert.Contains(t, out, "congrats 🎉")
}

func TestHealth(t *testing.T) {
	out, err := execute(t, &fakeWall{}, "health")
	require.NoError(t, err)
	assert.Contains(t, out, "Server Status: ok")
}

func TestHealth_Unreachable(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--server", "http://127.0.0.1:1", "--timeout", "1s", "health"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send request")
}

func TestClassify(t *testing.T) {
	f := &fakeWall{}
	out, err := execute(t, f, "classify", "what", "a", "day")
	require.NoError(t, err)

	assert.JSONEq(t, `{"text":"what a day"}`, string(f.lastBody))
	assert.Contains(t, out, "what a day 😊")
	assert.Contains(t, out, "happiness")
	assert.Contains(t, out, "+0.9100")
	assert.Contains(t, out, "-0.1200")
}

func TestClassify_Toxic(t *testing.T) {
	out, err := execute(t, &fakeWall{}, "classify", "idiot")
	require.NoError(t, err)
	assert.Contains(t, out, "toxic: insult")
	assert.NotContains(t, out, "happiness")
}

func TestRenderClassification_NoScores(t *testing.T) {
	out := renderClassification(httpapi.ClassifyResponse{Content: "hm"}, 10)
	assert.Contains(t, out, "no intention scores")
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "abc", shortID("abc"))
	assert.Equal(t, "01234567", shortID("0123456789"))
}
