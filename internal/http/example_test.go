package http_test

import (
	"context"
	"fmt"
	"time"

	"github.com/fyrsmithlabs/moodwall/internal/analyzer"
	"github.com/fyrsmithlabs/moodwall/internal/board"
	httpserver "github.com/fyrsmithlabs/moodwall/internal/http"
	"github.com/fyrsmithlabs/moodwall/internal/intent"
	"github.com/fyrsmithlabs/moodwall/internal/logging"
)

type constEmbedder struct{}

func (constEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

// ExampleServer demonstrates how to create and start the HTTP server.
func ExampleServer() {
	table, err := intent.NewTable(intent.Reference{Label: intent.Happiness, Embedding: intent.Embedding{1, 0}})
	if err != nil {
		panic(err)
	}
	classifier, err := intent.NewClassifier(constEmbedder{}, table)
	if err != nil {
		panic(err)
	}
	a, err := analyzer.New(analyzer.Options{Classifier: classifier})
	if err != nil {
		panic(err)
	}

	server, err := httpserver.NewServer(httpserver.Deps{
		Analyzer: a,
		Board:    board.NewStore(board.Options{}),
		Embedder: classifier,
		Logger:   logging.NewNop(),
	}, &httpserver.Config{Host: "localhost", Port: 18080})
	if err != nil {
		panic(err)
	}

	go func() {
		if err := server.Start(); err != nil {
			fmt.Println("server error:", err)
		}
	}()

	time.Sleep(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		fmt.Println("shutdown error:", err)
	}

	fmt.Println("Server started and stopped successfully")
	// Output: Server started and stopped successfully
}
