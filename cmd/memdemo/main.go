// Command memdemo stores a handful of facts for one user in the configured
// vector store and answers a question from the closest ones.
//
//	memdemo -config agentmem.yaml -user alice -ask "what do I drink?" \
//	    "I drink green tea every morning" "I live in Heidelberg"
//
// Without -config the defaults apply: a Chroma server on localhost:8000 and
// OpenAI embeddings with OPENAI_API_KEY.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/agentmem/v1/chroma"
	"github.com/Aleph-Alpha/agentmem/v1/chromem"
	"github.com/Aleph-Alpha/agentmem/v1/config"
	"github.com/Aleph-Alpha/agentmem/v1/embedding"
	"github.com/Aleph-Alpha/agentmem/v1/llm"
	"github.com/Aleph-Alpha/agentmem/v1/logger"
	"github.com/Aleph-Alpha/agentmem/v1/memory"
	"github.com/Aleph-Alpha/agentmem/v1/metrics"
	"github.com/Aleph-Alpha/agentmem/v1/qdrant"
	"github.com/Aleph-Alpha/agentmem/v1/tracer"
	"github.com/Aleph-Alpha/agentmem/v1/vectorstore"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML configuration file")
	userID := flag.String("user", "demo", "user id stored with every fact")
	question := flag.String("ask", "", "question answered from the stored facts")
	limit := flag.Int("limit", 3, "number of facts retrieved for the question")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	run := demo{
		userID:   *userID,
		facts:    flag.Args(),
		question: *question,
		limit:    *limit,
	}

	app := fx.New(
		config.Module(cfg),
		logger.FXModule,
		metrics.FXModule,
		tracer.FXModule,
		storeModule(cfg.VectorStore.Provider),
		embedding.FXModule,
		llm.FXModule,
		fx.Provide(
			func(l *logger.LoggerClient) tracer.Logger { return l },
			func(l *logger.LoggerClient) chroma.Logger { return l },
			func(l *logger.LoggerClient) qdrant.Logger { return l },
			func(l *logger.LoggerClient) chromem.Logger { return l },
			func(l *logger.LoggerClient) embedding.Logger { return l },
			func(l *logger.LoggerClient) llm.Logger { return l },
		),
		fx.Populate(&run.log, &run.tracer, &run.store, &run.embedder, &run.llm),
		fx.NopLogger,
	)

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		fmt.Fprintln(os.Stderr, "memdemo: start:", err)
		os.Exit(1)
	}

	runErr := run.execute(context.Background())

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelStop()
	if err := app.Stop(stopCtx); err != nil {
		fmt.Fprintln(os.Stderr, "memdemo: stop:", err)
	}
	if runErr != nil {
		fmt.Fprintln(os.Stderr, "memdemo:", runErr)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	cfg := config.Default()
	cfg.ApplyEnv()
	return cfg, cfg.Validate()
}

func storeModule(provider string) fx.Option {
	switch provider {
	case config.ProviderQdrant:
		return qdrant.FXModule
	case config.ProviderChromem:
		return chromem.FXModule
	default:
		return chroma.FXModule
	}
}

// answerPrompt frames retrieved facts for the chat model.
func answerPrompt(facts []vectorstore.SearchResult) string {
	var b strings.Builder
	b.WriteString("Answer the user's question using only these remembered facts. ")
	b.WriteString("Say so if they do not contain the answer.\n")
	for _, f := range facts {
		b.WriteString("- ")
		b.WriteString(f.Payload[memory.KeyData].String())
		b.WriteByte('\n')
	}
	return b.String()
}
