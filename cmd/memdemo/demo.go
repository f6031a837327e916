package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Aleph-Alpha/agentmem/v1/embedding"
	"github.com/Aleph-Alpha/agentmem/v1/llm"
	"github.com/Aleph-Alpha/agentmem/v1/logger"
	"github.com/Aleph-Alpha/agentmem/v1/memory"
	"github.com/Aleph-Alpha/agentmem/v1/payload"
	"github.com/Aleph-Alpha/agentmem/v1/tracer"
	"github.com/Aleph-Alpha/agentmem/v1/vectorstore"
)

type demo struct {
	userID   string
	facts    []string
	question string
	limit    int

	log      logger.Logger
	tracer   *tracer.Tracer
	store    vectorstore.Store
	embedder embedding.Embedder
	llm      llm.LLM
}

func (d *demo) execute(ctx context.Context) error {
	if len(d.facts) == 0 && d.question == "" {
		return errors.New("nothing to do: pass facts as arguments and/or -ask")
	}
	scope := memory.Scope{UserID: d.userID}

	if len(d.facts) > 0 {
		ids, err := d.remember(ctx, scope)
		if err != nil {
			return err
		}
		d.log.Info("stored facts", nil, map[string]interface{}{
			"user_id": d.userID,
			"count":   len(ids),
		})
	}
	if d.question == "" {
		return nil
	}

	found, err := d.recall(ctx, scope)
	if err != nil {
		return err
	}
	for _, r := range found {
		fmt.Printf("%.3f  %s\n", r.Score, r.Payload[memory.KeyData].String())
	}
	if len(found) == 0 {
		fmt.Println("no facts stored for", d.userID)
		return nil
	}

	resp, err := d.llm.GenerateResponse(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: answerPrompt(found)},
			{Role: llm.RoleUser, Content: d.question},
		},
	})
	if err != nil {
		return fmt.Errorf("answer: %w", err)
	}
	fmt.Println(resp.Content)
	return nil
}

func (d *demo) remember(ctx context.Context, scope memory.Scope) (ids []string, err error) {
	ctx, span := d.tracer.StartSpan(ctx, "memdemo.remember", map[string]interface{}{
		"user_id": scope.UserID,
		"facts":   len(d.facts),
	})
	defer func() { tracer.EndSpan(span, err) }()

	vectors, err := d.embedder.EmbedBatch(ctx, d.facts)
	if err != nil {
		return nil, fmt.Errorf("embed facts: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	ids = make([]string, len(d.facts))
	payloads := make([]payload.Payload, len(d.facts))
	for i, fact := range d.facts {
		ids[i] = uuid.NewString()
		payloads[i] = payload.Payload{
			memory.KeyData:      payload.String(fact),
			memory.KeyUserID:    payload.String(scope.UserID),
			memory.KeyCreatedAt: payload.String(now),
		}
	}
	if err := d.store.Insert(ctx, vectors, payloads, ids); err != nil {
		return nil, fmt.Errorf("insert facts: %w", err)
	}
	return ids, nil
}

func (d *demo) recall(ctx context.Context, scope memory.Scope) (results []vectorstore.SearchResult, err error) {
	ctx, span := d.tracer.StartSpan(ctx, "memdemo.recall", map[string]interface{}{
		"user_id": scope.UserID,
		"limit":   d.limit,
	})
	defer func() { tracer.EndSpan(span, err) }()

	vector, err := d.embedder.Embed(ctx, d.question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	results, err = d.store.Search(ctx, d.question, vector, d.limit, scope.Filters())
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return results, nil
}
