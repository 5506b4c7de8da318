package nlsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/querydeck/querydeck/internal/observability"
)

// ErrNoModel reports that no model invoker was configured at startup.
var ErrNoModel = errors.New("model invoker is not configured")

// ModelInvoker performs one blocking round trip to the hosted model.
type ModelInvoker interface {
	Invoke(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Dispatcher formats task-specific instructions, performs a single
// synchronous model call per dispatch and converts the reply into a
// structured record. No retry, no streaming: a remote failure propagates to
// the caller unchanged.
type Dispatcher struct {
	invoker ModelInvoker
	schema  string
}

func NewDispatcher(invoker ModelInvoker, schemaDescription string) *Dispatcher {
	return &Dispatcher{invoker: invoker, schema: schemaDescription}
}

func (d *Dispatcher) Dispatch(ctx context.Context, task TaskType, prompt string) (map[string]any, error) {
	if !task.Valid() {
		return nil, fmt.Errorf("unknown task type %q", task)
	}
	if d == nil || d.invoker == nil {
		return nil, ErrNoModel
	}

	start := time.Now()
	reply, err := d.invoker.Invoke(ctx, buildPrompt(task, d.schema, prompt), task.MaxTokens())
	observability.ObserveModelRequest(string(task), time.Since(start), err == nil)
	if err != nil {
		return nil, fmt.Errorf("invoke model: %w", err)
	}

	if task == TaskNLToSQL {
		return map[string]any{"sql": stripMarkdownSQL(reply)}, nil
	}

	record, tier := Extract(reply)
	observability.ObserveExtraction(string(task), string(tier))
	return record, nil
}
