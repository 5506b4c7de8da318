package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

type fakeAPI struct {
	lastInput *bedrockruntime.InvokeModelInput
	reply     string
	err       error
}

func (f *fakeAPI) InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.lastInput = params
	if f.err != nil {
		return nil, f.err
	}
	return &bedrockruntime.InvokeModelOutput{Body: []byte(f.reply)}, nil
}

func TestInvokeBuildsAnthropicBody(t *testing.T) {
	api := &fakeAPI{reply: `{"content":[{"type":"text","text":"SELECT 1"}]}`}
	client, err := NewWithAPI(api, "model-x")
	if err != nil {
		t.Fatalf("NewWithAPI: %v", err)
	}

	text, err := client.Invoke(context.Background(), "show me customers", 500)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if text != "SELECT 1" {
		t.Fatalf("unexpected reply text %q", text)
	}

	if api.lastInput == nil {
		t.Fatal("expected InvokeModel to be called")
	}
	if got := *api.lastInput.ModelId; got != "model-x" {
		t.Fatalf("unexpected model id %q", got)
	}
	if got := *api.lastInput.ContentType; got != "application/json" {
		t.Fatalf("unexpected content type %q", got)
	}

	var body invokeBody
	if err := json.Unmarshal(api.lastInput.Body, &body); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
	if body.AnthropicVersion != "bedrock-2023-05-31" {
		t.Fatalf("unexpected anthropic version %q", body.AnthropicVersion)
	}
	if body.MaxTokens != 500 {
		t.Fatalf("unexpected max tokens %d", body.MaxTokens)
	}
	if len(body.Messages) != 1 || body.Messages[0].Role != "user" || body.Messages[0].Content != "show me customers" {
		t.Fatalf("unexpected messages %+v", body.Messages)
	}
}

func TestInvokeReturnsFirstContentBlock(t *testing.T) {
	api := &fakeAPI{reply: `{"content":[{"type":"text","text":"first"},{"type":"text","text":"second"}]}`}
	client, err := NewWithAPI(api, "model-x")
	if err != nil {
		t.Fatalf("NewWithAPI: %v", err)
	}
	text, err := client.Invoke(context.Background(), "p", 100)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if text != "first" {
		t.Fatalf("expected first block, got %q", text)
	}
}

func TestInvokeEmptyContent(t *testing.T) {
	api := &fakeAPI{reply: `{"content":[]}`}
	client, err := NewWithAPI(api, "model-x")
	if err != nil {
		t.Fatalf("NewWithAPI: %v", err)
	}
	if _, err := client.Invoke(context.Background(), "p", 100); err == nil {
		t.Fatal("expected error for empty content")
	}
}

func TestInvokePropagatesServiceError(t *testing.T) {
	boom := fmt.Errorf("throttled")
	api := &fakeAPI{err: boom}
	client, err := NewWithAPI(api, "model-x")
	if err != nil {
		t.Fatalf("NewWithAPI: %v", err)
	}
	if _, err := client.Invoke(context.Background(), "p", 100); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped service error, got %v", err)
	}
}

func TestInvokeNilClient(t *testing.T) {
	var client *Client
	if _, err := client.Invoke(context.Background(), "p", 100); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestNewWithAPIValidation(t *testing.T) {
	if _, err := NewWithAPI(nil, "model-x"); err == nil {
		t.Fatal("expected error for nil api")
	}
	if _, err := NewWithAPI(&fakeAPI{}, "  "); err == nil {
		t.Fatal("expected error for blank model id")
	}
}
