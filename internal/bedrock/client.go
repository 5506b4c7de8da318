// Package bedrock holds the hosted-model client. The client is constructed
// once at startup; a missing or unconfigured client surfaces as a typed
// ErrUnavailable instead of a lazy reconnect inside the request path.
package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// ErrUnavailable reports that the model client was never initialized.
var ErrUnavailable = errors.New("bedrock model client is unavailable")

const anthropicVersion = "bedrock-2023-05-31"

type Config struct {
	Region     string
	AWSProfile string
	ModelID    string
}

type invokeAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

type Client struct {
	api     invokeAPI
	modelID string
}

// New resolves AWS credentials and builds the runtime client. Callers keep
// the returned client for the process lifetime.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.ModelID) == "" {
		return nil, fmt.Errorf("model id is required")
	}
	var opts []func(*awsconfig.LoadOptions) error
	if strings.TrimSpace(cfg.Region) != "" {
		opts = append(opts, awsconfig.WithRegion(strings.TrimSpace(cfg.Region)))
	}
	if strings.TrimSpace(cfg.AWSProfile) != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(strings.TrimSpace(cfg.AWSProfile)))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Client{
		api:     bedrockruntime.NewFromConfig(awsCfg),
		modelID: strings.TrimSpace(cfg.ModelID),
	}, nil
}

// NewWithAPI builds a client around an existing runtime API.
func NewWithAPI(api invokeAPI, modelID string) (*Client, error) {
	if api == nil {
		return nil, fmt.Errorf("runtime api is required")
	}
	if strings.TrimSpace(modelID) == "" {
		return nil, fmt.Errorf("model id is required")
	}
	return &Client{api: api, modelID: strings.TrimSpace(modelID)}, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type invokeBody struct {
	AnthropicVersion string    `json:"anthropic_version"`
	MaxTokens        int       `json:"max_tokens"`
	Messages         []message `json:"messages"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type invokeReply struct {
	Content []contentBlock `json:"content"`
}

// Invoke performs one blocking round trip to the hosted model and returns
// the text of the first content block. There is no retry or streaming; any
// transport or service failure propagates to the caller.
func (c *Client) Invoke(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if c == nil || c.api == nil {
		return "", ErrUnavailable
	}

	body, err := json.Marshal(invokeBody{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        maxTokens,
		Messages:         []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal invoke body: %w", err)
	}

	out, err := c.api.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("invoke model %q: %w", c.modelID, err)
	}

	var reply invokeReply
	if err := json.Unmarshal(out.Body, &reply); err != nil {
		return "", fmt.Errorf("decode invoke reply: %w", err)
	}
	if len(reply.Content) == 0 {
		return "", fmt.Errorf("invoke reply contains no content blocks")
	}
	return reply.Content[0].Text, nil
}
