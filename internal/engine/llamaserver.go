package engine

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// ClientConfig configures a llama-server backed engine.
type ClientConfig struct {
	// Endpoint is the base URL of a running llama-server, e.g.
	// "http://127.0.0.1:8080".
	Endpoint string

	// InstructionTuned marks the served model as expecting turn markers.
	InstructionTuned bool

	// BOSTokenID / EOSTokenID identify the control tokens of the served
	// model's vocabulary.
	BOSTokenID int
	EOSTokenID int

	// HTTPTimeout bounds a whole generation call. Zero means 300s.
	HTTPTimeout time.Duration
}

// Client is an Engine backed by llama-server's HTTP API: /tokenize and
// /detokenize for the text<->token mapping and the streaming /completion
// endpoint for generation. The server's internal batching and thread pool
// stay opaque to the session core, as required.
type Client struct {
	cfg  ClientConfig
	http *http.Client
}

// NewClient returns a Client for the given server. It does not probe the
// endpoint; the first call reports connectivity problems.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.HTTPTimeout
	if timeout == 0 {
		timeout = 300 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
	}
}

func (c *Client) InstructionTuned() bool { return c.cfg.InstructionTuned }
func (c *Client) BOSToken() int          { return c.cfg.BOSTokenID }
func (c *Client) EOSToken() int          { return c.cfg.EOSTokenID }

func (c *Client) Encode(text string) ([]int, error) {
	var resp struct {
		Tokens []int `json:"tokens"`
	}
	if err := c.post("/tokenize", map[string]any{"content": text}, &resp); err != nil {
		return nil, &EncodeError{Text: text, Err: err}
	}
	return resp.Tokens, nil
}

func (c *Client) Decode(tokens []int) (string, error) {
	var resp struct {
		Content string `json:"content"`
	}
	if err := c.post("/detokenize", map[string]any{"tokens": tokens}, &resp); err != nil {
		return "", &DecodeError{Tokens: tokens, Err: err}
	}
	return resp.Content, nil
}

// completionChunk is one streamed line from /completion.
type completionChunk struct {
	Content string `json:"content"`
	Tokens  []int  `json:"tokens"`
	Stop    bool   `json:"stop"`
}

// Generate streams a completion. Events for the prompt positions are
// reported first (the server does not echo them, so the client synthesizes
// them once the request is accepted), then one event per generated token.
// The EOS token is reported explicitly when the server signals a stop on
// an end-of-sequence condition.
func (c *Client) Generate(ctx context.Context, req *GenerationRequest, onToken StreamFunc) error {
	if req == nil {
		return fmt.Errorf("generation request is required")
	}

	predict := req.MaxGeneratedTokens
	if budget := req.MaxTokens - req.StartPos - len(req.PromptTokens); budget > 0 && (predict <= 0 || budget < predict) {
		predict = budget
	}
	if predict <= 0 {
		predict = -1
	}

	payload := map[string]any{
		"prompt":        req.PromptTokens,
		"n_predict":     predict,
		"stream":        true,
		"return_tokens": true,
		"cache_prompt":  req.StartPos > 0,
	}
	if req.RNG != nil {
		payload["seed"] = req.RNG.Int63()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint+"/completion", bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(httpResp.Body, 2048))
		if len(msg) > 0 {
			return errors.New(httpResp.Status + ": " + strings.TrimSpace(string(msg)))
		}
		return errors.New(httpResp.Status)
	}

	// The server has the prompt; report its positions before the first
	// generated token so the stream contract holds.
	for _, id := range req.PromptTokens {
		if !onToken(id, 0) {
			return nil
		}
	}

	sawStop := false
	scanner := bufio.NewScanner(httpResp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		line = strings.TrimPrefix(line, "data: ")

		var chunk completionChunk
		if err := json.Unmarshal([]byte(line), &chunk); err != nil {
			return fmt.Errorf("parse completion chunk: %w", err)
		}

		for _, id := range chunk.Tokens {
			if req.Accept != nil && !req.Accept(id) {
				return nil
			}
			if !onToken(id, 0) {
				return nil
			}
		}
		if chunk.Stop {
			sawStop = true
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	// A server-side stop means the model emitted (and the server swallowed)
	// its end-of-sequence token.
	if sawStop {
		onToken(c.cfg.EOSTokenID, 0)
	}
	return nil
}

func (c *Client) post(path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	resp, err := c.http.Post(c.cfg.Endpoint+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if len(msg) > 0 {
			return errors.New(resp.Status + ": " + strings.TrimSpace(string(msg)))
		}
		return errors.New(resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
