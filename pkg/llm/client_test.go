package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"qa-board-go/internal/config"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// newSSEServer 返回一个模拟 OpenAI 兼容接口的测试服务器，按顺序下发 chunks。
func newSSEServer(t *testing.T, chunks []string, captured *chatRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if captured != nil {
			_ = json.NewDecoder(r.Body).Decode(captured)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, c := range chunks {
			b, _ := json.Marshal(map[string]interface{}{
				"choices": []map[string]interface{}{{"delta": map[string]string{"content": c}}},
			})
			fmt.Fprintf(w, "data: %s\n\n", b)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIClient_Generate(t *testing.T) {
	var req chatRequest
	srv := newSSEServer(t, []string{"再帰とは", "自分自身を", "呼ぶことです"}, &req)

	c, err := NewClient(config.LLMConfig{
		Provider:   "openai",
		APIKey:     "test-key",
		BaseURL:    srv.URL + "/",
		Model:      "deepseek-chat",
		Generation: config.LLMGenerationConfig{Temperature: 0.5},
	})
	require.NoError(t, err)

	text, err := c.Generate(context.Background(), []Message{
		{Role: "system", Content: "persona"},
		{Role: "user", Content: "What is recursion?"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "再帰とは自分自身を呼ぶことです", text)

	assert.Equal(t, "deepseek-chat", req.Model)
	assert.True(t, req.Stream)
	require.NotNil(t, req.Temperature)
	assert.Equal(t, 0.5, *req.Temperature)
	assert.Nil(t, req.MaxTokens)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
}

func TestOpenAIClient_EmptyResponse(t *testing.T) {
	srv := newSSEServer(t, nil, nil)
	c, err := NewClient(config.LLMConfig{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), []Message{{Role: "user", Content: "q"}}, nil)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestOpenAIClient_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":"quota exceeded"}`)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(config.LLMConfig{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), []Message{{Role: "user", Content: "q"}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestOpenAIClient_StreamWritesChunks(t *testing.T) {
	srv := newSSEServer(t, []string{"a", "b"}, nil)
	c, err := NewClient(config.LLMConfig{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	w := &recordingWriter{}
	require.NoError(t, c.StreamChatMessages(context.Background(), []Message{{Role: "user", Content: "q"}}, nil, w))
	assert.Equal(t, []string{"a", "b"}, w.chunks)
}

func TestNewClient_UnknownProvider(t *testing.T) {
	_, err := NewClient(config.LLMConfig{Provider: "unknown"})
	assert.Error(t, err)
}

func TestNewClient_GeminiRequiresKey(t *testing.T) {
	_, err := NewClient(config.LLMConfig{Provider: "gemini"})
	assert.Error(t, err)
}

func TestGenerationFromConfig(t *testing.T) {
	assert.Nil(t, GenerationFromConfig(config.LLMGenerationConfig{}))

	gp := GenerationFromConfig(config.LLMGenerationConfig{MaxTokens: 100, TopP: 0.9})
	require.NotNil(t, gp)
	assert.Nil(t, gp.Temperature)
	assert.Equal(t, 0.9, *gp.TopP)
	assert.Equal(t, 100, *gp.MaxTokens)
}

func TestToGeminiContents(t *testing.T) {
	system, contents := toGeminiContents([]Message{
		{Role: "system", Content: "persona"},
		{Role: "user", Content: "question"},
		{Role: "assistant", Content: "earlier ai answer"},
		{Role: "user", Content: "new answer"},
	})
	assert.Equal(t, "persona", system)
	require.Len(t, contents, 3)
	assert.Equal(t, string(genai.RoleUser), contents[0].Role)
	assert.Equal(t, string(genai.RoleModel), contents[1].Role)
	assert.Equal(t, "earlier ai answer", contents[1].Parts[0].Text)
}

type recordingWriter struct {
	chunks []string
}

func (w *recordingWriter) WriteMessage(_ int, data []byte) error {
	w.chunks = append(w.chunks, string(data))
	return nil
}
