package service

import (
	"context"
	"qa-board-go/internal/model"
	"qa-board-go/pkg/llm"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chunkCollector struct {
	chunks []string
}

func (c *chunkCollector) WriteMessage(_ int, data []byte) error {
	c.chunks = append(c.chunks, string(data))
	return nil
}

// blockingLLM 一直阻塞到 ctx 结束。
type blockingLLM struct{}

func (blockingLLM) Generate(ctx context.Context, _ []llm.Message, _ *llm.GenerationParams) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func (blockingLLM) StreamChatMessages(ctx context.Context, _ []llm.Message, _ *llm.GenerationParams, _ llm.MessageWriter) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestCommentOnQuestion(t *testing.T) {
	fake := &fakeLLM{reply: "答え"}
	svc := NewCommentaryService(fake, testLLMConfig())

	assert.True(t, svc.HasPersona(aiCategory))
	assert.False(t, svc.HasPersona("その他"))

	text, err := svc.CommentOnQuestion(context.Background(), aiCategory, "What is recursion?")
	require.NoError(t, err)
	assert.Equal(t, "答え", text)

	msgs := fake.lastCall()
	require.Len(t, msgs, 2)
	assert.Equal(t, "あなたはアルゴリズムの先生です。", msgs[0].Content)
	assert.Contains(t, msgs[1].Content, aiCategory)

	_, err = svc.CommentOnQuestion(context.Background(), "その他", "q")
	assert.ErrorIs(t, err, ErrGeneration)
}

func TestCommentOnAnswer_HistoryIsChronological(t *testing.T) {
	fake := &fakeLLM{reply: "コメント"}
	svc := NewCommentaryService(fake, testLLMConfig())

	// 倒序传入
	history := []model.Answer{
		{ID: 3, UserID: 2, StudentNumber: "S2", Content: "second"},
		{ID: 2, UserID: 99, StudentNumber: "AI", Content: "ai"},
		{ID: 1, UserID: 1, StudentNumber: "S1", Content: "first"},
	}
	_, err := svc.CommentOnAnswer(context.Background(), aiCategory, "q", history, 99, "newest")
	require.NoError(t, err)

	msgs := fake.lastCall()
	require.Len(t, msgs, 6)
	assert.Contains(t, msgs[2].Content, "first")
	assert.Equal(t, "assistant", msgs[3].Role)
	assert.Equal(t, "ai", msgs[3].Content)
	assert.Contains(t, msgs[4].Content, "second")
	assert.True(t, strings.HasSuffix(msgs[5].Content, "newest"))
}

func TestGenerate_TimeoutIsGenerationError(t *testing.T) {
	cfg := testLLMConfig()
	cfg.Timeout = 20 * time.Millisecond
	svc := NewCommentaryService(blockingLLM{}, cfg)

	_, err := svc.CommentOnQuestion(context.Background(), aiCategory, "q")
	assert.ErrorIs(t, err, ErrGeneration)
}

func TestGenerate_NoClient(t *testing.T) {
	svc := NewCommentaryService(nil, testLLMConfig())
	_, err := svc.CommentOnQuestion(context.Background(), aiCategory, "q")
	assert.ErrorIs(t, err, ErrGeneration)

	err = svc.StreamPreview(context.Background(), aiCategory, "q", &chunkCollector{})
	assert.ErrorIs(t, err, ErrGeneration)
}

func TestPreview(t *testing.T) {
	fake := &fakeLLM{reply: "プレビュー", chunks: []string{"プレ", "ビュー"}}
	svc := NewCommentaryService(fake, testLLMConfig())
	ctx := context.Background()

	text, err := svc.Preview(ctx, "その他", "質問")
	require.NoError(t, err)
	assert.Equal(t, "プレビュー", text)
	assert.Equal(t, "あなたは親切な先生です。", fake.lastCall()[0].Content)

	_, err = svc.Preview(ctx, aiCategory, "  ")
	assert.ErrorIs(t, err, ErrValidation)

	collector := &chunkCollector{}
	require.NoError(t, svc.StreamPreview(ctx, aiCategory, "質問", collector))
	assert.Equal(t, []string{"プレ", "ビュー"}, collector.chunks)

	cfg := testLLMConfig()
	cfg.DefaultPersona = ""
	strict := NewCommentaryService(fake, cfg)
	_, err = strict.Preview(ctx, "その他", "質問")
	assert.ErrorIs(t, err, ErrValidation)
}
