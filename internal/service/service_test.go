package service

import (
	"context"
	"errors"
	"fmt"
	"qa-board-go/internal/config"
	"qa-board-go/internal/model"
	"qa-board-go/internal/repository"
	"qa-board-go/pkg/database"
	"qa-board-go/pkg/llm"
	"qa-board-go/pkg/tasks"
	"qa-board-go/pkg/token"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const aiCategory = "データ構造とアルゴリズム"

// fakeLLM 记录每次调用的消息并返回固定结果。
type fakeLLM struct {
	mu     sync.Mutex
	reply  string
	err    error
	chunks []string
	calls  [][]llm.Message
}

func (f *fakeLLM) Generate(_ context.Context, messages []llm.Message, _ *llm.GenerationParams) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, messages)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeLLM) StreamChatMessages(_ context.Context, messages []llm.Message, _ *llm.GenerationParams, writer llm.MessageWriter) error {
	f.mu.Lock()
	f.calls = append(f.calls, messages)
	err, chunks := f.err, f.chunks
	f.mu.Unlock()
	if err != nil {
		return err
	}
	for _, c := range chunks {
		if err := writer.WriteMessage(1, []byte(c)); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeLLM) lastCall() []llm.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	return f.calls[len(f.calls)-1]
}

type fakePublisher struct {
	mu    sync.Mutex
	err   error
	tasks []tasks.QuestionIndexTask
}

func (p *fakePublisher) PublishQuestion(_ context.Context, task tasks.QuestionIndexTask) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tasks = append(p.tasks, task)
	return p.err
}

func testLLMConfig() config.LLMConfig {
	return config.LLMConfig{
		Timeout: time.Second,
		Personas: []config.PersonaConfig{
			{Category: aiCategory, Template: "あなたはアルゴリズムの先生です。"},
		},
		DefaultPersona: "あなたは親切な先生です。",
	}
}

func newTestDB(t *testing.T) (*gorm.DB, *model.User) {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())},
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	sentinel, err := repository.AutoMigrate(db, "AI")
	require.NoError(t, err)
	return db, sentinel
}

type boardFixture struct {
	db        *gorm.DB
	mr        *miniredis.Miniredis
	users     UserService
	sessions  repository.SessionRepository
	board     BoardService
	llm       *fakeLLM
	publisher *fakePublisher
	sentinel  *model.User
	questions repository.QuestionRepository
	answers   repository.AnswerRepository
}

func newBoardFixture(t *testing.T) *boardFixture {
	t.Helper()
	db, sentinel := newTestDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	sessions := repository.NewSessionRepository(rdb)

	f := &boardFixture{
		db:        db,
		mr:        mr,
		users:     NewUserService(repository.NewUserRepository(db), sessions, token.NewJWTManager("test-secret", 24), testIdleTimeout),
		sessions:  sessions,
		llm:       &fakeLLM{reply: "再帰とは関数が自分自身を呼び出すことです。"},
		publisher: &fakePublisher{},
		sentinel:  sentinel,
		questions: repository.NewQuestionRepository(db),
		answers:   repository.NewAnswerRepository(db),
	}
	commentary := NewCommentaryService(f.llm, testLLMConfig())
	f.board = NewBoardService(f.users, f.questions, f.answers, commentary, f.publisher, sentinel, configWithAll())
	return f
}

const testIdleTimeout = 30 * time.Minute

// identity 创建一个用户和一个有效会话，并返回其身份。
func (f *boardFixture) identity(t *testing.T, studentNumber string) Identity {
	t.Helper()
	u := &model.User{StudentNumber: studentNumber, PassphraseHash: "x"}
	require.NoError(t, repository.NewUserRepository(f.db).Create(u))

	sid := uuid.NewString()
	session := model.Session{UserID: u.ID, StudentNumber: u.StudentNumber, LoginAt: time.Now().UTC()}
	require.NoError(t, f.sessions.Create(context.Background(), sid, session, testIdleTimeout))
	return Identity{SessionID: sid, UserID: u.ID, StudentNumber: u.StudentNumber}
}

var errQuota = errors.New("quota exceeded")

func configWithAll() config.BoardConfig {
	return config.BoardConfig{AllSentinel: "すべて"}
}
