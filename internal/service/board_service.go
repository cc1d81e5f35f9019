package service

import (
	"context"
	"errors"
	"fmt"
	"qa-board-go/internal/config"
	"qa-board-go/internal/model"
	"qa-board-go/internal/repository"
	"qa-board-go/pkg/log"
	"qa-board-go/pkg/tasks"
	"strings"
	"time"

	"gorm.io/gorm"
)

// 展示给用户的提示语。
const (
	WarnAIAnswerFailed  = "AIの回答を生成できませんでした。質問は投稿されています。"
	WarnAICommentFailed = "AIのコメントを生成できませんでした。回答は投稿されています。"
)

// IndexPublisher 把新问题投递到搜索索引管道。
type IndexPublisher interface {
	PublishQuestion(ctx context.Context, task tasks.QuestionIndexTask) error
}

// SessionChecker 确认一个 Identity 的会话没有过期。
type SessionChecker interface {
	Validate(ctx context.Context, id Identity) error
}

// PostResult 是发帖操作的结果。Warnings 中是不影响发帖成功的提示。
type PostResult struct {
	QuestionID uint     `json:"questionId"`
	AnswerID   uint     `json:"answerId,omitempty"`
	AIAnswerID *uint    `json:"aiAnswerId,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

// CategoryInfo 描述一个分类以及它是否启用了 AI 自动回答。
type CategoryInfo struct {
	Name      string `json:"name"`
	AIEnabled bool   `json:"aiEnabled"`
}

// BoardService 定义了问答板的全部业务操作。每个操作都需要显式传入 Identity。
type BoardService interface {
	Categories() []CategoryInfo
	ListQuestions(ctx context.Context, id Identity, category string) ([]model.QuestionSummary, error)
	GetQuestionDetail(ctx context.Context, id Identity, questionID uint) (*model.QuestionDetail, error)
	PostQuestion(ctx context.Context, id Identity, content, category string) (*PostResult, error)
	PostAnswer(ctx context.Context, id Identity, questionID uint, content string) (*PostResult, error)
	// SelectBestAnswer 返回是否实际发生了修改，重复选择同一回答时返回 false。
	SelectBestAnswer(ctx context.Context, id Identity, questionID, answerID uint) (bool, error)
}

type boardService struct {
	sessions     SessionChecker
	questionRepo repository.QuestionRepository
	answerRepo   repository.AnswerRepository
	commentary   CommentaryService
	publisher    IndexPublisher
	sentinel     *model.User
	categories   []string
	categorySet  map[string]struct{}
	allSentinel  string
}

// NewBoardService 创建一个新的 BoardService。publisher 可以为 nil，sessions 不能为 nil。
func NewBoardService(
	sessions SessionChecker,
	questionRepo repository.QuestionRepository,
	answerRepo repository.AnswerRepository,
	commentary CommentaryService,
	publisher IndexPublisher,
	sentinel *model.User,
	cfg config.BoardConfig,
) BoardService {
	categories := cfg.Categories
	if len(categories) == 0 {
		categories = config.DefaultCategories
	}
	set := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		set[c] = struct{}{}
	}
	return &boardService{
		sessions:     sessions,
		questionRepo: questionRepo,
		answerRepo:   answerRepo,
		commentary:   commentary,
		publisher:    publisher,
		sentinel:     sentinel,
		categories:   categories,
		categorySet:  set,
		allSentinel:  cfg.AllSentinel,
	}
}

// Categories 返回固定的分类列表。
func (s *boardService) Categories() []CategoryInfo {
	out := make([]CategoryInfo, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, CategoryInfo{Name: c, AIEnabled: s.aiEnabled(c)})
	}
	return out
}

// ListQuestions 按创建时间倒序列出问题。
// 分类为空或为“全部”哨兵值时返回全部；否则做等值过滤，未知分类返回空列表。
func (s *boardService) ListQuestions(ctx context.Context, id Identity, category string) ([]model.QuestionSummary, error) {
	if err := s.requireSession(ctx, id); err != nil {
		return nil, err
	}
	if s.isAll(category) {
		category = ""
	}

	questions, err := s.questionRepo.List(category)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	summaries := make([]model.QuestionSummary, 0, len(questions))
	for _, q := range questions {
		summaries = append(summaries, model.NewQuestionSummary(q))
	}
	return summaries, nil
}

// GetQuestionDetail 返回问题、倒序的回答列表以及当前用户是否为提问者。
func (s *boardService) GetQuestionDetail(ctx context.Context, id Identity, questionID uint) (*model.QuestionDetail, error) {
	if err := s.requireSession(ctx, id); err != nil {
		return nil, err
	}
	question, err := s.findQuestion(questionID)
	if err != nil {
		return nil, err
	}
	answers, err := s.answerRepo.FindByQuestionID(question.ID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}

	views := make([]model.AnswerView, 0, len(answers))
	for _, a := range answers {
		views = append(views, model.NewAnswerView(a, s.sentinelID(), question.BestAnswerID))
	}
	return &model.QuestionDetail{
		Question: model.NewQuestionView(*question),
		Answers:  views,
		IsOwner:  question.UserID == id.UserID,
	}, nil
}

// PostQuestion 创建问题；如果分类启用了 AI，则同步生成一条 AI 回答。
// AI 生成失败只会产生一条提示，不会影响问题本身。
func (s *boardService) PostQuestion(ctx context.Context, id Identity, content, category string) (*PostResult, error) {
	if err := s.requireSession(ctx, id); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	category = strings.TrimSpace(category)
	if content == "" || category == "" {
		return nil, fmt.Errorf("%w: question and category are required", ErrValidation)
	}
	if _, ok := s.categorySet[category]; !ok {
		return nil, fmt.Errorf("%w: unknown category %q", ErrValidation, category)
	}

	question := &model.Question{
		UserID:        id.UserID,
		StudentNumber: id.StudentNumber,
		Content:       content,
		Category:      category,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.questionRepo.Create(question); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	log.Infof("[BoardService] 用户 %s 发布了问题 %d, 分类: %s", id.StudentNumber, question.ID, category)

	result := &PostResult{QuestionID: question.ID}
	if s.aiEnabled(category) {
		text, err := s.commentary.CommentOnQuestion(ctx, category, content)
		if err != nil {
			log.Warnf("[BoardService] 问题 %d 的 AI 回答生成失败: %v", question.ID, err)
			result.Warnings = append(result.Warnings, WarnAIAnswerFailed)
		} else {
			aiAnswer := s.newAIAnswer(question.ID, text)
			if err := s.answerRepo.Create(aiAnswer); err != nil {
				log.Errorf("[BoardService] 问题 %d 的 AI 回答保存失败: %v", question.ID, err)
				result.Warnings = append(result.Warnings, WarnAIAnswerFailed)
			} else {
				result.AIAnswerID = &aiAnswer.ID
			}
		}
	}

	s.publish(ctx, question)
	return result, nil
}

// PostAnswer 创建回答；如果问题的分类启用了 AI，先生成一条 AI 点评，再写入真人回答。
func (s *boardService) PostAnswer(ctx context.Context, id Identity, questionID uint, content string) (*PostResult, error) {
	if err := s.requireSession(ctx, id); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: answer is required", ErrValidation)
	}
	question, err := s.findQuestion(questionID)
	if err != nil {
		return nil, err
	}

	human := &model.Answer{
		QuestionID:    question.ID,
		UserID:        id.UserID,
		StudentNumber: id.StudentNumber,
		Content:       content,
	}
	result := &PostResult{QuestionID: question.ID}

	var aiAnswer *model.Answer
	if s.aiEnabled(question.Category) {
		aiAnswer, err = s.commentOnAnswer(ctx, question, content)
		if err != nil {
			log.Warnf("[BoardService] 问题 %d 的 AI 点评生成失败: %v", question.ID, err)
			result.Warnings = append(result.Warnings, WarnAICommentFailed)
		}
	}

	now := time.Now().UTC()
	human.CreatedAt = now
	if aiAnswer != nil {
		aiAnswer.CreatedAt = now
		if err := s.answerRepo.CreateInOrder(aiAnswer, human); err != nil {
			// AI 回答写入失败时仍然保存真人回答
			log.Errorf("[BoardService] 问题 %d 的回答写入失败, 将只保存真人回答: %v", question.ID, err)
			result.Warnings = append(result.Warnings, WarnAICommentFailed)
			aiAnswer = nil
			human.ID = 0
		}
	}
	if aiAnswer == nil {
		if err := s.answerRepo.Create(human); err != nil {
			return nil, fmt.Errorf("create answer: %w", err)
		}
	} else {
		result.AIAnswerID = &aiAnswer.ID
	}
	result.AnswerID = human.ID

	log.Infof("[BoardService] 用户 %s 回答了问题 %d", id.StudentNumber, question.ID)
	return result, nil
}

// SelectBestAnswer 由提问者把某条回答设为最佳回答。
// 写入时校验读取时的 version，期间被并发修改则返回 ErrConflict。
func (s *boardService) SelectBestAnswer(ctx context.Context, id Identity, questionID, answerID uint) (bool, error) {
	if err := s.requireSession(ctx, id); err != nil {
		return false, err
	}
	question, err := s.findQuestion(questionID)
	if err != nil {
		return false, err
	}
	if question.UserID != id.UserID {
		return false, ErrPermissionDenied
	}

	answer, err := s.answerRepo.FindByID(answerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, fmt.Errorf("%w: answer %d", ErrNotFound, answerID)
		}
		return false, err
	}
	if answer.QuestionID != question.ID {
		return false, fmt.Errorf("%w: answer %d does not belong to question %d", ErrNotFound, answerID, questionID)
	}

	if question.HasBestAnswer() && *question.BestAnswerID == answer.ID {
		return false, nil
	}

	ok, err := s.questionRepo.UpdateBestAnswer(question.ID, question.Version, answer)
	if err != nil {
		return false, fmt.Errorf("update best answer: %w", err)
	}
	if !ok {
		return false, ErrConflict
	}
	log.Infof("[BoardService] 问题 %d 的最佳回答更新为 %d", question.ID, answer.ID)
	return true, nil
}

// requireSession 是每个操作开头的登录检查，过期的会话同样被拒绝。
func (s *boardService) requireSession(ctx context.Context, id Identity) error {
	if err := requireIdentity(id); err != nil {
		return err
	}
	return s.sessions.Validate(ctx, id)
}

func (s *boardService) findQuestion(questionID uint) (*model.Question, error) {
	question, err := s.questionRepo.FindByID(questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: question %d", ErrNotFound, questionID)
		}
		return nil, err
	}
	return question, nil
}

func (s *boardService) commentOnAnswer(ctx context.Context, question *model.Question, content string) (*model.Answer, error) {
	history, err := s.answerRepo.FindByQuestionID(question.ID)
	if err != nil {
		return nil, err
	}
	text, err := s.commentary.CommentOnAnswer(ctx, question.Category, question.Content, history, s.sentinelID(), content)
	if err != nil {
		return nil, err
	}
	return s.newAIAnswer(question.ID, text), nil
}

func (s *boardService) newAIAnswer(questionID uint, text string) *model.Answer {
	return &model.Answer{
		QuestionID:    questionID,
		UserID:        s.sentinel.ID,
		StudentNumber: s.sentinel.StudentNumber,
		Content:       text,
		CreatedAt:     time.Now().UTC(),
	}
}

func (s *boardService) aiEnabled(category string) bool {
	return s.commentary != nil && s.sentinel != nil && s.commentary.HasPersona(category)
}

func (s *boardService) sentinelID() uint {
	if s.sentinel == nil {
		return 0
	}
	return s.sentinel.ID
}

func (s *boardService) isAll(category string) bool {
	return category == "" || category == "all" || (s.allSentinel != "" && category == s.allSentinel)
}

// publish 投递索引任务，失败只记录日志。
func (s *boardService) publish(ctx context.Context, q *model.Question) {
	if s.publisher == nil {
		return
	}
	task := tasks.QuestionIndexTask{
		QuestionID:    q.ID,
		UserID:        q.UserID,
		StudentNumber: q.StudentNumber,
		Category:      q.Category,
		Content:       q.Content,
		CreatedAt:     q.CreatedAt,
	}
	if err := s.publisher.PublishQuestion(ctx, task); err != nil {
		log.Warnf("[BoardService] 问题 %d 的索引任务投递失败: %v", q.ID, err)
	}
}
