package handler

import (
	"qa-board-go/internal/middleware"
	"qa-board-go/internal/service"
	"qa-board-go/pkg/log"
	"strconv"

	"github.com/gin-gonic/gin"
)

// BoardHandler 负责问答板的页面数据与发帖接口。
type BoardHandler struct {
	boardService service.BoardService
}

// NewBoardHandler 创建一个新的 BoardHandler 实例。
func NewBoardHandler(boardService service.BoardService) *BoardHandler {
	return &BoardHandler{boardService: boardService}
}

// AskRequest 定义了提问请求。
type AskRequest struct {
	Question string `form:"question" json:"question"`
	Category string `form:"category" json:"category"`
}

// AnswerRequest 定义了回答请求。
type AnswerRequest struct {
	Answer string `form:"answer" json:"answer"`
}

// SelectBestRequest 定义了选择最佳回答的请求。
type SelectBestRequest struct {
	BestAnswer uint `form:"best_answer" json:"best_answer" binding:"required"`
}

// Index 返回问题列表，可以通过 ?category= 过滤。
func (h *BoardHandler) Index(c *gin.Context) {
	h.list(c, c.Query("category"))
}

// Category 返回某个分类下的问题列表。
func (h *BoardHandler) Category(c *gin.Context) {
	h.list(c, c.Param("name"))
}

func (h *BoardHandler) list(c *gin.Context, category string) {
	questions, err := h.boardService.ListQuestions(c.Request.Context(), middleware.GetIdentity(c), category)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, msgSuccess, gin.H{
		"questions":        questions,
		"selectedCategory": category,
		"categories":       h.boardService.Categories(),
	})
}

// Categories 返回分类列表以及是否启用 AI。
func (h *BoardHandler) Categories(c *gin.Context) {
	ok(c, msgSuccess, h.boardService.Categories())
}

// Question 返回问题详情。
func (h *BoardHandler) Question(c *gin.Context) {
	questionID, valid := parseID(c, "id")
	if !valid {
		return
	}
	detail, err := h.boardService.GetQuestionDetail(c.Request.Context(), middleware.GetIdentity(c), questionID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, msgSuccess, detail)
}

// Ask 发布一个新问题。
func (h *BoardHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c)
		return
	}
	result, err := h.boardService.PostQuestion(c.Request.Context(), middleware.GetIdentity(c), req.Question, req.Category)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, msgQuestionPosted, result)
}

// Answer 对问题发布一个回答。
func (h *BoardHandler) Answer(c *gin.Context) {
	questionID, valid := parseID(c, "questionId")
	if !valid {
		return
	}
	var req AnswerRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c)
		return
	}
	result, err := h.boardService.PostAnswer(c.Request.Context(), middleware.GetIdentity(c), questionID, req.Answer)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, msgAnswerPosted, result)
}

// SelectBest 由提问者选择最佳回答。
func (h *BoardHandler) SelectBest(c *gin.Context) {
	questionID, valid := parseID(c, "questionId")
	if !valid {
		return
	}
	var req SelectBestRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c)
		return
	}
	changed, err := h.boardService.SelectBestAnswer(c.Request.Context(), middleware.GetIdentity(c), questionID, req.BestAnswer)
	if err != nil {
		log.Warnf("[BoardHandler] 选择最佳回答失败, question: %d, answer: %d, err: %v", questionID, req.BestAnswer, err)
		fail(c, err)
		return
	}
	message := msgBestUpdated
	if !changed {
		message = msgBestUnchanged
	}
	ok(c, message, gin.H{"questionId": questionID, "bestAnswerId": req.BestAnswer, "changed": changed})
}

// parseID 解析路径参数中的 ID，非法时直接写出 404。
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		fail(c, service.ErrNotFound)
		return 0, false
	}
	return uint(id), true
}
