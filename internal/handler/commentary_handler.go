package handler

import (
	"encoding/json"
	"qa-board-go/internal/service"
	"qa-board-go/pkg/log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// CommentaryHandler 提供不落库的 AI 预览。
type CommentaryHandler struct {
	commentaryService service.CommentaryService
}

// NewCommentaryHandler 创建一个新的 CommentaryHandler。
func NewCommentaryHandler(commentaryService service.CommentaryService) *CommentaryHandler {
	return &CommentaryHandler{commentaryService: commentaryService}
}

// PreviewRequest 定义了预览请求。
type PreviewRequest struct {
	Category string `form:"category" json:"category"`
	Question string `form:"question" json:"question"`
}

// Preview 同步生成一段 AI 点评。
func (h *CommentaryHandler) Preview(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c)
		return
	}
	text, err := h.commentaryService.Preview(c.Request.Context(), req.Category, req.Question)
	if err != nil {
		log.Warnf("[CommentaryHandler] 预览生成失败: %v", err)
		fail(c, err)
		return
	}
	ok(c, msgSuccess, gin.H{"comment": text})
}

// Stream 通过 WebSocket 流式返回预览。
// 客户端每发送一条 {"category","question"} 消息，服务端返回若干文本分块，最后是一条 completion 消息。
func (h *CommentaryHandler) Stream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warnf("从 WebSocket 读取消息失败: %v", err)
			}
			return
		}

		var req PreviewRequest
		if err := json.Unmarshal(message, &req); err != nil {
			writeEvent(conn, gin.H{"type": "error", "message": msgValidation})
			continue
		}

		status := "finished"
		if err := h.commentaryService.StreamPreview(c.Request.Context(), req.Category, req.Question, conn); err != nil {
			log.Warnf("[CommentaryHandler] 流式预览失败: %v", err)
			status = "failed"
			writeEvent(conn, gin.H{"type": "error", "message": msgGeneration})
		}
		writeEvent(conn, gin.H{
			"type":      "completion",
			"status":    status,
			"timestamp": time.Now().UnixMilli(),
		})
	}
}

func writeEvent(conn *websocket.Conn, event gin.H) {
	b, _ := json.Marshal(event)
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		log.Warnf("写入 WebSocket 消息失败: %v", err)
	}
}
