package handler

import (
	"qa-board-go/internal/middleware"
	"qa-board-go/internal/service"
	"qa-board-go/pkg/log"
	"strconv"

	"github.com/gin-gonic/gin"
)

// SearchHandler 结构体定义了搜索相关的处理器。
type SearchHandler struct {
	searchService service.SearchService
}

// NewSearchHandler 创建一个新的 SearchHandler 实例。
func NewSearchHandler(searchService service.SearchService) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
	}
}

// Search 处理 GET /search?q=&category=&limit= 请求。
func (h *SearchHandler) Search(c *gin.Context) {
	query := c.Query("q")
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}

	results, err := h.searchService.Search(c.Request.Context(), middleware.GetIdentity(c), query, c.Query("category"), limit)
	if err != nil {
		log.Warnf("[SearchHandler] 搜索失败, query: '%s', error: %v", query, err)
		fail(c, err)
		return
	}
	ok(c, msgSuccess, results)
}
