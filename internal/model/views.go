package model

// QuestionSummary 是问题列表中的一行。
type QuestionSummary struct {
	ID            uint      `json:"id"`
	Content       string    `json:"questionContent"`
	Category      string    `json:"category"`
	CreatedAt     LocalTime `json:"createdAt"`
	StudentNumber string    `json:"studentNumber"`
}

// QuestionView 是问题详情中的问题部分。
type QuestionView struct {
	ID                uint      `json:"id"`
	UserID            uint      `json:"userId"`
	StudentNumber     string    `json:"studentNumber"`
	Content           string    `json:"questionContent"`
	Category          string    `json:"category"`
	CreatedAt         LocalTime `json:"createdAt"`
	BestAnswerID      *uint     `json:"bestAnswerId"`
	BestAnswerUserID  *uint     `json:"bestAnswerUserId"`
	BestStudentNumber *string   `json:"bestStudentNumber"`
}

// AnswerView 是问题详情中的一条回答。
type AnswerView struct {
	ID            uint      `json:"id"`
	QuestionID    uint      `json:"questionId"`
	UserID        uint      `json:"userId"`
	StudentNumber string    `json:"studentNumber"`
	Content       string    `json:"answerContent"`
	CreatedAt     LocalTime `json:"createdAt"`
	IsAI          bool      `json:"isAi"`
	IsBest        bool      `json:"isBest"`
}

// QuestionDetail 是问题详情页的完整数据。
type QuestionDetail struct {
	Question QuestionView `json:"question"`
	Answers  []AnswerView `json:"answers"`
	IsOwner  bool         `json:"isQuestionOwner"`
}

// NewQuestionSummary 从 Question 构建列表行。
func NewQuestionSummary(q Question) QuestionSummary {
	return QuestionSummary{
		ID:            q.ID,
		Content:       q.Content,
		Category:      q.Category,
		CreatedAt:     LocalTime(q.CreatedAt),
		StudentNumber: q.StudentNumber,
	}
}

// NewQuestionView 从 Question 构建详情视图。
func NewQuestionView(q Question) QuestionView {
	return QuestionView{
		ID:                q.ID,
		UserID:            q.UserID,
		StudentNumber:     q.StudentNumber,
		Content:           q.Content,
		Category:          q.Category,
		CreatedAt:         LocalTime(q.CreatedAt),
		BestAnswerID:      q.BestAnswerID,
		BestAnswerUserID:  q.BestAnswerUserID,
		BestStudentNumber: q.BestStudentNumber,
	}
}

// NewAnswerView 从 Answer 构建视图，sentinelID 是 AI 哨兵用户的 ID。
func NewAnswerView(a Answer, sentinelID uint, bestAnswerID *uint) AnswerView {
	return AnswerView{
		ID:            a.ID,
		QuestionID:    a.QuestionID,
		UserID:        a.UserID,
		StudentNumber: a.StudentNumber,
		Content:       a.Content,
		CreatedAt:     LocalTime(a.CreatedAt),
		IsAI:          sentinelID != 0 && a.UserID == sentinelID,
		IsBest:        bestAnswerID != nil && *bestAnswerID == a.ID,
	}
}
