package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/knowlympics/knowlympics-backend/internal/model"
	"github.com/knowlympics/knowlympics-backend/internal/response"
	"github.com/knowlympics/knowlympics-backend/internal/service"
	"github.com/knowlympics/knowlympics-backend/internal/validator"
)

// QuizHandler serves the quiz catalog and its admin management.
type QuizHandler struct {
	quizService *service.QuizService
	log         zerolog.Logger
}

func NewQuizHandler(quizService *service.QuizService, log zerolog.Logger) *QuizHandler {
	return &QuizHandler{
		quizService: quizService,
		log:         log.With().Str("component", "quiz_handler").Logger(),
	}
}

// ListByChapter godoc
// GET /api/v1/chapters/:id/quizzes
// Each quiz carries its availability (UPCOMING, AVAILABLE or EXPIRED).
func (h *QuizHandler) ListByChapter(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	quizzes, err := h.quizService.ListByChapter(c.Request.Context(), id)
	if err != nil {
		failErr(c, h.log, err)
		return
	}
	if quizzes == nil {
		quizzes = []model.Quiz{}
	}
	response.Success(c, http.StatusOK, gin.H{"quizzes": quizzes})
}

// Get godoc
// GET /api/v1/quizzes/:quiz_id
func (h *QuizHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "quiz_id")
	if !ok {
		return
	}

	q, err := h.quizService.Get(c.Request.Context(), id)
	if err != nil {
		failErr(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"quiz": q})
}

// Create godoc
// POST /api/v1/admin/quizzes
func (h *QuizHandler) Create(c *gin.Context) {
	var req model.QuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	q, err := h.quizService.Create(c.Request.Context(), req)
	if err != nil {
		failErr(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"quiz": q})
}

// Update godoc
// PUT /api/v1/admin/quizzes/:quiz_id
func (h *QuizHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "quiz_id")
	if !ok {
		return
	}

	var req model.QuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	q, err := h.quizService.Update(c.Request.Context(), id, req)
	if err != nil {
		failErr(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"quiz": q})
}

// Delete godoc
// DELETE /api/v1/admin/quizzes/:quiz_id
func (h *QuizHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "quiz_id")
	if !ok {
		return
	}

	if err := h.quizService.Delete(c.Request.Context(), id); err != nil {
		failErr(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "quiz deleted successfully"})
}

// Questions godoc
// GET /api/v1/admin/quizzes/:quiz_id/questions
func (h *QuizHandler) Questions(c *gin.Context) {
	id, ok := paramID(c, "quiz_id")
	if !ok {
		return
	}

	questions, err := h.quizService.Questions(c.Request.Context(), id)
	if err != nil {
		failErr(c, h.log, err)
		return
	}
	if questions == nil {
		questions = []model.Question{}
	}
	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// CreateQuestion godoc
// POST /api/v1/admin/quizzes/:quiz_id/questions
func (h *QuizHandler) CreateQuestion(c *gin.Context) {
	quizID, ok := paramID(c, "quiz_id")
	if !ok {
		return
	}

	var req model.QuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	q, err := h.quizService.CreateQuestion(c.Request.Context(), quizID, req)
	if err != nil {
		failErr(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"question": q})
}

// UpdateQuestion godoc
// PUT /api/v1/admin/questions/:id
func (h *QuizHandler) UpdateQuestion(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.QuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	q, err := h.quizService.UpdateQuestion(c.Request.Context(), id, req)
	if err != nil {
		failErr(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"question": q})
}

// DeleteQuestion godoc
// DELETE /api/v1/admin/questions/:id
func (h *QuizHandler) DeleteQuestion(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.quizService.DeleteQuestion(c.Request.Context(), id); err != nil {
		failErr(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "question deleted successfully"})
}
