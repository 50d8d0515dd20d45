package questionnaire

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ummobile/ummobile-services/api/internal/interfaces/http/common"
	questapp "github.com/ummobile/ummobile-services/api/internal/questionnaire/application"
)

// Handler wires the questionnaire HTTP endpoints to the application service.
type Handler struct {
	logger *log.Logger
	covid  questapp.CovidService
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger *log.Logger
	Covid  questapp.CovidService
}

// NewHandler constructs the questionnaire handler set.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		logger: cfg.Logger,
		covid:  cfg.Covid,
	}
}

// Register mounts the questionnaire routes. Every route sits behind the
// bearer-token middleware and the student-role gate.
func (h *Handler) Register(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/questionnaire", func(router chi.Router) {
		router.Use(authMiddleware)
		router.Use(h.requireStudent)

		router.Get("/covid", h.answersHandler())
		router.Post("/covid", h.submitAnswerHandler())
		router.Get("/covid/today", h.todayAnswersHandler())
		router.Get("/covid/validate", h.validationHandler())
		router.Get("/covid/extras", h.informationHandler())
		router.Patch("/covid/extras", h.updateInformationHandler())
		router.Get("/covid/responsiveLetter", h.responsiveLetterHandler())
	})
}

// requireStudent rejects any principal whose id does not carry the student
// prefix. Employees have no COVID questionnaire.
func (h *Handler) requireStudent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := common.UserFromContext(r.Context())
		if !ok || user.Role != common.RoleStudent {
			common.WriteJSON(h.logger, w, http.StatusForbidden, map[string]string{
				"error": "questionnaire endpoints are available to students only",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
