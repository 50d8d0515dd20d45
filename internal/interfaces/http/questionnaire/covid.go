package questionnaire

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ummobile/ummobile-services/api/internal/interfaces/http/common"
	questapp "github.com/ummobile/ummobile-services/api/internal/questionnaire/application"
)

const handlerTimeout = 15 * time.Second

// validationHandler evaluates campus-access eligibility with fresh upstream
// data. Degraded upstreams produce a best-effort verdict, never an error.
func (h *Handler) validationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()

		user, _ := common.UserFromContext(r.Context())
		validation, err := h.covid.Validation(ctx, user.ID)
		if err != nil {
			h.logger.Printf("covid validation failed for %s: %v", user.ID, err)
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "could not evaluate covid validation"})
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, validation)
	}
}

// informationHandler returns the raw declaration snapshot.
func (h *Handler) informationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()

		user, _ := common.UserFromContext(r.Context())
		info, err := h.covid.Information(ctx, user.ID)
		if err != nil {
			h.logger.Printf("covid information failed for %s: %v", user.ID, err)
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "could not fetch covid information"})
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, info)
	}
}

// updateInformationHandler patches the mutable declaration fields upstream.
func (h *Handler) updateInformationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()

		var req updateInformationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if req.IsSuspect == nil {
			common.WriteJSON(h.logger, w, http.StatusOK, updateInformationResponse{Updated: false, Message: "nothing to update"})
			return
		}

		user, _ := common.UserFromContext(r.Context())
		update := questapp.UpdateCovidInformation{IsSuspect: req.IsSuspect}
		if err := h.covid.UpdateInformation(ctx, user.ID, update); err != nil {
			h.logger.Printf("covid information update failed for %s: %v", user.ID, err)
			common.WriteJSON(h.logger, w, http.StatusBadGateway, updateInformationResponse{
				Updated: false,
				Message: "academic service did not accept the update",
			})
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, updateInformationResponse{Updated: true})
	}
}

// responsiveLetterHandler reports whether the signed letter is on file.
func (h *Handler) responsiveLetterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()

		user, _ := common.UserFromContext(r.Context())
		has, err := h.covid.ResponsiveLetter(ctx, user.ID)
		if err != nil {
			h.logger.Printf("responsive letter lookup failed for %s: %v", user.ID, err)
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "could not fetch responsive letter status"})
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, responsiveLetterResponse{HaveResponsiveLetter: has})
	}
}

// submitAnswerHandler validates and stores a questionnaire answer, then
// returns the fresh eligibility verdict.
func (h *Handler) submitAnswerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()

		var req covidAnswerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		answer, err := req.toDomain()
		if err != nil {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		user, _ := common.UserFromContext(r.Context())
		validation, err := h.covid.SubmitAnswer(ctx, user.ID, answer)
		if err != nil {
			h.logger.Printf("covid answer submission failed for %s: %v", user.ID, err)
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "could not store questionnaire answer"})
			return
		}
		common.WriteJSON(h.logger, w, http.StatusCreated, validation)
	}
}

// answersHandler returns every stored answer for the user.
func (h *Handler) answersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()

		user, _ := common.UserFromContext(r.Context())
		answers, err := h.covid.Answers(ctx, user.ID)
		if err != nil {
			h.logger.Printf("covid answers fetch failed for %s: %v", user.ID, err)
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "could not fetch questionnaire answers"})
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, mapStoredAnswers(answers))
	}
}

// todayAnswersHandler returns the answers submitted today.
func (h *Handler) todayAnswersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()

		user, _ := common.UserFromContext(r.Context())
		answers, err := h.covid.TodayAnswers(ctx, user.ID)
		if err != nil {
			h.logger.Printf("today answers fetch failed for %s: %v", user.ID, err)
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "could not fetch today's answers"})
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, mapStoredAnswers(answers))
	}
}
