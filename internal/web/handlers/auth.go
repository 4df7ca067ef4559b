package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/shindakun/campuslogin/internal/auth"
	"github.com/shindakun/campuslogin/internal/models"
	webmiddleware "github.com/shindakun/campuslogin/internal/web/middleware"
)

const msgCredentialsMismatch = "These credentials do not match our records."

// Login handles POST /api/login { "username": "...", "password": "..." }
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			webmiddleware.WriteJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"message": "Request body too large."})
			return
		}
		h.metrics.LoginAttempts.WithLabelValues(outcomeValidation).Inc()
		webmiddleware.WriteJSON(w, http.StatusBadRequest, map[string]string{"message": "Malformed JSON body."})
		return
	}

	// Passwords are taken verbatim
	creds.Username = strings.TrimSpace(creds.Username)

	if err := h.validate.Struct(creds); err != nil {
		h.metrics.LoginAttempts.WithLabelValues(outcomeValidation).Inc()
		writeValidationErrors(w, err)
		return
	}

	account, err := auth.Authenticate(r.Context(), h.db, creds.Username, creds.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		h.metrics.LoginAttempts.WithLabelValues(outcomeInvalid).Inc()
		webmiddleware.WriteJSON(w, http.StatusUnprocessableEntity, models.ErrorPayload{
			Message: msgCredentialsMismatch,
			Errors:  map[string][]string{"username": {msgCredentialsMismatch}},
		})
		return
	}
	if err != nil {
		h.metrics.LoginAttempts.WithLabelValues(outcomeError).Inc()
		h.logger.Error().Err(err).Msg("login: authentication failed")
		webmiddleware.WriteJSON(w, http.StatusInternalServerError, map[string]string{"message": "Server Error"})
		return
	}

	token, err := h.tokens.Issue(r.Context(), account.ID, "mobile")
	if err != nil {
		h.metrics.LoginAttempts.WithLabelValues(outcomeError).Inc()
		h.logger.Error().Err(err).Int64("user_id", account.ID).Msg("login: token issue failed")
		webmiddleware.WriteJSON(w, http.StatusInternalServerError, map[string]string{"message": "Server Error"})
		return
	}

	h.metrics.LoginAttempts.WithLabelValues(outcomeSuccess).Inc()
	webmiddleware.WriteJSON(w, http.StatusOK, models.LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		User:      account.User,
	})
}

// Logout handles POST /api/logout by revoking the presented token
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.GetPrincipalFromContext(r.Context())
	if !ok {
		webmiddleware.WriteJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthenticated."})
		return
	}

	if err := h.tokens.Revoke(r.Context(), principal.Token, principal.Owner.TokenID); err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			webmiddleware.WriteJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthenticated."})
			return
		}
		h.logger.Error().Err(err).Msg("logout: revoke failed")
		webmiddleware.WriteJSON(w, http.StatusInternalServerError, map[string]string{"message": "Server Error"})
		return
	}

	h.metrics.Logouts.Inc()
	webmiddleware.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// User handles GET /api/user
func (h *Handlers) User(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.GetPrincipalFromContext(r.Context())
	if !ok {
		webmiddleware.WriteJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthenticated."})
		return
	}
	webmiddleware.WriteJSON(w, http.StatusOK, principal.Account.User)
}

// Register handles POST /api/register for listed students
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var reg models.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			webmiddleware.WriteJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"message": "Request body too large."})
			return
		}
		h.metrics.Registrations.WithLabelValues(outcomeValidation).Inc()
		webmiddleware.WriteJSON(w, http.StatusBadRequest, map[string]string{"message": "Malformed JSON body."})
		return
	}

	for _, f := range []*string{&reg.Email, &reg.Username, &reg.StudentID, &reg.LastName, &reg.FirstName, &reg.Birthday} {
		*f = strings.TrimSpace(*f)
	}

	if err := h.validate.Struct(reg); err != nil {
		h.metrics.Registrations.WithLabelValues(outcomeValidation).Inc()
		writeValidationErrors(w, err)
		return
	}

	account, err := auth.Register(r.Context(), h.db, reg)
	var rerr *auth.RegistrationError
	if errors.As(err, &rerr) {
		h.metrics.Registrations.WithLabelValues(outcomeRejected).Inc()
		webmiddleware.WriteJSON(w, http.StatusUnprocessableEntity, models.ErrorPayload{
			Message: rerr.Message,
			Errors:  map[string][]string{rerr.Field: {rerr.Message}},
		})
		return
	}
	if err != nil {
		h.metrics.Registrations.WithLabelValues(outcomeError).Inc()
		h.logger.Error().Err(err).Msg("register: account creation failed")
		webmiddleware.WriteJSON(w, http.StatusInternalServerError, map[string]string{"message": "Server Error"})
		return
	}

	token, err := h.tokens.Issue(r.Context(), account.ID, "mobile")
	if err != nil {
		h.metrics.Registrations.WithLabelValues(outcomeError).Inc()
		h.logger.Error().Err(err).Int64("user_id", account.ID).Msg("register: token issue failed")
		webmiddleware.WriteJSON(w, http.StatusInternalServerError, map[string]string{"message": "Server Error"})
		return
	}

	h.metrics.Registrations.WithLabelValues(outcomeSuccess).Inc()
	h.logger.Info().Int64("user_id", account.ID).Msg("account registered")
	webmiddleware.WriteJSON(w, http.StatusCreated, models.LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		User:      account.User,
	})
}

// writeValidationErrors renders validator errors in the API's 422 shape
func writeValidationErrors(w http.ResponseWriter, err error) {
	payload := models.ErrorPayload{Errors: map[string][]string{}}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		payload.Message = "The given data was invalid."
		webmiddleware.WriteJSON(w, http.StatusUnprocessableEntity, payload)
		return
	}

	var messages []string
	for _, fe := range verrs {
		msg := fieldMessage(fe)
		payload.Errors[fe.Field()] = append(payload.Errors[fe.Field()], msg)
		messages = append(messages, msg)
	}

	payload.Message = messages[0]
	if extra := len(messages) - 1; extra == 1 {
		payload.Message += " (and 1 more error)"
	} else if extra > 1 {
		payload.Message += fmt.Sprintf(" (and %d more errors)", extra)
	}

	webmiddleware.WriteJSON(w, http.StatusUnprocessableEntity, payload)
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", field)
	case "min":
		return fmt.Sprintf("The %s field must be at least %s characters.", field, fe.Param())
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s characters.", field, fe.Param())
	case "eqfield":
		return fmt.Sprintf("The %s field confirmation does not match.", field)
	case "datetime":
		return fmt.Sprintf("The %s field must match the format Y-m-d.", field)
	default:
		return fmt.Sprintf("The %s field is invalid.", field)
	}
}
