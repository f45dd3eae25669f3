// Package graphql реализует GraphQL точку входа портала: запрос gymUser
// и мутации createGymUser, updateGymUser.
//
// Ошибки резолверов возвращаются в поле errors с кодами каталога
// в extensions.codes и сообщениями в extensions.messages.
package graphql

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/graphql-go/graphql"

	"github.com/magabrotheeeer/gym-portal/internal/http/response"
	"github.com/magabrotheeeer/gym-portal/internal/lib/sl"
)

// Request — тело GraphQL запроса.
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// Handler выполняет GraphQL запросы.
type Handler struct {
	log    *slog.Logger
	schema graphql.Schema
}

// New создает Handler для готовой схемы.
func New(log *slog.Logger, schema graphql.Schema) *Handler {
	return &Handler{log: log, schema: schema}
}

// ServeHTTP godoc
// @Summary GraphQL
// @Description Запрос gymUser и мутации createGymUser, updateGymUser. Токен необязателен, но без него доступ запрещён.
// @Tags GraphQL
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "GraphQL запрос"
// @Success 200 {object} map[string]any
// @Failure 400 {object} response.ErrorResponse
// @Router /graphql [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.graphql"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Info("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if req.Query == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("query is required"))
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        r.Context(),
	})
	if result.HasErrors() {
		log.Info("graphql request finished with errors", slog.Int("errors", len(result.Errors)))
	}
	render.JSON(w, r, result)
}
