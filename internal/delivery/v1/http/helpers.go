package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/DRSN-tech/catalog-backend/internal/domain"
	"github.com/DRSN-tech/catalog-backend/internal/usecase"
	"github.com/DRSN-tech/catalog-backend/pkg/e"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jimlawless/whereami"
)

const maxBodySize = 1 << 20

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

// ToHTTPResponse сопоставляет ошибку с HTTP-статусом и текстом для клиента.
// Текст ошибки валидации агрегата передаётся без изменений.
func ToHTTPResponse(err error) (int, string) {
	var vErr *domain.EntityValidationError
	switch {
	case errors.As(err, &vErr):
		return http.StatusUnprocessableEntity, vErr.Message
	case errors.Is(err, e.ErrCategoryNotFound):
		return http.StatusNotFound, e.ErrCategoryNotFound.Error()
	case errors.Is(err, e.ErrInvalidCategoryID):
		return http.StatusBadRequest, e.ErrInvalidCategoryID.Error()
	case errors.Is(err, e.ErrInvalidPagination):
		return http.StatusBadRequest, e.ErrInvalidPagination.Error()
	case errors.Is(err, e.ErrStatusBadRequest):
		return http.StatusBadRequest, e.ErrStatusBadRequest.Error()
	default:
		return http.StatusInternalServerError, e.ErrInternalServerError.Error()
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	WriteSuccess(w, code, NewErrorResponse(code, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func parseCategoryID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")

	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, e.Wrap(raw, e.ErrInvalidCategoryID)
	}

	return id, nil
}

// decodeJSON читает тело запроса. Пустое тело, лишние поля и мусор после объекта считаются ошибкой клиента.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return e.Wrap(whereami.WhereAmI()+": "+err.Error(), e.ErrStatusBadRequest)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return e.Wrap(whereami.WhereAmI()+": trailing data", e.ErrStatusBadRequest)
	}

	return nil
}

func parseListQuery(r *http.Request) (*usecase.ListCategoriesReq, error) {
	q := r.URL.Query()

	page, err := parseIntQuery(q.Get("page"))
	if err != nil {
		return nil, e.Wrap("page", e.ErrInvalidPagination)
	}

	perPage, err := parseIntQuery(q.Get("per_page"))
	if err != nil {
		return nil, e.Wrap("per_page", e.ErrInvalidPagination)
	}

	return usecase.NewListCategoriesReq(
		page,
		perPage,
		q.Get("search"),
		usecase.SortField(q.Get("sort")),
		usecase.SortDir(q.Get("dir")),
	), nil
}

// parseIntQuery возвращает 0 для отсутствующего параметра: usecase подставит значение по умолчанию.
func parseIntQuery(v string) (int, error) {
	if v == "" {
		return 0, nil
	}

	return strconv.Atoi(v)
}
