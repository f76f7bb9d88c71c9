package http

import (
	"net/http"

	"github.com/DRSN-tech/catalog-backend/internal/usecase"
	"github.com/DRSN-tech/catalog-backend/pkg/logger"
)

type CategoryHandler struct {
	categoryUsecase usecase.CategoryUC
	logger          logger.Logger
}

func NewCategoryHandler(categoryUsecase usecase.CategoryUC, logger logger.Logger) *CategoryHandler {
	return &CategoryHandler{categoryUsecase: categoryUsecase, logger: logger}
}

// createCategory
//
//	@Summary		Создание категории
//	@Description	Создаёт категорию. is_active по умолчанию true
//	@Tags			categories
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateCategoryRequest	true	"Категория"
//	@Success		201		{object}	CategoryResponse
//	@Failure		400		{object}	ErrorResponse	"Некорректное тело запроса"
//	@Failure		422		{object}	ErrorResponse	"Нарушены правила категории"
//	@Router			/categories [post]
func (h *CategoryHandler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	out, err := h.categoryUsecase.CreateCategory(r.Context(),
		usecase.NewCreateCategoryReq(req.Name, req.Description, req.IsActive))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, NewCategoryResponse(out))
}

// listCategories
//
//	@Summary		Список категорий
//	@Tags			categories
//	@Produce		json
//	@Param			page		query		int		false	"Номер страницы"		default(1)
//	@Param			per_page	query		int		false	"Размер страницы"		default(15)	maximum(100)
//	@Param			search		query		string	false	"Поиск по имени"
//	@Param			sort		query		string	false	"Поле сортировки"		Enums(name, created_at)
//	@Param			dir			query		string	false	"Направление"			Enums(asc, desc)
//	@Success		200			{object}	ListCategoriesResponse
//	@Failure		400			{object}	ErrorResponse
//	@Router			/categories [get]
func (h *CategoryHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	req, err := parseListQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.categoryUsecase.ListCategories(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, NewListCategoriesResponse(res))
}

// getCategory
//
//	@Summary	Получение категории
//	@Tags		categories
//	@Produce	json
//	@Param		id	path		string	true	"ID категории (UUID)"
//	@Success	200	{object}	CategoryResponse
//	@Failure	400	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/categories/{id} [get]
func (h *CategoryHandler) getCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseCategoryID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out, err := h.categoryUsecase.GetCategory(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, NewCategoryResponse(out))
}

// updateCategory
//
//	@Summary		Изменение категории
//	@Description	Меняет имя и описание. Без description описание не меняется, is_active меняет статус
//	@Tags			categories
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"ID категории (UUID)"
//	@Param			request	body		UpdateCategoryRequest	true	"Новые значения"
//	@Success		200		{object}	CategoryResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/categories/{id} [put]
func (h *CategoryHandler) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseCategoryID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req UpdateCategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	out, err := h.categoryUsecase.UpdateCategory(r.Context(),
		usecase.NewUpdateCategoryReq(id, req.Name, req.Description, req.IsActive))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, NewCategoryResponse(out))
}

// activateCategory
//
//	@Summary	Активация категории
//	@Tags		categories
//	@Produce	json
//	@Param		id	path		string	true	"ID категории (UUID)"
//	@Success	200	{object}	CategoryResponse
//	@Failure	404	{object}	ErrorResponse
//	@Failure	422	{object}	ErrorResponse
//	@Router		/categories/{id}/activate [post]
func (h *CategoryHandler) activateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseCategoryID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out, err := h.categoryUsecase.ActivateCategory(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, NewCategoryResponse(out))
}

// deactivateCategory
//
//	@Summary	Деактивация категории
//	@Tags		categories
//	@Produce	json
//	@Param		id	path		string	true	"ID категории (UUID)"
//	@Success	200	{object}	CategoryResponse
//	@Failure	404	{object}	ErrorResponse
//	@Failure	422	{object}	ErrorResponse
//	@Router		/categories/{id}/deactivate [post]
func (h *CategoryHandler) deactivateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseCategoryID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out, err := h.categoryUsecase.DeactivateCategory(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, NewCategoryResponse(out))
}

// deleteCategory
//
//	@Summary	Удаление категории
//	@Tags		categories
//	@Param		id	path	string	true	"ID категории (UUID)"
//	@Success	204
//	@Failure	404	{object}	ErrorResponse
//	@Router		/categories/{id} [delete]
func (h *CategoryHandler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseCategoryID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.categoryUsecase.DeleteCategory(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// exportCategories
//
//	@Summary		Выгрузка каталога
//	@Description	Сохраняет JSON-снимок всех категорий в объектное хранилище
//	@Tags			categories
//	@Produce		json
//	@Success		201	{object}	ExportCategoriesResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/categories/exports [post]
func (h *CategoryHandler) exportCategories(w http.ResponseWriter, r *http.Request) {
	res, err := h.categoryUsecase.ExportCategories(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, NewExportCategoriesResponse(res))
}

func (h *CategoryHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, _ := ToHTTPResponse(err)
	if code >= http.StatusInternalServerError {
		h.logger.Errorf(err, "%s %s: %d", r.Method, r.URL.Path, code)
	} else {
		h.logger.Warnf("%s %s: %d %s", r.Method, r.URL.Path, code, err.Error())
	}

	WriteError(w, err)
}
