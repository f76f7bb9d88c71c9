package http

import (
	"net/http"
	"time"

	_ "github.com/DRSN-tech/catalog-backend/docs" // Регистрация swagger-спецификации
	"github.com/DRSN-tech/catalog-backend/internal/usecase"
	"github.com/DRSN-tech/catalog-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

func (r *Router) Init(catUC usecase.CategoryUC) {
	r.router.Use(middleware.RequestID)
	r.router.Use(middleware.Recoverer)
	r.router.Use(r.requestLogger)

	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.router.Route("/api/v1", func(v1 chi.Router) {
		catHandler := NewCategoryHandler(catUC, r.logger)
		registerCategoryRoutes(v1, catHandler)
	})
}

func registerCategoryRoutes(router chi.Router, catHandler *CategoryHandler) {
	router.Route("/categories", func(cr chi.Router) {
		cr.Post("/", catHandler.createCategory)
		cr.Get("/", catHandler.listCategories)
		cr.Post("/exports", catHandler.exportCategories)

		cr.Route("/{id}", func(one chi.Router) {
			one.Get("/", catHandler.getCategory)
			one.Put("/", catHandler.updateCategory)
			one.Delete("/", catHandler.deleteCategory)
			one.Post("/activate", catHandler.activateCategory)
			one.Post("/deactivate", catHandler.deactivateCategory)
		})
	})
}

// requestLogger пишет в debug метод, путь, статус и длительность запроса.
func (r *Router) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, req)

		r.logger.Debugf("%s %s %d %s request_id=%s",
			req.Method, req.URL.Path, ww.Status(), time.Since(start), middleware.GetReqID(req.Context()))
	})
}
