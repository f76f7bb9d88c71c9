package grpc

import (
	"context"
	"math"
	"time"

	"github.com/DRSN-tech/catalog-backend/internal/usecase"
	"github.com/DRSN-tech/catalog-backend/pkg/e"
	"github.com/DRSN-tech/catalog-backend/pkg/logger"
	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type CategoryService struct {
	catUC  usecase.CategoryUC
	logger logger.Logger
}

func NewCategoryService(catUC usecase.CategoryUC, logger logger.Logger) *CategoryService {
	return &CategoryService{catUC: catUC, logger: logger}
}

func (g *CategoryService) GetCategory(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	const op = "grpc.GetCategory"

	id, err := parseID(req)
	if err != nil {
		return nil, g.fail(op, err)
	}

	out, err := g.catUC.GetCategory(ctx, id)
	if err != nil {
		return nil, g.fail(op, err)
	}

	return g.toStruct(op, categoryFields(out))
}

// ListCategories принимает {page, per_page, search, sort, dir} и возвращает {data, meta}.
func (g *CategoryService) ListCategories(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const op = "grpc.ListCategories"

	listReq, err := parseListRequest(req)
	if err != nil {
		return nil, g.fail(op, err)
	}

	res, err := g.catUC.ListCategories(ctx, listReq)
	if err != nil {
		return nil, g.fail(op, err)
	}

	items := make([]any, 0, len(res.Items))
	for i := range res.Items {
		items = append(items, categoryFields(&res.Items[i]))
	}

	return g.toStruct(op, map[string]any{
		"data": items,
		"meta": map[string]any{
			"total":        res.Total,
			"current_page": res.Page,
			"per_page":     res.PerPage,
		},
	})
}

func (g *CategoryService) ActivateCategory(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	const op = "grpc.ActivateCategory"

	id, err := parseID(req)
	if err != nil {
		return nil, g.fail(op, err)
	}

	out, err := g.catUC.ActivateCategory(ctx, id)
	if err != nil {
		return nil, g.fail(op, err)
	}

	return g.toStruct(op, categoryFields(out))
}

func (g *CategoryService) DeactivateCategory(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	const op = "grpc.DeactivateCategory"

	id, err := parseID(req)
	if err != nil {
		return nil, g.fail(op, err)
	}

	out, err := g.catUC.DeactivateCategory(ctx, id)
	if err != nil {
		return nil, g.fail(op, err)
	}

	return g.toStruct(op, categoryFields(out))
}

func (g *CategoryService) fail(op string, err error) error {
	grpcErr := GRPCErrorResponse(err)
	g.logger.Warnf("%s: %v", op, e.Wrap(op, err))
	return grpcErr
}

func (g *CategoryService) toStruct(op string, fields map[string]any) (*structpb.Struct, error) {
	res, err := structpb.NewStruct(fields)
	if err != nil {
		g.logger.Errorf(e.Wrap(op, err), "%s", op)
		return nil, GRPCErrorResponse(err)
	}

	return res, nil
}

func categoryFields(out *usecase.CategoryOutput) map[string]any {
	return map[string]any{
		"id":          out.ID.String(),
		"name":        out.Name,
		"description": out.Description,
		"is_active":   out.IsActive,
		"created_at":  out.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func parseID(req *wrapperspb.StringValue) (uuid.UUID, error) {
	id, err := uuid.Parse(req.GetValue())
	if err != nil || id == uuid.Nil {
		return uuid.Nil, e.Wrap(req.GetValue(), e.ErrInvalidCategoryID)
	}

	return id, nil
}

func parseListRequest(req *structpb.Struct) (*usecase.ListCategoriesReq, error) {
	fields := req.GetFields()

	page, err := intField(fields, "page")
	if err != nil {
		return nil, err
	}

	perPage, err := intField(fields, "per_page")
	if err != nil {
		return nil, err
	}

	return usecase.NewListCategoriesReq(
		page,
		perPage,
		fields["search"].GetStringValue(),
		usecase.SortField(fields["sort"].GetStringValue()),
		usecase.SortDir(fields["dir"].GetStringValue()),
	), nil
}

// intField читает целое число. Отсутствующее поле даёт 0.
func intField(fields map[string]*structpb.Value, key string) (int, error) {
	v, ok := fields[key]
	if !ok {
		return 0, nil
	}

	n, isNumber := v.GetKind().(*structpb.Value_NumberValue)
	if !isNumber || n.NumberValue != math.Trunc(n.NumberValue) || math.Abs(n.NumberValue) > math.MaxInt32 {
		return 0, e.Wrap(key, e.ErrInvalidPagination)
	}

	return int(n.NumberValue), nil
}
