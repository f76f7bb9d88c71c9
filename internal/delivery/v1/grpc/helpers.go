package grpc

import (
	"errors"

	"github.com/DRSN-tech/catalog-backend/internal/domain"
	"github.com/DRSN-tech/catalog-backend/pkg/e"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GRPCErrorResponse переводит ошибку usecase в статус gRPC.
// Текст ошибки валидации агрегата передаётся без изменений.
func GRPCErrorResponse(err error) error {
	var vErr *domain.EntityValidationError
	switch {
	case errors.As(err, &vErr):
		return status.Error(codes.InvalidArgument, vErr.Message)
	case errors.Is(err, e.ErrCategoryNotFound):
		return status.Error(codes.NotFound, e.ErrCategoryNotFound.Error())
	case errors.Is(err, e.ErrInvalidCategoryID):
		return status.Error(codes.InvalidArgument, e.ErrInvalidCategoryID.Error())
	case errors.Is(err, e.ErrInvalidPagination):
		return status.Error(codes.InvalidArgument, e.ErrInvalidPagination.Error())
	case errors.Is(err, e.ErrStatusBadRequest):
		return status.Error(codes.InvalidArgument, e.ErrStatusBadRequest.Error())
	default:
		return status.Error(codes.Internal, e.ErrInternalServerError.Error())
	}
}
