package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// CategoryServiceName — полное имя сервиса. Сообщения описаны well-known типами protobuf,
// поэтому сервис регистрируется без сгенерированного кода.
const CategoryServiceName = "catalog.v1.CategoryService"

const (
	getCategoryMethod        = "/" + CategoryServiceName + "/GetCategory"
	listCategoriesMethod     = "/" + CategoryServiceName + "/ListCategories"
	activateCategoryMethod   = "/" + CategoryServiceName + "/ActivateCategory"
	deactivateCategoryMethod = "/" + CategoryServiceName + "/DeactivateCategory"
)

type CategoryServiceServer interface {
	GetCategory(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
	ListCategories(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ActivateCategory(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
	DeactivateCategory(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
}

var CategoryServiceDesc = grpc.ServiceDesc{
	ServiceName: CategoryServiceName,
	HandlerType: (*CategoryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		byIDMethod("GetCategory", getCategoryMethod, CategoryServiceServer.GetCategory),
		{
			MethodName: "ListCategories",
			Handler:    listCategoriesHandler,
		},
		byIDMethod("ActivateCategory", activateCategoryMethod, CategoryServiceServer.ActivateCategory),
		byIDMethod("DeactivateCategory", deactivateCategoryMethod, CategoryServiceServer.DeactivateCategory),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "catalog/v1/category.proto",
}

type byIDCall func(CategoryServiceServer, context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)

func byIDMethod(name, fullMethod string, call byIDCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(wrapperspb.StringValue)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(CategoryServiceServer), ctx, in)
			}

			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(CategoryServiceServer), ctx, req.(*wrapperspb.StringValue))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func listCategoriesHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CategoryServiceServer).ListCategories(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: listCategoriesMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CategoryServiceServer).ListCategories(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// CategoryServiceClient — клиент сервиса категорий.
type CategoryServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewCategoryServiceClient(cc grpc.ClientConnInterface) *CategoryServiceClient {
	return &CategoryServiceClient{cc: cc}
}

func (c *CategoryServiceClient) GetCategory(ctx context.Context, id string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, getCategoryMethod, wrapperspb.String(id), opts...)
}

func (c *CategoryServiceClient) ListCategories(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, listCategoriesMethod, req, opts...)
}

func (c *CategoryServiceClient) ActivateCategory(ctx context.Context, id string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, activateCategoryMethod, wrapperspb.String(id), opts...)
}

func (c *CategoryServiceClient) DeactivateCategory(ctx context.Context, id string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, deactivateCategoryMethod, wrapperspb.String(id), opts...)
}

func (c *CategoryServiceClient) invoke(ctx context.Context, method string, in any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
