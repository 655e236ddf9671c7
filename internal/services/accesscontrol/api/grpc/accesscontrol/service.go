// Package accesscontrol exposes credential verification over gRPC.
//
// The service is described by hand with protobuf well-known types, so no
// generated stubs are needed: the request is a Struct carrying "username" and
// "password" strings and the response is a BoolValue.
package accesscontrol

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	apperrors "github.com/louisbranch/bookstore/internal/platform/errors"
	"github.com/louisbranch/bookstore/internal/services/accesscontrol/credential"
	"github.com/louisbranch/bookstore/internal/services/accesscontrol/storage"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "accesscontrol.v1.AccessControlService"

const signInMethod = "/" + ServiceName + "/SignIn"

const (
	fieldUsername = "username"
	fieldPassword = "password"
)

// AccessControlServer is the server API for the access-control service.
type AccessControlServer interface {
	SignIn(context.Context, *structpb.Struct) (*wrapperspb.BoolValue, error)
}

// ServiceDesc describes the access-control service for grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AccessControlServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SignIn", Handler: signInHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "accesscontrol/v1/accesscontrol.proto",
}

// RegisterAccessControlServer registers srv on registrar.
func RegisterAccessControlServer(registrar grpc.ServiceRegistrar, srv AccessControlServer) {
	registrar.RegisterService(&ServiceDesc, srv)
}

func signInHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AccessControlServer).SignIn(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: signInMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AccessControlServer).SignIn(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Service verifies credentials against a credential store.
type Service struct {
	store storage.CredentialStore
}

// NewService creates a Service backed by store.
func NewService(store storage.CredentialStore) *Service {
	return &Service{store: store}
}

// SignIn reports whether the username and password match a stored
// credential. Unknown usernames and empty values are a plain false; an
// unknown username still pays for a hash comparison.
func (s *Service) SignIn(ctx context.Context, in *structpb.Struct) (*wrapperspb.BoolValue, error) {
	if s == nil || s.store == nil {
		return nil, apperrors.New(apperrors.CodeUnknown, "credential store is not configured").ToGRPCStatus()
	}
	username, password, err := signInFields(in)
	if err != nil {
		return nil, err.ToGRPCStatus()
	}
	username = credential.NormalizeUsername(username)
	if username == "" || password == "" {
		return wrapperspb.Bool(false), nil
	}

	stored, lookupErr := s.store.GetCredential(ctx, username)
	if lookupErr != nil {
		if errors.Is(lookupErr, storage.ErrNotFound) {
			return wrapperspb.Bool(credential.RejectUnknown(password)), nil
		}
		return nil, apperrors.Wrap(apperrors.CodeUnknown, "lookup credential", lookupErr).ToGRPCStatus()
	}
	return wrapperspb.Bool(credential.Matches(stored.PasswordHash, password)), nil
}

func signInFields(in *structpb.Struct) (string, string, *apperrors.Error) {
	if in == nil {
		return "", "", apperrors.New(apperrors.CodeSignInRequestInvalid, "sign-in request is required")
	}
	username, err := stringField(in, fieldUsername)
	if err != nil {
		return "", "", err
	}
	password, err := stringField(in, fieldPassword)
	if err != nil {
		return "", "", err
	}
	return username, password, nil
}

func stringField(in *structpb.Struct, name string) (string, *apperrors.Error) {
	value, ok := in.GetFields()[name]
	if !ok || value == nil {
		return "", nil
	}
	switch kind := value.GetKind().(type) {
	case *structpb.Value_StringValue:
		return kind.StringValue, nil
	case *structpb.Value_NullValue:
		return "", nil
	default:
		return "", apperrors.WithMetadata(apperrors.CodeSignInRequestInvalid,
			fmt.Sprintf("%s must be a string", name),
			map[string]string{"field": name})
	}
}
