//go:build e2e
// +build e2e

package e2e

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"testing"

	authpb "github.com/vibast-solutions/ms-go-auth/app/types"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const (
	defaultBillingCallerAPIKey   = "billing-caller-key"
	defaultBillingNoAccessAPIKey = "billing-no-access-key"
	defaultBillingAppAPIKey      = "billing-app-api-key"
	billingAuthMockAddr          = "0.0.0.0:38084"
)

func billingCallerAPIKey() string {
	if value := strings.TrimSpace(os.Getenv("BILLING_CALLER_API_KEY")); value != "" {
		return value
	}
	return defaultBillingCallerAPIKey
}

func billingNoAccessAPIKey() string {
	if value := strings.TrimSpace(os.Getenv("BILLING_NO_ACCESS_API_KEY")); value != "" {
		return value
	}
	return defaultBillingNoAccessAPIKey
}

func billingAppAPIKey() string {
	if value := strings.TrimSpace(os.Getenv("BILLING_APP_API_KEY")); value != "" {
		return value
	}
	return defaultBillingAppAPIKey
}

type billingAuthGRPCServer struct {
	authpb.UnimplementedAuthServiceServer
}

func (s *billingAuthGRPCServer) ValidateInternalAccess(ctx context.Context, req *authpb.ValidateInternalAccessRequest) (*authpb.ValidateInternalAccessResponse, error) {
	if incomingBillingAPIKey(ctx) != billingAppAPIKey() {
		return nil, status.Error(codes.Unauthenticated, "unauthorized caller")
	}

	apiKey := strings.TrimSpace(req.GetApiKey())
	switch apiKey {
	case billingCallerAPIKey():
		return &authpb.ValidateInternalAccessResponse{
			ServiceName:   "billing-gateway",
			AllowedAccess: []string{"billing-service", "accounts-service", "notifications-service"},
		}, nil
	case billingNoAccessAPIKey():
		return &authpb.ValidateInternalAccessResponse{
			ServiceName:   "billing-gateway",
			AllowedAccess: []string{"accounts-service"},
		}, nil
	default:
		return nil, status.Error(codes.Unauthenticated, "invalid api key")
	}
}

func incomingBillingAPIKey(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get("x-api-key")
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

func TestMain(m *testing.M) {
	if os.Getenv("BILLING_CALLER_API_KEY") == "" {
		_ = os.Setenv("BILLING_CALLER_API_KEY", defaultBillingCallerAPIKey)
	}
	if os.Getenv("BILLING_NO_ACCESS_API_KEY") == "" {
		_ = os.Setenv("BILLING_NO_ACCESS_API_KEY", defaultBillingNoAccessAPIKey)
	}
	if os.Getenv("BILLING_APP_API_KEY") == "" {
		_ = os.Setenv("BILLING_APP_API_KEY", defaultBillingAppAPIKey)
	}

	listener, err := net.Listen("tcp", billingAuthMockAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start billing auth grpc mock: %v\n", err)
		os.Exit(1)
	}

	grpcServer := grpc.NewServer()
	authpb.RegisterAuthServiceServer(grpcServer, &billingAuthGRPCServer{})

	go func() {
		_ = grpcServer.Serve(listener)
	}()

	exitCode := m.Run()

	grpcServer.GracefulStop()
	_ = listener.Close()

	os.Exit(exitCode)
}
