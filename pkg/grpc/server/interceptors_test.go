package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func successHandler(ctx context.Context, req any) (any, error) {
	return "success", nil
}

func errorHandler(ctx context.Context, req any) (any, error) {
	return nil, status.Error(codes.FailedPrecondition, "test error")
}

func TestLoggingInterceptor(t *testing.T) {
	interceptor := LoggingInterceptor(zaptest.NewLogger(t))
	info := &grpc.UnaryServerInfo{FullMethod: "/test.Service/TestMethod"}

	t.Run("successful request", func(t *testing.T) {
		resp, err := interceptor(context.Background(), "test request", info, successHandler)

		assert.NoError(t, err)
		assert.Equal(t, "success", resp)
	})

	t.Run("error request", func(t *testing.T) {
		_, err := interceptor(context.Background(), "test request", info, errorHandler)

		assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	})
}

func TestMetricsInterceptor(t *testing.T) {
	reg := prometheus.NewRegistry()
	interceptor, err := MetricsInterceptor(reg)
	require.NoError(t, err)
	info := &grpc.UnaryServerInfo{FullMethod: "/test.Service/TestMethod"}

	_, _ = interceptor(context.Background(), nil, info, successHandler)
	_, _ = interceptor(context.Background(), nil, info, successHandler)
	_, _ = interceptor(context.Background(), nil, info, errorHandler)

	again, err := MetricsInterceptor(reg)
	require.NoError(t, err)
	_, _ = again(context.Background(), nil, info, successHandler)

	families, err := reg.Gather()
	require.NoError(t, err)
	counts := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "grpc_server_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "code" {
					counts[l.GetValue()] = m.GetCounter().GetValue()
				}
			}
		}
	}
	assert.Equal(t, 3.0, counts[codes.OK.String()])
	assert.Equal(t, 1.0, counts[codes.FailedPrecondition.String()])
	assert.Equal(t, 1, testutil.CollectAndCount(reg, "grpc_server_request_duration_seconds"))
}

func TestNewInvalidPort(t *testing.T) {
	_, err := New(WithPort(0))
	assert.Error(t, err)

	_, err = New(WithPort(70000))
	assert.Error(t, err)
}

func TestServerHealthOverListener(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	reg := prometheus.NewRegistry()

	server, err := New(
		WithListener(lis),
		WithLogger(zaptest.NewLogger(t)),
		WithLogging(true),
		WithMetrics(reg),
	)
	require.NoError(t, err)
	server.RegisterServiceWithHealth("test.Service", func(s grpc.ServiceRegistrar) {})
	server.Start()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	health := healthpb.NewHealthClient(conn)
	resp, err := health.Check(ctx, &healthpb.HealthCheckRequest{Service: "test.Service"})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)

	server.SetServiceHealth("test.Service", healthpb.HealthCheckResponse_NOT_SERVING)
	resp, err = health.Check(ctx, &healthpb.HealthCheckRequest{Service: "test.Service"})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status)

	assert.Equal(t, 1, testutil.CollectAndCount(reg, "grpc_server_requests_total"))

	require.NoError(t, server.Shutdown(ctx))
}

func TestMetricsServer(t *testing.T) {
	reg := NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "labor_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Add(3)

	srv, err := NewMetricsServer(0, reg, zaptest.NewLogger(t))
	require.NoError(t, err)
	srv.Start()
	defer srv.Shutdown(context.Background())

	resp, err := http.Get("http://" + srv.Addr().String() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "labor_test_total 3")
	assert.Contains(t, string(body), "go_goroutines")
}
