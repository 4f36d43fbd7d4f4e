package dispatch

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/raywall/fake-ubersmith/pkg/config"
	"github.com/raywall/fake-ubersmith/pkg/envelope"
	"github.com/raywall/fake-ubersmith/pkg/metrics"
	"github.com/raywall/fake-ubersmith/pkg/rules"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Count(name string, value float64, tags []string) error {
	return m.Called(name, value, tags).Error(0)
}

func (m *MockProvider) Gauge(name string, value float64, tags []string) error {
	return m.Called(name, value, tags).Error(0)
}

func (m *MockProvider) Histogram(name string, value float64, tags []string) error {
	return m.Called(name, value, tags).Error(0)
}

// countingLocker registra quantas vezes o lock foi adquirido.
type countingLocker struct {
	sync.Mutex
	locks int
}

func (c *countingLocker) Lock() {
	c.Mutex.Lock()
	c.locks++
}

func echo(ctx context.Context, params Params) (envelope.Response, error) {
	return envelope.Success(map[string]string(params)), nil
}

// --- Tests ---

func TestRouter_Dispatch(t *testing.T) {
	r := NewRouter()
	r.Register("client.get", echo)

	t.Run("método registrado", func(t *testing.T) {
		resp, err := r.Dispatch(context.Background(), "client.get", Params{"client_id": "1"})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"client_id": "1"}, resp.Data)
	})

	t.Run("método desconhecido é fatal", func(t *testing.T) {
		_, err := r.Dispatch(context.Background(), "client.nope", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownMethod)
		assert.True(t, IsFatal(err))
	})

	t.Run("último registro vence", func(t *testing.T) {
		r.Register("client.get", func(ctx context.Context, params Params) (envelope.Response, error) {
			return envelope.Success("v2"), nil
		})
		resp, err := r.Dispatch(context.Background(), "client.get", nil)
		require.NoError(t, err)
		assert.Equal(t, "v2", resp.Data)
		assert.Equal(t, []string{"client.get", MethodDisableCrashMode, MethodEnableCrashMode}, r.Methods())
	})
}

func TestRouter_CrashMode(t *testing.T) {
	r := NewRouter()
	r.Register("client.get", echo)

	resp, err := r.Dispatch(context.Background(), MethodEnableCrashMode, nil)
	require.NoError(t, err)
	assert.Equal(t, "Crash Mode Enabled", resp.Data)
	assert.True(t, r.CrashMode())

	_, err = r.Dispatch(context.Background(), "client.get", nil)
	assert.ErrorIs(t, err, ErrCrashMode)
	assert.Contains(t, err.Error(), "Crash mode was enabled")

	t.Run("toggle idempotente", func(t *testing.T) {
		_, err := r.Dispatch(context.Background(), MethodEnableCrashMode, nil)
		require.NoError(t, err)
		assert.True(t, r.CrashMode())
	})

	resp, err = r.Dispatch(context.Background(), MethodDisableCrashMode, nil)
	require.NoError(t, err)
	assert.Equal(t, "Crash Mode Disabled", resp.Data)

	_, err = r.Dispatch(context.Background(), "client.get", nil)
	assert.NoError(t, err)
}

func TestRouter_CrashModeOverride(t *testing.T) {
	r := NewRouter()
	called := 0
	r.Register(MethodEnableCrashMode, func(ctx context.Context, params Params) (envelope.Response, error) {
		called++
		return envelope.Success("custom"), nil
	})

	resp, err := r.Dispatch(context.Background(), MethodEnableCrashMode, nil)
	require.NoError(t, err)
	assert.Equal(t, "custom", resp.Data)
	assert.Equal(t, 1, called, "o registro posterior substitui o toggle embutido")
	assert.False(t, r.CrashMode())

	t.Run("toggle substituído continua despachável em crash mode", func(t *testing.T) {
		r.setCrash(true)
		_, err := r.Dispatch(context.Background(), MethodEnableCrashMode, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, called)

		_, err = r.Dispatch(context.Background(), MethodDisableCrashMode, nil)
		require.NoError(t, err)
		assert.False(t, r.CrashMode())
	})
}

func TestRouter_HandlerFailures(t *testing.T) {
	r := NewRouter()
	r.Register("client.update", func(ctx context.Context, params Params) (envelope.Response, error) {
		return envelope.Response{}, Internal("client '%s' does not exist", params["client_id"])
	})
	r.Register("client.panic", func(ctx context.Context, params Params) (envelope.Response, error) {
		var m map[string]int
		m["boom"]++
		return envelope.Success(nil), nil
	})
	r.Register("client.get", func(ctx context.Context, params Params) (envelope.Response, error) {
		return envelope.Error(1, "Client ID '9' not found."), nil
	})

	_, err := r.Dispatch(context.Background(), "client.update", Params{"client_id": "9"})
	assert.ErrorIs(t, err, ErrInternal)
	var fe *FatalError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "client.update", fe.Method)

	_, err = r.Dispatch(context.Background(), "client.panic", nil)
	assert.ErrorIs(t, err, ErrInternal)

	resp, err := r.Dispatch(context.Background(), "client.get", nil)
	require.NoError(t, err, "erro de negócio não é fatal")
	assert.True(t, resp.Failed())
}

func TestRouter_Locker(t *testing.T) {
	locker := &countingLocker{}
	r := NewRouter(WithLocker(locker))
	r.Register("client.get", echo)

	_, _ = r.Dispatch(context.Background(), "client.get", nil)
	_, _ = r.Dispatch(context.Background(), MethodEnableCrashMode, nil)
	_, _ = r.Dispatch(context.Background(), "client.get", nil)

	assert.Equal(t, 2, locker.locks, "chamadas recusadas em crash mode não seguram o lock")
}

func TestRouter_DefaultLoggerIsSilent(t *testing.T) {
	var buf bytes.Buffer
	original := zlog.Logger
	zlog.Logger = zerolog.New(&buf).Level(zerolog.TraceLevel)
	defer func() { zlog.Logger = original }()

	r := NewRouter()
	r.Register("uber.check_login", echo)
	_, err := r.Dispatch(context.Background(), "uber.check_login", Params{"login": "john", "pass": "secret"})
	require.NoError(t, err)
	_, _ = r.Dispatch(context.Background(), MethodEnableCrashMode, nil)

	assert.Empty(t, buf.String())

	t.Run("WithLogger recebe o log de chamada", func(t *testing.T) {
		var out bytes.Buffer
		r := NewRouter(WithLogger(zerolog.New(&out).Level(zerolog.DebugLevel)))
		r.Register("client.get", echo)
		_, _ = r.Dispatch(context.Background(), "client.get", Params{"client_id": "1"})
		assert.Contains(t, out.String(), "Will call method")
	})
}

func TestRouter_Faults(t *testing.T) {
	rm, err := rules.NewRuleManager()
	require.NoError(t, err)
	fs, err := rules.NewFaultSet(rm, []config.FaultRule{
		{ID: "soft", When: "method == 'client.get' && params.client_id == '13'", ErrorCode: 999, Message: "locked"},
		{ID: "hard", When: "method == 'order.submit'", Message: "gateway down", Fatal: true},
	})
	require.NoError(t, err)

	r := NewRouter(WithFaults(fs))
	r.Register("client.get", echo)
	r.Register("order.submit", echo)

	resp, err := r.Dispatch(context.Background(), "client.get", Params{"client_id": "13"})
	require.NoError(t, err)
	assert.Equal(t, 999, *resp.ErrorCode)
	assert.Equal(t, "locked", resp.ErrorMessage)

	resp, err = r.Dispatch(context.Background(), "client.get", Params{"client_id": "1"})
	require.NoError(t, err)
	assert.False(t, resp.Failed())

	_, err = r.Dispatch(context.Background(), "order.submit", nil)
	assert.ErrorIs(t, err, ErrInternal)
	assert.Contains(t, err.Error(), "gateway down")

	t.Run("falhas não se aplicam aos toggles", func(t *testing.T) {
		all, err := rules.NewFaultSet(rm, []config.FaultRule{{ID: "all", When: "true", Message: "x", Fatal: true}})
		require.NoError(t, err)
		r := NewRouter(WithFaults(all))
		_, err = r.Dispatch(context.Background(), MethodEnableCrashMode, nil)
		assert.NoError(t, err)
	})
}

func TestRouter_MetricsAndRecords(t *testing.T) {
	provider := new(MockProvider)
	provider.On("Count", metrics.DispatchCalls, 1.0, []string{"method:client.get", "outcome:ok"}).Return(nil).Once()
	provider.On("Count", metrics.DispatchCalls, 1.0, []string{"method:client.nope", "outcome:fatal"}).Return(nil).Once()
	provider.On("Histogram", metrics.DispatchLatency, mock.Anything, mock.Anything).Return(nil)
	provider.On("Gauge", metrics.DispatchCrashMode, 1.0, mock.Anything).Return(nil).Once()
	provider.On("Count", metrics.DispatchCalls, 1.0, []string{"method:hidden.enable_crash_mode", "outcome:ok"}).Return(nil).Once()

	rec := NewRecorder(2)
	r := NewRouter(WithMetrics(provider, nil), WithRecorder(rec))
	r.Register("client.get", echo)

	_, _ = r.Dispatch(context.Background(), "client.get", Params{"client_id": "1"})
	_, _ = r.Dispatch(context.Background(), "client.nope", nil)
	_, _ = r.Dispatch(context.Background(), MethodEnableCrashMode, nil)

	provider.AssertExpectations(t)

	calls := rec.Calls()
	require.Len(t, calls, 2, "buffer limitado mantém as últimas chamadas")
	assert.Equal(t, "client.nope", calls[0].Method)
	assert.Equal(t, MethodEnableCrashMode, calls[1].Method)
	assert.Len(t, rec.ByMethod()["client.nope"], 1)

	rec.Reset()
	assert.Empty(t, rec.Calls())
}
