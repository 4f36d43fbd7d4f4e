package fixtures

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/raywall/fake-ubersmith/pkg/config"
	"github.com/raywall/fake-ubersmith/pkg/metrics"
	"github.com/raywall/fake-ubersmith/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

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

type staticSource struct {
	doc *Document
	err error
}

func (s staticSource) Fetch(ctx context.Context) (*Document, error) {
	return s.doc, s.err
}

func TestLoader_LoadFromDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clients.yaml"), []byte("clients:\n  - clientid: \"1\"\n  - clientid: \"2\"\n"), 0o644))

	provider := new(MockProvider)
	provider.On("Gauge", metrics.FixturesLoaded, 2.0, []string{"collection:clients"}).Return(nil).Once()
	provider.On("Gauge", metrics.FixturesLoaded, mock.Anything, mock.Anything).Return(nil)

	st := store.New()
	st.EventLog = append(st.EventLog, map[string]string{"old": "event"})

	l := NewLoader(st, config.FixturesConf{Source: "file://" + dir}, WithMetrics(provider))
	doc, err := l.Load(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, doc.Clients, 2)

	assert.Len(t, st.Clients, 2)
	assert.Empty(t, st.EventLog, "load substitui todo o conteúdo")
	provider.AssertExpectations(t)
}

func TestLoader_FailureKeepsData(t *testing.T) {
	st := store.New()
	st.Clients = []store.Record{{"clientid": "keep"}}

	l := NewLoader(st, config.FixturesConf{}, WithOpener(func(ctx context.Context, source string) (Source, error) {
		assert.Equal(t, "s3://bucket/key", source)
		return staticSource{err: errors.New("boom")}, nil
	}))

	_, err := l.Load(context.Background(), "s3://bucket/key")
	require.Error(t, err)
	assert.Len(t, st.Clients, 1)
}

func TestLoader_NoSource(t *testing.T) {
	l := NewLoader(store.New(), config.FixturesConf{})
	_, err := l.Load(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoSource)
}

func TestLoader_Open(t *testing.T) {
	l := NewLoader(store.New(), config.FixturesConf{RedisPassword: "pwd"})
	ctx := context.Background()

	tests := []struct {
		name    string
		source  string
		check   func(t *testing.T, src Source)
		wantErr bool
	}{
		{
			name:   "arquivo",
			source: "file:///tmp/fixtures",
			check: func(t *testing.T, src Source) {
				assert.Equal(t, FileSource{Path: "/tmp/fixtures"}, src)
			},
		},
		{
			name:   "caminho simples",
			source: "./fixtures",
			check: func(t *testing.T, src Source) {
				assert.Equal(t, FileSource{Path: "./fixtures"}, src)
			},
		},
		{
			name:   "redis",
			source: "redis://localhost:6379/fixtures?db=2",
			check: func(t *testing.T, src Source) {
				d, ok := src.(redisDialer)
				require.True(t, ok)
				assert.Equal(t, "fixtures", d.key)
				assert.Equal(t, "localhost:6379", d.opts.Addr)
				assert.Equal(t, 2, d.opts.DB)
				assert.Equal(t, "pwd", d.opts.Password)
			},
		},
		{name: "redis sem chave", source: "redis://localhost:6379", wantErr: true},
		{name: "redis db inválido", source: "redis://localhost:6379/k?db=x", wantErr: true},
		{name: "s3 sem chave", source: "s3://bucket", wantErr: true},
		{name: "sql não configurado", source: SourceSQL, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := l.Open(ctx, tt.source)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, src)
		})
	}

	t.Run("sql configurado", func(t *testing.T) {
		conf := config.FixturesConf{SQL: config.SQLSourceConf{Driver: "postgres", DSN: "postgres://localhost/db", Query: "SELECT 1"}}
		l := NewLoader(store.New(), conf)
		src, err := l.Open(ctx, SourceSQL)
		require.NoError(t, err)
		assert.IsType(t, sqlDialer{}, src)
	})
}
