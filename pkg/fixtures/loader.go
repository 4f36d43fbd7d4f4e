// Copyright 2025 Raywall Malheiros de Souza
// Licensed under the Mozilla Public License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.mozilla.org/en-US/MPL/2.0/
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package fixtures

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	_ "github.com/lib/pq" // Driver Postgres para a fonte SQL
	"github.com/raywall/fake-ubersmith/pkg/cloud"
	"github.com/raywall/fake-ubersmith/pkg/config"
	"github.com/raywall/fake-ubersmith/pkg/metrics"
	"github.com/raywall/fake-ubersmith/pkg/store"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SourceSQL seleciona a fonte SQL configurada em fixtures.sql.
const SourceSQL = "sql"

var ErrNoSource = errors.New("no fixtures source configured")

// Opener resolve a string de origem para um Source.
type Opener func(ctx context.Context, source string) (Source, error)

// Loader troca o conteúdo do Store pelo documento lido de uma origem.
type Loader struct {
	store    *store.Store
	conf     config.FixturesConf
	open     Opener
	provider metrics.Provider
	logger   zerolog.Logger
}

type LoaderOption func(*Loader)

// WithOpener substitui a resolução de origens (usado nos testes).
func WithOpener(o Opener) LoaderOption {
	return func(l *Loader) { l.open = o }
}

func WithMetrics(p metrics.Provider) LoaderOption {
	return func(l *Loader) { l.provider = p }
}

func WithLogger(logger zerolog.Logger) LoaderOption {
	return func(l *Loader) { l.logger = logger }
}

func NewLoader(st *store.Store, conf config.FixturesConf, opts ...LoaderOption) *Loader {
	l := &Loader{
		store:  st,
		conf:   conf,
		logger: log.With().Str("component", "fixtures").Logger(),
	}
	l.open = l.Open
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Fetch lê e decodifica a origem sem tocar no Store. Origem vazia usa a configurada.
func (l *Loader) Fetch(ctx context.Context, source string) (*Document, error) {
	if source == "" {
		source = l.conf.Source
	}
	if source == "" && l.conf.SQL.Enabled() {
		source = SourceSQL
	}
	if source == "" {
		return nil, ErrNoSource
	}

	src, err := l.open(ctx, source)
	if err != nil {
		return nil, err
	}
	return src.Fetch(ctx)
}

// Load substitui os dados do Store pelo documento. Em caso de erro o Store
// permanece como estava.
func (l *Loader) Load(ctx context.Context, source string) (*Document, error) {
	doc, err := l.Fetch(ctx, source)
	if err != nil {
		l.logger.Error().Err(err).Str("source", source).Msg("Load fixtures failed")
		return nil, err
	}

	if err := l.store.Replace(doc.Apply); err != nil {
		l.logger.Error().Err(err).Str("source", source).Msg("Apply fixtures failed")
		return nil, err
	}

	counts := doc.Counts()
	event := l.logger.Info().Str("source", source)
	for name, n := range counts {
		event = event.Int(name, n)
		if l.provider != nil {
			_ = l.provider.Gauge(metrics.FixturesLoaded, float64(n), []string{"collection:" + name})
		}
	}
	event.Msg("Fixtures loaded")
	return doc, nil
}

// Open interpreta a origem:
//
//	s3://bucket/key
//	dynamodb://table[/key][?prefix=fixtures]
//	redis://host:port/key[?db=N]
//	sql
//	file:///path ou caminho local (arquivo ou diretório)
func (l *Loader) Open(ctx context.Context, source string) (Source, error) {
	if source == SourceSQL {
		if !l.conf.SQL.Enabled() {
			return nil, fmt.Errorf("sql fixtures source requires fixtures.sql.driver")
		}
		return sqlDialer{conf: l.conf.SQL}, nil
	}

	switch {
	case strings.HasPrefix(source, "s3://"):
		bucket, key, ok := strings.Cut(strings.TrimPrefix(source, "s3://"), "/")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid s3 source: %s", source)
		}
		cfg, err := cloud.GetAWSConfig(ctx, "")
		if err != nil {
			return nil, fmt.Errorf("erro config aws: %w", err)
		}
		return S3Source{Client: s3.NewFromConfig(cfg), Bucket: bucket, Key: key}, nil

	case strings.HasPrefix(source, "dynamodb://"):
		u, err := url.Parse(source)
		if err != nil {
			return nil, fmt.Errorf("invalid dynamodb source: %w", err)
		}
		cfg, err := cloud.GetAWSConfig(ctx, "")
		if err != nil {
			return nil, fmt.Errorf("erro config aws: %w", err)
		}
		return DynamoSource{
			Client: dynamodb.NewFromConfig(cfg),
			Table:  u.Host,
			Key:    strings.TrimPrefix(u.Path, "/"),
			Prefix: u.Query().Get("prefix"),
		}, nil

	case strings.HasPrefix(source, "redis://"):
		u, err := url.Parse(source)
		if err != nil {
			return nil, fmt.Errorf("invalid redis source: %w", err)
		}
		key := strings.TrimPrefix(u.Path, "/")
		if key == "" {
			return nil, fmt.Errorf("redis source without key: %s", source)
		}
		db := 0
		if v := u.Query().Get("db"); v != "" {
			if db, err = strconv.Atoi(v); err != nil {
				return nil, fmt.Errorf("invalid redis db %q: %w", v, err)
			}
		}
		return redisDialer{
			opts: &redis.Options{Addr: u.Host, Password: l.conf.RedisPassword, DB: db},
			key:  key,
		}, nil
	}

	return FileSource{Path: strings.TrimPrefix(source, "file://")}, nil
}

// sqlDialer abre a conexão só durante a leitura.
type sqlDialer struct {
	conf config.SQLSourceConf
}

func (s sqlDialer) Fetch(ctx context.Context) (*Document, error) {
	db, err := sql.Open(s.conf.Driver, s.conf.DSN)
	if err != nil {
		return nil, fmt.Errorf("erro ao abrir conexão SQL: %w", err)
	}
	defer db.Close()
	return SQLSource{DB: db, Query: s.conf.Query}.Fetch(ctx)
}

type redisDialer struct {
	opts *redis.Options
	key  string
}

func (r redisDialer) Fetch(ctx context.Context) (*Document, error) {
	client := redis.NewClient(r.opts)
	defer client.Close()
	return RedisSource{Client: client, Key: r.key}.Fetch(ctx)
}
