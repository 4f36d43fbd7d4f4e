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
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/redis/go-redis/v9"
)

// Source devolve um documento de fixtures já decodificado.
type Source interface {
	Fetch(ctx context.Context) (*Document, error)
}

// FileSource lê um arquivo ou todos os *.yaml, *.yml e *.json de um diretório,
// em ordem alfabética.
type FileSource struct {
	Path string
}

func (f FileSource) Fetch(ctx context.Context) (*Document, error) {
	info, err := os.Stat(f.Path)
	if err != nil {
		return nil, fmt.Errorf("fixtures path: %w", err)
	}
	if !info.IsDir() {
		return parseFile(f.Path)
	}

	entries, err := os.ReadDir(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml", ".json":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	doc := &Document{}
	for _, name := range names {
		part, err := parseFile(filepath.Join(f.Path, name))
		if err != nil {
			return nil, err
		}
		doc.Merge(part)
	}
	return doc, nil
}

func parseFile(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// S3Client interface para Mock
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type S3Source struct {
	Client S3Client
	Bucket string
	Key    string
}

func (s S3Source) Fetch(ctx context.Context) (*Document, error) {
	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("erro ao baixar do S3: %w", err)
	}
	defer out.Body.Close()

	raw, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

// DynamoClient define a interface para operações do DynamoDB (permite Mock)
type DynamoClient interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// dynamoItem é o formato dos itens na tabela: chave "id" e o documento em "document".
type dynamoItem struct {
	ID       string `dynamodbav:"id"`
	Document string `dynamodbav:"document"`
}

// DynamoSource lê o item Key ou, sem Key, todos os itens cujo id começa com Prefix.
type DynamoSource struct {
	Client DynamoClient
	Table  string
	Key    string
	Prefix string
}

func (d DynamoSource) Fetch(ctx context.Context) (*Document, error) {
	if d.Key != "" {
		out, err := d.Client.GetItem(ctx, &dynamodb.GetItemInput{
			TableName: aws.String(d.Table),
			Key:       map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: d.Key}},
		})
		if err != nil {
			return nil, fmt.Errorf("operation error DynamoDB: GetItem, %w", err)
		}
		if out.Item == nil {
			return nil, fmt.Errorf("fixture item %q not found in table %s", d.Key, d.Table)
		}
		var item dynamoItem
		if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
			return nil, fmt.Errorf("unmarshal dynamodb item: %w", err)
		}
		return Parse([]byte(item.Document))
	}

	prefix := d.Prefix
	if prefix == "" {
		prefix = "fixtures"
	}
	expr, err := expression.NewBuilder().
		WithFilter(expression.Name("id").BeginsWith(prefix)).
		Build()
	if err != nil {
		return nil, err
	}

	var items []dynamoItem
	input := &dynamodb.ScanInput{
		TableName:                 aws.String(d.Table),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}
	for {
		out, err := d.Client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("operation error DynamoDB: Scan, %w", err)
		}
		var page []dynamoItem
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal dynamodb items: %w", err)
		}
		items = append(items, page...)
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	doc := &Document{}
	for _, item := range items {
		part, err := Parse([]byte(item.Document))
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", item.ID, err)
		}
		doc.Merge(part)
	}
	return doc, nil
}

// RedisGetter é o subconjunto do client Redis usado aqui.
type RedisGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisSource lê o documento guardado como string em Key.
type RedisSource struct {
	Client RedisGetter
	Key    string
}

func (r RedisSource) Fetch(ctx context.Context) (*Document, error) {
	val, err := r.Client.Get(ctx, r.Key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis key %q not found", r.Key)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return Parse([]byte(val))
}

// SQLSource executa Query; cada linha traz um documento na primeira coluna.
type SQLSource struct {
	DB      *sql.DB
	Query   string
	Timeout time.Duration
}

func (s SQLSource) Fetch(ctx context.Context) (*Document, error) {
	timeout := s.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	ctxDb, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	rows, err := s.DB.QueryContext(ctxDb, s.Query)
	if err != nil {
		return nil, fmt.Errorf("erro na query SQL: %w", err)
	}
	defer rows.Close()

	doc := &Document{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		part, err := Parse(raw)
		if err != nil {
			return nil, err
		}
		doc.Merge(part)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return doc, nil
}
