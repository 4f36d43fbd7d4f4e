package config

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/raywall/fake-ubersmith/pkg/cloud"
	"github.com/raywall/fake-ubersmith/pkg/config/injector"
	"gopkg.in/yaml.v3"
)

// --- Interfaces para Mocking ---

type S3Downloader interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type DynamoGetter interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// Loader suporta múltiplas fontes de configuração (Local, S3, DynamoDB).
type Loader struct {
	validator *ConfigValidator
	injector  *injector.Injector
}

// NewLoader cria uma nova instância.
func NewLoader() *Loader {
	return &Loader{
		validator: NewValidator(),
		injector:  injector.New(),
	}
}

// Load detecta o esquema da fonte e carrega a configuração.
// Fonte vazia devolve Default() com os overrides de ambiente aplicados.
func (l *Loader) Load(ctx context.Context, source string) (*ServiceConfig, error) {
	if source == "" {
		cfg := Default()
		if err := ApplyEnv(cfg); err != nil {
			return nil, err
		}
		return cfg, l.validator.Validate(cfg)
	}

	var rawData []byte
	var err error

	switch {
	case strings.HasPrefix(source, "s3://"):
		awsCfg, cfgErr := cloud.GetAWSConfig(ctx, "")
		if cfgErr != nil {
			return nil, cfgErr
		}
		rawData, err = l.loadFromS3Internal(ctx, s3.NewFromConfig(awsCfg), source)

	case strings.HasPrefix(source, "dynamodb://"):
		awsCfg, cfgErr := cloud.GetAWSConfig(ctx, "")
		if cfgErr != nil {
			return nil, cfgErr
		}
		rawData, err = l.loadFromDynamoDBInternal(ctx, dynamodb.NewFromConfig(awsCfg), source)

	default:
		rawData, err = l.loadFromFile(source)
	}

	if err != nil {
		return nil, fmt.Errorf("falha leitura config (%s): %w", source, err)
	}

	return l.parseAndValidate(ctx, rawData)
}

// --- Estratégias de carregamento (métodos internos testáveis) ---

func (l *Loader) loadFromFile(path string) ([]byte, error) {
	// Suporta tanto "file://config.yaml" quanto apenas "config.yaml"
	return os.ReadFile(strings.TrimPrefix(path, "file://"))
}

func (l *Loader) loadFromS3Internal(ctx context.Context, client S3Downloader, uri string) ([]byte, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("URL S3 inválida: %w", err)
	}
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

func (l *Loader) loadFromDynamoDBInternal(ctx context.Context, client DynamoGetter, uri string) ([]byte, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("URL DynamoDB inválida: %w", err)
	}

	tableName := u.Host
	pkValue := strings.TrimPrefix(u.Path, "/")

	// Query Params opcionais: dynamodb://tabela/chave?col=dado&pk=Id
	colName := u.Query().Get("col")
	if colName == "" {
		colName = "config"
	}

	pkName := u.Query().Get("pk")
	if pkName == "" {
		pkName = "id"
	}

	out, err := client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &tableName,
		Key: map[string]types.AttributeValue{
			pkName: &types.AttributeValueMemberS{Value: pkValue},
		},
	})
	if err != nil {
		return nil, err
	}

	if out.Item == nil {
		return nil, fmt.Errorf("item não encontrado no DynamoDB")
	}

	var itemMap map[string]interface{}
	if err := attributevalue.UnmarshalMap(out.Item, &itemMap); err != nil {
		return nil, err
	}

	content, ok := itemMap[colName].(string)
	if !ok {
		return nil, fmt.Errorf("coluna '%s' inválida ou vazia no DynamoDB", colName)
	}

	return []byte(content), nil
}

// parseAndValidate aplica YAML sobre os defaults, injeta segredos, aplica env e valida.
func (l *Loader) parseAndValidate(ctx context.Context, data []byte) (*ServiceConfig, error) {
	cfg := Default()

	// 1. Unmarshal (YAML -> Struct)
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("YAML malformado: %w", err)
	}

	// 2. Injection (Env/Secrets/SSM)
	if err := l.injector.Inject(ctx, cfg); err != nil {
		return nil, fmt.Errorf("falha na injeção de variáveis: %w", err)
	}

	// 3. Overrides de ambiente
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}

	// 4. Validation
	if err := l.validator.Validate(cfg); err != nil {
		return nil, fmt.Errorf("validação da configuração falhou: %w", err)
	}

	return cfg, nil
}
