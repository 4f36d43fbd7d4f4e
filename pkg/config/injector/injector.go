package injector

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"

	"github.com/raywall/fake-ubersmith/pkg/cloud"
)

// Regex para capturar padrões ${tipo.chave}
// Ex: ${env.REDIS_ADDR}, ${ssm./fake/dsn}, ${secret.fixtures_db}
var pattern = regexp.MustCompile(`\$\{(env|ssm|secret)\.([^}]+)\}`)

// Resolver busca o valor de uma chave em uma fonte externa.
type Resolver func(ctx context.Context, key string) (string, error)

type Injector struct {
	ssm    Resolver
	secret Resolver
}

// New cria um injector que resolve ssm/secret na AWS.
func New() *Injector {
	return &Injector{
		ssm: func(ctx context.Context, key string) (string, error) {
			return cloud.ParameterStore(ctx, key, true)
		},
		secret: cloud.SecretsManager,
	}
}

// NewWithResolvers permite trocar as fontes ssm/secret (testes).
func NewWithResolvers(ssm, secret Resolver) *Injector {
	return &Injector{ssm: ssm, secret: secret}
}

// Inject percorre o struct e interpola todas as strings com ${...}.
func (i *Injector) Inject(ctx context.Context, target interface{}) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("target deve ser um ponteiro para struct não nulo")
	}
	return i.injectRecursive(ctx, v.Elem())
}

func (i *Injector) injectRecursive(ctx context.Context, v reflect.Value) error {
	switch v.Kind() {
	case reflect.Struct:
		for k := 0; k < v.NumField(); k++ {
			value := v.Field(k)

			// 1. Strings com interpolação "${...}"
			if value.Kind() == reflect.String && value.CanSet() {
				newValue, err := i.interpolateString(ctx, value.String())
				if err != nil {
					return err
				}
				value.SetString(newValue)
				continue
			}

			// 2. Recursão
			if value.CanSet() || value.Kind() == reflect.Ptr {
				if err := i.injectRecursive(ctx, value); err != nil {
					return err
				}
			}
		}

	case reflect.Map:
		if v.Type().Key().Kind() == reflect.String && !v.IsNil() {
			return i.injectMap(ctx, v)
		}

	case reflect.Ptr:
		if !v.IsNil() {
			return i.injectRecursive(ctx, v.Elem())
		}

	case reflect.Slice:
		for j := 0; j < v.Len(); j++ {
			elem := v.Index(j)
			if elem.Kind() == reflect.String && elem.CanSet() {
				newValue, err := i.interpolateString(ctx, elem.String())
				if err != nil {
					return err
				}
				elem.SetString(newValue)
				continue
			}
			if err := i.injectRecursive(ctx, elem); err != nil {
				return err
			}
		}
	}
	return nil
}

// interpolateString realiza a substituição baseada em Regex
func (i *Injector) interpolateString(ctx context.Context, input string) (string, error) {
	if !strings.Contains(input, "${") {
		return input, nil
	}

	var err error
	result := pattern.ReplaceAllStringFunc(input, func(match string) string {
		// match é algo como "${env.VAR_NAME}"
		sub := pattern.FindStringSubmatch(match)
		if len(sub) != 3 {
			return match
		}

		val, resolveErr := i.fetchValue(ctx, sub[1], sub[2])
		if resolveErr != nil {
			err = resolveErr
			return match
		}
		return val
	})

	return result, err
}

// injectMap lida com mapas dinâmicos (map[string]string e map[string]interface{})
func (i *Injector) injectMap(ctx context.Context, v reflect.Value) error {
	iter := v.MapRange()
	updates := make(map[string]reflect.Value)

	for iter.Next() {
		key := iter.Key()
		val := iter.Value()

		elem := val
		if val.Kind() == reflect.Interface {
			elem = val.Elem()
		}
		if !elem.IsValid() {
			continue
		}

		switch elem.Kind() {
		case reflect.String:
			newVal, err := i.interpolateString(ctx, elem.String())
			if err != nil {
				return err
			}
			updates[key.String()] = reflect.ValueOf(newVal).Convert(v.Type().Elem())
		case reflect.Map:
			if err := i.injectMap(ctx, elem); err != nil {
				return err
			}
		}
	}

	for k, val := range updates {
		v.SetMapIndex(reflect.ValueOf(k).Convert(v.Type().Key()), val)
	}
	return nil
}

// fetchValue centraliza a busca de dados
func (i *Injector) fetchValue(ctx context.Context, sourceType, key string) (string, error) {
	switch sourceType {
	case "env":
		// Variável não encontrada retorna vazio
		return os.Getenv(key), nil
	case "ssm":
		return i.ssm(ctx, key)
	case "secret":
		return i.secret(ctx, key)
	}
	return "", fmt.Errorf("fonte de injeção desconhecida: %s", sourceType)
}
