package cloud

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// Interfaces para abstrair o SDK da AWS (Permite Mocking)
type SSMClient interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

type SecretsClient interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// ParameterStore lê um parâmetro do SSM usando o client real.
func ParameterStore(ctx context.Context, path string, decrypt bool) (string, error) {
	cfg, err := GetAWSConfig(ctx, "")
	if err != nil {
		return "", err
	}
	return GetParameter(ctx, ssm.NewFromConfig(cfg), path, decrypt)
}

// GetParameter é a lógica pura, testável via mock.
func GetParameter(ctx context.Context, client SSMClient, path string, decrypt bool) (string, error) {
	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &path,
		WithDecryption: &decrypt,
	})
	if err != nil {
		return "", fmt.Errorf("erro no SSM GetParameter: %w", err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("parâmetro SSM '%s' sem valor", path)
	}
	return *out.Parameter.Value, nil
}

// SecretsManager lê um segredo usando o client real.
func SecretsManager(ctx context.Context, secretID string) (string, error) {
	cfg, err := GetAWSConfig(ctx, "")
	if err != nil {
		return "", err
	}
	return GetSecret(ctx, secretsmanager.NewFromConfig(cfg), secretID)
}

// GetSecret devolve o segredo. Um segredo JSON com chave "value" é desembrulhado.
func GetSecret(ctx context.Context, client SecretsClient, secretID string) (string, error) {
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: &secretID,
	})
	if err != nil {
		return "", fmt.Errorf("erro no SecretsManager: %w", err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("segredo '%s' sem SecretString", secretID)
	}

	val := *out.SecretString

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(val), &data); err == nil {
		if v, ok := data["value"]; ok {
			return fmt.Sprintf("%v", v), nil
		}
	}
	return val, nil
}
