package cloud

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSSM struct {
	GetParameterFunc func(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

func (m *mockSSM) GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	return m.GetParameterFunc(ctx, params, optFns...)
}

type mockSecrets struct {
	GetSecretValueFunc func(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

func (m *mockSecrets) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	return m.GetSecretValueFunc(ctx, params, optFns...)
}

func TestGetParameter(t *testing.T) {
	t.Run("sucesso", func(t *testing.T) {
		client := &mockSSM{
			GetParameterFunc: func(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
				assert.Equal(t, "/fake/redis", *params.Name)
				assert.True(t, *params.WithDecryption)
				return &ssm.GetParameterOutput{Parameter: &types.Parameter{Value: aws.String("localhost:6379")}}, nil
			},
		}
		val, err := GetParameter(context.Background(), client, "/fake/redis", true)
		require.NoError(t, err)
		assert.Equal(t, "localhost:6379", val)
	})

	t.Run("erro do SDK", func(t *testing.T) {
		client := &mockSSM{
			GetParameterFunc: func(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
				return nil, errors.New("access denied")
			},
		}
		_, err := GetParameter(context.Background(), client, "/x", false)
		assert.ErrorContains(t, err, "access denied")
	})
}

func TestGetSecret(t *testing.T) {
	secret := func(s string) *mockSecrets {
		return &mockSecrets{
			GetSecretValueFunc: func(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
				return &secretsmanager.GetSecretValueOutput{SecretString: aws.String(s)}, nil
			},
		}
	}

	val, err := GetSecret(context.Background(), secret("plain"), "id")
	require.NoError(t, err)
	assert.Equal(t, "plain", val)

	val, err = GetSecret(context.Background(), secret(`{"value":"s3cr3t"}`), "id")
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", val)
}
