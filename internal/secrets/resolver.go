// Package secrets resolves named credential bundles from AWS Secrets
// Manager at startup.
package secrets

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/Aquabet/webapp/internal/config"
)

type SecretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// DBCredentials is the JSON shape of a database secret.
type DBCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	DBName   string `json:"dbname"`
}

type Resolver struct {
	client SecretsAPI
}

func NewResolver(ctx context.Context, awsCfg config.AWSConfig) (*Resolver, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(awsCfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(awsCfg.AccessKeyID, awsCfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Resolver{client: secretsmanager.NewFromConfig(cfg)}, nil
}

// NewResolverWithClient wires a prebuilt client, used by tests.
func NewResolverWithClient(client SecretsAPI) *Resolver {
	return &Resolver{client: client}
}

func (r *Resolver) DatabaseCredentials(ctx context.Context, name string) (*DBCredentials, error) {
	out, err := r.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		return nil, fmt.Errorf("get secret %q: %w", name, err)
	}
	if out.SecretString == nil {
		return nil, fmt.Errorf("secret %q has no string payload", name)
	}

	var creds DBCredentials
	if err := json.Unmarshal([]byte(*out.SecretString), &creds); err != nil {
		return nil, fmt.Errorf("decode secret %q: %w", name, err)
	}
	return &creds, nil
}

// Apply overlays non-empty secret fields onto the DB config.
func (c *DBCredentials) Apply(db *config.DBConfig) {
	if c.Username != "" {
		db.User = c.Username
	}
	if c.Password != "" {
		db.Password = c.Password
	}
	if c.Host != "" {
		db.Host = c.Host
	}
	if c.Port != "" {
		db.Port = c.Port
	}
	if c.DBName != "" {
		db.Name = c.DBName
	}
}
