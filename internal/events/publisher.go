// Package events dispatches account notifications. Verification emails go
// out as JSON messages on an SNS topic; a downstream worker turns them into
// actual mail.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/Aquabet/webapp/internal/config"
)

type EmailPublisher interface {
	PublishVerification(ctx context.Context, email, token string) error
}

// SNSAPI is the single SNS call used, extracted for mocking.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNSPublisher struct {
	client   SNSAPI
	topicARN string
	baseURL  string
}

func NewSNSPublisher(ctx context.Context, awsCfg config.AWSConfig, topicARN, baseURL string) (*SNSPublisher, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(awsCfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(awsCfg.AccessKeyID, awsCfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &SNSPublisher{
		client:   sns.NewFromConfig(cfg),
		topicARN: topicARN,
		baseURL:  baseURL,
	}, nil
}

// NewSNSPublisherWithClient wires a prebuilt client, used by tests.
func NewSNSPublisherWithClient(client SNSAPI, topicARN, baseURL string) *SNSPublisher {
	return &SNSPublisher{client: client, topicARN: topicARN, baseURL: baseURL}
}

type verificationMessage struct {
	Email            string `json:"email"`
	VerificationLink string `json:"verification_link"`
}

func (p *SNSPublisher) PublishVerification(ctx context.Context, email, token string) error {
	msg := verificationMessage{
		Email:            email,
		VerificationLink: p.baseURL + "/v1/user/verify?token=" + token,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	out, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(payload)),
	})
	if err != nil {
		return err
	}

	slog.Info("published verification message", "email", email, "message_id", aws.ToString(out.MessageId))
	return nil
}
