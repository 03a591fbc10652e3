package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/require"
)

type fakeSNS struct {
	input *sns.PublishInput
	err   error
}

func (f *fakeSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("m-1")}, nil
}

func TestPublishVerification(t *testing.T) {
	fake := &fakeSNS{}
	p := NewSNSPublisherWithClient(fake, "arn:aws:sns:us-west-2:123:verify", "http://localhost:8080")

	err := p.PublishVerification(context.Background(), "alice@example.com", "tok-123")
	require.NoError(t, err)
	require.Equal(t, "arn:aws:sns:us-west-2:123:verify", *fake.input.TopicArn)

	var msg struct {
		Email            string `json:"email"`
		VerificationLink string `json:"verification_link"`
	}
	require.NoError(t, json.Unmarshal([]byte(*fake.input.Message), &msg))
	require.Equal(t, "alice@example.com", msg.Email)
	require.Equal(t, "http://localhost:8080/v1/user/verify?token=tok-123", msg.VerificationLink)
}

func TestPublishVerificationError(t *testing.T) {
	fake := &fakeSNS{err: errors.New("topic missing")}
	p := NewSNSPublisherWithClient(fake, "arn", "http://localhost:8080")

	err := p.PublishVerification(context.Background(), "alice@example.com", "tok")
	require.Error(t, err)
}
