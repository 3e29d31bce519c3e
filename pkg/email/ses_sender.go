package email

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/sirupsen/logrus"
)

type ServiceInterface interface {
	SendEmail(ctx context.Context, to, subject, plainTextContent, htmlContent string) error
}

// SESV2Sender sends mail through AWS SES v2.
type SESV2Sender struct {
	client    *sesv2.Client
	fromEmail string
	log       *logrus.Entry
}

// NewSESV2Sender creates a sender for Amazon SES. Credentials come from the
// default AWS chain.
func NewSESV2Sender(ctx context.Context, region, fromEmail string) (*SESV2Sender, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("email.NewSESV2Sender: %w", err)
	}

	return &SESV2Sender{
		client:    sesv2.NewFromConfig(cfg),
		fromEmail: fromEmail,
		log:       logrus.WithField("component", "email"),
	}, nil
}

func (s *SESV2Sender) SendEmail(ctx context.Context, to, subject, plainTextContent, htmlContent string) error {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.fromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Text: &types.Content{
						Data:    aws.String(plainTextContent),
						Charset: aws.String("UTF-8"),
					},
					Html: &types.Content{
						Data:    aws.String(htmlContent),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	out, err := s.client.SendEmail(ctx, input)
	if err != nil {
		s.log.WithError(err).WithField("to", to).Error("failed to send email via SES")
		return fmt.Errorf("email.SendEmail: %w", err)
	}

	s.log.WithFields(logrus.Fields{"to": to, "message_id": aws.ToString(out.MessageId)}).Info("email sent")
	return nil
}

// LogSender only logs outgoing mail. The reference server uses it when no SES
// region is configured.
type LogSender struct {
	Log *logrus.Entry
}

func (s LogSender) SendEmail(_ context.Context, to, subject, _, _ string) error {
	l := s.Log
	if l == nil {
		l = logrus.WithField("component", "email")
	}
	l.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("email not sent, no SES region configured")
	return nil
}
