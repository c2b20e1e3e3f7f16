package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"proteinbuddy/internal/ledger"
)

// ErrEmailDisabled is returned when no sender address is configured
var ErrEmailDisabled = errors.New("email service disabled")

// SupportSubject is the subject of every support message
const SupportSubject = "Inquiry about MyProteinBuddy"

// sesAPI is the part of the SES client the email service uses
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService sends support messages via Amazon SES
type EmailService struct {
	client       sesAPI
	fromEmail    string
	fromName     string
	supportEmail string
	enabled      bool
	debug        bool
}

// NewEmailService creates a new email service. Support messages go to
// supportEmail, or to the sender address when it is empty.
func NewEmailService(awsRegion, fromEmail, fromName, supportEmail string, debug bool) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false, debug: debug}, nil
	}

	if debug {
		log.Printf("[DEBUG] Initializing email service with AWS SES")
		log.Printf("[DEBUG] AWS Region: %s", awsRegion)
		log.Printf("[DEBUG] From Email: %s", fromEmail)
		log.Printf("[DEBUG] Support Email: %s", supportEmail)
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)
	return newEmailService(sesv2.NewFromConfig(cfg), fromEmail, fromName, supportEmail, debug), nil
}

func newEmailService(client sesAPI, fromEmail, fromName, supportEmail string, debug bool) *EmailService {
	if supportEmail == "" {
		supportEmail = fromEmail
	}
	return &EmailService{
		client:       client,
		fromEmail:    fromEmail,
		fromName:     fromName,
		supportEmail: supportEmail,
		enabled:      true,
		debug:        debug,
	}
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendSupportMessage forwards a help request from userEmail to the support
// address. The sender's address is appended to the body.
func (s *EmailService) SendSupportMessage(ctx context.Context, userEmail, message string) error {
	if strings.TrimSpace(message) == "" {
		return &ledger.ValidationError{Field: "message", Message: "please enter a message"}
	}
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): support message from %s", userEmail)
		return ErrEmailDisabled
	}

	body := fmt.Sprintf("%s\nFrom: %s", message, userEmail)
	if s.debug {
		log.Printf("[DEBUG] Sending support message: from=%s, length=%d", userEmail, len(body))
	}
	return s.sendEmail(ctx, s.supportEmail, userEmail, SupportSubject, body)
}

// sendEmail sends a plain text email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, replyTo, subject, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}
	if replyTo != "" {
		input.ReplyToAddresses = []string{replyTo}
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		if s.debug {
			log.Printf("[DEBUG] SES SendEmail failed: %v", err)
		}
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	if s.debug && result.MessageId != nil {
		log.Printf("[DEBUG] Message ID: %s", *result.MessageId)
	}
	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
