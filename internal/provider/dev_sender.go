package provider

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DevSender logs emails instead of delivering them. Useful for local runs
// without relay credentials.
type DevSender struct {
	logger *zap.Logger
}

func NewDevSender(logger *zap.Logger) *DevSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DevSender{logger: logger}
}

func (s *DevSender) Send(ctx context.Context, email Email) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if email.To == "" {
		return nil, fmt.Errorf("recipient address is required")
	}

	messageID := uuid.NewString()
	s.logger.Info("dev sender: email not delivered",
		zap.String("to", email.To),
		zap.String("subject", email.Subject),
		zap.Int("htmlBytes", len(email.HTML)),
		zap.String("messageId", messageID),
	)

	return &Receipt{StatusCode: 200, MessageID: messageID}, nil
}
