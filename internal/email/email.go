package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/carpool/internal/kafka"
)

type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.NotificationEvent) error {
	fmt.Printf("send email to user %s about %s: %s\n", event.UserID, event.Type, event.Message)
	return nil
}
