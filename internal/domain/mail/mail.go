package mail

import "context"

const (
	TemplateActivation        = "activation-mail.html"
	TemplateOrderConfirmation = "order-confirmation.html"
)

type Message struct {
	To       string
	Subject  string
	Template string
	Data     map[string]any
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}
