// Package notifications defines the notification payload and the service
// interface used to deliver it to respondents and companies.
package notifications

import "context"

// Notification is a message ready to be delivered. Body holds the HTML
// version and PlainBody the text fallback.
type Notification struct {
	ToName    string
	ToAddress string
	ReplyTo   string
	Subject   string
	Body      string
	PlainBody string
}

// NotificationService is implemented by every delivery backend.
type NotificationService interface {
	New(conf any) error
	SendNotification(context.Context, *Notification) error
}
