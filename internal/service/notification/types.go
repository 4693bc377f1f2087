package notification

import (
	"context"
	"errors"
)

var (
	// ErrChannelUnavailable the channel is missing or the bot may not post there.
	ErrChannelUnavailable = errors.New("channel unavailable")
	// ErrMessageNotFound the message to edit was deleted.
	ErrMessageNotFound = errors.New("message not found")
	ErrDeliveryFailed  = errors.New("delivery failed")
)

// Messenger 消息发送通道
//
//go:generate mockgen -package=notificationmock -destination=notificationmock/messenger.go -source=types.go Messenger
type Messenger interface {
	// SendToChannel posts text and returns the new message id.
	SendToChannel(ctx context.Context, channelID, text string) (string, error)
	EditMessage(ctx context.Context, channelID, messageID, text string) error
	SendDirect(ctx context.Context, userID, text string) error
}
