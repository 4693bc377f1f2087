// Package discord delivers notifications through the Discord REST API.
package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/KNICEX/candlekeeper/internal/service/notification"
	"github.com/bwmarrin/discordgo"
)

// https://discord.com/developers/docs/topics/opcodes-and-status-codes#json
const (
	codeUnknownChannel     = 10003
	codeUnknownMessage     = 10008
	codeMissingAccess      = 50001
	codeCannotDMUser       = 50007
	codeMissingPermissions = 50013
)

// Session is the part of *discordgo.Session the messenger uses.
type Session interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEdit(channelID, messageID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
}

var _ Session = (*discordgo.Session)(nil)

var _ notification.Messenger = (*Messenger)(nil)

type Messenger struct {
	session Session
}

func NewMessenger(session Session) *Messenger {
	return &Messenger{session: session}
}

// NewSession opens a REST-only bot session, no gateway connection is made.
func NewSession(token string) (*discordgo.Session, error) {
	return discordgo.New("Bot " + token)
}

func (m *Messenger) SendToChannel(ctx context.Context, channelID, text string) (string, error) {
	msg, err := m.session.ChannelMessageSend(channelID, text, discordgo.WithContext(ctx))
	if err != nil {
		return "", convertError("send to channel "+channelID, err)
	}
	return msg.ID, nil
}

func (m *Messenger) EditMessage(ctx context.Context, channelID, messageID, text string) error {
	_, err := m.session.ChannelMessageEdit(channelID, messageID, text, discordgo.WithContext(ctx))
	if err != nil {
		return convertError("edit message "+messageID, err)
	}
	return nil
}

func (m *Messenger) SendDirect(ctx context.Context, userID, text string) error {
	ch, err := m.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return convertError("open dm with "+userID, err)
	}
	if _, err = m.session.ChannelMessageSend(ch.ID, text, discordgo.WithContext(ctx)); err != nil {
		return convertError("send dm to "+userID, err)
	}
	return nil
}

func convertError(op string, err error) error {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return fmt.Errorf("discord: %s: %w: %w", op, notification.ErrDeliveryFailed, err)
	}

	kind := notification.ErrDeliveryFailed
	code := 0
	if restErr.Message != nil {
		code = restErr.Message.Code
	}
	switch code {
	case codeUnknownMessage:
		kind = notification.ErrMessageNotFound
	case codeUnknownChannel, codeMissingAccess, codeMissingPermissions, codeCannotDMUser:
		kind = notification.ErrChannelUnavailable
	default:
		if restErr.Response != nil && restErr.Response.StatusCode == http.StatusForbidden {
			kind = notification.ErrChannelUnavailable
		}
	}
	return fmt.Errorf("discord: %s: code=%d: %w", op, code, kind)
}
