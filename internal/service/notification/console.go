package notification

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

var _ Messenger = (*ConsoleMessenger)(nil)

// ConsoleMessenger prints messages instead of delivering them. Used when no
// bot token is configured.
type ConsoleMessenger struct {
	out io.Writer
	seq atomic.Int64
}

func NewConsoleMessenger(out io.Writer) *ConsoleMessenger {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleMessenger{out: out}
}

func (c *ConsoleMessenger) SendToChannel(ctx context.Context, channelID, text string) (string, error) {
	id := fmt.Sprintf("console-%d", c.seq.Add(1))
	slog.Debug("console messenger send", "channel", channelID, "message", id)
	_, err := fmt.Fprintf(c.out, "[#%s] %s\n", channelID, text)
	return id, err
}

func (c *ConsoleMessenger) EditMessage(ctx context.Context, channelID, messageID, text string) error {
	_, err := fmt.Fprintf(c.out, "[#%s edit %s] %s\n", channelID, messageID, text)
	return err
}

func (c *ConsoleMessenger) SendDirect(ctx context.Context, userID, text string) error {
	_, err := fmt.Fprintf(c.out, "[@%s] %s\n", userID, text)
	return err
}
