package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minestat/launcher/internal/auth"
)

// ConsoleAuthorizer implements auth.DeviceAuthorizer for the terminal: the
// user completes the sign-in in their browser and pastes the issued tokens
// back. The provider only consumes the resulting grant.
type ConsoleAuthorizer struct {
	reader *bufio.Reader
	out    io.Writer
}

func NewConsoleAuthorizer(reader *bufio.Reader, out io.Writer) *ConsoleAuthorizer {
	return &ConsoleAuthorizer{reader: reader, out: out}
}

func (c *ConsoleAuthorizer) Authorize(ctx context.Context) (*auth.DeviceGrant, error) {
	fmt.Fprintln(c.out, "Complete the sign-in in your browser, then paste the issued tokens here.")

	access, err := GetSimpleText(c.reader, "Access token", c.out)
	if err != nil {
		return nil, err
	}
	if access == "" {
		return nil, errors.New("authorization cancelled")
	}

	refresh, err := GetSimpleText(c.reader, "Refresh token (optional, press Enter to skip)", c.out)
	if err != nil {
		return nil, err
	}

	return &auth.DeviceGrant{AccessToken: access, RefreshToken: refresh}, nil
}
