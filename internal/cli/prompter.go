package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	invitationdomain "orgmembership/internal/invitation/domain"
	"orgmembership/internal/notification"
)

// linePrompter asks invitation questions on a line-oriented terminal.
type linePrompter struct {
	in  *bufio.Reader
	out io.Writer
	// tty is set when input is an interactive terminal; secrets are then read without echo.
	tty *os.File
}

var _ notification.Prompter = (*linePrompter)(nil)

func newLinePrompter(in io.Reader, out io.Writer) *linePrompter {
	p := &linePrompter{in: bufio.NewReader(in), out: out}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.tty = f
	}
	return p
}

// Confirm asks until the answer is accept, decline or skip. End of input
// counts as skip.
func (p *linePrompter) Confirm(ctx context.Context, inv *invitationdomain.Invitation) (notification.Choice, error) {
	inviter := inv.InvitedByEmail
	if inviter == "" {
		inviter = "an admin"
	}
	fmt.Fprintf(p.out, "You were invited to join %s by %s (%s).\n", inv.OrganizationName, inviter, humanize.Time(inv.CreatedAt))
	for {
		if err := ctx.Err(); err != nil {
			return notification.Dismiss, err
		}
		fmt.Fprint(p.out, "[a]ccept, [d]ecline or [s]kip? ")
		answer, err := p.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(p.out)
				return notification.Dismiss, nil
			}
			return notification.Dismiss, err
		}
		switch strings.ToLower(answer) {
		case "a", "accept", "y", "yes":
			return notification.Accept, nil
		case "d", "decline":
			return notification.Decline, nil
		case "s", "skip", "":
			return notification.Dismiss, nil
		}
	}
}

func (p *linePrompter) Alert(_ context.Context, message string) {
	fmt.Fprintln(p.out, message)
}

// Ask prints question and returns the trimmed answer.
func (p *linePrompter) Ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	return p.readLine()
}

// AskSecret is Ask without echoing the answer on a terminal.
func (p *linePrompter) AskSecret(question string) (string, error) {
	if p.tty == nil {
		return p.Ask(question)
	}
	fmt.Fprint(p.out, question)
	raw, err := term.ReadPassword(int(p.tty.Fd()))
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

func (p *linePrompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return strings.TrimSpace(line), err
	}
	return strings.TrimSpace(line), nil
}
