package client

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/catctl/audio"
	"github.com/lixenwraith/catctl/input"
	"github.com/lixenwraith/catctl/network"
)

// DefaultIdleDelay throttles unproductive polls
const DefaultIdleDelay = 10 * time.Millisecond

// Conn is the session the loop drives; *network.Conn implements it
type Conn interface {
	Send(token string) error
	Receive() ([]byte, error)
}

// Console receives the operator-facing transcript
type Console interface {
	Infof(format string, args ...any)
	Errorf(format string, args ...any)
}

// CuePlayer sounds client events; *audio.Cues implements it
type CuePlayer interface {
	Play(cue audio.Cue)
}

// Loop runs decode → send → receive → print until the session ends
type Loop struct {
	Decoder   *input.Decoder
	Conn      Conn
	Console   Console
	Cues      CuePlayer // optional
	IdleDelay time.Duration
	Log       *logrus.Entry // optional
}

// Run drives the session. It never sends a second command before the
// previous one's reply, close or error has been resolved.
func (l *Loop) Run(ctx context.Context) Result {
	log := l.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	for {
		select {
		case <-ctx.Done():
			log.Debug("loop canceled")
			return Result{Reason: ReasonCanceled, Err: ctx.Err()}
		default:
		}

		dec, err := l.Decoder.Next()
		if err != nil {
			l.Console.Errorf("Input failed: %v", err)
			l.play(audio.CueError)
			return Result{Reason: ReasonInputFailed, Err: err}
		}

		switch dec.Action {
		case input.ActionExit:
			l.Console.Infof("Exiting client.")
			return Result{Reason: ReasonLocalExit}

		case input.ActionSend:
			if res, done := l.roundTrip(dec.Command, log); done {
				return res
			}

		default:
			l.idle(ctx)
		}
	}
}

// roundTrip sends one command and resolves its single reply.
// done is true when the session is over.
func (l *Loop) roundTrip(cmd input.Command, log *logrus.Entry) (Result, bool) {
	token := cmd.Token()
	log = log.WithField("command", token)

	if err := l.Conn.Send(token); err != nil {
		log.WithError(err).Warn("send failed")
		l.Console.Errorf("send failed: %v", err)
		l.play(audio.CueError)
		return Result{Reason: ReasonSendFailed, Err: err}, true
	}
	l.Console.Infof("Sent: '%s'", token)
	l.play(audio.CueSent)

	reply, err := l.Conn.Receive()
	switch {
	case err == nil:
		text := network.ReplyText(reply)
		log.WithField("reply", text).Debug("reply")
		l.Console.Infof("Received from server: '%s'", text)
		l.play(audio.CueReply)

	case errors.Is(err, network.ErrPeerClosed):
		log.Info("peer closed connection")
		l.Console.Infof("Server closed the connection.")
		l.play(audio.CueClosed)
		return Result{Reason: ReasonPeerClosed}, true

	default:
		log.WithError(err).Warn("receive failed")
		l.Console.Errorf("recv failed: %v", err)
		l.play(audio.CueError)
		return Result{Reason: ReasonReceiveFailed, Err: err}, true
	}

	if cmd == input.CommandQuit {
		l.Console.Infof("Sent QUIT. Disconnecting.")
		return Result{Reason: ReasonQuit}, true
	}
	return Result{}, false
}

func (l *Loop) idle(ctx context.Context) {
	if l.IdleDelay <= 0 {
		return
	}
	t := time.NewTimer(l.IdleDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (l *Loop) play(cue audio.Cue) {
	if l.Cues != nil {
		l.Cues.Play(cue)
	}
}
