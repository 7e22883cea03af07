package media

import (
	"context"
	"sync/atomic"
)

// Command is the last instruction issued to a ClientPlayer.
type Command string

const (
	CommandNone  Command = ""
	CommandPlay  Command = "play"
	CommandPause Command = "pause"
	CommandClose Command = "close"
)

// ClientPlayer records playback intent for a remote client (the browser)
// which performs the actual playback. It never fails.
type ClientPlayer struct {
	last     atomic.Value
	commands atomic.Int64
}

// NewClientPlayer creates a ClientPlayer.
func NewClientPlayer() *ClientPlayer {
	p := &ClientPlayer{}
	p.last.Store(CommandNone)
	return p
}

func (p *ClientPlayer) Play(_ context.Context, _ Track) error {
	p.record(CommandPlay)
	return nil
}

func (p *ClientPlayer) Pause(_ context.Context) error {
	p.record(CommandPause)
	return nil
}

func (p *ClientPlayer) Close() error {
	p.record(CommandClose)
	return nil
}

func (p *ClientPlayer) record(c Command) {
	p.last.Store(c)
	p.commands.Add(1)
}

// Last returns the most recent command.
func (p *ClientPlayer) Last() Command {
	return p.last.Load().(Command)
}

// Commands returns the number of commands issued.
func (p *ClientPlayer) Commands() int64 {
	return p.commands.Load()
}
