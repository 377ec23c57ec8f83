package tui

import "github.com/mgodinho/skunav/internal/workflow"

// ChannelSink adapts workflow.Sink to a channel for Bubble Tea.
type ChannelSink struct {
	ch chan<- workflow.Event
}

// NewChannelSink creates a new channel-based sink.
func NewChannelSink(ch chan<- workflow.Event) *ChannelSink {
	return &ChannelSink{ch: ch}
}

// Emit sends the event to the channel (non-blocking if full).
func (s *ChannelSink) Emit(e workflow.Event) {
	select {
	case s.ch <- e:
	default: // Non-blocking if channel full
	}
}
