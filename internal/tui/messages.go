package tui

import "github.com/mgodinho/skunav/internal/workflow"

// Message types for the TUI

// WorkflowEventMsg carries an orchestrator event into the update loop
type WorkflowEventMsg struct {
	Event workflow.Event
}

// RecentsChangedMsg signals that the recents list should be re-read
type RecentsChangedMsg struct{}
