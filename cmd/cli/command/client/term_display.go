package client

// term_display.go = terminal renderer for the watch command.

import (
	"fmt"
	"time"

	"github.com/fatih/color"

	"portalhub/internal/client"
	"portalhub/internal/notification"
)

// TermDisplay renders notifications to the terminal with priority colors.
type TermDisplay struct{}

func NewTermDisplay() *TermDisplay {
	return &TermDisplay{}
}

func (d *TermDisplay) Show(v client.View) {
	title := color.New(color.Bold)
	switch v.Priority {
	case notification.PriorityUrgent:
		title = color.New(color.Bold, color.FgRed)
	case notification.PriorityHigh:
		title = color.New(color.Bold, color.FgYellow)
	}

	badge := ""
	if v.Restored {
		badge = color.GreenString(" [restored]")
	} else if v.Source == client.SourceFeed {
		badge = color.BlueString(" [from admin]")
	}
	if v.Emphasis > 0 {
		badge += color.MagentaString(" [pulse %s]", v.Emphasis.Round(100*time.Millisecond))
	}

	fmt.Printf("%s %s%s\n", v.Icon, title.Sprint(v.Title), badge)
	fmt.Printf("   %s\n", v.Message)
	fmt.Printf("   %s · expires in %s\n",
		v.ShownAt.Format("15:04:05"),
		v.Remaining.Round(time.Second))
}

func (d *TermDisplay) Dismiss(key string) {
	fmt.Println(color.HiBlackString("-- dismissing %s", key))
}

func (d *TermDisplay) Remove(key string) {}

// BellNotifier is the fallback channel for the terminal: a bell plus an
// emphasized line when the note requires interaction.
type BellNotifier struct{}

func (BellNotifier) Notify(note client.DeviceNote) error {
	mark := ""
	if note.RequireInteraction {
		mark = color.RedString(" (!)")
	}
	fmt.Printf("\a%s %s%s\n", note.Icon, note.Title, mark)
	return nil
}
