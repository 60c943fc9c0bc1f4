package tui

import (
	"fmt"
	"strings"

	"github.com/lucafehr/fishbuddy/internal/model/chat"
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("FishBuddy"))
	b.WriteString("\n\n")

	if !m.engine.Session().Ready() {
		b.WriteString(errorStyle.Render("not connected: thread creation failed, restart to retry"))
		b.WriteString("\n\n")
	}

	msgs := m.store.Messages()
	busy := m.engine.Busy()

	for i, msg := range msgs {
		last := i == len(msgs)-1

		switch msg.Role {
		case chat.RoleUser:
			b.WriteString(userStyle.Render("You:"))
			b.WriteString(" " + msg.Text + "\n")
			for _, f := range msg.Files {
				b.WriteString(fileStyle.Render(fmt.Sprintf("  attached %s (%s)", f.Filename, f.ID)))
				b.WriteString("\n")
			}

		case chat.RoleAssistant:
			text := strings.TrimRight(msg.Text, "\n")
			if text == "" {
				// The pending entry has no text yet; show the typing
				// indicator instead of an empty bubble.
				if last && busy {
					b.WriteString(assistantStyle.Render("FishBuddy:"))
					b.WriteString(" " + m.spin.View() + "thinking...\n")
				} else if last && m.interrupted {
					b.WriteString(errorStyle.Render("FishBuddy: [generation interrupted]"))
					b.WriteString("\n")
				}
				continue
			}

			b.WriteString(assistantStyle.Render("FishBuddy:"))
			b.WriteString("\n")
			for _, line := range strings.Split(text, "\n") {
				b.WriteString("  " + line + "\n")
			}
			if last && m.interrupted {
				b.WriteString(errorStyle.Render("  [generation interrupted]"))
				b.WriteString("\n")
			}
		}
	}

	b.WriteString("\n")
	if m.status != "" {
		if m.statusIsErr {
			b.WriteString(errorStyle.Render(m.status))
		} else {
			b.WriteString(statusStyle.Render(m.status))
		}
		b.WriteString("\n")
	}

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("/attach <path>  /detach <id>  /files  /context key=value  /quit"))
	b.WriteString("\n")

	return b.String()
}
