// Package input turns raw terminal bytes into key events and offers a
// bounded-wait poll over them.
package input

import "unicode/utf8"

// Event is one decoded key press, named the way bubbletea names keys
// ("q", "ctrl+c", "esc", "up").
type Event struct {
	Key string
}

// quitKeys are the keys that end the dashboard. Raw mode delivers ctrl+c as
// a byte instead of a signal, so it is handled here too.
var quitKeys = map[string]bool{
	"q":      true,
	"Q":      true,
	"ctrl+c": true,
}

// IsQuit reports whether e asks the dashboard to stop.
func IsQuit(e Event) bool { return quitKeys[e.Key] }

var csiKeys = map[byte]string{
	'A': "up",
	'B': "down",
	'C': "right",
	'D': "left",
	'H': "home",
	'F': "end",
}

// ctrlPunct names the control bytes above ctrl+z.
var ctrlPunct = map[byte]string{
	0x1c: "ctrl+\\",
	0x1d: "ctrl+]",
	0x1e: "ctrl+^",
	0x1f: "ctrl+_",
}

// Decode splits a chunk read from a raw-mode terminal into key events.
func Decode(b []byte) []Event {
	var out []Event
	for i := 0; i < len(b); i++ {
		c := b[i]
		switch {
		case c == 0x1b:
			if i+1 < len(b) && (b[i+1] == '[' || b[i+1] == 'O') {
				// CSI/SS3: skip parameters up to the final byte.
				j := i + 2
				for j < len(b) && (b[j] < 0x40 || b[j] > 0x7e) {
					j++
				}
				if j < len(b) {
					if name, ok := csiKeys[b[j]]; ok {
						out = append(out, Event{Key: name})
					} else {
						out = append(out, Event{Key: "unknown"})
					}
				}
				i = j
				continue
			}
			out = append(out, Event{Key: "esc"})
		case c == '\r' || c == '\n':
			out = append(out, Event{Key: "enter"})
		case c == '\t':
			out = append(out, Event{Key: "tab"})
		case c == 0x7f:
			out = append(out, Event{Key: "backspace"})
		case c == 0:
			out = append(out, Event{Key: "ctrl+@"})
		case c >= 0x1c && c <= 0x1f:
			out = append(out, Event{Key: ctrlPunct[c]})
		case c < 0x20:
			out = append(out, Event{Key: "ctrl+" + string(rune('a'+c-1))})
		default:
			r, size := utf8.DecodeRune(b[i:])
			out = append(out, Event{Key: string(r)})
			i += size - 1
		}
	}
	return out
}
