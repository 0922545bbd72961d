package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/verte-zerg/tuisplit/internal/model"
)

// DefaultKeys returns the key bindings used when the config sets none.
func DefaultKeys() model.KeyBindings {
	return model.KeyBindings{
		Split:     []string{"space", "enter"},
		Skip:      []string{"s"},
		Undo:      []string{"backspace"},
		Pause:     []string{"p"},
		Reset:     []string{"r"},
		Discard:   []string{"x"},
		Previous:  []string{"left"},
		Next:      []string{"right"},
		Method:    []string{"t"},
		UndoState: []string{"ctrl+z"},
		RedoState: []string{"ctrl+y"},
		Quit:      []string{"q", "ctrl+c"},
	}
}

type keyMap struct {
	Split     key.Binding
	Skip      key.Binding
	Undo      key.Binding
	Pause     key.Binding
	Reset     key.Binding
	Discard   key.Binding
	Previous  key.Binding
	Next      key.Binding
	Method    key.Binding
	UndoState key.Binding
	RedoState key.Binding
	Quit      key.Binding
}

func newKeyMap(kb model.KeyBindings) keyMap {
	def := DefaultKeys()
	return keyMap{
		Split:     binding(kb.Split, def.Split, "split"),
		Skip:      binding(kb.Skip, def.Skip, "skip"),
		Undo:      binding(kb.Undo, def.Undo, "undo split"),
		Pause:     binding(kb.Pause, def.Pause, "pause"),
		Reset:     binding(kb.Reset, def.Reset, "reset"),
		Discard:   binding(kb.Discard, def.Discard, "discard"),
		Previous:  binding(kb.Previous, def.Previous, "prev cmp"),
		Next:      binding(kb.Next, def.Next, "next cmp"),
		Method:    binding(kb.Method, def.Method, "method"),
		UndoState: binding(kb.UndoState, def.UndoState, "undo"),
		RedoState: binding(kb.RedoState, def.RedoState, "redo"),
		Quit:      binding(kb.Quit, def.Quit, "quit"),
	}
}

func binding(keys, fallback []string, desc string) key.Binding {
	if len(keys) == 0 {
		keys = fallback
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		// Bubble Tea reports the space bar as a literal space.
		if k == "space" {
			k = " "
		}
		names[i] = k
	}
	label := keys[0]
	return key.NewBinding(key.WithKeys(names...), key.WithHelp(label, desc))
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Split, k.Pause, k.Reset, k.Next, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Split, k.Skip, k.Undo, k.Pause},
		{k.Reset, k.Discard, k.Previous, k.Next},
		{k.Method, k.UndoState, k.RedoState, k.Quit},
	}
}
