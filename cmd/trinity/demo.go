package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/trinity-go/trinity/pkg/host"
	"github.com/trinity-go/trinity/pkg/trinity"
)

// counterNode is a per-session counter.
type counterNode struct {
	trinity.BaseNode
	Count *trinity.Signal[int]
}

func newCounterNode() *counterNode {
	n := &counterNode{Count: trinity.NewSignal(0)}
	n.Own(n.Count)
	return n
}

func (n *counterNode) Kind() trinity.Kind { return "counter" }

func (n *counterNode) View() map[string]trinity.AnyWatcher {
	return map[string]trinity.AnyWatcher{"value": n.Count}
}

func (n *counterNode) HandleEvent(name string, payload json.RawMessage) error {
	switch name {
	case "increment":
		n.Count.Update(func(v int) int { return v + 1 })
		return nil
	case "reset":
		n.Count.Set(0)
		return nil
	default:
		return fmt.Errorf("unknown counter event %q", name)
	}
}

// clockNode pushes the wall clock once a second. The ticker feeds a
// stream signal; a subscription folds arriving elements into the Now
// signal the view exposes.
type clockNode struct {
	trinity.BaseNode
	Now    *trinity.Signal[string]
	stream *trinity.StreamSignal[string]
	stop   chan struct{}
}

func newClockNode() *clockNode {
	n := &clockNode{
		Now:  trinity.NewSignal(""),
		stop: make(chan struct{}),
	}

	values := make(chan string)
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case t := <-ticker.C:
				select {
				case values <- t.UTC().Format(time.RFC3339):
				case <-n.stop:
					return
				}
			case <-n.stop:
				return
			}
		}
	}()

	n.stream = trinity.NewStreamSignal(values, nil)
	n.stream.Subscribe(func(v trinity.AsyncValue[string]) {
		if s, ok := v.Value(); ok {
			n.Now.Set(s)
		}
	})
	n.Own(n.stream, n.Now)
	return n
}

func (n *clockNode) Kind() trinity.Kind { return "clock" }

func (n *clockNode) View() map[string]trinity.AnyWatcher {
	return map[string]trinity.AnyWatcher{"now": n.Now}
}

func (n *clockNode) OnDispose() {
	close(n.stop)
}

// settingsNode holds shared preferences in the root scope.
type settingsNode struct {
	trinity.BaseNode
	Theme *trinity.Signal[string]
}

func newSettingsNode() *settingsNode {
	n := &settingsNode{Theme: trinity.NewSignal("light")}
	n.Own(n.Theme)
	return n
}

func (n *settingsNode) Kind() trinity.Kind { return "settings" }

// editorNode is the per-session face of the shared settings: its theme
// bridge re-emits the settings theme locally and writes back through
// the parent, so one session's change reaches every session.
type editorNode struct {
	trinity.BaseNode
	Theme *trinity.BridgeSignal[*settingsNode, string]
}

func newEditorNode() *editorNode {
	n := &editorNode{
		Theme: trinity.NewBridgeSignal("settings", func(s *settingsNode) *trinity.Signal[string] {
			return s.Theme
		}),
	}
	n.Own(n.Theme)
	return n
}

func (n *editorNode) Kind() trinity.Kind { return "editor" }

func (n *editorNode) View() map[string]trinity.AnyWatcher {
	return map[string]trinity.AnyWatcher{"theme": n.Theme}
}

func (n *editorNode) HandleEvent(name string, payload json.RawMessage) error {
	switch name {
	case "set_theme":
		var body struct {
			Theme string `json:"theme"`
		}
		if err := json.Unmarshal(payload, &body); err != nil {
			return err
		}
		if body.Theme == "" {
			return fmt.Errorf("set_theme requires a theme")
		}
		n.Theme.Set(body.Theme)
		return nil
	default:
		return fmt.Errorf("unknown editor event %q", name)
	}
}

var (
	_ host.ViewModel    = (*counterNode)(nil)
	_ host.EventHandler = (*counterNode)(nil)
	_ host.ViewModel    = (*clockNode)(nil)
	_ host.ViewModel    = (*editorNode)(nil)
	_ host.EventHandler = (*editorNode)(nil)
)
