package panekit

import (
	"log"
	"os"
	"time"
)

// Display is the external collaborator responsible for turning a pane
// tree into pixels or terminal cells (§6.3). The kernel never implements
// one directly — concrete backends (terminal, GUI) live outside this
// package and are wired in by an application through SetDisplay.
type Display interface {
	// Refresh is invoked once per event-loop iteration after the damage
	// scheduler has finished, so the backend can paint whatever panes it
	// tracks as dirty.
	Refresh(root *Pane)
	// Size returns the display's current extent in the units panes use
	// for their own geometry.
	Size() (w, h int)
}

// Editor is the kernel's top-level object: it owns the pane tree's root,
// the global command and keymap registries consulted by
// "global-set-command"/"global-set-keymap" bootstrap calls, the dispatcher's
// recursion/time-budget state, and the pending-free queue used by Close.
type Editor struct {
	root    *Pane
	display Display

	depth      int
	chainStart time.Time
	backtrace  []frame

	freeQueue []*Pane

	globalCommands map[string]*Command
	globalKeymap   *Keymap

	logger *log.Logger
}

// NewEditor constructs an Editor with a fresh root pane whose handler is a
// no-op lookup command backed by the global keymap, and registers the
// built-in bootstrap commands ("global-set-command", "global-set-keymap",
// "global-set-attr").
func NewEditor() *Editor {
	ed := &Editor{
		globalCommands: make(map[string]*Command),
		globalKeymap:   NewKeymap(),
		logger:         log.New(os.Stderr, "panekit: ", log.LstdFlags),
	}
	ed.root = &Pane{ed: ed}
	ed.root.handler = NewLookupCommand("global-keymap", ed.globalKeymap)
	ed.registerBootstrapCommands()
	return ed
}

// Root returns the editor's root pane.
func (ed *Editor) Root() *Pane { return ed.root }

// SetDisplay installs the Display backend consulted after each refresh
// pass. It may be nil, for headless operation (e.g. under test).
func (ed *Editor) SetDisplay(d Display) { ed.display = d }

// SetLogger overrides the default stderr logger.
func (ed *Editor) SetLogger(l *log.Logger) { ed.logger = l }

func (ed *Editor) logf(format string, args ...any) {
	if ed.logger != nil {
		ed.logger.Printf(format, args...)
	}
}

// GlobalKeymap returns the editor-wide fallback keymap consulted by the
// root pane's handler — the terminus of the parentward search for any
// call that no more specific pane answers.
func (ed *Editor) GlobalKeymap() *Keymap { return ed.globalKeymap }

// RegisterCommand records cmd under its name in the editor's command table,
// where LookupCommand finds it; the bootstrap "global-set-command" call does
// the same (§6.1).
func (ed *Editor) RegisterCommand(cmd *Command) {
	ed.globalCommands[cmd.Name()] = cmd
}

// LookupCommand returns a previously-registered global command by name.
func (ed *Editor) LookupCommand(name string) (*Command, bool) {
	c, ok := ed.globalCommands[name]
	return c, ok
}

// registerBootstrapCommands installs the handful of commands every editor
// needs before any feature pane exists: registering further commands,
// binding keys in the global keymap, and setting root-level attributes.
func (ed *Editor) registerBootstrapCommands() {
	ed.RegisterCommand(NewCommand("global-set-command", func(c *Call) Result {
		if c.Comm == nil {
			return Einval
		}
		ed.RegisterCommand(c.Comm)
		return 1
	}, true))

	ed.RegisterCommand(NewCommand("global-set-keymap", func(c *Call) Result {
		if c.Comm == nil || c.Str == "" {
			return Einval
		}
		ed.globalKeymap.Add(c.Str, c.Comm)
		return 1
	}, true))

	ed.RegisterCommand(NewCommand("global-set-attr", func(c *Call) Result {
		if c.Str == "" {
			return Einval
		}
		ed.root.AttrSet(c.Str, c.Str2)
		return 1
	}, true))
}

// queueFree enqueues a closed pane for deferred unlinking. Panes are not
// unlinked from their parent immediately on Close so that a handler still
// holding a reference during the same call chain can keep inspecting it
// (see the design note on closed-pane parent-link retention); FreeClosed
// performs the actual unlink once the caller is done with the current
// batch of operations.
func (ed *Editor) queueFree(p *Pane) {
	ed.freeQueue = append(ed.freeQueue, p)
}

// FreeClosed unlinks and releases every pane queued by Close since the
// last call to FreeClosed. Callers normally invoke this once per
// event-loop iteration, after dispatch and refresh have both finished
// with the current batch of input.
func (ed *Editor) FreeClosed() {
	q := ed.freeQueue
	ed.freeQueue = nil
	for _, p := range q {
		p.freeze()
	}
}

// RunRefresh drives one damage-resolution pass over the tree and, if a
// Display is attached, asks it to repaint.
func (ed *Editor) RunRefresh() {
	NewRefreshScheduler(ed).Run(ed.root)
	if ed.display != nil {
		ed.display.Refresh(ed.root)
	}
}
