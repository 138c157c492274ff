// Package ui is the interactive terminal front end. It owns the screen for
// the life of the process and translates raw input into intents for the
// controller goroutine; everything that touches the network or disk lives on
// the controller side.
package ui

import (
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/tidecast/tidecast/internal/config"
	"github.com/tidecast/tidecast/internal/keymap"
	"github.com/tidecast/tidecast/internal/models"
	"github.com/tidecast/tidecast/internal/msg"
)

// tickRate is the delay between event loop passes. It bounds input latency
// and idle CPU usage.
const tickRate = 20 * time.Millisecond

// Focus identifies which panel receives directional and action input.
type Focus int

const (
	FocusPodcasts Focus = iota
	FocusEpisodes
	FocusDetails
)

// App ties the widgets together: it runs the event loop, routes input, and
// applies controller commands. It must only be touched from its own
// goroutine.
type App struct {
	screen   tcell.Screen
	cfg      config.Config
	keymap   *keymap.Keymap
	theme    *Theme
	events   chan tcell.Event
	intents  chan<- msg.Envelope
	commands <-chan msg.Command

	rows int
	cols int

	podcasts   *Menu[*models.Podcast]
	episodes   *Menu[*models.Episode]
	details    *DetailsView // nil while the terminal is too narrow
	focus      Focus
	statusLine *StatusLine
	popups     *PopupStack
}

// Run creates the screen, runs the event loop until the controller sends
// TearDown, and restores the terminal. It is intended to run on its own
// goroutine for the interactive life of the process.
func Run(cfg config.Config, km *keymap.Keymap, library *models.Library, intents chan<- msg.Envelope, commands <-chan msg.Command) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	app := newApp(screen, cfg, km, library, events, intents, commands)
	app.init()
	app.loop()
	screen.Fini()
	return nil
}

func newApp(screen tcell.Screen, cfg config.Config, km *keymap.Keymap, library *models.Library, events chan tcell.Event, intents chan<- msg.Envelope, commands <-chan msg.Command) *App {
	cols, rows := screen.Size()
	theme := NewTheme(cfg.Colors)
	podCol, epCol, detCol := calculateSizes(cols, cfg.DetailsThreshold)

	a := &App{
		screen:   screen,
		cfg:      cfg,
		keymap:   km,
		theme:    theme,
		events:   events,
		intents:  intents,
		commands: commands,
		rows:     rows,
		cols:     cols,
		focus:    FocusPodcasts,
	}

	a.podcasts = NewMenu(NewPanel(screen, theme, "Podcasts", rows-1, podCol, 0), theme, library.Podcasts)
	a.episodes = NewMenu(NewPanel(screen, theme, "Episodes", rows-1, epCol, podCol-1), theme, a.selectedEpisodes())
	if detCol > 0 {
		a.details = NewDetailsView(NewPanel(screen, theme, "Details", rows-1, detCol, podCol+epCol-2), theme)
	}
	a.statusLine = NewStatusLine(screen, theme, events, rows, cols)
	a.popups = NewPopupStack(screen, theme, km, rows, cols)
	return a
}

// init performs the first draw: initial focus on the podcast list, plus the
// welcome overlay when the library is empty.
func (a *App) init() {
	a.podcasts.Redraw()
	a.episodes.Redraw()
	a.podcasts.Activate()
	a.updateDetails()
	a.statusLine.Redraw()

	if a.podcasts.Items().IsEmpty() {
		a.popups.SpawnWelcomeWin()
	}
	a.screen.Show()
}

// loop is the main event loop: expire notifications, poll for one input
// event, drain at most one controller command, flush, sleep. It returns
// when the controller sends TearDown.
func (a *App) loop() {
	for {
		a.statusLine.CheckNotifs()

		if intent := a.poll(); intent != nil {
			a.intents <- msg.FromUI(intent)
		}

		select {
		case cmd := <-a.commands:
			if a.apply(cmd) {
				return
			}
		default:
		}

		if a.popups.IsPopupActive() {
			a.popups.Redraw()
		}
		a.screen.Show()

		time.Sleep(tickRate)
	}
}

// poll performs a non-blocking check for one terminal event and routes it.
func (a *App) poll() msg.Intent {
	select {
	case ev, ok := <-a.events:
		if !ok {
			return nil
		}
		switch ev := ev.(type) {
		case *tcell.EventResize:
			cols, rows := ev.Size()
			a.resize(cols, rows)
		case *tcell.EventKey:
			return a.handleKey(ev)
		}
	default:
	}
	return nil
}

// apply handles one controller command. It returns true on TearDown.
func (a *App) apply(cmd msg.Command) bool {
	switch cmd := cmd.(type) {
	case msg.RefreshMenus:
		a.updateMenus()
	case msg.TimedNotification:
		a.statusLine.TimedNotif(cmd.Text, cmd.Duration, cmd.Error)
	case msg.PersistentNotification:
		a.statusLine.PersistentNotif(cmd.Text, cmd.Error)
	case msg.ClearPersistentNotification:
		a.statusLine.ClearPersistentNotif()
	case msg.TearDown:
		return true
	case msg.ShowDownloadPicker:
		titles := make([]string, len(cmd.EpisodeIDs))
		if pod, ok := a.podcasts.Items().Get(cmd.PodcastID); ok {
			for i, id := range cmd.EpisodeIDs {
				pod.Episodes.Borrow(id, func(e *models.Episode) {
					titles[i] = e.Title
				})
			}
		}
		a.popups.SpawnDownloadWin(cmd.PodcastID, cmd.EpisodeIDs, titles, cmd.Preselected)
	}
	return false
}

// handleKey is the input router: welcome dismissal, popup routing, then the
// keybinding table. Branches with unmet preconditions return nil.
func (a *App) handleKey(ev *tcell.EventKey) msg.Intent {
	podID, podOK := a.podcasts.SelectedID()
	epID, epOK := a.episodes.SelectedID()

	// the welcome overlay goes away once the library has podcasts; the
	// key is not consumed
	if a.popups.WelcomeActive() && !a.podcasts.Items().IsEmpty() {
		a.popups.TurnOffWelcomeWin()
		a.updateMenus()
	}

	if a.popups.IsNonWelcomePopupActive() {
		intent := a.popups.HandleInput(ev)
		if !a.popups.IsPopupActive() {
			a.updateMenus()
			if a.details != nil {
				a.updateDetails()
			}
		}
		return intent
	}

	action, ok := a.keymap.Lookup(keymap.Describe(ev))
	if !ok {
		return nil
	}

	switch action {
	case keymap.Down, keymap.Up, keymap.Left, keymap.Right,
		keymap.PageUp, keymap.PageDown, keymap.BigUp, keymap.BigDown,
		keymap.GoTop, keymap.GoBot:
		a.moveCursor(action, podOK, epOK)

	case keymap.AddFeed:
		url := a.prompt("Feed URL: ")
		if url != "" {
			return msg.AddFeed{URL: url}
		}

	case keymap.Sync:
		if podOK {
			return msg.Sync{PodcastID: podID}
		}
	case keymap.SyncAll:
		if !a.podcasts.Items().IsEmpty() {
			return msg.SyncAll{}
		}

	case keymap.Play:
		if podOK && epOK {
			return msg.Play{PodcastID: podID, EpisodeID: epID}
		}

	case keymap.MarkPlayed:
		if a.focus == FocusEpisodes && podOK && epOK {
			played := false
			if a.episodes.Items().Borrow(epID, func(e *models.Episode) { played = e.Played }) {
				return msg.MarkPlayed{PodcastID: podID, EpisodeID: epID, Played: !played}
			}
		}
	case keymap.MarkAllPlayed:
		// flips everything to played unless every episode already is,
		// and only then flips everything to unplayed
		if podOK {
			allPlayed := false
			if a.podcasts.Items().Borrow(podID, func(p *models.Podcast) { allPlayed = p.AllPlayed() }) {
				return msg.MarkAllPlayed{PodcastID: podID, Played: !allPlayed}
			}
		}

	case keymap.Download:
		if podOK && epOK {
			return msg.Download{PodcastID: podID, EpisodeID: epID}
		}
	case keymap.DownloadAll:
		if podOK {
			return msg.DownloadAll{PodcastID: podID}
		}

	case keymap.Delete:
		if a.focus == FocusEpisodes && podOK && epOK {
			if a.askConfirm("Delete the local file?") {
				return msg.Delete{PodcastID: podID, EpisodeID: epID}
			}
		}
	case keymap.DeleteAll:
		if podOK {
			return msg.DeleteAll{PodcastID: podID}
		}
	case keymap.UnmarkDownloaded:
		if a.focus == FocusEpisodes && podOK && epOK {
			return msg.UnmarkDownloaded{PodcastID: podID, EpisodeID: epID}
		}

	case keymap.Remove:
		switch a.focus {
		case FocusPodcasts:
			return a.removePodcast(podID, podOK)
		case FocusEpisodes:
			return a.removeEpisode(podID, podOK, epID, epOK)
		}
	case keymap.RemoveAll:
		switch a.focus {
		case FocusPodcasts:
			return a.removePodcast(podID, podOK)
		case FocusEpisodes:
			return a.removeAllEpisodes(podID, podOK)
		}

	case keymap.FilterPlayed:
		return msg.FilterChange{Kind: msg.FilterPlayed}
	case keymap.FilterDownloaded:
		return msg.FilterChange{Kind: msg.FilterDownloaded}

	case keymap.Help:
		a.popups.SpawnHelpWin()

	case keymap.Quit:
		return msg.Quit{}
	}
	return nil
}

// moveCursor handles the directional actions: left/right walk the focus
// state machine, everything else becomes a scroll request.
func (a *App) moveCursor(action keymap.Action, podOK, epOK bool) {
	switch action {
	case keymap.Down:
		a.scrollFocused(ScrollRequest{Dir: ScrollDown, Amount: 1}, podOK)
	case keymap.Up:
		a.scrollFocused(ScrollRequest{Dir: ScrollUp, Amount: 1}, podOK)

	case keymap.Left:
		if !podOK {
			return
		}
		switch a.focus {
		case FocusEpisodes:
			a.focus = FocusPodcasts
			a.podcasts.Activate()
			a.episodes.Deactivate(false)
		case FocusDetails:
			a.focus = FocusEpisodes
			a.episodes.Activate()
		}

	case keymap.Right:
		if !podOK || !epOK {
			return
		}
		switch a.focus {
		case FocusPodcasts:
			a.focus = FocusEpisodes
			a.podcasts.Deactivate(true)
			a.episodes.Activate()
		case FocusEpisodes:
			// details keep showing the episode selection, so the
			// menu keeps a muted highlight
			if a.details != nil {
				a.focus = FocusDetails
				a.episodes.Deactivate(true)
			}
		}

	case keymap.PageUp:
		a.scrollFocused(ScrollRequest{Dir: ScrollUp, Amount: a.pageAmount()}, podOK)
	case keymap.PageDown:
		a.scrollFocused(ScrollRequest{Dir: ScrollDown, Amount: a.pageAmount()}, podOK)
	case keymap.BigUp:
		a.scrollFocused(ScrollRequest{Dir: ScrollUp, Amount: a.bigAmount()}, podOK)
	case keymap.BigDown:
		a.scrollFocused(ScrollRequest{Dir: ScrollDown, Amount: a.bigAmount()}, podOK)
	case keymap.GoTop:
		a.scrollFocused(ScrollRequest{Dir: ScrollUp, Amount: ScrollMax}, podOK)
	case keymap.GoBot:
		a.scrollFocused(ScrollRequest{Dir: ScrollDown, Amount: ScrollMax}, podOK)
	}
}

func (a *App) pageAmount() int {
	n := a.rows - 3
	if n < 1 {
		n = 1
	}
	return n
}

func (a *App) bigAmount() int {
	n := a.rows / a.cfg.BigScrollDivisor
	if n < 1 {
		n = 1
	}
	return n
}

// scrollFocused dispatches a scroll request to the focused widget. Podcast
// scrolling cascades: the episode menu is reset and refilled from the newly
// selected podcast.
func (a *App) scrollFocused(req ScrollRequest, podOK bool) {
	switch a.focus {
	case FocusPodcasts:
		if podOK {
			a.podcasts.Scroll(req)
			a.episodes.ResetSelection()
			a.episodes.SetItems(a.selectedEpisodes())
			a.episodes.Redraw()
			a.updateDetails()
		}
	case FocusEpisodes:
		if podOK {
			a.episodes.Scroll(req)
			a.updateDetails()
		}
	case FocusDetails:
		if a.details != nil {
			a.details.Scroll(req)
		}
	}
}

// resize recomputes column widths, resizes every widget, and creates or
// destroys the details view as the third column appears or vanishes.
func (a *App) resize(cols, rows int) {
	a.cols = cols
	a.rows = rows
	a.screen.Sync()

	podCol, epCol, detCol := calculateSizes(cols, a.cfg.DetailsThreshold)
	a.podcasts.Resize(rows-1, podCol, 0)
	a.episodes.Resize(rows-1, epCol, podCol-1)
	a.podcasts.Redraw()
	a.episodes.Redraw()

	if a.details != nil {
		if detCol > 0 {
			a.details.Resize(rows-1, detCol, podCol+epCol-2)
			a.updateDetails()
		} else {
			a.details = nil
			if a.focus == FocusDetails {
				a.focus = FocusEpisodes
				a.episodes.Activate()
			}
		}
	} else if detCol > 0 {
		a.details = NewDetailsView(NewPanel(a.screen, a.theme, "Details", rows-1, detCol, podCol+epCol-2), a.theme)
		a.updateDetails()
	}

	a.popups.Resize(rows, cols)
	a.statusLine.Resize(rows, cols)
}

// calculateSizes splits the terminal width into podcast, episode, and
// details columns. Below the threshold the details column is zero and the
// other two split the width. Panels share border columns, hence the +1/+2.
func calculateSizes(nCol, detailsThreshold int) (podCol, epCol, detCol int) {
	if nCol > detailsThreshold {
		podCol = (nCol + 2) / 3
		epCol = (nCol + 2) / 3
		detCol = nCol + 2 - podCol - epCol
	} else {
		podCol = (nCol + 1) / 2
		epCol = nCol + 1 - podCol
		detCol = 0
	}
	return podCol, epCol, detCol
}

// removePodcast runs the two-question removal flow for the selected podcast.
func (a *App) removePodcast(podID int64, podOK bool) msg.Intent {
	if !podOK {
		return nil
	}
	if !a.askConfirm("Remove the podcast?") {
		return nil
	}
	deleteFiles := false
	if a.podcastHasFiles(podID) {
		deleteFiles = a.askDeleteFiles("Delete local files too?")
	}
	return msg.RemovePodcast{PodcastID: podID, DeleteFiles: deleteFiles}
}

// removeEpisode runs the two-question removal flow for the selected episode.
func (a *App) removeEpisode(podID int64, podOK bool, epID int64, epOK bool) msg.Intent {
	if !podOK || !epOK {
		return nil
	}
	if !a.askConfirm("Remove the episode?") {
		return nil
	}
	deleteFiles := false
	downloaded := false
	a.episodes.Items().Borrow(epID, func(e *models.Episode) { downloaded = e.Downloaded() })
	if downloaded {
		deleteFiles = a.askDeleteFiles("Delete local file too?")
	}
	return msg.RemoveEpisode{PodcastID: podID, EpisodeID: epID, DeleteFiles: deleteFiles}
}

// removeAllEpisodes removes every episode of the selected podcast; the file
// question is asked but not the removal confirmation, matching the single
// "remove all" gesture.
func (a *App) removeAllEpisodes(podID int64, podOK bool) msg.Intent {
	if !podOK {
		return nil
	}
	deleteFiles := false
	if a.podcastHasFiles(podID) {
		deleteFiles = a.askDeleteFiles("Delete local files too?")
	}
	return msg.RemoveAllEpisodes{PodcastID: podID, DeleteFiles: deleteFiles}
}

// podcastHasFiles reports whether any episode of the podcast is downloaded.
func (a *App) podcastHasFiles(podID int64) bool {
	found := false
	a.podcasts.Items().Borrow(podID, func(p *models.Podcast) {
		found = p.AnyDownloaded()
	})
	return found
}

// askConfirm asks a yes/no question; anything but an explicit yes declines.
func (a *App) askConfirm(prompt string) bool {
	answered, yes := a.askYesNo(prompt)
	return answered && yes
}

// askDeleteFiles asks the "delete files" question; an ambiguous or
// cancelled answer defaults to keeping the files.
func (a *App) askDeleteFiles(prompt string) bool {
	answered, yes := a.askYesNo(prompt)
	return answered && yes
}

// askYesNo runs a blocking (y/n) prompt. The first reported value is whether
// a definite answer was given at all.
func (a *App) askYesNo(prompt string) (answered, yes bool) {
	input := strings.TrimSpace(a.prompt(prompt + " (y/n) "))
	if input == "" {
		return false, false
	}
	switch input[0] {
	case 'y', 'Y':
		return true, true
	case 'n', 'N':
		return true, false
	}
	return false, false
}

// prompt runs the blocking line editor. The editor consumes any resize that
// arrives while it is open, so the panel layout is reapplied here once it
// returns.
func (a *App) prompt(text string) string {
	input := a.statusLine.InputNotif(text)
	if cols, rows, ok := a.statusLine.TakeResize(); ok {
		a.resize(cols, rows)
	}
	return input
}

// selectedEpisodes returns the episode store of the selected podcast, or an
// empty store when nothing resolves.
func (a *App) selectedEpisodes() *models.Store[*models.Episode] {
	if id, ok := a.podcasts.SelectedID(); ok {
		if pod, found := a.podcasts.Items().Get(id); found {
			return pod.Episodes
		}
	}
	return models.NewStore[*models.Episode](nil)
}

// updateMenus re-reads the shared library into both menus and redraws.
func (a *App) updateMenus() {
	a.podcasts.Redraw()
	a.episodes.SetItems(a.selectedEpisodes())
	a.episodes.Redraw()
	a.highlightItems()
}

// highlightItems re-highlights the selections that should stay visible for
// the current focus.
func (a *App) highlightItems() {
	switch a.focus {
	case FocusPodcasts:
		a.podcasts.HighlightSelected()
	case FocusEpisodes:
		a.podcasts.HighlightSelected()
		a.episodes.HighlightSelected()
	}
}

// updateDetails refreshes the details view from the current selections. A
// selection that no longer resolves (the controller may have mutated the
// library since) skips the refresh for this tick.
func (a *App) updateDetails() {
	if a.details == nil {
		return
	}
	podID, podOK := a.podcasts.SelectedID()
	epID, epOK := a.episodes.SelectedID()
	if !podOK || !epOK {
		return
	}

	var det Details
	a.podcasts.Items().Borrow(podID, func(p *models.Podcast) {
		if p.Title != "" {
			title := p.Title
			det.PodcastTitle = &title
		}
		det.Explicit = p.Explicit
	})
	found := a.episodes.Items().Borrow(epID, func(e *models.Episode) {
		if e.Title != "" {
			title := e.Title
			det.EpisodeTitle = &title
		}
		det.PubDate = e.PubDate
		duration := e.FormatDuration()
		det.Duration = &duration
		if e.Description != "" {
			desc := sanitizeDescription(e.Description)
			det.Description = &desc
		}
	})
	if !found {
		return
	}
	a.details.ChangeDetails(det)
}
