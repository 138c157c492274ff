package ui

import (
	"path/filepath"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/tidecast/tidecast/internal/config"
	"github.com/tidecast/tidecast/internal/keymap"
	"github.com/tidecast/tidecast/internal/models"
	"github.com/tidecast/tidecast/internal/msg"
)

func testLibrary(t *testing.T, podcasts ...*models.Podcast) *models.Library {
	t.Helper()
	lib, err := models.LoadLibrary(filepath.Join(t.TempDir(), "library.json"))
	if err != nil {
		t.Fatal(err)
	}
	for _, pod := range podcasts {
		lib.Podcasts.Add(pod)
	}
	return lib
}

func podcastWith(id int64, title string, eps ...*models.Episode) *models.Podcast {
	return &models.Podcast{
		ID:       id,
		Title:    title,
		URL:      "http://example.com/" + title,
		Episodes: models.NewStore(eps),
	}
}

func testApp(t *testing.T, cols, rows int, lib *models.Library) (*App, chan tcell.Event) {
	t.Helper()
	screen := simScreen(t, cols, rows)
	cfg := config.Config{
		DetailsThreshold:  config.DefaultDetailsThreshold,
		BigScrollDivisor:  config.DefaultBigScrollDivisor,
		SimultaneousLimit: config.DefaultSimultaneousLimit,
	}
	events := make(chan tcell.Event, 32)
	intents := make(chan msg.Envelope, 32)
	commands := make(chan msg.Command, 32)
	a := newApp(screen, cfg, keymap.Default(), lib, events, intents, commands)
	a.init()
	return a, events
}

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func enter() *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone)
}

func escape() *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)
}

func TestCalculateSizes(t *testing.T) {
	tests := []struct {
		nCol                   int
		podCol, epCol, detCol int
	}{
		{100, 50, 51, 0},
		{101, 51, 51, 0},
		{135, 68, 68, 0},
		{136, 46, 46, 46},
		{180, 60, 60, 62},
	}

	for _, tt := range tests {
		pod, ep, det := calculateSizes(tt.nCol, config.DefaultDetailsThreshold)
		if pod != tt.podCol || ep != tt.epCol || det != tt.detCol {
			t.Errorf("calculateSizes(%d): expected (%d,%d,%d), got (%d,%d,%d)",
				tt.nCol, tt.podCol, tt.epCol, tt.detCol, pod, ep, det)
		}
	}
}

func TestCalculateSizes_BorderOverlap(t *testing.T) {
	// adjacent panels share a border column, so widths overshoot the
	// terminal by one per junction
	for nCol := 10; nCol <= 300; nCol++ {
		pod, ep, det := calculateSizes(nCol, config.DefaultDetailsThreshold)
		sum := pod + ep + det
		if det > 0 {
			if sum != nCol+2 {
				t.Fatalf("width %d: three-panel sum %d, expected %d", nCol, sum, nCol+2)
			}
		} else if sum != nCol+1 {
			t.Fatalf("width %d: two-panel sum %d, expected %d", nCol, sum, nCol+1)
		}
	}
}

func TestHandleKey_Quit(t *testing.T) {
	a, _ := testApp(t, 100, 24, testLibrary(t, podcastWith(1, "show", &models.Episode{ID: 2, PodcastID: 1})))

	intent := a.handleKey(key('q'))
	if _, ok := intent.(msg.Quit); !ok {
		t.Errorf("Expected Quit intent, got %T", intent)
	}
}

func TestHandleKey_UnboundKey(t *testing.T) {
	a, _ := testApp(t, 100, 24, testLibrary(t, podcastWith(1, "show")))

	if intent := a.handleKey(key('z')); intent != nil {
		t.Errorf("Expected no intent for unbound key, got %T", intent)
	}
}

func TestHandleKey_MarkAllPlayedToggles(t *testing.T) {
	eps := []*models.Episode{
		{ID: 2, PodcastID: 1, Played: true},
		{ID: 3, PodcastID: 1},
	}
	a, _ := testApp(t, 100, 24, testLibrary(t, podcastWith(1, "show", eps...)))

	// a partially played podcast marks everything played
	intent := a.handleKey(key('M'))
	mark, ok := intent.(msg.MarkAllPlayed)
	if !ok {
		t.Fatalf("Expected MarkAllPlayed intent, got %T", intent)
	}
	if !mark.Played {
		t.Error("Expected Played=true for a partially played podcast")
	}

	// a fully played podcast flips the other way
	pod, _ := a.podcasts.Items().Get(1)
	pod.Episodes.MutateAll(func(e *models.Episode) { e.Played = true })
	intent = a.handleKey(key('M'))
	mark, ok = intent.(msg.MarkAllPlayed)
	if !ok {
		t.Fatalf("Expected MarkAllPlayed intent, got %T", intent)
	}
	if mark.Played {
		t.Error("Expected Played=false for a fully played podcast")
	}
}

func TestHandleKey_MarkPlayedNeedsEpisodeFocus(t *testing.T) {
	eps := []*models.Episode{{ID: 2, PodcastID: 1}}
	a, _ := testApp(t, 100, 24, testLibrary(t, podcastWith(1, "show", eps...)))

	if intent := a.handleKey(key('m')); intent != nil {
		t.Errorf("Expected no intent while podcasts focused, got %T", intent)
	}

	a.handleKey(key('l'))
	if a.focus != FocusEpisodes {
		t.Fatalf("Expected episode focus after right, got %v", a.focus)
	}

	intent := a.handleKey(key('m'))
	mark, ok := intent.(msg.MarkPlayed)
	if !ok {
		t.Fatalf("Expected MarkPlayed intent, got %T", intent)
	}
	if mark.EpisodeID != 2 || !mark.Played {
		t.Errorf("Expected episode 2 marked played, got %+v", mark)
	}
}

func TestMoveCursor_RightNeedsEpisode(t *testing.T) {
	a, _ := testApp(t, 100, 24, testLibrary(t, podcastWith(1, "empty show")))

	a.handleKey(key('l'))
	if a.focus != FocusPodcasts {
		t.Errorf("Expected focus to stay on podcasts without episodes, got %v", a.focus)
	}
}

func TestMoveCursor_FocusChain(t *testing.T) {
	eps := []*models.Episode{{ID: 2, PodcastID: 1, Title: "ep"}}
	a, _ := testApp(t, 180, 24, testLibrary(t, podcastWith(1, "show", eps...)))

	if a.details == nil {
		t.Fatal("Expected details view on a wide terminal")
	}

	a.handleKey(key('l'))
	if a.focus != FocusEpisodes {
		t.Fatalf("Expected episode focus, got %v", a.focus)
	}
	a.handleKey(key('l'))
	if a.focus != FocusDetails {
		t.Fatalf("Expected details focus, got %v", a.focus)
	}
	a.handleKey(key('h'))
	if a.focus != FocusEpisodes {
		t.Fatalf("Expected episode focus after left, got %v", a.focus)
	}
	a.handleKey(key('h'))
	if a.focus != FocusPodcasts {
		t.Fatalf("Expected podcast focus after left, got %v", a.focus)
	}
}

func TestMoveCursor_NoDetailsNoDetailsFocus(t *testing.T) {
	eps := []*models.Episode{{ID: 2, PodcastID: 1}}
	a, _ := testApp(t, 100, 24, testLibrary(t, podcastWith(1, "show", eps...)))

	a.handleKey(key('l'))
	a.handleKey(key('l'))
	if a.focus != FocusEpisodes {
		t.Errorf("Expected focus to stop at episodes on a narrow terminal, got %v", a.focus)
	}
}

func TestScrollCascade(t *testing.T) {
	first := podcastWith(1, "first", &models.Episode{ID: 2, PodcastID: 1}, &models.Episode{ID: 3, PodcastID: 1})
	second := podcastWith(4, "second", &models.Episode{ID: 5, PodcastID: 4})
	a, _ := testApp(t, 100, 24, testLibrary(t, first, second))

	// move the episode selection away from the top, then change podcasts
	a.handleKey(key('l'))
	a.handleKey(key('j'))
	if id, _ := a.episodes.SelectedID(); id != 3 {
		t.Fatalf("Expected episode 3 selected, got %d", id)
	}
	a.handleKey(key('h'))

	a.handleKey(key('j'))
	if id, _ := a.podcasts.SelectedID(); id != 4 {
		t.Fatalf("Expected podcast 4 selected, got %d", id)
	}
	if a.episodes.Items() != second.Episodes {
		t.Error("Expected episode menu to show the new podcast's store")
	}
	if a.episodes.SelectedPos() != 0 {
		t.Errorf("Expected episode selection reset, got %d", a.episodes.SelectedPos())
	}
	if id, _ := a.episodes.SelectedID(); id != 5 {
		t.Errorf("Expected episode 5 selected, got %d", id)
	}
}

func TestResize_DetailsAppearAndVanish(t *testing.T) {
	eps := []*models.Episode{{ID: 2, PodcastID: 1, Title: "ep"}}
	a, _ := testApp(t, 100, 24, testLibrary(t, podcastWith(1, "show", eps...)))

	if a.details != nil {
		t.Fatal("Expected no details view on a narrow terminal")
	}

	a.resize(180, 24)
	if a.details == nil {
		t.Fatal("Expected details view after widening")
	}

	// focus the details column, then shrink it away
	a.handleKey(key('l'))
	a.handleKey(key('l'))
	if a.focus != FocusDetails {
		t.Fatalf("Expected details focus, got %v", a.focus)
	}

	a.resize(100, 24)
	if a.details != nil {
		t.Error("Expected details view destroyed after narrowing")
	}
	if a.focus != FocusEpisodes {
		t.Errorf("Expected focus to fall back to episodes, got %v", a.focus)
	}
}

func TestRemovePodcast_Flow(t *testing.T) {
	eps := []*models.Episode{{ID: 2, PodcastID: 1, DownloadPath: "/tmp/2.mp3"}}
	a, events := testApp(t, 100, 24, testLibrary(t, podcastWith(1, "show", eps...)))

	// confirm removal, decline file deletion
	events <- key('y')
	events <- enter()
	events <- key('n')
	events <- enter()
	intent := a.handleKey(key('r'))
	remove, ok := intent.(msg.RemovePodcast)
	if !ok {
		t.Fatalf("Expected RemovePodcast intent, got %T", intent)
	}
	if remove.PodcastID != 1 || remove.DeleteFiles {
		t.Errorf("Expected podcast 1 without file deletion, got %+v", remove)
	}

	// confirm both questions
	events <- key('y')
	events <- enter()
	events <- key('y')
	events <- enter()
	intent = a.handleKey(key('r'))
	remove, ok = intent.(msg.RemovePodcast)
	if !ok {
		t.Fatalf("Expected RemovePodcast intent, got %T", intent)
	}
	if !remove.DeleteFiles {
		t.Error("Expected file deletion after confirming")
	}
}

func TestRemovePodcast_Cancelled(t *testing.T) {
	a, events := testApp(t, 100, 24, testLibrary(t, podcastWith(1, "show", &models.Episode{ID: 2, PodcastID: 1})))

	events <- escape()
	if intent := a.handleKey(key('r')); intent != nil {
		t.Errorf("Expected no intent after cancelling, got %T", intent)
	}

	// an ambiguous answer counts as declining
	events <- key('w')
	events <- enter()
	if intent := a.handleKey(key('r')); intent != nil {
		t.Errorf("Expected no intent for an ambiguous answer, got %T", intent)
	}
}

func TestRemovePodcast_NoFilesSkipsFileQuestion(t *testing.T) {
	a, events := testApp(t, 100, 24, testLibrary(t, podcastWith(1, "show", &models.Episode{ID: 2, PodcastID: 1})))

	// only the removal confirmation is asked
	events <- key('y')
	events <- enter()
	intent := a.handleKey(key('r'))
	remove, ok := intent.(msg.RemovePodcast)
	if !ok {
		t.Fatalf("Expected RemovePodcast intent, got %T", intent)
	}
	if remove.DeleteFiles {
		t.Error("Expected no file deletion without local files")
	}
	if len(events) != 0 {
		t.Errorf("Expected all queued input consumed, %d events left", len(events))
	}
}

func TestRemoveEpisode_Flow(t *testing.T) {
	eps := []*models.Episode{{ID: 2, PodcastID: 1, DownloadPath: "/tmp/2.mp3"}}
	a, events := testApp(t, 100, 24, testLibrary(t, podcastWith(1, "show", eps...)))
	a.handleKey(key('l'))

	events <- key('y')
	events <- enter()
	events <- key('y')
	events <- enter()
	intent := a.handleKey(key('r'))
	remove, ok := intent.(msg.RemoveEpisode)
	if !ok {
		t.Fatalf("Expected RemoveEpisode intent, got %T", intent)
	}
	if remove.EpisodeID != 2 || !remove.DeleteFiles {
		t.Errorf("Expected episode 2 with file deletion, got %+v", remove)
	}
}

func TestDelete_RequiresConfirmation(t *testing.T) {
	eps := []*models.Episode{{ID: 2, PodcastID: 1, DownloadPath: "/tmp/2.mp3"}}
	a, events := testApp(t, 100, 24, testLibrary(t, podcastWith(1, "show", eps...)))
	a.handleKey(key('l'))

	events <- key('n')
	events <- enter()
	if intent := a.handleKey(key('x')); intent != nil {
		t.Errorf("Expected no intent after declining, got %T", intent)
	}

	events <- key('y')
	events <- enter()
	intent := a.handleKey(key('x'))
	del, ok := intent.(msg.Delete)
	if !ok {
		t.Fatalf("Expected Delete intent, got %T", intent)
	}
	if del.EpisodeID != 2 {
		t.Errorf("Expected episode 2, got %+v", del)
	}
}

// A resize that lands while a prompt is open is consumed by the line editor,
// so the panels have to pick up the new geometry once it returns.
func TestHandleKey_ResizeDuringPrompt(t *testing.T) {
	a, events := testApp(t, 180, 24, testLibrary(t))
	if a.details == nil {
		t.Fatal("Expected a details view on a wide terminal")
	}

	events <- tcell.NewEventResize(100, 24)
	events <- key('u')
	events <- key('r')
	events <- key('l')
	events <- enter()
	intent := a.handleKey(key('a'))
	if _, ok := intent.(msg.AddFeed); !ok {
		t.Fatalf("Expected AddFeed intent, got %T", intent)
	}

	if a.cols != 100 {
		t.Errorf("Expected width 100 after the prompt, got %d", a.cols)
	}
	if a.details != nil {
		t.Error("Expected the details view gone below the threshold")
	}
}

func TestHandleKey_AddFeed(t *testing.T) {
	a, events := testApp(t, 100, 24, testLibrary(t))

	events <- key('u')
	events <- key('r')
	events <- key('l')
	events <- enter()
	intent := a.handleKey(key('a'))
	add, ok := intent.(msg.AddFeed)
	if !ok {
		t.Fatalf("Expected AddFeed intent, got %T", intent)
	}
	if add.URL != "url" {
		t.Errorf("Expected URL 'url', got %q", add.URL)
	}

	// cancelling the prompt produces nothing
	events <- escape()
	if intent := a.handleKey(key('a')); intent != nil {
		t.Errorf("Expected no intent after cancelling, got %T", intent)
	}
}

func TestHandleKey_SyncNeedsSelection(t *testing.T) {
	a, _ := testApp(t, 100, 24, testLibrary(t))

	if intent := a.handleKey(key('s')); intent != nil {
		t.Errorf("Expected no sync intent on empty library, got %T", intent)
	}
	if intent := a.handleKey(key('S')); intent != nil {
		t.Errorf("Expected no sync-all intent on empty library, got %T", intent)
	}
}

func TestWelcome_ShownOnEmptyLibrary(t *testing.T) {
	a, _ := testApp(t, 100, 24, testLibrary(t))

	if !a.popups.WelcomeActive() {
		t.Fatal("Expected welcome overlay on an empty library")
	}

	// keys pass through while the library stays empty
	intent := a.handleKey(key('q'))
	if _, ok := intent.(msg.Quit); !ok {
		t.Errorf("Expected quit to pass through the welcome overlay, got %T", intent)
	}
	if !a.popups.WelcomeActive() {
		t.Error("Expected welcome to stay while the library is empty")
	}

	// once a podcast exists the next key dismisses it without being eaten
	a.podcasts.Items().Add(podcastWith(1, "show", &models.Episode{ID: 2, PodcastID: 1}))
	intent = a.handleKey(key('s'))
	if a.popups.WelcomeActive() {
		t.Error("Expected welcome dismissed once the library has podcasts")
	}
	if _, ok := intent.(msg.Sync); !ok {
		t.Errorf("Expected the dismissing key to still act, got %T", intent)
	}
}

func TestWelcome_NotShownWithPodcasts(t *testing.T) {
	a, _ := testApp(t, 100, 24, testLibrary(t, podcastWith(1, "show")))

	if a.popups.WelcomeActive() {
		t.Error("Expected no welcome overlay with a non-empty library")
	}
}

func TestApply_Commands(t *testing.T) {
	a, _ := testApp(t, 100, 24, testLibrary(t, podcastWith(1, "show")))

	if a.apply(msg.RefreshMenus{}) {
		t.Error("Expected RefreshMenus to not tear down")
	}
	if !a.apply(msg.TearDown{}) {
		t.Error("Expected TearDown to end the loop")
	}
}

func TestApply_ShowDownloadPicker(t *testing.T) {
	eps := []*models.Episode{
		{ID: 2, PodcastID: 1, Title: "one"},
		{ID: 3, PodcastID: 1, Title: "two"},
	}
	a, _ := testApp(t, 100, 24, testLibrary(t, podcastWith(1, "show", eps...)))

	a.apply(msg.ShowDownloadPicker{
		PodcastID:   1,
		EpisodeIDs:  []int64{2, 3},
		Preselected: []int64{2, 3},
	})
	if !a.popups.IsNonWelcomePopupActive() {
		t.Fatal("Expected download picker to be active")
	}

	// enter downloads the preselected episodes and closes the picker
	intent := a.handleKey(enter())
	multi, ok := intent.(msg.DownloadMulti)
	if !ok {
		t.Fatalf("Expected DownloadMulti intent, got %T", intent)
	}
	if len(multi.Episodes) != 2 {
		t.Errorf("Expected 2 episode refs, got %d", len(multi.Episodes))
	}
	if a.popups.IsPopupActive() {
		t.Error("Expected picker closed after enter")
	}
}

func TestDownloadPicker_ToggleAndEscape(t *testing.T) {
	eps := []*models.Episode{
		{ID: 2, PodcastID: 1, Title: "one"},
		{ID: 3, PodcastID: 1, Title: "two"},
	}
	a, _ := testApp(t, 100, 24, testLibrary(t, podcastWith(1, "show", eps...)))

	a.apply(msg.ShowDownloadPicker{PodcastID: 1, EpisodeIDs: []int64{2, 3}})

	// select only the second entry
	a.handleKey(key('j'))
	a.handleKey(key(' '))
	intent := a.handleKey(enter())
	multi, ok := intent.(msg.DownloadMulti)
	if !ok {
		t.Fatalf("Expected DownloadMulti intent, got %T", intent)
	}
	if len(multi.Episodes) != 1 || multi.Episodes[0].EpisodeID != 3 {
		t.Errorf("Expected only episode 3, got %+v", multi.Episodes)
	}

	// escape produces nothing
	a.apply(msg.ShowDownloadPicker{PodcastID: 1, EpisodeIDs: []int64{2, 3}})
	if intent := a.handleKey(escape()); intent != nil {
		t.Errorf("Expected no intent on escape, got %T", intent)
	}
	if a.popups.IsPopupActive() {
		t.Error("Expected picker closed after escape")
	}
}

func TestHelpWindow_AnyKeyCloses(t *testing.T) {
	a, _ := testApp(t, 100, 24, testLibrary(t, podcastWith(1, "show")))

	a.handleKey(key('?'))
	if !a.popups.IsNonWelcomePopupActive() {
		t.Fatal("Expected help window to be active")
	}

	if intent := a.handleKey(key('q')); intent != nil {
		t.Errorf("Expected the closing key to be consumed, got %T", intent)
	}
	if a.popups.IsPopupActive() {
		t.Error("Expected help window closed")
	}
}

func TestHandleKey_FilterIntents(t *testing.T) {
	a, _ := testApp(t, 100, 24, testLibrary(t, podcastWith(1, "show")))

	intent := a.handleKey(key('1'))
	fc, ok := intent.(msg.FilterChange)
	if !ok || fc.Kind != msg.FilterPlayed {
		t.Errorf("Expected played filter change, got %T %+v", intent, intent)
	}

	intent = a.handleKey(key('2'))
	fc, ok = intent.(msg.FilterChange)
	if !ok || fc.Kind != msg.FilterDownloaded {
		t.Errorf("Expected downloaded filter change, got %T %+v", intent, intent)
	}
}

func TestBigAndPageAmounts(t *testing.T) {
	a, _ := testApp(t, 100, 24, testLibrary(t, podcastWith(1, "show")))

	if got := a.pageAmount(); got != 21 {
		t.Errorf("Expected page amount 21 on 24 rows, got %d", got)
	}
	if got := a.bigAmount(); got != 6 {
		t.Errorf("Expected big amount 6 on 24 rows, got %d", got)
	}
}
