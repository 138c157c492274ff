// Package msg defines the message contract between the UI goroutine and the
// controller goroutine. Intents flow UI -> controller wrapped in an Envelope;
// Commands flow controller -> UI.
package msg

import "time"

// EpisodeRef identifies one episode within one podcast.
type EpisodeRef struct {
	PodcastID int64
	EpisodeID int64
}

// Intent is a command the UI emits for the controller to execute. A nil
// Intent means "nothing to do" and is never forwarded.
type Intent interface {
	intent()
}

type AddFeed struct{ URL string }

type Play struct {
	PodcastID int64
	EpisodeID int64
}

type MarkPlayed struct {
	PodcastID int64
	EpisodeID int64
	Played    bool
}

type MarkAllPlayed struct {
	PodcastID int64
	Played    bool
}

type Sync struct{ PodcastID int64 }

type SyncAll struct{}

type Download struct {
	PodcastID int64
	EpisodeID int64
}

type DownloadMulti struct{ Episodes []EpisodeRef }

type DownloadAll struct{ PodcastID int64 }

type UnmarkDownloaded struct {
	PodcastID int64
	EpisodeID int64
}

type Delete struct {
	PodcastID int64
	EpisodeID int64
}

type DeleteAll struct{ PodcastID int64 }

type RemovePodcast struct {
	PodcastID   int64
	DeleteFiles bool
}

type RemoveEpisode struct {
	PodcastID   int64
	EpisodeID   int64
	DeleteFiles bool
}

type RemoveAllEpisodes struct {
	PodcastID   int64
	DeleteFiles bool
}

// FilterKind names a menu filter the user can cycle.
type FilterKind int

const (
	FilterPlayed FilterKind = iota
	FilterDownloaded
)

type FilterChange struct{ Kind FilterKind }

type Quit struct{}

func (AddFeed) intent()           {}
func (Play) intent()              {}
func (MarkPlayed) intent()        {}
func (MarkAllPlayed) intent()     {}
func (Sync) intent()              {}
func (SyncAll) intent()           {}
func (Download) intent()          {}
func (DownloadMulti) intent()     {}
func (DownloadAll) intent()       {}
func (UnmarkDownloaded) intent()  {}
func (Delete) intent()            {}
func (DeleteAll) intent()         {}
func (RemovePodcast) intent()     {}
func (RemoveEpisode) intent()     {}
func (RemoveAllEpisodes) intent() {}
func (FilterChange) intent()      {}
func (Quit) intent()              {}

// Source tags where an envelope originated.
type Source int

const (
	SourceUI Source = iota
)

// Envelope wraps an intent with its origin.
type Envelope struct {
	Source Source
	Intent Intent
}

// FromUI wraps an intent as UI-originated.
func FromUI(in Intent) Envelope {
	return Envelope{Source: SourceUI, Intent: in}
}

// Command is an instruction the controller sends to the UI. The UI drains at
// most one command per tick and applies them in send order.
type Command interface {
	command()
}

// RefreshMenus tells the UI to re-read the shared library and redraw.
type RefreshMenus struct{}

// TimedNotification shows a status-line message that expires on its own.
type TimedNotification struct {
	Text     string
	Duration time.Duration
	Error    bool
}

// PersistentNotification shows a status-line message that stays until cleared.
type PersistentNotification struct {
	Text  string
	Error bool
}

type ClearPersistentNotification struct{}

// TearDown instructs the UI to restore the terminal and exit its loop.
type TearDown struct{}

// ShowDownloadPicker opens the download-selection popup for a podcast's
// episodes, with the given IDs preselected.
type ShowDownloadPicker struct {
	PodcastID   int64
	EpisodeIDs  []int64
	Preselected []int64
}

func (RefreshMenus) command()                {}
func (TimedNotification) command()           {}
func (PersistentNotification) command()      {}
func (ClearPersistentNotification) command() {}
func (TearDown) command()                    {}
func (ShowDownloadPicker) command()          {}
