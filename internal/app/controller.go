// Package app is the controller side of tidecast: it owns the podcast
// library, executes the intents the UI emits, and reports back through UI
// commands. Network and disk work happens here, never on the UI goroutine.
package app

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/tidecast/tidecast/internal/config"
	"github.com/tidecast/tidecast/internal/feed"
	"github.com/tidecast/tidecast/internal/models"
	"github.com/tidecast/tidecast/internal/msg"
	"github.com/tidecast/tidecast/internal/player"
)

const notifDuration = 5 * time.Second

var downloadClient = &http.Client{Timeout: 10 * time.Minute}

// Controller applies UI intents to the library. Sync and download work runs
// on worker goroutines bounded by a semaphore; everything else is applied
// inline in intent order.
type Controller struct {
	cfg      config.Config
	library  *models.Library
	player   *player.Player
	intents  <-chan msg.Envelope
	commands chan<- msg.Command

	sem chan struct{}
	wg  sync.WaitGroup

	mu sync.Mutex // serializes library saves from workers
}

// New creates a controller over the given library and channels.
func New(cfg config.Config, library *models.Library, intents <-chan msg.Envelope, commands chan<- msg.Command) *Controller {
	return &Controller{
		cfg:      cfg,
		library:  library,
		player:   player.New(cfg.Player),
		intents:  intents,
		commands: commands,
		sem:      make(chan struct{}, cfg.SimultaneousLimit),
	}
}

// Run processes intents until Quit, then persists the library and tells the
// UI to tear down.
func (c *Controller) Run() {
	for env := range c.intents {
		if _, quit := env.Intent.(msg.Quit); quit {
			break
		}
		c.handle(env.Intent)
	}

	c.wg.Wait()
	c.player.Stop()
	c.save()
	c.commands <- msg.TearDown{}
}

func (c *Controller) handle(intent msg.Intent) {
	switch in := intent.(type) {
	case msg.AddFeed:
		c.spawn(func() { c.addFeed(in.URL) })

	case msg.Sync:
		c.spawn(func() { c.syncPodcast(in.PodcastID, true) })
	case msg.SyncAll:
		c.syncAll()

	case msg.Play:
		c.play(in.PodcastID, in.EpisodeID)

	case msg.MarkPlayed:
		c.withEpisode(in.PodcastID, in.EpisodeID, func(e *models.Episode) {
			e.Played = in.Played
		})
		c.refresh()
	case msg.MarkAllPlayed:
		if pod, ok := c.library.Podcasts.Get(in.PodcastID); ok {
			pod.Episodes.MutateAll(func(e *models.Episode) {
				e.Played = in.Played
			})
			c.refresh()
		}

	case msg.Download:
		c.spawn(func() { c.download(in.PodcastID, in.EpisodeID) })
	case msg.DownloadMulti:
		for _, ref := range in.Episodes {
			ref := ref
			c.spawn(func() { c.download(ref.PodcastID, ref.EpisodeID) })
		}
	case msg.DownloadAll:
		if pod, ok := c.library.Podcasts.Get(in.PodcastID); ok {
			var ids []int64
			pod.Episodes.Each(func(e *models.Episode) {
				if !e.Downloaded() {
					ids = append(ids, e.ID)
				}
			})
			for _, id := range ids {
				id := id
				c.spawn(func() { c.download(in.PodcastID, id) })
			}
		}

	case msg.UnmarkDownloaded:
		c.withEpisode(in.PodcastID, in.EpisodeID, func(e *models.Episode) {
			e.DownloadPath = ""
		})
		c.refresh()

	case msg.Delete:
		c.deleteFile(in.PodcastID, in.EpisodeID)
		c.refresh()
	case msg.DeleteAll:
		if pod, ok := c.library.Podcasts.Get(in.PodcastID); ok {
			pod.Episodes.MutateAll(func(e *models.Episode) {
				removeLocalFile(e)
			})
			c.refresh()
		}

	case msg.RemovePodcast:
		c.removePodcast(in.PodcastID, in.DeleteFiles)
	case msg.RemoveEpisode:
		c.removeEpisode(in.PodcastID, in.EpisodeID, in.DeleteFiles)
	case msg.RemoveAllEpisodes:
		c.removeAllEpisodes(in.PodcastID, in.DeleteFiles)

	case msg.FilterChange:
		c.changeFilter(in.Kind)
	}
}

func (c *Controller) spawn(fn func()) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.sem <- struct{}{}
		defer func() { <-c.sem }()
		fn()
	}()
}

func (c *Controller) refresh() {
	c.commands <- msg.RefreshMenus{}
}

func (c *Controller) notify(text string, isError bool) {
	c.commands <- msg.TimedNotification{Text: text, Duration: notifDuration, Error: isError}
}

func (c *Controller) save() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.library.Save(); err != nil {
		log.Printf("Failed to save library: %v", err)
		c.notify("Error saving library: "+err.Error(), true)
	}
}

func (c *Controller) withEpisode(podID, epID int64, fn func(*models.Episode)) bool {
	pod, ok := c.library.Podcasts.Get(podID)
	if !ok {
		return false
	}
	return pod.Episodes.Mutate(epID, fn)
}

// addFeed fetches a new feed and appends it to the library.
func (c *Controller) addFeed(url string) {
	c.commands <- msg.PersistentNotification{Text: "Fetching feed..."}
	defer func() { c.commands <- msg.ClearPersistentNotification{} }()

	parsed, err := feed.Fetch(url)
	if err != nil {
		log.Printf("Failed to add feed %s: %v", url, err)
		c.notify("Error fetching feed: "+err.Error(), true)
		return
	}

	duplicate := false
	c.library.Podcasts.Each(func(p *models.Podcast) {
		if p.URL == url {
			duplicate = true
		}
	})
	if duplicate {
		c.notify("Already subscribed to "+url, true)
		return
	}

	pod := feed.BuildPodcast(c.library, url, parsed)
	c.library.Podcasts.Add(pod)
	c.library.SetFilters(c.library.Filters())
	c.save()
	c.refresh()
	c.notify(fmt.Sprintf("Added %s (%d episodes)", pod.Title, pod.Episodes.Len()), false)
}

// syncPodcast re-fetches one feed and merges any new episodes by GUID or
// enclosure URL.
func (c *Controller) syncPodcast(podID int64, notify bool) {
	pod, ok := c.library.Podcasts.Get(podID)
	if !ok {
		return
	}

	parsed, err := feed.Fetch(pod.URL)
	if err != nil {
		log.Printf("Failed to sync %s: %v", pod.URL, err)
		c.notify("Error syncing "+pod.Title+": "+err.Error(), true)
		return
	}

	known := make(map[string]bool)
	pod.Episodes.Each(func(e *models.Episode) {
		if e.GUID != "" {
			known[e.GUID] = true
		}
		if e.URL != "" {
			known[e.URL] = true
		}
	})

	var newIDs []int64
	for _, item := range parsed.Items {
		key := item.GUID
		if key == "" {
			key = item.EnclosureURL
		}
		if key == "" || known[key] {
			continue
		}
		known[key] = true
		id := c.library.NextID()
		pod.Episodes.Add(&models.Episode{
			ID:          id,
			PodcastID:   pod.ID,
			Title:       item.Title,
			URL:         item.EnclosureURL,
			GUID:        item.GUID,
			Description: item.Description,
			PubDate:     item.PubDate,
			Duration:    item.Duration,
		})
		newIDs = append(newIDs, id)
	}
	c.library.Podcasts.Mutate(pod.ID, func(p *models.Podcast) {
		p.LastChecked = time.Now()
	})

	c.library.SetFilters(c.library.Filters())
	c.save()
	c.refresh()
	if notify {
		c.notify(fmt.Sprintf("Synced %s (%d new)", pod.Title, len(newIDs)), false)
		// a manual sync that found new episodes offers to download them
		if len(newIDs) > 0 {
			c.commands <- msg.ShowDownloadPicker{
				PodcastID:   pod.ID,
				EpisodeIDs:  newIDs,
				Preselected: newIDs,
			}
		}
	}
}

func (c *Controller) syncAll() {
	var ids []int64
	c.library.Podcasts.Each(func(p *models.Podcast) {
		ids = append(ids, p.ID)
	})
	if len(ids) == 0 {
		return
	}

	c.commands <- msg.PersistentNotification{Text: "Syncing feeds..."}
	var syncWG sync.WaitGroup
	for _, id := range ids {
		id := id
		syncWG.Add(1)
		c.spawn(func() {
			defer syncWG.Done()
			c.syncPodcast(id, false)
		})
	}
	c.spawn(func() {
		syncWG.Wait()
		c.commands <- msg.ClearPersistentNotification{}
		c.notify(fmt.Sprintf("Synced %d feeds", len(ids)), false)
	})
}

// play hands the episode to an external player and marks it played. The
// local file is preferred over streaming.
func (c *Controller) play(podID, epID int64) {
	target := ""
	title := ""
	c.withEpisode(podID, epID, func(e *models.Episode) {
		title = e.Title
		if e.Downloaded() {
			target = e.DownloadPath
		} else {
			target = e.URL
		}
		e.Played = true
	})
	if target == "" {
		c.notify("Nothing to play", true)
		return
	}

	if err := c.player.Play(target); err != nil {
		log.Printf("Failed to start player: %v", err)
		c.notify("Error starting player: "+err.Error(), true)
		return
	}

	c.save()
	c.refresh()
	c.notify("Playing "+title, false)
}

// download fetches the episode's enclosure into the download directory.
func (c *Controller) download(podID, epID int64) {
	pod, ok := c.library.Podcasts.Get(podID)
	if !ok {
		return
	}
	var url, title string
	downloaded := false
	pod.Episodes.Borrow(epID, func(e *models.Episode) {
		url = e.URL
		title = e.Title
		downloaded = e.Downloaded()
	})
	if url == "" || downloaded {
		return
	}

	dir := filepath.Join(c.cfg.DownloadDir, sanitizeFilename(pod.Title))
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Printf("Failed to create download dir: %v", err)
		c.notify("Error creating download directory", true)
		return
	}
	path := filepath.Join(dir, fmt.Sprintf("%d%s", epID, extensionFor(url)))

	resp, err := downloadClient.Get(url)
	if err != nil {
		log.Printf("Failed to download %s: %v", url, err)
		c.notify("Error downloading "+title, true)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.notify(fmt.Sprintf("Error downloading %s: status %d", title, resp.StatusCode), true)
		return
	}

	out, err := os.Create(path)
	if err != nil {
		log.Printf("Failed to create %s: %v", path, err)
		c.notify("Error writing download", true)
		return
	}
	_, err = io.Copy(out, resp.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		log.Printf("Failed to write %s: %v", path, err)
		c.notify("Error writing download", true)
		return
	}

	pod.Episodes.Mutate(epID, func(e *models.Episode) {
		e.DownloadPath = path
	})
	c.save()
	c.refresh()
	c.notify("Downloaded "+title, false)
}

// deleteFile removes the local file of one episode and unmarks it.
func (c *Controller) deleteFile(podID, epID int64) {
	c.withEpisode(podID, epID, func(e *models.Episode) {
		removeLocalFile(e)
	})
	c.save()
}

func (c *Controller) removePodcast(podID int64, deleteFiles bool) {
	pod, ok := c.library.Podcasts.Get(podID)
	if !ok {
		return
	}
	if deleteFiles {
		pod.Episodes.MutateAll(func(e *models.Episode) {
			removeLocalFile(e)
		})
	}
	c.library.Podcasts.Remove(podID)
	c.save()
	c.refresh()
	c.notify("Removed "+pod.Title, false)
}

func (c *Controller) removeEpisode(podID, epID int64, deleteFiles bool) {
	pod, ok := c.library.Podcasts.Get(podID)
	if !ok {
		return
	}
	if deleteFiles {
		pod.Episodes.Mutate(epID, func(e *models.Episode) {
			removeLocalFile(e)
		})
	}
	pod.Episodes.Remove(epID)
	c.save()
	c.refresh()
}

func (c *Controller) removeAllEpisodes(podID int64, deleteFiles bool) {
	pod, ok := c.library.Podcasts.Get(podID)
	if !ok {
		return
	}
	if deleteFiles {
		pod.Episodes.MutateAll(func(e *models.Episode) {
			removeLocalFile(e)
		})
	}
	pod.Episodes.Replace(nil)
	c.save()
	c.refresh()
}

// changeFilter cycles the named filter off -> only -> exclude and reports
// the active filters on the status line.
func (c *Controller) changeFilter(kind msg.FilterKind) {
	filters := c.library.Filters()
	switch kind {
	case msg.FilterPlayed:
		filters.Played = nextFilterStatus(filters.Played)
	case msg.FilterDownloaded:
		filters.Downloaded = nextFilterStatus(filters.Downloaded)
	}
	c.library.SetFilters(filters)
	c.refresh()

	if !filters.Active() {
		c.commands <- msg.ClearPersistentNotification{}
		return
	}
	c.commands <- msg.PersistentNotification{Text: "Filter: " + describeFilters(filters)}
}

func nextFilterStatus(s models.FilterStatus) models.FilterStatus {
	switch s {
	case models.FilterOff:
		return models.FilterOnly
	case models.FilterOnly:
		return models.FilterExclude
	default:
		return models.FilterOff
	}
}

func describeFilters(f models.Filters) string {
	var parts []string
	switch f.Played {
	case models.FilterOnly:
		parts = append(parts, "played")
	case models.FilterExclude:
		parts = append(parts, "unplayed")
	}
	switch f.Downloaded {
	case models.FilterOnly:
		parts = append(parts, "downloaded")
	case models.FilterExclude:
		parts = append(parts, "not downloaded")
	}
	return strings.Join(parts, ", ")
}

func removeLocalFile(e *models.Episode) {
	if !e.Downloaded() {
		return
	}
	if err := os.Remove(e.DownloadPath); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to remove %s: %v", e.DownloadPath, err)
	}
	e.DownloadPath = ""
}

// extensionFor derives a file extension from an enclosure URL, ignoring any
// query string. Enclosures without a usable extension default to .mp3.
func extensionFor(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	if ext := path.Ext(url); ext != "" && len(ext) <= 5 {
		return ext
	}
	return ".mp3"
}

// sanitizeFilename keeps podcast directory names filesystem-safe.
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "-",
		"\\", "-",
		":", "-",
		"*", "",
		"?", "",
		"\"", "",
		"<", "",
		">", "",
		"|", "",
	)
	cleaned := strings.TrimSpace(replacer.Replace(name))
	if cleaned == "" {
		cleaned = "podcast"
	}
	return cleaned
}
