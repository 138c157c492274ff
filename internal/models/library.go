package models

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// FilterStatus is one position of a filter cycle.
type FilterStatus int

const (
	FilterOff     FilterStatus = iota
	FilterOnly                 // only matching items
	FilterExclude              // only non-matching items
)

// Filters holds the menu filter state for played and downloaded episodes.
type Filters struct {
	Played     FilterStatus
	Downloaded FilterStatus
}

// Active reports whether any filter is engaged.
func (f Filters) Active() bool {
	return f.Played != FilterOff || f.Downloaded != FilterOff
}

func (f Filters) matches(e *Episode) bool {
	switch f.Played {
	case FilterOnly:
		if !e.Played {
			return false
		}
	case FilterExclude:
		if e.Played {
			return false
		}
	}
	switch f.Downloaded {
	case FilterOnly:
		if !e.Downloaded() {
			return false
		}
	case FilterExclude:
		if e.Downloaded() {
			return false
		}
	}
	return true
}

// Library is the podcast collection plus its storage location and filter
// state. The controller goroutine owns all mutation.
type Library struct {
	Podcasts *Store[*Podcast]

	path   string
	nextID atomic.Int64

	filtersMu sync.RWMutex // sync workers rebuild filters concurrently
	filters   Filters
}

type episodeRecord struct {
	ID           int64         `json:"id"`
	Title        string        `json:"title"`
	URL          string        `json:"url"`
	GUID         string        `json:"guid,omitempty"`
	Description  string        `json:"description,omitempty"`
	PubDate      time.Time     `json:"pubDate,omitempty"`
	Duration     time.Duration `json:"duration,omitempty"`
	Played       bool          `json:"played,omitempty"`
	DownloadPath string        `json:"downloadPath,omitempty"`
}

type podcastRecord struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	URL         string          `json:"url"`
	Description string          `json:"description,omitempty"`
	Author      string          `json:"author,omitempty"`
	Explicit    *bool           `json:"explicit,omitempty"`
	LastChecked time.Time       `json:"lastChecked,omitempty"`
	Episodes    []episodeRecord `json:"episodes"`
}

type libraryFile struct {
	Podcasts []podcastRecord `json:"podcasts"`
}

// LoadLibrary reads the library from the given JSON file. A missing file
// yields an empty library; a corrupt file is an error.
func LoadLibrary(path string) (*Library, error) {
	lib := &Library{
		Podcasts: NewStore[*Podcast](nil),
		path:     path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return lib, nil
		}
		return nil, err
	}

	var file libraryFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	maxID := int64(0)
	for _, pr := range file.Podcasts {
		if pr.ID > maxID {
			maxID = pr.ID
		}
		eps := make([]*Episode, 0, len(pr.Episodes))
		for _, er := range pr.Episodes {
			if er.ID > maxID {
				maxID = er.ID
			}
			eps = append(eps, &Episode{
				ID:           er.ID,
				PodcastID:    pr.ID,
				Title:        er.Title,
				URL:          er.URL,
				GUID:         er.GUID,
				Description:  er.Description,
				PubDate:      er.PubDate,
				Duration:     er.Duration,
				Played:       er.Played,
				DownloadPath: er.DownloadPath,
			})
		}
		lib.Podcasts.Add(&Podcast{
			ID:          pr.ID,
			Title:       pr.Title,
			URL:         pr.URL,
			Description: pr.Description,
			Author:      pr.Author,
			Explicit:    pr.Explicit,
			LastChecked: pr.LastChecked,
			Episodes:    NewStore(eps),
		})
	}
	lib.nextID.Store(maxID)
	return lib, nil
}

// Save writes the library back to its JSON file.
func (l *Library) Save() error {
	file := libraryFile{Podcasts: []podcastRecord{}}
	l.Podcasts.Each(func(p *Podcast) {
		pr := podcastRecord{
			ID:          p.ID,
			Title:       p.Title,
			URL:         p.URL,
			Description: p.Description,
			Author:      p.Author,
			Explicit:    p.Explicit,
			LastChecked: p.LastChecked,
			Episodes:    []episodeRecord{},
		}
		p.Episodes.Each(func(e *Episode) {
			pr.Episodes = append(pr.Episodes, episodeRecord{
				ID:           e.ID,
				Title:        e.Title,
				URL:          e.URL,
				GUID:         e.GUID,
				Description:  e.Description,
				PubDate:      e.PubDate,
				Duration:     e.Duration,
				Played:       e.Played,
				DownloadPath: e.DownloadPath,
			})
		})
		file.Podcasts = append(file.Podcasts, pr)
	})

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(l.path, data, 0644)
}

// Path returns the library's storage location.
func (l *Library) Path() string {
	return l.path
}

// NextID allocates a fresh identifier, unique across podcasts and episodes.
func (l *Library) NextID() int64 {
	return l.nextID.Add(1)
}

// Filters returns the current filter state.
func (l *Library) Filters() Filters {
	l.filtersMu.RLock()
	defer l.filtersMu.RUnlock()
	return l.filters
}

// SetFilters replaces the filter state and rebuilds every filtered order. A
// podcast stays visible while any of its episodes passes the filter.
func (l *Library) SetFilters(f Filters) {
	l.filtersMu.Lock()
	defer l.filtersMu.Unlock()
	l.filters = f
	if !f.Active() {
		l.Podcasts.ClearFilter()
		l.Podcasts.Each(func(p *Podcast) {
			p.Episodes.ClearFilter()
		})
		return
	}
	l.Podcasts.Each(func(p *Podcast) {
		p.Episodes.ApplyFilter(func(e *Episode) bool {
			return f.matches(e)
		})
	})
	l.Podcasts.ApplyFilter(func(p *Podcast) bool {
		return p.Episodes.FilteredLen() > 0
	})
}
