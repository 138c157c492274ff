// Package player launches an external audio player for episode playback.
// Playback control beyond start and stop belongs to the player itself.
package player

import (
	"fmt"
	"log"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

// Player runs one external player process at a time. Starting a new episode
// stops the previous one.
type Player struct {
	command string

	mu   sync.Mutex
	cmd  *exec.Cmd
	done chan struct{}
}

// New creates a player around the given command, "mpv" when empty.
func New(command string) *Player {
	if command == "" {
		command = "mpv"
	}
	return &Player{command: command}
}

// Play starts playback of the given file path or stream URL.
func (p *Player) Play(target string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stop()

	cmd := exec.Command(p.command, target)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start player: %w", err)
	}

	done := make(chan struct{})
	go func() {
		if err := cmd.Wait(); err != nil {
			log.Printf("Player exited: %v", err)
		}
		close(done)
	}()

	p.cmd = cmd
	p.done = done
	return nil
}

// Playing reports whether a player process is still running.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd == nil {
		return false
	}
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// Stop ends the current playback, if any.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stop()
}

// stop terminates the process, escalating to a kill when it ignores the
// signal. Callers hold the mutex.
func (p *Player) stop() {
	if p.cmd == nil {
		return
	}
	select {
	case <-p.done:
		p.cmd = nil
		return
	default:
	}

	if err := p.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		log.Printf("Failed to signal player: %v", err)
	}
	select {
	case <-p.done:
	case <-time.After(500 * time.Millisecond):
		log.Printf("Force killing player (pid %d)", p.cmd.Process.Pid)
		p.cmd.Process.Kill()
		<-p.done
	}
	p.cmd = nil
}
