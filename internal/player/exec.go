package player

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// ErrPlayerNotFound means no usable media player executable was found.
var ErrPlayerNotFound = errors.New("media player not found")

// DefaultCandidates are tried in order when no player is configured.
var DefaultCandidates = []string{"mpv", "vlc", "ffplay"}

// ExecLauncher spawns a media player executable with the stream URL as its
// only argument.
type ExecLauncher struct {
	mu      sync.Mutex
	command string
	path    string
}

var _ Launcher = (*ExecLauncher)(nil)

// NewExecLauncher returns a launcher for command, which may be a bare name,
// a path, or empty to pick the first of DefaultCandidates that is installed.
func NewExecLauncher(command string) *ExecLauncher {
	return &ExecLauncher{command: strings.TrimSpace(command)}
}

// Resolve locates the executable. A successful lookup is cached; a failed one
// is retried on the next call so a player installed later is picked up.
func (l *ExecLauncher) Resolve() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.path != "" {
		return l.path, nil
	}

	path, err := resolveCommand(l.command)
	if err != nil {
		return "", err
	}
	l.path = path
	return path, nil
}

// Launch starts the player for url.
func (l *ExecLauncher) Launch(url string) (Process, error) {
	path, err := l.Resolve()
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(path, url)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	p := &execProcess{cmd: cmd, done: make(chan struct{})}
	go func() {
		_ = cmd.Wait()
		close(p.done)
	}()
	return p, nil
}

type execProcess struct {
	cmd  *exec.Cmd
	done chan struct{}
}

func (p *execProcess) PID() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

func (p *execProcess) Kill() error {
	if p.cmd.Process == nil {
		return os.ErrProcessDone
	}
	return p.cmd.Process.Kill()
}

func (p *execProcess) Done() <-chan struct{} {
	return p.done
}

func resolveCommand(command string) (string, error) {
	if command != "" {
		if strings.ContainsRune(command, os.PathSeparator) || strings.ContainsRune(command, '/') {
			if isExecutable(command) {
				return command, nil
			}
			return "", fmt.Errorf("%w: %s is not executable", ErrPlayerNotFound, command)
		}
		if path := findBundled(command); path != "" {
			return path, nil
		}
		if path, err := exec.LookPath(command); err == nil {
			return path, nil
		}
		return "", fmt.Errorf("%w: %s is not installed or not in PATH", ErrPlayerNotFound, command)
	}

	for _, candidate := range DefaultCandidates {
		if path := findBundled(candidate); path != "" {
			return path, nil
		}
	}
	for _, candidate := range DefaultCandidates {
		if path, err := exec.LookPath(candidate); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: install one of %s or set player in config", ErrPlayerNotFound, strings.Join(DefaultCandidates, ", "))
}

// findBundled looks for name next to the running binary.
func findBundled(name string) string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	dir := filepath.Dir(exe)

	names := []string{name}
	if runtime.GOOS == "windows" && !strings.HasSuffix(strings.ToLower(name), ".exe") {
		names = append(names, name+".exe")
	}
	for _, n := range names {
		path := filepath.Join(dir, n)
		if isExecutable(path) {
			return path
		}
	}
	return ""
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if info.IsDir() {
		return false
	}
	if strings.HasSuffix(strings.ToLower(path), ".exe") {
		return true
	}
	return info.Mode()&0o111 != 0
}
