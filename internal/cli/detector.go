package cli

import (
	"context"
	"os"
	"runtime"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
)

const (
	cacheSize = 32
	// The PATH-search fallback shells out, so it gets its own short deadline.
	searchTimeout = 5 * time.Second
)

type detection struct {
	path  string
	found bool
}

// Detector locates installed AI CLI tools. Results are cached, including
// misses, so repeated availability checks cost nothing; ClearCache forces a
// fresh look after the user installs or removes a tool.
type Detector struct {
	invoker Invoker
	cache   *lru.Cache[string, detection]

	// test seams
	candidates func(tool string) []string
	probe      func(path string) bool
}

// NewDetector creates a Detector that uses invoker for the PATH-search fallback.
func NewDetector(invoker Invoker) *Detector {
	cache, _ := lru.New[string, detection](cacheSize) // errors only on size <= 0
	return &Detector{
		invoker:    invoker,
		cache:      cache,
		candidates: wellKnownPaths,
		probe:      isExecutable,
	}
}

// Detect returns the filesystem path of tool, or ok=false when the tool
// cannot be found. Well-known install locations are checked first, all
// concurrently with the original priority preserved, then the platform's
// PATH search utility is consulted with PATH extended by those locations.
func (d *Detector) Detect(ctx context.Context, tool string) (string, bool) {
	if hit, ok := d.cache.Get(tool); ok {
		return hit.path, hit.found
	}

	if path, ok := d.probeKnownPaths(tool); ok {
		d.cache.Add(tool, detection{path: path, found: true})
		return path, true
	}

	if path, ok := d.searchPath(ctx, tool); ok {
		d.cache.Add(tool, detection{path: path, found: true})
		return path, true
	}

	d.cache.Add(tool, detection{})
	return "", false
}

// ClearCache drops all cached detections, positive and negative.
func (d *Detector) ClearCache() {
	d.cache.Purge()
}

func (d *Detector) probeKnownPaths(tool string) (string, bool) {
	paths := d.candidates(tool)
	if len(paths) == 0 {
		return "", false
	}

	found := make([]bool, len(paths))
	var g errgroup.Group
	for i, p := range paths {
		g.Go(func() error {
			found[i] = d.probe(p)
			return nil
		})
	}
	_ = g.Wait() // probes only record, they never fail

	for i := range found {
		if found[i] {
			return paths[i], true
		}
	}
	return "", false
}

// searchPath runs which (where on Windows) with PATH prepended by the
// well-known install directories.
func (d *Detector) searchPath(ctx context.Context, tool string) (string, bool) {
	locator := "which"
	if runtime.GOOS == "windows" {
		locator = "where"
	}

	result, err := d.invoker.Invoke(ctx, locator, []string{tool}, InvokeOptions{
		Timeout: searchTimeout,
		Env:     augmentedEnv(),
	})
	if err != nil || result.ExitCode != 0 {
		return "", false
	}

	// where can print several matches; the first line wins.
	line := strings.TrimSpace(result.Stdout)
	if i := strings.IndexByte(line, '\n'); i != -1 {
		line = strings.TrimSpace(line[:i])
	}
	if line == "" {
		return "", false
	}
	return line, true
}

// augmentedEnv returns the current environment with PATH prepended by the
// well-known install directories.
func augmentedEnv() []string {
	env := os.Environ()
	prefix := strings.Join(knownInstallDirs(), string(os.PathListSeparator))
	for i, kv := range env {
		if strings.HasPrefix(kv, "PATH=") {
			env[i] = "PATH=" + prefix + string(os.PathListSeparator) + kv[len("PATH="):]
			return env
		}
	}
	return append(env, "PATH="+prefix)
}

// isExecutable reports whether path names a regular file that this platform
// would run. Windows decides by extension, so existence is enough there.
func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
