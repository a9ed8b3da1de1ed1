package cli

import (
	"os"
	"path/filepath"
	"runtime"
)

// knownInstallDirs returns the directories to search for AI tools, highest
// priority first. A packaged desktop app does not inherit the user's
// interactive shell PATH, so these cover the places installers and package
// managers actually put binaries.
func knownInstallDirs() []string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "darwin":
		return []string{
			"/opt/homebrew/bin",
			"/usr/local/bin",
			filepath.Join(home, ".local", "bin"),
			filepath.Join(home, ".npm-global", "bin"),
			filepath.Join(home, "bin"),
			"/usr/bin",
		}
	case "windows":
		return []string{
			filepath.Join(os.Getenv("LOCALAPPDATA"), "Programs"),
			filepath.Join(os.Getenv("APPDATA"), "npm"),
			filepath.Join(os.Getenv("ProgramFiles"), "nodejs"),
		}
	default:
		return []string{
			filepath.Join(home, ".local", "bin"),
			"/usr/local/bin",
			filepath.Join(home, ".npm-global", "bin"),
			filepath.Join(home, "bin"),
			"/usr/bin",
			"/snap/bin",
		}
	}
}

// executableNames returns the candidate file names for tool on this platform.
func executableNames(tool string) []string {
	if runtime.GOOS == "windows" {
		return []string{tool + ".exe", tool + ".cmd", tool + ".bat"}
	}
	return []string{tool}
}

// wellKnownPaths returns the full candidate paths for tool, priority order preserved.
func wellKnownPaths(tool string) []string {
	dirs := knownInstallDirs()
	names := executableNames(tool)
	paths := make([]string, 0, len(dirs)*len(names))
	for _, d := range dirs {
		for _, n := range names {
			paths = append(paths, filepath.Join(d, n))
		}
	}
	return paths
}
