package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/talonshell/talon"
	"gopkg.in/yaml.v3"
)

var version = "dev" // set via -ldflags at build time

// fileConfig is the subset of interpreter configuration loadable from
// ~/.talon/config.yaml. Zero values leave the defaults untouched.
type fileConfig struct {
	Debug         bool   `yaml:"debug"`
	Prompt        string `yaml:"prompt"`
	CommentMarker string `yaml:"comment_marker"`
	HistoryFile   string `yaml:"history_file"`
}

// configDir returns the path to ~/.talon, or "" if the home directory
// is unknown.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".talon")
}

const defaultConfigYAML = `# talon configuration
#debug: false
#prompt: talon
#comment_marker: "#"
#history_file: ~/.talon/history.db
`

// loadFileConfig merges ~/.talon/config.yaml into cfg, creating the
// file with commented defaults on first run. Failures are graceful:
// the defaults stay in effect.
func loadFileConfig(cfg *talon.Config) {
	dir := configDir()
	if dir == "" {
		return
	}
	path := filepath.Join(dir, "config.yaml")

	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if os.MkdirAll(dir, 0o755) == nil {
			_ = os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
		}
		return
	}
	if err != nil {
		return
	}

	var fc fileConfig
	if err := yaml.Unmarshal(content, &fc); err != nil {
		fmt.Fprintf(os.Stderr, "talon: bad config %s: %v\n", path, err)
		return
	}
	if fc.Debug {
		cfg.Debug = true
	}
	if fc.Prompt != "" {
		cfg.PromptName = fc.Prompt
	}
	if fc.CommentMarker != "" {
		cfg.CommentMarker = fc.CommentMarker
	}
	if fc.HistoryFile != "" {
		cfg.HistoryFile = expandHome(fc.HistoryFile)
	}
}

// expandHome resolves a leading ~/ against the user's home directory.
func expandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

func main() {
	var (
		command     = flag.String("c", "", "dispatch one line and exit")
		debug       = flag.Bool("debug", false, "enable debug logging")
		noRC        = flag.Bool("norc", false, "skip ~/.talon/config.yaml")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("talon %s\n", version)
		return
	}

	cfg := talon.DefaultConfig()
	if !*noRC {
		loadFileConfig(cfg)
	}
	if *debug {
		cfg.Debug = true
	}
	if cfg.HistoryFile == "" {
		if dir := configDir(); dir != "" && os.MkdirAll(dir, 0o755) == nil {
			cfg.HistoryFile = filepath.Join(dir, "history.db")
		}
	}

	in := talon.New(cfg)
	defer in.Close()

	var code int
	switch {
	case *command != "":
		code = in.Eval(*command)
	case flag.Arg(0) != "":
		code = in.SourceFile(flag.Arg(0))
	default:
		code = in.Run()
	}
	if code != 0 {
		in.Close()
		os.Exit(1)
	}
}
