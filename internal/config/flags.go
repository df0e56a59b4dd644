package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagInput      = flag.String("input", "", "Network JSON file")
	flag2D         = flag.Bool("2d", false, "Render in 2D mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagLayoutAddr = flag.String("layout-addr", "", "Layout worker address (tcp:// or ipc://)")
	flagNodes      = flag.Int("nodes", 0, "Nodes to generate when no input is given")
	flagEdges      = flag.Int("edges", 0, "Edges to generate when no input is given")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagInput != "" {
		cfg.Network.Input = *flagInput
	}
	if *flag2D {
		cfg.Render.Use2D = true
		cfg.Layout.Engine = "eades"
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
	if *flagLayoutAddr != "" {
		cfg.Layout.Address = *flagLayoutAddr
	}
	if *flagNodes > 0 {
		cfg.Network.GenerateNodes = *flagNodes
	}
	if *flagEdges > 0 {
		cfg.Network.GenerateEdges = *flagEdges
	}
}
