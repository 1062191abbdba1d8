package main

import (
	"bytes"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/dynamitemc/voxelstore/config"
	"github.com/dynamitemc/voxelstore/level"
	"github.com/dynamitemc/voxelstore/level/wire"
	"github.com/dynamitemc/voxelstore/logger"
)

func HasArg(arg string) bool {
	for _, s := range os.Args {
		if s == arg {
			return true
		}
	}
	return false
}

// ArgValue returns the argument following arg, or def if arg is not given.
func ArgValue(arg string, def string) string {
	for i, s := range os.Args {
		if s == arg && i+1 < len(os.Args) {
			return os.Args[i+1]
		}
	}
	return def
}

func main() {
	start := time.Now()
	path := ArgValue("-config", config.DefaultPath)
	tool, err := NewTool(path)
	if err != nil {
		logger.Logger{}.Error("Failed to load config:", err)
		os.Exit(1)
	}
	if HasArg("-debug") {
		tool.Logger.Debugging = true
	}
	tool.Logger.Info("Starting voxelstore")
	tool.Logger.Debug("Loaded config from", path)

	if file := ArgValue("-inspect", ""); file != "" {
		protocol, err := strconv.Atoi(ArgValue("-protocol", "757"))
		if err != nil {
			tool.Logger.Error("Invalid protocol:", err)
			os.Exit(1)
		}
		if err := tool.Inspect(file, int32(protocol)); err != nil {
			tool.Logger.Error("Failed to inspect", file+":", err)
			os.Exit(1)
		}
		return
	}

	tool.Chunk = DemoChunk(tool.Config.World.Layers)
	if err := tool.Check(); err != nil {
		tool.Logger.Error("Self check failed:", err)
		os.Exit(1)
	}
	tool.Logger.Info("Done!", "("+fmt.Sprint(time.Since(start).Round(time.Millisecond))+")")

	if HasArg("-console") {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt)
		go func() {
			for range c {
				tool.Logger.Info(tool.Command("stop"))
				os.Exit(0)
			}
		}()
		tool.Console(os.Stdin)
	}
}

// Tool holds the chunk being worked on and everything needed to encode it.
type Tool struct {
	Config     *config.Config
	ConfigPath string
	Logger     logger.Logger
	Registry   *wire.Registry
	Chunk      *level.Chunk
}

func NewTool(path string) (*Tool, error) {
	c, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return &Tool{
		Config:     c,
		ConfigPath: path,
		Logger: logger.Logger{
			FilePath:  c.LogFile,
			Debugging: c.Debug,
		},
		Registry: wire.DefaultRegistry,
		Chunk:    level.NewChunk(c.World.Layers),
	}, nil
}

// version returns the configured version for protocol, or one without a
// remap if it is not configured.
func (tool *Tool) version(protocol int32) config.Version {
	for _, v := range tool.Config.Versions {
		if v.Protocol == protocol {
			return v
		}
	}
	return config.Version{Protocol: protocol}
}

// Inspect decodes a single section payload read from file.
func (tool *Tool) Inspect(file string, protocol int32) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	codec, err := tool.Registry.Lookup(protocol)
	if err != nil {
		return err
	}
	r := bytes.NewReader(data)
	s, err := wire.DecodeSection(r, codec, tool.version(protocol).From())
	if err != nil {
		return err
	}
	if r.Len() != 0 {
		tool.Logger.Warn(r.Len(), "bytes left after the section")
	}
	tool.Logger.Info("Decoded", file, "as", codec)
	tool.Logger.Info(describe(s))
	return nil
}

func describe(s *level.Section) string {
	return fmt.Sprintf("bits per block: %d, palette: %v, non air blocks: %d", s.BitsPerBlock(), s.Palette(), s.NonAirBlocks())
}
