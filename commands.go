package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dynamitemc/voxelstore/config"
	"github.com/dynamitemc/voxelstore/level"
	"github.com/dynamitemc/voxelstore/level/wire"
)

type Command struct {
	Name      string
	Usage     string
	Arguments int
}

var Commands = map[string]Command{
	"get": {
		Name:      "get",
		Usage:     "get <x> <y> <z>",
		Arguments: 3,
	},
	"set": {
		Name:      "set",
		Usage:     "set <x> <y> <z> <block>",
		Arguments: 4,
	},
	"fill": {
		Name:      "fill",
		Usage:     "fill <x1> <y1> <z1> <x2> <y2> <z2> <block>",
		Arguments: 7,
	},
	"clear": {
		Name:      "clear",
		Usage:     "clear <layer>",
		Arguments: 1,
	},
	"section": {
		Name:      "section",
		Usage:     "section <layer>",
		Arguments: 1,
	},
	"encode": {
		Name:      "encode",
		Usage:     "encode <protocol>",
		Arguments: 1,
	},
	"export": {
		Name:      "export",
		Usage:     "export <layer> <protocol> <file>",
		Arguments: 3,
	},
	"check": {
		Name:  "check",
		Usage: "check",
	},
	"reload": {
		Name:  "reload",
		Usage: "reload",
	},
	"help": {
		Name:  "help",
		Usage: "help",
	},
	"stop": {
		Name:  "stop",
		Usage: "stop",
	},
}

// Console runs commands read line by line from r until stop or the end of input.
func (tool *Tool) Console(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		command := strings.TrimSpace(scanner.Text())
		if command == "" {
			continue
		}
		tool.Logger.Info(tool.Command(command))
		if strings.Fields(command)[0] == "stop" {
			return
		}
	}
}

func GetArgument(args []string, index int) string {
	if len(args) <= index {
		return ""
	}
	return args[index]
}

// Command runs one console command and returns its output.
func (tool *Tool) Command(content string) string {
	args := strings.Fields(content)
	if len(args) == 0 {
		return "Unknown or incomplete command"
	}
	cmd := args[0]
	args = args[1:]
	command, exists := Commands[cmd]
	if !exists {
		return "Unknown or incomplete command"
	}
	if len(args) < command.Arguments {
		return "Usage: " + command.Usage
	}
	nums, err := numbers(args, command.Arguments)
	if err != nil && cmd != "export" {
		return "Usage: " + command.Usage
	}
	tool.Logger.Debug("Running", content)

	switch cmd {
	case "get":
		v, err := tool.Chunk.GetBlock(level.NewPos(int32(nums[0]), int32(nums[1]), int32(nums[2])))
		if err != nil {
			return err.Error()
		}
		return fmt.Sprint(v)
	case "set":
		if nums[3] < 0 {
			return "Block ids can not be negative"
		}
		if err := tool.Chunk.SetBlock(level.NewPos(int32(nums[0]), int32(nums[1]), int32(nums[2])), uint32(nums[3])); err != nil {
			return err.Error()
		}
		return fmt.Sprintf("Placed %d at %v", nums[3], level.NewPos(int32(nums[0]), int32(nums[1]), int32(nums[2])))
	case "fill":
		min := level.NewPos(int32(nums[0]), int32(nums[1]), int32(nums[2]))
		max := level.NewPos(int32(nums[3]), int32(nums[4]), int32(nums[5]))
		if nums[6] < 0 {
			return "Block ids can not be negative"
		}
		if err := tool.Chunk.Fill(min, max, uint32(nums[6])); err != nil {
			return err.Error()
		}
		return fmt.Sprintf("Filled %v to %v with %d", min, max, nums[6])
	case "clear":
		if err := tool.Chunk.ClearLayer(int(nums[0])); err != nil {
			return err.Error()
		}
		return fmt.Sprintf("Cleared section %d", nums[0])
	case "section":
		s := tool.Chunk.Section(int(nums[0]))
		if s == nil {
			return fmt.Sprintf("Section %d is empty", nums[0])
		}
		return describe(s)
	case "encode":
		codec, err := tool.Registry.Lookup(int32(nums[0]))
		if err != nil {
			return err.Error()
		}
		data, mask, err := wire.ChunkData(tool.Chunk, codec, tool.version(int32(nums[0])).To())
		if err != nil {
			return err.Error()
		}
		return fmt.Sprintf("Encoded as %v: %d bytes, section mask %v", codec, len(data), mask)
	case "export":
		return tool.export(args)
	case "check":
		if err := tool.Check(); err != nil {
			return err.Error()
		}
		return "All versions decoded to the same blocks"
	case "reload":
		return tool.reload()
	case "help":
		usages := make([]string, 0, len(Commands))
		for _, name := range []string{"get", "set", "fill", "clear", "section", "encode", "export", "check", "reload", "stop"} {
			usages = append(usages, Commands[name].Usage)
		}
		return strings.Join(usages, "\n")
	case "stop":
		return "Stopping"
	default:
		return "Unknown or incomplete command"
	}
}

// numbers parses the first n arguments as integers.
func numbers(args []string, n int) ([]int64, error) {
	nums := make([]int64, n)
	for i := range nums {
		v, err := strconv.ParseInt(GetArgument(args, i), 10, 32)
		if err != nil {
			return nil, err
		}
		nums[i] = v
	}
	return nums, nil
}

func (tool *Tool) export(args []string) string {
	nums, err := numbers(args, 2)
	if err != nil {
		return "Usage: " + Commands["export"].Usage
	}
	layer, protocol, file := int(nums[0]), int32(nums[1]), GetArgument(args, 2)
	if layer < 0 || layer >= tool.Chunk.Layers() {
		return fmt.Sprintf("Section %d is outside of the chunk", layer)
	}
	codec, err := tool.Registry.Lookup(protocol)
	if err != nil {
		return err.Error()
	}
	s := tool.Chunk.Section(layer)
	if s == nil {
		s = level.NewSection()
	}
	var buf bytes.Buffer
	if _, err := wire.EncodeSection(&buf, s, codec, tool.version(protocol).To()); err != nil {
		return err.Error()
	}
	if err := os.WriteFile(file, buf.Bytes(), 0644); err != nil {
		return err.Error()
	}
	return fmt.Sprintf("Wrote section %d as %v to %s (%d bytes)", layer, codec, file, buf.Len())
}

func (tool *Tool) reload() string {
	c, err := config.Load(tool.ConfigPath)
	if err != nil {
		return err.Error()
	}
	tool.Config = c
	tool.Logger.FilePath = c.LogFile
	tool.Logger.Debugging = c.Debug || HasArg("-debug")
	if c.World.Layers != tool.Chunk.Layers() {
		tool.Chunk = level.NewChunk(c.World.Layers)
		return fmt.Sprintf("Reloaded config, the chunk is now %d sections tall and empty", c.World.Layers)
	}
	return "Reloaded config"
}
