//go:build !(js && wasm)

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/voxelsplace/voxdoc/config"
	"github.com/voxelsplace/voxdoc/utils"
)

func usage() {
	fmt.Println("Usage: voxtool [-config file.toml|file.yaml] [-model i] <command> [args]")
	fmt.Println("Commands:")
	fmt.Println("  vox2glb input.vox output.glb                 (mesh every model and write a .glb)")
	fmt.Println("  info input.vox                               (list models, sizes and voxel counts)")
	fmt.Println("  archive output.voxarc input1.vox [input2.vox ...]  (bundle .vox files)")
	fmt.Println("  unarchive input.voxarc output_dir            (extract .vox files from an archive)")
	fmt.Println("  diff old.vox new.vox output.vxd              (edit stream between two versions of a model)")
	fmt.Println("  patch input.vox edits.vxd output.vox         (apply an edit stream)")
	fmt.Println("  gennoise <percentage> <amount> <size> <output_dir>")
	fmt.Println("  gennoise <percentageMin> <percentageMax> <amount> <size> <output_dir>")
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	fs := flag.NewFlagSet("voxtool", flag.ContinueOnError)
	fs.Usage = usage
	configPath := fs.String("config", "", "TOML or YAML config file (default $"+config.EnvPath+")")
	model := fs.Int("model", 0, "model index for diff and patch")
	if err := fs.Parse(argv); err != nil {
		return 1
	}
	args := fs.Args()
	if len(args) < 1 {
		usage()
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	log, closer, err := cfg.NewLogger()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := dispatch(ctx, utils.New(cfg, log), args, *model); err != nil {
		if errors.Is(err, errUsage) {
			usage()
		} else {
			log.Error("command failed", "command", args[0], "err", err)
		}
		return 1
	}
	return 0
}

var errUsage = errors.New("usage")

func dispatch(ctx context.Context, tool *utils.Tool, args []string, model int) error {
	need := func(n int) error {
		if len(args) != n {
			return errUsage
		}
		return nil
	}
	switch args[0] {
	case "vox2glb":
		if err := need(3); err != nil {
			return err
		}
		return tool.RunVox2GLB(ctx, args[1], args[2])
	case "info":
		if err := need(2); err != nil {
			return err
		}
		return tool.RunInfo(args[1], os.Stdout)
	case "archive":
		if len(args) < 3 {
			return errUsage
		}
		return tool.RunArchive(args[2:], args[1])
	case "unarchive":
		if err := need(3); err != nil {
			return err
		}
		return tool.RunUnarchive(args[1], args[2])
	case "diff":
		if err := need(4); err != nil {
			return err
		}
		return tool.RunDiff(args[1], args[2], args[3], model)
	case "patch":
		if err := need(4); err != nil {
			return err
		}
		return tool.RunPatch(args[1], args[2], args[3], model)
	case "gennoise":
		return gennoise(tool, args[1:])
	}
	return errUsage
}

// gennoise accepts <pct> <amount> <size> <dir> or <min> <max> <amount> <size> <dir>.
func gennoise(tool *utils.Tool, args []string) error {
	if len(args) != 4 && len(args) != 5 {
		return errUsage
	}
	nums := make([]float64, len(args)-1)
	for i := range nums {
		v, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			return fmt.Errorf("gennoise argument %d: %w", i+1, err)
		}
		nums[i] = v
	}
	dir := args[len(args)-1]
	if len(nums) == 3 {
		return tool.RunGenerateNoise(nums[0], int(nums[1]), int(nums[2]), dir)
	}
	return tool.RunGenerateNoiseRange(nums[0], nums[1], int(nums[2]), int(nums[3]), dir, time.Now().UnixNano())
}
