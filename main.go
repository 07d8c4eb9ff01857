/*
Preview builds the vertex, index and uniform buffers of a spinning textured
quad and hands them to a renderer backend, frame by frame.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spaghettifunk/preview/engine"
	"github.com/spaghettifunk/preview/engine/config"
	"github.com/spaghettifunk/preview/engine/core"
	"github.com/spaghettifunk/preview/engine/renderer"
	"github.com/spaghettifunk/preview/engine/renderer/shaders"
)

func main() {
	configPath := flag.String("config", "assets/preview.toml", "Preview configuration file")
	outputDir := flag.String("out", "", "Output directory, overrides preview.output_dir")
	frames := flag.Int64("frames", -1, "Frames to draw, 0 runs until interrupted, overrides preview.frames")
	watch := flag.Bool("watch", false, "Reload when the configuration or the texture changes")
	backendName := flag.String("backend", "dump", "Renderer backend: dump or capture")
	compileOnly := flag.Bool("compile-only", false, "Write the shader source and SPIR-V, then exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		core.LogFatal("%s", err)
	}
	if err := core.SetLogLevel(cfg.Log.Level); err != nil {
		core.LogFatal("%s", err)
	}
	if *outputDir != "" {
		cfg.Preview.OutputDir = *outputDir
	}
	if *frames >= 0 {
		cfg.Preview.Frames = uint64(*frames)
	}
	out := cfg.Resolve(cfg.Preview.OutputDir)

	if *compileOnly {
		if err := compileShaders(cfg, out); err != nil {
			core.LogFatal("%s", err)
		}
		return
	}

	backend, capture, err := newBackend(*backendName, out)
	if err != nil {
		core.LogFatal("%s", err)
	}

	e, err := engine.New(cfg, backend)
	if err != nil {
		core.LogFatal("%s", err)
	}
	if err := e.Initialize(); err != nil {
		core.LogFatal("%s", err)
	}
	if *watch {
		if err := e.Watch(); err != nil {
			core.LogFatal("%s", err)
		}
	}

	// signal channel to capture system calls
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	go func() {
		// capture sigterm and other system call here
		<-sigCh
		if !core.EventFire(core.EVENT_CODE_APPLICATION_QUIT, nil, core.EventContext{}) {
			cancel()
		}
	}()

	runErr := e.Run(ctx)
	if err := e.Shutdown(); err != nil {
		core.LogError("%s", err)
	}
	if runErr != nil {
		core.LogFatal("%s", runErr)
	}

	if capture != nil {
		frames := capture.Frames()
		core.LogInfo("captured %d frames", capture.FrameCount())
		if len(frames) > 0 {
			last := frames[len(frames)-1]
			core.LogInfo("last frame %d: %d indices, mvp %v", last.FrameNumber, last.IndexCount, last.Uniform.MVP.Data)
		}
	} else {
		core.LogInfo("buffers written to %s", out)
	}
}

func newBackend(name, outputDir string) (renderer.RendererBackend, *renderer.CaptureBackend, error) {
	switch name {
	case "dump":
		b, err := renderer.NewDumpBackend(outputDir)
		return b, nil, err
	case "capture":
		b := renderer.NewCaptureBackend(8)
		return b, b, nil
	}
	return nil, nil, fmt.Errorf("unknown backend %q", name)
}

func compileShaders(cfg *config.Config, outputDir string) error {
	layout, err := cfg.VertexLayout()
	if err != nil {
		return err
	}
	program, err := shaders.Build(layout, cfg.UniformLayout())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outputDir, renderer.DumpShaderSourceFile), []byte(program.Source), 0o644); err != nil {
		return err
	}
	spv := filepath.Join(outputDir, renderer.DumpShaderBinaryFile)
	if err := os.WriteFile(spv, program.Bytes(), 0o644); err != nil {
		return err
	}
	core.LogInfo("wrote %s (%d words)", spv, len(program.SPIRV))
	return nil
}
