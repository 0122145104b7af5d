package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/promptreel/internal/backend"
	"github.com/ivlev/promptreel/internal/capture"
	"github.com/ivlev/promptreel/internal/compositor"
	"github.com/ivlev/promptreel/internal/config"
	"github.com/ivlev/promptreel/internal/scenario"
	"github.com/ivlev/promptreel/internal/session"
	"github.com/ivlev/promptreel/internal/system"
)

var buildVersion = "dev"

func main() {
	system.InitResourceLimits()

	defaults := config.Default()

	profilePtr := flag.String("profile", "", "Path to a YAML profile overriding the defaults")
	promptPtr := flag.String("prompt", "", "Generation prompt (required)")
	backendPtr := flag.String("backend", defaults.BackendURL, "Generation backend base URL")
	outputPtr := flag.String("output", defaults.OutputDir, "Output directory")
	captionPtr := flag.String("caption", defaults.Caption, "Caption overlay text")
	qrPtr := flag.String("qr", "", "Optional link rendered as a QR badge")
	scenarioPtr := flag.String("scenario", "", "Optional YAML camera scenario")
	widthPtr := flag.Int("width", defaults.Width, "Frame width")
	heightPtr := flag.Int("height", defaults.Height, "Frame height")
	fpsPtr := flag.Int("fps", defaults.FPS, "Frame rate")
	durationPtr := flag.Float64("duration", defaults.MaxDuration, "Recording ceiling in seconds")
	qualityPtr := flag.Int("quality", 0, "Encoder CRF (0 = codec default)")
	statsPtr := flag.Bool("stats", false, "Print a performance report")

	flag.Parse()

	cfg := defaults
	if *profilePtr != "" {
		loaded, err := config.LoadProfile(*profilePtr)
		if err != nil {
			log.Fatalf("[-] profile error: %v", err)
		}
		cfg = loaded
	}

	// Explicit flags win over the profile.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "prompt":
			cfg.Prompt = *promptPtr
		case "backend":
			cfg.BackendURL = *backendPtr
		case "output":
			cfg.OutputDir = *outputPtr
		case "caption":
			cfg.Caption = *captionPtr
		case "qr":
			cfg.QRLink = *qrPtr
		case "scenario":
			cfg.Scenario = *scenarioPtr
		case "width":
			cfg.Width = *widthPtr
		case "height":
			cfg.Height = *heightPtr
		case "fps":
			cfg.FPS = *fpsPtr
		case "duration":
			cfg.MaxDuration = *durationPtr
		case "quality":
			cfg.Quality = *qualityPtr
		case "stats":
			cfg.ShowStats = *statsPtr
		}
	})
	cfg.BuildVersion = buildVersion

	if cfg.Prompt == "" {
		log.Fatalf("[-] a prompt is required (-prompt)")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] config error: %v", err)
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		log.Fatalf("[-] output directory: %v", err)
	}

	encoderName, err := system.BestEncoder()
	if err != nil {
		log.Fatalf("[-] capture unavailable: %v", err)
	}
	cfg.VideoEncoder = encoderName
	fmt.Printf("[*] Encoder: %s | %dx%d @ %d FPS | ceiling %.0fs\n",
		encoderName, cfg.Width, cfg.Height, cfg.FPS, cfg.MaxDuration)
	fmt.Printf("[*] Fragment budget: %d MiB\n", system.FragmentBudget()>>20)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The three generation calls are independent; only the image is
	// indispensable for the reel.
	client := backend.NewClient(cfg.BackendURL)
	var text, dataURL, script string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		dataURL, err = client.GenerateImage(gctx, cfg.Prompt)
		return err
	})
	g.Go(func() error {
		var err error
		if text, err = client.GenerateText(gctx, cfg.Prompt); err != nil {
			log.Printf("[!] text generation failed: %v", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if script, err = client.GenerateScript(gctx, cfg.Prompt); err != nil {
			log.Printf("[!] script generation failed: %v", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Fatalf("[-] image generation failed: %v", err)
	}

	img, err := backend.DecodeDataURL(dataURL)
	if err != nil {
		log.Fatalf("[-] image decode failed: %v", err)
	}
	fmt.Printf("[*] Source image: %dx%d\n", img.Bounds().Dx(), img.Bounds().Dy())

	var keyframes []scenario.Keyframe
	if cfg.Scenario != "" {
		sc, err := scenario.Read(cfg.Scenario)
		if err != nil {
			log.Fatalf("[-] scenario error: %v", err)
		}
		keyframes = sc.Keyframes
		fmt.Printf("[*] Camera scenario: %s (%d keyframes)\n", cfg.Scenario, len(keyframes))
	}

	comp := compositor.New(compositor.Options{
		Caption:   cfg.Caption,
		QRLink:    cfg.QRLink,
		Keyframes: keyframes,
	})

	ctrl, err := session.NewController(cfg, comp)
	if err != nil {
		log.Fatalf("[-] controller error: %v", err)
	}
	defer ctrl.Close()

	ctrl.SetImage(img)

	started := time.Now()
	if err := ctrl.Start(ctx); err != nil {
		if errors.Is(err, capture.ErrCaptureUnavailable) {
			log.Fatalf("[-] capture unavailable: %v", err)
		}
		log.Fatalf("[-] session start failed: %v", err)
	}
	fmt.Printf("[*] Recording (Ctrl-C stops early)...\n")

	select {
	case <-ctx.Done():
		fmt.Println("[*] Interrupted, finalizing...")
	case <-ctrl.Done():
	}

	if err := ctrl.Stop(); err != nil {
		log.Fatalf("[-] session failed, no artifact: %v", err)
	}
	if err := ctrl.Err(); err != nil {
		log.Fatalf("[-] session failed, no artifact: %v", err)
	}
	recorded := time.Since(started)

	artifact := ctrl.Artifact()
	if len(artifact) == 0 {
		log.Fatalf("[-] no video data captured")
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	reelPath := filepath.Join(cfg.OutputDir, fmt.Sprintf("reel_%s.webm", timestamp))
	if err := os.WriteFile(reelPath, artifact, 0644); err != nil {
		log.Fatalf("[-] could not write video: %v", err)
	}

	writeTextArtifact(cfg.OutputDir, "text.txt", text)
	writeTextArtifact(cfg.OutputDir, "script.txt", script)

	if cfg.ShowStats {
		fmt.Printf(
			"--- [PERFORMANCE REPORT] ---\n"+
				"Build: %s\n"+
				"Recorded: %.2fs\n"+
				"Artifact: %d KiB\n"+
				"Threads: %d\n"+
				"----------------------------\n",
			cfg.BuildVersion, recorded.Seconds(), len(artifact)>>10, system.EncoderThreads(),
		)
	}

	fmt.Printf("[+++] Done! Video: %s (%.1fs)\n", reelPath, recorded.Seconds())
}

func writeTextArtifact(dir, name, content string) {
	if content == "" {
		return
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		log.Printf("[!] could not write %s: %v", name, err)
		return
	}
	fmt.Printf("[*] Wrote %s\n", path)
}
