package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ayusman/abhinaya/internal/config"
	"github.com/ayusman/abhinaya/internal/engine"
	"github.com/ayusman/abhinaya/internal/gesture"
	"github.com/ayusman/abhinaya/internal/landmark"
	"github.com/ayusman/abhinaya/internal/server"
	"github.com/ayusman/abhinaya/internal/store"
	"github.com/ayusman/abhinaya/internal/tray"
)

func main() {
	fmt.Println("Abhinaya - Gesture & Expression Tracking")

	cfgPath, err := config.DefaultPath()
	if err != nil {
		log.Fatalf("Failed to locate config: %v", err)
	}
	fileCfg, err := config.Load(cfgPath)
	if err != nil {
		log.Printf("Config error (%v), using defaults", err)
	}

	dbPath, err := fileCfg.DBPath()
	if err != nil {
		log.Fatalf("Failed to locate database: %v", err)
	}
	st, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	engCfg := fileCfg.Apply(engine.DefaultConfig())
	applyActiveProfile(st, &engCfg)

	eng := engine.New(engCfg)
	bridge := server.NewBridge()
	bridge.OnModelReady = func() {
		// The renderer just announced its parameter set; rebind so the
		// expression channels resolve against it.
		eng.BindAvatar(bridge, activeAliases(st))
		eng.BindScene(bridge)
		log.Println("Avatar model bound")
	}

	tr := tray.New()
	bridge.OnClientCountChange = func(n int) {
		tr.SetRendererConnected(n > 0)
	}
	eng.SetObservers(engine.Observers{
		OnLandmarks: bridge.PublishLandmarks,
		OnGesture: func(g gesture.Gesture) {
			tr.SetLastGesture(string(g))
		},
		OnSpeaking: tr.SetSpeaking,
	})

	runner := engine.NewRunner(engine.RunnerConfig{
		CameraID:     fileCfg.CameraID(),
		MotionThresh: fileCfg.MotionThreshold(),
		Feed:         landmark.DefaultConfig(),
	}, eng)

	webDir := findWebDir()
	if webDir != "" {
		fmt.Printf("Serving renderer from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		Bridge:    bridge,
	})

	addr := fileCfg.ServerAddr()
	go func() {
		fmt.Printf("Starting server on %s\n", addr)
		if err := srv.ListenAndServe(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	if err := runner.Start(); err != nil {
		log.Printf("Failed to start tracking pipeline: %v", err)
	} else {
		runner.SetEnabled(true)
	}

	tr.OnToggle(runner.SetEnabled)
	tr.OnOpenRenderer(func() {
		log.Printf("Renderer available at http://localhost%s/", addr)
	})
	tr.OnQuit(func() {
		runner.Stop()
		bridge.Close()
	})

	// Blocks until the tray quits.
	tr.Run()
}

// applyActiveProfile overlays the active tuning profile, when one exists,
// onto the mapper configuration.
func applyActiveProfile(st *store.Store, cfg *engine.Config) {
	p, err := st.Profiles().GetActive()
	if err != nil {
		return
	}
	cfg.Mapper.TiltSensitivity = p.TiltSensitivity
	cfg.Mapper.ChannelSmoothing = p.ChannelSmoothing
	cfg.Mapper.LipSyncGain = p.LipSyncGain
	cfg.Mapper.ClickCooldown = time.Duration(p.ClickCooldownMs) * time.Millisecond
	cfg.Mapper.SwipeCooldown = time.Duration(p.SwipeCooldownMs) * time.Millisecond
	log.Printf("Applied tuning profile %q", p.Name)
}

// activeAliases returns the active profile's parameter overrides, or nil.
func activeAliases(st *store.Store) map[string]string {
	p, err := st.Profiles().GetActive()
	if err != nil {
		return nil
	}
	aliases, err := st.Profiles().GetAliases(p.ID)
	if err != nil {
		return nil
	}
	return aliases
}

// findWebDir searches for the bundled renderer in common locations.
// It checks: "web", "../web", "../../web", and ~/.abhinaya/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".abhinaya", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
