//go:build pprof

package cli

import (
	"context"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/pkg/profile"

	"github.com/sandrolain/gojexp/pkg/log"
)

var profileModes = map[string]func(*profile.Profile){
	"block":     profile.BlockProfile,
	"cpu":       profile.CPUProfile,
	"clock":     profile.ClockProfile,
	"goroutine": profile.GoroutineProfile,
	"mem":       profile.MemProfile,
	"allocs":    profile.MemProfileAllocs,
	"heap":      profile.MemProfileHeap,
	"mutex":     profile.MutexProfile,
	"thread":    profile.ThreadcreationProfile,
	"trace":     profile.TraceProfile,
}

type pprofConfig struct {
	Mode string `default:""            enum:",${pprofModeEnum}" help:"Enable profiling." placeholder:"${enum}"`
	Dir  string `default:"${pprofDir}" help:"Profile output directory." type:"path"`
}

func (pprofConfig) vars() kong.Vars {
	return kong.Vars{
		"pprofModeEnum": strings.Join(slices.Sorted(maps.Keys(profileModes)), ","),
		"pprofDir":      filepath.Join(os.TempDir(), name+"-pprof"),
	}
}

func (pprofConfig) group() kong.Group {
	return kong.Group{Key: "pprof", Title: "Profiling (pprof)"}
}

// start starts profiling if a mode is selected.
func (c pprofConfig) start(ctx context.Context, logger log.Logger) (stop func()) {
	mode, ok := profileModes[c.Mode]
	if !ok {
		return func() {}
	}
	logger.DebugContext(ctx, "pprof start", slog.String("mode", c.Mode), slog.String("dir", c.Dir))
	p := profile.Start(mode, profile.ProfilePath(c.Dir), profile.Quiet)
	return func() {
		p.Stop()
		logger.DebugContext(ctx, "pprof stop", slog.String("mode", c.Mode))
	}
}
