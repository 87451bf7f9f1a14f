package driftfield

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// Mode selects which display mode lays the slots out.
type Mode int

const (
	ModeFloating Mode = iota // A drifting, wobbling field of cards inside a volume
	ModeTunnel               // An infinite tunnel of cards around a cylinder
	ModeGrid                 // A layered spiral lattice advancing toward the viewer
)

// String returns the Mode's name.
func (mode Mode) String() string {
	switch mode {
	case ModeTunnel:
		return "Tunnel"
	case ModeGrid:
		return "Grid"
	default:
		return "Floating"
	}
}

// Settings is the live configuration of a Field. Every value can change at runtime;
// Field.Apply makes the change take effect on the next tick without a restart.
// Out-of-range values are clamped, never rejected.
type Settings struct {
	Mode             Mode `json:"mode"`
	Tier             Tier `json:"tier"`
	TexturesPerFrame int  `json:"texturesPerFrame"` // per-tick texture upload budget
	CacheCapacity    int  `json:"cacheCapacity"`    // resident texture ceiling

	TunnelRadius    float64 `json:"tunnelRadius"`
	TunnelCurvature float64 `json:"tunnelCurvature"` // sideways bend of the tunnel axis
	TunnelSpeed     float64 `json:"tunnelSpeed"`     // units per second along the axis
	TunnelSlots     int     `json:"tunnelSlots"`
	TunnelDepth     float64 `json:"tunnelDepth"` // how far back the tunnel extends

	GridSpacing float64 `json:"gridSpacing"`
	GridLayers  int     `json:"gridLayers"`
	GridSpeed   float64 `json:"gridSpeed"`

	FloatingSlots   int     `json:"floatingSlots"`
	FloatingBounds  float64 `json:"floatingBounds"` // half-extent of the floating volume
	WobbleAmplitude float64 `json:"wobbleAmplitude"`
	FloatingDrift   float64 `json:"floatingDrift"` // drift speed within the volume
	FloatingGrace   float64 `json:"floatingGrace"` // seconds outside the volume before recycling

	FadeDuration float64 `json:"fadeDuration"` // fade-in seconds when a texture binds
}

// DefaultSettings returns the Settings a Field starts with.
func DefaultSettings() Settings {
	return Settings{
		Mode:             ModeFloating,
		Tier:             TierHalf,
		TexturesPerFrame: 3,
		CacheCapacity:    256,

		TunnelRadius:    8,
		TunnelCurvature: 0.35,
		TunnelSpeed:     6,
		TunnelSlots:     48,
		TunnelDepth:     80,

		GridSpacing: 4,
		GridLayers:  6,
		GridSpeed:   3,

		FloatingSlots:   64,
		FloatingBounds:  18,
		WobbleAmplitude: 0.6,
		FloatingDrift:   1.2,
		FloatingGrace:   1.5,

		FadeDuration: 0.5,
	}
}

// Clamp pulls every value back into its sane range, logging each adjustment. Called
// by Field.Apply, so a wild live-tuned value degrades to the nearest sensible one
// instead of failing.
func (settings *Settings) Clamp(logger *slog.Logger) {

	if logger == nil {
		logger = slog.Default()
	}

	settings.Mode = clampSetting(logger, "mode", settings.Mode, ModeFloating, ModeGrid)
	settings.Tier = clampSetting(logger, "tier", settings.Tier, TierFull, TierQuarter)
	settings.TexturesPerFrame = clampSetting(logger, "texturesPerFrame", settings.TexturesPerFrame, 1, 16)
	settings.CacheCapacity = clampSetting(logger, "cacheCapacity", settings.CacheCapacity, 1, 4096)

	settings.TunnelRadius = clampSetting(logger, "tunnelRadius", settings.TunnelRadius, 1, 100)
	settings.TunnelCurvature = clampSetting(logger, "tunnelCurvature", settings.TunnelCurvature, 0, 2)
	settings.TunnelSpeed = clampSetting(logger, "tunnelSpeed", settings.TunnelSpeed, 0, 50)
	settings.TunnelSlots = clampSetting(logger, "tunnelSlots", settings.TunnelSlots, 4, 256)
	settings.TunnelDepth = clampSetting(logger, "tunnelDepth", settings.TunnelDepth, 10, 500)

	settings.GridSpacing = clampSetting(logger, "gridSpacing", settings.GridSpacing, 0.5, 50)
	settings.GridLayers = clampSetting(logger, "gridLayers", settings.GridLayers, 1, 32)
	settings.GridSpeed = clampSetting(logger, "gridSpeed", settings.GridSpeed, 0, 50)

	settings.FloatingSlots = clampSetting(logger, "floatingSlots", settings.FloatingSlots, 1, 512)
	settings.FloatingBounds = clampSetting(logger, "floatingBounds", settings.FloatingBounds, 1, 200)
	settings.WobbleAmplitude = clampSetting(logger, "wobbleAmplitude", settings.WobbleAmplitude, 0, 10)
	settings.FloatingDrift = clampSetting(logger, "floatingDrift", settings.FloatingDrift, 0, 20)
	settings.FloatingGrace = clampSetting(logger, "floatingGrace", settings.FloatingGrace, 0, 30)

	settings.FadeDuration = clampSetting(logger, "fadeDuration", settings.FadeDuration, 0, 10)

}

func clampSetting[V ~float64 | ~int](logger *slog.Logger, name string, value, lo, hi V) V {
	clamped := value
	if clamped < lo {
		clamped = lo
	} else if clamped > hi {
		clamped = hi
	}
	if clamped != value {
		logger.Warn("settings value out of range; clamped", "option", name, "value", value, "clamped", clamped)
	}
	return clamped
}

// ExportJSON serializes the Settings into the preset blob format, loadable later
// with ImportSettings to restore a session's visual preset.
func (settings Settings) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(settings, "", "    ")
}

// ImportSettings parses a preset blob exported with ExportJSON. Options absent from
// the blob keep their defaults; parse failure leaves nothing half-applied.
func ImportSettings(data []byte) (Settings, error) {
	settings := DefaultSettings()
	if err := json.Unmarshal(data, &settings); err != nil {
		return DefaultSettings(), fmt.Errorf("driftfield: parsing settings preset: %w", err)
	}
	return settings, nil
}
