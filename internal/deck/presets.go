package deck

// Preset is a named deck-construction policy.
type Preset struct {
	Name         string `json:"name"`
	ExpectedSize int    `json:"expectedSize"`
}

// Supported presets. Lookups for anything else fall back to Commander.
var (
	PresetCommander   = Preset{Name: "commander", ExpectedSize: 100}
	PresetBrawl       = Preset{Name: "brawl", ExpectedSize: 60}
	PresetOathbreaker = Preset{Name: "oathbreaker", ExpectedSize: 60}
)

var presets = map[string]Preset{
	PresetCommander.Name:   PresetCommander,
	"edh":                  PresetCommander,
	PresetBrawl.Name:       PresetBrawl,
	PresetOathbreaker.Name: PresetOathbreaker,
}

// PresetFor resolves a format name. The second value is false when the
// name was unknown and the Commander preset was returned instead.
func PresetFor(name string) (Preset, bool) {
	preset, ok := presets[normalizeName(name)]
	if !ok {
		return PresetCommander, false
	}
	return preset, true
}

// Options builds validation options for the preset.
func (p Preset) Options(isMonoColor bool) *ValidateOptions {
	return &ValidateOptions{ExpectedSize: p.ExpectedSize, IsMonoColor: isMonoColor}
}
