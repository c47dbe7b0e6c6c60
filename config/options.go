// Package config resolves a Diagram's construction options the way
// config.DeviceBuilder resolves a CGRA device's: a chained builder with
// With* setters, each option also reachable from the command line, with
// explicit constructor arguments taking priority over the command line,
// the command line over an optional YAML overlay, and the overlay over
// hard defaults.
package config

import (
	"flag"
	"os"

	"gopkg.in/yaml.v3"
)

// Options are the recognized settings of a diagram, per the configuration
// surface.
type Options struct {
	Name      string `yaml:"name"`
	Graphics  bool   `yaml:"graphics"`
	Animation bool   `yaml:"animation"`
	Progress  bool   `yaml:"progress"`
	Debug     string `yaml:"debug"`
	Backend   string `yaml:"backend"`
	Tiles     string `yaml:"tiles"`
}

// Defaults returns the hard-coded option defaults.
func Defaults() Options {
	return Options{
		Name:      "main",
		Graphics:  true,
		Animation: false,
		Progress:  true,
		Debug:     "",
		Backend:   "",
		Tiles:     "3x4",
	}
}

// DebugPropagate reports whether the 'p' debug code is set.
func (o Options) DebugPropagate() bool { return hasCode(o.Debug, 'p') }

// DebugState reports whether the 's' debug code is set.
func (o Options) DebugState() bool { return hasCode(o.Debug, 's') }

// DebugDeriv reports whether the 'd' debug code is set.
func (o Options) DebugDeriv() bool { return hasCode(o.Debug, 'd') }

func hasCode(debug string, code byte) bool {
	for i := 0; i < len(debug); i++ {
		if debug[i] == code {
			return true
		}
	}
	return false
}

// set tracks which Options fields a Builder was explicitly told to set, so
// Build can apply the explicit-arg > CLI > file > default priority chain
// field by field.
type set struct {
	name, graphics, animation, progress, debug, backend, tiles bool
}

// Builder resolves Options the way config.DeviceBuilder resolves a
// device's construction parameters: chained With* setters record explicit
// values, and Build() fills in anything left unset from the command line,
// then an optional YAML file, then defaults.
type Builder struct {
	opts       Options
	explicit   set
	configFile string
	args       []string // command-line arguments to parse; nil means os.Args[1:]
}

// NewBuilder returns a Builder seeded with the hard defaults.
func NewBuilder() Builder {
	return Builder{opts: Defaults()}
}

func (b Builder) WithName(name string) Builder {
	b.opts.Name = name
	b.explicit.name = true
	return b
}

func (b Builder) WithGraphics(graphics bool) Builder {
	b.opts.Graphics = graphics
	b.explicit.graphics = true
	return b
}

func (b Builder) WithAnimation(animation bool) Builder {
	b.opts.Animation = animation
	b.explicit.animation = true
	if animation {
		b.opts.Graphics = true
		b.explicit.graphics = true
	}
	return b
}

func (b Builder) WithProgress(progress bool) Builder {
	b.opts.Progress = progress
	b.explicit.progress = true
	return b
}

func (b Builder) WithDebug(debug string) Builder {
	b.opts.Debug = debug
	b.explicit.debug = true
	return b
}

func (b Builder) WithBackend(backend string) Builder {
	b.opts.Backend = backend
	b.explicit.backend = true
	return b
}

func (b Builder) WithTiles(tiles string) Builder {
	b.opts.Tiles = tiles
	b.explicit.tiles = true
	return b
}

// WithConfigFile points Build() at a YAML overlay file, consulted after
// the command line and before the hard defaults.
func (b Builder) WithConfigFile(path string) Builder {
	b.configFile = path
	return b
}

// WithArgs overrides the command-line argument slice Build() parses
// (defaults to os.Args[1:]); mainly useful for tests.
func (b Builder) WithArgs(args []string) Builder {
	b.args = args
	return b
}

// Build resolves the final Options, applying explicit constructor
// arguments first, then recognized command-line flags, then a YAML
// overlay file, then the hard defaults.
func (b Builder) Build() (Options, error) {
	cl, err := b.parseFlags()
	if err != nil {
		return Options{}, err
	}

	file, fileSet, err := b.loadFile()
	if err != nil {
		return Options{}, err
	}

	resolved := Defaults()
	applyLayer(&resolved, file, fileSet)
	applyLayer(&resolved, cl.opts, cl.set)
	applyLayer(&resolved, b.opts, b.explicit)

	if resolved.Animation {
		resolved.Graphics = true
	}

	return resolved, nil
}

func applyLayer(dst *Options, src Options, which set) {
	if which.name {
		dst.Name = src.Name
	}
	if which.graphics {
		dst.Graphics = src.Graphics
	}
	if which.animation {
		dst.Animation = src.Animation
	}
	if which.progress {
		dst.Progress = src.Progress
	}
	if which.debug {
		dst.Debug = src.Debug
	}
	if which.backend {
		dst.Backend = src.Backend
	}
	if which.tiles {
		dst.Tiles = src.Tiles
	}
}

type cliResult struct {
	opts Options
	set  set
}

// parseFlags parses the recognized command-line switches: --name,
// --nographics, --animation, --noprogress, --debug, --backend, --tiles.
func (b Builder) parseFlags() (cliResult, error) {
	args := b.args
	if args == nil {
		args = os.Args[1:]
	}

	fs := flag.NewFlagSet("bdcore", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	name := fs.String("name", "", "diagram name")
	nographics := fs.Bool("nographics", false, "disable graphical display")
	animation := fs.Bool("animation", false, "animate graphics")
	noprogress := fs.Bool("noprogress", false, "disable simulation progress bar")
	debug := fs.String("debug", "", "debug flags [psd]")
	backend := fs.String("backend", "", "plotting backend")
	tiles := fs.String("tiles", "", "figure tile layout, e.g. 3x4")

	if err := fs.Parse(args); err != nil {
		return cliResult{}, err
	}

	var r cliResult
	if *name != "" {
		r.opts.Name = *name
		r.set.name = true
	}
	if *nographics {
		r.opts.Graphics = false
		r.set.graphics = true
	}
	if *animation {
		r.opts.Animation = true
		r.set.animation = true
	}
	if *noprogress {
		r.opts.Progress = false
		r.set.progress = true
	}
	if *debug != "" {
		r.opts.Debug = *debug
		r.set.debug = true
	}
	if *backend != "" {
		r.opts.Backend = *backend
		r.set.backend = true
	}
	if *tiles != "" {
		r.opts.Tiles = *tiles
		r.set.tiles = true
	}

	return r, nil
}

// loadFile loads the YAML overlay, if one was configured. A missing file
// is not an error when configFile was left at its zero value.
func (b Builder) loadFile() (Options, set, error) {
	if b.configFile == "" {
		return Options{}, set{}, nil
	}

	data, err := os.ReadFile(b.configFile)
	if err != nil {
		return Options{}, set{}, err
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Options{}, set{}, err
	}

	var opts Options
	var which set
	if v, ok := raw["name"].(string); ok {
		opts.Name, which.name = v, true
	}
	if v, ok := raw["graphics"].(bool); ok {
		opts.Graphics, which.graphics = v, true
	}
	if v, ok := raw["animation"].(bool); ok {
		opts.Animation, which.animation = v, true
	}
	if v, ok := raw["progress"].(bool); ok {
		opts.Progress, which.progress = v, true
	}
	if v, ok := raw["debug"].(string); ok {
		opts.Debug, which.debug = v, true
	}
	if v, ok := raw["backend"].(string); ok {
		opts.Backend, which.backend = v, true
	}
	if v, ok := raw["tiles"].(string); ok {
		opts.Tiles, which.tiles = v, true
	}

	return opts, which, nil
}
