// Package main implements the desktop CHIP-8 host: an ebiten window with
// keyboard input and a square wave beeper.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/retroenv/retrogolib/log"

	"gochip8/pkg/beep"
	"gochip8/pkg/cli"
	"gochip8/pkg/config"
	"gochip8/pkg/cpu"
	"gochip8/pkg/keymap"
	"gochip8/pkg/machine"
	"gochip8/pkg/statsview"
)

const sampleRate = 44100

// hostKeys maps layout symbols onto physical keys.
var hostKeys = map[rune]ebiten.Key{
	'0': ebiten.KeyDigit0, '1': ebiten.KeyDigit1, '2': ebiten.KeyDigit2, '3': ebiten.KeyDigit3,
	'4': ebiten.KeyDigit4, '5': ebiten.KeyDigit5, '6': ebiten.KeyDigit6, '7': ebiten.KeyDigit7,
	'8': ebiten.KeyDigit8, '9': ebiten.KeyDigit9,
	'a': ebiten.KeyA, 'b': ebiten.KeyB, 'c': ebiten.KeyC, 'd': ebiten.KeyD, 'e': ebiten.KeyE,
	'f': ebiten.KeyF, 'g': ebiten.KeyG, 'h': ebiten.KeyH, 'i': ebiten.KeyI, 'j': ebiten.KeyJ,
	'k': ebiten.KeyK, 'l': ebiten.KeyL, 'm': ebiten.KeyM, 'n': ebiten.KeyN, 'o': ebiten.KeyO,
	'p': ebiten.KeyP, 'q': ebiten.KeyQ, 'r': ebiten.KeyR, 's': ebiten.KeyS, 't': ebiten.KeyT,
	'u': ebiten.KeyU, 'v': ebiten.KeyV, 'w': ebiten.KeyW, 'x': ebiten.KeyX, 'y': ebiten.KeyY,
	'z': ebiten.KeyZ,
	',': ebiten.KeyComma, '.': ebiten.KeyPeriod, '/': ebiten.KeySlash, ';': ebiten.KeySemicolon,
	'-': ebiten.KeyMinus, '=': ebiten.KeyEqual, '[': ebiten.KeyBracketLeft, ']': ebiten.KeyBracketRight,
}

// padKey binds a physical key to a keypad key.
type padKey struct {
	host ebiten.Key
	pad  uint8
}

// bindKeys resolves every layout symbol to a physical key.
func bindKeys(km *keymap.Keymap) ([]padKey, error) {
	bindings := km.Bindings()
	keys := make([]padKey, 0, len(bindings))
	for _, b := range bindings {
		k, ok := hostKeys[b.Symbol]
		if !ok {
			return nil, fmt.Errorf("symbol %q for keypad key %X has no desktop key", b.Symbol, b.Key)
		}
		keys = append(keys, padKey{host: k, pad: b.Key})
	}
	return keys, nil
}

// Game adapts a Machine to ebiten's update and draw loop.
type Game struct {
	m      *machine.Machine
	logger *log.Logger
	keys   []padKey
	tone   *beep.Tone
	on     color.RGBA
	off    color.RGBA

	screen  *ebiten.Image // reused 64×32 framebuffer canvas
	stopped bool          // a fault was logged; execution is frozen until reset
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		g.m.Reset()
		g.stopped = false
	}

	for _, k := range g.keys {
		if ebiten.IsKeyPressed(k.host) {
			g.m.Press(k.pad)
		} else {
			g.m.Release(k.pad)
		}
	}

	if !g.stopped {
		elapsed := time.Second / time.Duration(ebiten.TPS())
		if err := g.m.Advance(elapsed); err != nil {
			g.stopped = true
			g.logger.Error("Program stopped, press F5 to restart", log.Err(err))
		}
	}

	if g.tone != nil {
		g.tone.SetOn(!g.stopped && g.m.Sounding())
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.screen == nil {
		g.screen = ebiten.NewImage(cpu.DisplayWidth, cpu.DisplayHeight)
	}

	frame, changed := g.m.Frame()
	if changed {
		g.screen.WritePixels(frame.RGBA(g.on, g.off))
	}
	screen.DrawImage(g.screen, nil)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return cpu.DisplayWidth, cpu.DisplayHeight
}

// startAudio plays tone continuously; the tone itself gates the output.
func startAudio(tone *beep.Tone) (*audio.Player, error) {
	ctx := audio.NewContext(sampleRate)
	player, err := ctx.NewPlayer(tone)
	if err != nil {
		return nil, fmt.Errorf("creating audio player: %w", err)
	}
	player.SetBufferSize(50 * time.Millisecond)
	player.Play()
	return player, nil
}

func main() {
	var (
		mute      bool
		showStats bool
		statsAddr string
	)
	opts, err := cli.ParseFlags("gochip8-desktop", os.Args[1:], func(flags *flag.FlagSet) {
		flags.BoolVar(&mute, "mute", false, "disable the beeper")
		flags.BoolVar(&showStats, "statsview", false, "serve runtime statistics over HTTP")
		flags.StringVar(&statsAddr, "statsaddr", statsview.DefaultAddress, "listen address of the statistics server")
	})
	if err != nil {
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			usageErr.ShowUsage(os.Stderr)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)

	km, err := opts.Keymap()
	if err != nil {
		logger.Fatal("Invalid key layout", log.Err(err))
	}
	keys, err := bindKeys(km)
	if err != nil {
		logger.Fatal("Invalid key layout", log.Err(err))
	}
	on, off, err := opts.Colors()
	if err != nil {
		logger.Fatal("Invalid colours", log.Err(err))
	}

	rnd := cpu.RandomSource(nil)
	if opts.Seed != 0 {
		rnd = cpu.NewMathRandom(opts.Seed)
	}
	m, err := machine.New(logger, machine.Config{
		ClockHz: opts.ClockHz,
		TimerHz: opts.TimerHz,
		Random:  rnd,
		Trace:   opts.Debug,
	})
	if err != nil {
		logger.Fatal("Creating machine failed", log.Err(err))
	}
	if err := m.LoadFile(opts.Input); err != nil {
		logger.Fatal("Loading program failed", log.Err(err))
	}

	if showStats {
		stop := statsview.Launch(logger, statsAddr)
		defer stop()
	}

	game := &Game{m: m, logger: logger, keys: keys, on: on, off: off}
	if !mute {
		game.tone = beep.NewTone(sampleRate, beep.DefaultFrequency, beep.DefaultVolume)
		player, err := startAudio(game.tone)
		if err != nil {
			logger.Error("Audio unavailable, continuing without sound", log.Err(err))
			game.tone = nil
		} else {
			defer func() { _ = player.Close() }()
		}
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(cpu.DisplayWidth*opts.Scale, cpu.DisplayHeight*opts.Scale)
	ebiten.SetWindowTitle("gochip8 - " + opts.Input)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		logger.Error("Window closed with error", log.Err(err))
	}
}
