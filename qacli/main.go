/*
Command qacli is an interactive console for exploring how a font shapes
text. It is meant for authoring shaping tests: set up shaping parameters,
shape strings, look at glyph names and collisions, and expand patterns.

Commands are entered one per line, several commands may be separated by
';'. Enter "help" for a list of commands.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/fontqa/shaper"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
)

// tracer traces with key 'fontqa.cli'
func tracer() tracing.Trace {
	return tracing.Select("fontqa.cli")
}

func main() {
	initDisplay()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":   "go",
		"trace.fontqa.cli":  "Info",
		"trace.fontqa":      "Error",
		"trace.fontqa.brew": "Error",
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())

	// command line flags
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	fontname := flag.String("font", "", "Font to load")
	flag.Parse()
	tracer().SetTraceLevel(tracing.LevelError)
	pterm.Info.Println("Welcome to the font QA console")
	//
	repl, err := readline.New("qa > ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	intp := NewIntp(repl)
	if *fontname != "" {
		if err := intp.loadFont(*fontname); err != nil {
			tracer().Errorf(err.Error())
			os.Exit(4)
		}
	}
	//
	pterm.Info.Println("Quit with <ctrl>D")
	switch *tlevel {
	case "Debug":
		tracer().SetTraceLevel(tracing.LevelDebug)
	case "Info":
		tracer().SetTraceLevel(tracing.LevelInfo)
	case "Error":
		tracer().SetTraceLevel(tracing.LevelError)
	default:
		tracer().Errorf("Invalid trace level: %s", *tlevel)
		os.Exit(5)
	}
	tracer().Infof("Trace level is %s", *tlevel)
	intp.REPL()
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// Intp is our interpreter object
type Intp struct {
	repl        *readline.Instance
	font        *shaper.Font
	params      shaper.Params
	text        string        // last text shaped
	buf         shaper.Buffer // result of shaping text
	ingredients map[string]string
}

// NewIntp creates an interpreter reading from repl. repl may be nil for
// non-interactive use.
func NewIntp(repl *readline.Instance) *Intp {
	return &Intp{
		repl:        repl,
		ingredients: make(map[string]string),
	}
}

func (intp *Intp) String() string {
	if intp == nil || intp.font == nil {
		return "( no font )"
	}
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("( font=%s", intp.font.Basename()))
	if p := intp.params.String(); p != "" {
		sb.WriteString(" " + p)
	}
	sb.WriteString(" )")
	return sb.String()
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		pterm.Println(intp.String())
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		cmd := intp.parseCommand(line)
		err, quit := intp.execute(cmd)
		if err != nil {
			tracer().Errorf(err.Error())
			continue
		}
		if quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

// Op is a single command step. Its argument is the remainder of the
// step after the command word, with surrounding space removed.
type Op struct {
	code int
	arg  string
}

func (op *Op) noArg() bool {
	return op.arg == ""
}

type Command struct {
	ops []Op
}

const (
	QUIT int = iota
	HELP
	FONT
	SHAPE
	SCRIPT
	LANG
	DIR
	FEATURES
	VARIATIONS
	ENGINE
	PARAMS
	RESET
	NAMES
	COLLIDE
	INGREDIENT
	BREW
	SVG
)

var opMap = map[string]int{
	"quit":       QUIT,
	"help":       HELP,
	"font":       FONT,
	"shape":      SHAPE,
	"text":       SHAPE,
	"script":     SCRIPT,
	"lang":       LANG,
	"language":   LANG,
	"dir":        DIR,
	"direction":  DIR,
	"features":   FEATURES,
	"variations": VARIATIONS,
	"shaper":     ENGINE,
	"params":     PARAMS,
	"reset":      RESET,
	"names":      NAMES,
	"collide":    COLLIDE,
	"ingredient": INGREDIENT,
	"brew":       BREW,
	"svg":        SVG,
}

// parseCommand splits a line into steps separated by ';'. Unknown command
// words turn into a help step on that word.
func (intp *Intp) parseCommand(line string) *Command {
	cmd := &Command{}
	for step := range strings.SplitSeq(line, ";") {
		if step = strings.TrimSpace(step); step == "" {
			continue
		}
		word, arg, _ := strings.Cut(step, " ")
		code, ok := opMap[strings.ToLower(word)]
		if !ok {
			code, arg = HELP, word
		}
		cmd.ops = append(cmd.ops, Op{code: code, arg: strings.TrimSpace(arg)})
		tracer().Debugf("parsed command: %s %q", word, arg)
	}
	return cmd
}

var commandFn map[int]func(*Intp, *Op) (error, bool)

func init() {
	commandFn = map[int]func(*Intp, *Op) (error, bool){
		QUIT:       quitOp,
		HELP:       helpOp,
		FONT:       fontOp,
		SHAPE:      shapeOp,
		SCRIPT:     scriptOp,
		LANG:       langOp,
		DIR:        dirOp,
		FEATURES:   featuresOp,
		VARIATIONS: variationsOp,
		ENGINE:     engineOp,
		PARAMS:     paramsOp,
		RESET:      resetOp,
		NAMES:      namesOp,
		COLLIDE:    collideOp,
		INGREDIENT: ingredientOp,
		BREW:       brewOp,
		SVG:        svgOp,
	}
}

func (intp *Intp) execute(cmd *Command) (err error, stop bool) {
	tracer().Debugf("cmd = %v", cmd.ops)
	for _, c := range cmd.ops {
		f, ok := commandFn[c.code]
		if !ok {
			pterm.Error.Printf("unknown command code: %d\n", c.code)
			return nil, false
		}
		err, stop = f(intp, &c)
		if err != nil {
			pterm.Error.Println(err)
			return
		}
		if stop {
			return
		}
	}
	return
}

func quitOp(intp *Intp, op *Op) (error, bool) {
	pterm.Println("Goodbye!")
	return nil, true
}

// --- Font Loading -----------------------------------------------------

func (intp *Intp) loadFont(path string) error {
	f, err := shaper.LoadFont(path)
	if err != nil {
		tracer().Errorf("cannot load font %s: %s", path, err)
		return err
	}
	intp.setFont(f)
	return nil
}

func (intp *Intp) setFont(f *shaper.Font) {
	intp.font = f
	intp.text, intp.buf = "", nil
	tracer().Infof("loaded font %s (%d glyphs)", f.Basename(), f.NumGlyphs())
}
