package main

import (
	"path/filepath"
	"testing"

	"github.com/npillmayer/fontqa/shaper"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

func testIntp(t *testing.T) *Intp {
	t.Helper()
	f, err := shaper.ParseFont("GoRegular.ttf", goregular.TTF)
	require.NoError(t, err)
	intp := NewIntp(nil)
	intp.setFont(f)
	return intp
}

func TestParseCommand(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontqa.cli")
	defer teardown()
	//
	intp := NewIntp(nil)
	cmd := intp.parseCommand("script Latn;  features +liga,-kern ; shape A V;frobnicate")
	require.Len(t, cmd.ops, 4)
	assert.Equal(t, Op{code: SCRIPT, arg: "Latn"}, cmd.ops[0])
	assert.Equal(t, Op{code: FEATURES, arg: "+liga,-kern"}, cmd.ops[1])
	assert.Equal(t, Op{code: SHAPE, arg: "A V"}, cmd.ops[2])
	assert.Equal(t, Op{code: HELP, arg: "frobnicate"}, cmd.ops[3])
}

func TestShapingSession(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontqa.cli")
	defer teardown()
	//
	intp := testIntp(t)
	err, quit := intp.execute(intp.parseCommand("script Latn; dir ltr; features -kern; shape AV"))
	require.NoError(t, err)
	assert.False(t, quit)
	assert.Equal(t, "Latn", intp.params.Script)
	assert.Equal(t, "LTR", intp.params.Direction)
	assert.Equal(t, map[string]bool{"kern": false}, intp.params.Features)
	assert.Equal(t, "AV", intp.text)
	assert.Equal(t, []string{"A", "V"}, intp.buf.Names())

	err, _ = intp.execute(intp.parseCommand("dir sideways"))
	assert.Error(t, err)
	err, _ = intp.execute(intp.parseCommand("reset"))
	require.NoError(t, err)
	assert.Equal(t, shaper.Params{}, intp.params)

	err, _ = intp.execute(intp.parseCommand("names; collide; collide area=200"))
	assert.NoError(t, err)

	out := filepath.Join(t.TempDir(), "av.svg")
	err, _ = intp.execute(intp.parseCommand("svg " + out))
	assert.NoError(t, err)
	assert.FileExists(t, out)

	err, quit = intp.execute(intp.parseCommand("quit; shape never"))
	assert.NoError(t, err)
	assert.True(t, quit)
	assert.Equal(t, "AV", intp.text)
}

func TestCommandsNeedState(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontqa.cli")
	defer teardown()
	//
	intp := NewIntp(nil)
	err, _ := intp.execute(intp.parseCommand("shape AV"))
	assert.ErrorIs(t, err, errNoFont)
	err, _ = intp.execute(intp.parseCommand("names"))
	assert.ErrorIs(t, err, errNoBuffer)
	err, _ = intp.execute(intp.parseCommand("collide marks"))
	assert.ErrorIs(t, err, errNoBuffer)
}

func TestBrewWithIngredients(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontqa.cli")
	defer teardown()
	//
	intp := testIntp(t)
	err, _ := intp.execute(intp.parseCommand("ingredient Letter=[AB]; brew Letter [V]"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Letter": "[AB]"}, intp.ingredients)

	err, _ = intp.execute(intp.parseCommand("ingredient =[AB]"))
	assert.Error(t, err)
	err, _ = intp.execute(intp.parseCommand("brew Unknown"))
	assert.Error(t, err)
}

func TestCollisionOptions(t *testing.T) {
	opts, err := collisionOptions("area=20, marks=false")
	require.NoError(t, err)
	assert.Equal(t, 20.0, opts.Area)
	assert.False(t, opts.Marks)
	assert.True(t, opts.Bases)

	_, err = collisionOptions("area")
	assert.Error(t, err)
	_, err = collisionOptions("marks=maybe")
	assert.Error(t, err)
}
