package shaping

import (
	"fmt"
	"slices"

	"github.com/npillmayer/fontqa/check"
	"github.com/npillmayer/fontqa/shaper"
	"github.com/npillmayer/fontqa/shaping/collide"
)

// CollisionComparator reports overlapping glyphs in shaped output.
type CollisionComparator struct{}

var _ Comparator = CollisionComparator{}

func (CollisionComparator) Kind() Kind { return Collision }

// Applies selects tests if either the test or the suite configures the
// collision detector.
func (CollisionComparator) Applies(test TestCase, conf Configuration) bool {
	return test.Has("collidoscope") || conf.Has("collidoscope")
}

// Prepare builds the detector shared by the tests of a suite.
func (CollisionComparator) Prepare(font *shaper.Font, conf Configuration) (any, error) {
	opts, err := collide.ParseOptions(conf.Collidoscope)
	if err != nil {
		return nil, fmt.Errorf("collidoscope: %w", err)
	}
	tracer().Debugf("collision detector for %s: %+v", font.Basename(), opts)
	return collide.New(font, opts), nil
}

// detectorFor returns the detector of a test: its own if it carries a
// collidoscope block, else the one prepared for the suite.
func detectorFor(font *shaper.Font, test TestCase, prepared any) (*collide.Detector, error) {
	if test.Has("collidoscope") {
		var block map[string]any
		if err := test.Decode("collidoscope", &block); err != nil {
			return nil, err
		}
		opts, err := collide.ParseOptions(block)
		if err != nil {
			return nil, fmt.Errorf("collidoscope: %w", err)
		}
		return collide.New(font, opts), nil
	}
	d, ok := prepared.(*collide.Detector)
	if !ok || d == nil {
		return collide.New(font, collide.DefaultOptions()), nil
	}
	return d, nil
}

// Evaluate records one failure per shaped string with collisions which are
// not explicitly allowed.
func (CollisionComparator) Evaluate(font *shaper.Font, test TestCase, conf Configuration, prepared any) ([]Failure, error) {
	d, err := detectorFor(font, test, prepared)
	if err != nil {
		return nil, err
	}
	texts, err := inputStrings(test, conf)
	if err != nil {
		return nil, err
	}
	params, err := ResolveParams(test, conf)
	if err != nil {
		return nil, err
	}
	allowed := AllowedCollisions(test, conf)
	var failures []Failure
	for _, text := range texts {
		buf, err := font.Shape(text, params)
		if err != nil {
			return failures, err
		}
		_, collisions := d.Check(buf)
		collisions = slices.DeleteFunc(collisions, func(c collide.Collision) bool {
			return slices.Contains(allowed, c.Signature())
		})
		if len(collisions) == 0 {
			continue
		}
		drawing, err := d.DrawOverlaps(buf, collisions)
		if err != nil {
			tracer().Infof("cannot draw collisions of %q: %v", text, err)
		}
		failures = append(failures, &CollisionFailure{
			Test:       test,
			Text:       text,
			Collisions: collisions,
			Drawing:    drawing,
			Buffer:     buf,
		})
	}
	return failures, nil
}

func (CollisionComparator) Report(font *shaper.Font, suite *Suite, failures []Failure) check.Result {
	return collisionReport(font, suite, failures)
}
