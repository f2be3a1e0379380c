package capture

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/sebdah/goldie/v2"

	"github.com/ajramos/snapvariant/internal/config"
)

// GoldenComparer records and compares snapshots as goldie fixtures.
//
// The first capture of an artifact becomes its baseline. Later captures are
// compared byte for byte; each artifact's baseline is independent of every
// other, so a run may record some variants while comparing others.
//
// To regenerate baselines, run:
//
//	go test ./... -update
//
// or set SNAPVARIANT_UPDATE=true.
type GoldenComparer struct {
	dir    string
	format string
	update bool
	logger zerolog.Logger
}

// NewGoldenComparer creates a comparer storing baselines under dir
func NewGoldenComparer(dir, format string, update bool, logger zerolog.Logger) *GoldenComparer {
	if format == "" {
		format = config.FormatText
	}
	return &GoldenComparer{
		dir:    dir,
		format: format,
		update: update,
		logger: logger,
	}
}

// Path returns where the baseline for artifact lives
func (c *GoldenComparer) Path(t *testing.T, artifact string) string {
	return c.goldie(t).GoldenFileName(t, artifact)
}

// Compare records shot as the baseline for artifact if none exists (or in
// update mode) and otherwise compares against it.
func (c *GoldenComparer) Compare(t *testing.T, shot *Snapshot, artifact string) error {
	t.Helper()

	actual, err := shot.Encode(c.format)
	if err != nil {
		return fmt.Errorf("%s: %w", artifact, err)
	}

	g := c.goldie(t)
	path := g.GoldenFileName(t, artifact)

	expected, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) || c.updateRequested():
		if err := g.Update(t, artifact, actual); err != nil {
			return fmt.Errorf("%s: record baseline: %w", artifact, err)
		}
		c.logger.Info().Str("artifact", artifact).Str("path", path).Msg("baseline recorded")
		return nil
	case err != nil:
		return fmt.Errorf("%s: read baseline: %w", artifact, err)
	}

	if bytes.Equal(actual, expected) {
		return nil
	}

	mismatch := &MismatchError{Artifact: artifact, Path: path}
	if c.format == config.FormatText {
		mismatch.Diff = goldie.Diff(goldie.ClassicDiff, string(actual), string(expected))
	} else {
		mismatch.Diff = fmt.Sprintf("binary baseline differs: %d bytes recorded, %d bytes captured", len(expected), len(actual))
	}
	return mismatch
}

func (c *GoldenComparer) goldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir(c.dir),
		goldie.WithNameSuffix(Suffix(c.format)),
		goldie.WithDiffEngine(goldie.ClassicDiff),
	)
}

// updateRequested honors both the config switch and goldie's -update flag
func (c *GoldenComparer) updateRequested() bool {
	if c.update {
		return true
	}
	f := flag.Lookup("update")
	return f != nil && f.Value.String() == "true"
}
