package installer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"jim/internal/fsutil"
	"jim/internal/logging"
	"jim/internal/store"
)

// Item is one planned install: a canonical source directory and the name
// it will be stored under.
type Item struct {
	Input  string `json:"input"`
	Name   string `json:"name"`
	Source string `json:"source"`
}

type Outcome struct {
	Item
	Dest    string        `json:"dest,omitempty"`
	Elapsed time.Duration `json:"elapsedNs,omitempty"`
	Err     error         `json:"-"`
}

// CopyFunc populates the existing directory dst from src.
type CopyFunc func(ctx context.Context, src, dst string) error

type Service struct {
	Root string
	Jobs int
	Log  logrus.FieldLogger
	Copy CopyFunc
}

// Install copies every item under Root, at most Jobs at a time. Items are
// independent: one failure never stops the others. Outcomes are returned in
// item order.
func (s *Service) Install(ctx context.Context, items []Item) []Outcome {
	outcomes := make([]Outcome, len(items))
	var g errgroup.Group
	g.SetLimit(s.jobs())
	for i, item := range items {
		g.Go(func() error {
			outcomes[i] = s.installOne(ctx, item)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func (s *Service) installOne(ctx context.Context, item Item) Outcome {
	start := time.Now()
	dest := store.InstancePath(s.Root, item.Name)
	out := Outcome{Item: item, Dest: dest}
	log := s.logger().WithFields(logrus.Fields{"instance": item.Name, "source": item.Source})

	if err := ctx.Err(); err != nil {
		out.Err = store.IOError("INS_CANCELED", item.Source, err)
		return out
	}
	// Mkdir is the reservation: of two concurrent adds for one name,
	// exactly one gets past this point.
	if err := os.Mkdir(dest, 0o755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			out.Err = store.NewError("INS_ALREADY_INSTALLED", store.ErrAlreadyInstalled, "", fmt.Sprintf("instance %s already installed", item.Name), nil)
		} else {
			out.Err = store.IOError("INS_RESERVE", dest, err)
		}
		return out
	}

	log.Debug("installing instance")
	copyStart := time.Now()
	if err := s.copier()(ctx, item.Source, dest); err != nil {
		if rmErr := fsutil.RemoveTree(dest); rmErr != nil {
			log.WithError(rmErr).Warn("failed to remove partial instance")
		}
		out.Err = store.NewError("INS_COPY", store.ErrIO, "", fmt.Sprintf("failed to copy instance from %s to %s", item.Source, dest), err)
		return out
	}
	log.WithField("copy_ms", time.Since(copyStart).Milliseconds()).Trace("copied instance")
	out.Elapsed = time.Since(start)
	return out
}

func (s *Service) jobs() int {
	if s.Jobs > 0 {
		return s.Jobs
	}
	return runtime.GOMAXPROCS(0)
}

func (s *Service) copier() CopyFunc {
	if s.Copy != nil {
		return s.Copy
	}
	return fsutil.CopyTree
}

func (s *Service) logger() logrus.FieldLogger {
	if s.Log != nil {
		return s.Log
	}
	return logging.Discard()
}
