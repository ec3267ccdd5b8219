package execution

import (
	"context"
	"errors"

	"github.com/bryanwahyu/interpretlab/internal/domain/analyses"
	"github.com/bryanwahyu/interpretlab/internal/domain/core"
)

// ErrNoEngine is what Unconfigured reports for every run.
var ErrNoEngine = errors.New("no interpretation engine configured")

// Unconfigured stands in when no AI provider is set up, so runs end failed
// instead of hanging in running.
type Unconfigured struct{}

func (Unconfigured) Run(context.Context, analyses.Job) (core.Object, error) {
	return nil, ErrNoEngine
}
