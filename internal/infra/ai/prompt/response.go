package prompt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/bryanwahyu/interpretlab/internal/domain/analyses"
	"github.com/bryanwahyu/interpretlab/internal/domain/core"
)

var ErrMalformed = errors.New("malformed analysis reply")

// Parse decodes an LLM reply into analysis results and checks that the
// field the analysis type depends on is present with the right shape.
func Parse(t analyses.Type, content string) (core.Object, error) {
	content = strings.TrimSpace(content)
	// kadang model tetap kirim code fence walau sudah dilarang
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}

	var out core.Object
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if out == nil {
		return nil, fmt.Errorf("%w: reply is not an object", ErrMalformed)
	}

	var err error
	switch t {
	case analyses.TypeFeatureImportance:
		err = requireScores(out, "feature_importance")
	case analyses.TypeBiasDetection:
		err = requireScores(out, "bias_scores")
	case analyses.TypeDecisionPath:
		err = requireList(out, "nodes")
	case analyses.TypeInputOutputRelationship:
		err = requireList(out, "relationships")
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func requireScores(o core.Object, key string) error {
	m, ok := o[key].(map[string]any)
	if !ok || len(m) == 0 {
		return fmt.Errorf("%w: %q must be a non-empty object", ErrMalformed, key)
	}
	for k, v := range m {
		if _, ok := v.(float64); !ok {
			return fmt.Errorf("%w: %s.%s is not a number", ErrMalformed, key, k)
		}
	}
	return nil
}

func requireList(o core.Object, key string) error {
	l, ok := o[key].([]any)
	if !ok || len(l) == 0 {
		return fmt.Errorf("%w: %q must be a non-empty array", ErrMalformed, key)
	}
	return nil
}
