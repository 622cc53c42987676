package policy

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/craigdossantos/onceline/pkg/model"
	"github.com/craigdossantos/onceline/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/open-policy-agent/opa/v1/rego"
)

// Privacy decides which timeline events may leave the process as
// assistant context. Without a policy the default rule applies: events
// flagged private are never shared.
type Privacy struct {
	query *rego.PreparedEvalQuery
}

// Default returns the built-in rule only (private events excluded)
func Default() *Privacy {
	return &Privacy{}
}

// Load reads all .rego files from policyDir and prepares the
// data.privacy query. An empty dir or no .rego files yields the default
// rule.
func Load(ctx context.Context, policyDir string) (*Privacy, error) {
	if policyDir == "" {
		return Default(), nil
	}

	files, err := filepath.Glob(filepath.Join(policyDir, "*.rego"))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to glob policy files", goerr.V("dir", policyDir))
	}
	if len(files) == 0 {
		return Default(), nil
	}

	options := make([]func(*rego.Rego), 0, len(files)+1)
	options = append(options, rego.Query("data.privacy"))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read policy file", goerr.V("path", file))
		}
		options = append(options, rego.Module(file, string(data)))
	}

	query, err := rego.New(options...).PrepareForEval(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to prepare privacy policy", goerr.V("dir", policyDir))
	}

	return &Privacy{query: &query}, nil
}

// Share reports whether the event may be included in assistant context.
// Policy evaluation failures fall back to the default rule and are
// logged, never surfaced: a broken policy must not take down chat.
func (p *Privacy) Share(ctx context.Context, event *model.TimelineEvent) bool {
	if p == nil || p.query == nil {
		return !event.IsPrivate
	}

	input, err := toInput(event)
	if err != nil {
		logging.From(ctx).Warn("failed to build policy input", "event_id", event.ID, "error", err)
		return !event.IsPrivate
	}

	rs, err := p.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		logging.From(ctx).Warn("privacy policy evaluation failed", "event_id", event.ID, "error", err)
		return !event.IsPrivate
	}

	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return !event.IsPrivate
	}

	result, ok := rs[0].Expressions[0].Value.(map[string]any)
	if !ok {
		return !event.IsPrivate
	}

	share, ok := result["share"].(bool)
	if !ok {
		return !event.IsPrivate
	}

	return share
}

// toInput converts the event to a plain map through JSON so the policy
// sees the same field names as the wire format
func toInput(event *model.TimelineEvent) (any, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal event")
	}

	var input map[string]any
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal event")
	}

	return input, nil
}
