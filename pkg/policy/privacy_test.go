package policy_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/craigdossantos/onceline/pkg/model"
	"github.com/craigdossantos/onceline/pkg/policy"
	"github.com/m-mizutani/gt"
)

func TestDefaultRule(t *testing.T) {
	p := policy.Default()
	ctx := context.Background()

	public := &model.TimelineEvent{ID: "e1", Title: "Public", IsPrivate: false}
	private := &model.TimelineEvent{ID: "e2", Title: "Private", IsPrivate: true}

	gt.True(t, p.Share(ctx, public))
	gt.False(t, p.Share(ctx, private))
}

func TestLoadEmptyDirFallsBack(t *testing.T) {
	p, err := policy.Load(context.Background(), t.TempDir())
	gt.NoError(t, err)

	private := &model.TimelineEvent{ID: "e1", IsPrivate: true}
	gt.False(t, p.Share(context.Background(), private))
}

func TestLoadNoDirFallsBack(t *testing.T) {
	p, err := policy.Load(context.Background(), "")
	gt.NoError(t, err)

	public := &model.TimelineEvent{ID: "e1", IsPrivate: false}
	gt.True(t, p.Share(context.Background(), public))
}

func TestCustomPolicy(t *testing.T) {
	const privacyPolicy = `package privacy

default share = false

share if {
	not input.is_private
	input.category != "relationship"
}
`

	dir := t.TempDir()
	gt.NoError(t, os.WriteFile(filepath.Join(dir, "privacy.rego"), []byte(privacyPolicy), 0644))

	ctx := context.Background()
	p, err := policy.Load(ctx, dir)
	gt.NoError(t, err)

	work := &model.TimelineEvent{ID: "e1", Category: model.CategoryWork}
	relationship := &model.TimelineEvent{ID: "e2", Category: model.CategoryRelationship}
	private := &model.TimelineEvent{ID: "e3", Category: model.CategoryWork, IsPrivate: true}

	gt.True(t, p.Share(ctx, work))
	gt.False(t, p.Share(ctx, relationship))
	gt.False(t, p.Share(ctx, private))
}

func TestBrokenPolicyFile(t *testing.T) {
	dir := t.TempDir()
	gt.NoError(t, os.WriteFile(filepath.Join(dir, "broken.rego"), []byte("this is not rego"), 0644))

	_, err := policy.Load(context.Background(), dir)
	gt.Error(t, err)
}
