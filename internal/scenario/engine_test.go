package scenario

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/generator"
)

// recordingTarget records the order of modifier operations and can be told
// to fail installs for selected tags.
type recordingTarget struct {
	// ops is the ordered log of set/clear operations.
	ops []string
	// failTags names tags whose installs should fail.
	failTags map[string]bool
}

// SetModifier records the install and fails for configured tags.
func (r *recordingTarget) SetModifier(name string, _ *generator.Modifier, _ time.Time) error {
	if r.failTags[name] {
		return fmt.Errorf("install refused for %s", name)
	}

	r.ops = append(r.ops, "set:"+name)

	return nil
}

// ClearModifier records the clear.
func (r *recordingTarget) ClearModifier(name string) {
	r.ops = append(r.ops, "clear:"+name)
}

// twoTag builds a two-tag fault scenario for ordering tests.
func twoTag(name string, duration time.Duration) *Scenario {
	return &Scenario{
		Name:     name,
		Duration: duration,
		Modifiers: []TagModifier{
			{Tag: name + ".1", Modifier: generator.Modifier{CurveType: generator.CurveLinear, StartValue: 1.0, EndValue: 2.0}},
			{Tag: name + ".2", Modifier: generator.Modifier{CurveType: generator.CurveLinear, StartValue: 1.0, EndValue: 2.0}},
		},
	}
}

// TestMutualExclusion verifies activating B always deactivates A first.
func TestMutualExclusion(t *testing.T) {
	t.Parallel()

	target := &recordingTarget{}
	e := NewEngine(target)
	ctx := context.Background()

	a := twoTag("a", time.Minute)
	b := twoTag("b", time.Minute)

	require.NoError(t, e.Activate(ctx, a))
	require.NoError(t, e.Activate(ctx, b))

	require.Equal(t, []string{"set:a.1", "set:a.2", "clear:a.1", "clear:a.2", "set:b.1", "set:b.2"}, target.ops)
	require.Equal(t, "b", e.Active().Name)
}

// TestExpiry asserts auto-revert at the first check with now >= start+duration.
func TestExpiry(t *testing.T) {
	t.Parallel()

	target := &recordingTarget{}
	e := NewEngine(target)
	ctx := context.Background()

	s := twoTag("decay", 480*time.Second)
	require.NoError(t, e.Activate(ctx, s))

	started := time.Now()

	// Not yet expired.
	e.CheckExpiry(ctx, started.Add(479*time.Second))
	require.Equal(t, "decay", e.Active().Name)

	// Expired: reverted to baseline, declared tags cleared.
	e.CheckExpiry(ctx, started.Add(481*time.Second))
	require.Equal(t, "normal", e.Active().Name)
	require.Contains(t, target.ops, "clear:decay.1")
	require.Contains(t, target.ops, "clear:decay.2")

	// Baseline never expires.
	e.CheckExpiry(ctx, started.Add(time.Hour))
	require.Equal(t, "normal", e.Active().Name)
}

// TestManualDeactivate covers the admin stop path and its idempotence.
func TestManualDeactivate(t *testing.T) {
	t.Parallel()

	target := &recordingTarget{}
	e := NewEngine(target)
	ctx := context.Background()

	require.NoError(t, e.Activate(ctx, twoTag("x", 0)))
	require.Equal(t, "x", e.Active().Name)

	e.Deactivate(ctx)
	require.Equal(t, "normal", e.Active().Name)

	// Deactivating the baseline is a no-op.
	before := len(target.ops)
	e.Deactivate(ctx)
	require.Len(t, target.ops, before)
}

// TestReactivateRestarts documents restart semantics: re-activating the
// active scenario resets its start time.
func TestReactivateRestarts(t *testing.T) {
	t.Parallel()

	target := &recordingTarget{}
	e := NewEngine(target)
	ctx := context.Background()

	s := twoTag("drill", time.Minute)
	require.NoError(t, e.Activate(ctx, s))

	time.Sleep(20 * time.Millisecond)
	first := e.Status().Elapsed

	require.NoError(t, e.Activate(ctx, s))
	require.Less(t, e.Status().Elapsed, first)
	require.Equal(t, "drill", e.Active().Name)

	// Restart ran the full deactivate/activate cycle.
	require.Equal(t, []string{
		"set:drill.1", "set:drill.2",
		"clear:drill.1", "clear:drill.2",
		"set:drill.1", "set:drill.2",
	}, target.ops)
}

// TestActivateBaselineNoop asserts activating normal over normal does nothing.
func TestActivateBaselineNoop(t *testing.T) {
	t.Parallel()

	target := &recordingTarget{}
	e := NewEngine(target)

	require.NoError(t, e.Activate(context.Background(), Normal()))
	require.Empty(t, target.ops)
	require.Error(t, e.Activate(context.Background(), nil))
}

// TestPartialInstallStillCleansUp verifies deactivation clears every
// declared tag even when some installs failed.
func TestPartialInstallStillCleansUp(t *testing.T) {
	t.Parallel()

	target := &recordingTarget{failTags: map[string]bool{"p.1": true}}
	e := NewEngine(target)
	ctx := context.Background()

	s := twoTag("p", time.Minute)

	// Activation succeeds despite the failed install.
	require.NoError(t, e.Activate(ctx, s))
	require.Equal(t, "p", e.Active().Name)

	e.Deactivate(ctx)
	require.Contains(t, target.ops, "clear:p.1")
	require.Contains(t, target.ops, "clear:p.2")
}

// TestScenarioActivateJoinsErrors asserts one failed install does not stop the rest.
func TestScenarioActivateJoinsErrors(t *testing.T) {
	t.Parallel()

	target := &recordingTarget{failTags: map[string]bool{"s.1": true}}
	s := twoTag("s", time.Minute)

	err := s.Activate(target, time.Now())
	require.Error(t, err)
	require.Equal(t, []string{"set:s.2"}, target.ops)
}

// TestStatus checks the introspection snapshot.
func TestStatus(t *testing.T) {
	t.Parallel()

	e := NewEngine(&recordingTarget{})

	st := e.Status()
	require.Equal(t, "normal", st.ActiveScenario)
	require.Zero(t, st.Duration)

	require.NoError(t, e.Activate(context.Background(), twoTag("s", time.Minute)))

	st = e.Status()
	require.Equal(t, "s", st.ActiveScenario)
	require.Equal(t, time.Minute, st.Duration)
	require.GreaterOrEqual(t, st.Elapsed, time.Duration(0))
}
