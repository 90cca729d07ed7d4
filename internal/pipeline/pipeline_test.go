package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nao1215/userclean/internal/model"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, run *model.Run) error
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, run *model.Run) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, run)
	}
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

func newTestRun() *model.Run {
	return model.NewRun("run-1", model.ModeDefault, "data.json", "transformed.json")
}

// TestPipelineNew tests the Pipeline constructor.
func TestPipelineNew(t *testing.T) {
	t.Parallel()

	t.Run("creates pipeline with default settings", func(t *testing.T) {
		t.Parallel()

		p := New()

		if p == nil {
			t.Fatal("expected non-nil pipeline")
		}
		if p.StepCount() != 0 {
			t.Errorf("expected 0 steps, got %d", p.StepCount())
		}
		if p.logger == nil {
			t.Error("expected default logger")
		}
	})

	t.Run("applies WithContinueOnError option", func(t *testing.T) {
		t.Parallel()

		p := New(WithContinueOnError(true))

		if !p.continueOnError {
			t.Error("expected continueOnError to be true")
		}
	})

	t.Run("ignores nil observer", func(t *testing.T) {
		t.Parallel()

		p := New(WithStepObserver(nil))

		if len(p.observers) != 0 {
			t.Errorf("expected no observers, got %d", len(p.observers))
		}
	})
}

// TestPipelineAddStep tests adding steps to the pipeline.
func TestPipelineAddStep(t *testing.T) {
	t.Parallel()

	t.Run("adds single step", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddStep(&mockStep{name: "test-step"})

		if p.StepCount() != 1 {
			t.Errorf("expected 1 step, got %d", p.StepCount())
		}
	})

	t.Run("adds multiple steps with AddSteps", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddSteps(
			&mockStep{name: "step-1"},
			&mockStep{name: "step-2"},
			&mockStep{name: "step-3"},
		)

		if p.StepCount() != 3 {
			t.Errorf("expected 3 steps, got %d", p.StepCount())
		}
	})
}

// TestPipelineExecute tests pipeline execution.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("executes all steps in order", func(t *testing.T) {
		t.Parallel()

		executionOrder := make([]string, 0)

		p := New()
		p.AddStep(&mockStep{
			name: "step-1",
			doFunc: func(_ context.Context, _ *model.Run) error {
				executionOrder = append(executionOrder, "step-1")
				return nil
			},
		})
		p.AddStep(&mockStep{
			name: "step-2",
			doFunc: func(_ context.Context, _ *model.Run) error {
				executionOrder = append(executionOrder, "step-2")
				return nil
			},
		})

		if err := p.Execute(context.Background(), newTestRun()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(executionOrder) != 2 {
			t.Fatalf("expected 2 executions, got %d", len(executionOrder))
		}
		if executionOrder[0] != "step-1" || executionOrder[1] != "step-2" {
			t.Errorf("wrong execution order: %v", executionOrder)
		}
	})

	t.Run("stops on first error by default", func(t *testing.T) {
		t.Parallel()

		expectedErr := errors.New("step failed")
		second := &mockStep{name: "should-not-run"}

		p := New()
		p.AddStep(&mockStep{
			name: "failing-step",
			doFunc: func(_ context.Context, _ *model.Run) error {
				return expectedErr
			},
		})
		p.AddStep(second)

		err := p.Execute(context.Background(), newTestRun())

		if !errors.Is(err, expectedErr) {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if second.callCount != 0 {
			t.Error("second step should not have been called")
		}
	})

	t.Run("continues on error when configured", func(t *testing.T) {
		t.Parallel()

		second := &mockStep{name: "should-run"}

		p := New(WithContinueOnError(true))
		p.AddStep(&mockStep{
			name: "failing-step",
			doFunc: func(_ context.Context, _ *model.Run) error {
				return errors.New("step failed")
			},
		})
		p.AddStep(second)

		run := newTestRun()
		if err := p.Execute(context.Background(), run); err != nil {
			t.Errorf("expected nil error with continueOnError, got %v", err)
		}
		if second.callCount != 1 {
			t.Error("second step should have been called")
		}
		if len(run.PerformedSteps) != 1 || run.PerformedSteps[0] != "should-run" {
			t.Errorf("expected only the successful step to be recorded, got %v", run.PerformedSteps)
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		step := &mockStep{name: "should-not-run"}
		p := New()
		p.AddStep(step)

		run := newTestRun()
		err := p.Execute(ctx, run)

		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if step.callCount != 0 {
			t.Error("step should not have been called")
		}
		if !errors.Is(run.Error, context.Canceled) {
			t.Errorf("expected run.Error to be context.Canceled, got %v", run.Error)
		}
	})

	t.Run("records performed steps", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddStep(&mockStep{name: "load"})
		p.AddStep(&mockStep{name: "write"})

		run := newTestRun()
		if err := p.Execute(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(run.PerformedSteps) != 2 {
			t.Errorf("expected 2 performed steps, got %d", len(run.PerformedSteps))
		}
	})

	t.Run("records error in run", func(t *testing.T) {
		t.Parallel()

		expectedErr := errors.New("test error")

		p := New()
		p.AddStep(&mockStep{
			name: "failing-step",
			doFunc: func(_ context.Context, _ *model.Run) error {
				return expectedErr
			},
		})

		run := newTestRun()
		_ = p.Execute(context.Background(), run) //nolint:errcheck // checked via run.Error

		if run.Error == nil {
			t.Error("expected error to be recorded in run")
		}
		if run.ErrorMessage != expectedErr.Error() {
			t.Errorf("expected error message %q, got %q", expectedErr.Error(), run.ErrorMessage)
		}
	})

	t.Run("notifies observers for every step", func(t *testing.T) {
		t.Parallel()

		type call struct {
			step string
			err  error
		}
		var calls []call
		failure := errors.New("boom")

		p := New(
			WithContinueOnError(true),
			WithStepObserver(func(step string, err error, elapsed time.Duration) {
				if elapsed < 0 {
					t.Errorf("negative elapsed for %s", step)
				}
				calls = append(calls, call{step: step, err: err})
			}),
		)
		p.AddStep(&mockStep{name: "ok"})
		p.AddStep(&mockStep{
			name: "bad",
			doFunc: func(_ context.Context, _ *model.Run) error {
				return failure
			},
		})

		_ = p.Execute(context.Background(), newTestRun()) //nolint:errcheck // observer is under test

		if len(calls) != 2 {
			t.Fatalf("expected 2 observer calls, got %d", len(calls))
		}
		if calls[0].step != "ok" || calls[0].err != nil {
			t.Errorf("unexpected first call: %+v", calls[0])
		}
		if calls[1].step != "bad" || !errors.Is(calls[1].err, failure) {
			t.Errorf("unexpected second call: %+v", calls[1])
		}
	})
}

// TestPipelineStepNames tests the StepNames method.
func TestPipelineStepNames(t *testing.T) {
	t.Parallel()

	t.Run("returns empty slice for empty pipeline", func(t *testing.T) {
		t.Parallel()

		names := New().StepNames()
		if len(names) != 0 {
			t.Errorf("expected empty slice, got %v", names)
		}
	})

	t.Run("default pipeline steps in order", func(t *testing.T) {
		t.Parallel()

		p := DefaultPipeline(&fakeSource{}, &fakeSink{}, nil)
		want := []string{"load", "aggregate", "rank", "write"}
		got := p.StepNames()

		if len(got) != len(want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("step %d: expected %q, got %q", i, want[i], got[i])
			}
		}
	})
}

// TestMockStep tests the mockStep helper.
func TestMockStep(t *testing.T) {
	t.Parallel()

	t.Run("tracks call count", func(t *testing.T) {
		t.Parallel()

		step := &mockStep{name: "test"}
		run := newTestRun()

		for range 3 {
			_ = step.Do(context.Background(), run) //nolint:errcheck // mock never fails
		}

		if step.callCount != 3 {
			t.Errorf("expected 3 calls, got %d", step.callCount)
		}
	})
}
