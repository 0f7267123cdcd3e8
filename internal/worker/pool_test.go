package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNewPoolDefaultConcurrency(t *testing.T) {
	p := NewPool[string, string](0)
	if p.concurrency != runtime.NumCPU() {
		t.Errorf("expected concurrency %d, got %d", runtime.NumCPU(), p.concurrency)
	}

	p2 := NewPool[string, string](-1)
	if p2.concurrency != runtime.NumCPU() {
		t.Errorf("expected concurrency %d for -1, got %d", runtime.NumCPU(), p2.concurrency)
	}
}

func TestNewPoolExplicitConcurrency(t *testing.T) {
	p := NewPool[string, int](4)
	if p.concurrency != 4 {
		t.Errorf("expected concurrency 4, got %d", p.concurrency)
	}
}

func TestProcessEmpty(t *testing.T) {
	p := NewPool[string, string](2)
	results := p.Process(context.Background(), nil, func(_ context.Context, s string) (string, error) {
		return s, nil
	})
	if results != nil {
		t.Errorf("expected nil results for empty input, got %v", results)
	}
}

func TestProcessPreservesOrder(t *testing.T) {
	p := NewPool[string, string](4)
	items := []string{"a", "b", "c", "d", "e", "f", "g", "h"}

	results := p.Process(context.Background(), items, func(_ context.Context, s string) (string, error) {
		return "processed-" + s, nil
	})

	if len(results) != len(items) {
		t.Fatalf("expected %d results, got %d", len(items), len(results))
	}

	for i, r := range results {
		if r.Err != nil {
			t.Errorf("result[%d] unexpected error: %v", i, r.Err)
		}
		expected := "processed-" + items[i]
		if r.Value != expected {
			t.Errorf("result[%d] = %q, expected %q", i, r.Value, expected)
		}
		if r.Index != i {
			t.Errorf("result[%d].Index = %d, expected %d", i, r.Index, i)
		}
	}
}

func TestProcessCapturesErrors(t *testing.T) {
	p := NewPool[string, int](2)
	items := []string{"ok", "fail", "ok", "fail"}

	results := p.Process(context.Background(), items, func(_ context.Context, s string) (int, error) {
		if s == "fail" {
			return 0, fmt.Errorf("failed on %s", s)
		}
		return 1, nil
	})

	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	if results[0].Err != nil || results[0].Value != 1 {
		t.Errorf("result[0] should succeed, got err=%v val=%d", results[0].Err, results[0].Value)
	}
	if results[1].Err == nil || results[3].Err == nil {
		t.Error("failed items should carry errors")
	}
}

func TestProcessStructItems(t *testing.T) {
	type pkg struct {
		name  string
		major int
	}
	p := NewPool[pkg, string](3)
	items := []pkg{{"react", 19}, {"next", 15}}

	results := p.Process(context.Background(), items, func(_ context.Context, in pkg) (string, error) {
		return fmt.Sprintf("%s@%d", in.name, in.major), nil
	})
	if results[0].Value != "react@19" || results[1].Value != "next@15" {
		t.Errorf("unexpected values: %+v", results)
	}
}

func TestProcessConcurrencyCap(t *testing.T) {
	p := NewPool[int, int](3)

	var maxConcurrent, current int64
	items := make([]int, 20)

	p.Process(context.Background(), items, func(_ context.Context, _ int) (int, error) {
		c := atomic.AddInt64(&current, 1)
		for {
			old := atomic.LoadInt64(&maxConcurrent)
			if c <= old || atomic.CompareAndSwapInt64(&maxConcurrent, old, c) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt64(&current, -1)
		return 1, nil
	})

	peak := atomic.LoadInt64(&maxConcurrent)
	if peak < 2 {
		t.Errorf("expected concurrent execution (peak=%d), got sequential", peak)
	}
	if peak > 3 {
		t.Errorf("peak concurrency %d exceeds cap 3", peak)
	}
}

func TestProcessCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int64
	p := NewPool[int, int](2)
	results := p.Process(ctx, []int{1, 2, 3}, func(_ context.Context, v int) (int, error) {
		atomic.AddInt64(&calls, 1)
		return v, nil
	})

	if atomic.LoadInt64(&calls) != 0 {
		t.Errorf("fn called %d times after cancellation", calls)
	}
	for i, r := range results {
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("result[%d].Err = %v, want context.Canceled", i, r.Err)
		}
	}
}

func BenchmarkPoolProcess(b *testing.B) {
	items := make([]string, 100)
	for i := range items {
		items[i] = fmt.Sprintf("item-%d", i)
	}
	b.ResetTimer()
	for range b.N {
		p := NewPool[string, string](4)
		_ = p.Process(context.Background(), items, func(_ context.Context, s string) (string, error) {
			return s + "-done", nil
		})
	}
}
