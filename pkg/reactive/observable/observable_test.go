package observable

import (
	"sync"
	"testing"

	"github.com/vnykmshr/goflux/internal/testutil"
	"github.com/vnykmshr/goflux/pkg/reactive/execution"
	"github.com/vnykmshr/goflux/pkg/reactive/stream"
)

func TestValueReflectsLatestWrite(t *testing.T) {
	o := New(1)
	testutil.AssertEqual(t, o.Value(), 1)

	o.Set(2)
	testutil.AssertEqual(t, o.Value(), 2)

	o.Update(func(v int) int { return v * 10 })
	testutil.AssertEqual(t, o.Value(), 20)
}

func TestObserverReceivesCurrentValueAtRegistration(t *testing.T) {
	o := New("Jim")

	rec := testutil.NewRecorder[string]()
	sub := o.Observe(execution.Immediate(), rec.Observe())
	defer sub.Dispose()

	testutil.AssertSliceEqual(t, rec.Values(), []string{"Jim"})
}

func TestSetEmitsExactlyOneEventPerWrite(t *testing.T) {
	o := New("Jim")

	rec := testutil.NewRecorder[string]()
	sub := o.Observe(execution.Immediate(), rec.Observe())
	defer sub.Dispose()

	o.Set("Jim Kirk")

	testutil.AssertSliceEqual(t, rec.Values(), []string{"Jim", "Jim Kirk"})
}

func TestWritesDeliveredInOrder(t *testing.T) {
	o := New(0)

	rec := testutil.NewRecorder[int]()
	sub := o.Observe(execution.Immediate(), rec.Observe())
	defer sub.Dispose()

	for i := 1; i <= 100; i++ {
		o.Set(i)
	}

	got := rec.Values()
	testutil.AssertEqual(t, len(got), 101)
	for i, v := range got {
		testutil.AssertEqual(t, v, i)
	}
}

func TestMultipleObserversAllReceiveEachWrite(t *testing.T) {
	o := New(0)

	recs := make([]*testutil.Recorder[int], 3)
	subs := make([]stream.Disposable, 3)
	for i := range recs {
		recs[i] = testutil.NewRecorder[int]()
		subs[i] = o.Observe(execution.Immediate(), recs[i].Observe())
	}

	o.Set(1)
	o.Set(2)

	for i := range recs {
		testutil.AssertSliceEqual(t, recs[i].Values(), []int{0, 1, 2})
		subs[i].Dispose()
	}
}

func TestDisposedObserverReceivesNothing(t *testing.T) {
	o := New(0)

	rec := testutil.NewRecorder[int]()
	sub := o.Observe(execution.Immediate(), rec.Observe())
	sub.Dispose()

	o.Set(1)
	testutil.AssertSliceEqual(t, rec.Values(), []int{0})
}

func TestReentrantWriteFromObserver(t *testing.T) {
	o := New(0)

	rec := testutil.NewRecorder[int]()
	sub := o.Observe(execution.Immediate(), func(v int) {
		rec.Append(v)
		if v > 0 && v < 3 {
			o.Set(v + 1)
		}
	})
	defer sub.Dispose()

	o.Set(1)

	testutil.AssertSliceEqual(t, rec.Values(), []int{0, 1, 2, 3})
	testutil.AssertEqual(t, o.Value(), 3)
}

func TestConcurrentWritesSerialize(t *testing.T) {
	o := New(0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				o.Update(func(v int) int { return v + 1 })
			}
		}()
	}
	wg.Wait()

	testutil.AssertEqual(t, o.Value(), 8000)
}

func TestAsStreamComposition(t *testing.T) {
	o := New(2)
	squared := stream.Map(o.AsStream(), func(v int) int { return v * v })

	rec := testutil.NewRecorder[int]()
	sub := squared.Observe(execution.Immediate(), rec.Observe())
	defer sub.Dispose()

	o.Set(3)
	testutil.AssertSliceEqual(t, rec.Values(), []int{4, 9})
}
