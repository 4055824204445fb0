package operation

import (
	"errors"
	"strconv"
	"testing"

	"github.com/vnykmshr/goflux/internal/testutil"
	"github.com/vnykmshr/goflux/pkg/reactive/execution"
	"github.com/vnykmshr/goflux/pkg/reactive/stream"
)

func TestMapTransformsNextOnly(t *testing.T) {
	op := Map(Succeeded(7), func(v int) string { return strconv.Itoa(v * 10) })
	rec, sub := record(op)
	defer sub.Dispose()

	testutil.AssertSliceEqual(t, rec.Values(), []string{"next:70", "success"})
}

func TestMapPassesFailureThrough(t *testing.T) {
	op := Map(Failed[int](errBoom), func(v int) int { return v })
	rec, sub := record(op)
	defer sub.Dispose()

	testutil.AssertSliceEqual(t, rec.Values(), []string{"failed:boom"})
}

func TestFilterAppliesToNextOnly(t *testing.T) {
	src := &manualSource[int]{}
	op := Filter(src.operation(), func(v int) bool { return v%2 == 0 })
	rec, sub := record(op)
	defer sub.Dispose()

	s := src.sink(0)
	s.Next(1)
	s.Next(2)
	s.Next(3)
	s.Succeed()

	// Terminals always pass, even when every value was dropped.
	testutil.AssertSliceEqual(t, rec.Values(), []string{"next:2", "success"})
}

func TestFlatMapErrorSubstitutesFallback(t *testing.T) {
	op := FlatMapError(Failed[string](errBoom), func(error) Operation[string] {
		return Succeeded("fallback")
	})
	rec, sub := record(op)
	defer sub.Dispose()

	// The observer sees the fallback's continuation, never the
	// original failure.
	testutil.AssertSliceEqual(t, rec.Values(), []string{"next:fallback", "success"})
}

func TestFlatMapErrorReceivesCause(t *testing.T) {
	var seen error
	op := FlatMapError(Failed[int](errBoom), func(err error) Operation[int] {
		seen = err
		return Succeeded(0)
	})
	_, sub := record(op)
	defer sub.Dispose()

	testutil.AssertEqual(t, errors.Is(seen, errBoom), true)
}

func TestFlatMapErrorSecondFailurePropagates(t *testing.T) {
	second := errors.New("second")
	op := FlatMapError(Failed[int](errBoom), func(error) Operation[int] {
		return Failed[int](second)
	})
	rec, sub := record(op)
	defer sub.Dispose()

	testutil.AssertSliceEqual(t, rec.Values(), []string{"failed:second"})
}

func TestFlatMapErrorPassesSuccessUntouched(t *testing.T) {
	called := false
	op := FlatMapError(Succeeded(5), func(error) Operation[int] {
		called = true
		return Succeeded(0)
	})
	rec, sub := record(op)
	defer sub.Dispose()

	testutil.AssertSliceEqual(t, rec.Values(), []string{"next:5", "success"})
	testutil.AssertEqual(t, called, false)
}

func TestFlatMapLatestForwardsMostRecentInnerOnly(t *testing.T) {
	outer := &manualSource[string]{}
	inners := map[string]*manualSource[string]{
		"a": {},
		"b": {},
	}

	op := FlatMap(outer.operation(), Latest, func(k string) Operation[string] {
		return inners[k].operation()
	})
	rec, sub := record(op)
	defer sub.Dispose()

	outer.sink(0).Next("a")
	outer.sink(0).Next("b")

	// Inner "a" was superseded before emitting; its run is cancelled
	// and its late values never reach the observer.
	inners["a"].sink(0).Next("a1")
	inners["b"].sink(0).Next("b1")
	inners["b"].sink(0).Next("b2")

	testutil.AssertSliceEqual(t, rec.Values(), []string{"next:b1", "next:b2"})
}

func TestFlatMapLatestCompletesAfterOuterAndLatestInner(t *testing.T) {
	outer := &manualSource[int]{}
	inner := &manualSource[int]{}

	op := FlatMap(outer.operation(), Latest, func(int) Operation[int] {
		return inner.operation()
	})
	rec, sub := record(op)
	defer sub.Dispose()

	outer.sink(0).Next(1)
	outer.sink(0).Succeed()
	testutil.AssertEqual(t, rec.Len(), 0) // inner still running

	inner.sink(0).Next(10)
	inner.sink(0).Succeed()
	testutil.AssertSliceEqual(t, rec.Values(), []string{"next:10", "success"})
}

func TestFlatMapMergeRunsInnersConcurrently(t *testing.T) {
	outer := &manualSource[int]{}
	inner := &manualSource[int]{}

	op := FlatMap(outer.operation(), Merge, func(int) Operation[int] {
		return inner.operation()
	})
	rec, sub := record(op)
	defer sub.Dispose()

	outer.sink(0).Next(1)
	outer.sink(0).Next(2)
	testutil.AssertEqual(t, inner.runs(), 2) // both live at once

	inner.sink(0).Next(10)
	inner.sink(1).Next(20)
	inner.sink(0).Succeed()
	outer.sink(0).Succeed()
	testutil.AssertEqual(t, rec.Len(), 2) // one inner still running

	inner.sink(1).Succeed()
	testutil.AssertSliceEqual(t, rec.Values(), []string{"next:10", "next:20", "success"})
}

func TestFlatMapConcatRunsInnersInOrder(t *testing.T) {
	outer := &manualSource[int]{}
	inner := &manualSource[int]{}

	op := FlatMap(outer.operation(), Concat, func(int) Operation[int] {
		return inner.operation()
	})
	rec, sub := record(op)
	defer sub.Dispose()

	outer.sink(0).Next(1)
	outer.sink(0).Next(2)
	outer.sink(0).Succeed()

	// The second inner is queued until the first one succeeds.
	testutil.AssertEqual(t, inner.runs(), 1)

	inner.sink(0).Next(10)
	inner.sink(0).Succeed()
	testutil.AssertEqual(t, inner.runs(), 2)

	inner.sink(1).Next(20)
	inner.sink(1).Succeed()

	testutil.AssertSliceEqual(t, rec.Values(), []string{"next:10", "next:20", "success"})
}

func TestFlatMapInnerFailureFailsComposition(t *testing.T) {
	outer := &manualSource[int]{}
	inner := &manualSource[int]{}

	op := FlatMap(outer.operation(), Merge, func(int) Operation[int] {
		return inner.operation()
	})
	rec, sub := record(op)
	defer sub.Dispose()

	outer.sink(0).Next(1)
	inner.sink(0).Fail(errBoom)

	// Later outer emissions are ignored once the composition failed.
	outer.sink(0).Next(2)
	outer.sink(0).Succeed()

	testutil.AssertSliceEqual(t, rec.Values(), []string{"failed:boom"})
}

func TestFlatMapOuterFailureCancelsInners(t *testing.T) {
	outer := &manualSource[int]{}
	inner := &manualSource[int]{}

	op := FlatMap(outer.operation(), Merge, func(int) Operation[int] {
		return inner.operation()
	})
	rec, sub := record(op)
	defer sub.Dispose()

	outer.sink(0).Next(1)
	outer.sink(0).Fail(errBoom)

	inner.sink(0).Next(10)
	inner.sink(0).Succeed()

	testutil.AssertSliceEqual(t, rec.Values(), []string{"failed:boom"})
}

func TestFlatMapDisposalCancelsOuterAndInners(t *testing.T) {
	outerReleased := false
	innerReleased := false
	outerOp := New(func(s Sink[int]) stream.Disposable {
		s.Next(1)
		return stream.NewDisposable(func() { outerReleased = true })
	})
	op := FlatMap(outerOp, Merge, func(int) Operation[int] {
		return New(func(Sink[int]) stream.Disposable {
			return stream.NewDisposable(func() { innerReleased = true })
		})
	})

	_, sub := record(op)
	sub.Dispose()

	testutil.AssertEqual(t, outerReleased, true)
	testutil.AssertEqual(t, innerReleased, true)
}

func TestShareRunsProducerOnce(t *testing.T) {
	src := &manualSource[int]{}
	shared := Share(src.operation())

	rec1 := testutil.NewRecorder[string]()
	rec2 := testutil.NewRecorder[string]()
	sub1 := shared.Observe(execution.Immediate(), func(ev Event[int]) { rec1.Append(describe(ev)) })
	sub2 := shared.Observe(execution.Immediate(), func(ev Event[int]) { rec2.Append(describe(ev)) })
	defer sub1.Dispose()
	defer sub2.Dispose()

	testutil.AssertEqual(t, src.runs(), 1)

	src.sink(0).Next(1)
	testutil.AssertSliceEqual(t, rec1.Values(), []string{"next:1"})
	testutil.AssertSliceEqual(t, rec2.Values(), []string{"next:1"})
}

func TestShareReplaysLatestNextToNewObserver(t *testing.T) {
	src := &manualSource[int]{}
	shared := Share(src.operation())

	sub1 := shared.Observe(execution.Immediate(), func(Event[int]) {})
	defer sub1.Dispose()

	src.sink(0).Next(1)
	src.sink(0).Next(2)

	rec, sub2 := record(shared)
	defer sub2.Dispose()

	testutil.AssertSliceEqual(t, rec.Values(), []string{"next:2"})
}

func TestShareForwardsTerminalToLateObserver(t *testing.T) {
	src := &manualSource[int]{}
	shared := Share(src.operation())

	sub1 := shared.Observe(execution.Immediate(), func(Event[int]) {})
	defer sub1.Dispose()

	src.sink(0).Next(5)
	src.sink(0).Succeed()

	rec, sub2 := record(shared)
	defer sub2.Dispose()

	testutil.AssertSliceEqual(t, rec.Values(), []string{"next:5", "success"})
}

func TestShareObserverDisposalDetachesOnlyThatObserver(t *testing.T) {
	src := &manualSource[int]{}
	shared := Share(src.operation())

	rec1 := testutil.NewRecorder[string]()
	rec2 := testutil.NewRecorder[string]()
	sub1 := shared.Observe(execution.Immediate(), func(ev Event[int]) { rec1.Append(describe(ev)) })
	sub2 := shared.Observe(execution.Immediate(), func(ev Event[int]) { rec2.Append(describe(ev)) })
	defer sub2.Dispose()

	src.sink(0).Next(1)
	sub1.Dispose()
	src.sink(0).Next(2)

	testutil.AssertSliceEqual(t, rec1.Values(), []string{"next:1"})
	testutil.AssertSliceEqual(t, rec2.Values(), []string{"next:1", "next:2"})
}

func TestEventsExposesOperationAsStream(t *testing.T) {
	terminals := stream.Filter(Succeeded(1).Events(), func(ev Event[int]) bool {
		return ev.IsTerminal()
	})

	rec := testutil.NewRecorder[string]()
	sub := terminals.Observe(execution.Immediate(), func(ev Event[int]) {
		rec.Append(describe(ev))
	})
	defer sub.Dispose()

	testutil.AssertSliceEqual(t, rec.Values(), []string{"success"})
}
