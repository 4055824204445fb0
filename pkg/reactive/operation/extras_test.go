package operation

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vnykmshr/goflux/internal/testutil"
	gferrors "github.com/vnykmshr/goflux/pkg/common/errors"
	"github.com/vnykmshr/goflux/pkg/metrics"
	"github.com/vnykmshr/goflux/pkg/reactive/execution"
	"github.com/vnykmshr/goflux/pkg/reactive/stream"
)

// flaky builds an operation that fails the first failures runs, then
// succeeds with v.
func flaky(v int, failures int) (Operation[int], *atomic.Int32) {
	var attempts atomic.Int32
	op := New(func(s Sink[int]) stream.Disposable {
		if int(attempts.Add(1)) <= failures {
			s.Fail(errBoom)
			return nil
		}
		s.Next(v)
		s.Succeed()
		return nil
	})
	return op, &attempts
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	op, attempts := flaky(7, 2)
	rec, sub := record(Retry(op, 3))
	defer sub.Dispose()

	testutil.AssertSliceEqual(t, rec.Values(), []string{"next:7", "success"})
	testutil.AssertEqual(t, attempts.Load(), int32(3))
}

func TestRetryExhaustedPropagatesLastFailure(t *testing.T) {
	op, attempts := flaky(7, 10)
	rec, sub := record(Retry(op, 3))
	defer sub.Dispose()

	testutil.AssertSliceEqual(t, rec.Values(), []string{"failed:boom"})
	testutil.AssertEqual(t, attempts.Load(), int32(3))
}

func TestRetrySingleAttemptIsIdentity(t *testing.T) {
	op, attempts := flaky(7, 1)
	rec, sub := record(Retry(op, 1))
	defer sub.Dispose()

	testutil.AssertSliceEqual(t, rec.Values(), []string{"failed:boom"})
	testutil.AssertEqual(t, attempts.Load(), int32(1))
}

func TestRetryBackoffWaitsBetweenAttempts(t *testing.T) {
	op, attempts := flaky(7, 1)
	rec := testutil.NewRecorder[string]()
	sub := RetryBackoff(op, 2, 20*time.Millisecond).Observe(execution.Immediate(), func(ev Event[int]) {
		rec.Append(describe(ev))
	})
	defer sub.Dispose()

	// The second attempt only starts after the delay.
	testutil.AssertEqual(t, attempts.Load(), int32(1))
	testutil.Eventually(t, testutil.TestTimeout, func() bool { return rec.Len() == 2 })
	testutil.AssertSliceEqual(t, rec.Values(), []string{"next:7", "success"})
}

func TestRetryBackoffCancelDuringWaitStopsRetry(t *testing.T) {
	op, attempts := flaky(7, 1)
	sub := RetryBackoff(op, 2, 20*time.Millisecond).Observe(execution.Immediate(), func(Event[int]) {})
	sub.Dispose()

	time.Sleep(50 * time.Millisecond)
	testutil.AssertEqual(t, attempts.Load(), int32(1))
}

func TestWithTimeoutFailsWhenNoTerminalArrives(t *testing.T) {
	released := false
	op := New(func(Sink[int]) stream.Disposable {
		return stream.NewDisposable(func() { released = true })
	})

	rec := testutil.NewRecorder[string]()
	sub := WithTimeout(op, 10*time.Millisecond).Observe(execution.Immediate(), func(ev Event[int]) {
		rec.Append(describe(ev))
	})
	defer sub.Dispose()

	testutil.Eventually(t, testutil.TestTimeout, func() bool { return rec.Len() == 1 })
	testutil.AssertSliceEqual(t, rec.Values(), []string{"failed:operation timed out"})
	testutil.AssertEqual(t, released, true)
}

func TestWithTimeoutPassesEventsBeforeDeadline(t *testing.T) {
	rec, sub := record(WithTimeout(Succeeded(3), time.Minute))
	defer sub.Dispose()

	testutil.AssertSliceEqual(t, rec.Values(), []string{"next:3", "success"})
}

func TestWithTimeoutFailureIsSentinel(t *testing.T) {
	var failure error
	op := New(func(Sink[int]) stream.Disposable { return nil })
	sub := WithTimeout(op, time.Millisecond).Observe(execution.Immediate(), func(ev Event[int]) {
		if ev.Kind == KindFailed {
			failure = ev.Err
		}
	})
	defer sub.Dispose()

	testutil.Eventually(t, testutil.TestTimeout, func() bool { return failure != nil })
	testutil.AssertEqual(t, errors.Is(failure, gferrors.ErrTimeout), true)
}

func TestResultReturnsLastValueOnSuccess(t *testing.T) {
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	v, err := Result(ctx, Succeeded(42), execution.Immediate())
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, v, 42)
}

func TestResultReturnsFailure(t *testing.T) {
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	_, err := Result(ctx, Failed[int](errBoom), execution.Immediate())
	testutil.AssertEqual(t, errors.Is(err, errBoom), true)
}

func TestResultHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	never := New(func(Sink[int]) stream.Disposable { return nil })
	_, err := Result(ctx, never, execution.Immediate())
	testutil.AssertEqual(t, errors.Is(err, context.Canceled), true)
}

func TestResultWithAsynchronousProducer(t *testing.T) {
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	op := New(func(s Sink[int]) stream.Disposable {
		go func() {
			s.Next(1)
			s.Next(2)
			s.Succeed()
		}()
		return nil
	})

	serial := execution.NewSerial()
	defer func() { <-serial.Close() }()

	v, err := Result(ctx, op, serial)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, v, 2)
}

func TestWithMetricsRecordsOutcomes(t *testing.T) {
	reg := metrics.NewRegistry(prometheus.NewRegistry())

	_, okSub := record(WithMetrics(Succeeded(1), "demo", reg))
	okSub.Dispose()
	_, failSub := record(WithMetrics(Failed[int](errBoom), "demo", reg))
	failSub.Dispose()

	pending := WithMetrics(New(func(Sink[int]) stream.Disposable { return nil }), "demo", reg)
	pending.Observe(execution.Immediate(), func(Event[int]) {}).Dispose()

	testutil.AssertEqual(t, promtest.ToFloat64(reg.OperationsStarted.WithLabelValues("demo")), 3.0)
	testutil.AssertEqual(t, promtest.ToFloat64(reg.OperationsSucceeded.WithLabelValues("demo")), 1.0)
	testutil.AssertEqual(t, promtest.ToFloat64(reg.OperationsFailed.WithLabelValues("demo")), 1.0)
	testutil.AssertEqual(t, promtest.ToFloat64(reg.OperationsCancelled.WithLabelValues("demo")), 1.0)
}

func TestWithMetricsIsTransparent(t *testing.T) {
	reg := metrics.NewRegistry(prometheus.NewRegistry())
	rec, sub := record(WithMetrics(Succeeded(9), "transparent", reg))
	defer sub.Dispose()

	testutil.AssertSliceEqual(t, rec.Values(), []string{"next:9", "success"})
}
