package epg

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultNowInterval 当前时间标记的刷新周期
const DefaultNowInterval = time.Minute

// NowOffset 计算指定时间相对时间轴起点的格子偏移量
func NowOffset(axis TimeAxis, now time.Time) float64 {
	return axis.Offset(now)
}

// RecomputeNowOffset 计算当前时间相对时间轴起点的格子偏移量
func RecomputeNowOffset(axis TimeAxis, loc *time.Location) float64 {
	if loc == nil {
		loc = time.UTC
	}
	return NowOffset(axis, time.Now().In(loc))
}

// NowTracker 按固定周期刷新当前时间标记的位置
//
// 只依赖时间轴，不会触发重新布局。
type NowTracker struct {
	axis     TimeAxis
	loc      *time.Location
	interval time.Duration
	onTick   func(offset float64)

	// Now 获取当前时间，测试时可替换
	Now func() time.Time

	offset atomic.Uint64
	// inTick 正在执行的onTick回调数量
	inTick atomic.Int32

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewNowTracker 创建NowTracker，interval不大于0时使用DefaultNowInterval，onTick可以为nil
func NewNowTracker(axis TimeAxis, loc *time.Location, interval time.Duration, onTick func(offset float64)) *NowTracker {
	if loc == nil {
		loc = time.UTC
	}
	if interval <= 0 {
		interval = DefaultNowInterval
	}
	return &NowTracker{
		axis:     axis,
		loc:      loc,
		interval: interval,
		onTick:   onTick,
		Now:      time.Now,
	}
}

// Axis 返回跟踪的时间轴
func (t *NowTracker) Axis() TimeAxis {
	return t.axis
}

// Offset 返回最近一次采样的偏移量
func (t *NowTracker) Offset() float64 {
	return math.Float64frombits(t.offset.Load())
}

// Sample 立即采样一次当前时间
func (t *NowTracker) Sample() float64 {
	offset := NowOffset(t.axis, t.Now().In(t.loc))
	t.offset.Store(math.Float64bits(offset))
	if t.onTick != nil {
		t.inTick.Add(1)
		defer t.inTick.Add(-1)
		t.onTick(offset)
	}
	return offset
}

// Start 立即采样一次，之后按周期在后台采样，直到ctx结束或调用Stop
func (t *NowTracker) Start(ctx context.Context) {
	t.mu.Lock()
	if t.cancel != nil {
		t.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	done := make(chan struct{})
	t.done = done
	t.mu.Unlock()

	go func() {
		defer close(done)

		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				// 停止后可能同时有tick就绪，优先响应停止
				if ctx.Err() != nil {
					return
				}
				t.Sample()
			}
		}
	}()

	// onTick中可以调用Stop，所以采样时不持有锁
	if ctx.Err() == nil {
		t.Sample()
	}
}

// Stop 停止周期采样，返回后不会再开始新的onTick
//
// 在onTick回调中调用时不等待后台goroutine退出，直接返回。
func (t *NowTracker) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	if t.inTick.Load() > 0 {
		return
	}
	<-done
}
