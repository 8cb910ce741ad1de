package hardware

import (
	"time"

	"go.uber.org/zap"
)

// 默认开锁窗口，电机不可能连续转超过1分钟
const latchOpenWindow = 60 * time.Second

// Latch 门锁消抖控制器
//
// 独占一条输出线的常驻worker，把任意调用方提交的"开锁到某截止
// 时间"请求合并成一次连贯的通电/断电包络：重叠请求期间线保持
// 通电不抖动，最迟的已知截止时间过后才断电。进程级单例，
// 生命周期长于单次出货事务。
type Latch struct {
	line     Line
	window   time.Duration
	requests chan time.Time
	stopCh   chan struct{}
	logger   *zap.Logger
}

// NewLatch 创建门锁控制器并启动worker
func NewLatch(line Line, log *zap.Logger) *Latch {
	l := &Latch{
		line:     line,
		window:   latchOpenWindow,
		requests: make(chan time.Time, 64),
		stopCh:   make(chan struct{}),
		logger:   log,
	}
	go l.run()
	return l
}

// Open 请求开锁（非阻塞）
//
// worker保证线至少通电到 now+窗口。
func (l *Latch) Open() {
	l.OpenUntil(time.Now().Add(l.window))
}

// OpenUntil 请求开锁到指定截止时间（非阻塞）
func (l *Latch) OpenUntil(deadline time.Time) {
	select {
	case l.requests <- deadline:
	default:
		l.logger.Warn("门锁请求队列已满，丢弃请求", zap.Time("deadline", deadline))
	}
}

// Close 停止worker（仅进程退出时调用）
func (l *Latch) Close() {
	close(l.stopCh)
}

// run worker主循环：阻塞等请求，逐个展开成通电/断电包络
func (l *Latch) run() {
	for {
		select {
		case <-l.stopCh:
			return
		case deadline := <-l.requests:
			// 已过期的请求直接丢弃，绝不为其通电
			if !deadline.After(time.Now()) {
				continue
			}
			l.cycle(deadline)
		}
	}
}

// cycle 一次完整的通电/断电包络
func (l *Latch) cycle(deadline time.Time) {
	if err := l.line.SetValue(1); err != nil {
		l.logger.Error("门锁通电失败", zap.Error(err))
	}
	l.logger.Info("门锁已开", zap.Time("until", deadline))

	l.sleepUntil(deadline)

	// 睡眠期间到达的请求只会延长包络，绝不缩短
drain:
	for {
		select {
		case next := <-l.requests:
			if next.After(time.Now()) {
				l.sleepUntil(next)
			}
		default:
			break drain
		}
	}

	if err := l.line.SetValue(0); err != nil {
		l.logger.Error("门锁断电失败", zap.Error(err))
	}
	l.logger.Info("门锁已关")
}

// sleepUntil 睡到截止时间或worker被停止
func (l *Latch) sleepUntil(deadline time.Time) {
	d := time.Until(deadline)
	if d <= 0 {
		return
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-l.stopCh:
	}
}
