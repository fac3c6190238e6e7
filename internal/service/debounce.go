package service

import (
	"sync"
	"time"
)

const defaultDebounceInterval = 500 * time.Millisecond

// Debouncer превращает поток событий ввода в поток "устоявшихся" запросов.
// Каждый Update взводит таймер заново; эмиссия происходит только когда ввод
// замолчал на весь интервал. Flush эмитит сразу, отменяя взведённый таймер.
type Debouncer struct {
	interval time.Duration

	input chan debounceEvent
	out   chan string

	stop     chan struct{}
	stopOnce sync.Once
}

type debounceEvent struct {
	text      string
	immediate bool
	cancel    bool
}

func NewDebouncer(interval time.Duration) *Debouncer {
	if interval <= 0 {
		interval = defaultDebounceInterval
	}

	d := &Debouncer{
		interval: interval,
		input:    make(chan debounceEvent, 16),
		out:      make(chan string, 16),
		stop:     make(chan struct{}),
	}
	go d.loop()
	return d
}

// Update schedules an emission of text after the quiet interval,
// cancelling any previously scheduled emission.
func (d *Debouncer) Update(text string) {
	d.send(debounceEvent{text: text})
}

// Flush emits text without waiting, cancelling any pending emission.
func (d *Debouncer) Flush(text string) {
	d.send(debounceEvent{text: text, immediate: true})
}

// Cancel discards the pending emission, if any.
func (d *Debouncer) Cancel() {
	d.send(debounceEvent{cancel: true})
}

// Settled is the stream of settled query strings.
func (d *Debouncer) Settled() <-chan string {
	return d.out
}

func (d *Debouncer) Stop() {
	d.stopOnce.Do(func() { close(d.stop) })
}

func (d *Debouncer) send(ev debounceEvent) {
	select {
	case d.input <- ev:
	case <-d.stop:
	}
}

func (d *Debouncer) loop() {
	var timer *time.Timer
	var timerC <-chan time.Time
	var pending string

	stopTimer := func() {
		if timer != nil {
			timer.Stop()
			timer = nil
			timerC = nil
		}
	}

	for {
		select {
		case <-d.stop:
			stopTimer()
			return

		case ev := <-d.input:
			// любое событие отменяет взведённый таймер
			stopTimer()
			if ev.cancel {
				continue
			}
			if ev.immediate {
				d.emit(ev.text)
				continue
			}
			pending = ev.text
			timer = time.NewTimer(d.interval)
			timerC = timer.C

		case <-timerC:
			timer = nil
			timerC = nil
			d.emit(pending)
		}
	}
}

func (d *Debouncer) emit(text string) {
	select {
	case d.out <- text:
	case <-d.stop:
	}
}
