package pool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeWorker struct{ id int }

func TestFixedPool_TableDriven(t *testing.T) {
	type args struct {
		capacity uint
	}
	type want struct {
		newCountMin int
		newCountMax int
	}

	tests := []struct {
		name  string
		args  args
		setup func(t *testing.T, p *fixed)
		run   func(t *testing.T, p *fixed, newCount *int32) (created int)
		want  want
	}{
		{
			name: "constructor: capacity>0 makes buffered idle channel",
			args: args{capacity: 3},
			run: func(t *testing.T, p *fixed, _ *int32) int {
				for i := 0; i < cap(p.idle); i++ {
					select {
					case p.idle <- &fakeWorker{id: i}:
					case <-time.After(100 * time.Millisecond):
						t.Fatalf("idle channel did not accept up to capacity elements")
					}
				}
				var drained int
				for i := 0; i < cap(p.idle); i++ {
					select {
					case <-p.idle:
						drained++
					default:
					}
				}
				if drained != cap(p.idle) {
					t.Fatalf("drained %d, want %d", drained, cap(p.idle))
				}
				return 0
			},
			want: want{newCountMin: 0, newCountMax: 0},
		},
		{
			name: "Get creates up to capacity via newFn; then blocks until Put",
			args: args{capacity: 2},
			run: func(t *testing.T, p *fixed, newCount *int32) int {
				w1 := p.Get().(*fakeWorker)
				w2 := p.Get().(*fakeWorker)
				if w1 == nil || w2 == nil || w1 == w2 {
					t.Fatalf("expected two distinct workers, got %v and %v", w1, w2)
				}

				gotCh := make(chan any, 1)
				go func() { gotCh <- p.Get() }()

				select {
				case <-gotCh:
					t.Fatalf("third Get should block until Put; returned early")
				case <-time.After(100 * time.Millisecond):
				}

				p.Put(w1)

				select {
				case got := <-gotCh:
					if got != w1 {
						t.Fatalf("expected blocked Get to receive reused worker w1; got %v", got)
					}
				case <-time.After(200 * time.Millisecond):
					t.Fatalf("blocked Get did not resume after Put")
				}

				return int(atomic.LoadInt32(newCount))
			},
			want: want{newCountMin: 2, newCountMax: 2},
		},
		{
			name: "Get reuses a worker already sitting idle",
			args: args{capacity: 3},
			setup: func(_ *testing.T, p *fixed) {
				p.idle <- &fakeWorker{id: 42}
			},
			run: func(t *testing.T, p *fixed, newCount *int32) int {
				got := p.Get()
				if w, ok := got.(*fakeWorker); !ok || w.id != 42 {
					t.Fatalf("expected to reuse seeded worker id=42, got %#v", got)
				}
				created := int(atomic.LoadInt32(newCount))
				if created != 0 {
					t.Fatalf("expected no new worker creation, newCount=%d", created)
				}
				return created
			},
			want: want{newCountMin: 0, newCountMax: 0},
		},
		{
			name: "Put then Get returns the same instance",
			args: args{capacity: 1},
			run: func(t *testing.T, p *fixed, _ *int32) int {
				w := p.Get()
				p.Put(w)
				w2 := p.Get()
				if w2 != w {
					t.Fatalf("expected same instance after Put/Get; got %v vs %v", w, w2)
				}
				return 1
			},
			want: want{newCountMin: 1, newCountMax: 1},
		},
		{
			name: "concurrent Get/Put never creates more than capacity workers",
			args: args{capacity: 5},
			run: func(t *testing.T, p *fixed, newCount *int32) int {
				const goroutines = 20
				var wg sync.WaitGroup
				wg.Add(goroutines)

				for i := 0; i < goroutines; i++ {
					go func() {
						defer wg.Done()
						w := p.Get()
						time.Sleep(5 * time.Millisecond)
						p.Put(w)
					}()
				}
				wg.Wait()
				created := int(atomic.LoadInt32(newCount))
				if created > int(p.capacity) {
					t.Fatalf("created %d workers, exceeds capacity %d", created, p.capacity)
				}
				return created
			},
			want: want{newCountMin: 1, newCountMax: 5},
		},
		{
			name: "capacity=0: Get blocks forever",
			args: args{capacity: 0},
			run: func(t *testing.T, p *fixed, newCount *int32) int {
				done := make(chan struct{})
				go func() {
					_ = p.Get()
					close(done)
				}()
				select {
				case <-done:
					t.Fatalf("Get unexpectedly returned with capacity 0 (should block)")
				case <-time.After(100 * time.Millisecond):
				}
				created := int(atomic.LoadInt32(newCount))
				if created != 0 {
					t.Fatalf("newFn should not be called when cap=0; got %d", created)
				}
				return created
			},
			want: want{newCountMin: 0, newCountMax: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var counter int32
			newFn := func() interface{} {
				id := int(atomic.AddInt32(&counter, 1))
				return &fakeWorker{id: id}
			}

			p := NewFixed(tt.args.capacity, newFn).(*fixed)

			if tt.setup != nil {
				tt.setup(t, p)
			}

			created := tt.run(t, p, &counter)

			if created < tt.want.newCountMin || created > tt.want.newCountMax {
				t.Fatalf("newFn calls = %d, want in [%d..%d]", created, tt.want.newCountMin, tt.want.newCountMax)
			}
		})
	}
}
