// Copyright 2026 The CDRL Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package runtime

import (
	"context"
	"time"

	"cdrl.dev/go/cdrlerr"
	"cdrl.dev/go/internal/metrics"
	"cdrl.dev/go/token"
)

// Reader is a pooled, reusable document reader (the teacher's equivalent
// of a SAX parser instance). Reset restores it to the state a freshly
// constructed Reader would be in.
type Reader interface {
	Reset()
}

// ReaderFactory constructs a new Reader, used both to fill a pool and to
// replace a Reader discarded after a processing failure.
type ReaderFactory func() Reader

// ReaderPool is a blocking, bounded pool of Readers (spec §5 "Reader
// pools are blocking bounded pools").
type ReaderPool struct {
	factory ReaderFactory
	slots   chan Reader
}

// NewReaderPool returns a ReaderPool pre-filled with size Readers built
// by factory.
func NewReaderPool(factory ReaderFactory, size int) *ReaderPool {
	p := &ReaderPool{factory: factory, slots: make(chan Reader, size)}
	for i := 0; i < size; i++ {
		p.slots <- factory()
	}
	return p
}

// Acquire blocks until a Reader is available, ctx is cancelled, or
// timeout elapses, whichever comes first. timeout <= 0 means no
// additional deadline beyond ctx (spec §5: "acquire may suspend until a
// reader is free or a configured timeout elapses").
func (p *ReaderPool) Acquire(ctx context.Context, timeout time.Duration) (Reader, cdrlerr.ConfigError) {
	start := time.Now()
	if timeout <= 0 {
		select {
		case r := <-p.slots:
			metrics.RecordReaderAcquireWait("ok", time.Since(start))
			return r, nil
		case <-ctx.Done():
			metrics.RecordReaderAcquireWait("timeout", time.Since(start))
			return nil, cdrlerr.Wrap(cdrlerr.ReaderAcquisitionTimeout, "", token.NoPos, ctx.Err(),
				"reader acquisition cancelled")
		}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case r := <-p.slots:
		metrics.RecordReaderAcquireWait("ok", time.Since(start))
		return r, nil
	case <-timer.C:
		metrics.RecordReaderAcquireWait("timeout", time.Since(start))
		return nil, cdrlerr.New(cdrlerr.ReaderAcquisitionTimeout, "", token.NoPos,
			"timed out after %s waiting for a pooled reader", timeout)
	case <-ctx.Done():
		metrics.RecordReaderAcquireWait("timeout", time.Since(start))
		return nil, cdrlerr.Wrap(cdrlerr.ReaderAcquisitionTimeout, "", token.NoPos, ctx.Err(),
			"reader acquisition cancelled")
	}
}

// Release returns r to the pool. If healthy is false (the reader threw
// during processing, spec §5), r is discarded and a freshly constructed
// replacement takes its slot instead; otherwise r is reset and reused.
func (p *ReaderPool) Release(r Reader, healthy bool) {
	if !healthy {
		r = p.factory()
	} else {
		r.Reset()
	}
	select {
	case p.slots <- r:
	default:
		// Pool slot already occupied (a double-release or a pool shrink
		// race); drop the reader rather than block the releasing caller.
	}
}
