// Package extsort is the external merge-sort collaborator the index
// builder (C4) relies on to order (term, doc_id, position, value) tuples
// without holding the whole corpus in memory: entries are buffered up to a
// run size, each run is sorted in memory and spilled to a compressed
// temporary file (record framing grounded on
// compactindexsized/build.go's fileKV "static header then payload"
// shape), and Finish drives a k-way merge across the spilled runs with a
// container/heap min-heap, exposing the merged stream in ascending key
// order (equal keys included) through Iterator.Next.
//
// extsort never deduplicates on its own: callers that need dedup-reduce
// semantics (the index builder merging repeated (term, doc) positions)
// detect equal keys themselves while draining the Iterator, since only the
// caller knows how two entries sharing a key should be combined.
package extsort

import (
	"bufio"
	"bytes"
	"container/heap"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/knode-ai-open-source/search-index-library/compress"
	"github.com/knode-ai-open-source/search-index-library/varint"
)

// Entry is one (key, value) tuple flowing through the sorter. Keys are
// compared with bytes.Compare; ties preserve insertion order within a run
// but not across runs (callers needing a stable tertiary order should fold
// it into the key).
type Entry struct {
	Key   []byte
	Value []byte
}

// Sorter buffers entries, spilling sorted, compressed runs to tmpDir once
// the in-memory buffer reaches runSize entries.
type Sorter struct {
	tmpDir  string
	codec   compress.Codec
	runSize int

	buf  []Entry
	runs []*run
}

// New creates a Sorter that spills sorted runs of at most runSize entries
// to tmpDir, compressed with codec before being written to disk.
func New(tmpDir string, codec compress.Codec, runSize int) *Sorter {
	if codec == nil {
		codec = compress.NewNoOpCompressor()
	}
	if runSize <= 0 {
		runSize = 1 << 16
	}
	return &Sorter{tmpDir: tmpDir, codec: codec, runSize: runSize}
}

// Add appends one entry to the sorter, spilling a run to disk once the
// in-memory buffer reaches its configured size.
func (s *Sorter) Add(key, value []byte) error {
	keyCopy := append([]byte(nil), key...)
	valCopy := append([]byte(nil), value...)
	s.buf = append(s.buf, Entry{Key: keyCopy, Value: valCopy})

	if len(s.buf) >= s.runSize {
		return s.spill()
	}
	return nil
}

func (s *Sorter) spill() error {
	if len(s.buf) == 0 {
		return nil
	}
	sort.SliceStable(s.buf, func(i, j int) bool { return bytes.Compare(s.buf[i].Key, s.buf[j].Key) < 0 })

	var plain bytes.Buffer
	for _, e := range s.buf {
		writeFramedEntry(&plain, e)
	}
	s.buf = s.buf[:0]

	compressed, err := s.codec.Compress(plain.Bytes())
	if err != nil {
		return fmt.Errorf("extsort: compress run: %w", err)
	}

	f, err := os.CreateTemp(s.tmpDir, "sil-extsort-run-*")
	if err != nil {
		return fmt.Errorf("extsort: create run file: %w", err)
	}
	if _, err := f.Write(compressed); err != nil {
		f.Close()
		return fmt.Errorf("extsort: write run file: %w", err)
	}

	s.runs = append(s.runs, &run{file: f, codec: s.codec})
	return nil
}

func writeFramedEntry(buf *bytes.Buffer, e Entry) {
	var tmp [varint.MaxLen32]byte
	n := varint.Encode(&tmp, uint32(len(e.Key)))
	buf.Write(tmp[:n])
	buf.Write(e.Key)
	n = varint.Encode(&tmp, uint32(len(e.Value)))
	buf.Write(tmp[:n])
	buf.Write(e.Value)
}

// Finish flushes any buffered entries and returns an Iterator that merges
// every spilled run (or, if everything fit in one run, the in-memory
// buffer directly) in ascending key order. The Sorter must not be used
// again after Finish.
func (s *Sorter) Finish() (*Iterator, error) {
	if len(s.runs) == 0 {
		sort.SliceStable(s.buf, func(i, j int) bool { return bytes.Compare(s.buf[i].Key, s.buf[j].Key) < 0 })
		return &Iterator{single: s.buf}, nil
	}

	if err := s.spill(); err != nil {
		return nil, err
	}

	it := &Iterator{runs: s.runs}
	if err := it.init(); err != nil {
		return nil, err
	}
	return it, nil
}

// run is one spilled, sorted, compressed file of entries.
type run struct {
	file    *os.File
	codec   compress.Codec
	entries []Entry
	pos     int
}

func (r *run) load() error {
	if _, err := r.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	compressed, err := io.ReadAll(bufio.NewReader(r.file))
	if err != nil {
		return err
	}
	plain, err := r.codec.Decompress(compressed)
	if err != nil {
		return fmt.Errorf("extsort: decompress run: %w", err)
	}

	p := plain
	for len(p) > 0 {
		keyLen, n, err := varint.Decode(p)
		if err != nil {
			return fmt.Errorf("extsort: corrupt run: %w", err)
		}
		p = p[n:]
		key := p[:keyLen]
		p = p[keyLen:]

		valLen, n, err := varint.Decode(p)
		if err != nil {
			return fmt.Errorf("extsort: corrupt run: %w", err)
		}
		p = p[n:]
		value := p[:valLen]
		p = p[valLen:]

		r.entries = append(r.entries, Entry{Key: key, Value: value})
	}
	return nil
}

func (r *run) close() {
	r.file.Close()
	os.Remove(r.file.Name())
}

// Iterator yields the merged, sorted stream of entries across every spilled
// run (or a single in-memory slice when nothing spilled).
type Iterator struct {
	runs     []*run
	fromRuns bool
	single   []Entry
	h        mergeHeap
	closed   bool
}

func (it *Iterator) init() error {
	it.fromRuns = true
	for _, r := range it.runs {
		if err := r.load(); err != nil {
			return err
		}
		if len(r.entries) > 0 {
			it.h = append(it.h, heapItem{run: r})
		}
	}
	heap.Init(&it.h)
	return nil
}

// Next returns the next entry in ascending key order, or io.EOF once the
// stream is exhausted.
func (it *Iterator) Next() (Entry, error) {
	if !it.fromRuns {
		if len(it.single) == 0 {
			return Entry{}, io.EOF
		}
		e := it.single[0]
		it.single = it.single[1:]
		return e, nil
	}

	if len(it.h) == 0 {
		if !it.closed {
			for _, r := range it.runs {
				r.close()
			}
			it.closed = true
		}
		return Entry{}, io.EOF
	}

	top := heap.Pop(&it.h).(heapItem)
	e := top.run.entries[top.run.pos]
	top.run.pos++
	if top.run.pos < len(top.run.entries) {
		heap.Push(&it.h, top)
	}
	return e, nil
}

type heapItem struct {
	run *run
}

type mergeHeap []heapItem

func (h mergeHeap) Len() int { return len(h) }
func (h mergeHeap) Less(i, j int) bool {
	return bytes.Compare(h[i].run.entries[h[i].run.pos].Key, h[j].run.entries[h[j].run.pos].Key) < 0
}
func (h mergeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *mergeHeap) Push(x any) { *h = append(*h, x.(heapItem)) }
func (h *mergeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
