package wordcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec by extension: .mp/.msgpack get the binary codec, everything
// else a JSON object {word: {"code": c, "score": s}} compatible with
// caches produced by earlier versions of the tool.
func useMsgpack(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp", ".msgpack":
		return true
	}
	return false
}

// Load reads the cache file at path. The cache it returns is always
// usable: a missing, unreadable or corrupt file degrades to an empty
// cache, with the cause reported as an advisory error so the caller
// can log it instead of dying.
func Load(path string) (*Cache, error) {
	c := New()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return c, fmt.Errorf("read cache %s: %w", path, err)
	}
	entries := make(map[string]Entry)
	if useMsgpack(path) {
		err = msgpack.Unmarshal(data, &entries)
	} else {
		err = json.Unmarshal(data, &entries)
	}
	if err != nil {
		return New(), fmt.Errorf("parse cache %s: %w", path, err)
	}
	c.absorb(entries)
	return c, nil
}

// Flush persists the durable entries to path, atomically (temp file in
// the target directory, then rename). Safe to call any number of times;
// the last write wins. A write failure is the one cache error that
// surfaces to the caller.
func (c *Cache) Flush(path string) error {
	if path == "" {
		return nil
	}
	view := c.durableView()

	// сортируем ключи: файл должен быть байт-в-байт воспроизводим
	keys := make([]string, 0, len(view))
	for k := range view {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data []byte
	var err error
	if useMsgpack(path) {
		data, err = encodeMsgpack(view, keys)
	} else {
		data, err = encodeJSON(view, keys)
	}
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("flush cache %s: %w", path, err)
	}
	f, err := os.CreateTemp(dir, "lipi-cache-*")
	if err != nil {
		return fmt.Errorf("flush cache %s: %w", path, err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("flush cache %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("flush cache %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("flush cache %s: %w", path, err)
	}

	c.mu.Lock()
	c.dirty = false
	c.mu.Unlock()
	return nil
}

func encodeJSON(view map[string]Entry, keys []string) ([]byte, error) {
	// json.Marshal already sorts map keys, but going through the sorted
	// slice keeps both codecs on the same contract.
	var b strings.Builder
	b.WriteString("{\n")
	for i, k := range keys {
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(view[k])
		if err != nil {
			return nil, err
		}
		b.WriteString("  ")
		b.Write(kb)
		b.WriteString(": ")
		b.Write(vb)
		if i < len(keys)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}\n")
	return []byte(b.String()), nil
}

func encodeMsgpack(view map[string]Entry, keys []string) ([]byte, error) {
	var buf strings.Builder
	enc := msgpack.NewEncoder(&buf)
	if err := enc.EncodeMapLen(len(keys)); err != nil {
		return nil, err
	}
	for _, k := range keys {
		if err := enc.EncodeString(k); err != nil {
			return nil, err
		}
		if err := enc.Encode(view[k]); err != nil {
			return nil, err
		}
	}
	return []byte(buf.String()), nil
}
