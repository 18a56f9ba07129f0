package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordIngest(t *testing.T) {
	m := Get()
	m.Reset()

	m.RecordIngest(3, nil)
	m.RecordIngest(5, nil)
	m.RecordIngest(0, errors.New("boom"))

	stats := m.Stats()
	ingestion := stats["ingestion"].(map[string]interface{})
	assert.Equal(t, uint64(2), ingestion["documents"])
	assert.Equal(t, uint64(8), ingestion["chunks"])
	assert.Equal(t, uint64(1), ingestion["errors"])
}

func TestRecordChat(t *testing.T) {
	m := Get()
	m.Reset()

	m.RecordChat(false, nil)
	m.RecordChat(true, nil)
	m.RecordChat(false, errors.New("boom"))
	m.RecordCache(true)
	m.RecordCache(false)

	chat := m.Stats()["chat"].(map[string]interface{})
	assert.Equal(t, uint64(3), chat["total"])
	assert.Equal(t, uint64(1), chat["degraded"])
	assert.Equal(t, uint64(1), chat["errors"])
	assert.Equal(t, uint64(1), chat["cache_hits"])
	assert.InDelta(t, 0.5, chat["cache_hit_rate"].(float64), 1e-9)
}

func TestRecordCompletion(t *testing.T) {
	m := Get()
	m.Reset()

	m.RecordCompletion(100*time.Millisecond, nil)
	m.RecordCompletion(300*time.Millisecond, nil)
	m.RecordCompletion(0, errors.New("boom"))

	completion := m.Stats()["completion"].(map[string]interface{})
	assert.Equal(t, uint64(3), completion["total"])
	assert.Equal(t, uint64(1), completion["errors"])
	assert.InDelta(t, 0.4, completion["total_duration_secs"].(float64), 1e-6)
}

func TestConcurrentRecording(t *testing.T) {
	m := Get()
	m.Reset()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordChat(false, nil)
			m.RecordSearch(nil)
			m.RecordIngest(1, nil)
		}()
	}
	wg.Wait()

	stats := m.Stats()
	assert.Equal(t, uint64(50), stats["chat"].(map[string]interface{})["total"])
	assert.Equal(t, uint64(50), stats["search"].(map[string]interface{})["total"])
	assert.Equal(t, uint64(50), stats["ingestion"].(map[string]interface{})["documents"])
}
