package id

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	gen := NewGenerator()

	id1 := gen.Generate()
	id2 := gen.Generate()
	assert.NotEqual(t, id1.String(), id2.String())
	assert.Len(t, gen.GenerateString(), 26)
}

func TestTempNamesSortByCreation(t *testing.T) {
	first := TempName("x")
	time.Sleep(2 * time.Millisecond)
	second := TempName("x")
	assert.Less(t, first, second)
}

func TestTempName(t *testing.T) {
	name := TempName("sandfs-archive")
	assert.True(t, strings.HasPrefix(name, ".sandfs-archive-"))
	assert.True(t, IsTempName(name, "sandfs-archive"))
	assert.False(t, IsTempName(name, "other"))
	assert.False(t, IsTempName(".sandfs-archive-nope.tmp", "sandfs-archive"))
}

func TestConcurrentGeneration(t *testing.T) {
	gen := NewGenerator()
	var mu sync.Mutex
	seen := make(map[string]bool)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := gen.GenerateString()
			mu.Lock()
			seen[s] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 50)
}
