package main

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/leijurv/jpeg_coef_go/coef"
	"github.com/leijurv/jpeg_coef_go/rawstream"
)

// chunk sizes every file is decoded with besides the whole-buffer pass
var verifyChunks = []int{1, 13, 512}

type verifyResult struct {
	ok     bool
	errMsg string
	passes int
}

func verifyFiles(files []string, workers int, verbose bool) bool {
	if workers < 1 {
		workers = 1
	}
	fmt.Printf("Verifying %d files with %d workers...\n", len(files), workers)

	var pass, fail, processed int64
	var mu sync.Mutex
	var failedFiles []string

	jobs := make(chan string, len(files))
	var wg sync.WaitGroup

	done := make(chan struct{})
	var statusWg sync.WaitGroup
	statusWg.Add(1)
	go func() {
		defer statusWg.Done()
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fmt.Printf("Progress: %d/%d processed (%d passed, %d failed)\n",
					atomic.LoadInt64(&processed), len(files),
					atomic.LoadInt64(&pass), atomic.LoadInt64(&fail))
			case <-done:
				return
			}
		}
	}()

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				result := verifyFile(path)
				atomic.AddInt64(&processed, 1)
				if result.ok {
					atomic.AddInt64(&pass, 1)
					if verbose {
						fmt.Printf("PASS: %s (%d buffered passes)\n", path, result.passes)
					}
					continue
				}
				atomic.AddInt64(&fail, 1)
				mu.Lock()
				failedFiles = append(failedFiles, path+": "+result.errMsg)
				mu.Unlock()
				if verbose {
					fmt.Printf("FAIL: %s: %s\n", path, result.errMsg)
				}
			}
		}()
	}

	for _, f := range files {
		jobs <- f
	}
	close(jobs)
	wg.Wait()
	close(done)
	statusWg.Wait()

	fmt.Printf("\nResults: %d passed, %d failed\n", pass, fail)
	if len(failedFiles) > 0 {
		fmt.Println("\nFailed files:")
		for i, f := range failedFiles {
			if i >= 20 {
				fmt.Printf("  ... and %d more\n", len(failedFiles)-20)
				break
			}
			fmt.Printf("  %s\n", f)
		}
	}
	return fail == 0
}

// verifyFile decodes a stream whole, then chunked and in buffered-image
// mode, and checks that every run ends with the same samples.
func verifyFile(path string) verifyResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return verifyResult{errMsg: err.Error()}
	}
	whole, err := rawstream.DecodeAll(data, &rawstream.DecodeOptions{})
	if err != nil {
		return verifyResult{errMsg: "whole: " + err.Error()}
	}
	want := digest(whole)

	for _, chunk := range verifyChunks {
		img, err := rawstream.DecodeAll(data, &rawstream.DecodeOptions{Chunk: chunk})
		if err != nil {
			return verifyResult{errMsg: fmt.Sprintf("chunk %d: %v", chunk, err)}
		}
		if got := digest(img); got != want {
			return verifyResult{errMsg: fmt.Sprintf("chunk %d: digest %s, want %s", chunk, got[:16], want[:16])}
		}
	}

	paged := &coef.PagedAllocator{ResidentRows: 1}
	defer paged.Close()
	buffered, err := rawstream.DecodeAll(data, &rawstream.DecodeOptions{
		Chunk:         verifyChunks[len(verifyChunks)-1],
		BufferedImage: true,
		Allocator:     paged,
	})
	if err != nil {
		return verifyResult{errMsg: "buffered: " + err.Error()}
	}
	if got := digest(buffered); got != want {
		return verifyResult{errMsg: fmt.Sprintf("buffered: digest %s, want %s", got[:16], want[:16])}
	}
	return verifyResult{ok: true, passes: buffered.Passes}
}
