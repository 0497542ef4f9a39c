// Package scanner provides discovery and parsing of Markdown index pages.
//
// The scanner traverses configured scan paths to find .md files, parses each
// one into an IndexPage with its ordered entries, and registers the result
// with the page registry so change events reach the preview server and lint
// engine. File CRC32 hashes support change detection, and a persistent worker
// pool keeps large documentation trees fast to rescan.
package scanner

import (
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/conneroisu/mdindex/internal/registry"
)

// ScanJob represents a scanning job for the worker pool containing the file
// path to scan and a result channel for asynchronous communication.
type ScanJob struct {
	filePath string
	result   chan<- ScanResult
}

// ScanResult represents the result of a scanning operation
type ScanResult struct {
	filePath string
	err      error
}

// WorkerPool manages persistent scanning workers
type WorkerPool struct {
	jobQueue    chan ScanJob
	workers     []*scanWorker
	workerCount int
	scanner     *PageScanner
	stop        chan struct{}
	stopped     bool
	mu          sync.Mutex
}

type scanWorker struct {
	id       int
	jobQueue <-chan ScanJob
	scanner  *PageScanner
	stop     chan struct{}
}

// PageScanner discovers and parses Markdown index pages.
type PageScanner struct {
	// registry receives discovered pages and broadcasts change events
	registry *registry.PageRegistry
	// excludePatterns are matched against base file names during discovery
	excludePatterns []string
	// workerPool manages concurrent scanning operations
	workerPool *WorkerPool
}

// NewPageScanner creates a new scanner backed by a worker pool
func NewPageScanner(reg *registry.PageRegistry, excludePatterns ...string) *PageScanner {
	scanner := &PageScanner{
		registry:        reg,
		excludePatterns: excludePatterns,
	}

	workerCount := runtime.NumCPU()
	if workerCount > 8 {
		workerCount = 8 // Diminishing returns past this
	}

	scanner.workerPool = newWorkerPool(workerCount, scanner)
	return scanner
}

func newWorkerPool(workerCount int, scanner *PageScanner) *WorkerPool {
	pool := &WorkerPool{
		jobQueue:    make(chan ScanJob, workerCount*2),
		workerCount: workerCount,
		scanner:     scanner,
		stop:        make(chan struct{}),
	}

	pool.workers = make([]*scanWorker, workerCount)
	for i := 0; i < workerCount; i++ {
		worker := &scanWorker{
			id:       i,
			jobQueue: pool.jobQueue,
			scanner:  scanner,
			stop:     make(chan struct{}),
		}
		pool.workers[i] = worker
		go worker.start()
	}

	return pool
}

func (w *scanWorker) start() {
	for {
		select {
		case job := <-w.jobQueue:
			err := w.scanner.scanFileInternal(job.filePath)
			job.result <- ScanResult{filePath: job.filePath, err: err}
		case <-w.stop:
			return
		}
	}
}

// Stop gracefully shuts down the worker pool
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return
	}
	p.stopped = true
	close(p.stop)

	for _, worker := range p.workers {
		close(worker.stop)
	}
	close(p.jobQueue)
}

// GetRegistry returns the page registry
func (s *PageScanner) GetRegistry() *registry.PageRegistry {
	return s.registry
}

// Close gracefully shuts down the scanner and its worker pool
func (s *PageScanner) Close() error {
	if s.workerPool != nil {
		s.workerPool.Stop()
	}
	return nil
}

// ScanDirectory scans a directory tree for Markdown index pages
func (s *PageScanner) ScanDirectory(dir string) error {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		base := filepath.Base(path)
		if d.IsDir() {
			if base == ".git" || base == "node_modules" || base == "vendor" {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.HasSuffix(path, ".md") {
			return nil
		}

		if s.excluded(base) {
			return nil
		}

		files = append(files, path)
		return nil
	})

	if err != nil {
		return err
	}

	return s.processBatch(files)
}

func (s *PageScanner) excluded(base string) bool {
	for _, pattern := range s.excludePatterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}

// processBatch processes files using the persistent worker pool; tiny
// batches are handled synchronously to avoid channel overhead.
func (s *PageScanner) processBatch(files []string) error {
	if len(files) == 0 {
		return nil
	}

	if len(files) <= 5 {
		var errs []error
		for _, file := range files {
			if err := s.scanFileInternal(file); err != nil {
				errs = append(errs, fmt.Errorf("scanning %s: %w", file, err))
			}
		}
		if len(errs) > 0 {
			return fmt.Errorf("scan completed with %d errors: %v", len(errs), errs[0])
		}
		return nil
	}

	resultChan := make(chan ScanResult, len(files))
	for _, file := range files {
		job := ScanJob{filePath: file, result: resultChan}

		select {
		case s.workerPool.jobQueue <- job:
		default:
			// Worker pool is full, process synchronously as fallback
			err := s.scanFileInternal(file)
			resultChan <- ScanResult{filePath: file, err: err}
		}
	}

	var errs []error
	for i := 0; i < len(files); i++ {
		result := <-resultChan
		if result.err != nil {
			errs = append(errs, fmt.Errorf("scanning %s: %w", result.filePath, result.err))
		}
	}
	close(resultChan)

	if len(errs) > 0 {
		return fmt.Errorf("scan completed with %d errors: %v", len(errs), errs[0])
	}
	return nil
}

// ScanFile scans a single Markdown file
func (s *PageScanner) ScanFile(path string) error {
	return s.scanFileInternal(path)
}

func (s *PageScanner) scanFileInternal(path string) error {
	cleanPath := filepath.Clean(path)
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains directory traversal: %s", path)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return fmt.Errorf("getting file info for %s: %w", cleanPath, err)
	}

	content, err := os.ReadFile(cleanPath)
	if err != nil {
		return fmt.Errorf("reading file %s: %w", cleanPath, err)
	}

	hash := fmt.Sprintf("%x", crc32.ChecksumIEEE(content))

	// Unchanged file, skip the re-parse
	if existing, ok := s.registry.Get(cleanPath); ok && existing.Hash == hash {
		return nil
	}

	page := ParsePage(cleanPath, content, hash, info.ModTime())
	s.registry.Register(page)
	return nil
}
