package annotation

import "sync"

// Collector aggregates file annotations from concurrent scans
type Collector struct {
	mu          sync.Mutex
	annotations *Annotations
}

// NewCollector creates a new annotation collector
func NewCollector() *Collector {
	return &Collector{
		annotations: NewAnnotations(),
	}
}

// Add stores the annotations of one file, replacing any earlier entry for
// the same path.
func (c *Collector) Add(file *FileAnnotations) {
	if file == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.annotations.Files[file.Path] = file
}

// Remove drops the entry for path.
func (c *Collector) Remove(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.annotations.Files, path)
}

// Annotations returns the aggregated annotations
func (c *Collector) Annotations() *Annotations {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.annotations
}

// Reset clears all collected annotations
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.annotations = NewAnnotations()
}

// Merge copies every file of other into c; entries in other win.
func (c *Collector) Merge(other *Collector) {
	if other == c {
		return
	}
	other.mu.Lock()
	files := make([]*FileAnnotations, 0, len(other.annotations.Files))
	for _, f := range other.annotations.Files {
		files = append(files, f)
	}
	other.mu.Unlock()

	for _, f := range files {
		c.Add(f)
	}
}

// GetFileAnnotations returns the annotations for a specific file
func (c *Collector) GetFileAnnotations(path string) *FileAnnotations {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.annotations.Files[path]
}

// GetFileList returns the sorted list of all annotated files
func (c *Collector) GetFileList() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.annotations.GetFiles()
}
