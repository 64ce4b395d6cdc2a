package fasta

import (
	"errors"
	"fmt"
)

// Collection merges several indexed FASTA files into one namespace.
type Collection struct {
	files []*IndexedFasta
	owner map[string]*IndexedFasta
	names []string // file order, then index order
}

// OpenCollection opens every path with the given options. A sequence name
// present in more than one file is rejected with ErrDuplicateKey.
func OpenCollection(paths []string, opts ...Option) (*Collection, error) {
	c := &Collection{owner: make(map[string]*IndexedFasta)}
	for _, path := range paths {
		f, err := Open(path, opts...)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.files = append(c.files, f)

		for _, name := range f.Sequences() {
			if _, dup := c.owner[name]; dup {
				c.Close()
				return nil, fmt.Errorf("key collision: sequence name %s appears more than once: %w", name, ErrDuplicateKey)
			}
			c.owner[name] = f
			c.names = append(c.names, name)
		}
	}
	return c, nil
}

// Close releases the handles of every member file.
func (c *Collection) Close() error {
	var errs []error
	for _, f := range c.files {
		errs = append(errs, f.Close())
	}
	return errors.Join(errs...)
}

// Files returns the member files in construction order.
func (c *Collection) Files() []*IndexedFasta {
	return append([]*IndexedFasta(nil), c.files...)
}

// Len returns the number of sequences across all files.
func (c *Collection) Len() int {
	return len(c.names)
}

// Contains reports whether any member file holds name.
func (c *Collection) Contains(name string) bool {
	_, ok := c.owner[name]
	return ok
}

// Keys returns every sequence name in the collection.
func (c *Collection) Keys() []string {
	return append([]string(nil), c.names...)
}

// Get retrieves a record from the file that holds it.
func (c *Collection) Get(name string) (*Seq, error) {
	f, ok := c.owner[name]
	if !ok {
		return nil, fmt.Errorf("%w: no such sequence %s found in any index", ErrNotFound, name)
	}
	return f.Get(name)
}

// Fetch returns a 1-based inclusive region from the file that holds name.
func (c *Collection) Fetch(name string, start, end int64) (string, error) {
	f, ok := c.owner[name]
	if !ok {
		return "", fmt.Errorf("%w: no such sequence %s found in any index", ErrNotFound, name)
	}
	return f.Fetch(name, start, end)
}
