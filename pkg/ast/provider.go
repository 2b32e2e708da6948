package ast

// Provider builds statement trees from source files.
type Provider interface {
	// Parse parses a file and returns its statement tree.
	Parse(path string) (*Tree, error)

	// Close releases provider resources.
	Close()
}
