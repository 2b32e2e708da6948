// Package ast provides the statement tree that coverage discrepancy
// detectors walk.
//
// A Tree is built once per analyzed file by a Provider (see the treesitter
// subpackage) and is read-only afterwards. Nodes are compared by identity:
// detectors keep *Node pointers as cursors into the tree and never mutate
// them.
//
// Usage:
//
//	provider := treesitter.New()
//	defer provider.Close()
//
//	tree, err := provider.Parse("test.gcov.c")
//	if err != nil {
//	    return err
//	}
//
//	for _, n := range tree.Nodes() {
//	    fmt.Printf("%s at line %d\n", n.Kind, n.StartLine)
//	}
package ast
